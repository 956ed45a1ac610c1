package api

import (
	"strconv"

	"integrity/config"
	"integrity/database"
	"integrity/models"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知处理器
type NotificationHandler struct{}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List 获取通知列表
// @Summary 通知列表
// @Tags 通知
// @Produce json
// @Param unread_only query bool false "只看未读"
// @Param limit query int false "返回条数（默认 50）"
// @Success 200 {object} Response{data=[]models.Notification}
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Notification{})

	if v := c.Query("unread_only"); v == "true" || v == "1" {
		query = query.Where("is_read = ?", false)
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			BadRequest(c, "limit 不合法")
			return
		}
		limit = n
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).
		Find(&notifications).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "查询通知失败"))
		return
	}
	Success(c, notifications)
}

// UnreadCount 未读通知数
// @Summary 未读通知数
// @Tags 通知
// @Produce json
// @Success 200 {object} Response{data=object{count=int}}
// @Router /api/v1/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	var count int64
	if err := database.DB.Model(&models.Notification{}).
		Where("is_read = ?", false).Count(&count).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计未读通知失败"))
		return
	}
	Success(c, gin.H{"count": count})
}

// MarkRead 标记单条通知已读
// @Summary 标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知 ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response "通知不存在"
// @Router /admin/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "通知 ID 不合法")
		return
	}

	var notification models.Notification
	if err := database.DB.First(&notification, uint(id)).Error; err != nil {
		NotFound(c, "通知不存在")
		return
	}

	if err := database.DB.Model(&notification).
		Update("is_read", true).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "更新通知失败"))
		return
	}
	SuccessWithMessage(c, "已标记为已读", nil)
}

// MarkAllRead 标记全部通知已读
// @Summary 全部标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /admin/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := database.DB.Model(&models.Notification{}).
		Where("is_read = ?", false).Update("is_read", true).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "更新通知失败"))
		return
	}
	SuccessWithMessage(c, "全部已读", nil)
}

// Delete 删除通知
// @Summary 删除通知
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知 ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response "通知不存在"
// @Router /admin/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "通知 ID 不合法")
		return
	}

	var notification models.Notification
	if err := database.DB.First(&notification, uint(id)).Error; err != nil {
		NotFound(c, "通知不存在")
		return
	}

	if err := database.DB.Delete(&notification).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "删除通知失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
