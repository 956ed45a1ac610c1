package api

import (
	"strconv"
	"time"

	"integrity/config"
	"integrity/database"
	"integrity/models"

	"github.com/gin-gonic/gin"
)

// InspectionHandler 诊断记录处理器
type InspectionHandler struct{}

// NewInspectionHandler 创建诊断记录处理器
func NewInspectionHandler() *InspectionHandler {
	return &InspectionHandler{}
}

// InspectionItem 列表条目：诊断记录附带对象摘要
type InspectionItem struct {
	models.Inspection
	ObjectName string  `json:"object_name"`
	PipelineID string  `json:"pipeline_id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// InspectionList 列表响应
type InspectionList struct {
	Total int              `json:"total"`
	Data  []InspectionItem `json:"data"`
}

// List 获取诊断记录列表
// @Summary 诊断记录列表
// @Description 支持按对象、方法、危险等级、管道与日期范围过滤，新记录在前
// @Tags 诊断记录
// @Produce json
// @Param object_id query int false "对象 ID"
// @Param method query string false "检测方法"
// @Param ml_label query string false "危险等级" Enums(normal, medium, high)
// @Param defect_only query bool false "只看缺陷"
// @Param pipeline_id query string false "管道 ID"
// @Param date_from query string false "起始日期 (YYYY-MM-DD)"
// @Param date_to query string false "截止日期 (YYYY-MM-DD)"
// @Param limit query int false "最大返回条数（默认 1000）"
// @Success 200 {object} Response{data=InspectionList}
// @Router /api/v1/diagnostics [get]
func (h *InspectionHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Inspection{}).Preload("Asset")

	if v := c.Query("object_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			BadRequest(c, "object_id 不合法")
			return
		}
		query = query.Where("asset_id = ?", uint(id))
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}
	if label := c.Query("ml_label"); label != "" {
		query = query.Where("label = ?", label)
	}
	if v := c.Query("defect_only"); v == "true" || v == "1" {
		query = query.Where("defect_found = ?", true)
	}
	if pipelineID := c.Query("pipeline_id"); pipelineID != "" {
		query = query.Where("asset_id IN (?)",
			database.DB.Model(&models.Asset{}).Select("id").Where("pipeline_id = ?", pipelineID))
	}
	if v := c.Query("date_from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			BadRequest(c, "date_from 格式应为 YYYY-MM-DD")
			return
		}
		query = query.Where("date >= ?", from)
	}
	if v := c.Query("date_to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			BadRequest(c, "date_to 格式应为 YYYY-MM-DD")
			return
		}
		// 截止日期按整天计
		query = query.Where("date < ?", to.AddDate(0, 0, 1))
	}

	limit := 1000
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			BadRequest(c, "limit 不合法")
			return
		}
		limit = n
	}

	var diags []models.Inspection
	if err := query.Order("date DESC, id DESC").Limit(limit).Find(&diags).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "查询诊断记录失败"))
		return
	}

	items := make([]InspectionItem, 0, len(diags))
	for _, d := range diags {
		items = append(items, InspectionItem{
			Inspection: d,
			ObjectName: d.Asset.Name,
			PipelineID: d.Asset.PipelineID,
			Lat:        d.Asset.Lat,
			Lon:        d.Asset.Lon,
		})
	}

	Success(c, InspectionList{Total: len(items), Data: items})
}
