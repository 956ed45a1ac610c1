package api

import (
	"strconv"
	"time"

	"integrity/analytics"
	"integrity/config"
	"integrity/database"
	"integrity/models"

	"github.com/gin-gonic/gin"
)

// ForecastHandler 失效预测处理器
type ForecastHandler struct{}

// NewForecastHandler 创建失效预测处理器
func NewForecastHandler() *ForecastHandler {
	return &ForecastHandler{}
}

// loadHistory 加载全部诊断历史，预测函数只吃显式传入的数据
func loadHistory() ([]models.Inspection, error) {
	var history []models.Inspection
	err := database.DB.Find(&history).Error
	return history, err
}

// ObjectForecast 单对象失效预测
// @Summary 对象失效预测
// @Description 基于该对象的缺陷深度趋势外推，给出风险、下次检测日期与推荐方法
// @Tags 预测
// @Produce json
// @Param id path int true "对象 ID"
// @Success 200 {object} Response{data=analytics.Forecast}
// @Failure 404 {object} Response "对象不存在"
// @Router /api/v1/forecast/objects/{id} [get]
func (h *ForecastHandler) ObjectForecast(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "对象 ID 不合法")
		return
	}

	var asset models.Asset
	if err := database.DB.First(&asset, uint(id)).Error; err != nil {
		NotFound(c, "对象不存在")
		return
	}

	history, err := loadHistory()
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "加载诊断记录失败"))
		return
	}

	Success(c, analytics.PredictNextFailure(history, asset.ID))
}

// PipelineForecast 管道级预测汇总
// @Summary 管道失效预测
// @Description 管道的缺陷率、高危对象清单与下一年缺陷数外推
// @Tags 预测
// @Produce json
// @Param id path string true "管道 ID"
// @Success 200 {object} Response{data=analytics.PipelineForecast}
// @Router /api/v1/forecast/pipelines/{id} [get]
func (h *ForecastHandler) PipelineForecast(c *gin.Context) {
	pipelineID := c.Param("id")

	history, err := loadHistory()
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "加载诊断记录失败"))
		return
	}
	var assets []models.Asset
	if err := database.DB.Find(&assets).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "加载监测对象失败"))
		return
	}

	Success(c, analytics.ForecastPipeline(history, assets, pipelineID, time.Now()))
}

// TopRisks 全线风险排行
// @Summary 风险排行
// @Description 对全部对象运行失效预测并按风险降序返回
// @Tags 预测
// @Produce json
// @Param limit query int false "返回条数（默认 20）"
// @Success 200 {object} Response{data=[]analytics.RankedRisk}
// @Router /api/v1/forecast/top-risks [get]
func (h *ForecastHandler) TopRisks(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			BadRequest(c, "limit 不合法")
			return
		}
		limit = n
	}

	history, err := loadHistory()
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "加载诊断记录失败"))
		return
	}
	var assets []models.Asset
	if err := database.DB.Find(&assets).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "加载监测对象失败"))
		return
	}

	Success(c, analytics.TopRisks(history, assets, limit))
}
