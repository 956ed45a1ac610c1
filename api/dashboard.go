package api

import (
	"math"

	"integrity/config"
	"integrity/database"
	"integrity/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler 仪表盘统计处理器
type DashboardHandler struct{}

// NewDashboardHandler 创建仪表盘统计处理器
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// DashboardSummary 总量统计
type DashboardSummary struct {
	TotalObjects     int64   `json:"total_objects"`
	TotalInspections int64   `json:"total_inspections"`
	TotalDefects     int64   `json:"total_defects"`
	DefectRate       float64 `json:"defect_rate"` // 缺陷记录占比（百分比）
}

// TopObject 排行条目（按缺陷或高危记录数）
type TopObject struct {
	ObjectID   uint   `json:"object_id"`
	ObjectName string `json:"object_name"`
	PipelineID string `json:"pipeline_id"`
	Count      int    `json:"count"`
}

// YearTrend 年度趋势条目
type YearTrend struct {
	Year        int `json:"year"`
	Inspections int `json:"inspections"`
	Defects     int `json:"defects"`
}

// PipelineStats 单条管道的统计
type PipelineStats struct {
	PipelineID       string `json:"pipeline_id"`
	Name             string `json:"name"`
	ObjectsCount     int64  `json:"objects_count"`
	InspectionsCount int64  `json:"inspections_count"`
	DefectsCount     int64  `json:"defects_count"`
	HighRiskCount    int64  `json:"high_risk_count"`
}

// DashboardStats 仪表盘响应
type DashboardStats struct {
	Summary          DashboardSummary `json:"summary"`
	Methods          map[string]int   `json:"methods"`
	RiskLevels       map[string]int   `json:"risk_levels"`
	QualityGrades    map[string]int   `json:"quality_grades"`
	TopDefectObjects []TopObject      `json:"top_defect_objects"`
	TopRiskObjects   []TopObject      `json:"top_risk_objects"`
	YearlyTrend      []YearTrend      `json:"yearly_trend"`
	Pipelines        []PipelineStats  `json:"pipelines"`
}

// Stats 获取仪表盘统计
// @Summary 仪表盘统计
// @Description 总量、方法/危险等级/质量评级分布、缺陷与高危对象排行、年度趋势、分管道统计
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} Response{data=DashboardStats}
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	db := database.DB
	var stats DashboardStats

	if err := db.Model(&models.Asset{}).Count(&stats.Summary.TotalObjects).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计监测对象失败"))
		return
	}
	if err := db.Model(&models.Inspection{}).Count(&stats.Summary.TotalInspections).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计诊断记录失败"))
		return
	}
	if err := db.Model(&models.Inspection{}).Where("defect_found = ?", true).
		Count(&stats.Summary.TotalDefects).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计缺陷记录失败"))
		return
	}
	if stats.Summary.TotalInspections > 0 {
		rate := float64(stats.Summary.TotalDefects) / float64(stats.Summary.TotalInspections) * 100
		stats.Summary.DefectRate = math.Round(rate*100) / 100
	}

	var err error
	if stats.Methods, err = countBy(db.Model(&models.Inspection{}), "method"); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计方法分布失败"))
		return
	}
	if stats.RiskLevels, err = countBy(db.Model(&models.Inspection{}).Where("label <> ''"), "label"); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计危险等级分布失败"))
		return
	}
	if stats.QualityGrades, err = countBy(
		db.Model(&models.Inspection{}).Where("defect_found = ? AND quality_grade <> ''", true),
		"quality_grade"); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计质量评级分布失败"))
		return
	}

	if stats.TopDefectObjects, err = topObjects(db.Model(&models.Inspection{}).
		Where("defect_found = ?", true)); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计缺陷对象排行失败"))
		return
	}
	if stats.TopRiskObjects, err = topObjects(db.Model(&models.Inspection{}).
		Where("label = ?", models.LabelHigh)); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计高危对象排行失败"))
		return
	}

	if stats.YearlyTrend, err = yearlyTrend(); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计年度趋势失败"))
		return
	}
	if stats.Pipelines, err = pipelineStats(); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "统计管道数据失败"))
		return
	}

	Success(c, stats)
}

// countBy 按单列分组计数
func countBy(query *gorm.DB, column string) (map[string]int, error) {
	type row struct {
		Key   string
		Count int
	}
	var rows []row
	if err := query.Select(column + " AS `key`, COUNT(*) AS count").
		Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}

// topObjects 按记录数排行前 5 的对象，并补充对象摘要
func topObjects(query *gorm.DB) ([]TopObject, error) {
	type row struct {
		AssetID uint
		Count   int
	}
	var rows []row
	if err := query.Select("asset_id, COUNT(*) AS count").
		Group("asset_id").Order("count DESC").Limit(5).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := []TopObject{}
	for _, r := range rows {
		var asset models.Asset
		if err := database.DB.First(&asset, r.AssetID).Error; err != nil {
			continue
		}
		out = append(out, TopObject{
			ObjectID:   asset.ID,
			ObjectName: asset.Name,
			PipelineID: asset.PipelineID,
			Count:      r.Count,
		})
	}
	return out, nil
}

func yearlyTrend() ([]YearTrend, error) {
	type row struct {
		Year        int
		Inspections int
		Defects     int
	}
	var rows []row
	err := database.DB.Model(&models.Inspection{}).
		Select("YEAR(date) AS year, COUNT(*) AS inspections, SUM(defect_found) AS defects").
		Group("YEAR(date)").Order("year").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]YearTrend, 0, len(rows))
	for _, r := range rows {
		out = append(out, YearTrend(r))
	}
	return out, nil
}

func pipelineStats() ([]PipelineStats, error) {
	var pipelines []models.Pipeline
	if err := database.DB.Order("id").Find(&pipelines).Error; err != nil {
		return nil, err
	}

	out := []PipelineStats{}
	for _, p := range pipelines {
		s := PipelineStats{PipelineID: p.ID, Name: p.Name}

		if err := database.DB.Model(&models.Asset{}).
			Where("pipeline_id = ?", p.ID).Count(&s.ObjectsCount).Error; err != nil {
			return nil, err
		}

		sub := database.DB.Model(&models.Asset{}).Select("id").Where("pipeline_id = ?", p.ID)
		if err := database.DB.Model(&models.Inspection{}).
			Where("asset_id IN (?)", sub).Count(&s.InspectionsCount).Error; err != nil {
			return nil, err
		}
		if err := database.DB.Model(&models.Inspection{}).
			Where("asset_id IN (?) AND defect_found = ?", sub, true).
			Count(&s.DefectsCount).Error; err != nil {
			return nil, err
		}
		if err := database.DB.Model(&models.Inspection{}).
			Where("asset_id IN (?) AND label = ?", sub, models.LabelHigh).
			Count(&s.HighRiskCount).Error; err != nil {
			return nil, err
		}

		out = append(out, s)
	}
	return out, nil
}
