package api

import (
	"sort"
	"strconv"

	"integrity/config"
	"integrity/database"
	"integrity/models"

	"github.com/gin-gonic/gin"
)

// AssetHandler 监测对象处理器
type AssetHandler struct{}

// NewAssetHandler 创建监测对象处理器
func NewAssetHandler() *AssetHandler {
	return &AssetHandler{}
}

// ListPipelines 获取管道列表
// @Summary 管道列表
// @Tags 监测对象
// @Produce json
// @Success 200 {object} Response{data=[]models.Pipeline}
// @Router /api/v1/pipelines [get]
func (h *AssetHandler) ListPipelines(c *gin.Context) {
	var pipelines []models.Pipeline
	if err := database.DB.Order("id").Find(&pipelines).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "查询管道失败"))
		return
	}
	Success(c, pipelines)
}

// ListAssets 获取监测对象列表
// @Summary 监测对象列表
// @Description 按管道与对象类型过滤
// @Tags 监测对象
// @Produce json
// @Param pipeline_id query string false "管道 ID"
// @Param object_type query string false "对象类型" Enums(pipeline_section, crane, compressor)
// @Success 200 {object} Response{data=[]models.Asset}
// @Router /api/v1/objects [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	query := database.DB.Model(&models.Asset{})

	if pipelineID := c.Query("pipeline_id"); pipelineID != "" {
		query = query.Where("pipeline_id = ?", pipelineID)
	}
	if objectType := c.Query("object_type"); objectType != "" {
		query = query.Where("type = ?", objectType)
	}

	var assets []models.Asset
	if err := query.Order("id").Find(&assets).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "查询监测对象失败"))
		return
	}
	Success(c, assets)
}

// YearSummary 按年聚合的检测历史
type YearSummary struct {
	Year             int `json:"year"`
	TotalInspections int `json:"total_inspections"`
	DefectsFound     int `json:"defects_found"`
	HighRisk         int `json:"high_risk"`
}

// AssetDetail 对象详情响应
type AssetDetail struct {
	Object           models.Asset        `json:"object"`
	Diagnostics      []models.Inspection `json:"diagnostics"`
	History          []YearSummary       `json:"history"`
	TotalInspections int                 `json:"total_inspections"`
	DefectsCount     int                 `json:"defects_count"`
}

// GetAsset 获取监测对象详情
// @Summary 监测对象详情
// @Description 对象基础信息、全部诊断记录（新的在前）与按年聚合的历史
// @Tags 监测对象
// @Produce json
// @Param id path int true "对象 ID"
// @Success 200 {object} Response{data=AssetDetail}
// @Failure 404 {object} Response "对象不存在"
// @Router /api/v1/objects/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
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

	var diags []models.Inspection
	if err := database.DB.Where("asset_id = ?", asset.ID).
		Order("date DESC, id DESC").Find(&diags).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "查询诊断记录失败"))
		return
	}

	detail := AssetDetail{
		Object:      asset,
		Diagnostics: diags,
		History:     yearlyHistory(diags),
	}
	detail.TotalInspections = len(diags)
	for _, d := range diags {
		if d.DefectFound {
			detail.DefectsCount++
		}
	}
	if detail.Diagnostics == nil {
		detail.Diagnostics = []models.Inspection{}
	}

	Success(c, detail)
}

// yearlyHistory 按年聚合检测次数、缺陷数与高危数
func yearlyHistory(diags []models.Inspection) []YearSummary {
	byYear := map[int]*YearSummary{}
	for _, d := range diags {
		y := d.Date.Year()
		s, ok := byYear[y]
		if !ok {
			s = &YearSummary{Year: y}
			byYear[y] = s
		}
		s.TotalInspections++
		if d.DefectFound {
			s.DefectsFound++
		}
		if d.Label == models.LabelHigh {
			s.HighRisk++
		}
	}

	out := make([]YearSummary, 0, len(byYear))
	for _, s := range byYear {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// MapPoint 地图上的缺陷点（对象的最新一条符合过滤条件的记录）
type MapPoint struct {
	ObjectID          uint     `json:"object_id"`
	ObjectName        string   `json:"object_name"`
	ObjectType        string   `json:"object_type"`
	PipelineID        string   `json:"pipeline_id"`
	Lat               float64  `json:"lat"`
	Lon               float64  `json:"lon"`
	Label             string   `json:"ml_label"`
	Method            string   `json:"method"`
	Date              string   `json:"date"`
	DefectDescription string   `json:"defect_description"`
	QualityGrade      string   `json:"quality_grade"`
	Depth             *float64 `json:"param1"`
}

// PipelineLine 地图上的管道折线，坐标按对象 ID 升序
type PipelineLine struct {
	PipelineID  string       `json:"pipeline_id"`
	Name        string       `json:"name"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// MapData 地图数据响应
type MapData struct {
	Points      []MapPoint     `json:"points"`
	Pipelines   []PipelineLine `json:"pipelines"`
	TotalPoints int            `json:"total_points"`
}

// GetMapData 获取地图数据
// @Summary 地图数据
// @Description 每个对象的最新一条符合过滤条件的诊断记录作为点位，外加各管道的折线坐标
// @Tags 监测对象
// @Produce json
// @Param pipeline_id query string false "管道 ID"
// @Param ml_label query string false "危险等级" Enums(normal, medium, high)
// @Param method query string false "检测方法"
// @Param defect_only query bool false "只看缺陷（默认 true）"
// @Success 200 {object} Response{data=MapData}
// @Router /api/v1/map-data [get]
func (h *AssetHandler) GetMapData(c *gin.Context) {
	query := database.DB.Model(&models.Inspection{}).Preload("Asset")

	// 地图默认只展示缺陷
	defectOnly := c.DefaultQuery("defect_only", "true")
	if defectOnly == "true" || defectOnly == "1" {
		query = query.Where("defect_found = ?", true)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}
	if label := c.Query("ml_label"); label != "" {
		query = query.Where("label = ?", label)
	}

	var diags []models.Inspection
	if err := query.Order("date DESC, id DESC").Find(&diags).Error; err != nil {
		InternalError(c, config.SafeErrorMessage(err, "查询诊断记录失败"))
		return
	}

	pipelineFilter := c.Query("pipeline_id")

	// 每个对象只保留最新一条
	seen := map[uint]bool{}
	points := []MapPoint{}
	for _, d := range diags {
		if seen[d.AssetID] {
			continue
		}
		if pipelineFilter != "" && d.Asset.PipelineID != pipelineFilter {
			continue
		}
		seen[d.AssetID] = true
		points = append(points, MapPoint{
			ObjectID:          d.AssetID,
			ObjectName:        d.Asset.Name,
			ObjectType:        d.Asset.Type,
			PipelineID:        d.Asset.PipelineID,
			Lat:               d.Asset.Lat,
			Lon:               d.Asset.Lon,
			Label:             d.Label,
			Method:            d.Method,
			Date:              d.Date.Format("2006-01-02"),
			DefectDescription: d.DefectDescription,
			QualityGrade:      d.QualityGrade,
			Depth:             d.Depth,
		})
	}

	lines, err := pipelineLines()
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "查询管道数据失败"))
		return
	}

	Success(c, MapData{
		Points:      points,
		Pipelines:   lines,
		TotalPoints: len(points),
	})
}

func pipelineLines() ([]PipelineLine, error) {
	var pipelines []models.Pipeline
	if err := database.DB.Order("id").Find(&pipelines).Error; err != nil {
		return nil, err
	}

	lines := []PipelineLine{}
	for _, p := range pipelines {
		var assets []models.Asset
		if err := database.DB.Where("pipeline_id = ?", p.ID).
			Order("id").Find(&assets).Error; err != nil {
			return nil, err
		}
		if len(assets) == 0 {
			continue
		}
		coords := make([][2]float64, 0, len(assets))
		for _, a := range assets {
			coords = append(coords, [2]float64{a.Lat, a.Lon})
		}
		lines = append(lines, PipelineLine{
			PipelineID:  p.ID,
			Name:        p.Name,
			Coordinates: coords,
		})
	}
	return lines, nil
}
