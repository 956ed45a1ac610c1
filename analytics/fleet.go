package analytics

import (
	"sort"
	"time"

	"integrity/models"
)

// RankedRisk 风险排行中的一项（对象信息 + 预测摘要）
type RankedRisk struct {
	ObjectID           uint    `json:"object_id"`
	ObjectName         string  `json:"object_name"`
	ObjectType         string  `json:"object_type"`
	PipelineID         string  `json:"pipeline_id"`
	RiskProbability    float64 `json:"risk_probability"`
	NextInspectionDate string  `json:"next_inspection_date"`
	RecommendedMethod  string  `json:"recommended_method"`
	Trend              string  `json:"trend"`
	Message            string  `json:"message"`
	CurrentDepth       float64 `json:"current_depth"`
	PredictedDepth     float64 `json:"predicted_depth"`
}

// TopRisks 对全部监测对象运行预测并按风险降序排行。
// 只保留 status=success 的结果；对象按 ID 升序遍历，
// 配合稳定排序使同风险对象的先后可复现。limit <= 0 时返回全部。
func TopRisks(history []models.Inspection, assets []models.Asset, limit int) []RankedRisk {
	ordered := make([]models.Asset, len(assets))
	copy(ordered, assets)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	risks := make([]RankedRisk, 0, len(ordered))
	for _, a := range ordered {
		f := PredictNextFailure(history, a.ID)
		if f.Status != StatusSuccess {
			continue
		}
		risks = append(risks, RankedRisk{
			ObjectID:           a.ID,
			ObjectName:         a.Name,
			ObjectType:         a.Type,
			PipelineID:         a.PipelineID,
			RiskProbability:    f.RiskProbability,
			NextInspectionDate: f.NextInspectionDate,
			RecommendedMethod:  f.RecommendedMethod,
			Trend:              f.Trend,
			Message:            f.Message,
			CurrentDepth:       deref(f.CurrentDepth),
			PredictedDepth:     f.PredictedDepth,
		})
	}

	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].RiskProbability > risks[j].RiskProbability
	})

	if limit > 0 && len(risks) > limit {
		risks = risks[:limit]
	}
	return risks
}

// CriticalObject 管道汇总中的高危对象条目
type CriticalObject struct {
	ObjectID       uint    `json:"object_id"`
	Risk           float64 `json:"risk"`
	NextInspection string  `json:"next_inspection"`
}

// PipelineForecast 管道级预测汇总
type PipelineForecast struct {
	Status                   string           `json:"status"`
	Message                  string           `json:"message,omitempty"`
	PipelineID               string           `json:"pipeline_id,omitempty"`
	TotalObjects             int              `json:"total_objects,omitempty"`
	DefectRate               float64          `json:"defect_rate,omitempty"`
	CriticalObjectsCount     int              `json:"critical_objects_count,omitempty"`
	CriticalObjects          []CriticalObject `json:"critical_objects,omitempty"`
	DefectsLastYear          int              `json:"defects_last_year,omitempty"`
	PredictedDefectsNextYear int              `json:"predicted_defects_next_year,omitempty"`
	Recommendation           string           `json:"recommendation,omitempty"`
}

// ForecastPipeline 汇总整条管道的状态与预测。
// 没有对象或没有历史数据按结构化状态返回而不是报错，
// 这在运维场景里是预期情况。now 显式传入以便测试控制时间窗。
func ForecastPipeline(history []models.Inspection, assets []models.Asset, pipelineID string, now time.Time) PipelineForecast {
	var group []models.Asset
	for _, a := range assets {
		if a.PipelineID == pipelineID {
			group = append(group, a)
		}
	}
	if len(group) == 0 {
		return PipelineForecast{Status: StatusError, Message: "该管道下没有监测对象"}
	}

	inGroup := make(map[uint]bool, len(group))
	for _, a := range group {
		inGroup[a.ID] = true
	}

	var diags []models.Inspection
	for _, rec := range history {
		if inGroup[rec.AssetID] {
			diags = append(diags, rec)
		}
	}
	if len(diags) == 0 {
		return PipelineForecast{Status: StatusError, Message: "该管道没有诊断数据"}
	}

	// 缺陷率 = 有缺陷记录的对象数 / 对象总数
	defectAssets := map[uint]bool{}
	for _, rec := range diags {
		if rec.DefectFound {
			defectAssets[rec.AssetID] = true
		}
	}
	// 档位判断用原始缺陷率，仅展示字段做舍入，避免边界值被舍入挪档
	defectRate := float64(len(defectAssets)) / float64(len(group))

	// 高危对象：风险 > 0.6，按风险降序，保留前 10
	sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	var critical []CriticalObject
	for _, a := range group {
		f := PredictNextFailure(history, a.ID)
		if f.Status == StatusSuccess && f.RiskProbability > 0.6 {
			critical = append(critical, CriticalObject{
				ObjectID:       a.ID,
				Risk:           f.RiskProbability,
				NextInspection: f.NextInspectionDate,
			})
		}
	}
	sort.SliceStable(critical, func(i, j int) bool { return critical[i].Risk > critical[j].Risk })
	criticalCount := len(critical)
	if len(critical) > 10 {
		critical = critical[:10]
	}

	// 最近一年缺陷数，下一年按固定 +10% 劣化假设外推（有意保留的朴素估计）
	cutoff := now.AddDate(0, 0, -365)
	defectsLastYear := 0
	for _, rec := range diags {
		if rec.DefectFound && rec.Date.After(cutoff) {
			defectsLastYear++
		}
	}
	predictedNextYear := int(float64(defectsLastYear) * 1.1)

	return PipelineForecast{
		Status:                   StatusSuccess,
		PipelineID:               pipelineID,
		TotalObjects:             len(group),
		DefectRate:               round2(defectRate),
		CriticalObjectsCount:     criticalCount,
		CriticalObjects:          critical,
		DefectsLastYear:          defectsLastYear,
		PredictedDefectsNextYear: predictedNextYear,
		Recommendation:           pipelineRecommendation(defectRate, criticalCount),
	}
}

// pipelineRecommendation 按缺陷率与高危对象数给出四档固定建议
func pipelineRecommendation(defectRate float64, criticalCount int) string {
	switch {
	case defectRate > 0.5 || criticalCount > 10:
		return "需要大规模检修与更换计划"
	case defectRate > 0.3 || criticalCount > 5:
		return "需要重点关注并安排计划外检测"
	case defectRate > 0.15:
		return "常规运行，保持例行监测"
	default:
		return "管道状态良好"
	}
}
