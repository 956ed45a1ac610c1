package analytics

import (
	"math"
	"sort"

	"integrity/models"

	"gonum.org/v1/gonum/stat"
)

// 预测状态。数据不足是一等返回值而不是错误，
// 仪表盘后端的约定是永远给出答案、从不崩溃。
const (
	StatusSuccess          = "success"
	StatusInsufficientData = "insufficient_data"
	StatusError            = "error"
)

// 趋势分类
const (
	TrendStable     = "stable"
	TrendUnknown    = "unknown"
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// 推荐检测方法分档：基础 / 中级 / 最高精度
const (
	methodBasic    = models.MethodVIK
	methodMidTier  = models.MethodUZK
	methodRigorous = models.MethodMFL
)

// 斜率超过该幅度才认为趋势发生变化
const slopeEpsilon = 0.01

const dateLayout = "2006-01-02"

// Forecast 单个监测对象的失效预测结果，按需计算、不落库
type Forecast struct {
	Status             string   `json:"status"`
	Message            string   `json:"message"`
	NextInspectionDate string   `json:"next_inspection_date,omitempty"`
	RiskProbability    float64  `json:"risk_probability"`
	RecommendedMethod  string   `json:"recommended_method,omitempty"`
	Trend              string   `json:"trend,omitempty"`
	CurrentDepth       *float64 `json:"current_depth,omitempty"`
	PredictedDepth     float64  `json:"predicted_depth,omitempty"`
	Slope              float64  `json:"slope,omitempty"`
	DefectCount        int      `json:"defect_count,omitempty"`
	LastInspection     string   `json:"last_inspection,omitempty"`
}

// PredictNextFailure 预测指定对象下一次危险缺陷的出现。
// 输入为全量诊断历史（显式传入，不读全局状态），按数据充分程度分档：
// 不足 3 条返回 insufficient_data；无缺陷按年度例检；单条缺陷按半年复检；
// 两条以上缺陷对深度做最小二乘回归并外推一年。
func PredictNextFailure(history []models.Inspection, assetID uint) Forecast {
	var records []models.Inspection
	for _, rec := range history {
		if rec.AssetID == assetID {
			records = append(records, rec)
		}
	}

	if len(records) < 3 {
		return Forecast{
			Status:  StatusInsufficientData,
			Message: "数据不足，无法生成预测（至少需要 3 次检测记录）",
		}
	}

	// 按日期排序，同日按 ID（录入顺序）
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date.Equal(records[j].Date) {
			return records[i].ID < records[j].ID
		}
		return records[i].Date.Before(records[j].Date)
	})
	lastInspection := records[len(records)-1].Date

	var defects []models.Inspection
	for _, rec := range records {
		if rec.DefectFound {
			defects = append(defects, rec)
		}
	}

	if len(defects) == 0 {
		return Forecast{
			Status:             StatusSuccess,
			NextInspectionDate: lastInspection.AddDate(0, 0, 365).Format(dateLayout),
			RiskProbability:    0.05,
			RecommendedMethod:  methodBasic,
			Trend:              TrendStable,
			Message:            "对象状态良好，一年后进行例行检测。",
		}
	}

	if len(defects) < 2 {
		return Forecast{
			Status:             StatusSuccess,
			NextInspectionDate: lastInspection.AddDate(0, 0, 180).Format(dateLayout),
			RiskProbability:    0.3,
			RecommendedMethod:  methodMidTier,
			Trend:              TrendUnknown,
			Message:            "发现单个缺陷，建议 6 个月后复检。",
		}
	}

	// 以首个缺陷日期为原点，对深度做最小二乘回归
	origin := defects[0].Date
	xs := make([]float64, len(defects))
	ys := make([]float64, len(defects))
	for i, rec := range defects {
		xs[i] = rec.Date.Sub(origin).Hours() / 24
		ys[i] = deref(rec.Depth)
	}

	// 全部缺陷同日时 x 方差为零，回归无解（NaN），视为深度无变化
	var alpha, slope float64
	if xs[len(xs)-1] == xs[0] {
		alpha = stat.Mean(ys, nil)
	} else {
		alpha, slope = stat.LinearRegression(xs, ys, nil, false)
	}

	// 外推到最近一次缺陷记录之后 365 天
	predictedDepth := alpha + slope*(xs[len(xs)-1]+365)

	trend := TrendStable
	if slope > slopeEpsilon {
		trend = TrendIncreasing
	} else if slope < -slopeEpsilon {
		trend = TrendDecreasing
	}

	// 取当前深度与外推深度中更坏的一方决定风险档位
	currentDepth := ys[len(ys)-1]
	var (
		risk     float64
		interval int
		method   string
		message  string
	)
	switch {
	case predictedDepth > 50 || currentDepth > 40:
		risk, interval, method = 0.85, 90, methodRigorous
		message = "高风险！需要立即安排检测"
	case predictedDepth > 30 || currentDepth > 25:
		risk, interval, method = 0.65, 180, methodMidTier
		message = "中等风险，需要计划外检测"
	default:
		risk, interval, method = 0.25, 365, methodBasic
		message = "低风险，按计划例行检测"
	}

	return Forecast{
		Status:             StatusSuccess,
		NextInspectionDate: lastInspection.AddDate(0, 0, interval).Format(dateLayout),
		RiskProbability:    round2(risk),
		RecommendedMethod:  method,
		Trend:              trend,
		Message:            message,
		CurrentDepth:       ptr(round2(currentDepth)),
		PredictedDepth:     round2(math.Max(0, predictedDepth)),
		Slope:              round4(slope),
		DefectCount:        len(defects),
		LastInspection:     lastInspection.Format(dateLayout),
	}
}
