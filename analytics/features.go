package analytics

import (
	"integrity/models"
)

// FeatureDim 特征向量维度。训练与推理共用同一特征计算，
// 顺序即模型契约，任何一侧单独改动都会破坏预测结果。
const FeatureDim = 15

// Observation 一次诊断的原始观测值。
// 缺失字段在进入本包前统一补零，特征计算从不拒绝输入。
type Observation struct {
	Depth        float64 // param1 缺陷深度（占壁厚百分比）
	Length       float64 // param2 缺陷长度（mm）
	Width        float64 // param3 缺陷宽度（mm）
	QualityGrade string
	DefectFound  bool
	Method       string
	Temperature  float64 // ℃
	Humidity     float64 // %
	Illumination float64 // lx
}

// FromInspection 将诊断记录转换为观测值，可空字段按 0 处理
func FromInspection(rec models.Inspection) Observation {
	return Observation{
		Depth:        deref(rec.Depth),
		Length:       deref(rec.Length),
		Width:        deref(rec.Width),
		QualityGrade: rec.QualityGrade,
		DefectFound:  rec.DefectFound,
		Method:       rec.Method,
		Temperature:  deref(rec.Temperature),
		Humidity:     deref(rec.Humidity),
		Illumination: deref(rec.Illumination),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr(v float64) *float64 {
	return &v
}

// Features 计算 15 维特征向量。
// 无缺陷记录的尺寸参数强制归零，残留测量值不参与特征。
func Features(o Observation) []float64 {
	depth, length, width := o.Depth, o.Length, o.Width
	if !o.DefectFound {
		depth, length, width = 0, 0, 0
	}

	defectFound := 0.0
	if o.DefectFound {
		defectFound = 1
	}

	// 缺陷面积与体积，任一因子非正则为 0
	area := 0.0
	if length > 0 && width > 0 {
		area = length * width
	}
	volume := 0.0
	if depth > 0 && length > 0 && width > 0 {
		volume = depth * length * width
	}

	isCriticalMethod := 0.0
	for _, m := range models.GetCriticalMethods() {
		if o.Method == m {
			isCriticalMethod = 1
			break
		}
	}

	// 环境读数归一化：温度按 -50~+50 区间，湿度按百分比，照度按千 lx
	tempNorm := (o.Temperature + 50) / 100
	humidityNorm := o.Humidity / 100
	illuminationNorm := o.Illumination / 1000

	depthToArea := 0.0
	if area > 0 {
		depthToArea = depth / (area + 1)
	}

	shapeIndex := 1.0
	if width > 0 {
		shapeIndex = length / width
	}

	isDeepDefect := 0.0
	if depth > 30 { // 金属损失超过壁厚 30%
		isDeepDefect = 1
	}
	isLargeDefect := 0.0
	if area > 10000 { // 超过 100x100 mm
		isLargeDefect = 1
	}

	return []float64{
		depth,                           // 1. 缺陷深度
		length,                          // 2. 缺陷长度
		width,                           // 3. 缺陷宽度
		models.QualityScore(o.QualityGrade), // 4. 质量评级序数 (1-4)
		defectFound,                     // 5. 是否发现缺陷
		area,                            // 6. 缺陷面积
		volume,                          // 7. 缺陷体积
		isCriticalMethod,                // 8. 是否关键检测方法
		tempNorm,                        // 9. 温度（归一化）
		humidityNorm,                    // 10. 湿度（归一化）
		illuminationNorm,                // 11. 照度（归一化）
		depthToArea,                     // 12. 深度/面积比
		shapeIndex,                      // 13. 形状指数（长/宽）
		isDeepDefect,                    // 14. 深缺陷标志
		isLargeDefect,                   // 15. 大面积缺陷标志
	}
}
