package models

import (
	"time"
)

// 检测方法常量（固定枚举集合）
const (
	MethodVIK   = "VIK"   // 目视检测
	MethodPVK   = "PVK"   // 渗透检测
	MethodMPK   = "MPK"   // 磁粉检测
	MethodUZK   = "UZK"   // 超声波检测
	MethodRGK   = "RGK"   // 射线检测
	MethodTVK   = "TVK"   // 红外热成像
	MethodVIBRO = "VIBRO" // 振动检测
	MethodMFL   = "MFL"   // 漏磁内检测
	MethodTFI   = "TFI"   // 横向漏磁检测
	MethodGEO   = "GEO"   // 几何变形检测
	MethodUTWM  = "UTWM"  // 超声测厚
	MethodAE    = "AE"    // 声发射检测
	MethodTOFD  = "TOFD"  // 衍射时差超声
)

// 质量评级常量（有序枚举，从轻到重）
const (
	GradeSatisfactory = "satisfactory"
	GradeAcceptable   = "acceptable"
	GradeNeedsAction  = "needs_action"
	GradeUnacceptable = "unacceptable"
)

// 危险等级常量（有序枚举，从低到高）
const (
	LabelNormal = "normal"
	LabelMedium = "medium"
	LabelHigh   = "high"
)

// Inspection 诊断记录模型，一次对监测对象的检测观测。
// 记录创建后不可变，同一对象的历史按日期（同日按 ID）构成追加序列。
type Inspection struct {
	ID                uint      `json:"diag_id" gorm:"primaryKey"`
	AssetID           uint      `json:"object_id" gorm:"index;not null"`
	Method            string    `json:"method" gorm:"size:10;index;not null"`
	Date              time.Time `json:"date" gorm:"index;not null"`
	Temperature       *float64  `json:"temperature"`  // 环境温度（℃，可空）
	Humidity          *float64  `json:"humidity"`     // 相对湿度（%，可空）
	Illumination      *float64  `json:"illumination"` // 照度（lx，可空）
	DefectFound       bool      `json:"defect_found" gorm:"index"`
	DefectDescription string    `json:"defect_description" gorm:"size:255"`
	QualityGrade      string    `json:"quality_grade" gorm:"size:20"`
	Depth             *float64  `json:"param1"` // 缺陷深度（占壁厚百分比，仅缺陷记录有值）
	Length            *float64  `json:"param2"` // 缺陷长度（mm）
	Width             *float64  `json:"param3"` // 缺陷宽度（mm）
	Label             string    `json:"ml_label" gorm:"size:10;index"`
	CreatedAt         time.Time `json:"created_at"`
	Asset             Asset     `json:"-" gorm:"foreignKey:AssetID"`
}

// TableName 设置表名
func (Inspection) TableName() string {
	return "inspections"
}

// GetMethods 获取所有合法的检测方法
func GetMethods() []string {
	return []string{
		MethodVIK, MethodPVK, MethodMPK, MethodUZK, MethodRGK, MethodTVK,
		MethodVIBRO, MethodMFL, MethodTFI, MethodGEO, MethodUTWM, MethodAE, MethodTOFD,
	}
}

// GetCriticalMethods 获取高精度（关键）检测方法子集
func GetCriticalMethods() []string {
	return []string{MethodUZK, MethodRGK, MethodMFL, MethodUTWM, MethodTFI}
}

// GetQualityGrades 获取所有合法的质量评级
func GetQualityGrades() []string {
	return []string{GradeSatisfactory, GradeAcceptable, GradeNeedsAction, GradeUnacceptable}
}

// GetLabels 获取所有合法的危险等级
func GetLabels() []string {
	return []string{LabelNormal, LabelMedium, LabelHigh}
}

// QualityScore 质量评级的序数映射（1-4），未知评级按 1 处理
func QualityScore(grade string) float64 {
	switch grade {
	case GradeSatisfactory:
		return 1
	case GradeAcceptable:
		return 2
	case GradeNeedsAction:
		return 3
	case GradeUnacceptable:
		return 4
	default:
		return 1
	}
}
