package models

import (
	"time"
)

// 监测对象类型常量
const (
	AssetTypePipelineSection = "pipeline_section" // 线性管段
	AssetTypeCrane           = "crane"            // 阀室/阀门
	AssetTypeCompressor      = "compressor"       // 压气站
)

// Asset 监测对象模型（管段、阀门、压气站）
type Asset struct {
	ID         uint      `json:"object_id" gorm:"primaryKey"`
	Name       string    `json:"object_name" gorm:"size:100;not null"`
	Type       string    `json:"object_type" gorm:"size:30;index"`
	PipelineID string    `json:"pipeline_id" gorm:"size:20;index;not null"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Asset) TableName() string {
	return "assets"
}

// GetAssetTypes 获取所有合法的对象类型
func GetAssetTypes() []string {
	return []string{
		AssetTypePipelineSection,
		AssetTypeCrane,
		AssetTypeCompressor,
	}
}
