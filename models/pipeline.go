package models

import (
	"time"
)

// Pipeline 管道模型（监测对象的分组，只读参考数据）
type Pipeline struct {
	ID        string    `json:"pipeline_id" gorm:"primaryKey;size:20"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Pipeline) TableName() string {
	return "pipelines"
}
