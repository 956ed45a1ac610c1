package models

import (
	"time"
)

// 导入状态常量
const (
	ImportStatusSuccess = "SUCCESS"
	ImportStatusFailed  = "FAILED"
	ImportStatusError   = "ERROR"
)

// ImportLog 数据导入日志
type ImportLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BatchID   string    `json:"batch_id" gorm:"size:36;index"` // 导入批次 UUID
	Filename  string    `json:"filename" gorm:"size:255"`
	Table     string    `json:"table" gorm:"size:30"` // objects / diagnostics
	Status    string    `json:"status" gorm:"size:10;index"`
	Rows      int       `json:"rows"`
	Errors    string    `json:"errors" gorm:"type:text"` // JSON 数组字符串
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (ImportLog) TableName() string {
	return "import_logs"
}
