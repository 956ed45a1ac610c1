package models

import (
	"time"
)

// 通知级别常量
const (
	NotifyInfo    = "info"
	NotifyWarning = "warning"
	NotifyError   = "error"
	NotifySuccess = "success"
)

// Notification 通知模型
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Message   string    `json:"message" gorm:"size:500;not null"`
	Type      string    `json:"type" gorm:"size:20;index;default:info"`
	IsRead    bool      `json:"is_read" gorm:"index;default:false"`
	Metadata  string    `json:"metadata" gorm:"type:text"` // JSON 字符串，附加上下文
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (Notification) TableName() string {
	return "notifications"
}
