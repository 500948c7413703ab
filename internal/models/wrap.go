package models

import (
	"time"

	"gorm.io/gorm"
)

// Wrap 包装表（包装费不计入积分基数）
type Wrap struct {
	ID        uint           `gorm:"primarykey" json:"id"`                    // 主键
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`  // 包装名称
	Cost      Money          `gorm:"type:decimal(20,2);not null" json:"cost"` // 包装费
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                 // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (Wrap) TableName() string {
	return "wraps"
}
