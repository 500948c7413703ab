package models

import (
	"time"

	"gorm.io/gorm"
)

// PointHistory 积分流水表（只追加，不更新不删除）
type PointHistory struct {
	ID        uint           `gorm:"primarykey" json:"id"`                      // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`             // 用户ID
	OrderID   *uint          `gorm:"index" json:"order_id,omitempty"`           // 关联订单ID
	Type      string         `gorm:"index;not null" json:"type"`                // 类型（earned/used/reversed）
	Amount    Money          `gorm:"type:decimal(20,2);not null" json:"amount"` // 积分数（reversed 为负）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (PointHistory) TableName() string {
	return "point_histories"
}
