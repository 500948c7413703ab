package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 支付记录
// PaymentKey 唯一索引用于拦截同一支付的重复提交
type Payment struct {
	ID         uint           `gorm:"primarykey" json:"id"`                      // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`            // 订单ID
	PaymentKey string         `gorm:"uniqueIndex;not null" json:"payment_key"`   // 支付网关流水号
	Amount     Money          `gorm:"type:decimal(20,2);not null" json:"amount"` // 支付金额
	Status     string         `gorm:"index;not null" json:"status"`              // 支付状态
	PaidAt     *time.Time     `gorm:"index" json:"paid_at"`                      // 支付时间
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
