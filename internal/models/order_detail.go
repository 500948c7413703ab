package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderDetail 订单明细表
// Amount 为下单时销售单价 × 数量的快照，后续改价不影响
type OrderDetail struct {
	ID             uint           `gorm:"primarykey" json:"id"`                              // 主键
	OrderID        uint           `gorm:"index;not null" json:"order_id"`                    // 订单ID
	BookID         uint           `gorm:"index;not null" json:"book_id"`                     // 图书ID
	ShipmentID     uint           `gorm:"index;not null" json:"shipment_id"`                 // 配送单ID
	WrapID         *uint          `gorm:"index" json:"wrap_id,omitempty"`                    // 包装ID
	CouponID       *uint          `gorm:"index" json:"coupon_id,omitempty"`                  // 优惠券ID
	Status         ShipmentStatus `gorm:"index;not null" json:"status"`                      // 明细状态（当前与配送单同步推进）
	Amount         Money          `gorm:"type:decimal(20,2);not null" json:"amount"`         // 明细金额快照
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 明细优惠金额
	Quantity       int            `gorm:"not null" json:"quantity"`                          // 数量
	RefundedAt     *time.Time     `json:"refunded_at,omitempty"`                             // 退款/取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (OrderDetail) TableName() string {
	return "order_details"
}
