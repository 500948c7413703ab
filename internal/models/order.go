package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 订单不保存履约状态列，Status() 按配送单投影（单配送单策略）
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                    // 主键
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`                    // 订单编号
	UserID        uint           `gorm:"index;not null" json:"user_id,omitempty"`                 // 用户ID（游客订单为 0）
	GuestName     string         `gorm:"type:varchar(100)" json:"guest_name,omitempty"`           // 游客姓名
	GuestEmail    string         `gorm:"index" json:"guest_email,omitempty"`                      // 游客邮箱
	GuestPhone    string         `gorm:"type:varchar(40)" json:"guest_phone,omitempty"`           // 游客电话
	GuestPassword string         `gorm:"type:varchar(200)" json:"-"`                              // 游客订单密码哈希
	DeliveryDate  *time.Time     `json:"delivery_date,omitempty"`                                 // 期望配送日期
	DeliveryFee   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee"` // 运费
	TotalAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`  // 下单时锁定的订单总额（含运费）
	PointsSpent   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"points_spent"`  // 使用积分
	OrderedAt     time.Time      `gorm:"index" json:"ordered_at"`                                 // 下单时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间

	Details     []OrderDetail        `gorm:"foreignKey:OrderID" json:"details,omitempty"`     // 订单明细
	Information *ShipmentInformation `gorm:"foreignKey:OrderID" json:"information,omitempty"` // 收货信息
	Payments    []Payment            `gorm:"foreignKey:OrderID" json:"payments,omitempty"`    // 支付记录
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsGuest 判断是否为游客订单
func (o *Order) IsGuest() bool {
	return o != nil && o.UserID == 0
}

// Status 返回订单履约状态（按配送单投影，明细与配送单同步推进）
func (o *Order) Status() ShipmentStatus {
	if o == nil || len(o.Details) == 0 {
		return ""
	}
	return o.Details[0].Status
}

// ShipmentID 返回订单对应的配送单ID（单配送单策略：首条明细为准）
func (o *Order) ShipmentID() uint {
	if o == nil || len(o.Details) == 0 {
		return 0
	}
	return o.Details[0].ShipmentID
}
