package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment 配送单表（履约状态的唯一来源）
// ShippedAt 在进入 shipping 时写入，回退到 pending 时清空
type Shipment struct {
	ID          uint           `gorm:"primarykey" json:"id"`                          // 主键
	TrackingNo  string         `gorm:"type:varchar(100)" json:"tracking_no"`          // 运单号（shipping 前为空）
	CarrierCode string         `gorm:"type:varchar(40)" json:"carrier_code"`          // 承运商编码
	Status      ShipmentStatus `gorm:"index;not null" json:"status"`                  // 配送状态
	ShippedAt   *time.Time     `gorm:"index" json:"shipped_at,omitempty"`             // 发货时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间

	Details []OrderDetail `gorm:"foreignKey:ShipmentID" json:"details,omitempty"` // 关联明细
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipments"
}
