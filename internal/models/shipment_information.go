package models

import (
	"time"

	"gorm.io/gorm"
)

// ShipmentInformation 收货信息表（与订单 1:1）
// 下单后只允许管理端显式修改
type ShipmentInformation struct {
	ID              uint           `gorm:"primarykey" json:"id"`                            // 主键
	OrderID         uint           `gorm:"uniqueIndex;not null" json:"order_id"`            // 订单ID
	ReceiverName    string         `gorm:"type:varchar(100);not null" json:"receiver_name"` // 收货人姓名
	ReceiverPostal  string         `gorm:"type:varchar(20)" json:"receiver_postal"`         // 邮政编码
	ReceiverAddress string         `gorm:"type:varchar(500);not null" json:"receiver_address"` // 收货地址
	ReceiverPhone   string         `gorm:"type:varchar(40)" json:"receiver_phone"`          // 收货人电话
	CustomerRequest string         `gorm:"type:varchar(500)" json:"customer_request"`       // 配送备注
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (ShipmentInformation) TableName() string {
	return "shipment_informations"
}
