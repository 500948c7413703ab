package models

import (
	"time"

	"gorm.io/gorm"
)

// Book 图书表（目录协作方的本地投影，订单侧只读取销售价）
type Book struct {
	ID        uint           `gorm:"primarykey" json:"id"`                         // 主键
	Title     string         `gorm:"type:varchar(200);not null" json:"title"`      // 书名
	SalePrice Money          `gorm:"type:decimal(20,2);not null" json:"sale_price"` // 当前销售价
	Stock     int            `gorm:"not null;default:0" json:"stock"`              // 库存
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}
