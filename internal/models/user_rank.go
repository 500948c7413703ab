package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserRank 会员等级历史表
// 当前等级取 effective_from 不晚于当前时间的最新一条；缺失视为积分策略配置错误
type UserRank struct {
	ID            uint            `gorm:"primarykey" json:"id"`                          // 主键
	UserID        uint            `gorm:"index;not null" json:"user_id"`                 // 用户ID
	RankName      string          `gorm:"type:varchar(40);not null" json:"rank_name"`    // 等级名称
	PointRate     decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"point_rate"`  // 积分比例（0.01 = 1%）
	EffectiveFrom time.Time       `gorm:"index;not null" json:"effective_from"`          // 生效时间
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`                       // 创建时间
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (UserRank) TableName() string {
	return "user_ranks"
}
