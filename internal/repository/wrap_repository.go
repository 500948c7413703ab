package repository

import (
	"errors"

	"github.com/shudian-next/internal/models"

	"gorm.io/gorm"
)

// WrapRepository 包装数据访问接口
type WrapRepository interface {
	GetByID(id uint) (*models.Wrap, error)
	TotalCostByOrder(orderID uint) (models.Money, error)
}

// GormWrapRepository GORM 实现
type GormWrapRepository struct {
	db *gorm.DB
}

// NewWrapRepository 创建包装仓库
func NewWrapRepository(db *gorm.DB) *GormWrapRepository {
	return &GormWrapRepository{db: db}
}

// GetByID 根据 ID 获取包装
func (r *GormWrapRepository) GetByID(id uint) (*models.Wrap, error) {
	var wrap models.Wrap
	if err := r.db.First(&wrap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wrap, nil
}

// TotalCostByOrder 汇总订单全部明细的包装费（积分基数扣减项）
func (r *GormWrapRepository) TotalCostByOrder(orderID uint) (models.Money, error) {
	var row struct {
		Total models.Money
	}
	err := r.db.Model(&models.OrderDetail{}).
		Select("COALESCE(SUM(wraps.cost * order_details.quantity), 0) AS total").
		Joins("JOIN wraps ON wraps.id = order_details.wrap_id").
		Where("order_details.order_id = ? AND order_details.wrap_id IS NOT NULL", orderID).
		Take(&row).Error
	if err != nil {
		return models.ZeroMoney(), err
	}
	return row.Total, nil
}
