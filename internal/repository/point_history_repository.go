package repository

import (
	"github.com/shudian-next/internal/constants"
	"github.com/shudian-next/internal/models"

	"gorm.io/gorm"
)

// PointHistoryRepository 积分流水数据访问接口
type PointHistoryRepository interface {
	Create(history *models.PointHistory) error
	CountByOrderAndType(orderID uint, historyType string) (int64, error)
	SumEarnedByOrder(orderID uint) (models.Money, error)
	ListByUser(userID uint, page, pageSize int) ([]models.PointHistory, int64, error)
	WithTx(tx *gorm.DB) *GormPointHistoryRepository
}

// GormPointHistoryRepository GORM 实现
type GormPointHistoryRepository struct {
	db *gorm.DB
}

// NewPointHistoryRepository 创建积分流水仓库
func NewPointHistoryRepository(db *gorm.DB) *GormPointHistoryRepository {
	return &GormPointHistoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPointHistoryRepository) WithTx(tx *gorm.DB) *GormPointHistoryRepository {
	if tx == nil {
		return r
	}
	return &GormPointHistoryRepository{db: tx}
}

// Create 追加积分流水
func (r *GormPointHistoryRepository) Create(history *models.PointHistory) error {
	return r.db.Create(history).Error
}

// CountByOrderAndType 统计订单下某类型流水条数（发放幂等判定用）
func (r *GormPointHistoryRepository) CountByOrderAndType(orderID uint, historyType string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PointHistory{}).
		Where("order_id = ? AND type = ?", orderID, historyType).
		Count(&count).Error
	return count, err
}

// SumEarnedByOrder 汇总订单已发放积分（冲销时取负）
func (r *GormPointHistoryRepository) SumEarnedByOrder(orderID uint) (models.Money, error) {
	var row struct {
		Total models.Money
	}
	err := r.db.Model(&models.PointHistory{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("order_id = ? AND type = ?", orderID, constants.PointHistoryTypeEarned).
		Take(&row).Error
	if err != nil {
		return models.ZeroMoney(), err
	}
	return row.Total, nil
}

// ListByUser 获取用户积分流水
func (r *GormPointHistoryRepository) ListByUser(userID uint, page, pageSize int) ([]models.PointHistory, int64, error) {
	query := r.db.Model(&models.PointHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var histories []models.PointHistory
	query = query.Scopes(paginate(page, pageSize))
	if err := query.Order("id desc").Find(&histories).Error; err != nil {
		return nil, 0, err
	}
	return histories, total, nil
}
