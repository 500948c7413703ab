package repository

import (
	"errors"
	"time"

	"github.com/shudian-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetCurrentRank(userID uint, at time.Time) (*models.UserRank, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetCurrentRank 获取用户当前等级（生效时间不晚于 at 的最新一条）
// 无等级历史返回 nil，由调用方按策略配置错误处理
func (r *GormUserRepository) GetCurrentRank(userID uint, at time.Time) (*models.UserRank, error) {
	var rank models.UserRank
	if err := r.db.Where("user_id = ? AND effective_from <= ?", userID, at).
		Order("effective_from desc").
		First(&rank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rank, nil
}
