package repository

import (
	"errors"

	"github.com/shudian-next/internal/models"

	"gorm.io/gorm"
)

// BookRepository 图书数据访问接口（订单侧只读）
type BookRepository interface {
	GetByID(id uint) (*models.Book, error)
	ListByIDs(ids []uint) ([]models.Book, error)
}

// GormBookRepository GORM 实现
type GormBookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓库
func NewBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// GetByID 根据 ID 获取图书
func (r *GormBookRepository) GetByID(id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

// ListByIDs 根据 ID 列表获取图书
func (r *GormBookRepository) ListByIDs(ids []uint) ([]models.Book, error) {
	var books []models.Book
	if len(ids) == 0 {
		return books, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}
