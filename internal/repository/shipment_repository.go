package repository

import (
	"errors"

	"github.com/shudian-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShipmentRepository 配送单数据访问接口
type ShipmentRepository interface {
	Create(shipment *models.Shipment) error
	GetByID(id uint) (*models.Shipment, error)
	GetByOrderID(orderID uint) (*models.Shipment, error)
	GetByOrderIDForUpdate(orderID uint) (*models.Shipment, error)
	UpdateStatus(id uint, status models.ShipmentStatus, updates map[string]interface{}) error
	UpdateDetailStatus(shipmentID uint, status models.ShipmentStatus, updates map[string]interface{}) error
	ListByStatus(status models.ShipmentStatus) ([]models.Shipment, error)
	OrderIDByShipment(shipmentID uint) (uint, error)
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository GORM 实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建配送单仓库
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// Create 创建配送单
func (r *GormShipmentRepository) Create(shipment *models.Shipment) error {
	return r.db.Create(shipment).Error
}

// GetByID 根据 ID 获取配送单
func (r *GormShipmentRepository) GetByID(id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.Preload("Details").First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByOrderID 获取订单对应的配送单（单配送单策略：首条明细为准）
func (r *GormShipmentRepository) GetByOrderID(orderID uint) (*models.Shipment, error) {
	return r.getByOrderID(orderID, false)
}

// GetByOrderIDForUpdate 以行锁获取订单对应的配送单
// 状态迁移必须经由该方法取行，保证同一订单上的并发迁移串行化
func (r *GormShipmentRepository) GetByOrderIDForUpdate(orderID uint) (*models.Shipment, error) {
	return r.getByOrderID(orderID, true)
}

func (r *GormShipmentRepository) getByOrderID(orderID uint, forUpdate bool) (*models.Shipment, error) {
	var detail models.OrderDetail
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").First(&detail).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	query := r.db
	// sqlite 不支持 FOR UPDATE，单写入器本身串行
	if forUpdate && r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var shipment models.Shipment
	if err := query.First(&shipment, detail.ShipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// UpdateStatus 更新配送单状态
func (r *GormShipmentRepository) UpdateStatus(id uint, status models.ShipmentStatus, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Shipment{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateDetailStatus 同步推进配送单下全部明细的状态
func (r *GormShipmentRepository) UpdateDetailStatus(shipmentID uint, status models.ShipmentStatus, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.OrderDetail{}).Where("shipment_id = ?", shipmentID).Updates(updates).Error
}

// ListByStatus 按状态列出配送单（调度器启动重建用）
func (r *GormShipmentRepository) ListByStatus(status models.ShipmentStatus) ([]models.Shipment, error) {
	var shipments []models.Shipment
	if err := r.db.Preload("Details").Where("status = ?", status).Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// OrderIDByShipment 反查配送单所属订单
func (r *GormShipmentRepository) OrderIDByShipment(shipmentID uint) (uint, error) {
	var detail models.OrderDetail
	if err := r.db.Where("shipment_id = ?", shipmentID).Order("id asc").First(&detail).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return detail.OrderID, nil
}
