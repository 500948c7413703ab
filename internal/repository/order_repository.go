package repository

import (
	"errors"

	"github.com/shudian-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, details []models.OrderDetail) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByOrderNoForGuest(orderNo, email string) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateShipmentInformation(orderID uint, info *models.ShipmentInformation) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) withAssociations(query *gorm.DB) *gorm.DB {
	return query.Preload("Details").Preload("Information").Preload("Payments")
}

// Create 创建订单与订单明细
func (r *GormOrderRepository) Create(order *models.Order, details []models.OrderDetail) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range details {
		details[i].OrderID = order.ID
	}
	if len(details) > 0 {
		if err := r.db.Create(&details).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withAssociations(r.db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单编号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.withAssociations(r.db).Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser 获取用户订单详情
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.withAssociations(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNoForGuest 获取游客订单（订单密码在服务层校验）
func (r *GormOrderRepository) GetByOrderNoForGuest(orderNo, email string) (*models.Order, error) {
	var order models.Order
	if err := r.withAssociations(r.db).
		Where("order_no = ? AND user_id = 0 AND guest_email = ?", orderNo, email).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser 获取用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	if filter.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}
	return r.listOrders(query, filter)
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.GuestEmail != "" {
		query = query.Where("guest_email = ?", filter.GuestEmail)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return r.listOrders(query, filter)
}

// listOrders 附加状态投影过滤并执行分页查询
func (r *GormOrderRepository) listOrders(query *gorm.DB, filter OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" {
		// 订单状态是配送单状态的投影，过滤时穿透到 shipments
		shipmentIDs := r.db.Model(&models.Shipment{}).Select("id").Where("status = ?", filter.Status)
		orderIDs := r.db.Model(&models.OrderDetail{}).Select("order_id").Where("shipment_id IN (?)", shipmentIDs)
		query = query.Where("id IN (?)", orderIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = query.Scopes(paginate(filter.Page, filter.PageSize))
	if err := r.withAssociations(query).Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateShipmentInformation 管理端显式更新收货信息
func (r *GormOrderRepository) UpdateShipmentInformation(orderID uint, info *models.ShipmentInformation) error {
	return r.db.Model(&models.ShipmentInformation{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"receiver_name":    info.ReceiverName,
			"receiver_postal":  info.ReceiverPostal,
			"receiver_address": info.ReceiverAddress,
			"receiver_phone":   info.ReceiverPhone,
			"customer_request": info.CustomerRequest,
		}).Error
}
