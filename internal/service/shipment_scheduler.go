package service

import (
	"context"
	"sync"
	"time"

	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"
)

// ShipmentScheduler 配送自动完成调度器
// 进程内索引：配送单ID → 发货时间；重启后由 Rebuild 从配送中订单重建
type ShipmentScheduler struct {
	mu      sync.Mutex
	entries map[uint]time.Time

	shipmentRepo  repository.ShipmentRepository
	dwell         time.Duration
	sweepInterval time.Duration

	// complete 由配送服务绑定，经同一状态机完成订单
	complete func(orderID uint) error
}

// NewShipmentScheduler 创建调度器
func NewShipmentScheduler(shipmentRepo repository.ShipmentRepository, dwell, sweepInterval time.Duration) *ShipmentScheduler {
	if dwell <= 0 {
		dwell = 24 * time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = 30 * time.Minute
	}
	return &ShipmentScheduler{
		entries:       make(map[uint]time.Time),
		shipmentRepo:  shipmentRepo,
		dwell:         dwell,
		sweepInterval: sweepInterval,
	}
}

// BindCompleter 绑定完成回调
func (s *ShipmentScheduler) BindCompleter(complete func(orderID uint) error) {
	s.complete = complete
}

// Register 登记发货，开始计时
func (s *ShipmentScheduler) Register(shipmentID uint, shippedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[shipmentID] = shippedAt
}

// Deregister 移除登记（回退或完成时）
func (s *ShipmentScheduler) Deregister(shipmentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, shipmentID)
}

// Registered 判断配送单是否在登记中
func (s *ShipmentScheduler) Registered(shipmentID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[shipmentID]
	return ok
}

// Rebuild 从数据库重建登记表（启动时调用）
// 登记表是配送中订单的派生索引，丢失后可随时重建
func (s *ShipmentScheduler) Rebuild() error {
	shipments, err := s.shipmentRepo.ListByStatus(models.ShipmentShipping)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[uint]time.Time, len(shipments))
	for _, shipment := range shipments {
		if shipment.ShippedAt == nil {
			logger.Warnw("scheduler_rebuild_missing_shipped_at", "shipment_id", shipment.ID)
			continue
		}
		s.entries[shipment.ID] = *shipment.ShippedAt
	}
	logger.Infow("scheduler_rebuilt", "entries", len(s.entries))
	return nil
}

// Sweep 扫描一轮，完成发货超过停留时长的配送单
func (s *ShipmentScheduler) Sweep(now time.Time) {
	if s.complete == nil {
		logger.Warnw("scheduler_completer_unbound")
		return
	}
	due := s.collectDue(now)
	for _, shipmentID := range due {
		orderID, err := s.shipmentRepo.OrderIDByShipment(shipmentID)
		if err != nil {
			logger.Errorw("scheduler_resolve_order_failed", "shipment_id", shipmentID, "error", err)
			continue
		}
		if orderID == 0 {
			s.Deregister(shipmentID)
			continue
		}
		if err := s.complete(orderID); err != nil {
			logger.Errorw("scheduler_complete_failed", "shipment_id", shipmentID, "order_id", orderID, "error", err)
		}
	}
}

func (s *ShipmentScheduler) collectDue(now time.Time) []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []uint
	for shipmentID, shippedAt := range s.entries {
		if now.Sub(shippedAt) > s.dwell {
			due = append(due, shipmentID)
		}
	}
	return due
}

// Run 周期执行扫描，直到 ctx 取消
func (s *ShipmentScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
