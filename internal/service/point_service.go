package service

import (
	"time"

	"github.com/shudian-next/internal/constants"
	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PointService 积分服务
// 流水只追加：积分变动全部以新记录表达，不回改历史
type PointService struct {
	pointHistoryRepo repository.PointHistoryRepository
	userRepo         repository.UserRepository
	wrapRepo         repository.WrapRepository
	orderRepo        repository.OrderRepository
}

// NewPointService 创建积分服务
func NewPointService(pointHistoryRepo repository.PointHistoryRepository, userRepo repository.UserRepository, wrapRepo repository.WrapRepository, orderRepo repository.OrderRepository) *PointService {
	return &PointService{
		pointHistoryRepo: pointHistoryRepo,
		userRepo:         userRepo,
		wrapRepo:         wrapRepo,
		orderRepo:        orderRepo,
	}
}

// Accrue 订单履约完成时计提积分
// 游客订单不计提；等级缺失返回 ErrAccrualPolicyMissing，由调用方上报运营
// 计提基数 = 订单总额 − 包装费合计，积分取整
func (s *PointService) Accrue(tx *gorm.DB, order *models.Order) error {
	if order == nil || order.IsGuest() {
		return nil
	}

	historyRepo := s.pointHistoryRepo.WithTx(tx)
	count, err := historyRepo.CountByOrderAndType(order.ID, constants.PointHistoryTypeEarned)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Warnw("point_accrual_duplicate_skipped", "order_id", order.ID, "user_id", order.UserID)
		return nil
	}

	rank, err := s.userRepo.GetCurrentRank(order.UserID, time.Now())
	if err != nil {
		return err
	}
	if rank == nil {
		return ErrAccrualPolicyMissing
	}

	wrapCost, err := s.wrapRepo.TotalCostByOrder(order.ID)
	if err != nil {
		return err
	}

	net := order.TotalAmount.Decimal.Sub(wrapCost.Decimal)
	points := net.Mul(rank.PointRate).Round(0)
	if points.IsNegative() {
		points = decimal.Zero
	}

	orderID := order.ID
	history := &models.PointHistory{
		UserID:  order.UserID,
		OrderID: &orderID,
		Type:    constants.PointHistoryTypeEarned,
		Amount:  models.NewMoneyFromDecimal(points),
	}
	if err := historyRepo.Create(history); err != nil {
		return err
	}

	logger.Infow("points_accrued",
		"order_id", order.ID,
		"user_id", order.UserID,
		"rank", rank.RankName,
		"points", points.String(),
	)
	return nil
}

// Reverse 冲正订单已计提的积分（取消/退款）
// 未计提过则无事发生；重复冲正被已存在的 reversed 记录拦截
func (s *PointService) Reverse(tx *gorm.DB, order *models.Order) error {
	if order == nil || order.IsGuest() {
		return nil
	}

	historyRepo := s.pointHistoryRepo.WithTx(tx)
	earned, err := historyRepo.SumEarnedByOrder(order.ID)
	if err != nil {
		return err
	}
	if earned.IsZero() {
		return nil
	}
	reversedCount, err := historyRepo.CountByOrderAndType(order.ID, constants.PointHistoryTypeReversed)
	if err != nil {
		return err
	}
	if reversedCount > 0 {
		return nil
	}

	orderID := order.ID
	history := &models.PointHistory{
		UserID:  order.UserID,
		OrderID: &orderID,
		Type:    constants.PointHistoryTypeReversed,
		Amount:  models.NewMoneyFromDecimal(earned.Decimal.Neg()),
	}
	if err := historyRepo.Create(history); err != nil {
		return err
	}

	logger.Infow("points_reversed", "order_id", order.ID, "user_id", order.UserID, "points", earned.String())
	return nil
}

// ReverseByOrder 按订单ID冲正积分（队列任务入口）
func (s *PointService) ReverseByOrder(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		return s.Reverse(tx, order)
	})
}
