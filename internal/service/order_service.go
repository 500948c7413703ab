package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shudian-next/internal/cache"
	"github.com/shudian-next/internal/constants"
	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OrderService 订单服务
// 支付回调驱动落库：草稿取回、金额复算、单事务写入全部订单实体
type OrderService struct {
	orderRepo        repository.OrderRepository
	bookRepo         repository.BookRepository
	shipmentRepo     repository.ShipmentRepository
	paymentRepo      repository.PaymentRepository
	pointHistoryRepo repository.PointHistoryRepository
	settingService   *SettingService
	defaultPolicy    FeePolicy
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, bookRepo repository.BookRepository, shipmentRepo repository.ShipmentRepository, paymentRepo repository.PaymentRepository, pointHistoryRepo repository.PointHistoryRepository, settingService *SettingService, defaultPolicy FeePolicy) *OrderService {
	return &OrderService{
		orderRepo:        orderRepo,
		bookRepo:         bookRepo,
		shipmentRepo:     shipmentRepo,
		paymentRepo:      paymentRepo,
		pointHistoryRepo: pointHistoryRepo,
		settingService:   settingService,
		defaultPolicy:    defaultPolicy,
	}
}

// CommitOrder 支付回调成功后将结算草稿落库为订单
// 金额以服务端按当前销售价复算为准，不信任客户端合计
func (s *OrderService) CommitOrder(ctx context.Context, token, paymentKey string, amountPaid decimal.Decimal) (*models.Order, error) {
	token = strings.TrimSpace(token)
	paymentKey = strings.TrimSpace(paymentKey)
	if token == "" || paymentKey == "" {
		return nil, ErrDraftNotFound
	}

	draft, err := cache.FetchDraft(ctx, token)
	if err != nil {
		if errors.Is(err, cache.ErrUnavailable) {
			return nil, ErrStagingUnavailable
		}
		logger.Errorw("checkout_draft_fetch_failed", "token", token, "error", err)
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}

	return s.commitDraft(draft, paymentKey, amountPaid)
}

// commitDraft 复算金额并在单事务内落库订单全图
func (s *OrderService) commitDraft(draft *cache.CheckoutDraft, paymentKey string, amountPaid decimal.Decimal) (*models.Order, error) {
	policy, err := s.settingService.GetFeePolicy(s.defaultPolicy)
	if err != nil {
		logger.Warnw("fee_policy_load_failed", "error", err)
		policy = s.defaultPolicy
	}

	lines := make([]PriceLine, 0, len(draft.Items))
	lineAmounts := make([]decimal.Decimal, 0, len(draft.Items))
	for _, item := range draft.Items {
		book, err := s.bookRepo.GetByID(item.BookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, ErrBookNotFound
		}
		line := PriceLine{
			UnitPrice:      book.SalePrice.Decimal,
			Quantity:       item.Quantity,
			DiscountAmount: decimal.NewFromInt(item.DiscountAmount),
		}
		lines = append(lines, line)
		lineAmounts = append(lineAmounts, line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.DiscountAmount))
	}

	result := CalculateTotals(policy, lines)
	pointsSpent := decimal.NewFromInt(draft.PointsSpent)
	payable := result.GrandTotal.Sub(pointsSpent)
	if !amountPaid.Equal(payable) {
		logger.Warnw("order_commit_amount_mismatch",
			"token", draft.Token,
			"payment_key", paymentKey,
			"expected", payable.String(),
			"paid", amountPaid.String(),
		)
		return nil, ErrAmountMismatch
	}

	existing, err := s.paymentRepo.GetByPaymentKey(paymentKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPaymentDuplicate
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:      generateOrderNo(),
		UserID:       draft.Orderer.UserID,
		DeliveryDate: draft.DeliveryDate,
		DeliveryFee:  models.NewMoneyFromDecimal(result.DeliveryFee),
		TotalAmount:  models.NewMoneyFromDecimal(result.GrandTotal),
		PointsSpent:  models.NewMoneyFromDecimal(pointsSpent),
		OrderedAt:    now,
	}
	if draft.Orderer.UserID == 0 {
		order.GuestName = draft.Orderer.Name
		order.GuestEmail = draft.Orderer.Email
		order.GuestPhone = draft.Orderer.Phone
		order.GuestPassword = draft.Orderer.PasswordHash
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		shipment := &models.Shipment{Status: models.ShipmentPending}
		if err := s.shipmentRepo.WithTx(tx).Create(shipment); err != nil {
			return err
		}

		details := make([]models.OrderDetail, 0, len(draft.Items))
		for i, item := range draft.Items {
			details = append(details, models.OrderDetail{
				BookID:         item.BookID,
				ShipmentID:     shipment.ID,
				WrapID:         item.WrapID,
				CouponID:       item.CouponID,
				Status:         models.ShipmentPending,
				Amount:         models.NewMoneyFromDecimal(lineAmounts[i]),
				DiscountAmount: models.NewMoneyFromInt(item.DiscountAmount),
				Quantity:       item.Quantity,
			})
		}
		if err := s.orderRepo.WithTx(tx).Create(order, details); err != nil {
			return err
		}

		info := &models.ShipmentInformation{
			OrderID:         order.ID,
			ReceiverName:    draft.Receiver.Name,
			ReceiverPostal:  draft.Receiver.PostalCode,
			ReceiverAddress: draft.Receiver.Address,
			ReceiverPhone:   draft.Receiver.Phone,
			CustomerRequest: draft.Receiver.CustomerRequest,
		}
		if err := tx.Create(info).Error; err != nil {
			return err
		}

		paidAt := now
		payment := &models.Payment{
			OrderID:    order.ID,
			PaymentKey: paymentKey,
			Amount:     models.NewMoneyFromDecimal(amountPaid),
			Status:     constants.PaymentStatusSuccess,
			PaidAt:     &paidAt,
		}
		if err := s.paymentRepo.WithTx(tx).Create(payment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPaymentDuplicate
			}
			return err
		}

		if draft.PointsSpent > 0 && order.UserID > 0 {
			orderID := order.ID
			history := &models.PointHistory{
				UserID:  order.UserID,
				OrderID: &orderID,
				Type:    constants.PointHistoryTypeUsed,
				Amount:  models.NewMoneyFromDecimal(pointsSpent.Neg()),
			}
			if err := s.pointHistoryRepo.WithTx(tx).Create(history); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPaymentDuplicate) {
			return nil, ErrPaymentDuplicate
		}
		logger.Errorw("order_commit_failed", "token", draft.Token, "payment_key", paymentKey, "error", err)
		return nil, err
	}

	logger.Infow("order_committed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"payment_key", paymentKey,
		"total", order.TotalAmount.String(),
	)
	return s.orderRepo.GetByID(order.ID)
}

// GetOrderForAdmin 管理端按ID查询订单
func (s *OrderService) GetOrderForAdmin(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderForUser 会员按ID查询自己的订单
func (s *OrderService) GetOrderForUser(id, userID uint) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderForGuest 游客按订单号+邮箱+订单密码查询
func (s *OrderService) GetOrderForGuest(orderNo, email, password string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoForGuest(strings.TrimSpace(orderNo), strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.GuestPassword == "" {
		return nil, ErrOrderNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(order.GuestPassword), []byte(password)); err != nil {
		return nil, ErrPasswordIncorrect
	}
	return order, nil
}

// ListOrdersByUser 会员订单列表
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListOrdersAdmin 管理端订单列表
func (s *OrderService) ListOrdersAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// UpdateShipmentInformation 管理端修改收货信息
func (s *OrderService) UpdateShipmentInformation(orderID uint, info *models.ShipmentInformation) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return s.orderRepo.UpdateShipmentInformation(orderID, info)
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("SD%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
