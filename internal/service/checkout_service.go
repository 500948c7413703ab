package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/shudian-next/internal/cache"
	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// CheckoutService 结算服务
// 提交结算只暂存草稿，支付回调成功前不写任何订单表
type CheckoutService struct {
	bookRepo       repository.BookRepository
	settingService *SettingService
	defaultPolicy  FeePolicy
	draftTTL       time.Duration
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(bookRepo repository.BookRepository, settingService *SettingService, defaultPolicy FeePolicy, draftTTL time.Duration) *CheckoutService {
	if draftTTL <= 0 {
		draftTTL = 30 * time.Minute
	}
	return &CheckoutService{
		bookRepo:       bookRepo,
		settingService: settingService,
		defaultPolicy:  defaultPolicy,
		draftTTL:       draftTTL,
	}
}

// CheckoutItem 结算商品行输入
type CheckoutItem struct {
	BookID         uint
	Quantity       int
	WrapID         *uint
	CouponID       *uint
	DiscountAmount int64
}

// CheckoutInput 结算输入
// 会员单传 UserID，游客单传姓名/联系方式/订单密码
type CheckoutInput struct {
	UserID        uint
	GuestName     string
	GuestEmail    string
	GuestPhone    string
	GuestPassword string

	ReceiverName    string
	ReceiverAddress string
	ReceiverPostal  string
	ReceiverPhone   string
	CustomerRequest string

	Items        []CheckoutItem
	DeliveryDate *time.Time
	PointsSpent  int64
}

// CheckoutPreview 结算预览结果
type CheckoutPreview struct {
	ItemsTotal  models.Money `json:"items_total"`
	DeliveryFee models.Money `json:"delivery_fee"`
	GrandTotal  models.Money `json:"grand_total"`
	Payable     models.Money `json:"payable"`
}

// feePolicy 读取当前生效的运费策略
func (s *CheckoutService) feePolicy() FeePolicy {
	policy, err := s.settingService.GetFeePolicy(s.defaultPolicy)
	if err != nil {
		logger.Warnw("fee_policy_load_failed", "error", err)
		return s.defaultPolicy
	}
	return policy
}

// buildPriceLines 校验商品行并按当前销售价生成计价行
func (s *CheckoutService) buildPriceLines(items []CheckoutItem) ([]PriceLine, error) {
	if len(items) == 0 {
		return nil, ErrInvalidCheckoutItem
	}
	lines := make([]PriceLine, 0, len(items))
	for _, item := range items {
		if item.BookID == 0 || item.Quantity <= 0 || item.DiscountAmount < 0 {
			return nil, ErrInvalidCheckoutItem
		}
		book, err := s.bookRepo.GetByID(item.BookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, ErrBookNotFound
		}
		lines = append(lines, PriceLine{
			UnitPrice:      book.SalePrice.Decimal,
			Quantity:       item.Quantity,
			DiscountAmount: decimal.NewFromInt(item.DiscountAmount),
		})
	}
	return lines, nil
}

// PreviewCheckout 结算预览（只计价，不暂存）
func (s *CheckoutService) PreviewCheckout(input CheckoutInput) (*CheckoutPreview, error) {
	lines, err := s.buildPriceLines(input.Items)
	if err != nil {
		return nil, err
	}
	result := CalculateTotals(s.feePolicy(), lines)
	payable := result.GrandTotal.Sub(decimal.NewFromInt(input.PointsSpent))
	return &CheckoutPreview{
		ItemsTotal:  models.NewMoneyFromDecimal(result.ItemsTotal),
		DeliveryFee: models.NewMoneyFromDecimal(result.DeliveryFee),
		GrandTotal:  models.NewMoneyFromDecimal(result.GrandTotal),
		Payable:     models.NewMoneyFromDecimal(payable),
	}, nil
}

// SubmitCheckout 提交结算，暂存草稿并返回结算令牌
func (s *CheckoutService) SubmitCheckout(ctx context.Context, input CheckoutInput) (string, *CheckoutPreview, error) {
	preview, err := s.PreviewCheckout(input)
	if err != nil {
		return "", nil, err
	}

	orderer := cache.DraftOrderer{UserID: input.UserID}
	if input.UserID == 0 {
		name := strings.TrimSpace(input.GuestName)
		email := strings.TrimSpace(input.GuestEmail)
		if name == "" || email == "" {
			return "", nil, ErrInvalidCheckoutItem
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return "", nil, ErrInvalidCheckoutItem
		}
		if strings.TrimSpace(input.GuestPassword) == "" {
			return "", nil, ErrGuestPasswordRequired
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.GuestPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", nil, err
		}
		orderer.Name = name
		orderer.Email = email
		orderer.Phone = strings.TrimSpace(input.GuestPhone)
		orderer.PasswordHash = string(hash)
	}

	if strings.TrimSpace(input.ReceiverName) == "" || strings.TrimSpace(input.ReceiverAddress) == "" {
		return "", nil, ErrInvalidCheckoutItem
	}

	draftItems := make([]cache.DraftItem, 0, len(input.Items))
	for _, item := range input.Items {
		draftItems = append(draftItems, cache.DraftItem{
			BookID:         item.BookID,
			Quantity:       item.Quantity,
			WrapID:         item.WrapID,
			CouponID:       item.CouponID,
			DiscountAmount: item.DiscountAmount,
		})
	}

	draft := &cache.CheckoutDraft{
		Token:   uuid.NewString(),
		Orderer: orderer,
		Receiver: cache.DraftReceiver{
			Name:            strings.TrimSpace(input.ReceiverName),
			PostalCode:      strings.TrimSpace(input.ReceiverPostal),
			Address:         strings.TrimSpace(input.ReceiverAddress),
			Phone:           strings.TrimSpace(input.ReceiverPhone),
			CustomerRequest: strings.TrimSpace(input.CustomerRequest),
		},
		Items:        draftItems,
		DeliveryDate: input.DeliveryDate,
		PointsSpent:  input.PointsSpent,
		CreatedAt:    time.Now(),
	}

	if err := cache.StageDraft(ctx, draft, s.draftTTL); err != nil {
		if errors.Is(err, cache.ErrUnavailable) {
			return "", nil, ErrStagingUnavailable
		}
		logger.Errorw("checkout_draft_stage_failed", "token", draft.Token, "error", err)
		return "", nil, err
	}

	logger.Infow("checkout_draft_staged", "token", draft.Token, "user_id", input.UserID, "items", len(draftItems))
	return draft.Token, preview, nil
}
