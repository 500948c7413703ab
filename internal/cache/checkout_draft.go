package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shudian-next/internal/constants"
)

// DraftItem 草稿中的单个商品行
type DraftItem struct {
	BookID         uint  `json:"book_id"`
	Quantity       int   `json:"quantity"`
	WrapID         *uint `json:"wrap_id,omitempty"`
	CouponID       *uint `json:"coupon_id,omitempty"`
	DiscountAmount int64 `json:"discount_amount"`
}

// DraftOrderer 下单人信息，游客下单时 UserID 为 0
type DraftOrderer struct {
	UserID       uint   `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// DraftReceiver 收件人信息
type DraftReceiver struct {
	Name            string `json:"name"`
	PostalCode      string `json:"postal_code"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	CustomerRequest string `json:"customer_request,omitempty"`
}

// CheckoutDraft 结算草稿，提交结算后暂存，支付回调时取回落库
type CheckoutDraft struct {
	Token        string        `json:"token"`
	Orderer      DraftOrderer  `json:"orderer"`
	Receiver     DraftReceiver `json:"receiver"`
	Items        []DraftItem   `json:"items"`
	DeliveryDate *time.Time    `json:"delivery_date,omitempty"`
	PointsSpent  int64         `json:"points_spent"`
	CreatedAt    time.Time     `json:"created_at"`
}

func draftKey(token string) string {
	return fmt.Sprintf("%s:%s", constants.CheckoutDraftKeyPrefix, token)
}

// StageDraft 暂存结算草稿，缓存不可用时直接报错
func StageDraft(ctx context.Context, draft *CheckoutDraft, ttl time.Duration) error {
	if !Enabled() {
		return ErrUnavailable
	}
	return SetJSON(ctx, draftKey(draft.Token), draft, ttl)
}

// FetchDraft 取回结算草稿，未命中返回 (nil, nil)
// 取回不删除：落库失败后回调方重试仍可命中同一草稿
func FetchDraft(ctx context.Context, token string) (*CheckoutDraft, error) {
	if !Enabled() {
		return nil, ErrUnavailable
	}
	var draft CheckoutDraft
	hit, err := GetJSON(ctx, draftKey(token), &draft)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, nil
	}
	return &draft, nil
}

// DiscardDraft 丢弃结算草稿
func DiscardDraft(ctx context.Context, token string) error {
	if !Enabled() {
		return ErrUnavailable
	}
	return Del(ctx, draftKey(token))
}
