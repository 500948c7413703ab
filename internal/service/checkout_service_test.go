package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCheckoutServiceTest(t *testing.T) (*CheckoutService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Book{}, &models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewCheckoutService(
		repository.NewBookRepository(db),
		NewSettingService(repository.NewSettingRepository(db)),
		testFeePolicy(),
		30*time.Minute,
	)
	return svc, db
}

func TestPreviewCheckoutTotals(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	first := createTestBook(t, db, "活着", 15000)
	second := createTestBook(t, db, "三体", 20000)

	preview, err := svc.PreviewCheckout(CheckoutInput{
		UserID: 1,
		Items: []CheckoutItem{
			{BookID: first.ID, Quantity: 1},
			{BookID: second.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !preview.ItemsTotal.Equal(decimal.NewFromInt(55000)) {
		t.Fatalf("items total want 55000 got %s", preview.ItemsTotal.String())
	}
	if !preview.DeliveryFee.IsZero() {
		t.Fatalf("delivery fee want 0 got %s", preview.DeliveryFee.String())
	}
	if !preview.Payable.Equal(decimal.NewFromInt(55000)) {
		t.Fatalf("payable want 55000 got %s", preview.Payable.String())
	}
}

func TestPreviewCheckoutPointsReducePayable(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	book := createTestBook(t, db, "围城", 10000)

	preview, err := svc.PreviewCheckout(CheckoutInput{
		UserID:      1,
		Items:       []CheckoutItem{{BookID: book.ID, Quantity: 1}},
		PointsSpent: 2000,
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !preview.GrandTotal.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("grand total want 15000 got %s", preview.GrandTotal.String())
	}
	if !preview.Payable.Equal(decimal.NewFromInt(13000)) {
		t.Fatalf("payable want 13000 got %s", preview.Payable.String())
	}
}

func TestPreviewCheckoutFeePolicyOverride(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	book := createTestBook(t, db, "小王子", 10000)

	settingService := NewSettingService(repository.NewSettingRepository(db))
	if _, err := settingService.UpdateFeePolicy(decimal.NewFromInt(5000), decimal.NewFromInt(800)); err != nil {
		t.Fatalf("update fee policy failed: %v", err)
	}

	preview, err := svc.PreviewCheckout(CheckoutInput{
		UserID: 1,
		Items:  []CheckoutItem{{BookID: book.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	// 覆盖后门槛 5000，10000 的订单免运费
	if !preview.DeliveryFee.IsZero() {
		t.Fatalf("policy override not applied, fee %s", preview.DeliveryFee.String())
	}
}

func TestPreviewCheckoutInvalidItems(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	book := createTestBook(t, db, "白夜行", 10000)

	cases := []CheckoutInput{
		{UserID: 1},
		{UserID: 1, Items: []CheckoutItem{{BookID: 0, Quantity: 1}}},
		{UserID: 1, Items: []CheckoutItem{{BookID: book.ID, Quantity: 0}}},
		{UserID: 1, Items: []CheckoutItem{{BookID: book.ID, Quantity: 1, DiscountAmount: -1}}},
	}
	for i, input := range cases {
		if _, err := svc.PreviewCheckout(input); !errors.Is(err, ErrInvalidCheckoutItem) {
			t.Fatalf("case %d want ErrInvalidCheckoutItem got %v", i, err)
		}
	}

	if _, err := svc.PreviewCheckout(CheckoutInput{
		UserID: 1,
		Items:  []CheckoutItem{{BookID: 999, Quantity: 1}},
	}); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("want ErrBookNotFound got %v", err)
	}
}

func TestSubmitCheckoutGuestValidation(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	book := createTestBook(t, db, "百年孤独", 25000)

	base := CheckoutInput{
		GuestName:       "李四",
		GuestEmail:      "guest@example.com",
		GuestPassword:   "secret123",
		ReceiverName:    "李四",
		ReceiverAddress: "北京市朝阳区建国路 88 号",
		Items:           []CheckoutItem{{BookID: book.ID, Quantity: 1}},
	}

	noPassword := base
	noPassword.GuestPassword = ""
	if _, _, err := svc.SubmitCheckout(context.Background(), noPassword); !errors.Is(err, ErrGuestPasswordRequired) {
		t.Fatalf("want ErrGuestPasswordRequired got %v", err)
	}

	badEmail := base
	badEmail.GuestEmail = "not-an-email"
	if _, _, err := svc.SubmitCheckout(context.Background(), badEmail); !errors.Is(err, ErrInvalidCheckoutItem) {
		t.Fatalf("want ErrInvalidCheckoutItem got %v", err)
	}

	noReceiver := base
	noReceiver.ReceiverAddress = ""
	if _, _, err := svc.SubmitCheckout(context.Background(), noReceiver); !errors.Is(err, ErrInvalidCheckoutItem) {
		t.Fatalf("want ErrInvalidCheckoutItem got %v", err)
	}
}

func TestSubmitCheckoutStagingUnavailable(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	book := createTestBook(t, db, "平凡的世界", 30000)

	// 测试进程未初始化 Redis：校验全部通过后暂存必须显式失败
	_, _, err := svc.SubmitCheckout(context.Background(), CheckoutInput{
		UserID:          1,
		ReceiverName:    "张三",
		ReceiverAddress: "上海市徐汇区漕溪北路 100 号",
		Items:           []CheckoutItem{{BookID: book.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrStagingUnavailable) {
		t.Fatalf("want ErrStagingUnavailable got %v", err)
	}
}
