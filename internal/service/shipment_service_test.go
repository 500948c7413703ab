package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shudian-next/internal/constants"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/queue"
	"github.com/shudian-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupShipmentServiceTest(t *testing.T) (*ShipmentService, *ShipmentScheduler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:shipment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Book{},
		&models.Order{},
		&models.OrderDetail{},
		&models.Shipment{},
		&models.ShipmentInformation{},
		&models.Payment{},
		&models.PointHistory{},
		&models.User{},
		&models.UserRank{},
		&models.Wrap{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	shipmentRepo := repository.NewShipmentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	pointService := NewPointService(
		repository.NewPointHistoryRepository(db),
		repository.NewUserRepository(db),
		repository.NewWrapRepository(db),
		orderRepo,
	)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("build queue client failed: %v", err)
	}
	scheduler := NewShipmentScheduler(shipmentRepo, 24*time.Hour, time.Minute)
	svc := NewShipmentService(shipmentRepo, orderRepo, pointService, queueClient, scheduler)
	return svc, scheduler, db
}

func createPendingOrder(t *testing.T, db *gorm.DB, userID uint, total int64) *models.Order {
	t.Helper()
	shipment := &models.Shipment{Status: models.ShipmentPending}
	if err := db.Create(shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	order := &models.Order{
		OrderNo:     fmt.Sprintf("SD%d", time.Now().UnixNano()),
		UserID:      userID,
		TotalAmount: models.NewMoneyFromInt(total),
		OrderedAt:   time.Now(),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	detail := &models.OrderDetail{
		OrderID:    order.ID,
		BookID:     1,
		ShipmentID: shipment.ID,
		Status:     models.ShipmentPending,
		Amount:     models.NewMoneyFromInt(total),
		Quantity:   1,
	}
	if err := db.Create(detail).Error; err != nil {
		t.Fatalf("create detail failed: %v", err)
	}
	order.Details = []models.OrderDetail{*detail}
	return order
}

func createMemberWithRank(t *testing.T, db *gorm.DB, userID uint, rate string) {
	t.Helper()
	user := &models.User{
		ID:    userID,
		Email: fmt.Sprintf("member_%d@example.com", userID),
		Name:  "会员",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	pointRate, err := decimal.NewFromString(rate)
	if err != nil {
		t.Fatalf("parse rate failed: %v", err)
	}
	rank := &models.UserRank{
		UserID:        userID,
		RankName:      "普通会员",
		PointRate:     pointRate,
		EffectiveFrom: time.Now().AddDate(0, -1, 0),
	}
	if err := db.Create(rank).Error; err != nil {
		t.Fatalf("create rank failed: %v", err)
	}
}

func loadShipment(t *testing.T, db *gorm.DB, id uint) *models.Shipment {
	t.Helper()
	var shipment models.Shipment
	if err := db.First(&shipment, id).Error; err != nil {
		t.Fatalf("load shipment failed: %v", err)
	}
	return &shipment
}

func TestAdminShipSetsShippedAtAndRegisters(t *testing.T) {
	svc, scheduler, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	if err := svc.AdminUpdateStatus(order.ID, "SHIPPING", "SF1234567890", "SF"); err != nil {
		t.Fatalf("ship failed: %v", err)
	}

	shipment := loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentShipping {
		t.Fatalf("status want shipping got %s", shipment.Status.String())
	}
	if shipment.ShippedAt == nil {
		t.Fatalf("shipped_at should be set on ship")
	}
	if shipment.TrackingNo != "SF1234567890" || shipment.CarrierCode != "SF" {
		t.Fatalf("tracking info not persisted: %s/%s", shipment.TrackingNo, shipment.CarrierCode)
	}
	if !scheduler.Registered(shipment.ID) {
		t.Fatalf("shipped order should be registered for auto completion")
	}

	var detail models.OrderDetail
	if err := db.Where("order_id = ?", order.ID).First(&detail).Error; err != nil {
		t.Fatalf("load detail failed: %v", err)
	}
	if detail.Status != models.ShipmentShipping {
		t.Fatalf("detail status should follow shipment, got %s", detail.Status.String())
	}
}

func TestAdminShipDuplicateAbsorbed(t *testing.T) {
	svc, _, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	if err := svc.AdminUpdateStatus(order.ID, "SHIPPING", "SF001", "SF"); err != nil {
		t.Fatalf("first ship failed: %v", err)
	}
	first := loadShipment(t, db, order.ShipmentID())

	if err := svc.AdminUpdateStatus(order.ID, "SHIPPING", "SF002", "SF"); err != nil {
		t.Fatalf("duplicate ship should be absorbed, got %v", err)
	}
	second := loadShipment(t, db, order.ShipmentID())
	if !second.ShippedAt.Equal(*first.ShippedAt) {
		t.Fatalf("duplicate ship must not rewrite shipped_at: %v vs %v", first.ShippedAt, second.ShippedAt)
	}
	if second.TrackingNo != "SF001" {
		t.Fatalf("duplicate ship must not rewrite tracking_no, got %s", second.TrackingNo)
	}
}

func TestAdminRevertClearsShipment(t *testing.T) {
	svc, scheduler, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	if err := svc.AdminUpdateStatus(order.ID, "SHIPPING", "SF003", "SF"); err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	if err := svc.AdminUpdateStatus(order.ID, "PENDING", "", ""); err != nil {
		t.Fatalf("revert failed: %v", err)
	}

	shipment := loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentPending {
		t.Fatalf("status want pending got %s", shipment.Status.String())
	}
	if shipment.ShippedAt != nil {
		t.Fatalf("revert should clear shipped_at")
	}
	if shipment.TrackingNo != "" || shipment.CarrierCode != "" {
		t.Fatalf("revert should clear tracking info, got %s/%s", shipment.TrackingNo, shipment.CarrierCode)
	}
	if scheduler.Registered(shipment.ID) {
		t.Fatalf("reverted order must leave the auto completion registry")
	}
}

func TestAdminUpdateStatusRejectsOtherTargets(t *testing.T) {
	svc, _, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	for _, target := range []string{"SHIPPED", "CANCELED", "done", ""} {
		if err := svc.AdminUpdateStatus(order.ID, target, "", ""); !errors.Is(err, ErrTransitionInvalid) {
			t.Fatalf("target %q want ErrTransitionInvalid got %v", target, err)
		}
	}
}

func TestShippedOrderCannotRevert(t *testing.T) {
	svc, _, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipping failed: %v", err)
	}
	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipped failed: %v", err)
	}
	if err := svc.AdminUpdateStatus(order.ID, "PENDING", "", ""); !errors.Is(err, ErrTransitionInvalid) {
		t.Fatalf("revert from shipped want ErrTransitionInvalid got %v", err)
	}
	shipment := loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentShipped {
		t.Fatalf("rejected transition must not change status, got %s", shipment.Status.String())
	}
}

func TestAdvanceAccruesPointsExactlyOnce(t *testing.T) {
	svc, _, db := setupShipmentServiceTest(t)
	createMemberWithRank(t, db, 3, "0.01")
	order := createPendingOrder(t, db, 3, 20000)

	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipping failed: %v", err)
	}
	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipped failed: %v", err)
	}
	// 终态上的重复承运商消息吸收为无操作
	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance on shipped should be a no-op, got %v", err)
	}

	var histories []models.PointHistory
	if err := db.Where("order_id = ? AND type = ?", order.ID, constants.PointHistoryTypeEarned).Find(&histories).Error; err != nil {
		t.Fatalf("load point histories failed: %v", err)
	}
	if len(histories) != 1 {
		t.Fatalf("earned history count want 1 got %d", len(histories))
	}
	if !histories[0].Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("earned points want 200 got %s", histories[0].Amount.String())
	}
}

func TestCompleteWithMissingRankStillCompletes(t *testing.T) {
	svc, _, db := setupShipmentServiceTest(t)
	// 会员存在但没有任何等级历史
	user := &models.User{ID: 9, Email: "norank@example.com", Name: "会员"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	order := createPendingOrder(t, db, 9, 20000)

	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipping failed: %v", err)
	}
	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("complete without rank must still land, got %v", err)
	}

	shipment := loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentShipped {
		t.Fatalf("status want shipped got %s", shipment.Status.String())
	}
	var count int64
	if err := db.Model(&models.PointHistory{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count histories failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("missing rank must not create point history, count = %d", count)
	}
}

func TestCancelPendingOrder(t *testing.T) {
	svc, _, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	if err := svc.Cancel(order.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	shipment := loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentCanceled {
		t.Fatalf("status want canceled got %s", shipment.Status.String())
	}
	var detail models.OrderDetail
	if err := db.Where("order_id = ?", order.ID).First(&detail).Error; err != nil {
		t.Fatalf("load detail failed: %v", err)
	}
	if detail.RefundedAt == nil {
		t.Fatalf("cancel should stamp refunded_at on details")
	}
	if err := svc.Cancel(order.ID); !errors.Is(err, ErrTransitionDuplicate) {
		t.Fatalf("second cancel want ErrTransitionDuplicate got %v", err)
	}
}

func TestCancelShippingOrder(t *testing.T) {
	svc, scheduler, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	if err := svc.AdminUpdateStatus(order.ID, "SHIPPING", "SF004", "SF"); err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	if err := svc.Cancel(order.ID); err != nil {
		t.Fatalf("cancel while shipping failed: %v", err)
	}

	shipment := loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentCanceled {
		t.Fatalf("status want canceled got %s", shipment.Status.String())
	}
	if scheduler.Registered(shipment.ID) {
		t.Fatalf("canceled order must leave the auto completion registry")
	}
	var detail models.OrderDetail
	if err := db.Where("order_id = ?", order.ID).First(&detail).Error; err != nil {
		t.Fatalf("load detail failed: %v", err)
	}
	if detail.RefundedAt == nil {
		t.Fatalf("cancel should stamp refunded_at on details")
	}
}

func TestCancelAfterDeliveryRejected(t *testing.T) {
	svc, _, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipping failed: %v", err)
	}
	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipped failed: %v", err)
	}
	if err := svc.Cancel(order.ID); !errors.Is(err, ErrTransitionInvalid) {
		t.Fatalf("cancel after delivery want ErrTransitionInvalid got %v", err)
	}
	shipment := loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentShipped {
		t.Fatalf("rejected cancel must not change status, got %s", shipment.Status.String())
	}
}

func TestRefundFlow(t *testing.T) {
	svc, _, db := setupShipmentServiceTest(t)
	order := createPendingOrder(t, db, 0, 20000)

	if err := svc.ResolveRefund(order.ID); !errors.Is(err, ErrTransitionInvalid) {
		t.Fatalf("resolve before request want ErrTransitionInvalid got %v", err)
	}

	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipping failed: %v", err)
	}
	if err := svc.Advance(order.ID); err != nil {
		t.Fatalf("advance to shipped failed: %v", err)
	}
	if err := svc.RequestRefund(order.ID); err != nil {
		t.Fatalf("request refund failed: %v", err)
	}
	shipment := loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentRefundRequested {
		t.Fatalf("status want refund_requested got %s", shipment.Status.String())
	}

	if err := svc.ResolveRefund(order.ID); err != nil {
		t.Fatalf("resolve refund failed: %v", err)
	}
	shipment = loadShipment(t, db, order.ShipmentID())
	if shipment.Status != models.ShipmentRefundResolved {
		t.Fatalf("status want refund_resolved got %s", shipment.Status.String())
	}
	var detail models.OrderDetail
	if err := db.Where("order_id = ?", order.ID).First(&detail).Error; err != nil {
		t.Fatalf("load detail failed: %v", err)
	}
	if detail.RefundedAt == nil {
		t.Fatalf("resolve refund should stamp refunded_at on details")
	}
}

func TestAdvanceUnknownOrder(t *testing.T) {
	svc, _, _ := setupShipmentServiceTest(t)
	if err := svc.Advance(999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound got %v", err)
	}
}
