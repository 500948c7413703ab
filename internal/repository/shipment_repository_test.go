package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/shudian-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupShipmentRepoTest(t *testing.T) (*GormShipmentRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:shipment_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Shipment{}, &models.OrderDetail{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewShipmentRepository(db), db
}

func seedShipmentWithDetail(t *testing.T, db *gorm.DB, orderID uint, status models.ShipmentStatus) *models.Shipment {
	t.Helper()
	shipment := &models.Shipment{Status: status}
	if err := db.Create(shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	detail := &models.OrderDetail{
		OrderID:    orderID,
		BookID:     1,
		ShipmentID: shipment.ID,
		Status:     status,
		Amount:     models.NewMoneyFromInt(1000),
		Quantity:   1,
	}
	if err := db.Create(detail).Error; err != nil {
		t.Fatalf("create detail failed: %v", err)
	}
	return shipment
}

func TestGetByOrderID(t *testing.T) {
	repo, db := setupShipmentRepoTest(t)
	shipment := seedShipmentWithDetail(t, db, 10, models.ShipmentPending)

	found, err := repo.GetByOrderID(10)
	if err != nil {
		t.Fatalf("get by order id failed: %v", err)
	}
	if found == nil || found.ID != shipment.ID {
		t.Fatalf("shipment lookup mismatch: %+v", found)
	}

	missing, err := repo.GetByOrderID(99)
	if err != nil {
		t.Fatalf("missing lookup failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown order should return nil, got %+v", missing)
	}
}

func TestUpdateStatusAndDetailSync(t *testing.T) {
	repo, db := setupShipmentRepoTest(t)
	shipment := seedShipmentWithDetail(t, db, 11, models.ShipmentPending)

	now := time.Now()
	if err := repo.UpdateStatus(shipment.ID, models.ShipmentShipping, map[string]interface{}{
		"shipped_at":  now,
		"tracking_no": "SF100",
	}); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if err := repo.UpdateDetailStatus(shipment.ID, models.ShipmentShipping, nil); err != nil {
		t.Fatalf("update detail status failed: %v", err)
	}

	var reloaded models.Shipment
	if err := db.First(&reloaded, shipment.ID).Error; err != nil {
		t.Fatalf("reload shipment failed: %v", err)
	}
	if reloaded.Status != models.ShipmentShipping || reloaded.TrackingNo != "SF100" || reloaded.ShippedAt == nil {
		t.Fatalf("shipment update not applied: %+v", reloaded)
	}

	var detail models.OrderDetail
	if err := db.Where("shipment_id = ?", shipment.ID).First(&detail).Error; err != nil {
		t.Fatalf("reload detail failed: %v", err)
	}
	if detail.Status != models.ShipmentShipping {
		t.Fatalf("detail status should follow shipment, got %s", detail.Status.String())
	}
}

func TestListByStatus(t *testing.T) {
	repo, db := setupShipmentRepoTest(t)
	seedShipmentWithDetail(t, db, 21, models.ShipmentShipping)
	seedShipmentWithDetail(t, db, 22, models.ShipmentShipping)
	seedShipmentWithDetail(t, db, 23, models.ShipmentPending)

	shipping, err := repo.ListByStatus(models.ShipmentShipping)
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if len(shipping) != 2 {
		t.Fatalf("shipping count want 2 got %d", len(shipping))
	}
	for _, s := range shipping {
		if len(s.Details) != 1 {
			t.Fatalf("details should be preloaded, got %d", len(s.Details))
		}
	}
}

func TestOrderIDByShipment(t *testing.T) {
	repo, db := setupShipmentRepoTest(t)
	shipment := seedShipmentWithDetail(t, db, 31, models.ShipmentShipping)

	orderID, err := repo.OrderIDByShipment(shipment.ID)
	if err != nil {
		t.Fatalf("order id lookup failed: %v", err)
	}
	if orderID != 31 {
		t.Fatalf("order id want 31 got %d", orderID)
	}

	orphan, err := repo.OrderIDByShipment(999)
	if err != nil {
		t.Fatalf("orphan lookup failed: %v", err)
	}
	if orphan != 0 {
		t.Fatalf("orphan shipment should resolve to 0, got %d", orphan)
	}
}
