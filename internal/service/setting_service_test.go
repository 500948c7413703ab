package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shudian-next/internal/constants"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupSettingServiceTest(t *testing.T) (*SettingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:setting_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewSettingService(repository.NewSettingRepository(db)), db
}

func TestGetFeePolicyDefaults(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)
	policy, err := svc.GetFeePolicy(testFeePolicy())
	if err != nil {
		t.Fatalf("get fee policy failed: %v", err)
	}
	if !policy.FreeShippingThreshold.Equal(decimal.NewFromInt(20000)) || !policy.FlatFee.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("missing setting should fall back to defaults, got %s/%s",
			policy.FreeShippingThreshold.String(), policy.FlatFee.String())
	}
}

func TestUpdateFeePolicyRoundTrip(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)
	if _, err := svc.UpdateFeePolicy(decimal.NewFromInt(30000), decimal.NewFromInt(600)); err != nil {
		t.Fatalf("update fee policy failed: %v", err)
	}
	policy, err := svc.GetFeePolicy(testFeePolicy())
	if err != nil {
		t.Fatalf("get fee policy failed: %v", err)
	}
	if !policy.FreeShippingThreshold.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("threshold want 30000 got %s", policy.FreeShippingThreshold.String())
	}
	if !policy.FlatFee.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("flat fee want 600 got %s", policy.FlatFee.String())
	}
}

func TestUpdateFeePolicyRejectsNegative(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)
	if _, err := svc.UpdateFeePolicy(decimal.NewFromInt(-1), decimal.NewFromInt(500)); err == nil {
		t.Fatalf("negative threshold should be rejected")
	}
	if _, err := svc.UpdateFeePolicy(decimal.NewFromInt(10000), decimal.NewFromInt(-500)); err == nil {
		t.Fatalf("negative flat fee should be rejected")
	}
}

func TestGetFeePolicyPartialOverride(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)
	// 只配置门槛：运费沿用默认值
	if _, err := svc.Update(constants.SettingKeyFeePolicy, map[string]interface{}{
		constants.SettingFieldFreeShippingThreshold: "25000",
	}); err != nil {
		t.Fatalf("update setting failed: %v", err)
	}
	policy, err := svc.GetFeePolicy(testFeePolicy())
	if err != nil {
		t.Fatalf("get fee policy failed: %v", err)
	}
	if !policy.FreeShippingThreshold.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("threshold want 25000 got %s", policy.FreeShippingThreshold.String())
	}
	if !policy.FlatFee.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("flat fee should keep default 5000, got %s", policy.FlatFee.String())
	}
}

func TestGetFeePolicyIgnoresDirtyValues(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)
	if _, err := svc.Update(constants.SettingKeyFeePolicy, map[string]interface{}{
		constants.SettingFieldFreeShippingThreshold: "not-a-number",
		constants.SettingFieldFlatFee:               float64(700),
	}); err != nil {
		t.Fatalf("update setting failed: %v", err)
	}
	policy, err := svc.GetFeePolicy(testFeePolicy())
	if err != nil {
		t.Fatalf("get fee policy failed: %v", err)
	}
	if !policy.FreeShippingThreshold.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("dirty threshold should fall back to default, got %s", policy.FreeShippingThreshold.String())
	}
	if !policy.FlatFee.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("numeric flat fee should apply, got %s", policy.FlatFee.String())
	}
}
