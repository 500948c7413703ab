package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testFeePolicy() FeePolicy {
	return FeePolicy{
		FreeShippingThreshold: decimal.NewFromInt(20000),
		FlatFee:               decimal.NewFromInt(5000),
	}
}

func TestCalculateTotalsFreeShippingAboveThreshold(t *testing.T) {
	lines := []PriceLine{
		{UnitPrice: decimal.NewFromInt(15000), Quantity: 1},
		{UnitPrice: decimal.NewFromInt(20000), Quantity: 2},
	}
	result := CalculateTotals(testFeePolicy(), lines)
	if !result.ItemsTotal.Equal(decimal.NewFromInt(55000)) {
		t.Fatalf("items total want 55000 got %s", result.ItemsTotal.String())
	}
	if !result.DeliveryFee.IsZero() {
		t.Fatalf("delivery fee want 0 got %s", result.DeliveryFee.String())
	}
	if !result.GrandTotal.Equal(decimal.NewFromInt(55000)) {
		t.Fatalf("grand total want 55000 got %s", result.GrandTotal.String())
	}
}

func TestCalculateTotalsFlatFeeBelowThreshold(t *testing.T) {
	lines := []PriceLine{
		{UnitPrice: decimal.NewFromInt(10000), Quantity: 1},
	}
	result := CalculateTotals(testFeePolicy(), lines)
	if !result.DeliveryFee.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("delivery fee want 5000 got %s", result.DeliveryFee.String())
	}
	if !result.GrandTotal.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("grand total want 15000 got %s", result.GrandTotal.String())
	}
}

func TestCalculateTotalsThresholdBoundaryIsFree(t *testing.T) {
	lines := []PriceLine{
		{UnitPrice: decimal.NewFromInt(20000), Quantity: 1},
	}
	result := CalculateTotals(testFeePolicy(), lines)
	if !result.DeliveryFee.IsZero() {
		t.Fatalf("items total exactly at threshold should be free, got fee %s", result.DeliveryFee.String())
	}
}

func TestCalculateTotalsLineDiscountReducesItemsTotal(t *testing.T) {
	lines := []PriceLine{
		{UnitPrice: decimal.NewFromInt(15000), Quantity: 2, DiscountAmount: decimal.NewFromInt(2000)},
	}
	result := CalculateTotals(testFeePolicy(), lines)
	if !result.ItemsTotal.Equal(decimal.NewFromInt(28000)) {
		t.Fatalf("items total want 28000 got %s", result.ItemsTotal.String())
	}
	if !result.DeliveryFee.IsZero() {
		t.Fatalf("delivery fee want 0 got %s", result.DeliveryFee.String())
	}
}

func TestCalculateTotalsDiscountBelowThresholdChargesFee(t *testing.T) {
	// 优惠后跌破门槛则恢复收取运费
	lines := []PriceLine{
		{UnitPrice: decimal.NewFromInt(20000), Quantity: 1, DiscountAmount: decimal.NewFromInt(1)},
	}
	result := CalculateTotals(testFeePolicy(), lines)
	if !result.DeliveryFee.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("delivery fee want 5000 got %s", result.DeliveryFee.String())
	}
}

func TestCalculateTotalsDeterministic(t *testing.T) {
	lines := []PriceLine{
		{UnitPrice: decimal.NewFromInt(15000), Quantity: 1},
		{UnitPrice: decimal.NewFromInt(20000), Quantity: 2, DiscountAmount: decimal.NewFromInt(500)},
	}
	first := CalculateTotals(testFeePolicy(), lines)
	second := CalculateTotals(testFeePolicy(), lines)
	if !first.GrandTotal.Equal(second.GrandTotal) || !first.DeliveryFee.Equal(second.DeliveryFee) {
		t.Fatalf("same input should price identically, got %s/%s and %s/%s",
			first.GrandTotal.String(), first.DeliveryFee.String(),
			second.GrandTotal.String(), second.DeliveryFee.String())
	}
}

func TestCalculateTotalsEmptyLines(t *testing.T) {
	result := CalculateTotals(testFeePolicy(), nil)
	if !result.ItemsTotal.IsZero() {
		t.Fatalf("items total want 0 got %s", result.ItemsTotal.String())
	}
	if !result.DeliveryFee.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("delivery fee want 5000 got %s", result.DeliveryFee.String())
	}
}
