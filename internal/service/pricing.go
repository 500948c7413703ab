package service

import (
	"github.com/shopspring/decimal"
)

// FeePolicy 运费策略
// 构造时注入，可被系统设置覆盖，计算本身无状态
type FeePolicy struct {
	FreeShippingThreshold decimal.Decimal
	FlatFee               decimal.Decimal
}

// PriceLine 计价行（单价 × 数量 − 行内优惠）
type PriceLine struct {
	UnitPrice      decimal.Decimal
	Quantity       int
	DiscountAmount decimal.Decimal
}

// PriceResult 计价结果
type PriceResult struct {
	ItemsTotal  decimal.Decimal
	DeliveryFee decimal.Decimal
	GrandTotal  decimal.Decimal
}

// CalculateTotals 计算商品合计与运费
// 合计达到包邮门槛（含等于）时运费为 0，否则收固定运费
func CalculateTotals(policy FeePolicy, lines []PriceLine) PriceResult {
	itemsTotal := decimal.Zero
	for _, line := range lines {
		lineAmount := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.DiscountAmount)
		itemsTotal = itemsTotal.Add(lineAmount)
	}

	deliveryFee := decimal.Zero
	if itemsTotal.LessThan(policy.FreeShippingThreshold) {
		deliveryFee = policy.FlatFee
	}

	return PriceResult{
		ItemsTotal:  itemsTotal,
		DeliveryFee: deliveryFee,
		GrandTotal:  itemsTotal.Add(deliveryFee),
	}
}
