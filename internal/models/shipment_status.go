package models

// ShipmentStatus 配送单状态（封闭枚举）
// 订单不单独维护状态列，读取时投影其配送单状态
type ShipmentStatus string

const (
	ShipmentPending         ShipmentStatus = "pending"
	ShipmentShipping        ShipmentStatus = "shipping"
	ShipmentShipped         ShipmentStatus = "shipped"
	ShipmentCanceled        ShipmentStatus = "canceled"
	ShipmentRefundRequested ShipmentStatus = "refund_requested"
	ShipmentRefundResolved  ShipmentStatus = "refund_resolved"
)

// Valid 判断是否为已知状态值
func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentPending, ShipmentShipping, ShipmentShipped,
		ShipmentCanceled, ShipmentRefundRequested, ShipmentRefundResolved:
		return true
	}
	return false
}

// Terminal 判断是否为终态（不再有出边）
func (s ShipmentStatus) Terminal() bool {
	return s == ShipmentCanceled || s == ShipmentRefundResolved
}

func (s ShipmentStatus) String() string {
	return string(s)
}
