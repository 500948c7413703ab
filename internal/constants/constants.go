package constants

// 管理端目标状态入参常量（仅接受这两种目标状态）
const (
	AdminTargetStatusShipping = "SHIPPING"
	AdminTargetStatusPending  = "PENDING"
)

// 支付状态常量
const (
	PaymentStatusSuccess = "success"
)

// 积分流水类型常量
const (
	PointHistoryTypeEarned   = "earned"
	PointHistoryTypeUsed     = "used"
	PointHistoryTypeReversed = "reversed"
)

// 队列任务类型常量
const (
	TaskOrderStatusEmail = "order:status_email"
	TaskPointReversal    = "point:reversal"
	TaskAccrualAlert     = "ops:accrual_alert"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 缓存键前缀常量
const (
	CheckoutDraftKeyPrefix = "checkout:draft"
)

// 系统设置键常量
const (
	SettingKeyFeePolicy = "fee_policy"

	SettingFieldFreeShippingThreshold = "free_shipping_threshold"
	SettingFieldFlatFee               = "flat_fee"
)
