package service

import "errors"

// 业务错误定义，由 HTTP 层映射为响应码
var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrBookNotFound          = errors.New("book not found")
	ErrDraftNotFound         = errors.New("checkout draft not found or expired")
	ErrStagingUnavailable    = errors.New("checkout staging unavailable")
	ErrInvalidCheckoutItem   = errors.New("invalid checkout item")
	ErrGuestPasswordRequired = errors.New("guest order requires a password")
	ErrAmountMismatch        = errors.New("paid amount does not match order total")
	ErrPaymentDuplicate      = errors.New("payment already processed")
	ErrTransitionInvalid     = errors.New("shipment status transition not allowed")
	ErrTransitionDuplicate   = errors.New("shipment already in target status")
	ErrAccrualPolicyMissing  = errors.New("no point rate configured for user")
	ErrAdminNotFound         = errors.New("admin not found")
	ErrPasswordIncorrect     = errors.New("password incorrect")
	ErrPermissionDenied      = errors.New("permission denied")
)
