package public

import (
	"time"

	"github.com/shudian-next/internal/http/response"
	"github.com/shudian-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutItemRequest 结算商品行请求
type CheckoutItemRequest struct {
	BookID         uint  `json:"book_id" binding:"required"`
	Quantity       int   `json:"quantity" binding:"required"`
	WrapID         *uint `json:"wrap_id"`
	CouponID       *uint `json:"coupon_id"`
	DiscountAmount int64 `json:"discount_amount"`
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	UserID        uint   `json:"user_id"`
	GuestName     string `json:"guest_name"`
	GuestEmail    string `json:"guest_email"`
	GuestPhone    string `json:"guest_phone"`
	GuestPassword string `json:"guest_password"`

	ReceiverName    string `json:"receiver_name" binding:"required"`
	ReceiverAddress string `json:"receiver_address" binding:"required"`
	ReceiverPostal  string `json:"receiver_postal"`
	ReceiverPhone   string `json:"receiver_phone"`
	CustomerRequest string `json:"customer_request"`

	Items        []CheckoutItemRequest `json:"items" binding:"required"`
	DeliveryDate *time.Time            `json:"delivery_date"`
	PointsSpent  int64                 `json:"points_spent"`
}

func (r *CheckoutRequest) toInput() service.CheckoutInput {
	items := make([]service.CheckoutItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.CheckoutItem{
			BookID:         item.BookID,
			Quantity:       item.Quantity,
			WrapID:         item.WrapID,
			CouponID:       item.CouponID,
			DiscountAmount: item.DiscountAmount,
		})
	}
	return service.CheckoutInput{
		UserID:          r.UserID,
		GuestName:       r.GuestName,
		GuestEmail:      r.GuestEmail,
		GuestPhone:      r.GuestPhone,
		GuestPassword:   r.GuestPassword,
		ReceiverName:    r.ReceiverName,
		ReceiverAddress: r.ReceiverAddress,
		ReceiverPostal:  r.ReceiverPostal,
		ReceiverPhone:   r.ReceiverPhone,
		CustomerRequest: r.CustomerRequest,
		Items:           items,
		DeliveryDate:    r.DeliveryDate,
		PointsSpent:     r.PointsSpent,
	}
}

// PreviewCheckout 结算金额预览
func (h *Handler) PreviewCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	preview, err := h.CheckoutService.PreviewCheckout(req.toInput())
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "结算预览失败")
		return
	}
	response.Success(c, preview)
}

// SubmitCheckout 提交结算，返回结算令牌
func (h *Handler) SubmitCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	token, preview, err := h.CheckoutService.SubmitCheckout(c.Request.Context(), req.toInput())
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "提交结算失败")
		return
	}
	response.Success(c, gin.H{
		"token":   token,
		"preview": preview,
	})
}
