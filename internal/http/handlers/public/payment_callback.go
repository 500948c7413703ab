package public

import (
	"github.com/shudian-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentCallbackRequest 支付回调请求
// AmountPaid 为字符串金额，避免浮点精度问题
type PaymentCallbackRequest struct {
	Token      string `json:"token" binding:"required"`
	PaymentKey string `json:"payment_key" binding:"required"`
	AmountPaid string `json:"amount_paid" binding:"required"`
}

// PaymentCallback 支付回调：将结算草稿落库为订单
func (h *Handler) PaymentCallback(c *gin.Context) {
	var req PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	amountPaid, err := decimal.NewFromString(req.AmountPaid)
	if err != nil {
		respondError(c, response.CodeBadRequest, "支付金额格式错误", err)
		return
	}

	order, err := h.OrderService.CommitOrder(c.Request.Context(), req.Token, req.PaymentKey, amountPaid)
	if err != nil {
		respondWithMappedError(c, err, paymentCallbackErrorRules, response.CodeInternal, "订单落库失败")
		return
	}
	response.Success(c, gin.H{
		"order_id": order.ID,
		"order_no": order.OrderNo,
		"status":   order.Status(),
	})
}
