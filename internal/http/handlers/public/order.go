package public

import (
	"strconv"

	"github.com/shudian-next/internal/http/handlers/shared"
	"github.com/shudian-next/internal/http/response"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// orderView 订单响应视图（附投影状态）
func orderView(order *models.Order) gin.H {
	return gin.H{
		"order":  order,
		"status": order.Status(),
	}
}

// GuestOrderLookup 游客订单查询（订单号 + 邮箱 + 订单密码）
func (h *Handler) GuestOrderLookup(c *gin.Context) {
	var req struct {
		OrderNo  string `json:"order_no" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	order, err := h.OrderService.GetOrderForGuest(req.OrderNo, req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, orderLookupErrorRules, response.CodeInternal, "查询订单失败")
		return
	}
	response.Success(c, orderView(order))
}

// GetUserOrder 会员查询自己的订单
func (h *Handler) GetUserOrder(c *gin.Context) {
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "缺少用户标识", nil)
		return
	}

	order, svcErr := h.OrderService.GetOrderForUser(orderID, uint(userID))
	if svcErr != nil {
		respondWithMappedError(c, svcErr, orderLookupErrorRules, response.CodeInternal, "查询订单失败")
		return
	}
	response.Success(c, orderView(order))
}

// ListUserOrders 会员订单列表
func (h *Handler) ListUserOrders(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "缺少用户标识", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Status:   models.ShipmentStatus(c.Query("status")),
	}
	orders, total, err := h.OrderService.ListOrdersByUser(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询订单失败", err)
		return
	}
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// CancelOrder 取消订单（送达前均可）
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.ShipmentService.Cancel(orderID); err != nil {
		respondWithMappedError(c, err, orderActionErrorRules, response.CodeInternal, "取消订单失败")
		return
	}
	response.Success(c, nil)
}

// RequestRefund 发起退款申请
func (h *Handler) RequestRefund(c *gin.Context) {
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.ShipmentService.RequestRefund(orderID); err != nil {
		respondWithMappedError(c, err, orderActionErrorRules, response.CodeInternal, "退款申请失败")
		return
	}
	response.Success(c, nil)
}
