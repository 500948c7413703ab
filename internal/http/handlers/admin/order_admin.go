package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shudian-next/internal/http/handlers/shared"
	"github.com/shudian-next/internal/http/response"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"
	"github.com/shudian-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间参数格式错误", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间参数格式错误", err)
		return
	}

	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			userID = uint(parsed)
		}
	}

	orders, total, err := h.OrderService.ListOrdersAdmin(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      userID,
		Status:      models.ShipmentStatus(strings.TrimSpace(c.Query("status"))),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		GuestEmail:  strings.TrimSpace(c.Query("guest_email")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
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

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderForAdmin(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "订单不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "查询订单失败", err)
		return
	}
	response.Success(c, gin.H{
		"order":  order,
		"status": order.Status(),
	})
}

// UpdateOrderStatusRequest 管理端修改配送状态请求
type UpdateOrderStatusRequest struct {
	Status      string `json:"status" binding:"required"` // SHIPPING / PENDING
	TrackingNo  string `json:"tracking_no"`
	CarrierCode string `json:"carrier_code"`
}

// AdminUpdateOrderStatus 管理端修改配送状态
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if err := h.ShipmentService.AdminUpdateStatus(orderID, req.Status, req.TrackingNo, req.CarrierCode); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "订单不存在", nil)
		case errors.Is(err, service.ErrTransitionInvalid):
			respondError(c, response.CodeBadRequest, "当前状态不允许该迁移", nil)
		default:
			respondError(c, response.CodeInternal, "修改状态失败", err)
		}
		return
	}
	response.Success(c, nil)
}

// AdminResolveRefund 管理端完结退款
func (h *Handler) AdminResolveRefund(c *gin.Context) {
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.ShipmentService.ResolveRefund(orderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "订单不存在", nil)
		case errors.Is(err, service.ErrTransitionInvalid), errors.Is(err, service.ErrTransitionDuplicate):
			respondError(c, response.CodeBadRequest, "当前状态不允许完结退款", nil)
		default:
			respondError(c, response.CodeInternal, "完结退款失败", err)
		}
		return
	}
	response.Success(c, nil)
}

// UpdateShipmentInfoRequest 管理端修改收货信息请求
type UpdateShipmentInfoRequest struct {
	ReceiverName    string `json:"receiver_name" binding:"required"`
	ReceiverPostal  string `json:"receiver_postal"`
	ReceiverAddress string `json:"receiver_address" binding:"required"`
	ReceiverPhone   string `json:"receiver_phone"`
	CustomerRequest string `json:"customer_request"`
}

// AdminUpdateShipmentInfo 管理端修改收货信息
// 下单后的收货信息只能从这里显式修改
func (h *Handler) AdminUpdateShipmentInfo(c *gin.Context) {
	orderID, ok := shared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req UpdateShipmentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	info := &models.ShipmentInformation{
		OrderID:         orderID,
		ReceiverName:    strings.TrimSpace(req.ReceiverName),
		ReceiverPostal:  strings.TrimSpace(req.ReceiverPostal),
		ReceiverAddress: strings.TrimSpace(req.ReceiverAddress),
		ReceiverPhone:   strings.TrimSpace(req.ReceiverPhone),
		CustomerRequest: strings.TrimSpace(req.CustomerRequest),
	}
	if err := h.OrderService.UpdateShipmentInformation(orderID, info); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "订单不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "修改收货信息失败", err)
		return
	}
	response.Success(c, nil)
}
