package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/provider"
	"github.com/shudian-next/internal/queue"
	"github.com/shudian-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskPointReversal, c.handlePointReversal)
	mux.HandleFunc(queue.TaskAccrualAlert, c.handleAccrualAlert)
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		return nil
	}

	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}

	var receiverEmail string
	if order.UserID != 0 {
		user, err := c.UserRepo.GetByID(order.UserID)
		if err != nil {
			logger.Warnw("worker_order_status_email_fetch_user_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
			return err
		}
		if user != nil {
			receiverEmail = strings.TrimSpace(user.Email)
		}
	} else {
		receiverEmail = strings.TrimSpace(order.GuestEmail)
	}
	if receiverEmail == "" {
		logger.Debugw("worker_order_status_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}

	status := order.Status()
	if trimmed := strings.TrimSpace(payload.Status); trimmed != "" {
		status = models.ShipmentStatus(trimmed)
	}
	input := service.OrderStatusEmailInput{
		OrderNo: order.OrderNo,
		Status:  status,
		Amount:  order.TotalAmount,
		IsGuest: order.IsGuest(),
	}
	if err := c.EmailService.SendOrderStatusEmail(receiverEmail, input); err != nil {
		if err == service.ErrEmailServiceDisabled || err == service.ErrEmailServiceNotConfigured {
			logger.Debugw("worker_order_status_email_skip_disabled", "order_id", order.ID)
			return nil
		}
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"status", status.String(),
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handlePointReversal(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.PointReversalPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_point_reversal_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		return nil
	}
	if err := c.PointService.ReverseByOrder(payload.OrderID); err != nil {
		if err == service.ErrOrderNotFound {
			logger.Warnw("worker_point_reversal_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Errorw("worker_point_reversal_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}

// handleAccrualAlert 积分策略缺失告警
// 当前实现落到 error 级日志供运营侧采集，后续可接入告警通道
func (c *Consumer) handleAccrualAlert(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.AccrualAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_accrual_alert_unmarshal_failed", "error", err)
		return err
	}
	logger.Errorw("accrual_policy_missing_alert",
		"order_id", payload.OrderID,
		"user_id", payload.UserID,
	)
	return nil
}
