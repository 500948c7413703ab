package queue

import (
	"encoding/json"

	"github.com/shudian-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskPointReversal 积分冲正任务
	TaskPointReversal = constants.TaskPointReversal
	// TaskAccrualAlert 积分策略缺失告警任务
	TaskAccrualAlert = constants.TaskAccrualAlert
)

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// PointReversalPayload 积分冲正任务载荷
type PointReversalPayload struct {
	OrderID uint `json:"order_id"`
}

// AccrualAlertPayload 积分策略缺失告警载荷
type AccrualAlertPayload struct {
	OrderID uint `json:"order_id"`
	UserID  uint `json:"user_id"`
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// NewPointReversalTask 创建积分冲正任务
func NewPointReversalTask(payload PointReversalPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPointReversal, body), nil
}

// NewAccrualAlertTask 创建积分策略缺失告警任务
func NewAccrualAlertTask(payload AccrualAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAccrualAlert, body), nil
}
