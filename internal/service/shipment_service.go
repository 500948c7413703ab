package service

import (
	"errors"
	"strings"
	"time"

	"github.com/shudian-next/internal/constants"
	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/queue"
	"github.com/shudian-next/internal/repository"

	"gorm.io/gorm"
)

// ShipmentEvent 配送状态机事件
type ShipmentEvent string

const (
	EventShip          ShipmentEvent = "ship"
	EventRevert        ShipmentEvent = "revert"
	EventComplete      ShipmentEvent = "complete"
	EventCancel        ShipmentEvent = "cancel"
	EventRequestRefund ShipmentEvent = "request_refund"
	EventResolveRefund ShipmentEvent = "resolve_refund"
)

// shipmentTransitions 封闭迁移表：当前状态 × 事件 → 目标状态
// 表外组合一律拒绝，不改状态
var shipmentTransitions = map[models.ShipmentStatus]map[ShipmentEvent]models.ShipmentStatus{
	models.ShipmentPending: {
		EventShip:          models.ShipmentShipping,
		EventCancel:        models.ShipmentCanceled,
		EventRequestRefund: models.ShipmentRefundRequested,
	},
	models.ShipmentShipping: {
		EventRevert:        models.ShipmentPending,
		EventComplete:      models.ShipmentShipped,
		EventCancel:        models.ShipmentCanceled,
		EventRequestRefund: models.ShipmentRefundRequested,
	},
	models.ShipmentShipped: {
		EventRequestRefund: models.ShipmentRefundRequested,
	},
	models.ShipmentRefundRequested: {
		EventResolveRefund: models.ShipmentRefundResolved,
	},
}

// eventTargets 事件的规范目标状态，用于识别同态重复请求
var eventTargets = map[ShipmentEvent]models.ShipmentStatus{
	EventShip:          models.ShipmentShipping,
	EventRevert:        models.ShipmentPending,
	EventComplete:      models.ShipmentShipped,
	EventCancel:        models.ShipmentCanceled,
	EventRequestRefund: models.ShipmentRefundRequested,
	EventResolveRefund: models.ShipmentRefundResolved,
}

// ShipmentService 配送状态机服务
// 管理端与承运商消息共用同一迁移函数；迁移在配送单行锁内串行执行
type ShipmentService struct {
	shipmentRepo repository.ShipmentRepository
	orderRepo    repository.OrderRepository
	pointService *PointService
	queueClient  *queue.Client
	scheduler    *ShipmentScheduler
}

// NewShipmentService 创建配送服务
func NewShipmentService(shipmentRepo repository.ShipmentRepository, orderRepo repository.OrderRepository, pointService *PointService, queueClient *queue.Client, scheduler *ShipmentScheduler) *ShipmentService {
	s := &ShipmentService{
		shipmentRepo: shipmentRepo,
		orderRepo:    orderRepo,
		pointService: pointService,
		queueClient:  queueClient,
		scheduler:    scheduler,
	}
	if scheduler != nil {
		scheduler.BindCompleter(s.completeForScheduler)
	}
	return s
}

// transitionOptions 迁移附带数据
type transitionOptions struct {
	TrackingNo  string
	CarrierCode string
}

// transitionOutcome 迁移结果（提交后执行副作用用）
type transitionOutcome struct {
	ShipmentID   uint
	From         models.ShipmentStatus
	To           models.ShipmentStatus
	ShippedAt    time.Time
	AccrualAlert *queue.AccrualAlertPayload
}

// transition 执行一次状态迁移
// 配送单行加 FOR UPDATE 锁：同一订单的并发迁移请求在此串行化
func (s *ShipmentService) transition(orderID uint, event ShipmentEvent, opts transitionOptions) (*transitionOutcome, error) {
	outcome := &transitionOutcome{}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		shipmentRepo := s.shipmentRepo.WithTx(tx)
		shipment, err := shipmentRepo.GetByOrderIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if shipment == nil {
			return ErrOrderNotFound
		}

		if shipment.Status == eventTargets[event] {
			return ErrTransitionDuplicate
		}
		target, ok := shipmentTransitions[shipment.Status][event]
		if !ok {
			return ErrTransitionInvalid
		}

		now := time.Now()
		updates := map[string]interface{}{}
		detailUpdates := map[string]interface{}{}
		switch event {
		case EventShip:
			updates["shipped_at"] = now
			if trimmed := strings.TrimSpace(opts.TrackingNo); trimmed != "" {
				updates["tracking_no"] = trimmed
			}
			if trimmed := strings.TrimSpace(opts.CarrierCode); trimmed != "" {
				updates["carrier_code"] = trimmed
			}
			outcome.ShippedAt = now
		case EventRevert:
			updates["shipped_at"] = nil
			updates["tracking_no"] = ""
			updates["carrier_code"] = ""
		case EventCancel, EventResolveRefund:
			detailUpdates["refunded_at"] = now
		}

		if err := shipmentRepo.UpdateStatus(shipment.ID, target, updates); err != nil {
			return err
		}
		if err := shipmentRepo.UpdateDetailStatus(shipment.ID, target, detailUpdates); err != nil {
			return err
		}

		order, err := s.orderRepo.WithTx(tx).GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		switch event {
		case EventComplete:
			if err := s.pointService.Accrue(tx, order); err != nil {
				if errors.Is(err, ErrAccrualPolicyMissing) {
					// 计提策略缺失不回滚完成迁移，交由运营告警处理
					logger.Errorw("point_accrual_policy_missing", "order_id", order.ID, "user_id", order.UserID)
					outcome.AccrualAlert = &queue.AccrualAlertPayload{OrderID: order.ID, UserID: order.UserID}
				} else {
					return err
				}
			}
		case EventCancel:
			if err := s.pointService.Reverse(tx, order); err != nil {
				return err
			}
		}

		outcome.ShipmentID = shipment.ID
		outcome.From = shipment.Status
		outcome.To = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.applySideEffects(orderID, event, outcome)
	return outcome, nil
}

// applySideEffects 提交后的进程内与队列副作用
func (s *ShipmentService) applySideEffects(orderID uint, event ShipmentEvent, outcome *transitionOutcome) {
	if s.scheduler != nil {
		switch event {
		case EventShip:
			s.scheduler.Register(outcome.ShipmentID, outcome.ShippedAt)
		case EventRevert, EventComplete, EventCancel, EventRequestRefund, EventResolveRefund:
			s.scheduler.Deregister(outcome.ShipmentID)
		}
	}

	if outcome.AccrualAlert != nil {
		if err := s.queueClient.EnqueueAccrualAlert(*outcome.AccrualAlert); err != nil {
			logger.Errorw("accrual_alert_enqueue_failed", "order_id", orderID, "error", err)
		}
	}

	if event == EventRequestRefund {
		if err := s.queueClient.EnqueuePointReversal(queue.PointReversalPayload{OrderID: orderID}); err != nil {
			logger.Errorw("point_reversal_enqueue_failed", "order_id", orderID, "error", err)
		}
	}

	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  outcome.To.String(),
	}); err != nil {
		logger.Errorw("status_email_enqueue_failed", "order_id", orderID, "error", err)
	}

	logger.Infow("shipment_transitioned",
		"order_id", orderID,
		"shipment_id", outcome.ShipmentID,
		"event", string(event),
		"from", outcome.From.String(),
		"to", outcome.To.String(),
	)
}

// AdminUpdateStatus 管理端修改配送状态
// 只接受 SHIPPING / PENDING 两种目标；同态请求吸收为无操作
func (s *ShipmentService) AdminUpdateStatus(orderID uint, target, trackingNo, carrierCode string) error {
	var event ShipmentEvent
	switch strings.ToUpper(strings.TrimSpace(target)) {
	case constants.AdminTargetStatusShipping:
		event = EventShip
	case constants.AdminTargetStatusPending:
		event = EventRevert
	default:
		return ErrTransitionInvalid
	}

	_, err := s.transition(orderID, event, transitionOptions{TrackingNo: trackingNo, CarrierCode: carrierCode})
	if errors.Is(err, ErrTransitionDuplicate) {
		logger.Warnw("shipment_transition_duplicate", "order_id", orderID, "event", string(event))
		return nil
	}
	return err
}

// Advance 承运商消息入口：按当前状态向前推进一步
// pending → 发货，shipping → 完成；已到达或终态的重复消息吸收
func (s *ShipmentService) Advance(orderID uint) error {
	shipment, err := s.shipmentRepo.GetByOrderID(orderID)
	if err != nil {
		return err
	}
	if shipment == nil {
		return ErrOrderNotFound
	}

	var event ShipmentEvent
	switch shipment.Status {
	case models.ShipmentPending:
		event = EventShip
	case models.ShipmentShipping:
		event = EventComplete
	default:
		logger.Warnw("shipment_advance_noop", "order_id", orderID, "status", shipment.Status.String())
		return nil
	}

	_, err = s.transition(orderID, event, transitionOptions{})
	if errors.Is(err, ErrTransitionDuplicate) {
		logger.Warnw("shipment_transition_duplicate", "order_id", orderID, "event", string(event))
		return nil
	}
	return err
}

// completeForScheduler 调度器回调：停留超时后完成配送
func (s *ShipmentService) completeForScheduler(orderID uint) error {
	_, err := s.transition(orderID, EventComplete, transitionOptions{})
	if errors.Is(err, ErrTransitionDuplicate) || errors.Is(err, ErrTransitionInvalid) {
		logger.Warnw("scheduler_complete_absorbed", "order_id", orderID, "error", err.Error())
		return nil
	}
	return err
}

// Cancel 取消订单（送达前均可；配送中取消同样退出自动完成登记）
func (s *ShipmentService) Cancel(orderID uint) error {
	_, err := s.transition(orderID, EventCancel, transitionOptions{})
	return err
}

// RequestRefund 用户发起退款申请
func (s *ShipmentService) RequestRefund(orderID uint) error {
	_, err := s.transition(orderID, EventRequestRefund, transitionOptions{})
	return err
}

// ResolveRefund 管理端完结退款
func (s *ShipmentService) ResolveRefund(orderID uint) error {
	_, err := s.transition(orderID, EventResolveRefund, transitionOptions{})
	return err
}

// Rebuild 启动时重建自动完成登记表
func (s *ShipmentService) Rebuild() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Rebuild()
}
