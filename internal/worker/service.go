package worker

import (
	"context"
	"errors"

	"github.com/shudian-next/internal/carrier"
	"github.com/shudian-next/internal/config"
	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
// 同时承载配送自动完成调度循环与承运商消息消费
type Service struct {
	name            string
	server          *asynq.Server
	mux             *asynq.ServeMux
	consumer        *Consumer
	carrierConsumer *carrier.Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer, carrierConsumer *carrier.Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:            "worker",
		server:          server,
		mux:             mux,
		consumer:        consumer,
		carrierConsumer: carrierConsumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}

	if s.consumer != nil && s.consumer.ShipmentService != nil {
		if err := s.consumer.ShipmentService.Rebuild(); err != nil {
			logger.Errorw("worker_scheduler_rebuild_failed", "error", err)
			return err
		}
		go s.consumer.ShipmentScheduler.Run(ctx)
	}

	if s.carrierConsumer != nil && s.carrierConsumer.Enabled() {
		go func() {
			if err := s.carrierConsumer.Run(ctx); err != nil {
				logger.Errorw("worker_carrier_consumer_failed", "error", err)
			}
		}()
	}

	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}
