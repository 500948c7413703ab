package provider

import (
	"time"

	"github.com/shudian-next/internal/cache"
	"github.com/shudian-next/internal/config"
	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/queue"
	"github.com/shudian-next/internal/repository"
	"github.com/shudian-next/internal/service"

	"github.com/shopspring/decimal"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	BookRepo         repository.BookRepository
	WrapRepo         repository.WrapRepository
	OrderRepo        repository.OrderRepository
	ShipmentRepo     repository.ShipmentRepository
	PaymentRepo      repository.PaymentRepository
	PointHistoryRepo repository.PointHistoryRepository
	SettingRepo      repository.SettingRepository

	// Services
	AuthService       *service.AuthService
	SettingService    *service.SettingService
	CheckoutService   *service.CheckoutService
	OrderService      *service.OrderService
	PointService      *service.PointService
	ShipmentService   *service.ShipmentService
	ShipmentScheduler *service.ShipmentScheduler
	EmailService      *service.EmailService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.BookRepo = repository.NewBookRepository(db)
	c.WrapRepo = repository.NewWrapRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.PointHistoryRepo = repository.NewPointHistoryRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email)

	defaultPolicy := defaultFeePolicy(&c.Config.Fee)
	draftTTL := time.Duration(c.Config.Checkout.DraftTTLMinutes) * time.Minute
	c.CheckoutService = service.NewCheckoutService(c.BookRepo, c.SettingService, defaultPolicy, draftTTL)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.BookRepo, c.ShipmentRepo, c.PaymentRepo, c.PointHistoryRepo, c.SettingService, defaultPolicy)
	c.PointService = service.NewPointService(c.PointHistoryRepo, c.UserRepo, c.WrapRepo, c.OrderRepo)

	dwell := time.Duration(c.Config.Shipment.DwellHours) * time.Hour
	sweepInterval := time.Duration(c.Config.Shipment.SweepIntervalMinutes) * time.Minute
	c.ShipmentScheduler = service.NewShipmentScheduler(c.ShipmentRepo, dwell, sweepInterval)
	c.ShipmentService = service.NewShipmentService(c.ShipmentRepo, c.OrderRepo, c.PointService, c.QueueClient, c.ShipmentScheduler)
}

// defaultFeePolicy 从配置解析运费策略默认值
// 配置脏值回落到零值策略并告警，不阻断启动
func defaultFeePolicy(cfg *config.FeeConfig) service.FeePolicy {
	threshold, err := decimal.NewFromString(cfg.FreeShippingThreshold)
	if err != nil {
		logger.Warnw("fee_threshold_config_invalid", "value", cfg.FreeShippingThreshold, "error", err)
		threshold = decimal.Zero
	}
	flatFee, err := decimal.NewFromString(cfg.FlatFee)
	if err != nil {
		logger.Warnw("fee_flat_config_invalid", "value", cfg.FlatFee, "error", err)
		flatFee = decimal.Zero
	}
	return service.FeePolicy{FreeShippingThreshold: threshold, FlatFee: flatFee}
}
