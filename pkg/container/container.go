package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"marketplace-backend/internal/config"
	cartRepo "marketplace-backend/internal/domains/cart/repository"
	couponRepo "marketplace-backend/internal/domains/coupon/repository"
	couponService "marketplace-backend/internal/domains/coupon/service"
	inventoryRepo "marketplace-backend/internal/domains/inventory/repository"
	orderHandler "marketplace-backend/internal/domains/order/handler"
	orderRepo "marketplace-backend/internal/domains/order/repository"
	orderService "marketplace-backend/internal/domains/order/service"
	paymentRepo "marketplace-backend/internal/domains/payment/repository"
	settlementHandler "marketplace-backend/internal/domains/settlement/handler"
	settlementJob "marketplace-backend/internal/domains/settlement/job"
	"marketplace-backend/internal/domains/settlement/report"
	settlementRepo "marketplace-backend/internal/domains/settlement/repository"
	settlementService "marketplace-backend/internal/domains/settlement/service"
	"marketplace-backend/internal/infrastructure/alert"
	infraCache "marketplace-backend/internal/infrastructure/cache"
	"marketplace-backend/internal/infrastructure/database"
	pkgDatabase "marketplace-backend/pkg/database"
	"marketplace-backend/pkg/logger"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup, in dependency order: config, then
// infrastructure, then repositories, then services.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *infraCache.RedisClient

	OrderRepo      orderRepo.OrderRepository
	PaymentRepo    paymentRepo.PaymentRepository
	CouponRepo     couponRepo.RepositoryInterface
	InventoryRepo  inventoryRepo.RepositoryInterface
	CartRepo       cartRepo.RepositoryInterface
	SettlementRepo settlementRepo.RepositoryInterface

	CouponService      couponService.ServiceInterface
	OrderService       orderService.OrderService
	CreationService    *settlementService.CreationService
	AggregationService *settlementService.AggregationService
	Exporter           *report.Exporter

	RunLock            *infraCache.RunLock
	Notifier           alert.Notifier
	SettlementHandlers *settlementJob.Handlers

	OrderHandler      *orderHandler.OrderHandler
	SettlementHandler *settlementHandler.SettlementHandler

	AsynqClient *asynq.Client
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	logger.Init(cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	c.DB = db

	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Printf("[Container] ✓ Initialized (env: %s)", cfg.App.Environment)
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.OrderRepo = orderRepo.NewPostgresOrderRepository(pool)
	c.PaymentRepo = paymentRepo.NewPostgresPaymentRepository(pool)
	c.CouponRepo = couponRepo.NewRepository(pool)
	c.InventoryRepo = inventoryRepo.NewRepository()
	c.CartRepo = cartRepo.NewRepository(pool)
	c.SettlementRepo = settlementRepo.NewRepository(pool)
}

func (c *Container) initServices() {
	cfg := c.Config
	runner := pkgDatabase.NewPoolRunner(c.DB.Pool)

	c.RunLock = infraCache.NewRunLock(
		c.Redis.Client,
		time.Duration(cfg.Settlement.LockTTLMinutes)*time.Minute,
	)
	c.Notifier = alert.NewWebhookNotifier(
		cfg.Alert.WebhookURL,
		time.Duration(cfg.Alert.TimeoutSeconds)*time.Second,
	)

	c.CouponService = couponService.NewMemberCouponService(c.CouponRepo, runner)
	c.OrderService = orderService.NewOrderService(
		runner,
		c.OrderRepo,
		c.InventoryRepo,
		c.PaymentRepo,
		c.CartRepo,
		c.CouponService,
	)

	c.CreationService = settlementService.NewCreationService(
		c.PaymentRepo,
		c.SettlementRepo,
		settlementService.NewPgFeeCalculator(nil),
		runner,
		cfg.Settlement.PartitionGridSize,
		cfg.Settlement.WorkerPoolSize,
	)
	c.AggregationService = settlementService.NewAggregationService(c.SettlementRepo)
	c.Exporter = report.NewExporter(c.SettlementRepo)

	c.SettlementHandlers = settlementJob.NewHandlers(
		c.CreationService,
		c.AggregationService,
		c.SettlementRepo,
		c.RunLock,
		c.Notifier,
		cfg.Settlement,
	)
}

func (c *Container) initHandlers() {
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.SettlementHandler = settlementHandler.NewSettlementHandler(c.SettlementRepo, c.Exporter, c.AsynqClient)
}

// Cleanup closes every owned connection, in reverse initialization order.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("failed to close asynq client", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close redis client", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Println("[Container] ✓ Cleaned up")
}
