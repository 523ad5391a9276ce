package di

import (
	"github.com/stylianoueleni/festival-engine/internal/handler"
	"github.com/stylianoueleni/festival-engine/internal/repository"
	"github.com/stylianoueleni/festival-engine/internal/service"
	"github.com/stylianoueleni/festival-engine/internal/worker"
	"github.com/stylianoueleni/festival-engine/pkg/database"
	"github.com/stylianoueleni/festival-engine/pkg/redis"
)

// Container holds all dependencies for the festival engine
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	FestivalRepo    repository.FestivalRepository
	EventRepo       repository.EventRepository
	PerformanceRepo repository.PerformanceRepository
	VisitorRepo     repository.VisitorRepository
	TicketRepo      repository.TicketRepository
	StaffRepo       repository.StaffRepository
	ReviewRepo      repository.ReviewRepository
	ResaleRepo      repository.ResaleRepository
	AuditRepo       repository.AuditRepository
	Tx              repository.Transactor

	// Publishers
	AuditPublisher service.AuditPublisher

	// Services
	FestivalService    service.FestivalService
	EventService       service.EventService
	PerformanceService service.PerformanceService
	VisitorService     service.VisitorService
	TicketService      service.TicketService
	StaffingService    service.StaffingService
	ReviewService      service.ReviewService
	ResaleService      service.ResaleService

	// Workers
	ExpiryWorker *worker.ResaleExpiryWorker

	// Handlers
	HealthHandler      *handler.HealthHandler
	FestivalHandler    *handler.FestivalHandler
	EventHandler       *handler.EventHandler
	PerformanceHandler *handler.PerformanceHandler
	VisitorHandler     *handler.VisitorHandler
	TicketHandler      *handler.TicketHandler
	StaffingHandler    *handler.StaffingHandler
	ReviewHandler      *handler.ReviewHandler
	ResaleHandler      *handler.ResaleHandler
	AdminHandler       *handler.AdminHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	AuditPublisher service.AuditPublisher
	ResaleConfig   *service.ResaleServiceConfig
	WorkerConfig   *worker.ResaleExpiryWorkerConfig
	// RunExpiryWorker controls whether an in-process expiry worker is
	// built. The standalone worker binary runs its own.
	RunExpiryWorker bool
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		AuditPublisher: cfg.AuditPublisher,
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.FestivalRepo = repository.NewPostgresFestivalRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.PerformanceRepo = repository.NewPostgresPerformanceRepository(pool)
	c.VisitorRepo = repository.NewPostgresVisitorRepository(pool)
	c.TicketRepo = repository.NewPostgresTicketRepository(pool)
	c.StaffRepo = repository.NewPostgresStaffRepository(pool)
	c.ReviewRepo = repository.NewPostgresReviewRepository(pool)
	c.ResaleRepo = repository.NewPostgresResaleRepository(pool)
	c.AuditRepo = repository.NewPostgresAuditRepository(pool)
	c.Tx = repository.NewTxManager(pool)

	// Initialize services
	c.FestivalService = service.NewFestivalService(c.FestivalRepo)
	c.EventService = service.NewEventService(c.EventRepo, c.FestivalRepo, c.Tx)
	c.PerformanceService = service.NewPerformanceService(c.PerformanceRepo, c.EventRepo, c.FestivalRepo, c.Tx)
	c.VisitorService = service.NewVisitorService(c.VisitorRepo)
	c.TicketService = service.NewTicketService(c.TicketRepo, c.VisitorRepo, c.EventRepo, c.FestivalRepo, c.Tx)
	c.StaffingService = service.NewStaffingService(c.StaffRepo, c.EventRepo, c.FestivalRepo, c.Tx)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.PerformanceRepo, c.TicketRepo, c.Tx)
	c.ResaleService = service.NewResaleService(
		c.TicketRepo,
		c.ResaleRepo,
		c.AuditRepo,
		c.Tx,
		c.AuditPublisher,
		cfg.ResaleConfig,
	)

	// Initialize workers
	if cfg.RunExpiryWorker {
		c.ExpiryWorker = worker.NewResaleExpiryWorker(c.ResaleService, cfg.WorkerConfig)
	}

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.FestivalHandler = handler.NewFestivalHandler(c.FestivalService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.PerformanceHandler = handler.NewPerformanceHandler(c.PerformanceService)
	c.VisitorHandler = handler.NewVisitorHandler(c.VisitorService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService)
	c.StaffingHandler = handler.NewStaffingHandler(c.StaffingService)
	c.ReviewHandler = handler.NewReviewHandler(c.ReviewService)
	c.ResaleHandler = handler.NewResaleHandler(c.ResaleService)
	c.AdminHandler = handler.NewAdminHandler(c.ResaleService, c.ExpiryWorker)

	return c
}
