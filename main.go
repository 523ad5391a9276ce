package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // Import pprof for profiling
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stylianoueleni/festival-engine/internal/di"
	"github.com/stylianoueleni/festival-engine/internal/metrics"
	"github.com/stylianoueleni/festival-engine/internal/service"
	"github.com/stylianoueleni/festival-engine/internal/worker"
	"github.com/stylianoueleni/festival-engine/migrations"
	"github.com/stylianoueleni/festival-engine/pkg/config"
	"github.com/stylianoueleni/festival-engine/pkg/database"
	"github.com/stylianoueleni/festival-engine/pkg/logger"
	"github.com/stylianoueleni/festival-engine/pkg/middleware"
	pkgredis "github.com/stylianoueleni/festival-engine/pkg/redis"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Festival Engine...")

	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without tracing: %v", err))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     cfg.OTel.ServiceName,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Apply schema migrations
	if err := migrations.Apply(ctx, db.Pool()); err != nil {
		appLog.Fatal(fmt.Sprintf("Migrations failed: %v", err))
	}
	appLog.Info("Schema migrations applied")

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		PoolTimeout:   4 * time.Second,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info(fmt.Sprintf("Redis connected (pool: %d, minIdle: %d)", redisCfg.PoolSize, redisCfg.MinIdleConns))

	// Initialize Kafka audit publisher
	var auditPublisher service.AuditPublisher
	auditPublisher, err = service.NewKafkaAuditPublisher(ctx, &service.AuditPublisherConfig{
		Brokers:           cfg.Kafka.Brokers,
		AuditTopic:        cfg.Kafka.AuditTopic,
		NotificationTopic: cfg.Kafka.NotificationTopic,
		ServiceName:       cfg.App.Name,
		ClientID:          cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		auditPublisher = service.NewNoOpAuditPublisher()
	} else {
		appLog.Info("Kafka audit publisher connected")
	}
	defer auditPublisher.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		AuditPublisher: auditPublisher,
		ResaleConfig: &service.ResaleServiceConfig{
			PendingTimeout: cfg.Resale.PendingTimeout,
		},
		WorkerConfig: &worker.ResaleExpiryWorkerConfig{
			ScanInterval: cfg.Resale.SweepInterval,
			BatchSize:    cfg.Resale.SweepBatchSize,
		},
		RunExpiryWorker: true,
	})

	// Start the resale expiry worker alongside the API
	if err := container.ExpiryWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start expiry worker: %v", err))
	}
	defer container.ExpiryWorker.Stop()

	// Setup Gin
	gin.SetMode(gin.ReleaseMode)
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Metrics endpoint for monitoring
	router.GET("/metrics", func(c *gin.Context) {
		stats := db.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db_pool": gin.H{
				"total_conns":        stats.TotalConns(),
				"acquired_conns":     stats.AcquiredConns(),
				"idle_conns":         stats.IdleConns(),
				"max_conns":          stats.MaxConns(),
				"constructing_conns": stats.ConstructingConns(),
			},
			"expiry_worker": container.ExpiryWorker.GetStats(),
		})
	})

	// Configure idempotency middleware for resale write operations
	idempotencyConfig := middleware.DefaultIdempotencyConfig(redisClient.Client())
	idempotencyConfig.SkipPaths = []string{"/health", "/ready", "/metrics"}
	idempotent := middleware.IdempotencyMiddleware(idempotencyConfig)

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		// Festival structure
		v1.POST("/festivals", container.FestivalHandler.CreateFestival)
		v1.GET("/festivals/:id", container.FestivalHandler.GetFestival)
		v1.POST("/festivals/:id/days", container.FestivalHandler.AddFestivalDay)
		v1.GET("/festivals/:id/days", container.FestivalHandler.ListFestivalDays)
		v1.POST("/stages", container.FestivalHandler.CreateStage)
		v1.GET("/stages/:id", container.FestivalHandler.GetStage)
		v1.GET("/stages", container.FestivalHandler.ListStages)

		// Events
		v1.POST("/events", container.EventHandler.CreateEvent)
		v1.GET("/events/:id", container.EventHandler.GetEvent)
		v1.GET("/days/:id/events", container.EventHandler.ListEventsByDay)

		// Performers and performances
		v1.POST("/artists", container.PerformanceHandler.CreateArtist)
		v1.POST("/bands", container.PerformanceHandler.CreateBand)
		v1.POST("/performances", container.PerformanceHandler.SchedulePerformance)
		v1.GET("/performances/:id", container.PerformanceHandler.GetPerformance)
		v1.DELETE("/performances/:id", container.PerformanceHandler.CancelPerformance)
		v1.GET("/events/:id/performances", container.PerformanceHandler.ListPerformancesByEvent)

		// Visitors
		v1.POST("/visitors", container.VisitorHandler.RegisterVisitor)
		v1.GET("/visitors/:id", container.VisitorHandler.GetVisitor)
		v1.PUT("/visitors/:id", container.VisitorHandler.UpdateVisitor)

		// Tickets
		v1.POST("/tickets", container.TicketHandler.IssueTicket)
		v1.GET("/tickets/:id", container.TicketHandler.GetTicket)
		v1.POST("/tickets/:id/use", container.TicketHandler.MarkTicketUsed)
		v1.GET("/visitors/:id/tickets", container.TicketHandler.ListVisitorTickets)

		// Staffing
		v1.POST("/staff", container.StaffingHandler.CreateStaff)
		v1.GET("/staff/:id", container.StaffingHandler.GetStaff)
		v1.POST("/assignments", container.StaffingHandler.AssignStaff)
		v1.GET("/events/:id/assignments", container.StaffingHandler.ListAssignments)

		// Reviews
		v1.POST("/reviews", container.ReviewHandler.SubmitReview)
		v1.GET("/performances/:id/reviews", container.ReviewHandler.ListReviews)

		// Resale workflow - writes carry idempotency keys
		resale := v1.Group("/resale")
		{
			resale.POST("/listings", idempotent, container.ResaleHandler.ListForResale)
			resale.POST("/requests", idempotent, container.ResaleHandler.RequestPurchase)
			resale.POST("/requests/approve", idempotent, container.ResaleHandler.ApproveRequest)
			resale.POST("/requests/reject", idempotent, container.ResaleHandler.RejectRequest)
		}
		v1.GET("/tickets/:id/resale/queue", container.ResaleHandler.GetQueue)
		v1.GET("/tickets/:id/resale/audit", container.ResaleHandler.GetAuditLog)

		// Admin
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(&middleware.AuthConfig{
			Secret:         cfg.JWT.Secret,
			HeaderFallback: cfg.IsDevelopment(),
		}))
		{
			admin.POST("/resale/sweep", container.AdminHandler.TriggerExpirySweep)
			admin.GET("/resale/worker", container.AdminHandler.GetExpiryWorkerStats)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start pprof server on separate port for profiling
	go func() {
		pprofAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port+1000)
		appLog.Info(fmt.Sprintf("pprof server listening on %s", pprofAddr))
		if err := http.ListenAndServe(pprofAddr, nil); err != nil {
			appLog.Error(fmt.Sprintf("pprof server error: %v", err))
		}
	}()

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Festival Engine listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	container.ExpiryWorker.Stop()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
