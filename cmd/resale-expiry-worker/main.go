package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stylianoueleni/festival-engine/internal/repository"
	"github.com/stylianoueleni/festival-engine/internal/service"
	"github.com/stylianoueleni/festival-engine/internal/worker"
	"github.com/stylianoueleni/festival-engine/pkg/config"
	"github.com/stylianoueleni/festival-engine/pkg/database"
	"github.com/stylianoueleni/festival-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "resale-expiry-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Resale Expiry Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection. The worker only sweeps, a small
	// pool is enough.
	dbCfg := &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      10,
		MinConns:      2,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Kafka audit publisher
	var auditPublisher service.AuditPublisher
	auditPublisher, err = service.NewKafkaAuditPublisher(ctx, &service.AuditPublisherConfig{
		Brokers:           cfg.Kafka.Brokers,
		AuditTopic:        cfg.Kafka.AuditTopic,
		NotificationTopic: cfg.Kafka.NotificationTopic,
		ServiceName:       "resale-expiry-worker",
		ClientID:          cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		auditPublisher = service.NewNoOpAuditPublisher()
	} else {
		appLog.Info("Kafka audit publisher connected")
	}
	defer auditPublisher.Close()

	// Initialize repositories and resale service
	pool := db.Pool()
	ticketRepo := repository.NewPostgresTicketRepository(pool)
	resaleRepo := repository.NewPostgresResaleRepository(pool)
	auditRepo := repository.NewPostgresAuditRepository(pool)
	tx := repository.NewTxManager(pool)

	resaleService := service.NewResaleService(
		ticketRepo,
		resaleRepo,
		auditRepo,
		tx,
		auditPublisher,
		&service.ResaleServiceConfig{
			PendingTimeout: cfg.Resale.PendingTimeout,
		},
	)

	// Create worker
	expiryWorker := worker.NewResaleExpiryWorker(resaleService, &worker.ResaleExpiryWorkerConfig{
		ScanInterval: cfg.Resale.SweepInterval,
		BatchSize:    cfg.Resale.SweepBatchSize,
	})

	// Start worker
	if err := expiryWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start worker: %v", err))
	}

	appLog.Info("Resale Expiry Worker started successfully")

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down worker...")
	expiryWorker.Stop()
	cancel()

	appLog.Info("Worker exited gracefully")
}
