package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stylianoueleni/festival-engine/internal/service"
	"github.com/stylianoueleni/festival-engine/pkg/logger"
)

// ResaleExpiryWorkerConfig contains configuration for the resale expiry worker
type ResaleExpiryWorkerConfig struct {
	// ScanInterval is the interval between sweeps for timed-out requests
	ScanInterval time.Duration
	// BatchSize is the number of tickets to sweep per scan
	BatchSize int
}

// DefaultResaleExpiryWorkerConfig returns default configuration
func DefaultResaleExpiryWorkerConfig() *ResaleExpiryWorkerConfig {
	return &ResaleExpiryWorkerConfig{
		ScanInterval: 1 * time.Minute,
		BatchSize:    100,
	}
}

// ResaleExpiryWorker periodically sweeps the resale queue and cancels
// purchase requests that have outlived the pending timeout.
type ResaleExpiryWorker struct {
	resaleService service.ResaleService
	config        *ResaleExpiryWorkerConfig
	log           *logger.Logger
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool

	// Stats
	totalExpired     int64
	lastScanTime     time.Time
	lastExpiredCount int
}

// NewResaleExpiryWorker creates a new resale expiry worker
func NewResaleExpiryWorker(resaleService service.ResaleService, config *ResaleExpiryWorkerConfig) *ResaleExpiryWorker {
	if config == nil {
		config = DefaultResaleExpiryWorkerConfig()
	}

	return &ResaleExpiryWorker{
		resaleService: resaleService,
		config:        config,
		log:           logger.Get(),
		stopCh:        make(chan struct{}),
	}
}

// Start starts the expiry worker
func (w *ResaleExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("resale expiry worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting resale expiry worker")

	w.wg.Add(1)
	go w.scanLoop(ctx)

	return nil
}

// Stop stops the expiry worker and waits for the current sweep to finish
func (w *ResaleExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping resale expiry worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Resale expiry worker stopped")
}

func (w *ResaleExpiryWorker) scanLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ResaleExpiryWorker) sweep(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	expired, err := w.resaleService.ExpireRequests(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Resale expiry sweep failed: %v", err))
		return
	}

	w.mu.Lock()
	w.lastExpiredCount = expired
	w.totalExpired += int64(expired)
	w.mu.Unlock()

	if expired > 0 {
		w.log.Info(fmt.Sprintf("Expired %d stale purchase requests", expired))
	}
}

// GetStats returns worker statistics
func (w *ResaleExpiryWorker) GetStats() *ResaleExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ResaleExpiryWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

// ResaleExpiryWorkerStats contains worker statistics
type ResaleExpiryWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int       `json:"last_expired_count"`
}
