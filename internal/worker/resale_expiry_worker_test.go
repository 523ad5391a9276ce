package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/service"
)

// MockResaleService is a mock implementation of service.ResaleService
type MockResaleService struct {
	mock.Mock
}

func (m *MockResaleService) ListForResale(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResaleRequestResponse), args.Error(1)
}

func (m *MockResaleService) RequestPurchase(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResaleRequestResponse), args.Error(1)
}

func (m *MockResaleService) ApproveRequest(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResaleRequestResponse), args.Error(1)
}

func (m *MockResaleService) RejectRequest(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResaleRequestResponse), args.Error(1)
}

func (m *MockResaleService) ExpireRequests(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockResaleService) GetQueue(ctx context.Context, ticketID string) (*dto.ResaleQueueResponse, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResaleQueueResponse), args.Error(1)
}

func (m *MockResaleService) GetAuditLog(ctx context.Context, ticketID string) ([]*dto.AuditEventResponse, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.AuditEventResponse), args.Error(1)
}

var _ service.ResaleService = (*MockResaleService)(nil)

func TestNewResaleExpiryWorker(t *testing.T) {
	mockSvc := new(MockResaleService)

	t.Run("creates worker with custom config", func(t *testing.T) {
		cfg := &ResaleExpiryWorkerConfig{
			ScanInterval: 5 * time.Second,
			BatchSize:    10,
		}
		w := NewResaleExpiryWorker(mockSvc, cfg)
		assert.NotNil(t, w)
		assert.Equal(t, 10, w.config.BatchSize)
	})

	t.Run("falls back to default config", func(t *testing.T) {
		w := NewResaleExpiryWorker(mockSvc, nil)
		assert.NotNil(t, w)
		assert.Equal(t, 1*time.Minute, w.config.ScanInterval)
		assert.Equal(t, 100, w.config.BatchSize)
	})
}

func TestResaleExpiryWorker_StartStop(t *testing.T) {
	mockSvc := new(MockResaleService)
	mockSvc.On("ExpireRequests", mock.Anything, 100).Return(0, nil)

	w := NewResaleExpiryWorker(mockSvc, &ResaleExpiryWorkerConfig{
		ScanInterval: 1 * time.Hour,
		BatchSize:    100,
	})

	err := w.Start(context.Background())
	assert.NoError(t, err)

	// Starting twice is an error.
	err = w.Start(context.Background())
	assert.Error(t, err)

	w.Stop()
	assert.False(t, w.GetStats().IsRunning)

	// Stopping again is a no-op.
	w.Stop()

	// The initial sweep ran once on start.
	mockSvc.AssertNumberOfCalls(t, "ExpireRequests", 1)
}

func TestResaleExpiryWorker_SweepStats(t *testing.T) {
	mockSvc := new(MockResaleService)
	mockSvc.On("ExpireRequests", mock.Anything, 50).Return(3, nil).Once()
	mockSvc.On("ExpireRequests", mock.Anything, 50).Return(2, nil).Once()

	w := NewResaleExpiryWorker(mockSvc, &ResaleExpiryWorkerConfig{
		ScanInterval: 1 * time.Hour,
		BatchSize:    50,
	})

	w.sweep(context.Background())
	w.sweep(context.Background())

	stats := w.GetStats()
	assert.Equal(t, int64(5), stats.TotalExpired)
	assert.Equal(t, 2, stats.LastExpiredCount)
	assert.False(t, stats.LastScanTime.IsZero())
	mockSvc.AssertExpectations(t)
}

func TestResaleExpiryWorker_SweepError(t *testing.T) {
	mockSvc := new(MockResaleService)
	mockSvc.On("ExpireRequests", mock.Anything, 100).Return(0, assert.AnError)

	w := NewResaleExpiryWorker(mockSvc, nil)
	w.sweep(context.Background())

	// A failed sweep leaves the counters untouched.
	stats := w.GetStats()
	assert.Zero(t, stats.TotalExpired)
	assert.Zero(t, stats.LastExpiredCount)
}
