package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// skipIfNoIntegration skips the test if INTEGRATION_TEST env var is not set
func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

// getPostgresPool creates a PostgreSQL connection pool for testing
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("TEST_POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	user := os.Getenv("TEST_POSTGRES_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("TEST_POSTGRES_PASSWORD")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("TEST_POSTGRES_DB")
	if dbname == "" {
		dbname = "festival_engine_test"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}

	return pool
}

func TestPostgresResaleRepository_GetByID_NotFound(t *testing.T) {
	skipIfNoIntegration(t)

	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresResaleRepository(pool)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New().String())
	if err != domain.ErrResaleRequestNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, domain.ErrResaleRequestNotFound)
	}
}

func TestPostgresResaleRepository_UpdateStatus_NotFound(t *testing.T) {
	skipIfNoIntegration(t)

	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresResaleRepository(pool)
	ctx := context.Background()

	err := repo.UpdateStatus(ctx, uuid.New().String(), domain.ResaleStatusCancelled, time.Now())
	if err != domain.ErrResaleRequestNotFound {
		t.Errorf("UpdateStatus() error = %v, want %v", err, domain.ErrResaleRequestNotFound)
	}
}

func TestPostgresResaleRepository_FIFOOrder(t *testing.T) {
	skipIfNoIntegration(t)

	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresResaleRepository(pool)
	ctx := context.Background()

	t.Skip("Skipping: requires existing ticket and visitor records")

	ticketID := "existing-ticket-id"
	sellerID := "existing-seller-id"
	requestedAt := time.Now().Truncate(time.Second)

	// Two requests with identical timestamps: seq must break the tie.
	first := &domain.ResaleRequest{
		ID:          uuid.New().String(),
		TicketID:    ticketID,
		SellerID:    sellerID,
		BuyerID:     "buyer-a",
		Price:       50,
		Status:      domain.ResaleStatusPending,
		RequestedAt: requestedAt,
	}
	second := &domain.ResaleRequest{
		ID:          uuid.New().String(),
		TicketID:    ticketID,
		SellerID:    sellerID,
		BuyerID:     "buyer-b",
		Price:       50,
		Status:      domain.ResaleStatusPending,
		RequestedAt: requestedAt,
	}

	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if second.Seq <= first.Seq {
		t.Errorf("Seq = %d after %d, want monotonic increase", second.Seq, first.Seq)
	}

	pending, err := repo.ListPending(ctx, ticketID)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("ListPending() returned %d requests, want 2", len(pending))
	}
	if pending[0].ID != first.ID {
		t.Errorf("ListPending()[0].ID = %v, want %v", pending[0].ID, first.ID)
	}
}

func TestPostgresResaleRepository_ListExpiredPendingTicketIDs(t *testing.T) {
	skipIfNoIntegration(t)

	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresResaleRepository(pool)
	ctx := context.Background()

	// Query works even against an empty table.
	ids, err := repo.ListExpiredPendingTicketIDs(ctx, time.Now().Add(-24*time.Hour), 100)
	if err != nil {
		t.Fatalf("ListExpiredPendingTicketIDs() error = %v", err)
	}
	t.Logf("Found %d tickets with expired pending requests", len(ids))
}
