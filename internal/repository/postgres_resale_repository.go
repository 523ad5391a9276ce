package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PostgresResaleRepository implements ResaleRepository using PostgreSQL with pgxpool.
// The seq column is a BIGSERIAL: insertion order breaks requested_at ties,
// so FIFO order within a ticket is total.
type PostgresResaleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresResaleRepository creates a new PostgresResaleRepository
func NewPostgresResaleRepository(pool *pgxpool.Pool) *PostgresResaleRepository {
	return &PostgresResaleRepository{pool: pool}
}

const resaleColumns = `id, ticket_id, seller_id, buyer_id, price, status, requested_at, seq, resolved_at`

func (r *PostgresResaleRepository) Create(ctx context.Context, request *domain.ResaleRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("request_id", request.ID),
		attribute.String("ticket_id", request.TicketID),
		attribute.String("status", string(request.Status)),
	)

	query := `
		INSERT INTO resale_requests (id, ticket_id, seller_id, buyer_id, price, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`

	err := querierFrom(ctx, r.pool).QueryRow(ctx, query,
		request.ID,
		request.TicketID,
		request.SellerID,
		nullString(request.BuyerID),
		request.Price,
		string(request.Status),
		request.RequestedAt,
	).Scan(&request.Seq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create resale request: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresResaleRepository) GetByID(ctx context.Context, id string) (*domain.ResaleRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("request_id", id))

	query := `
		SELECT ` + resaleColumns + `
		FROM resale_requests
		WHERE id = $1
	`

	return r.getRequest(ctx, span, query, id)
}

// GetPendingForUpdate locks a specific pending request. Callers must be
// inside WithTx.
func (r *PostgresResaleRepository) GetPendingForUpdate(ctx context.Context, id string) (*domain.ResaleRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.get_pending_for_update")
	defer span.End()

	span.SetAttributes(attribute.String("request_id", id))

	query := `
		SELECT ` + resaleColumns + `
		FROM resale_requests
		WHERE id = $1 AND status = 'pending'
		FOR UPDATE
	`

	return r.getRequest(ctx, span, query, id)
}

func (r *PostgresResaleRepository) GetActiveListing(ctx context.Context, ticketID string) (*domain.ResaleRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.get_listing")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT ` + resaleColumns + `
		FROM resale_requests
		WHERE ticket_id = $1 AND status = 'available'
		ORDER BY requested_at DESC, seq DESC
		LIMIT 1
	`

	return r.getRequest(ctx, span, query, ticketID)
}

// GetActiveListingForUpdate locks the ticket's available listing. Callers
// must be inside WithTx.
func (r *PostgresResaleRepository) GetActiveListingForUpdate(ctx context.Context, ticketID string) (*domain.ResaleRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.get_listing_for_update")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT ` + resaleColumns + `
		FROM resale_requests
		WHERE ticket_id = $1 AND status = 'available'
		ORDER BY requested_at DESC, seq DESC
		LIMIT 1
		FOR UPDATE
	`

	return r.getRequest(ctx, span, query, ticketID)
}

// OldestPendingForUpdate returns the head of the ticket's FIFO queue,
// locked. Callers must be inside WithTx.
func (r *PostgresResaleRepository) OldestPendingForUpdate(ctx context.Context, ticketID string) (*domain.ResaleRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.oldest_pending")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT ` + resaleColumns + `
		FROM resale_requests
		WHERE ticket_id = $1 AND status = 'pending'
		ORDER BY requested_at, seq
		LIMIT 1
		FOR UPDATE
	`

	return r.getRequest(ctx, span, query, ticketID)
}

func (r *PostgresResaleRepository) ListPending(ctx context.Context, ticketID string) ([]*domain.ResaleRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.list_pending")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT ` + resaleColumns + `
		FROM resale_requests
		WHERE ticket_id = $1 AND status = 'pending'
		ORDER BY requested_at, seq
	`

	return r.queryRequests(ctx, span, query, ticketID)
}

func (r *PostgresResaleRepository) CountPending(ctx context.Context, ticketID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.count_pending")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT COUNT(*) FROM resale_requests
		WHERE ticket_id = $1 AND status = 'pending'
	`

	var count int
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

func (r *PostgresResaleRepository) HasPendingByBuyer(ctx context.Context, ticketID, buyerID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.has_pending_by_buyer")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticketID),
		attribute.String("buyer_id", buyerID),
	)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM resale_requests
			WHERE ticket_id = $1 AND buyer_id = $2 AND status = 'pending'
		)
	`

	var exists bool
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, ticketID, buyerID).Scan(&exists); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

func (r *PostgresResaleRepository) UpdateStatus(ctx context.Context, id string, status domain.ResaleStatus, resolvedAt time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("request_id", id),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE resale_requests SET status = $2, resolved_at = $3
		WHERE id = $1
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query, id, string(status), resolvedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update resale request: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrResaleRequestNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresResaleRepository) ListByTicket(ctx context.Context, ticketID string) ([]*domain.ResaleRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.list_by_ticket")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT ` + resaleColumns + `
		FROM resale_requests
		WHERE ticket_id = $1
		ORDER BY requested_at, seq
	`

	return r.queryRequests(ctx, span, query, ticketID)
}

// ListExpiredPendingTicketIDs is the sweep's work list: distinct tickets
// holding at least one pending request older than the cutoff. The sweep
// then handles each ticket in its own transaction.
func (r *PostgresResaleRepository) ListExpiredPendingTicketIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.list_expired_tickets")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		SELECT DISTINCT ticket_id
		FROM resale_requests
		WHERE status = 'pending' AND requested_at <= $1
		LIMIT $2
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, cutoff, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list expired tickets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating expired tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(ids)))
	span.SetStatus(codes.Ok, "")
	return ids, nil
}

// ListExpiredPendingForUpdate locks and returns the ticket's expired
// pending requests in FIFO order. Callers must be inside WithTx.
func (r *PostgresResaleRepository) ListExpiredPendingForUpdate(ctx context.Context, ticketID string, cutoff time.Time) ([]*domain.ResaleRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.resale.list_expired_for_update")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT ` + resaleColumns + `
		FROM resale_requests
		WHERE ticket_id = $1 AND status = 'pending' AND requested_at <= $2
		ORDER BY requested_at, seq
		FOR UPDATE
	`

	return r.queryRequests(ctx, span, query, ticketID, cutoff)
}

func (r *PostgresResaleRepository) getRequest(ctx context.Context, span trace.Span, query string, args ...any) (*domain.ResaleRequest, error) {
	request, err := scanResaleRow(querierFrom(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrResaleRequestNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get resale request: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return request, nil
}

func (r *PostgresResaleRepository) queryRequests(ctx context.Context, span trace.Span, query string, args ...any) ([]*domain.ResaleRequest, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query resale requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.ResaleRequest
	for rows.Next() {
		request, err := scanResaleRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating resale requests: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(requests)))
	span.SetStatus(codes.Ok, "")
	return requests, nil
}

// scanResaleRow scans a row into a ResaleRequest struct
func scanResaleRow(row pgx.Row) (*domain.ResaleRequest, error) {
	request := &domain.ResaleRequest{}
	var (
		buyerID *string
		status  string
	)

	err := row.Scan(
		&request.ID,
		&request.TicketID,
		&request.SellerID,
		&buyerID,
		&request.Price,
		&status,
		&request.RequestedAt,
		&request.Seq,
		&request.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan resale request: %w", err)
	}

	request.Status = domain.ResaleStatus(status)
	if buyerID != nil {
		request.BuyerID = *buyerID
	}
	return request, nil
}

// Ensure PostgresResaleRepository implements ResaleRepository
var _ ResaleRepository = (*PostgresResaleRepository)(nil)
