package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

const ticketColumns = `id, event_id, visitor_id, category, price, code, payment_method, purchase_date, is_used, resale_eligible`

func (r *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", ticket.ID),
		attribute.String("event_id", ticket.EventID),
		attribute.String("category", string(ticket.Category)),
	)

	query := `
		INSERT INTO tickets (
			id, event_id, visitor_id, category, price,
			code, payment_method, purchase_date, is_used, resale_eligible
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		ticket.ID,
		ticket.EventID,
		ticket.VisitorID,
		string(ticket.Category),
		ticket.Price,
		ticket.Code,
		string(ticket.Method),
		ticket.PurchaseDate,
		ticket.IsUsed,
		ticket.ResaleEligible,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1
	`

	ticket, err := r.getTicket(ctx, query, id)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

// GetByIDForUpdate locks the ticket row for the rest of the transaction,
// serializing resale transitions on the same ticket.
func (r *PostgresTicketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_for_update")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1
		FOR UPDATE
	`

	ticket, err := r.getTicket(ctx, query, id)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return ticket, nil
}

func (r *PostgresTicketRepository) getTicket(ctx context.Context, query, id string) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	var category, method string

	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.VisitorID,
		&category,
		&ticket.Price,
		&ticket.Code,
		&method,
		&ticket.PurchaseDate,
		&ticket.IsUsed,
		&ticket.ResaleEligible,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	ticket.Category = domain.TicketCategory(category)
	ticket.Method = domain.PaymentMethod(method)
	return ticket, nil
}

func (r *PostgresTicketRepository) ListByVisitor(ctx context.Context, visitorID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_by_visitor")
	defer span.End()

	span.SetAttributes(attribute.String("visitor_id", visitorID))

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE visitor_id = $1
		ORDER BY purchase_date DESC
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, visitorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket := &domain.Ticket{}
		var category, method string
		if err := rows.Scan(
			&ticket.ID,
			&ticket.EventID,
			&ticket.VisitorID,
			&category,
			&ticket.Price,
			&ticket.Code,
			&method,
			&ticket.PurchaseDate,
			&ticket.IsUsed,
			&ticket.ResaleEligible,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		ticket.Category = domain.TicketCategory(category)
		ticket.Method = domain.PaymentMethod(method)
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

// MarkUsed records gate entry. A used ticket can never re-enter the
// resale marketplace.
func (r *PostgresTicketRepository) MarkUsed(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.mark_used")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	query := `
		UPDATE tickets SET is_used = TRUE, resale_eligible = FALSE
		WHERE id = $1
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to mark ticket used: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrTicketNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresTicketRepository) TransferOwner(ctx context.Context, id, visitorID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.transfer_owner")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", id),
		attribute.String("visitor_id", visitorID),
	)

	query := `
		UPDATE tickets SET visitor_id = $2
		WHERE id = $1
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query, id, visitorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to transfer ticket: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrTicketNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresTicketRepository) SetResaleEligible(ctx context.Context, id string, eligible bool) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.set_resale_eligible")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", id),
		attribute.Bool("eligible", eligible),
	)

	query := `
		UPDATE tickets SET resale_eligible = $2
		WHERE id = $1
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query, id, eligible)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to set resale eligibility: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrTicketNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresTicketRepository) CountVipTicketsByEvent(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.count_vip")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT COUNT(*) FROM tickets
		WHERE event_id = $1 AND category = 'vip'
	`

	var count int
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count vip tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

func (r *PostgresTicketRepository) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.code_exists")
	defer span.End()

	query := `SELECT EXISTS(SELECT 1 FROM tickets WHERE code = $1)`

	var exists bool
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, code).Scan(&exists); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check ticket code: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// HasSameDayPerformerTicket reports whether the visitor already holds a
// ticket for another event, on the same calendar date, whose line-up
// shares a performer with the given event.
func (r *PostgresTicketRepository) HasSameDayPerformerTicket(ctx context.Context, visitorID, eventID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.same_day_performer")
	defer span.End()

	span.SetAttributes(
		attribute.String("visitor_id", visitorID),
		attribute.String("event_id", eventID),
	)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM tickets t
			JOIN events held ON t.event_id = held.id
			JOIN festival_days held_day ON held.day_id = held_day.id
			JOIN events target ON target.id = $2
			JOIN festival_days target_day ON target.day_id = target_day.id
			JOIN performances hp ON hp.event_id = held.id AND hp.deleted_at IS NULL
			JOIN performances tp ON tp.event_id = target.id AND tp.deleted_at IS NULL
			WHERE t.visitor_id = $1
				AND t.event_id <> $2
				AND held_day.date = target_day.date
				AND (
					(hp.artist_id IS NOT NULL AND hp.artist_id = tp.artist_id)
					OR (hp.band_id IS NOT NULL AND hp.band_id = tp.band_id)
				)
		)
	`

	var exists bool
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, visitorID, eventID).Scan(&exists); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check same-day performer ticket: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

func (r *PostgresTicketRepository) HasTicketForEvent(ctx context.Context, visitorID, eventID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.has_for_event")
	defer span.End()

	span.SetAttributes(
		attribute.String("visitor_id", visitorID),
		attribute.String("event_id", eventID),
	)

	query := `SELECT EXISTS(SELECT 1 FROM tickets WHERE visitor_id = $1 AND event_id = $2)`

	var exists bool
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, visitorID, eventID).Scan(&exists); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check event ticket: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// HasUsedTicketForPerformance reports whether the visitor attended an
// event containing the performance, evidenced by a used ticket.
func (r *PostgresTicketRepository) HasUsedTicketForPerformance(ctx context.Context, visitorID, performanceID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.used_for_performance")
	defer span.End()

	span.SetAttributes(
		attribute.String("visitor_id", visitorID),
		attribute.String("performance_id", performanceID),
	)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM tickets t
			JOIN performances p ON p.event_id = t.event_id
			WHERE t.visitor_id = $1 AND p.id = $2 AND t.is_used
		)
	`

	var exists bool
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, visitorID, performanceID).Scan(&exists); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check used ticket: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// Ensure PostgresTicketRepository implements TicketRepository
var _ TicketRepository = (*PostgresTicketRepository)(nil)
