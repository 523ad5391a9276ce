package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresAuditRepository persists the append-only resale audit log.
// Entries are written inside the same transaction as the transition they
// record, so the log never disagrees with the queue.
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

func (r *PostgresAuditRepository) Append(ctx context.Context, event *domain.AuditEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.audit.append")
	defer span.End()

	span.SetAttributes(
		attribute.String("action", string(event.Action)),
		attribute.String("ticket_id", event.TicketID),
	)

	query := `
		INSERT INTO resale_audit_log (id, action, ticket_id, request_id, actor_id, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		event.ID,
		string(event.Action),
		event.TicketID,
		nullString(event.RequestID),
		nullString(event.ActorID),
		nullString(event.Detail),
		event.OccurredAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresAuditRepository) ListByTicket(ctx context.Context, ticketID string) ([]*domain.AuditEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.audit.list_by_ticket")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	query := `
		SELECT id, action, ticket_id, request_id, actor_id, detail, occurred_at
		FROM resale_audit_log
		WHERE ticket_id = $1
		ORDER BY occurred_at, id
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		event := &domain.AuditEvent{}
		var action string
		var requestID, actorID, detail *string
		if err := rows.Scan(
			&event.ID,
			&action,
			&event.TicketID,
			&requestID,
			&actorID,
			&detail,
			&event.OccurredAt,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		event.Action = domain.AuditAction(action)
		if requestID != nil {
			event.RequestID = *requestID
		}
		if actorID != nil {
			event.ActorID = *actorID
		}
		if detail != nil {
			event.Detail = *detail
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// Ensure PostgresAuditRepository implements AuditRepository
var _ AuditRepository = (*PostgresAuditRepository)(nil)
