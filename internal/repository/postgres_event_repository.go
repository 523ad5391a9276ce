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
	"go.opentelemetry.io/otel/trace"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("stage_id", event.StageID),
		attribute.String("day_id", event.DayID),
	)

	query := `
		INSERT INTO events (id, day_id, stage_id, name, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.DayID,
		event.StageID,
		event.Name,
		event.StartTime,
		event.EndTime,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `
		SELECT id, day_id, stage_id, name, start_time, end_time
		FROM events
		WHERE id = $1
	`

	event := &domain.Event{}
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.DayID,
		&event.StageID,
		&event.Name,
		&event.StartTime,
		&event.EndTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

func (r *PostgresEventRepository) ListEventsOnStageDay(ctx context.Context, stageID, dayID string) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_stage_day")
	defer span.End()

	span.SetAttributes(
		attribute.String("stage_id", stageID),
		attribute.String("day_id", dayID),
	)

	query := `
		SELECT id, day_id, stage_id, name, start_time, end_time
		FROM events
		WHERE stage_id = $1 AND day_id = $2
		ORDER BY start_time
	`

	return r.queryEvents(ctx, span, query, stageID, dayID)
}

func (r *PostgresEventRepository) ListByDay(ctx context.Context, dayID string) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_by_day")
	defer span.End()

	span.SetAttributes(attribute.String("day_id", dayID))

	query := `
		SELECT id, day_id, stage_id, name, start_time, end_time
		FROM events
		WHERE day_id = $1
		ORDER BY start_time
	`

	return r.queryEvents(ctx, span, query, dayID)
}

func (r *PostgresEventRepository) queryEvents(ctx context.Context, span trace.Span, query string, args ...any) ([]*domain.Event, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event := &domain.Event{}
		if err := rows.Scan(
			&event.ID,
			&event.DayID,
			&event.StageID,
			&event.Name,
			&event.StartTime,
			&event.EndTime,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
