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

// PostgresFestivalRepository implements FestivalRepository using PostgreSQL with pgxpool
type PostgresFestivalRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFestivalRepository creates a new PostgresFestivalRepository
func NewPostgresFestivalRepository(pool *pgxpool.Pool) *PostgresFestivalRepository {
	return &PostgresFestivalRepository{pool: pool}
}

func (r *PostgresFestivalRepository) CreateFestival(ctx context.Context, festival *domain.Festival) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("festival_id", festival.ID),
		attribute.Int("year", festival.Year),
	)

	query := `
		INSERT INTO festivals (id, name, year, location, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		festival.ID,
		festival.Name,
		festival.Year,
		festival.Location,
		festival.StartDate,
		festival.EndDate,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create festival: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresFestivalRepository) GetFestival(ctx context.Context, id string) (*domain.Festival, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("festival_id", id))

	query := `
		SELECT id, name, year, location, start_date, end_date
		FROM festivals
		WHERE id = $1
	`

	festival := &domain.Festival{}
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&festival.ID,
		&festival.Name,
		&festival.Year,
		&festival.Location,
		&festival.StartDate,
		&festival.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrFestivalNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get festival: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return festival, nil
}

// GetFestivalByDay resolves the festival edition a day belongs to.
func (r *PostgresFestivalRepository) GetFestivalByDay(ctx context.Context, dayID string) (*domain.Festival, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.get_by_day")
	defer span.End()

	span.SetAttributes(attribute.String("day_id", dayID))

	query := `
		SELECT f.id, f.name, f.year, f.location, f.start_date, f.end_date
		FROM festivals f
		JOIN festival_days d ON d.festival_id = f.id
		WHERE d.id = $1
	`

	festival := &domain.Festival{}
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, dayID).Scan(
		&festival.ID,
		&festival.Name,
		&festival.Year,
		&festival.Location,
		&festival.StartDate,
		&festival.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrFestivalDayNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get festival by day: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return festival, nil
}

func (r *PostgresFestivalRepository) CreateDay(ctx context.Context, day *domain.FestivalDay) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.create_day")
	defer span.End()

	span.SetAttributes(
		attribute.String("day_id", day.ID),
		attribute.String("festival_id", day.FestivalID),
	)

	query := `
		INSERT INTO festival_days (id, festival_id, date)
		VALUES ($1, $2, $3)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query, day.ID, day.FestivalID, day.Date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create festival day: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresFestivalRepository) GetDay(ctx context.Context, id string) (*domain.FestivalDay, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.get_day")
	defer span.End()

	span.SetAttributes(attribute.String("day_id", id))

	query := `
		SELECT id, festival_id, date
		FROM festival_days
		WHERE id = $1
	`

	day := &domain.FestivalDay{}
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(&day.ID, &day.FestivalID, &day.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrFestivalDayNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get festival day: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return day, nil
}

func (r *PostgresFestivalRepository) ListDays(ctx context.Context, festivalID string) ([]*domain.FestivalDay, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.list_days")
	defer span.End()

	span.SetAttributes(attribute.String("festival_id", festivalID))

	query := `
		SELECT id, festival_id, date
		FROM festival_days
		WHERE festival_id = $1
		ORDER BY date
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, festivalID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list festival days: %w", err)
	}
	defer rows.Close()

	var days []*domain.FestivalDay
	for rows.Next() {
		day := &domain.FestivalDay{}
		if err := rows.Scan(&day.ID, &day.FestivalID, &day.Date); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan festival day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating festival days: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(days)))
	span.SetStatus(codes.Ok, "")
	return days, nil
}

func (r *PostgresFestivalRepository) CreateStage(ctx context.Context, stage *domain.Stage) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.create_stage")
	defer span.End()

	span.SetAttributes(
		attribute.String("stage_id", stage.ID),
		attribute.Int("capacity", stage.Capacity),
	)

	query := `
		INSERT INTO stages (id, name, location, capacity)
		VALUES ($1, $2, $3, $4)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query, stage.ID, stage.Name, stage.Location, stage.Capacity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create stage: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresFestivalRepository) GetStage(ctx context.Context, id string) (*domain.Stage, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.get_stage")
	defer span.End()

	span.SetAttributes(attribute.String("stage_id", id))

	query := `
		SELECT id, name, location, capacity
		FROM stages
		WHERE id = $1
	`

	stage := &domain.Stage{}
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(&stage.ID, &stage.Name, &stage.Location, &stage.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrStageNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return stage, nil
}

func (r *PostgresFestivalRepository) ListStages(ctx context.Context) ([]*domain.Stage, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.festival.list_stages")
	defer span.End()

	query := `
		SELECT id, name, location, capacity
		FROM stages
		ORDER BY name
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	var stages []*domain.Stage
	for rows.Next() {
		stage := &domain.Stage{}
		if err := rows.Scan(&stage.ID, &stage.Name, &stage.Location, &stage.Capacity); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, stage)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating stages: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(stages)))
	span.SetStatus(codes.Ok, "")
	return stages, nil
}

// Ensure PostgresFestivalRepository implements FestivalRepository
var _ FestivalRepository = (*PostgresFestivalRepository)(nil)
