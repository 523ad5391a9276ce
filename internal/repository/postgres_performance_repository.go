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

// PostgresPerformanceRepository implements PerformanceRepository using PostgreSQL with pgxpool
type PostgresPerformanceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPerformanceRepository creates a new PostgresPerformanceRepository
func NewPostgresPerformanceRepository(pool *pgxpool.Pool) *PostgresPerformanceRepository {
	return &PostgresPerformanceRepository{pool: pool}
}

const performanceColumns = `id, event_id, stage_id, artist_id, band_id, type, start_time, duration_min, created_at, deleted_at`

func (r *PostgresPerformanceRepository) Create(ctx context.Context, performance *domain.Performance) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.performance.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("performance_id", performance.ID),
		attribute.String("event_id", performance.EventID),
		attribute.String("performer", performance.Performer().Key()),
	)

	query := `
		INSERT INTO performances (
			id, event_id, stage_id, artist_id, band_id,
			type, start_time, duration_min, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		performance.ID,
		performance.EventID,
		performance.StageID,
		nullString(performance.ArtistID),
		nullString(performance.BandID),
		string(performance.Type),
		performance.StartTime,
		performance.DurationMin,
		performance.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create performance: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresPerformanceRepository) GetByID(ctx context.Context, id string) (*domain.Performance, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.performance.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("performance_id", id))

	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE id = $1 AND deleted_at IS NULL
	`

	performance, err := scanPerformanceRow(querierFrom(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrPerformanceNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get performance: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return performance, nil
}

// SoftDelete marks the performance deleted. Deleted rows stay in the table
// and are excluded from every scheduling read.
func (r *PostgresPerformanceRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.performance.soft_delete")
	defer span.End()

	span.SetAttributes(attribute.String("performance_id", id))

	query := `
		UPDATE performances SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query, id, at)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete performance: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrPerformanceNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresPerformanceRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Performance, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.performance.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY start_time
	`

	return r.queryPerformances(ctx, span, query, eventID)
}

func (r *PostgresPerformanceRepository) ListPerformancesByStageDay(ctx context.Context, stageID, dayID string) ([]*domain.Performance, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.performance.list_stage_day")
	defer span.End()

	span.SetAttributes(
		attribute.String("stage_id", stageID),
		attribute.String("day_id", dayID),
	)

	query := `
		SELECT p.id, p.event_id, p.stage_id, p.artist_id, p.band_id,
			p.type, p.start_time, p.duration_min, p.created_at, p.deleted_at
		FROM performances p
		JOIN events e ON p.event_id = e.id
		WHERE p.stage_id = $1 AND e.day_id = $2 AND p.deleted_at IS NULL
		ORDER BY p.start_time
	`

	return r.queryPerformances(ctx, span, query, stageID, dayID)
}

func (r *PostgresPerformanceRepository) ListPerformancesByPerformerOnDate(ctx context.Context, performer domain.PerformerRef, date time.Time) ([]*domain.Performance, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.performance.list_performer_date")
	defer span.End()

	span.SetAttributes(attribute.String("performer", performer.Key()))

	column := "artist_id"
	id := performer.ArtistID
	if id == "" {
		column = "band_id"
		id = performer.BandID
	}

	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE ` + column + ` = $1
			AND start_time::date = $2::date
			AND deleted_at IS NULL
		ORDER BY start_time
	`

	return r.queryPerformances(ctx, span, query, id, date)
}

// YearsPerformed reports which of the given festival years the performer
// appeared in, ignoring soft-deleted performances.
func (r *PostgresPerformanceRepository) YearsPerformed(ctx context.Context, performer domain.PerformerRef, years []int) (map[int]bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.performance.years_performed")
	defer span.End()

	span.SetAttributes(attribute.String("performer", performer.Key()))

	column := "artist_id"
	id := performer.ArtistID
	if id == "" {
		column = "band_id"
		id = performer.BandID
	}

	query := `
		SELECT DISTINCT EXTRACT(YEAR FROM start_time)::int
		FROM performances
		WHERE ` + column + ` = $1
			AND EXTRACT(YEAR FROM start_time)::int = ANY($2)
			AND deleted_at IS NULL
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, id, years)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query performed years: %w", err)
	}
	defer rows.Close()

	appeared := make(map[int]bool, len(years))
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan performed year: %w", err)
		}
		appeared[year] = true
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating performed years: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return appeared, nil
}

func (r *PostgresPerformanceRepository) CreateArtist(ctx context.Context, artist *domain.Artist) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.artist.create")
	defer span.End()

	span.SetAttributes(attribute.String("artist_id", artist.ID))

	query := `
		INSERT INTO artists (id, name, pseudonym, genre, subgenre, birthdate)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		artist.ID,
		artist.Name,
		nullString(artist.Pseudonym),
		artist.Genre,
		nullString(artist.Subgenre),
		artist.Birthdate,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create artist: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresPerformanceRepository) GetArtist(ctx context.Context, id string) (*domain.Artist, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.artist.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("artist_id", id))

	query := `
		SELECT id, name, pseudonym, genre, subgenre, birthdate
		FROM artists
		WHERE id = $1
	`

	artist := &domain.Artist{}
	var pseudonym, subgenre *string
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&artist.ID,
		&artist.Name,
		&pseudonym,
		&artist.Genre,
		&subgenre,
		&artist.Birthdate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrArtistNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	if pseudonym != nil {
		artist.Pseudonym = *pseudonym
	}
	if subgenre != nil {
		artist.Subgenre = *subgenre
	}

	span.SetStatus(codes.Ok, "")
	return artist, nil
}

func (r *PostgresPerformanceRepository) CreateBand(ctx context.Context, band *domain.Band) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.band.create")
	defer span.End()

	span.SetAttributes(attribute.String("band_id", band.ID))

	query := `
		INSERT INTO bands (id, name, genre, subgenre, formation_date)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		band.ID,
		band.Name,
		band.Genre,
		nullString(band.Subgenre),
		band.FormationDate,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create band: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresPerformanceRepository) GetBand(ctx context.Context, id string) (*domain.Band, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.band.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("band_id", id))

	query := `
		SELECT id, name, genre, subgenre, formation_date
		FROM bands
		WHERE id = $1
	`

	band := &domain.Band{}
	var subgenre *string
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&band.ID,
		&band.Name,
		&band.Genre,
		&subgenre,
		&band.FormationDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBandNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get band: %w", err)
	}
	if subgenre != nil {
		band.Subgenre = *subgenre
	}

	span.SetStatus(codes.Ok, "")
	return band, nil
}

func (r *PostgresPerformanceRepository) queryPerformances(ctx context.Context, span trace.Span, query string, args ...any) ([]*domain.Performance, error) {
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query performances: %w", err)
	}
	defer rows.Close()

	var performances []*domain.Performance
	for rows.Next() {
		performance, err := scanPerformanceRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		performances = append(performances, performance)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating performances: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(performances)))
	span.SetStatus(codes.Ok, "")
	return performances, nil
}

// scanPerformanceRow scans a row into a Performance struct
func scanPerformanceRow(row pgx.Row) (*domain.Performance, error) {
	performance := &domain.Performance{}
	var (
		artistID *string
		bandID   *string
		ptype    string
	)

	err := row.Scan(
		&performance.ID,
		&performance.EventID,
		&performance.StageID,
		&artistID,
		&bandID,
		&ptype,
		&performance.StartTime,
		&performance.DurationMin,
		&performance.CreatedAt,
		&performance.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan performance: %w", err)
	}

	performance.Type = domain.PerformanceType(ptype)
	if artistID != nil {
		performance.ArtistID = *artistID
	}
	if bandID != nil {
		performance.BandID = *bandID
	}
	return performance, nil
}

// nullString converts an empty string to a nil pointer.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresPerformanceRepository implements PerformanceRepository
var _ PerformanceRepository = (*PostgresPerformanceRepository)(nil)
