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

// PostgresReviewRepository implements ReviewRepository using PostgreSQL with pgxpool
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReviewRepository creates a new PostgresReviewRepository
func NewPostgresReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

func (r *PostgresReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("review_id", review.ID),
		attribute.String("performance_id", review.PerformanceID),
	)

	query := `
		INSERT INTO reviews (
			id, visitor_id, performance_id,
			interpretation, sound_lighting, stage_presence, organization, overall,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		review.ID,
		review.VisitorID,
		review.PerformanceID,
		review.Interpretation,
		review.SoundLighting,
		review.StagePresence,
		review.Organization,
		review.Overall,
		review.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create review: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresReviewRepository) ListByPerformance(ctx context.Context, performanceID string) ([]*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.review.list_by_performance")
	defer span.End()

	span.SetAttributes(attribute.String("performance_id", performanceID))

	query := `
		SELECT id, visitor_id, performance_id,
			interpretation, sound_lighting, stage_presence, organization, overall,
			created_at
		FROM reviews
		WHERE performance_id = $1
		ORDER BY created_at DESC
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, performanceID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review := &domain.Review{}
		if err := rows.Scan(
			&review.ID,
			&review.VisitorID,
			&review.PerformanceID,
			&review.Interpretation,
			&review.SoundLighting,
			&review.StagePresence,
			&review.Organization,
			&review.Overall,
			&review.CreatedAt,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(reviews)))
	span.SetStatus(codes.Ok, "")
	return reviews, nil
}

// Ensure PostgresReviewRepository implements ReviewRepository
var _ ReviewRepository = (*PostgresReviewRepository)(nil)
