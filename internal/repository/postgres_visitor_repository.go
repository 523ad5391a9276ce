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

// PostgresVisitorRepository implements VisitorRepository using PostgreSQL with pgxpool
type PostgresVisitorRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVisitorRepository creates a new PostgresVisitorRepository
func NewPostgresVisitorRepository(pool *pgxpool.Pool) *PostgresVisitorRepository {
	return &PostgresVisitorRepository{pool: pool}
}

func (r *PostgresVisitorRepository) Create(ctx context.Context, visitor *domain.Visitor) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.visitor.create")
	defer span.End()

	span.SetAttributes(attribute.String("visitor_id", visitor.ID))

	query := `
		INSERT INTO visitors (id, first_name, last_name, email, phone, birthdate)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		visitor.ID,
		visitor.FirstName,
		visitor.LastName,
		visitor.Email,
		nullString(visitor.Phone),
		visitor.Birthdate,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create visitor: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresVisitorRepository) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.visitor.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("visitor_id", id))

	query := `
		SELECT id, first_name, last_name, email, phone, birthdate
		FROM visitors
		WHERE id = $1
	`

	visitor := &domain.Visitor{}
	var phone *string
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&visitor.ID,
		&visitor.FirstName,
		&visitor.LastName,
		&visitor.Email,
		&phone,
		&visitor.Birthdate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrVisitorNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	if phone != nil {
		visitor.Phone = *phone
	}

	span.SetStatus(codes.Ok, "")
	return visitor, nil
}

func (r *PostgresVisitorRepository) Update(ctx context.Context, visitor *domain.Visitor) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.visitor.update")
	defer span.End()

	span.SetAttributes(attribute.String("visitor_id", visitor.ID))

	query := `
		UPDATE visitors SET
			first_name = $2,
			last_name = $3,
			email = $4,
			phone = $5,
			birthdate = $6
		WHERE id = $1
	`

	result, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		visitor.ID,
		visitor.FirstName,
		visitor.LastName,
		visitor.Email,
		nullString(visitor.Phone),
		visitor.Birthdate,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update visitor: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrVisitorNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresVisitorRepository implements VisitorRepository
var _ VisitorRepository = (*PostgresVisitorRepository)(nil)
