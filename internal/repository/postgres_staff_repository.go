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

// PostgresStaffRepository implements StaffRepository using PostgreSQL with pgxpool
type PostgresStaffRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStaffRepository creates a new PostgresStaffRepository
func NewPostgresStaffRepository(pool *pgxpool.Pool) *PostgresStaffRepository {
	return &PostgresStaffRepository{pool: pool}
}

func (r *PostgresStaffRepository) CreateStaff(ctx context.Context, staff *domain.Staff) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.staff.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("staff_id", staff.ID),
		attribute.String("role", string(staff.Role)),
	)

	query := `
		INSERT INTO staff (id, name, role, experience_level)
		VALUES ($1, $2, $3, $4)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		staff.ID,
		staff.Name,
		string(staff.Role),
		staff.ExperienceLevel,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create staff: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresStaffRepository) GetStaff(ctx context.Context, id string) (*domain.Staff, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.staff.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("staff_id", id))

	query := `
		SELECT id, name, role, experience_level
		FROM staff
		WHERE id = $1
	`

	staff := &domain.Staff{}
	var role string
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&staff.ID,
		&staff.Name,
		&role,
		&staff.ExperienceLevel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrStaffNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	staff.Role = domain.StaffRole(role)

	span.SetStatus(codes.Ok, "")
	return staff, nil
}

func (r *PostgresStaffRepository) CreateAssignment(ctx context.Context, assignment *domain.StaffAssignment) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.staff.create_assignment")
	defer span.End()

	span.SetAttributes(
		attribute.String("assignment_id", assignment.ID),
		attribute.String("event_id", assignment.EventID),
		attribute.String("role", string(assignment.Role)),
	)

	query := `
		INSERT INTO staff_assignments (id, staff_id, event_id, role, shift_start, shift_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		assignment.ID,
		assignment.StaffID,
		assignment.EventID,
		string(assignment.Role),
		assignment.ShiftStart,
		assignment.ShiftEnd,
		assignment.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create staff assignment: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *PostgresStaffRepository) ListAssignmentsByEvent(ctx context.Context, eventID string) ([]*domain.StaffAssignment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.staff.list_assignments")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT id, staff_id, event_id, role, shift_start, shift_end, created_at
		FROM staff_assignments
		WHERE event_id = $1
		ORDER BY shift_start
	`

	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list staff assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*domain.StaffAssignment
	for rows.Next() {
		assignment := &domain.StaffAssignment{}
		var role string
		if err := rows.Scan(
			&assignment.ID,
			&assignment.StaffID,
			&assignment.EventID,
			&role,
			&assignment.ShiftStart,
			&assignment.ShiftEnd,
			&assignment.CreatedAt,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan staff assignment: %w", err)
		}
		assignment.Role = domain.StaffRole(role)
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating staff assignments: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(assignments)))
	span.SetStatus(codes.Ok, "")
	return assignments, nil
}

func (r *PostgresStaffRepository) CountAssignmentsByEventAndRole(ctx context.Context, eventID string, role domain.StaffRole) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.staff.count_by_role")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("role", string(role)),
	)

	query := `
		SELECT COUNT(*) FROM staff_assignments
		WHERE event_id = $1 AND role = $2
	`

	var count int
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, eventID, string(role)).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count staff assignments: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// Ensure PostgresStaffRepository implements StaffRepository
var _ StaffRepository = (*PostgresStaffRepository)(nil)
