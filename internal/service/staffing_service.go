package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/metrics"
	"github.com/stylianoueleni/festival-engine/internal/repository"
	"github.com/stylianoueleni/festival-engine/internal/validator"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// StaffingService defines the interface for staff management and event
// assignments
type StaffingService interface {
	// CreateStaff registers a staff member
	CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.StaffResponse, error)

	// GetStaff retrieves a staff member by ID
	GetStaff(ctx context.Context, id string) (*dto.StaffResponse, error)

	// AssignStaff assigns a staff member to an event shift. Security and
	// support assignments are capped by the stage's capacity ratios;
	// technician counts are never capped.
	AssignStaff(ctx context.Context, req *dto.AssignStaffRequest) (*dto.AssignmentResponse, error)

	// ListAssignments lists an event's staff assignments
	ListAssignments(ctx context.Context, eventID string) ([]*dto.AssignmentResponse, error)
}

// staffingService implements StaffingService
type staffingService struct {
	staffRepo    repository.StaffRepository
	eventRepo    repository.EventRepository
	festivalRepo repository.FestivalRepository
	tx           repository.Transactor
	ratio        validator.AssignmentValidator
}

// NewStaffingService creates a new staffing service
func NewStaffingService(
	staffRepo repository.StaffRepository,
	eventRepo repository.EventRepository,
	festivalRepo repository.FestivalRepository,
	tx repository.Transactor,
) StaffingService {
	return &staffingService{
		staffRepo:    staffRepo,
		eventRepo:    eventRepo,
		festivalRepo: festivalRepo,
		tx:           tx,
		ratio:        validator.NewStaffingRatio(staffRepo),
	}
}

// CreateStaff registers a staff member
func (s *staffingService) CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.staffing.create_staff")
	defer span.End()

	staff := &domain.Staff{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Role:            domain.StaffRole(req.Role),
		ExperienceLevel: req.ExperienceLevel,
	}

	span.SetAttributes(
		attribute.String("staff_id", staff.ID),
		attribute.String("role", string(staff.Role)),
	)

	if err := s.staffRepo.CreateStaff(ctx, staff); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.StaffFromDomain(staff), nil
}

// GetStaff retrieves a staff member by ID
func (s *staffingService) GetStaff(ctx context.Context, id string) (*dto.StaffResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.staffing.get_staff")
	defer span.End()

	span.SetAttributes(attribute.String("staff_id", id))

	staff, err := s.staffRepo.GetStaff(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.StaffFromDomain(staff), nil
}

// AssignStaff assigns a staff member to an event shift
func (s *staffingService) AssignStaff(ctx context.Context, req *dto.AssignStaffRequest) (*dto.AssignmentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.staffing.assign")
	defer span.End()

	span.SetAttributes(
		attribute.String("staff_id", req.StaffID),
		attribute.String("event_id", req.EventID),
		attribute.String("role", req.Role),
	)

	staff, err := s.staffRepo.GetStaff(ctx, req.StaffID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	assignment := &domain.StaffAssignment{
		ID:         uuid.New().String(),
		StaffID:    staff.ID,
		EventID:    req.EventID,
		Role:       domain.StaffRole(req.Role),
		ShiftStart: req.ShiftStart,
		ShiftEnd:   req.ShiftEnd,
		CreatedAt:  time.Now(),
	}
	if err := assignment.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	// A staff member works shifts in their registered role only.
	if assignment.Role != staff.Role {
		span.SetStatus(codes.Error, "role mismatch")
		return nil, domain.ErrInvalidStaffRole
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	stage, err := s.festivalRepo.GetStage(ctx, event.StageID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidate := &validator.AssignmentCandidate{Assignment: assignment, Stage: stage}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ratio.Validate(ctx, candidate); err != nil {
			if domain.IsInvariantViolation(err) {
				metrics.RecordInvariantRejection(ctx, s.ratio.Name(), "assign_staff")
			}
			return err
		}
		return s.staffRepo.CreateAssignment(ctx, assignment)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("assignment_id", assignment.ID))
	span.SetStatus(codes.Ok, "")
	return dto.AssignmentFromDomain(assignment), nil
}

// ListAssignments lists an event's staff assignments
func (s *staffingService) ListAssignments(ctx context.Context, eventID string) ([]*dto.AssignmentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.staffing.list_assignments")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	assignments, err := s.staffRepo.ListAssignmentsByEvent(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, dto.AssignmentFromDomain(a))
	}

	span.SetStatus(codes.Ok, "")
	return responses, nil
}
