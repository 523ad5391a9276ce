package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/repository"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// VisitorService defines the interface for visitor management
type VisitorService interface {
	// RegisterVisitor registers a festival attendee
	RegisterVisitor(ctx context.Context, req *dto.RegisterVisitorRequest) (*dto.VisitorResponse, error)

	// GetVisitor retrieves a visitor by ID
	GetVisitor(ctx context.Context, id string) (*dto.VisitorResponse, error)

	// UpdateVisitor updates a visitor's details
	UpdateVisitor(ctx context.Context, id string, req *dto.UpdateVisitorRequest) (*dto.VisitorResponse, error)
}

// visitorService implements VisitorService
type visitorService struct {
	repo repository.VisitorRepository
}

// NewVisitorService creates a new visitor service
func NewVisitorService(repo repository.VisitorRepository) VisitorService {
	return &visitorService{repo: repo}
}

// checkVisitorAge enforces the minimum age on visitor writes; the ticket
// path re-checks it at purchase time.
func checkVisitorAge(visitor *domain.Visitor) error {
	age := visitor.Age(time.Now())
	if age < domain.MinVisitorAge {
		return &domain.UnderageVisitorError{
			VisitorID: visitor.ID,
			Age:       age,
			MinAge:    domain.MinVisitorAge,
		}
	}
	return nil
}

// RegisterVisitor registers a festival attendee
func (s *visitorService) RegisterVisitor(ctx context.Context, req *dto.RegisterVisitorRequest) (*dto.VisitorResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.register")
	defer span.End()

	visitor := &domain.Visitor{
		ID:        uuid.New().String(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthdate: req.Birthdate,
	}

	span.SetAttributes(attribute.String("visitor_id", visitor.ID))

	if err := checkVisitorAge(visitor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.repo.Create(ctx, visitor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.VisitorFromDomain(visitor), nil
}

// GetVisitor retrieves a visitor by ID
func (s *visitorService) GetVisitor(ctx context.Context, id string) (*dto.VisitorResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.get")
	defer span.End()

	span.SetAttributes(attribute.String("visitor_id", id))

	visitor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.VisitorFromDomain(visitor), nil
}

// UpdateVisitor updates a visitor's details
func (s *visitorService) UpdateVisitor(ctx context.Context, id string, req *dto.UpdateVisitorRequest) (*dto.VisitorResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.update")
	defer span.End()

	span.SetAttributes(attribute.String("visitor_id", id))

	visitor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	visitor.FirstName = req.FirstName
	visitor.LastName = req.LastName
	visitor.Email = req.Email
	visitor.Phone = req.Phone
	visitor.Birthdate = req.Birthdate

	if err := checkVisitorAge(visitor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.repo.Update(ctx, visitor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.VisitorFromDomain(visitor), nil
}
