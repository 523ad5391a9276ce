package service

import (
	"context"

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

// EventService defines the interface for event scheduling
type EventService interface {
	// CreateEvent schedules an event on a stage for a festival day. The
	// event window must not touch any existing event on the same stage
	// and day.
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, id string) (*dto.EventResponse, error)

	// ListEventsByDay lists the events scheduled on a festival day
	ListEventsByDay(ctx context.Context, dayID string) ([]*dto.EventResponse, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo    repository.EventRepository
	festivalRepo repository.FestivalRepository
	tx           repository.Transactor
	overlap      validator.EventValidator
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	festivalRepo repository.FestivalRepository,
	tx repository.Transactor,
) EventService {
	return &eventService{
		eventRepo:    eventRepo,
		festivalRepo: festivalRepo,
		tx:           tx,
		overlap:      validator.NewEventOverlap(eventRepo),
	}
}

// CreateEvent schedules an event on a stage for a festival day
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("day_id", req.DayID),
		attribute.String("stage_id", req.StageID),
	)

	event := &domain.Event{
		ID:        uuid.New().String(),
		DayID:     req.DayID,
		StageID:   req.StageID,
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	day, err := s.festivalRepo.GetDay(ctx, req.DayID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	stage, err := s.festivalRepo.GetStage(ctx, req.StageID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidate := &validator.EventCandidate{Event: event, Day: day, Stage: stage}

	// The overlap check and the insert share one transaction so the check
	// sees exactly the state the insert commits against.
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.overlap.Validate(ctx, candidate); err != nil {
			return err
		}
		return s.eventRepo.Create(ctx, event)
	})
	if err != nil {
		if domain.IsInvariantViolation(err) {
			metrics.RecordInvariantRejection(ctx, s.overlap.Name(), "create_event")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, id string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// ListEventsByDay lists the events scheduled on a festival day
func (s *eventService) ListEventsByDay(ctx context.Context, dayID string) ([]*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_by_day")
	defer span.End()

	span.SetAttributes(attribute.String("day_id", dayID))

	events, err := s.eventRepo.ListByDay(ctx, dayID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.EventFromDomain(event))
	}

	span.SetStatus(codes.Ok, "")
	return responses, nil
}
