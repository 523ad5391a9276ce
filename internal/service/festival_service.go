package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/repository"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FestivalService defines the interface for festival edition management
type FestivalService interface {
	// CreateFestival creates a festival edition
	CreateFestival(ctx context.Context, req *dto.CreateFestivalRequest) (*dto.FestivalResponse, error)

	// GetFestival retrieves a festival by ID
	GetFestival(ctx context.Context, id string) (*dto.FestivalResponse, error)

	// AddFestivalDay adds a calendar day to a festival edition
	AddFestivalDay(ctx context.Context, req *dto.CreateFestivalDayRequest) (*dto.FestivalDayResponse, error)

	// ListFestivalDays lists the days of a festival edition
	ListFestivalDays(ctx context.Context, festivalID string) ([]*dto.FestivalDayResponse, error)

	// CreateStage registers a stage
	CreateStage(ctx context.Context, req *dto.CreateStageRequest) (*dto.StageResponse, error)

	// GetStage retrieves a stage by ID
	GetStage(ctx context.Context, id string) (*dto.StageResponse, error)

	// ListStages lists all registered stages
	ListStages(ctx context.Context) ([]*dto.StageResponse, error)
}

// festivalService implements FestivalService
type festivalService struct {
	repo repository.FestivalRepository
}

// NewFestivalService creates a new festival service
func NewFestivalService(repo repository.FestivalRepository) FestivalService {
	return &festivalService{repo: repo}
}

// CreateFestival creates a festival edition
func (s *festivalService) CreateFestival(ctx context.Context, req *dto.CreateFestivalRequest) (*dto.FestivalResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.festival.create")
	defer span.End()

	festival := &domain.Festival{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Year:      req.Year,
		Location:  req.Location,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := festival.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("festival_id", festival.ID),
		attribute.Int("year", festival.Year),
	)

	if err := s.repo.CreateFestival(ctx, festival); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.FestivalFromDomain(festival), nil
}

// GetFestival retrieves a festival by ID
func (s *festivalService) GetFestival(ctx context.Context, id string) (*dto.FestivalResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.festival.get")
	defer span.End()

	span.SetAttributes(attribute.String("festival_id", id))

	festival, err := s.repo.GetFestival(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.FestivalFromDomain(festival), nil
}

// AddFestivalDay adds a calendar day to a festival edition. The date must
// fall within the festival's date window.
func (s *festivalService) AddFestivalDay(ctx context.Context, req *dto.CreateFestivalDayRequest) (*dto.FestivalDayResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.festival.add_day")
	defer span.End()

	span.SetAttributes(attribute.String("festival_id", req.FestivalID))

	festival, err := s.repo.GetFestival(ctx, req.FestivalID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Date.Before(festival.StartDate) || req.Date.After(festival.EndDate) {
		span.SetStatus(codes.Error, "date outside festival window")
		return nil, domain.ErrInvalidFestivalDates
	}

	day := &domain.FestivalDay{
		ID:         uuid.New().String(),
		FestivalID: festival.ID,
		Date:       req.Date,
	}

	if err := s.repo.CreateDay(ctx, day); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("day_id", day.ID))
	span.SetStatus(codes.Ok, "")
	return dto.DayFromDomain(day), nil
}

// ListFestivalDays lists the days of a festival edition
func (s *festivalService) ListFestivalDays(ctx context.Context, festivalID string) ([]*dto.FestivalDayResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.festival.list_days")
	defer span.End()

	span.SetAttributes(attribute.String("festival_id", festivalID))

	days, err := s.repo.ListDays(ctx, festivalID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.FestivalDayResponse, 0, len(days))
	for _, day := range days {
		responses = append(responses, dto.DayFromDomain(day))
	}

	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// CreateStage registers a stage
func (s *festivalService) CreateStage(ctx context.Context, req *dto.CreateStageRequest) (*dto.StageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.festival.create_stage")
	defer span.End()

	stage := &domain.Stage{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
	}

	span.SetAttributes(
		attribute.String("stage_id", stage.ID),
		attribute.Int("capacity", stage.Capacity),
	)

	if err := s.repo.CreateStage(ctx, stage); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.StageFromDomain(stage), nil
}

// GetStage retrieves a stage by ID
func (s *festivalService) GetStage(ctx context.Context, id string) (*dto.StageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.festival.get_stage")
	defer span.End()

	span.SetAttributes(attribute.String("stage_id", id))

	stage, err := s.repo.GetStage(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.StageFromDomain(stage), nil
}

// ListStages lists all registered stages
func (s *festivalService) ListStages(ctx context.Context) ([]*dto.StageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.festival.list_stages")
	defer span.End()

	stages, err := s.repo.ListStages(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.StageResponse, 0, len(stages))
	for _, stage := range stages {
		responses = append(responses, dto.StageFromDomain(stage))
	}

	span.SetStatus(codes.Ok, "")
	return responses, nil
}
