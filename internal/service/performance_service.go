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

// PerformanceService defines the interface for performance scheduling
type PerformanceService interface {
	// SchedulePerformance schedules a performance inside an event. The
	// write is validated against the duration bounds, the performer's
	// same-day schedule, the stage gap window, and the performer's
	// consecutive-year history.
	SchedulePerformance(ctx context.Context, req *dto.SchedulePerformanceRequest) (*dto.PerformanceResponse, error)

	// CancelPerformance soft-deletes a performance. The slot it occupied
	// becomes free for future scheduling.
	CancelPerformance(ctx context.Context, id string) error

	// GetPerformance retrieves a performance by ID
	GetPerformance(ctx context.Context, id string) (*dto.PerformanceResponse, error)

	// ListPerformancesByEvent lists the performances of an event
	ListPerformancesByEvent(ctx context.Context, eventID string) ([]*dto.PerformanceResponse, error)

	// CreateArtist registers an individual performer
	CreateArtist(ctx context.Context, artist *domain.Artist) (*domain.Artist, error)

	// CreateBand registers a group performer
	CreateBand(ctx context.Context, band *domain.Band) (*domain.Band, error)
}

// performanceService implements PerformanceService
type performanceService struct {
	perfRepo     repository.PerformanceRepository
	eventRepo    repository.EventRepository
	festivalRepo repository.FestivalRepository
	tx           repository.Transactor
	validators   []validator.PerformanceValidator
}

// NewPerformanceService creates a new performance service
func NewPerformanceService(
	perfRepo repository.PerformanceRepository,
	eventRepo repository.EventRepository,
	festivalRepo repository.FestivalRepository,
	tx repository.Transactor,
) PerformanceService {
	return &performanceService{
		perfRepo:     perfRepo,
		eventRepo:    eventRepo,
		festivalRepo: festivalRepo,
		tx:           tx,
		validators: []validator.PerformanceValidator{
			validator.NewSchedule(perfRepo),
			validator.NewParticipation(perfRepo),
		},
	}
}

// SchedulePerformance schedules a performance inside an event
func (s *performanceService) SchedulePerformance(ctx context.Context, req *dto.SchedulePerformanceRequest) (*dto.PerformanceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.performance.schedule")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", req.EventID))

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	performance := &domain.Performance{
		ID:          uuid.New().String(),
		EventID:     event.ID,
		StageID:     event.StageID,
		ArtistID:    req.ArtistID,
		BandID:      req.BandID,
		Type:        domain.PerformanceType(req.Type),
		StartTime:   req.StartTime,
		DurationMin: req.DurationMin,
		CreatedAt:   time.Now(),
	}
	if err := performance.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.checkPerformerExists(ctx, performance); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	day, err := s.festivalRepo.GetDay(ctx, event.DayID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	stage, err := s.festivalRepo.GetStage(ctx, event.StageID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	festival, err := s.festivalRepo.GetFestivalByDay(ctx, event.DayID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidate := &validator.PerformanceCandidate{
		Performance:  performance,
		Event:        event,
		Day:          day,
		Stage:        stage,
		FestivalYear: festival.Year,
	}

	span.SetAttributes(
		attribute.String("performance_id", performance.ID),
		attribute.String("performer", performance.Performer().Key()),
		attribute.Int("duration_min", performance.DurationMin),
	)

	// Validators and the insert share one serializable transaction.
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		for _, v := range s.validators {
			if err := v.Validate(ctx, candidate); err != nil {
				if domain.IsInvariantViolation(err) {
					metrics.RecordInvariantRejection(ctx, v.Name(), "schedule_performance")
				}
				return err
			}
		}
		return s.perfRepo.Create(ctx, performance)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.PerformanceFromDomain(performance), nil
}

// checkPerformerExists resolves the performance's artist or band reference
func (s *performanceService) checkPerformerExists(ctx context.Context, p *domain.Performance) error {
	if p.ArtistID != "" {
		_, err := s.perfRepo.GetArtist(ctx, p.ArtistID)
		return err
	}
	_, err := s.perfRepo.GetBand(ctx, p.BandID)
	return err
}

// CancelPerformance soft-deletes a performance
func (s *performanceService) CancelPerformance(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.performance.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("performance_id", id))

	if err := s.perfRepo.SoftDelete(ctx, id, time.Now()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetPerformance retrieves a performance by ID
func (s *performanceService) GetPerformance(ctx context.Context, id string) (*dto.PerformanceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.performance.get")
	defer span.End()

	span.SetAttributes(attribute.String("performance_id", id))

	performance, err := s.perfRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.PerformanceFromDomain(performance), nil
}

// ListPerformancesByEvent lists the performances of an event
func (s *performanceService) ListPerformancesByEvent(ctx context.Context, eventID string) ([]*dto.PerformanceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.performance.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	performances, err := s.perfRepo.ListByEvent(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.PerformanceResponse, 0, len(performances))
	for _, p := range performances {
		responses = append(responses, dto.PerformanceFromDomain(p))
	}

	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// CreateArtist registers an individual performer
func (s *performanceService) CreateArtist(ctx context.Context, artist *domain.Artist) (*domain.Artist, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.performance.create_artist")
	defer span.End()

	if artist.ID == "" {
		artist.ID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("artist_id", artist.ID))

	if err := s.perfRepo.CreateArtist(ctx, artist); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return artist, nil
}

// CreateBand registers a group performer
func (s *performanceService) CreateBand(ctx context.Context, band *domain.Band) (*domain.Band, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.performance.create_band")
	defer span.End()

	if band.ID == "" {
		band.ID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("band_id", band.ID))

	if err := s.perfRepo.CreateBand(ctx, band); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return band, nil
}
