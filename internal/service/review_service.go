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

// ReviewService defines the interface for performance reviews
type ReviewService interface {
	// SubmitReview records a visitor's review of a performance. Only
	// visitors holding a used ticket for an event containing the
	// performance may review it.
	SubmitReview(ctx context.Context, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error)

	// ListReviews lists a performance's reviews
	ListReviews(ctx context.Context, performanceID string) ([]*dto.ReviewResponse, error)
}

// reviewService implements ReviewService
type reviewService struct {
	reviewRepo  repository.ReviewRepository
	perfRepo    repository.PerformanceRepository
	tx          repository.Transactor
	eligibility validator.ReviewValidator
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	perfRepo repository.PerformanceRepository,
	ticketRepo repository.TicketRepository,
	tx repository.Transactor,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		perfRepo:    perfRepo,
		tx:          tx,
		eligibility: validator.NewReviewEligibility(ticketRepo),
	}
}

// SubmitReview records a visitor's review of a performance
func (s *reviewService) SubmitReview(ctx context.Context, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.submit")
	defer span.End()

	span.SetAttributes(
		attribute.String("visitor_id", req.VisitorID),
		attribute.String("performance_id", req.PerformanceID),
	)

	review := &domain.Review{
		ID:             uuid.New().String(),
		VisitorID:      req.VisitorID,
		PerformanceID:  req.PerformanceID,
		Interpretation: req.Interpretation,
		SoundLighting:  req.SoundLighting,
		StagePresence:  req.StagePresence,
		Organization:   req.Organization,
		Overall:        req.Overall,
		CreatedAt:      time.Now(),
	}
	if err := review.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The reviewed performance must exist and not be cancelled.
	if _, err := s.perfRepo.GetByID(ctx, req.PerformanceID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidate := &validator.ReviewCandidate{Review: review, Now: review.CreatedAt}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.eligibility.Validate(ctx, candidate); err != nil {
			if domain.IsInvariantViolation(err) {
				metrics.RecordInvariantRejection(ctx, s.eligibility.Name(), "submit_review")
			}
			return err
		}
		return s.reviewRepo.Create(ctx, review)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("review_id", review.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ReviewFromDomain(review), nil
}

// ListReviews lists a performance's reviews
func (s *reviewService) ListReviews(ctx context.Context, performanceID string) ([]*dto.ReviewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.list")
	defer span.End()

	span.SetAttributes(attribute.String("performance_id", performanceID))

	reviews, err := s.reviewRepo.ListByPerformance(ctx, performanceID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, dto.ReviewFromDomain(review))
	}

	span.SetStatus(codes.Ok, "")
	return responses, nil
}
