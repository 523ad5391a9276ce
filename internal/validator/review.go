package validator

import (
	"context"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// ReviewStore answers review eligibility questions.
type ReviewStore interface {
	// HasUsedTicketForPerformance reports whether the visitor holds a
	// used ticket for an event containing the performance.
	HasUsedTicketForPerformance(ctx context.Context, visitorID, performanceID string) (bool, error)
}

// ReviewEligibility rejects reviews from visitors who never attended: the
// visitor must hold a ticket, for an event containing the reviewed
// performance, that has been used at the gate.
type ReviewEligibility struct {
	store ReviewStore
}

// NewReviewEligibility creates the review eligibility validator.
func NewReviewEligibility(store ReviewStore) *ReviewEligibility {
	return &ReviewEligibility{store: store}
}

func (v *ReviewEligibility) Name() string { return "review_eligibility" }

func (v *ReviewEligibility) Validate(ctx context.Context, c *ReviewCandidate) error {
	attended, err := v.store.HasUsedTicketForPerformance(ctx, c.Review.VisitorID, c.Review.PerformanceID)
	if err != nil {
		return err
	}
	if !attended {
		return &domain.IneligibleReviewError{
			VisitorID:     c.Review.VisitorID,
			PerformanceID: c.Review.PerformanceID,
		}
	}
	return nil
}
