package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// mockReviewStore is a mock implementation of ReviewStore
type mockReviewStore struct {
	attended bool
}

func (m *mockReviewStore) HasUsedTicketForPerformance(ctx context.Context, visitorID, performanceID string) (bool, error) {
	return m.attended, nil
}

func TestReviewEligibility(t *testing.T) {
	review := &domain.Review{
		ID:             "review-001",
		VisitorID:      "visitor-001",
		PerformanceID:  "perf-001",
		Interpretation: 5,
		SoundLighting:  4,
		StagePresence:  5,
		Organization:   3,
		Overall:        4,
	}
	c := &ReviewCandidate{Review: review, Now: time.Date(2026, 7, 11, 9, 0, 0, 0, time.UTC)}

	v := NewReviewEligibility(&mockReviewStore{attended: false})
	err := v.Validate(context.Background(), c)
	if !errors.Is(err, domain.ErrIneligibleReview) {
		t.Errorf("Validate() error = %v, want ErrIneligibleReview", err)
	}

	v = NewReviewEligibility(&mockReviewStore{attended: true})
	if err := v.Validate(context.Background(), c); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}
}
