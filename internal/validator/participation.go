package validator

import (
	"context"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// ParticipationStore answers whether a performer appeared in given
// festival years. Soft-deleted performances do not count.
type ParticipationStore interface {
	YearsPerformed(ctx context.Context, performer domain.PerformerRef, years []int) (map[int]bool, error)
}

// Participation blocks a performer's fourth consecutive festival year: a
// candidate for year Y is rejected only when the performer appeared in
// both Y-1 and Y-2. A performer who skipped either prior year is always
// eligible.
type Participation struct {
	store ParticipationStore
}

// NewParticipation creates the consecutive-participation limiter.
func NewParticipation(store ParticipationStore) *Participation {
	return &Participation{store: store}
}

func (v *Participation) Name() string { return "participation" }

func (v *Participation) Validate(ctx context.Context, c *PerformanceCandidate) error {
	performer := c.Performance.Performer()
	year := c.FestivalYear

	appeared, err := v.store.YearsPerformed(ctx, performer, []int{year - 1, year - 2})
	if err != nil {
		return err
	}
	if appeared[year-1] && appeared[year-2] {
		return &domain.ConsecutiveYearLimitError{
			Performer: performer,
			Year:      year,
		}
	}
	return nil
}
