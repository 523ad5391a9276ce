package domain

import "time"

// Rating bounds for each review criterion.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a visitor's scoring of one performance across five criteria.
// Only visitors holding a used ticket for an event containing the
// performance may review it.
type Review struct {
	ID             string    `json:"id"`
	VisitorID      string    `json:"visitor_id"`
	PerformanceID  string    `json:"performance_id"`
	Interpretation int       `json:"interpretation"`
	SoundLighting  int       `json:"sound_lighting"`
	StagePresence  int       `json:"stage_presence"`
	Organization   int       `json:"organization"`
	Overall        int       `json:"overall"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks that every rating is within bounds.
func (r *Review) Validate() error {
	for _, rating := range []int{r.Interpretation, r.SoundLighting, r.StagePresence, r.Organization, r.Overall} {
		if rating < MinRating || rating > MaxRating {
			return ErrInvalidRating
		}
	}
	return nil
}
