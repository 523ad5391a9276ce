package domain

import (
	"fmt"
	"time"
)

// PerformanceType classifies a performance slot.
type PerformanceType string

const (
	PerformanceTypeWarmUp       PerformanceType = "warm_up"
	PerformanceTypeHeadline     PerformanceType = "headline"
	PerformanceTypeSpecialGuest PerformanceType = "special_guest"
)

// Duration bounds for a single performance, in minutes.
const (
	MinPerformanceDuration = 1
	MaxPerformanceDuration = 180
)

// Gap bounds between consecutive performances on the same stage and day.
const (
	MinPerformanceGap = 5 * time.Minute
	MaxPerformanceGap = 30 * time.Minute
)

// Performance is a single slot within an event, performed by exactly one
// artist or one band. Deleted performances stay in the store with DeletedAt
// set and are ignored by every scheduling check.
type Performance struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	StageID     string          `json:"stage_id"`
	ArtistID    string          `json:"artist_id,omitempty"`
	BandID      string          `json:"band_id,omitempty"`
	Type        PerformanceType `json:"type"`
	StartTime   time.Time       `json:"start_time"`
	DurationMin int             `json:"duration_min"`
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// EndTime returns the derived end of the performance.
func (p *Performance) EndTime() time.Time {
	return p.StartTime.Add(time.Duration(p.DurationMin) * time.Minute)
}

// IsDeleted reports whether the performance has been soft-deleted.
func (p *Performance) IsDeleted() bool {
	return p.DeletedAt != nil
}

// Performer returns the performer reference of the performance.
func (p *Performance) Performer() PerformerRef {
	if p.ArtistID != "" {
		return PerformerRef{ArtistID: p.ArtistID}
	}
	return PerformerRef{BandID: p.BandID}
}

// Validate checks the structural invariants of a performance: exactly one
// performer, and a positive duration (the range check belongs to the
// scheduling validator so it can report the computed bounds).
func (p *Performance) Validate() error {
	if (p.ArtistID == "") == (p.BandID == "") {
		return ErrInvalidPerformer
	}
	if p.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// PerformerRef identifies either an artist or a band, never both.
type PerformerRef struct {
	ArtistID string `json:"artist_id,omitempty"`
	BandID   string `json:"band_id,omitempty"`
}

// IsZero reports whether the reference points at nothing.
func (r PerformerRef) IsZero() bool {
	return r.ArtistID == "" && r.BandID == ""
}

// Key returns a stable identity string used for grouping and logging.
func (r PerformerRef) Key() string {
	if r.ArtistID != "" {
		return fmt.Sprintf("artist:%s", r.ArtistID)
	}
	return fmt.Sprintf("band:%s", r.BandID)
}

// Artist is an individual performer.
type Artist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pseudonym string    `json:"pseudonym,omitempty"`
	Genre     string    `json:"genre"`
	Subgenre  string    `json:"subgenre,omitempty"`
	Birthdate time.Time `json:"birthdate"`
}

// Band is a group performer.
type Band struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Genre         string    `json:"genre"`
	Subgenre      string    `json:"subgenre,omitempty"`
	FormationDate time.Time `json:"formation_date"`
}
