package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// ScheduleStore is the slice of the entity store the scheduling checks
// read. Implementations must exclude soft-deleted performances.
type ScheduleStore interface {
	// ListPerformancesByPerformerOnDate returns the performer's
	// performances on the given calendar date, across all stages.
	ListPerformancesByPerformerOnDate(ctx context.Context, performer domain.PerformerRef, date time.Time) ([]*domain.Performance, error)

	// ListPerformancesByStageDay returns all performances scheduled for
	// the stage on the festival day.
	ListPerformancesByStageDay(ctx context.Context, stageID, dayID string) ([]*domain.Performance, error)
}

// Schedule rejects a candidate performance whose duration is out of range,
// whose performer is double-booked on the same calendar day, or whose gap
// to the nearest neighbouring performance on the same stage and day falls
// outside the permitted window.
type Schedule struct {
	store       ScheduleStore
	minGap      time.Duration
	maxGap      time.Duration
	minDuration int
	maxDuration int
}

// NewSchedule creates the scheduling conflict checker with the standard
// gap and duration bounds.
func NewSchedule(store ScheduleStore) *Schedule {
	return &Schedule{
		store:       store,
		minGap:      domain.MinPerformanceGap,
		maxGap:      domain.MaxPerformanceGap,
		minDuration: domain.MinPerformanceDuration,
		maxDuration: domain.MaxPerformanceDuration,
	}
}

func (v *Schedule) Name() string { return "schedule" }

// Validate runs the duration, performer-overlap and stage-gap checks in
// that order and returns the first violation.
func (v *Schedule) Validate(ctx context.Context, c *PerformanceCandidate) error {
	p := c.Performance

	if p.DurationMin < v.minDuration || p.DurationMin > v.maxDuration {
		return &domain.DurationOutOfRangeError{
			DurationMin: p.DurationMin,
			Min:         v.minDuration,
			Max:         v.maxDuration,
		}
	}

	if err := v.checkPerformerOverlap(ctx, c); err != nil {
		return err
	}
	return v.checkStageGap(ctx, c)
}

// checkPerformerOverlap rejects the candidate if its performer already has
// a performance on the same calendar day whose interval touches the
// candidate's. Performers cannot be in two places at once.
func (v *Schedule) checkPerformerOverlap(ctx context.Context, c *PerformanceCandidate) error {
	p := c.Performance
	existing, err := v.store.ListPerformancesByPerformerOnDate(ctx, p.Performer(), c.Day.Date)
	if err != nil {
		return err
	}

	for _, other := range existing {
		if other.ID == p.ID {
			continue
		}
		if domain.IntervalsTouch(p.StartTime, p.EndTime(), other.StartTime, other.EndTime()) {
			return &domain.SchedulingConflictError{
				Reason:     "performer already on stage in this window",
				StageID:    other.StageID,
				EventID:    p.EventID,
				Performer:  p.Performer(),
				ConflictID: other.ID,
			}
		}
	}
	return nil
}

// checkStageGap finds the nearest preceding and following performances on
// the candidate's stage and day and rejects the candidate if either gap is
// outside [minGap, maxGap]. A side with no neighbour carries no gap
// requirement. A same-stage performance that overlaps the candidate is a
// direct conflict.
func (v *Schedule) checkStageGap(ctx context.Context, c *PerformanceCandidate) error {
	p := c.Performance
	neighbours, err := v.store.ListPerformancesByStageDay(ctx, p.StageID, c.Event.DayID)
	if err != nil {
		return err
	}

	var (
		precedingGap = time.Duration(-1)
		precedingID  string
		followingGap = time.Duration(-1)
		followingID  string
	)

	start, end := p.StartTime, p.EndTime()
	for _, other := range neighbours {
		if other.ID == p.ID {
			continue
		}
		otherStart, otherEnd := other.StartTime, other.EndTime()
		switch {
		case !otherEnd.After(start):
			gap := start.Sub(otherEnd)
			if precedingGap < 0 || gap < precedingGap {
				precedingGap = gap
				precedingID = other.ID
			}
		case !otherStart.Before(end):
			gap := otherStart.Sub(end)
			if followingGap < 0 || gap < followingGap {
				followingGap = gap
				followingID = other.ID
			}
		default:
			return &domain.SchedulingConflictError{
				Reason:     "performance window overlaps another performance on this stage",
				StageID:    p.StageID,
				EventID:    p.EventID,
				Performer:  p.Performer(),
				ConflictID: other.ID,
			}
		}
	}

	if precedingGap >= 0 && (precedingGap < v.minGap || precedingGap > v.maxGap) {
		return v.gapError(p, precedingID, precedingGap)
	}
	if followingGap >= 0 && (followingGap < v.minGap || followingGap > v.maxGap) {
		return v.gapError(p, followingID, followingGap)
	}
	return nil
}

func (v *Schedule) gapError(p *domain.Performance, conflictID string, gap time.Duration) error {
	return &domain.SchedulingConflictError{
		Reason:      fmt.Sprintf("gap of %s to neighbouring performance outside [%s, %s]", gap, v.minGap, v.maxGap),
		StageID:     p.StageID,
		EventID:     p.EventID,
		Performer:   p.Performer(),
		ConflictID:  conflictID,
		Gap:         gap,
		RequiredMin: v.minGap,
		RequiredMax: v.maxGap,
	}
}

// EventStore is the slice of the entity store the event overlap check
// reads.
type EventStore interface {
	ListEventsOnStageDay(ctx context.Context, stageID, dayID string) ([]*domain.Event, error)
}

// EventOverlap rejects a candidate event whose window touches any existing
// event on the same stage and day.
type EventOverlap struct {
	store EventStore
}

// NewEventOverlap creates the event overlap checker.
func NewEventOverlap(store EventStore) *EventOverlap {
	return &EventOverlap{store: store}
}

func (v *EventOverlap) Name() string { return "event_overlap" }

func (v *EventOverlap) Validate(ctx context.Context, c *EventCandidate) error {
	existing, err := v.store.ListEventsOnStageDay(ctx, c.Event.StageID, c.Event.DayID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == c.Event.ID {
			continue
		}
		if c.Event.Overlaps(other) {
			return &domain.SchedulingConflictError{
				Reason:     "event window overlaps another event on this stage",
				StageID:    c.Event.StageID,
				EventID:    c.Event.ID,
				ConflictID: other.ID,
			}
		}
	}
	return nil
}
