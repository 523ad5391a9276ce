package domain

import "time"

// Event is a scheduled block of performances on one stage during one
// festival day.
type Event struct {
	ID        string    `json:"id"`
	DayID     string    `json:"day_id"`
	StageID   string    `json:"stage_id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Validate checks that the event's time window is well formed.
func (e *Event) Validate() error {
	if !e.StartTime.Before(e.EndTime) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether the event's window touches another event's
// window. Boundary contact counts as overlap.
func (e *Event) Overlaps(other *Event) bool {
	return IntervalsTouch(e.StartTime, e.EndTime, other.StartTime, other.EndTime)
}

// IntervalsTouch reports whether two time intervals intersect, treating a
// shared boundary as an intersection (a.start <= b.end && b.start <= a.end).
func IntervalsTouch(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
