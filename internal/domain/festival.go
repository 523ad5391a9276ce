package domain

import "time"

// Festival is a single edition of the recurring festival.
type Festival struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Location  string    `json:"location"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Validate checks the festival's date invariants: the start must not be
// after the end, and both dates must fall within the festival year.
func (f *Festival) Validate() error {
	if f.StartDate.After(f.EndDate) {
		return ErrInvalidInterval
	}
	if f.StartDate.Year() != f.Year || f.EndDate.Year() != f.Year {
		return ErrInvalidFestivalDates
	}
	return nil
}

// FestivalDay is one calendar day of a festival edition.
type FestivalDay struct {
	ID         string    `json:"id"`
	FestivalID string    `json:"festival_id"`
	Date       time.Time `json:"date"`
}

// SameDate reports whether the day falls on the given calendar date.
func (d *FestivalDay) SameDate(t time.Time) bool {
	y1, m1, d1 := d.Date.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
