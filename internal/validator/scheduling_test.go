package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// mockScheduleStore is a mock implementation of ScheduleStore
type mockScheduleStore struct {
	byPerformer []*domain.Performance
	byStageDay  []*domain.Performance
}

func (m *mockScheduleStore) ListPerformancesByPerformerOnDate(ctx context.Context, performer domain.PerformerRef, date time.Time) ([]*domain.Performance, error) {
	return m.byPerformer, nil
}

func (m *mockScheduleStore) ListPerformancesByStageDay(ctx context.Context, stageID, dayID string) ([]*domain.Performance, error) {
	return m.byStageDay, nil
}

func perfAt(id, stageID string, start time.Time, durationMin int) *domain.Performance {
	return &domain.Performance{
		ID:          id,
		EventID:     "event-001",
		StageID:     stageID,
		ArtistID:    "artist-001",
		StartTime:   start,
		DurationMin: durationMin,
	}
}

func candidateFor(p *domain.Performance) *PerformanceCandidate {
	return &PerformanceCandidate{
		Performance: p,
		Event:       &domain.Event{ID: "event-001", DayID: "day-001", StageID: p.StageID},
		Day:         &domain.FestivalDay{ID: "day-001", Date: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)},
		Stage:       &domain.Stage{ID: p.StageID, Capacity: 100},
	}
}

func TestSchedule_StageGap(t *testing.T) {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	existing := perfAt("perf-existing", "stage-001", day.Add(18*time.Hour), 60) // 18:00-19:00

	tests := []struct {
		name    string
		start   time.Time
		wantErr error
	}{
		{
			name:    "gap of 4 minutes is too short",
			start:   day.Add(19*time.Hour + 4*time.Minute),
			wantErr: domain.ErrSchedulingConflict,
		},
		{
			name:  "gap of 5 minutes is accepted",
			start: day.Add(19*time.Hour + 5*time.Minute),
		},
		{
			name:  "gap of 30 minutes is accepted",
			start: day.Add(19*time.Hour + 30*time.Minute),
		},
		{
			name:    "gap of 31 minutes is too long",
			start:   day.Add(19*time.Hour + 31*time.Minute),
			wantErr: domain.ErrSchedulingConflict,
		},
		{
			name:    "preceding gap of 4 minutes is too short",
			start:   day.Add(16*time.Hour + 56*time.Minute), // ends 17:56, 4m before 18:00
			wantErr: domain.ErrSchedulingConflict,
		},
		{
			name:  "preceding gap of 10 minutes is accepted",
			start: day.Add(16*time.Hour + 50*time.Minute), // ends 17:50
		},
		{
			name:    "overlap on the same stage is rejected",
			start:   day.Add(18*time.Hour + 30*time.Minute),
			wantErr: domain.ErrSchedulingConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockScheduleStore{byStageDay: []*domain.Performance{existing}}
			v := NewSchedule(store)

			candidate := perfAt("perf-candidate", "stage-001", tt.start, 60)
			candidate.ArtistID = "artist-002" // different performer, stage gap only
			err := v.Validate(context.Background(), candidateFor(candidate))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestSchedule_GapErrorCarriesThreshold(t *testing.T) {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	existing := perfAt("perf-existing", "stage-001", day.Add(18*time.Hour), 60)

	store := &mockScheduleStore{byStageDay: []*domain.Performance{existing}}
	v := NewSchedule(store)

	candidate := perfAt("perf-candidate", "stage-001", day.Add(19*time.Hour+4*time.Minute), 60)
	candidate.ArtistID = "artist-002"
	err := v.Validate(context.Background(), candidateFor(candidate))

	var conflict *domain.SchedulingConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Validate() error = %v, want *SchedulingConflictError", err)
	}
	if conflict.Gap != 4*time.Minute {
		t.Errorf("conflict.Gap = %v, want 4m", conflict.Gap)
	}
	if conflict.RequiredMin != 5*time.Minute || conflict.RequiredMax != 30*time.Minute {
		t.Errorf("conflict bounds = [%v, %v], want [5m, 30m]", conflict.RequiredMin, conflict.RequiredMax)
	}
	if conflict.ConflictID != "perf-existing" {
		t.Errorf("conflict.ConflictID = %q, want perf-existing", conflict.ConflictID)
	}
}

func TestSchedule_NoNeighbourNoGapCheck(t *testing.T) {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	store := &mockScheduleStore{}
	v := NewSchedule(store)

	candidate := perfAt("perf-candidate", "stage-001", day.Add(12*time.Hour), 90)
	if err := v.Validate(context.Background(), candidateFor(candidate)); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}
}

func TestSchedule_Duration(t *testing.T) {
	tests := []struct {
		name        string
		durationMin int
		wantErr     bool
	}{
		{name: "one minute is accepted", durationMin: 1},
		{name: "180 minutes is accepted", durationMin: 180},
		{name: "zero is rejected", durationMin: 0, wantErr: true},
		{name: "181 minutes is rejected", durationMin: 181, wantErr: true},
	}

	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewSchedule(&mockScheduleStore{})
			candidate := perfAt("perf-candidate", "stage-001", day.Add(12*time.Hour), tt.durationMin)
			err := v.Validate(context.Background(), candidateFor(candidate))

			if tt.wantErr {
				if !errors.Is(err, domain.ErrDurationOutOfRange) {
					t.Errorf("Validate() error = %v, want ErrDurationOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestSchedule_PerformerOverlap(t *testing.T) {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	// Same performer already plays another stage 18:00-19:00.
	elsewhere := perfAt("perf-elsewhere", "stage-002", day.Add(18*time.Hour), 60)

	tests := []struct {
		name    string
		start   time.Time
		wantErr bool
	}{
		{
			name:    "overlapping window is rejected",
			start:   day.Add(18*time.Hour + 30*time.Minute),
			wantErr: true,
		},
		{
			name:    "boundary touch is rejected",
			start:   day.Add(19 * time.Hour),
			wantErr: true,
		},
		{
			name:  "disjoint window is accepted",
			start: day.Add(20 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockScheduleStore{byPerformer: []*domain.Performance{elsewhere}}
			v := NewSchedule(store)

			candidate := perfAt("perf-candidate", "stage-001", tt.start, 45)
			err := v.Validate(context.Background(), candidateFor(candidate))

			if tt.wantErr {
				if !errors.Is(err, domain.ErrSchedulingConflict) {
					t.Errorf("Validate() error = %v, want ErrSchedulingConflict", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

// mockEventStore is a mock implementation of EventStore
type mockEventStore struct {
	events []*domain.Event
}

func (m *mockEventStore) ListEventsOnStageDay(ctx context.Context, stageID, dayID string) ([]*domain.Event, error) {
	return m.events, nil
}

func TestEventOverlap(t *testing.T) {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	existing := &domain.Event{
		ID:        "event-existing",
		DayID:     "day-001",
		StageID:   "stage-001",
		StartTime: day.Add(17 * time.Hour),
		EndTime:   day.Add(20 * time.Hour),
	}

	tests := []struct {
		name       string
		start, end time.Time
		wantErr    bool
	}{
		{
			name:    "contained window is rejected",
			start:   day.Add(18 * time.Hour),
			end:     day.Add(19 * time.Hour),
			wantErr: true,
		},
		{
			name:    "boundary touch is rejected",
			start:   day.Add(20 * time.Hour),
			end:     day.Add(22 * time.Hour),
			wantErr: true,
		},
		{
			name:  "disjoint window is accepted",
			start: day.Add(21 * time.Hour),
			end:   day.Add(23 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewEventOverlap(&mockEventStore{events: []*domain.Event{existing}})
			candidate := &EventCandidate{
				Event: &domain.Event{
					ID:        "event-candidate",
					DayID:     "day-001",
					StageID:   "stage-001",
					StartTime: tt.start,
					EndTime:   tt.end,
				},
			}
			err := v.Validate(context.Background(), candidate)

			if tt.wantErr {
				if !errors.Is(err, domain.ErrSchedulingConflict) {
					t.Errorf("Validate() error = %v, want ErrSchedulingConflict", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}
