package dto

import (
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// CreateEventRequest represents request to schedule an event
type CreateEventRequest struct {
	DayID     string    `json:"day_id" binding:"required"`
	StageID   string    `json:"stage_id" binding:"required"`
	Name      string    `json:"name" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// EventResponse represents an event in API response
type EventResponse struct {
	ID        string    `json:"id"`
	DayID     string    `json:"day_id"`
	StageID   string    `json:"stage_id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// EventFromDomain converts domain Event to EventResponse
func EventFromDomain(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:        e.ID,
		DayID:     e.DayID,
		StageID:   e.StageID,
		Name:      e.Name,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}

// SchedulePerformanceRequest represents request to schedule a performance
type SchedulePerformanceRequest struct {
	EventID     string    `json:"event_id" binding:"required"`
	ArtistID    string    `json:"artist_id,omitempty"`
	BandID      string    `json:"band_id,omitempty"`
	Type        string    `json:"type" binding:"required"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	DurationMin int       `json:"duration_min" binding:"required,min=1"`
}

// CreateArtistRequest represents request to register an individual performer
type CreateArtistRequest struct {
	Name      string    `json:"name" binding:"required"`
	Pseudonym string    `json:"pseudonym,omitempty"`
	Genre     string    `json:"genre" binding:"required"`
	Subgenre  string    `json:"subgenre,omitempty"`
	Birthdate time.Time `json:"birthdate" binding:"required"`
}

// CreateBandRequest represents request to register a group performer
type CreateBandRequest struct {
	Name          string    `json:"name" binding:"required"`
	Genre         string    `json:"genre" binding:"required"`
	Subgenre      string    `json:"subgenre,omitempty"`
	FormationDate time.Time `json:"formation_date" binding:"required"`
}

// PerformanceResponse represents a performance in API response
type PerformanceResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	StageID     string    `json:"stage_id"`
	ArtistID    string    `json:"artist_id,omitempty"`
	BandID      string    `json:"band_id,omitempty"`
	Type        string    `json:"type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMin int       `json:"duration_min"`
}

// PerformanceFromDomain converts domain Performance to PerformanceResponse
func PerformanceFromDomain(p *domain.Performance) *PerformanceResponse {
	return &PerformanceResponse{
		ID:          p.ID,
		EventID:     p.EventID,
		StageID:     p.StageID,
		ArtistID:    p.ArtistID,
		BandID:      p.BandID,
		Type:        string(p.Type),
		StartTime:   p.StartTime,
		EndTime:     p.EndTime(),
		DurationMin: p.DurationMin,
	}
}
