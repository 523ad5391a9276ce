package dto

import (
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// CreateFestivalRequest represents request to create a festival edition
type CreateFestivalRequest struct {
	Name      string    `json:"name" binding:"required"`
	Year      int       `json:"year" binding:"required"`
	Location  string    `json:"location" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// FestivalResponse represents a festival in API response
type FestivalResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Location  string    `json:"location"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// CreateFestivalDayRequest represents request to add a day to a festival
type CreateFestivalDayRequest struct {
	FestivalID string    `json:"festival_id" binding:"required"`
	Date       time.Time `json:"date" binding:"required"`
}

// FestivalDayResponse represents a festival day in API response
type FestivalDayResponse struct {
	ID         string    `json:"id"`
	FestivalID string    `json:"festival_id"`
	Date       time.Time `json:"date"`
}

// CreateStageRequest represents request to register a stage
type CreateStageRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

// StageResponse represents a stage in API response
type StageResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Location         string `json:"location,omitempty"`
	Capacity         int    `json:"capacity"`
	VipCap           int    `json:"vip_cap"`
	RequiredSecurity int    `json:"required_security"`
	RequiredSupport  int    `json:"required_support"`
}

// FestivalFromDomain converts domain Festival to FestivalResponse
func FestivalFromDomain(f *domain.Festival) *FestivalResponse {
	return &FestivalResponse{
		ID:        f.ID,
		Name:      f.Name,
		Year:      f.Year,
		Location:  f.Location,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}

// DayFromDomain converts domain FestivalDay to FestivalDayResponse
func DayFromDomain(d *domain.FestivalDay) *FestivalDayResponse {
	return &FestivalDayResponse{
		ID:         d.ID,
		FestivalID: d.FestivalID,
		Date:       d.Date,
	}
}

// StageFromDomain converts domain Stage to StageResponse, including the
// derived capacity thresholds.
func StageFromDomain(s *domain.Stage) *StageResponse {
	return &StageResponse{
		ID:               s.ID,
		Name:             s.Name,
		Location:         s.Location,
		Capacity:         s.Capacity,
		VipCap:           s.VipCap(),
		RequiredSecurity: s.RequiredSecurity(),
		RequiredSupport:  s.RequiredSupport(),
	}
}
