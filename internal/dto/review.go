package dto

import (
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// SubmitReviewRequest represents request to review a performance
type SubmitReviewRequest struct {
	VisitorID      string `json:"visitor_id" binding:"required"`
	PerformanceID  string `json:"performance_id" binding:"required"`
	Interpretation int    `json:"interpretation" binding:"required,min=1,max=5"`
	SoundLighting  int    `json:"sound_lighting" binding:"required,min=1,max=5"`
	StagePresence  int    `json:"stage_presence" binding:"required,min=1,max=5"`
	Organization   int    `json:"organization" binding:"required,min=1,max=5"`
	Overall        int    `json:"overall" binding:"required,min=1,max=5"`
}

// ReviewResponse represents a review in API response
type ReviewResponse struct {
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

// ReviewFromDomain converts domain Review to ReviewResponse
func ReviewFromDomain(r *domain.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:             r.ID,
		VisitorID:      r.VisitorID,
		PerformanceID:  r.PerformanceID,
		Interpretation: r.Interpretation,
		SoundLighting:  r.SoundLighting,
		StagePresence:  r.StagePresence,
		Organization:   r.Organization,
		Overall:        r.Overall,
		CreatedAt:      r.CreatedAt,
	}
}
