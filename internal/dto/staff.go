package dto

import (
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// CreateStaffRequest represents request to register a staff member
type CreateStaffRequest struct {
	Name            string `json:"name" binding:"required"`
	Role            string `json:"role" binding:"required"`
	ExperienceLevel int    `json:"experience_level" binding:"min=0"`
}

// StaffResponse represents a staff member in API response
type StaffResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	ExperienceLevel int    `json:"experience_level"`
}

// AssignStaffRequest represents request to assign staff to an event
type AssignStaffRequest struct {
	StaffID    string    `json:"staff_id" binding:"required"`
	EventID    string    `json:"event_id" binding:"required"`
	Role       string    `json:"role" binding:"required"`
	ShiftStart time.Time `json:"shift_start" binding:"required"`
	ShiftEnd   time.Time `json:"shift_end" binding:"required"`
}

// AssignmentResponse represents a staff assignment in API response
type AssignmentResponse struct {
	ID         string    `json:"id"`
	StaffID    string    `json:"staff_id"`
	EventID    string    `json:"event_id"`
	Role       string    `json:"role"`
	ShiftStart time.Time `json:"shift_start"`
	ShiftEnd   time.Time `json:"shift_end"`
}

// StaffFromDomain converts domain Staff to StaffResponse
func StaffFromDomain(s *domain.Staff) *StaffResponse {
	return &StaffResponse{
		ID:              s.ID,
		Name:            s.Name,
		Role:            string(s.Role),
		ExperienceLevel: s.ExperienceLevel,
	}
}

// AssignmentFromDomain converts domain StaffAssignment to AssignmentResponse
func AssignmentFromDomain(a *domain.StaffAssignment) *AssignmentResponse {
	return &AssignmentResponse{
		ID:         a.ID,
		StaffID:    a.StaffID,
		EventID:    a.EventID,
		Role:       string(a.Role),
		ShiftStart: a.ShiftStart,
		ShiftEnd:   a.ShiftEnd,
	}
}
