package dto

import (
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// IssueTicketRequest represents request to issue a ticket
type IssueTicketRequest struct {
	EventID   string  `json:"event_id" binding:"required"`
	VisitorID string  `json:"visitor_id" binding:"required"`
	Category  string  `json:"category" binding:"required"`
	Price     float64 `json:"price" binding:"required,min=0"`
	Code      string  `json:"code" binding:"required"`
	Method    string  `json:"method,omitempty"`
}

// TicketResponse represents a ticket in API response
type TicketResponse struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	VisitorID      string    `json:"visitor_id"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	Code           string    `json:"code"`
	Method         string    `json:"method,omitempty"`
	PurchaseDate   time.Time `json:"purchase_date"`
	IsUsed         bool      `json:"is_used"`
	ResaleEligible bool      `json:"resale_eligible"`
}

// TicketFromDomain converts domain Ticket to TicketResponse
func TicketFromDomain(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:             t.ID,
		EventID:        t.EventID,
		VisitorID:      t.VisitorID,
		Category:       string(t.Category),
		Price:          t.Price,
		Code:           t.Code,
		Method:         string(t.Method),
		PurchaseDate:   t.PurchaseDate,
		IsUsed:         t.IsUsed,
		ResaleEligible: t.ResaleEligible,
	}
}

// RegisterVisitorRequest represents request to register a visitor
type RegisterVisitorRequest struct {
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone,omitempty"`
	Birthdate time.Time `json:"birthdate" binding:"required"`
}

// UpdateVisitorRequest represents request to update visitor details
type UpdateVisitorRequest struct {
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone,omitempty"`
	Birthdate time.Time `json:"birthdate" binding:"required"`
}

// VisitorResponse represents a visitor in API response
type VisitorResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Birthdate time.Time `json:"birthdate"`
}

// VisitorFromDomain converts domain Visitor to VisitorResponse
func VisitorFromDomain(v *domain.Visitor) *VisitorResponse {
	return &VisitorResponse{
		ID:        v.ID,
		FirstName: v.FirstName,
		LastName:  v.LastName,
		Email:     v.Email,
		Phone:     v.Phone,
		Birthdate: v.Birthdate,
	}
}
