package dto

import (
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// ListTicketRequest represents request to list a ticket for resale
type ListTicketRequest struct {
	TicketID string  `json:"ticket_id" binding:"required"`
	Price    float64 `json:"price" binding:"required,min=0"`
}

// RequestPurchaseRequest represents a buyer's purchase request
type RequestPurchaseRequest struct {
	TicketID string `json:"ticket_id" binding:"required"`
	BuyerID  string `json:"buyer_id" binding:"required"`
}

// DecideRequestRequest represents a seller decision on a pending request.
// RequestID may be empty: the decision then applies to the oldest pending
// request in the ticket's queue.
type DecideRequestRequest struct {
	TicketID  string `json:"ticket_id" binding:"required"`
	RequestID string `json:"request_id,omitempty"`
	SellerID  string `json:"seller_id" binding:"required"`
}

// ResaleRequestResponse represents a resale queue entry in API response
type ResaleRequestResponse struct {
	ID          string     `json:"id"`
	TicketID    string     `json:"ticket_id"`
	SellerID    string     `json:"seller_id"`
	BuyerID     string     `json:"buyer_id,omitempty"`
	Price       float64    `json:"price"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// ResaleQueueResponse represents a ticket's full resale queue
type ResaleQueueResponse struct {
	TicketID string                   `json:"ticket_id"`
	Requests []*ResaleRequestResponse `json:"requests"`
}

// AuditEventResponse represents an audit log entry in API response
type AuditEventResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	TicketID   string    `json:"ticket_id"`
	RequestID  string    `json:"request_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ResaleFromDomain converts domain ResaleRequest to ResaleRequestResponse
func ResaleFromDomain(r *domain.ResaleRequest) *ResaleRequestResponse {
	return &ResaleRequestResponse{
		ID:          r.ID,
		TicketID:    r.TicketID,
		SellerID:    r.SellerID,
		BuyerID:     r.BuyerID,
		Price:       r.Price,
		Status:      string(r.Status),
		RequestedAt: r.RequestedAt,
		ResolvedAt:  r.ResolvedAt,
	}
}

// AuditFromDomain converts domain AuditEvent to AuditEventResponse
func AuditFromDomain(e *domain.AuditEvent) *AuditEventResponse {
	return &AuditEventResponse{
		ID:         e.ID,
		Action:     string(e.Action),
		TicketID:   e.TicketID,
		RequestID:  e.RequestID,
		ActorID:    e.ActorID,
		Detail:     e.Detail,
		OccurredAt: e.OccurredAt,
	}
}
