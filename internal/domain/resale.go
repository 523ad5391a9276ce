package domain

import "time"

// ResaleStatus is the state of a resale request in the marketplace.
//
// State machine:
//
//	Available -> Pending (a buyer requests the listed ticket)
//	Pending   -> Sold      (seller approves)
//	Pending   -> Cancelled (seller rejects, or the request times out)
//
// The listing entry itself stays Available while purchase requests queue
// against it; when the last pending request is cancelled the ticket returns
// to plain availability and a TICKET_RELISTED entry is recorded.
type ResaleStatus string

const (
	ResaleStatusAvailable ResaleStatus = "available"
	ResaleStatusPending   ResaleStatus = "pending"
	ResaleStatusSold      ResaleStatus = "sold"
	ResaleStatusCancelled ResaleStatus = "cancelled"
)

// DefaultResalePendingTimeout is how long a purchase request may stay
// pending before the expiry sweep cancels it.
const DefaultResalePendingTimeout = 24 * time.Hour

// ResaleRequest is one entry in a ticket's resale queue. Availability
// listings and purchase requests share the table; FIFO order within a
// ticket is (RequestedAt, Seq), with Seq a store-assigned monotonic
// sequence breaking timestamp ties.
type ResaleRequest struct {
	ID          string       `json:"id"`
	TicketID    string       `json:"ticket_id"`
	SellerID    string       `json:"seller_id"`
	BuyerID     string       `json:"buyer_id,omitempty"`
	Price       float64      `json:"price"`
	Status      ResaleStatus `json:"status"`
	RequestedAt time.Time    `json:"requested_at"`
	Seq         int64        `json:"seq"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
}

// IsPending reports whether the request is awaiting a seller decision.
func (r *ResaleRequest) IsPending() bool {
	return r.Status == ResaleStatusPending
}

// ExpiredBy reports whether a pending request has outlived the timeout as
// of now.
func (r *ResaleRequest) ExpiredBy(now time.Time, timeout time.Duration) bool {
	return r.Status == ResaleStatusPending && now.Sub(r.RequestedAt) >= timeout
}

// AuditAction names an entry in the append-only resale audit log.
type AuditAction string

const (
	AuditTicketListed      AuditAction = "TICKET_LISTED"
	AuditPurchaseRequested AuditAction = "PURCHASE_REQUESTED"
	AuditPurchaseApproved  AuditAction = "PURCHASE_APPROVED"
	AuditPurchaseRejected  AuditAction = "PURCHASE_REJECTED"
	AuditRequestExpired    AuditAction = "REQUEST_EXPIRED"
	AuditTicketRelisted    AuditAction = "TICKET_RELISTED"
)

// AuditEvent is emitted to the audit sink for every resale transition.
type AuditEvent struct {
	ID         string      `json:"id"`
	Action     AuditAction `json:"action"`
	TicketID   string      `json:"ticket_id"`
	RequestID  string      `json:"request_id,omitempty"`
	ActorID    string      `json:"actor_id,omitempty"`
	Detail     string      `json:"detail,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Notification is a message for a buyer or seller, delivered best-effort
// through the notification sink.
type Notification struct {
	ID         string    `json:"id"`
	VisitorID  string    `json:"visitor_id"`
	TicketID   string    `json:"ticket_id"`
	RequestID  string    `json:"request_id,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
