package validator

import (
	"context"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// TicketStore is the slice of the entity store the ticket checks read.
type TicketStore interface {
	// CountVipTicketsByEvent counts VIP tickets already issued for the event.
	CountVipTicketsByEvent(ctx context.Context, eventID string) (int, error)

	// TicketCodeExists reports whether a ticket with the code already exists.
	TicketCodeExists(ctx context.Context, code string) (bool, error)

	// HasSameDayPerformerTicket reports whether the visitor already holds
	// an active ticket for an event on the same calendar date featuring
	// any performer appearing in the given event.
	HasSameDayPerformerTicket(ctx context.Context, visitorID, eventID string) (bool, error)
}

// Code rejects tickets whose code is not exactly 13 numeric digits, and
// codes that already exist in the store.
type Code struct {
	store TicketStore
}

// NewCode creates the EAN code validator.
func NewCode(store TicketStore) *Code {
	return &Code{store: store}
}

func (v *Code) Name() string { return "ean_code" }

func (v *Code) Validate(ctx context.Context, c *TicketCandidate) error {
	code := c.Ticket.Code
	if !domain.ValidEAN13(code) {
		return &domain.InvalidCodeError{Code: code}
	}
	exists, err := v.store.TicketCodeExists(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return &domain.DuplicateTicketError{
			VisitorID: c.Ticket.VisitorID,
			EventID:   c.Ticket.EventID,
			Code:      code,
			Reason:    "ticket code already issued",
		}
	}
	return nil
}

// Age rejects tickets for visitors under the minimum age, computed from
// the birthdate at evaluation time.
type Age struct {
	minAge int
}

// NewAge creates the minimum age validator.
func NewAge() *Age {
	return &Age{minAge: domain.MinVisitorAge}
}

func (v *Age) Name() string { return "min_age" }

func (v *Age) Validate(ctx context.Context, c *TicketCandidate) error {
	age := c.Visitor.Age(c.Now)
	if age < v.minAge {
		return &domain.UnderageVisitorError{
			VisitorID: c.Visitor.ID,
			Age:       age,
			MinAge:    v.minAge,
		}
	}
	return nil
}

// VipCap rejects a VIP ticket once the event has reached 10% of its
// stage's capacity in VIP tickets.
type VipCap struct {
	store TicketStore
}

// NewVipCap creates the VIP capacity validator.
func NewVipCap(store TicketStore) *VipCap {
	return &VipCap{store: store}
}

func (v *VipCap) Name() string { return "vip_cap" }

func (v *VipCap) Validate(ctx context.Context, c *TicketCandidate) error {
	if c.Ticket.Category != domain.TicketCategoryVIP {
		return nil
	}
	existing, err := v.store.CountVipTicketsByEvent(ctx, c.Ticket.EventID)
	if err != nil {
		return err
	}
	cap := c.Stage.VipCap()
	if existing+1 > cap {
		return &domain.VipCapExceededError{
			EventID:  c.Ticket.EventID,
			StageID:  c.Stage.ID,
			Cap:      cap,
			Existing: existing,
		}
	}
	return nil
}

// PerformerDay rejects a ticket when the visitor already holds an active
// ticket for an event on the same calendar date featuring the same
// performer.
type PerformerDay struct {
	store TicketStore
}

// NewPerformerDay creates the one-ticket-per-day-per-performer validator.
func NewPerformerDay(store TicketStore) *PerformerDay {
	return &PerformerDay{store: store}
}

func (v *PerformerDay) Name() string { return "performer_day" }

func (v *PerformerDay) Validate(ctx context.Context, c *TicketCandidate) error {
	held, err := v.store.HasSameDayPerformerTicket(ctx, c.Ticket.VisitorID, c.Ticket.EventID)
	if err != nil {
		return err
	}
	if held {
		return &domain.DuplicateTicketError{
			VisitorID: c.Ticket.VisitorID,
			EventID:   c.Ticket.EventID,
			Reason:    "visitor already holds a same-day ticket for this performer",
		}
	}
	return nil
}
