// Package validator holds the composable invariant checks that guard every
// engine-validated write. Each validator is an explicit, named rule; the
// services compose them into per-entity chains and run the chain inside the
// same transaction as the write, so a chain sees exactly the state the
// write will commit against.
package validator

import (
	"context"
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// PerformanceCandidate carries a candidate performance together with the
// context the validators need, resolved once by the service.
type PerformanceCandidate struct {
	Performance  *domain.Performance
	Event        *domain.Event
	Day          *domain.FestivalDay
	Stage        *domain.Stage
	FestivalYear int
}

// PerformanceValidator is one rule in the performance write path.
type PerformanceValidator interface {
	Name() string
	Validate(ctx context.Context, c *PerformanceCandidate) error
}

// EventCandidate carries a candidate event and its stage/day context.
type EventCandidate struct {
	Event *domain.Event
	Day   *domain.FestivalDay
	Stage *domain.Stage
}

// EventValidator is one rule in the event write path.
type EventValidator interface {
	Name() string
	Validate(ctx context.Context, c *EventCandidate) error
}

// TicketCandidate carries a candidate ticket, its event context, the
// purchasing visitor, and the evaluation instant for age computation.
type TicketCandidate struct {
	Ticket  *domain.Ticket
	Event   *domain.Event
	Day     *domain.FestivalDay
	Stage   *domain.Stage
	Visitor *domain.Visitor
	Now     time.Time
}

// TicketValidator is one rule in the ticket write path.
type TicketValidator interface {
	Name() string
	Validate(ctx context.Context, c *TicketCandidate) error
}

// AssignmentCandidate carries a candidate staff assignment and the stage
// whose capacity drives the ratio caps.
type AssignmentCandidate struct {
	Assignment *domain.StaffAssignment
	Stage      *domain.Stage
}

// AssignmentValidator is one rule in the staff assignment write path.
type AssignmentValidator interface {
	Name() string
	Validate(ctx context.Context, c *AssignmentCandidate) error
}

// ReviewCandidate carries a candidate review and the evaluation instant.
type ReviewCandidate struct {
	Review *domain.Review
	Now    time.Time
}

// ReviewValidator is one rule in the review write path.
type ReviewValidator interface {
	Name() string
	Validate(ctx context.Context, c *ReviewCandidate) error
}
