package repository

import (
	"context"
	"time"

	"github.com/stylianoueleni/festival-engine/internal/domain"
)

// FestivalRepository stores festival editions, their days and stages.
type FestivalRepository interface {
	CreateFestival(ctx context.Context, festival *domain.Festival) error
	GetFestival(ctx context.Context, id string) (*domain.Festival, error)
	GetFestivalByDay(ctx context.Context, dayID string) (*domain.Festival, error)
	CreateDay(ctx context.Context, day *domain.FestivalDay) error
	GetDay(ctx context.Context, id string) (*domain.FestivalDay, error)
	ListDays(ctx context.Context, festivalID string) ([]*domain.FestivalDay, error)
	CreateStage(ctx context.Context, stage *domain.Stage) error
	GetStage(ctx context.Context, id string) (*domain.Stage, error)
	ListStages(ctx context.Context) ([]*domain.Stage, error)
}

// EventRepository stores scheduled events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	ListEventsOnStageDay(ctx context.Context, stageID, dayID string) ([]*domain.Event, error)
	ListByDay(ctx context.Context, dayID string) ([]*domain.Event, error)
}

// PerformanceRepository stores performances and their performers.
// Performances are soft-deleted; every read here excludes deleted rows.
type PerformanceRepository interface {
	Create(ctx context.Context, performance *domain.Performance) error
	GetByID(ctx context.Context, id string) (*domain.Performance, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Performance, error)
	ListPerformancesByStageDay(ctx context.Context, stageID, dayID string) ([]*domain.Performance, error)
	ListPerformancesByPerformerOnDate(ctx context.Context, performer domain.PerformerRef, date time.Time) ([]*domain.Performance, error)
	YearsPerformed(ctx context.Context, performer domain.PerformerRef, years []int) (map[int]bool, error)

	CreateArtist(ctx context.Context, artist *domain.Artist) error
	GetArtist(ctx context.Context, id string) (*domain.Artist, error)
	CreateBand(ctx context.Context, band *domain.Band) error
	GetBand(ctx context.Context, id string) (*domain.Band, error)
}

// VisitorRepository stores festival attendees.
type VisitorRepository interface {
	Create(ctx context.Context, visitor *domain.Visitor) error
	GetByID(ctx context.Context, id string) (*domain.Visitor, error)
	Update(ctx context.Context, visitor *domain.Visitor) error
}

// TicketRepository stores tickets and answers the ownership questions the
// validators and the resale workflow ask.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetByIDForUpdate locks the ticket row for the rest of the
	// transaction. Callers must be inside WithTx.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	ListByVisitor(ctx context.Context, visitorID string) ([]*domain.Ticket, error)
	// MarkUsed records gate entry and permanently removes resale
	// eligibility.
	MarkUsed(ctx context.Context, id string) error
	// TransferOwner moves the ticket to a new visitor after an approved
	// resale.
	TransferOwner(ctx context.Context, id, visitorID string) error
	SetResaleEligible(ctx context.Context, id string, eligible bool) error

	CountVipTicketsByEvent(ctx context.Context, eventID string) (int, error)
	TicketCodeExists(ctx context.Context, code string) (bool, error)
	HasSameDayPerformerTicket(ctx context.Context, visitorID, eventID string) (bool, error)
	HasTicketForEvent(ctx context.Context, visitorID, eventID string) (bool, error)
	HasUsedTicketForPerformance(ctx context.Context, visitorID, performanceID string) (bool, error)
}

// StaffRepository stores staff members and their event assignments.
type StaffRepository interface {
	CreateStaff(ctx context.Context, staff *domain.Staff) error
	GetStaff(ctx context.Context, id string) (*domain.Staff, error)
	CreateAssignment(ctx context.Context, assignment *domain.StaffAssignment) error
	ListAssignmentsByEvent(ctx context.Context, eventID string) ([]*domain.StaffAssignment, error)
	CountAssignmentsByEventAndRole(ctx context.Context, eventID string, role domain.StaffRole) (int, error)
}

// ResaleRepository stores the resale queue. A ticket's queue is ordered by
// (requested_at, seq); seq is assigned by the store and breaks timestamp
// ties.
type ResaleRepository interface {
	// Create inserts the request and fills in its Seq.
	Create(ctx context.Context, request *domain.ResaleRequest) error
	GetByID(ctx context.Context, id string) (*domain.ResaleRequest, error)
	// GetActiveListingForUpdate returns the ticket's current available
	// listing, locking it. Callers must be inside WithTx.
	GetActiveListingForUpdate(ctx context.Context, ticketID string) (*domain.ResaleRequest, error)
	GetActiveListing(ctx context.Context, ticketID string) (*domain.ResaleRequest, error)
	// OldestPendingForUpdate returns the ticket's oldest pending request
	// in FIFO order, locking it. Callers must be inside WithTx.
	OldestPendingForUpdate(ctx context.Context, ticketID string) (*domain.ResaleRequest, error)
	GetPendingForUpdate(ctx context.Context, id string) (*domain.ResaleRequest, error)
	ListPending(ctx context.Context, ticketID string) ([]*domain.ResaleRequest, error)
	CountPending(ctx context.Context, ticketID string) (int, error)
	HasPendingByBuyer(ctx context.Context, ticketID, buyerID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.ResaleStatus, resolvedAt time.Time) error
	ListByTicket(ctx context.Context, ticketID string) ([]*domain.ResaleRequest, error)
	// ListExpiredPendingTicketIDs returns distinct ticket ids holding at
	// least one pending request older than the cutoff.
	ListExpiredPendingTicketIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	// ListExpiredPendingForUpdate locks and returns the ticket's pending
	// requests older than the cutoff. Callers must be inside WithTx.
	ListExpiredPendingForUpdate(ctx context.Context, ticketID string, cutoff time.Time) ([]*domain.ResaleRequest, error)
}

// ReviewRepository stores performance reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByPerformance(ctx context.Context, performanceID string) ([]*domain.Review, error)
}

// AuditRepository stores the append-only resale audit log.
type AuditRepository interface {
	Append(ctx context.Context, event *domain.AuditEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]*domain.AuditEvent, error)
}
