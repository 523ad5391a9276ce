package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/metrics"
	"github.com/stylianoueleni/festival-engine/internal/repository"
	"github.com/stylianoueleni/festival-engine/internal/validator"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TicketService defines the interface for ticket issuance and gate entry
type TicketService interface {
	// IssueTicket issues a ticket for an event. The write is validated
	// against the code format and uniqueness, the visitor's age, the VIP
	// capacity cap, and the one-ticket-per-day-per-performer rule.
	IssueTicket(ctx context.Context, req *dto.IssueTicketRequest) (*dto.TicketResponse, error)

	// MarkTicketUsed records gate entry. A used ticket permanently loses
	// resale eligibility.
	MarkTicketUsed(ctx context.Context, id string) error

	// GetTicket retrieves a ticket by ID
	GetTicket(ctx context.Context, id string) (*dto.TicketResponse, error)

	// ListVisitorTickets lists a visitor's tickets
	ListVisitorTickets(ctx context.Context, visitorID string) ([]*dto.TicketResponse, error)
}

// ticketService implements TicketService
type ticketService struct {
	ticketRepo   repository.TicketRepository
	visitorRepo  repository.VisitorRepository
	eventRepo    repository.EventRepository
	festivalRepo repository.FestivalRepository
	tx           repository.Transactor
	validators   []validator.TicketValidator
}

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo repository.TicketRepository,
	visitorRepo repository.VisitorRepository,
	eventRepo repository.EventRepository,
	festivalRepo repository.FestivalRepository,
	tx repository.Transactor,
) TicketService {
	return &ticketService{
		ticketRepo:   ticketRepo,
		visitorRepo:  visitorRepo,
		eventRepo:    eventRepo,
		festivalRepo: festivalRepo,
		tx:           tx,
		validators: []validator.TicketValidator{
			validator.NewCode(ticketRepo),
			validator.NewAge(),
			validator.NewVipCap(ticketRepo),
			validator.NewPerformerDay(ticketRepo),
		},
	}
}

// IssueTicket issues a ticket for an event
func (s *ticketService) IssueTicket(ctx context.Context, req *dto.IssueTicketRequest) (*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.issue")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", req.EventID),
		attribute.String("visitor_id", req.VisitorID),
		attribute.String("category", req.Category),
	)

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	visitor, err := s.visitorRepo.GetByID(ctx, req.VisitorID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	day, err := s.festivalRepo.GetDay(ctx, event.DayID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	stage, err := s.festivalRepo.GetStage(ctx, event.StageID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	ticket := &domain.Ticket{
		ID:             uuid.New().String(),
		EventID:        event.ID,
		VisitorID:      visitor.ID,
		Category:       domain.TicketCategory(req.Category),
		Price:          req.Price,
		Code:           req.Code,
		Method:         domain.PaymentMethod(req.Method),
		PurchaseDate:   now,
		IsUsed:         false,
		ResaleEligible: true,
	}

	candidate := &validator.TicketCandidate{
		Ticket:  ticket,
		Event:   event,
		Day:     day,
		Stage:   stage,
		Visitor: visitor,
		Now:     now,
	}

	span.SetAttributes(attribute.String("ticket_id", ticket.ID))

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		for _, v := range s.validators {
			if err := v.Validate(ctx, candidate); err != nil {
				if domain.IsInvariantViolation(err) {
					metrics.RecordInvariantRejection(ctx, v.Name(), "issue_ticket")
				}
				return err
			}
		}
		return s.ticketRepo.Create(ctx, ticket)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.TicketFromDomain(ticket), nil
}

// MarkTicketUsed records gate entry
func (s *ticketService) MarkTicketUsed(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.mark_used")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	if err := s.ticketRepo.MarkUsed(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetTicket retrieves a ticket by ID
func (s *ticketService) GetTicket(ctx context.Context, id string) (*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.get")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.TicketFromDomain(ticket), nil
}

// ListVisitorTickets lists a visitor's tickets
func (s *ticketService) ListVisitorTickets(ctx context.Context, visitorID string) ([]*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.list_by_visitor")
	defer span.End()

	span.SetAttributes(attribute.String("visitor_id", visitorID))

	tickets, err := s.ticketRepo.ListByVisitor(ctx, visitorID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		responses = append(responses, dto.TicketFromDomain(ticket))
	}

	span.SetStatus(codes.Ok, "")
	return responses, nil
}
