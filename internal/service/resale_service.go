package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/metrics"
	"github.com/stylianoueleni/festival-engine/internal/repository"
	"github.com/stylianoueleni/festival-engine/pkg/clock"
	"github.com/stylianoueleni/festival-engine/pkg/logger"
	"github.com/stylianoueleni/festival-engine/pkg/retry"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ResaleService defines the interface for the ticket resale workflow
type ResaleService interface {
	// ListForResale lists a ticket in the resale marketplace. The ticket
	// must be unused and resale-eligible, the price must not exceed 110%
	// of the original price, and the ticket must not already be listed.
	ListForResale(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error)

	// RequestPurchase queues a buyer's purchase request against a listed
	// ticket. Requests are served in FIFO order of arrival.
	RequestPurchase(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error)

	// ApproveRequest approves a pending purchase request, transfers the
	// ticket, and cancels every competing pending request. An empty
	// RequestID targets the oldest pending request in the queue.
	ApproveRequest(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error)

	// RejectRequest rejects a pending purchase request. An empty
	// RequestID targets the oldest pending request in the queue.
	RejectRequest(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error)

	// ExpireRequests cancels pending requests older than the pending
	// timeout, one ticket per transaction, and returns how many were
	// expired. The sweep is idempotent.
	ExpireRequests(ctx context.Context, limit int) (int, error)

	// GetQueue returns a ticket's resale queue in FIFO order
	GetQueue(ctx context.Context, ticketID string) (*dto.ResaleQueueResponse, error)

	// GetAuditLog returns a ticket's resale audit trail
	GetAuditLog(ctx context.Context, ticketID string) ([]*dto.AuditEventResponse, error)
}

// resaleService implements ResaleService
type resaleService struct {
	ticketRepo     repository.TicketRepository
	resaleRepo     repository.ResaleRepository
	auditRepo      repository.AuditRepository
	tx             repository.Transactor
	publisher      AuditPublisher
	retrier        *retry.Retrier
	clock          clock.Clock
	pendingTimeout time.Duration
}

// ResaleServiceConfig contains configuration for the resale service
type ResaleServiceConfig struct {
	PendingTimeout time.Duration
	Clock          clock.Clock
}

// NewResaleService creates a new resale service
func NewResaleService(
	ticketRepo repository.TicketRepository,
	resaleRepo repository.ResaleRepository,
	auditRepo repository.AuditRepository,
	tx repository.Transactor,
	publisher AuditPublisher,
	cfg *ResaleServiceConfig,
) ResaleService {
	timeout := domain.DefaultResalePendingTimeout
	if cfg != nil && cfg.PendingTimeout > 0 {
		timeout = cfg.PendingTimeout
	}
	clk := clock.Clock(nil)
	if cfg != nil {
		clk = cfg.Clock
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	if publisher == nil {
		publisher = NewNoOpAuditPublisher()
	}
	return &resaleService{
		ticketRepo: ticketRepo,
		resaleRepo: resaleRepo,
		auditRepo:  auditRepo,
		tx:         tx,
		publisher:  publisher,
		retrier: retry.New(&retry.Config{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2.0,
		}),
		clock:          clk,
		pendingTimeout: timeout,
	}
}

// outbox collects the audit events and notifications produced inside a
// transaction. Audit entries are written to the log in the same
// transaction; publishing to Kafka happens only after commit, best-effort.
type outbox struct {
	events        []*domain.AuditEvent
	notifications []*domain.Notification
}

func (o *outbox) audit(action domain.AuditAction, ticketID, requestID, actorID, detail string, at time.Time) *domain.AuditEvent {
	event := &domain.AuditEvent{
		ID:         uuid.New().String(),
		Action:     action,
		TicketID:   ticketID,
		RequestID:  requestID,
		ActorID:    actorID,
		Detail:     detail,
		OccurredAt: at,
	}
	o.events = append(o.events, event)
	return event
}

func (o *outbox) notify(visitorID, ticketID, requestID, message string, at time.Time) {
	o.notifications = append(o.notifications, &domain.Notification{
		ID:         uuid.New().String(),
		VisitorID:  visitorID,
		TicketID:   ticketID,
		RequestID:  requestID,
		Message:    message,
		OccurredAt: at,
	})
}

// ListForResale lists a ticket in the resale marketplace
func (s *resaleService) ListForResale(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.list_ticket")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", req.TicketID),
		attribute.Float64("price", req.Price),
	)

	now := s.clock.Now()
	out := &outbox{}
	var listing *domain.ResaleRequest
	var eventID string

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.ticketRepo.GetByIDForUpdate(ctx, req.TicketID)
		if err != nil {
			return err
		}
		eventID = ticket.EventID

		if !ticket.CanBeListed() {
			reason := "resale is disabled for this ticket"
			if ticket.IsUsed {
				reason = "ticket has been used"
			}
			return &domain.IneligibleTicketError{TicketID: ticket.ID, Reason: reason}
		}
		if req.Price > ticket.MaxResalePrice() {
			return &domain.PriceCapExceededError{
				TicketID: ticket.ID,
				Price:    req.Price,
				MaxPrice: ticket.MaxResalePrice(),
			}
		}

		_, err = s.resaleRepo.GetActiveListing(ctx, ticket.ID)
		if err == nil {
			return &domain.IneligibleTicketError{TicketID: ticket.ID, Reason: "ticket is already listed"}
		}
		if !errors.Is(err, domain.ErrResaleRequestNotFound) {
			return err
		}

		listing = &domain.ResaleRequest{
			ID:          uuid.New().String(),
			TicketID:    ticket.ID,
			SellerID:    ticket.VisitorID,
			Price:       req.Price,
			Status:      domain.ResaleStatusAvailable,
			RequestedAt: now,
		}
		if err := s.resaleRepo.Create(ctx, listing); err != nil {
			return err
		}

		event := out.audit(domain.AuditTicketListed, ticket.ID, listing.ID, ticket.VisitorID,
			fmt.Sprintf("listed at %.2f", req.Price), now)
		return s.auditRepo.Append(ctx, event)
	})
	if err != nil {
		if domain.IsInvariantViolation(err) {
			metrics.RecordInvariantRejection(ctx, "resale_listing", "list_for_resale")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.publishOutbox(out)
	metrics.RecordListing(ctx, eventID)

	span.SetAttributes(attribute.String("listing_id", listing.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ResaleFromDomain(listing), nil
}

// RequestPurchase queues a buyer's purchase request against a listed ticket
func (s *resaleService) RequestPurchase(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.request_purchase")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", req.TicketID),
		attribute.String("buyer_id", req.BuyerID),
	)

	now := s.clock.Now()
	out := &outbox{}
	var request *domain.ResaleRequest

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.ticketRepo.GetByIDForUpdate(ctx, req.TicketID)
		if err != nil {
			return err
		}
		if ticket.IsUsed {
			return &domain.NotAvailableError{TicketID: ticket.ID}
		}

		listing, err := s.resaleRepo.GetActiveListingForUpdate(ctx, ticket.ID)
		if err != nil {
			if errors.Is(err, domain.ErrResaleRequestNotFound) {
				return &domain.NotAvailableError{TicketID: ticket.ID}
			}
			return err
		}

		if req.BuyerID == ticket.VisitorID {
			return &domain.DuplicateOwnershipError{
				BuyerID:  req.BuyerID,
				TicketID: ticket.ID,
				Reason:   "buyer is the seller",
			}
		}
		holds, err := s.ticketRepo.HasTicketForEvent(ctx, req.BuyerID, ticket.EventID)
		if err != nil {
			return err
		}
		if holds {
			return &domain.DuplicateOwnershipError{
				BuyerID:  req.BuyerID,
				TicketID: ticket.ID,
				EventID:  ticket.EventID,
				Reason:   "buyer already holds a ticket for this event",
			}
		}
		queued, err := s.resaleRepo.HasPendingByBuyer(ctx, ticket.ID, req.BuyerID)
		if err != nil {
			return err
		}
		if queued {
			return &domain.DuplicateOwnershipError{
				BuyerID:  req.BuyerID,
				TicketID: ticket.ID,
				Reason:   "buyer already has a pending request for this ticket",
			}
		}

		request = &domain.ResaleRequest{
			ID:          uuid.New().String(),
			TicketID:    ticket.ID,
			SellerID:    listing.SellerID,
			BuyerID:     req.BuyerID,
			Price:       listing.Price,
			Status:      domain.ResaleStatusPending,
			RequestedAt: now,
		}
		if err := s.resaleRepo.Create(ctx, request); err != nil {
			return err
		}

		event := out.audit(domain.AuditPurchaseRequested, ticket.ID, request.ID, req.BuyerID, "", now)
		if err := s.auditRepo.Append(ctx, event); err != nil {
			return err
		}

		out.notify(listing.SellerID, ticket.ID, request.ID,
			"a buyer has requested to purchase your listed ticket", now)
		return nil
	})
	if err != nil {
		if domain.IsInvariantViolation(err) {
			metrics.RecordInvariantRejection(ctx, "resale_purchase", "request_purchase")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.publishOutbox(out)
	metrics.RecordPurchaseRequest(ctx, req.TicketID)

	span.SetAttributes(attribute.String("request_id", request.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ResaleFromDomain(request), nil
}

// ApproveRequest approves a pending purchase request and transfers the
// ticket. Competing pending requests are cancelled in the same
// transaction, so approval resolves the whole queue atomically.
func (s *resaleService) ApproveRequest(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.approve")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", req.TicketID),
		attribute.String("request_id", req.RequestID),
	)

	now := s.clock.Now()
	out := &outbox{}
	var request *domain.ResaleRequest
	var resolved int

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.ticketRepo.GetByIDForUpdate(ctx, req.TicketID)
		if err != nil {
			return err
		}
		if ticket.IsUsed {
			return &domain.IneligibleTicketError{TicketID: ticket.ID, Reason: "ticket has been used"}
		}

		request, err = s.lockDecisionTarget(ctx, req)
		if err != nil {
			return err
		}

		pending, err := s.resaleRepo.ListPending(ctx, req.TicketID)
		if err != nil {
			return err
		}
		resolved = len(pending)

		if err := s.resaleRepo.UpdateStatus(ctx, request.ID, domain.ResaleStatusSold, now); err != nil {
			return err
		}
		for _, other := range pending {
			if other.ID == request.ID {
				continue
			}
			if err := s.resaleRepo.UpdateStatus(ctx, other.ID, domain.ResaleStatusCancelled, now); err != nil {
				return err
			}
			event := out.audit(domain.AuditPurchaseRejected, req.TicketID, other.ID, req.SellerID,
				"superseded by an approved purchase", now)
			if err := s.auditRepo.Append(ctx, event); err != nil {
				return err
			}
			out.notify(other.BuyerID, req.TicketID, other.ID,
				"your purchase request was not selected; the ticket has been sold", now)
		}

		// The availability listing is consumed by the sale.
		listing, err := s.resaleRepo.GetActiveListingForUpdate(ctx, req.TicketID)
		if err == nil {
			if err := s.resaleRepo.UpdateStatus(ctx, listing.ID, domain.ResaleStatusSold, now); err != nil {
				return err
			}
		} else if !errors.Is(err, domain.ErrResaleRequestNotFound) {
			return err
		}

		if err := s.ticketRepo.TransferOwner(ctx, req.TicketID, request.BuyerID); err != nil {
			return err
		}
		// The new owner cannot relist; eligibility does not transfer.
		if err := s.ticketRepo.SetResaleEligible(ctx, req.TicketID, false); err != nil {
			return err
		}

		event := out.audit(domain.AuditPurchaseApproved, req.TicketID, request.ID, req.SellerID, "", now)
		if err := s.auditRepo.Append(ctx, event); err != nil {
			return err
		}
		out.notify(request.BuyerID, req.TicketID, request.ID,
			"your purchase request was approved; the ticket is now yours", now)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.publishOutbox(out)
	metrics.RecordApproval(ctx, req.TicketID, int64(resolved), now.Sub(request.RequestedAt).Seconds())

	request.Status = domain.ResaleStatusSold
	request.ResolvedAt = &now

	span.SetAttributes(attribute.String("request_id", request.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ResaleFromDomain(request), nil
}

// RejectRequest rejects a pending purchase request
func (s *resaleService) RejectRequest(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.reject")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_id", req.TicketID),
		attribute.String("request_id", req.RequestID),
	)

	now := s.clock.Now()
	out := &outbox{}
	var request *domain.ResaleRequest
	var relisted bool

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		ticket, err := s.ticketRepo.GetByIDForUpdate(ctx, req.TicketID)
		if err != nil {
			return err
		}
		if ticket.IsUsed {
			return &domain.IneligibleTicketError{TicketID: ticket.ID, Reason: "ticket has been used"}
		}

		request, err = s.lockDecisionTarget(ctx, req)
		if err != nil {
			return err
		}

		if err := s.resaleRepo.UpdateStatus(ctx, request.ID, domain.ResaleStatusCancelled, now); err != nil {
			return err
		}
		event := out.audit(domain.AuditPurchaseRejected, req.TicketID, request.ID, req.SellerID, "", now)
		if err := s.auditRepo.Append(ctx, event); err != nil {
			return err
		}
		out.notify(request.BuyerID, req.TicketID, request.ID,
			"your purchase request was rejected by the seller", now)

		remaining, err := s.resaleRepo.CountPending(ctx, req.TicketID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			relisted = true
			event := out.audit(domain.AuditTicketRelisted, req.TicketID, "", req.SellerID,
				"no pending requests remain", now)
			if err := s.auditRepo.Append(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.publishOutbox(out)
	metrics.RecordRejection(ctx, req.TicketID, now.Sub(request.RequestedAt).Seconds())
	if relisted {
		metrics.RecordRelisting(ctx, req.TicketID)
	}

	request.Status = domain.ResaleStatusCancelled
	request.ResolvedAt = &now

	span.SetAttributes(attribute.String("request_id", request.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ResaleFromDomain(request), nil
}

// lockDecisionTarget locks the pending request a seller decision applies
// to. An empty RequestID targets the head of the FIFO queue. A request
// that does not belong to the ticket and seller reads as not found.
func (s *resaleService) lockDecisionTarget(ctx context.Context, req *dto.DecideRequestRequest) (*domain.ResaleRequest, error) {
	var request *domain.ResaleRequest
	var err error
	if req.RequestID == "" {
		request, err = s.resaleRepo.OldestPendingForUpdate(ctx, req.TicketID)
	} else {
		request, err = s.resaleRepo.GetPendingForUpdate(ctx, req.RequestID)
	}
	if err != nil {
		return nil, err
	}
	if request.TicketID != req.TicketID || request.SellerID != req.SellerID {
		return nil, domain.ErrResaleRequestNotFound
	}
	return request, nil
}

// ExpireRequests cancels pending requests older than the pending timeout.
// Each ticket is handled in its own transaction, so one failure never
// blocks the rest of the sweep.
func (s *resaleService) ExpireRequests(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.expire_requests")
	defer span.End()

	cutoff := s.clock.Now().Add(-s.pendingTimeout)
	span.SetAttributes(
		attribute.String("cutoff", cutoff.Format(time.RFC3339)),
		attribute.Int("limit", limit),
	)

	ticketIDs, err := s.resaleRepo.ListExpiredPendingTicketIDs(ctx, cutoff, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	total := 0
	for _, ticketID := range ticketIDs {
		expired, err := s.expireTicket(ctx, ticketID, cutoff)
		if err != nil {
			logger.Get().Warn("failed to expire resale requests",
				zap.String("ticket_id", ticketID),
				zap.Error(err),
			)
			continue
		}
		total += expired
	}

	span.SetAttributes(attribute.Int("expired", total))
	span.SetStatus(codes.Ok, "")
	return total, nil
}

// expireTicket cancels one ticket's expired pending requests in a single
// transaction
func (s *resaleService) expireTicket(ctx context.Context, ticketID string, cutoff time.Time) (int, error) {
	now := s.clock.Now()
	out := &outbox{}
	var expired int
	var relisted bool

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.ticketRepo.GetByIDForUpdate(ctx, ticketID); err != nil {
			return err
		}

		requests, err := s.resaleRepo.ListExpiredPendingForUpdate(ctx, ticketID, cutoff)
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			return nil
		}
		expired = len(requests)

		for _, request := range requests {
			if err := s.resaleRepo.UpdateStatus(ctx, request.ID, domain.ResaleStatusCancelled, now); err != nil {
				return err
			}
			event := out.audit(domain.AuditRequestExpired, ticketID, request.ID, "",
				fmt.Sprintf("pending since %s", request.RequestedAt.Format(time.RFC3339)), now)
			if err := s.auditRepo.Append(ctx, event); err != nil {
				return err
			}
			out.notify(request.BuyerID, ticketID, request.ID,
				"your purchase request expired without a seller decision", now)
		}

		remaining, err := s.resaleRepo.CountPending(ctx, ticketID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			relisted = true
			event := out.audit(domain.AuditTicketRelisted, ticketID, "", "",
				"no pending requests remain", now)
			return s.auditRepo.Append(ctx, event)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.publishOutbox(out)
		metrics.RecordExpiration(ctx, ticketID, int64(expired))
		if relisted {
			metrics.RecordRelisting(ctx, ticketID)
		}
	}
	return expired, nil
}

// GetQueue returns a ticket's resale queue in FIFO order
func (s *resaleService) GetQueue(ctx context.Context, ticketID string) (*dto.ResaleQueueResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.get_queue")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	requests, err := s.resaleRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.ResaleRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, dto.ResaleFromDomain(request))
	}

	span.SetStatus(codes.Ok, "")
	return &dto.ResaleQueueResponse{TicketID: ticketID, Requests: responses}, nil
}

// GetAuditLog returns a ticket's resale audit trail
func (s *resaleService) GetAuditLog(ctx context.Context, ticketID string) ([]*dto.AuditEventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.resale.get_audit_log")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", ticketID))

	events, err := s.auditRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.AuditEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.AuditFromDomain(event))
	}

	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// publishOutbox publishes the transaction's audit events and notifications
// after commit. Publishing is best-effort with retry; failures are logged
// and never affect the committed transition.
func (s *resaleService) publishOutbox(out *outbox) {
	if len(out.events) == 0 && len(out.notifications) == 0 {
		return
	}
	go func() {
		ctx := context.Background()
		for _, event := range out.events {
			result := s.retrier.Do(ctx, func(ctx context.Context) error {
				return s.publisher.PublishAuditEvent(ctx, event)
			})
			if result.Err != nil {
				logger.Get().Warn("failed to publish audit event",
					zap.String("event_id", event.ID),
					zap.String("action", string(event.Action)),
					zap.Error(result.Err),
				)
			}
		}
		for _, notification := range out.notifications {
			result := s.retrier.Do(ctx, func(ctx context.Context) error {
				return s.publisher.PublishNotification(ctx, notification)
			})
			if result.Err != nil {
				logger.Get().Warn("failed to publish notification",
					zap.String("notification_id", notification.ID),
					zap.Error(result.Err),
				)
			}
		}
	}()
}
