package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/pkg/clock"
)

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (r *fakeTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	r.tickets[t.ID] = t
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return t, nil
}

func (r *fakeTicketRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTicketRepo) ListByVisitor(ctx context.Context, visitorID string) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range r.tickets {
		if t.VisitorID == visitorID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) MarkUsed(ctx context.Context, id string) error {
	t, ok := r.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.IsUsed = true
	t.ResaleEligible = false
	return nil
}

func (r *fakeTicketRepo) TransferOwner(ctx context.Context, id, visitorID string) error {
	t, ok := r.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.VisitorID = visitorID
	return nil
}

func (r *fakeTicketRepo) SetResaleEligible(ctx context.Context, id string, eligible bool) error {
	t, ok := r.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.ResaleEligible = eligible
	return nil
}

func (r *fakeTicketRepo) CountVipTicketsByEvent(ctx context.Context, eventID string) (int, error) {
	count := 0
	for _, t := range r.tickets {
		if t.EventID == eventID && t.Category == domain.TicketCategoryVIP {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	for _, t := range r.tickets {
		if t.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTicketRepo) HasSameDayPerformerTicket(ctx context.Context, visitorID, eventID string) (bool, error) {
	return false, nil
}

func (r *fakeTicketRepo) HasTicketForEvent(ctx context.Context, visitorID, eventID string) (bool, error) {
	for _, t := range r.tickets {
		if t.VisitorID == visitorID && t.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTicketRepo) HasUsedTicketForPerformance(ctx context.Context, visitorID, performanceID string) (bool, error) {
	return false, nil
}

type fakeResaleRepo struct {
	requests []*domain.ResaleRequest
	nextSeq  int64
}

func (r *fakeResaleRepo) Create(ctx context.Context, request *domain.ResaleRequest) error {
	r.nextSeq++
	request.Seq = r.nextSeq
	r.requests = append(r.requests, request)
	return nil
}

func (r *fakeResaleRepo) byID(id string) *domain.ResaleRequest {
	for _, req := range r.requests {
		if req.ID == id {
			return req
		}
	}
	return nil
}

func (r *fakeResaleRepo) fifo(requests []*domain.ResaleRequest) []*domain.ResaleRequest {
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].RequestedAt.Equal(requests[j].RequestedAt) {
			return requests[i].RequestedAt.Before(requests[j].RequestedAt)
		}
		return requests[i].Seq < requests[j].Seq
	})
	return requests
}

func (r *fakeResaleRepo) GetByID(ctx context.Context, id string) (*domain.ResaleRequest, error) {
	if req := r.byID(id); req != nil {
		return req, nil
	}
	return nil, domain.ErrResaleRequestNotFound
}

func (r *fakeResaleRepo) GetActiveListing(ctx context.Context, ticketID string) (*domain.ResaleRequest, error) {
	for _, req := range r.requests {
		if req.TicketID == ticketID && req.Status == domain.ResaleStatusAvailable {
			return req, nil
		}
	}
	return nil, domain.ErrResaleRequestNotFound
}

func (r *fakeResaleRepo) GetActiveListingForUpdate(ctx context.Context, ticketID string) (*domain.ResaleRequest, error) {
	return r.GetActiveListing(ctx, ticketID)
}

func (r *fakeResaleRepo) OldestPendingForUpdate(ctx context.Context, ticketID string) (*domain.ResaleRequest, error) {
	pending, _ := r.ListPending(ctx, ticketID)
	if len(pending) == 0 {
		return nil, domain.ErrResaleRequestNotFound
	}
	return pending[0], nil
}

func (r *fakeResaleRepo) GetPendingForUpdate(ctx context.Context, id string) (*domain.ResaleRequest, error) {
	req := r.byID(id)
	if req == nil || req.Status != domain.ResaleStatusPending {
		return nil, domain.ErrResaleRequestNotFound
	}
	return req, nil
}

func (r *fakeResaleRepo) ListPending(ctx context.Context, ticketID string) ([]*domain.ResaleRequest, error) {
	var out []*domain.ResaleRequest
	for _, req := range r.requests {
		if req.TicketID == ticketID && req.Status == domain.ResaleStatusPending {
			out = append(out, req)
		}
	}
	return r.fifo(out), nil
}

func (r *fakeResaleRepo) CountPending(ctx context.Context, ticketID string) (int, error) {
	pending, _ := r.ListPending(ctx, ticketID)
	return len(pending), nil
}

func (r *fakeResaleRepo) HasPendingByBuyer(ctx context.Context, ticketID, buyerID string) (bool, error) {
	for _, req := range r.requests {
		if req.TicketID == ticketID && req.BuyerID == buyerID && req.Status == domain.ResaleStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeResaleRepo) UpdateStatus(ctx context.Context, id string, status domain.ResaleStatus, resolvedAt time.Time) error {
	req := r.byID(id)
	if req == nil {
		return domain.ErrResaleRequestNotFound
	}
	req.Status = status
	req.ResolvedAt = &resolvedAt
	return nil
}

func (r *fakeResaleRepo) ListByTicket(ctx context.Context, ticketID string) ([]*domain.ResaleRequest, error) {
	var out []*domain.ResaleRequest
	for _, req := range r.requests {
		if req.TicketID == ticketID {
			out = append(out, req)
		}
	}
	return r.fifo(out), nil
}

func (r *fakeResaleRepo) ListExpiredPendingTicketIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, req := range r.requests {
		if req.Status == domain.ResaleStatusPending && !req.RequestedAt.After(cutoff) && !seen[req.TicketID] {
			seen[req.TicketID] = true
			ids = append(ids, req.TicketID)
			if len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

func (r *fakeResaleRepo) ListExpiredPendingForUpdate(ctx context.Context, ticketID string, cutoff time.Time) ([]*domain.ResaleRequest, error) {
	var out []*domain.ResaleRequest
	for _, req := range r.requests {
		if req.TicketID == ticketID && req.Status == domain.ResaleStatusPending && !req.RequestedAt.After(cutoff) {
			out = append(out, req)
		}
	}
	return r.fifo(out), nil
}

type fakeAuditRepo struct {
	events []*domain.AuditEvent
}

func (r *fakeAuditRepo) Append(ctx context.Context, event *domain.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAuditRepo) ListByTicket(ctx context.Context, ticketID string) ([]*domain.AuditEvent, error) {
	var out []*domain.AuditEvent
	for _, e := range r.events {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) actions() []domain.AuditAction {
	out := make([]domain.AuditAction, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type resaleFixture struct {
	service ResaleService
	tickets *fakeTicketRepo
	resale  *fakeResaleRepo
	audit   *fakeAuditRepo
}

func newResaleFixture(t *testing.T, tickets ...*domain.Ticket) *resaleFixture {
	t.Helper()
	f := &resaleFixture{
		tickets: newFakeTicketRepo(tickets...),
		resale:  &fakeResaleRepo{},
		audit:   &fakeAuditRepo{},
	}
	f.service = NewResaleService(f.tickets, f.resale, f.audit, passthroughTx{}, NewNoOpAuditPublisher(), nil)
	return f
}

// withClock rebuilds the service on a pinned clock, keeping the stores.
func (f *resaleFixture) withClock(c clock.Clock) *resaleFixture {
	f.service = NewResaleService(f.tickets, f.resale, f.audit, passthroughTx{}, NewNoOpAuditPublisher(), &ResaleServiceConfig{Clock: c})
	return f
}

func sellerTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:             "ticket-1",
		EventID:        "event-1",
		VisitorID:      "seller",
		Category:       domain.TicketCategoryGeneral,
		Price:          100,
		Code:           "1234567890123",
		PurchaseDate:   time.Now().Add(-48 * time.Hour),
		ResaleEligible: true,
	}
}

func TestListForResale(t *testing.T) {
	ctx := context.Background()

	t.Run("lists eligible ticket", func(t *testing.T) {
		f := newResaleFixture(t, sellerTicket())

		resp, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 105})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ResaleStatusAvailable), resp.Status)
		assert.Equal(t, "seller", resp.SellerID)
		assert.Equal(t, []domain.AuditAction{domain.AuditTicketListed}, f.audit.actions())
	})

	t.Run("rejects price above cap", func(t *testing.T) {
		f := newResaleFixture(t, sellerTicket())

		_, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 110.01})
		assert.ErrorIs(t, err, domain.ErrPriceCapExceeded)
	})

	t.Run("allows price exactly at cap", func(t *testing.T) {
		f := newResaleFixture(t, sellerTicket())

		_, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 110})
		assert.NoError(t, err)
	})

	t.Run("rejects used ticket", func(t *testing.T) {
		ticket := sellerTicket()
		ticket.IsUsed = true
		ticket.ResaleEligible = false
		f := newResaleFixture(t, ticket)

		_, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100})
		assert.ErrorIs(t, err, domain.ErrIneligibleTicket)
	})

	t.Run("rejects double listing", func(t *testing.T) {
		f := newResaleFixture(t, sellerTicket())

		_, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100})
		require.NoError(t, err)

		_, err = f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100})
		assert.ErrorIs(t, err, domain.ErrIneligibleTicket)
	})
}

func TestRequestPurchase(t *testing.T) {
	ctx := context.Background()

	list := func(t *testing.T, f *resaleFixture) {
		t.Helper()
		_, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100})
		require.NoError(t, err)
	}

	t.Run("queues pending request at listing price", func(t *testing.T) {
		f := newResaleFixture(t, sellerTicket())
		list(t, f)

		resp, err := f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ResaleStatusPending), resp.Status)
		assert.Equal(t, "seller", resp.SellerID)
		assert.Equal(t, "buyer-1", resp.BuyerID)
		assert.Equal(t, 100.0, resp.Price)
	})

	t.Run("rejects unlisted ticket", func(t *testing.T) {
		f := newResaleFixture(t, sellerTicket())

		_, err := f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"})
		assert.ErrorIs(t, err, domain.ErrNotAvailable)
	})

	t.Run("rejects seller as buyer", func(t *testing.T) {
		f := newResaleFixture(t, sellerTicket())
		list(t, f)

		_, err := f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "seller"})
		assert.ErrorIs(t, err, domain.ErrDuplicateOwnership)
	})

	t.Run("rejects buyer holding a ticket for the event", func(t *testing.T) {
		owned := &domain.Ticket{ID: "ticket-2", EventID: "event-1", VisitorID: "buyer-1", Price: 80, ResaleEligible: true}
		f := newResaleFixture(t, sellerTicket(), owned)
		list(t, f)

		_, err := f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"})
		assert.ErrorIs(t, err, domain.ErrDuplicateOwnership)
	})

	t.Run("rejects duplicate pending request", func(t *testing.T) {
		f := newResaleFixture(t, sellerTicket())
		list(t, f)

		_, err := f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"})
		require.NoError(t, err)

		_, err = f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"})
		assert.ErrorIs(t, err, domain.ErrDuplicateOwnership)
	})
}

func TestApproveRequest(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, buyers ...string) *resaleFixture {
		t.Helper()
		f := newResaleFixture(t, sellerTicket())
		_, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100})
		require.NoError(t, err)
		for _, buyer := range buyers {
			_, err := f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: buyer})
			require.NoError(t, err)
		}
		return f
	}

	t.Run("empty request id approves the oldest pending request", func(t *testing.T) {
		f := setup(t, "buyer-1", "buyer-2")

		resp, err := f.service.ApproveRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller"})
		require.NoError(t, err)
		assert.Equal(t, "buyer-1", resp.BuyerID)
		assert.Equal(t, string(domain.ResaleStatusSold), resp.Status)

		ticket, err := f.tickets.GetByID(ctx, "ticket-1")
		require.NoError(t, err)
		assert.Equal(t, "buyer-1", ticket.VisitorID)

		// Competing request is cancelled and the queue is empty.
		pending, err := f.resale.ListPending(ctx, "ticket-1")
		require.NoError(t, err)
		assert.Empty(t, pending)

		assert.Contains(t, f.audit.actions(), domain.AuditPurchaseApproved)
		assert.Contains(t, f.audit.actions(), domain.AuditPurchaseRejected)
	})

	t.Run("listing is consumed by the sale", func(t *testing.T) {
		f := setup(t, "buyer-1")

		_, err := f.service.ApproveRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller"})
		require.NoError(t, err)

		_, err = f.resale.GetActiveListing(ctx, "ticket-1")
		assert.ErrorIs(t, err, domain.ErrResaleRequestNotFound)
	})

	t.Run("approval revokes resale eligibility", func(t *testing.T) {
		f := setup(t, "buyer-1")

		_, err := f.service.ApproveRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller"})
		require.NoError(t, err)

		ticket, err := f.tickets.GetByID(ctx, "ticket-1")
		require.NoError(t, err)
		assert.False(t, ticket.ResaleEligible)

		// The new owner cannot turn around and relist.
		_, err = f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100})
		assert.ErrorIs(t, err, domain.ErrIneligibleTicket)
	})

	t.Run("refuses a ticket used at the gate", func(t *testing.T) {
		f := setup(t, "buyer-1")
		require.NoError(t, f.tickets.MarkUsed(ctx, "ticket-1"))

		_, err := f.service.ApproveRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller"})
		assert.ErrorIs(t, err, domain.ErrIneligibleTicket)

		// Ownership never moved.
		ticket, err := f.tickets.GetByID(ctx, "ticket-1")
		require.NoError(t, err)
		assert.Equal(t, "seller", ticket.VisitorID)
	})

	t.Run("explicit request id approves that request", func(t *testing.T) {
		f := setup(t, "buyer-1", "buyer-2")
		pending, err := f.resale.ListPending(ctx, "ticket-1")
		require.NoError(t, err)
		require.Len(t, pending, 2)

		resp, err := f.service.ApproveRequest(ctx, &dto.DecideRequestRequest{
			TicketID:  "ticket-1",
			RequestID: pending[1].ID,
			SellerID:  "seller",
		})
		require.NoError(t, err)
		assert.Equal(t, "buyer-2", resp.BuyerID)
	})

	t.Run("rejects a non-seller decision", func(t *testing.T) {
		f := setup(t, "buyer-1")

		_, err := f.service.ApproveRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "intruder"})
		assert.ErrorIs(t, err, domain.ErrResaleRequestNotFound)
	})

	t.Run("fails with no pending requests", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.ApproveRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller"})
		assert.ErrorIs(t, err, domain.ErrResaleRequestNotFound)
	})
}

func TestRejectRequest(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, buyers ...string) *resaleFixture {
		t.Helper()
		f := newResaleFixture(t, sellerTicket())
		_, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100})
		require.NoError(t, err)
		for _, buyer := range buyers {
			_, err := f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: buyer})
			require.NoError(t, err)
		}
		return f
	}

	t.Run("refuses a ticket used at the gate", func(t *testing.T) {
		f := setup(t, "buyer-1")
		require.NoError(t, f.tickets.MarkUsed(ctx, "ticket-1"))

		_, err := f.service.RejectRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller"})
		assert.ErrorIs(t, err, domain.ErrIneligibleTicket)
	})

	t.Run("rejects the head of the queue, next buyer advances", func(t *testing.T) {
		f := setup(t, "buyer-1", "buyer-2")

		resp, err := f.service.RejectRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller"})
		require.NoError(t, err)
		assert.Equal(t, "buyer-1", resp.BuyerID)
		assert.Equal(t, string(domain.ResaleStatusCancelled), resp.Status)

		head, err := f.resale.OldestPendingForUpdate(ctx, "ticket-1")
		require.NoError(t, err)
		assert.Equal(t, "buyer-2", head.BuyerID)

		// The queue is not empty, so no relist entry yet.
		assert.NotContains(t, f.audit.actions(), domain.AuditTicketRelisted)
	})

	t.Run("rejecting the last request relists the ticket", func(t *testing.T) {
		f := setup(t, "buyer-1")

		_, err := f.service.RejectRequest(ctx, &dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller"})
		require.NoError(t, err)

		assert.Contains(t, f.audit.actions(), domain.AuditTicketRelisted)

		// The listing survives, so a new buyer can request again.
		_, err = f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-2"})
		assert.NoError(t, err)
	})
}

func TestExpireRequests(t *testing.T) {
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newResaleFixture(t, sellerTicket()).withClock(clock.NewFixed(base))
	_, err := f.service.ListForResale(ctx, &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100})
	require.NoError(t, err)

	_, err = f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"})
	require.NoError(t, err)
	_, err = f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-2"})
	require.NoError(t, err)

	// Advance past the pending timeout.
	f.withClock(clock.NewFixed(base.Add(domain.DefaultResalePendingTimeout + time.Hour)))

	expired, err := f.service.ExpireRequests(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, expired)

	remaining, err := f.resale.CountPending(ctx, "ticket-1")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	actions := f.audit.actions()
	assert.Contains(t, actions, domain.AuditRequestExpired)
	assert.Contains(t, actions, domain.AuditTicketRelisted)

	// The sweep is idempotent.
	expired, err = f.service.ExpireRequests(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, expired)

	// The ticket is still listed and accepts new requests.
	_, err = f.service.RequestPurchase(ctx, &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-3"})
	assert.NoError(t, err)
}
