package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
)

// MockResaleService is a mock implementation of ResaleService for testing
type MockResaleService struct {
	ListForResaleFunc   func(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error)
	RequestPurchaseFunc func(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error)
	ApproveRequestFunc  func(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error)
	RejectRequestFunc   func(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error)
	ExpireRequestsFunc  func(ctx context.Context, limit int) (int, error)
	GetQueueFunc        func(ctx context.Context, ticketID string) (*dto.ResaleQueueResponse, error)
	GetAuditLogFunc     func(ctx context.Context, ticketID string) ([]*dto.AuditEventResponse, error)
}

func (m *MockResaleService) ListForResale(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error) {
	if m.ListForResaleFunc != nil {
		return m.ListForResaleFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockResaleService) RequestPurchase(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error) {
	if m.RequestPurchaseFunc != nil {
		return m.RequestPurchaseFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockResaleService) ApproveRequest(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error) {
	if m.ApproveRequestFunc != nil {
		return m.ApproveRequestFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockResaleService) RejectRequest(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error) {
	if m.RejectRequestFunc != nil {
		return m.RejectRequestFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockResaleService) ExpireRequests(ctx context.Context, limit int) (int, error) {
	if m.ExpireRequestsFunc != nil {
		return m.ExpireRequestsFunc(ctx, limit)
	}
	return 0, nil
}

func (m *MockResaleService) GetQueue(ctx context.Context, ticketID string) (*dto.ResaleQueueResponse, error) {
	if m.GetQueueFunc != nil {
		return m.GetQueueFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *MockResaleService) GetAuditLog(ctx context.Context, ticketID string) ([]*dto.AuditEventResponse, error) {
	if m.GetAuditLogFunc != nil {
		return m.GetAuditLogFunc(ctx, ticketID)
	}
	return nil, nil
}

func setupResaleRouter(mockService *MockResaleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewResaleHandler(mockService)

	resale := router.Group("/resale")
	{
		resale.POST("/listings", handler.ListForResale)
		resale.POST("/requests", handler.RequestPurchase)
		resale.POST("/requests/approve", handler.ApproveRequest)
		resale.POST("/requests/reject", handler.RejectRequest)
	}
	router.GET("/tickets/:id/resale/queue", handler.GetQueue)
	router.GET("/tickets/:id/resale/audit", handler.GetAuditLog)

	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestResaleHandler_ListForResale(t *testing.T) {
	tests := []struct {
		name           string
		request        interface{}
		mockFunc       func(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful listing",
			request: &dto.ListTicketRequest{TicketID: "ticket-1", Price: 105},
			mockFunc: func(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error) {
				return &dto.ResaleRequestResponse{
					ID:          "listing-1",
					TicketID:    req.TicketID,
					SellerID:    "seller-1",
					Price:       req.Price,
					Status:      "available",
					RequestedAt: time.Now(),
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing ticket id",
			request:        map[string]interface{}{"price": 105},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:    "price above cap",
			request: &dto.ListTicketRequest{TicketID: "ticket-1", Price: 500},
			mockFunc: func(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error) {
				return nil, &domain.PriceCapExceededError{TicketID: req.TicketID, Price: req.Price, MaxPrice: 110}
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "PRICE_CAP_EXCEEDED",
		},
		{
			name:    "used ticket",
			request: &dto.ListTicketRequest{TicketID: "ticket-1", Price: 100},
			mockFunc: func(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error) {
				return nil, &domain.IneligibleTicketError{TicketID: req.TicketID, Reason: "ticket has been used"}
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INELIGIBLE_TICKET",
		},
		{
			name:    "ticket not found",
			request: &dto.ListTicketRequest{TicketID: "missing", Price: 100},
			mockFunc: func(ctx context.Context, req *dto.ListTicketRequest) (*dto.ResaleRequestResponse, error) {
				return nil, domain.ErrTicketNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupResaleRouter(&MockResaleService{ListForResaleFunc: tt.mockFunc})

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/resale/listings", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedCode != "" {
				if resp := decodeError(t, w); resp.Code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, resp.Code)
				}
			}
		})
	}
}

func TestResaleHandler_RequestPurchase(t *testing.T) {
	tests := []struct {
		name           string
		request        interface{}
		mockFunc       func(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful request",
			request: &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"},
			mockFunc: func(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error) {
				return &dto.ResaleRequestResponse{
					ID:       "request-1",
					TicketID: req.TicketID,
					BuyerID:  req.BuyerID,
					Status:   "pending",
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:    "ticket not listed",
			request: &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"},
			mockFunc: func(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error) {
				return nil, &domain.NotAvailableError{TicketID: req.TicketID}
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "NOT_AVAILABLE",
		},
		{
			name:    "buyer already holds a ticket",
			request: &dto.RequestPurchaseRequest{TicketID: "ticket-1", BuyerID: "buyer-1"},
			mockFunc: func(ctx context.Context, req *dto.RequestPurchaseRequest) (*dto.ResaleRequestResponse, error) {
				return nil, &domain.DuplicateOwnershipError{
					BuyerID:  req.BuyerID,
					TicketID: req.TicketID,
					Reason:   "buyer already holds a ticket for this event",
				}
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_OWNERSHIP",
		},
		{
			name:           "missing buyer id",
			request:        map[string]interface{}{"ticket_id": "ticket-1"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupResaleRouter(&MockResaleService{RequestPurchaseFunc: tt.mockFunc})

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/resale/requests", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedCode != "" {
				if resp := decodeError(t, w); resp.Code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, resp.Code)
				}
			}
		})
	}
}

func TestResaleHandler_ApproveRequest(t *testing.T) {
	t.Run("approves the oldest pending request", func(t *testing.T) {
		var captured *dto.DecideRequestRequest
		router := setupResaleRouter(&MockResaleService{
			ApproveRequestFunc: func(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error) {
				captured = req
				return &dto.ResaleRequestResponse{
					ID:       "request-1",
					TicketID: req.TicketID,
					BuyerID:  "buyer-1",
					Status:   "sold",
				}, nil
			},
		})

		body, _ := json.Marshal(&dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller-1"})
		req := httptest.NewRequest(http.MethodPost, "/resale/requests/approve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if captured == nil || captured.RequestID != "" {
			t.Errorf("expected empty request id to reach the service, got %+v", captured)
		}
	})

	t.Run("no pending request", func(t *testing.T) {
		router := setupResaleRouter(&MockResaleService{
			ApproveRequestFunc: func(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error) {
				return nil, domain.ErrResaleRequestNotFound
			},
		})

		body, _ := json.Marshal(&dto.DecideRequestRequest{TicketID: "ticket-1", SellerID: "seller-1"})
		req := httptest.NewRequest(http.MethodPost, "/resale/requests/approve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

func TestResaleHandler_GetQueue(t *testing.T) {
	router := setupResaleRouter(&MockResaleService{
		GetQueueFunc: func(ctx context.Context, ticketID string) (*dto.ResaleQueueResponse, error) {
			return &dto.ResaleQueueResponse{
				TicketID: ticketID,
				Requests: []*dto.ResaleRequestResponse{
					{ID: "request-1", Status: "pending"},
					{ID: "request-2", Status: "pending"},
				},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/tickets/ticket-1/resale/queue", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp dto.ResaleQueueResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TicketID != "ticket-1" || len(resp.Requests) != 2 {
		t.Errorf("unexpected queue response: %+v", resp)
	}
}

func TestResaleHandler_GetAuditLog(t *testing.T) {
	router := setupResaleRouter(&MockResaleService{
		GetAuditLogFunc: func(ctx context.Context, ticketID string) ([]*dto.AuditEventResponse, error) {
			return []*dto.AuditEventResponse{
				{ID: "audit-1", Action: "TICKET_LISTED", TicketID: ticketID},
				{ID: "audit-2", Action: "PURCHASE_REQUESTED", TicketID: ticketID},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/tickets/ticket-1/resale/audit", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp []*dto.AuditEventResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("expected 2 audit entries, got %d", len(resp))
	}
}
