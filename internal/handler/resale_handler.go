package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/metrics"
	"github.com/stylianoueleni/festival-engine/internal/service"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ResaleHandler handles resale marketplace HTTP requests
type ResaleHandler struct {
	resaleService service.ResaleService
}

// NewResaleHandler creates a new resale handler
func NewResaleHandler(resaleService service.ResaleService) *ResaleHandler {
	return &ResaleHandler{resaleService: resaleService}
}

// ListForResale handles POST /resale/listings
func (h *ResaleHandler) ListForResale(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.resale.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)
	start := time.Now()

	var req dto.ListTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("ticket_id", req.TicketID),
		attribute.Float64("price", req.Price),
	)

	result, err := h.resaleService.ListForResale(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	metrics.RecordRequestDuration(ctx, "resale.list", time.Since(start).Seconds())
	span.SetAttributes(attribute.String("request_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// RequestPurchase handles POST /resale/requests
func (h *ResaleHandler) RequestPurchase(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.resale.request_purchase")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)
	start := time.Now()

	var req dto.RequestPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("ticket_id", req.TicketID),
		attribute.String("buyer_id", req.BuyerID),
	)

	result, err := h.resaleService.RequestPurchase(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	metrics.RecordRequestDuration(ctx, "resale.request_purchase", time.Since(start).Seconds())
	span.SetAttributes(attribute.String("request_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// ApproveRequest handles POST /resale/requests/approve
func (h *ResaleHandler) ApproveRequest(c *gin.Context) {
	h.decide(c, "handler.resale.approve", h.resaleService.ApproveRequest)
}

// RejectRequest handles POST /resale/requests/reject
func (h *ResaleHandler) RejectRequest(c *gin.Context) {
	h.decide(c, "handler.resale.reject", h.resaleService.RejectRequest)
}

func (h *ResaleHandler) decide(
	c *gin.Context,
	spanName string,
	fn func(ctx context.Context, req *dto.DecideRequestRequest) (*dto.ResaleRequestResponse, error),
) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.DecideRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("ticket_id", req.TicketID),
		attribute.String("seller_id", req.SellerID),
	)
	if req.RequestID != "" {
		span.SetAttributes(attribute.String("request_id", req.RequestID))
	}

	result, err := fn(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("request_id", result.ID),
		attribute.String("status", result.Status),
	)
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetQueue handles GET /tickets/:id/resale/queue
func (h *ResaleHandler) GetQueue(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.resale.get_queue")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	ticketID := c.Param("id")
	span.SetAttributes(attribute.String("ticket_id", ticketID))

	result, err := h.resaleService.GetQueue(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("queue_length", len(result.Requests)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetAuditLog handles GET /tickets/:id/resale/audit
func (h *ResaleHandler) GetAuditLog(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.resale.get_audit_log")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	ticketID := c.Param("id")
	span.SetAttributes(attribute.String("ticket_id", ticketID))

	result, err := h.resaleService.GetAuditLog(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("entry_count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}
