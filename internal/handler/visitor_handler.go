package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/service"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// VisitorHandler handles visitor HTTP requests
type VisitorHandler struct {
	visitorService service.VisitorService
}

// NewVisitorHandler creates a new visitor handler
func NewVisitorHandler(visitorService service.VisitorService) *VisitorHandler {
	return &VisitorHandler{visitorService: visitorService}
}

// RegisterVisitor handles POST /visitors
func (h *VisitorHandler) RegisterVisitor(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.visitor.register")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.RegisterVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	result, err := h.visitorService.RegisterVisitor(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("visitor_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// GetVisitor handles GET /visitors/:id
func (h *VisitorHandler) GetVisitor(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.visitor.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("visitor_id", id))

	result, err := h.visitorService.GetVisitor(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// UpdateVisitor handles PUT /visitors/:id
func (h *VisitorHandler) UpdateVisitor(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.visitor.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("visitor_id", id))

	var req dto.UpdateVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	result, err := h.visitorService.UpdateVisitor(ctx, id, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}
