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

// StaffingHandler handles staff and assignment HTTP requests
type StaffingHandler struct {
	staffingService service.StaffingService
}

// NewStaffingHandler creates a new staffing handler
func NewStaffingHandler(staffingService service.StaffingService) *StaffingHandler {
	return &StaffingHandler{staffingService: staffingService}
}

// CreateStaff handles POST /staff
func (h *StaffingHandler) CreateStaff(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.staff.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(attribute.String("staff_role", req.Role))

	result, err := h.staffingService.CreateStaff(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("staff_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// GetStaff handles GET /staff/:id
func (h *StaffingHandler) GetStaff(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.staff.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("staff_id", id))

	result, err := h.staffingService.GetStaff(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// AssignStaff handles POST /assignments
func (h *StaffingHandler) AssignStaff(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.staff.assign")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("staff_id", req.StaffID),
		attribute.String("event_id", req.EventID),
		attribute.String("staff_role", req.Role),
	)

	result, err := h.staffingService.AssignStaff(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("assignment_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// ListAssignments handles GET /events/:id/assignments
func (h *StaffingHandler) ListAssignments(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.staff.list_assignments")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.staffingService.ListAssignments(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("assignment_count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}
