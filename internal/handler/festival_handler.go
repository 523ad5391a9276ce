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

// FestivalHandler handles festival, day and stage HTTP requests
type FestivalHandler struct {
	festivalService service.FestivalService
}

// NewFestivalHandler creates a new festival handler
func NewFestivalHandler(festivalService service.FestivalService) *FestivalHandler {
	return &FestivalHandler{festivalService: festivalService}
}

// CreateFestival handles POST /festivals
func (h *FestivalHandler) CreateFestival(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.festival.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateFestivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("festival_name", req.Name),
		attribute.Int("festival_year", req.Year),
	)

	result, err := h.festivalService.CreateFestival(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("festival_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// GetFestival handles GET /festivals/:id
func (h *FestivalHandler) GetFestival(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.festival.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("festival_id", id))

	result, err := h.festivalService.GetFestival(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// AddFestivalDay handles POST /festivals/:id/days
func (h *FestivalHandler) AddFestivalDay(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.festival.add_day")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateFestivalDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}
	// The path owns the festival id.
	req.FestivalID = c.Param("id")

	span.SetAttributes(attribute.String("festival_id", req.FestivalID))

	result, err := h.festivalService.AddFestivalDay(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("day_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// ListFestivalDays handles GET /festivals/:id/days
func (h *FestivalHandler) ListFestivalDays(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.festival.list_days")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("festival_id", id))

	result, err := h.festivalService.ListFestivalDays(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("day_count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// CreateStage handles POST /stages
func (h *FestivalHandler) CreateStage(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.stage.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("stage_name", req.Name),
		attribute.Int("capacity", req.Capacity),
	)

	result, err := h.festivalService.CreateStage(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("stage_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// GetStage handles GET /stages/:id
func (h *FestivalHandler) GetStage(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.stage.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("stage_id", id))

	result, err := h.festivalService.GetStage(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// ListStages handles GET /stages
func (h *FestivalHandler) ListStages(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.stage.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.festivalService.ListStages(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("stage_count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}
