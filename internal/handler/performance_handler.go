package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/service"
	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PerformanceHandler handles performance scheduling HTTP requests
type PerformanceHandler struct {
	performanceService service.PerformanceService
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(performanceService service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performanceService: performanceService}
}

// SchedulePerformance handles POST /performances
func (h *PerformanceHandler) SchedulePerformance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.performance.schedule")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.SchedulePerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("event_id", req.EventID),
		attribute.String("performance_type", req.Type),
		attribute.Int("duration_min", req.DurationMin),
	)
	if req.ArtistID != "" {
		span.SetAttributes(attribute.String("artist_id", req.ArtistID))
	}
	if req.BandID != "" {
		span.SetAttributes(attribute.String("band_id", req.BandID))
	}

	result, err := h.performanceService.SchedulePerformance(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("performance_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// CancelPerformance handles DELETE /performances/:id
func (h *PerformanceHandler) CancelPerformance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.performance.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("performance_id", id))

	if err := h.performanceService.CancelPerformance(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "performance cancelled",
	})
}

// GetPerformance handles GET /performances/:id
func (h *PerformanceHandler) GetPerformance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.performance.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("performance_id", id))

	result, err := h.performanceService.GetPerformance(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// ListPerformancesByEvent handles GET /events/:id/performances
func (h *PerformanceHandler) ListPerformancesByEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.performance.list_by_event")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.performanceService.ListPerformancesByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("performance_count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// CreateArtist handles POST /artists
func (h *PerformanceHandler) CreateArtist(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.artist.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateArtistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(attribute.String("artist_name", req.Name))

	artist, err := h.performanceService.CreateArtist(ctx, &domain.Artist{
		Name:      req.Name,
		Pseudonym: req.Pseudonym,
		Genre:     req.Genre,
		Subgenre:  req.Subgenre,
		Birthdate: req.Birthdate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("artist_id", artist.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, artist)
}

// CreateBand handles POST /bands
func (h *PerformanceHandler) CreateBand(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.band.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateBandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(attribute.String("band_name", req.Name))

	band, err := h.performanceService.CreateBand(ctx, &domain.Band{
		Name:          req.Name,
		Genre:         req.Genre,
		Subgenre:      req.Subgenre,
		FormationDate: req.FormationDate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("band_id", band.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, band)
}
