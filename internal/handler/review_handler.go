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

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// SubmitReview handles POST /reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.review.submit")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		badRequest(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("visitor_id", req.VisitorID),
		attribute.String("performance_id", req.PerformanceID),
	)

	result, err := h.reviewService.SubmitReview(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("review_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// ListReviews handles GET /performances/:id/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.review.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	performanceID := c.Param("id")
	span.SetAttributes(attribute.String("performance_id", performanceID))

	result, err := h.reviewService.ListReviews(ctx, performanceID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("review_count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}
