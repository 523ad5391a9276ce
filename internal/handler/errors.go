package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stylianoueleni/festival-engine/internal/domain"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/metrics"
)

// handleError maps domain errors to HTTP responses. Invariant rejections
// are conflicts: the request was well-formed but the write would break a
// domain rule.
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, domain.ErrPriceCapExceeded):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "PRICE_CAP_EXCEEDED",
		})
	case errors.Is(err, domain.ErrNotAvailable):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_AVAILABLE",
		})
	case errors.Is(err, domain.ErrDuplicateOwnership):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "DUPLICATE_OWNERSHIP",
		})
	case errors.Is(err, domain.ErrIneligibleTicket):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INELIGIBLE_TICKET",
		})
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	case domain.IsInvariantViolation(err):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVARIANT_VIOLATION",
		})
	default:
		metrics.RecordError(c.Request.Context(), "handler", "internal")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "invalid request",
		Code:    "INVALID_REQUEST",
		Message: err.Error(),
	})
}
