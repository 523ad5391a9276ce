package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stylianoueleni/festival-engine/internal/dto"
	"github.com/stylianoueleni/festival-engine/internal/service"
	"github.com/stylianoueleni/festival-engine/internal/worker"
)

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	resaleService service.ResaleService
	expiryWorker  *worker.ResaleExpiryWorker
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(resaleService service.ResaleService, expiryWorker *worker.ResaleExpiryWorker) *AdminHandler {
	return &AdminHandler{
		resaleService: resaleService,
		expiryWorker:  expiryWorker,
	}
}

// SweepResponse represents the response for a manual expiry sweep
type SweepResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Expired int    `json:"expired"`
}

// TriggerExpirySweep handles POST /admin/resale/sweep
// Runs one expiry sweep immediately instead of waiting for the worker tick.
func (h *AdminHandler) TriggerExpirySweep(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "limit must be a positive integer",
				Code:  "INVALID_REQUEST",
			})
			return
		}
		limit = parsed
	}

	expired, err := h.resaleService.ExpireRequests(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "failed to run expiry sweep",
			Code:    "SWEEP_FAILED",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SweepResponse{
		Success: true,
		Message: fmt.Sprintf("Expired %d stale purchase requests", expired),
		Expired: expired,
	})
}

// GetExpiryWorkerStats handles GET /admin/resale/worker
func (h *AdminHandler) GetExpiryWorkerStats(c *gin.Context) {
	if h.expiryWorker == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "expiry worker is not running in this process",
			Code:  "NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, h.expiryWorker.GetStats())
}
