package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stylianoueleni/festival-engine/pkg/database"
	"github.com/stylianoueleni/festival-engine/pkg/redis"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db    *database.PostgresDB
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
	}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadyResponse reports per-dependency health alongside the overall verdict.
type ReadyResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// Health is the liveness probe: the process is up, nothing more.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func checkComponent(ctx context.Context, components map[string]string, name string, dep healthChecker) bool {
	if err := dep.HealthCheck(ctx); err != nil {
		components[name] = "unhealthy: " + err.Error()
		return false
	}
	components[name] = "healthy"
	return true
}

// Ready is the readiness probe. Postgres must answer before the service
// accepts traffic; Redis only degrades idempotency, but is reported the
// same way.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string)
	allHealthy := true

	if h.db != nil {
		allHealthy = checkComponent(ctx, components, "database", h.db) && allHealthy
	} else {
		components["database"] = "not configured"
	}

	if h.redis != nil {
		allHealthy = checkComponent(ctx, components, "redis", h.redis) && allHealthy
	} else {
		components["redis"] = "not configured"
	}

	response := ReadyResponse{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	if allHealthy {
		response.Status = "ready"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "not ready"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}
