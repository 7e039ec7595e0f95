package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout bounds the dependency checks of the readiness probe
const readyTimeout = 2 * time.Second

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	name      string
	version   string
	store     Pinger
	logger    *zap.Logger
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. store is the session store
// every request depends on.
func NewHealthHandler(name, version string, store Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		name:      name,
		version:   version,
		store:     store,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of both probes
type HealthResponse struct {
	Status    string            `json:"status"`
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Live reports that the process is serving
// GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	h.Success(c, h.response("healthy", nil))
}

// Ready reports whether the session store is reachable
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	checks := map[string]string{"store": "ok"}
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("check", "store"), zap.Error(err))
			checks["store"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, dto.Response{
				Success: false,
				Data:    h.response("unavailable", checks),
			})
			return
		}
	}
	h.Success(c, h.response("ready", checks))
}

func (h *HealthHandler) response(status string, checks map[string]string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}
}
