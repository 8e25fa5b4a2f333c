package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/staffhub/internal/config"
	"github.com/gin-gonic/gin"
)

// Pinger is anything readiness depends on (postgres pool, redis client).
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps map[string]Pinger
	log  *slog.Logger
}

// create a new instance of the health handler
func NewHealthHandler(deps map[string]Pinger, log *slog.Logger) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HealthHandler{deps: deps, log: log}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	checks := make(gin.H, len(h.deps))
	ready := true

	for name, dep := range h.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(cctx); err != nil {
			h.log.WarnContext(ctx.Request.Context(), "readyz.dependency_down", "dependency", name, "err", err)
			checks[name] = "down"
			ready = false
			continue
		}
		checks[name] = "up"
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
