package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether the store answers.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping Pinger
}

func NewHealthHandler(ping Pinger) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Health checks the database: 200 {"status":"ok"} or 500 {"status":"error"}.
func (h *HealthHandler) Health(ctx *gin.Context) {
	if h.ping != nil {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), pingTimeout)
		defer cancel()

		if err := h.ping(cctx); err != nil {
			slog.Default().WarnContext(ctx.Request.Context(), "health_check_failed", "err", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Healthz is process liveness only.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
