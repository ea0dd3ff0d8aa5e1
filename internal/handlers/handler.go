package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/auth"
	"github.com/vigil-dev/vigil/internal/monitoring"
	"github.com/vigil-dev/vigil/internal/scheduler"
	"github.com/vigil-dev/vigil/internal/store"
)

// Handler bundles the dependencies the HTTP layer needs.
type Handler struct {
	service   *monitoring.Service
	store     *store.Store
	scheduler *scheduler.Scheduler
	tokens    *auth.Manager
	logger    *zap.Logger
}

func New(service *monitoring.Service, st *store.Store, sched *scheduler.Scheduler, tokens *auth.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		service:   service,
		store:     st,
		scheduler: sched,
		tokens:    tokens,
		logger:    logger.Named("http"),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	response := gin.H{
		"status":    "ok",
		"message":   "Vigil is running",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if h.scheduler != nil {
		response["scheduler"] = h.scheduler.Status()
	}
	c.JSON(200, response)
}
