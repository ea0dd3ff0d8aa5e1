package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vigil-dev/vigil/internal/monitoring"
	"github.com/vigil-dev/vigil/internal/store"
	"github.com/vigil-dev/vigil/internal/utils"
)

// writeServiceError maps service-layer errors onto HTTP responses so every
// handler reports the same status for the same failure.
func (h *Handler) writeServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, monitoring.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConfigNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Monitoring config not found"})
	case errors.Is(err, store.ErrAlertNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
	case errors.Is(err, monitoring.ErrConfigInactive):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Monitoring config is inactive"})
	case errors.Is(err, monitoring.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *Handler) CreateMonitoringConfig(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req monitoring.ConfigInput
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	config, err := h.service.CreateConfig(ctx.Request.Context(), user.TenantID, req, user.ID)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	if h.scheduler != nil && config.IsActive {
		h.scheduler.AddConfig(*config)
	}

	ctx.JSON(http.StatusCreated, gin.H{"config": config})
}

func (h *Handler) ListMonitoringConfigs(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	includeInactive := ctx.Query("include_inactive") == "true"

	configs, err := h.service.ListConfigs(ctx.Request.Context(), user.TenantID, includeInactive)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"configs": configs})
}

func (h *Handler) GetMonitoringConfig(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config ID"})
		return
	}

	config, err := h.service.GetConfig(ctx.Request.Context(), user.TenantID, id)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"config": config})
}

func (h *Handler) UpdateMonitoringConfig(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config ID"})
		return
	}

	var req monitoring.ConfigInput
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	config, err := h.service.UpdateConfig(ctx.Request.Context(), user.TenantID, id, req, user.ID)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	if h.scheduler != nil {
		h.scheduler.UpdateConfig(*config)
	}

	ctx.JSON(http.StatusOK, gin.H{"config": config})
}

func (h *Handler) DeleteMonitoringConfig(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config ID"})
		return
	}

	if err := h.service.DeleteConfig(ctx.Request.Context(), user.TenantID, id, user.ID); err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	if h.scheduler != nil {
		h.scheduler.RemoveConfig(id)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Monitoring config deleted"})
}

func (h *Handler) ExecuteCheck(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config ID"})
		return
	}

	result, err := h.service.ExecuteCheck(ctx.Request.Context(), user.TenantID, id)
	if err != nil && result == nil {
		h.writeServiceError(ctx, err)
		return
	}

	// A probe failure still produces a recorded result; surface both.
	response := gin.H{"result": result}
	if err != nil {
		response["error"] = err.Error()
	}
	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) ExecuteAllChecks(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	outcomes, err := h.service.ExecuteAllChecks(ctx.Request.Context(), user.TenantID)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Error != "" {
			failed++
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"outcomes": outcomes,
		"total":    len(outcomes),
		"failed":   failed,
	})
}

func (h *Handler) GetMonitoringResults(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config ID"})
		return
	}

	limit := utils.GetIntQuery(ctx, "limit", 100)
	offset := utils.GetIntQuery(ctx, "offset", 0)

	results, err := h.service.GetMonitoringResults(ctx.Request.Context(), user.TenantID, id, limit, offset)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) GetMonitoringStats(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config ID"})
		return
	}

	days := utils.GetIntQuery(ctx, "days", 7)

	stats, err := h.service.GetMonitoringStats(ctx.Request.Context(), user.TenantID, id, days)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"stats": stats})
}
