package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
	"github.com/vigil-dev/vigil/internal/utils"
)

func (h *Handler) ListActiveAlerts(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	includeAcknowledged := ctx.Query("include_acknowledged") == "true"

	alerts, err := h.service.GetActiveAlerts(ctx.Request.Context(), user.TenantID, includeAcknowledged)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) AcknowledgeAlert(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	alert, err := h.service.AcknowledgeAlert(ctx.Request.Context(), user.TenantID, id, user.ID)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"alert": alert})
}

func (h *Handler) ResolveAlert(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	alert, err := h.service.ResolveAlert(ctx.Request.Context(), user.TenantID, id, user.ID)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"alert": alert})
}

func (h *Handler) ListNotificationLogs(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	// Ownership check before reading the logs.
	if _, err := h.store.GetAlert(ctx.Request.Context(), user.TenantID, id); err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	logs, err := h.store.ListNotificationLogs(ctx.Request.Context(), id)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"logs": logs})
}

type CreateRecipientRequest struct {
	Channel types.NotificationChannel `json:"channel" binding:"required"`
	Address string                    `json:"address" binding:"required"`
}

func (h *Handler) CreateRecipient(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateRecipientRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !req.Channel.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported notification channel"})
		return
	}

	recipient := models.AlertRecipient{
		TenantID: user.TenantID,
		Channel:  req.Channel,
		Address:  req.Address,
		IsActive: true,
	}

	if err := h.store.CreateRecipient(ctx.Request.Context(), &recipient); err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"recipient": recipient})
}

func (h *Handler) ListRecipients(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	recipients, err := h.store.ListRecipients(ctx.Request.Context(), user.TenantID)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"recipients": recipients})
}

func (h *Handler) DeleteRecipient(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetUintParam(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipient ID"})
		return
	}

	if err := h.store.DeleteRecipient(ctx.Request.Context(), user.TenantID, id); err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Recipient deleted"})
}
