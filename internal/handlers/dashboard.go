package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vigil-dev/vigil/internal/utils"
)

func (h *Handler) GetDashboard(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	dashboard, err := h.service.GetDashboard(ctx.Request.Context(), user.TenantID)
	if err != nil {
		h.writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}
