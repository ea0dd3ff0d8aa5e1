package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vigil-dev/vigil/internal/auth"
	"github.com/vigil-dev/vigil/internal/handlers"
	"github.com/vigil-dev/vigil/internal/middleware"
	"github.com/vigil-dev/vigil/internal/types"
)

func New(h *handlers.Handler, tokens *auth.Manager, database *gorm.DB, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authenticated := middleware.Auth(tokens, database)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws", authenticated, h.WebSocket)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.CreateUser)
			authRoutes.POST("/login", h.LoginUser)
			authRoutes.GET("/me", authenticated, h.Me)
		}

		configs := api.Group("/monitoring/configs", authenticated)
		{
			configs.POST("", h.CreateMonitoringConfig)
			configs.GET("", h.ListMonitoringConfigs)
			configs.GET("/:id", h.GetMonitoringConfig)
			configs.PUT("/:id", h.UpdateMonitoringConfig)
			configs.DELETE("/:id", h.DeleteMonitoringConfig)

			configs.POST("/:id/check", h.ExecuteCheck)
			configs.GET("/:id/results", h.GetMonitoringResults)
			configs.GET("/:id/stats", h.GetMonitoringStats)
		}

		api.POST("/monitoring/check-all", authenticated, h.ExecuteAllChecks)
		api.GET("/monitoring/dashboard", authenticated, h.GetDashboard)

		alerts := api.Group("/alerts", authenticated)
		{
			alerts.GET("", h.ListActiveAlerts)
			alerts.POST("/:id/acknowledge", h.AcknowledgeAlert)
			alerts.POST("/:id/resolve", h.ResolveAlert)
			alerts.GET("/:id/notifications", h.ListNotificationLogs)
		}

		recipients := api.Group("/recipients", authenticated)
		{
			recipients.POST("", h.CreateRecipient)
			recipients.GET("", h.ListRecipients)
			recipients.DELETE("/:id", h.DeleteRecipient)
		}
	}

	return r
}
