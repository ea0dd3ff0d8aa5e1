package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/db"
	"github.com/vigil-dev/vigil/internal/auth"
	"github.com/vigil-dev/vigil/internal/config"
	"github.com/vigil-dev/vigil/internal/handlers"
	"github.com/vigil-dev/vigil/internal/logging"
	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/monitoring"
	"github.com/vigil-dev/vigil/internal/notifications"
	"github.com/vigil-dev/vigil/internal/probes"
	"github.com/vigil-dev/vigil/internal/router"
	"github.com/vigil-dev/vigil/internal/scheduler"
	"github.com/vigil-dev/vigil/internal/store"
)

func main() {
	// Optional in production, where configuration comes from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.Migrate(database); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	st := store.New(database)

	tokens, err := auth.NewManager(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("failed to initialize token manager", zap.Error(err))
	}

	registry := probes.NewHealthRegistry()
	registry.Register("database", func(ctx context.Context) error {
		sqlDB, err := database.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	probeSet := &probes.Set{
		Infrastructure: probes.NewInfrastructureProbe(probes.SystemMetrics{}, logger),
		Application:    probes.NewApplicationProbe(registry, logger),
		UserExperience: probes.NewUserExperienceProbe(probes.SimulatedTelemetry{}, logger),
	}

	dispatcher := notifications.NewDispatcher(
		notifications.NewSMTPSender(cfg.SMTP),
		notifications.NewTwilioSender(cfg.Twilio),
		notifications.NewHTTPWebhookSender(time.Duration(cfg.WebhookTimeoutSeconds)*time.Second),
		st,
		st,
		cfg.DefaultRecipients,
		logger,
	)

	service := monitoring.NewService(st, probeSet, dispatcher, logger)
	service.SetAlertHook(func(_ *models.Alert, config *models.MonitoringConfig) {
		handlers.BroadcastRefresh(config.TenantID)
	})

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.New(service, st, logger)
		if err := sched.Start(); err != nil {
			logger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	h := handlers.New(service, st, sched, tokens, logger)
	engine := router.New(h, tokens, database, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
