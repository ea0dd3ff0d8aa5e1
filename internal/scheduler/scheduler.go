// Package scheduler drives periodic check execution. The engine itself is
// trigger-driven; the scheduler is just one caller, ticking each active
// config at its configured interval.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/monitoring"
)

// ConfigLister loads the configs to schedule.
type ConfigLister interface {
	ListAllActiveConfigs(ctx context.Context) ([]models.MonitoringConfig, error)
}

type Scheduler struct {
	service *monitoring.Service
	configs ConfigLister
	logger  *zap.Logger

	jobs   map[uint]*checkJob
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

type checkJob struct {
	config models.MonitoringConfig
	ticker *time.Ticker
	cancel context.CancelFunc
}

func New(service *monitoring.Service, configs ConfigLister, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		service: service,
		configs: configs,
		logger:  logger.Named("scheduler"),
		jobs:    make(map[uint]*checkJob),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start loads all active configs and begins scheduling them.
func (s *Scheduler) Start() error {
	configs, err := s.configs.ListAllActiveConfigs(s.ctx)
	if err != nil {
		return err
	}

	for _, config := range configs {
		s.AddConfig(config)
	}

	s.logger.Info("scheduler started", zap.Int("configs", len(configs)))
	return nil
}

// Stop shuts down all check jobs.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		job.ticker.Stop()
		job.cancel()
	}

	s.jobs = make(map[uint]*checkJob)
	s.logger.Info("scheduler stopped")
}

// AddConfig starts ticking a config, replacing any existing job for it.
// The first check runs immediately.
func (s *Scheduler) AddConfig(config models.MonitoringConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[config.ID]; ok {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)
	ticker := time.NewTicker(time.Duration(config.CheckInterval) * time.Second)

	job := &checkJob{
		config: config,
		ticker: ticker,
		cancel: jobCancel,
	}
	s.jobs[config.ID] = job

	go func() {
		s.executeCheck(jobCtx, config)
		s.run(jobCtx, job)
	}()

	s.logger.Info("config scheduled",
		zap.Uint("config_id", config.ID),
		zap.String("name", config.Name),
		zap.Int("interval_seconds", config.CheckInterval))
}

// RemoveConfig stops ticking a config.
func (s *Scheduler) RemoveConfig(configID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[configID]; ok {
		job.ticker.Stop()
		job.cancel()
		delete(s.jobs, configID)
		s.logger.Info("config unscheduled", zap.Uint("config_id", configID))
	}
}

// UpdateConfig reschedules a config: inactive configs are removed, active
// ones restarted with their current interval.
func (s *Scheduler) UpdateConfig(config models.MonitoringConfig) {
	if !config.IsActive {
		s.RemoveConfig(config.ID)
		return
	}
	s.AddConfig(config)
}

func (s *Scheduler) run(ctx context.Context, job *checkJob) {
	defer job.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-job.ticker.C:
			s.mu.RLock()
			config := job.config
			s.mu.RUnlock()

			s.executeCheck(ctx, config)
		}
	}
}

func (s *Scheduler) executeCheck(ctx context.Context, config models.MonitoringConfig) {
	_, err := s.service.ExecuteCheck(ctx, config.TenantID, config.ID)
	if err != nil {
		if errors.Is(err, monitoring.ErrConfigInactive) {
			s.RemoveConfig(config.ID)
			return
		}
		// The engine already recorded the failure as an ERROR result.
		s.logger.Warn("scheduled check failed",
			zap.Uint("config_id", config.ID),
			zap.Error(err))
	}
}

// Status reports the scheduler's current shape.
func (s *Scheduler) Status() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"scheduled_configs": len(s.jobs),
		"running":           s.ctx.Err() == nil,
	}
}
