// Package monitoring is the check execution and alerting engine. A Service
// is handed its persistence, probes, notifier and logger at construction;
// it keeps no ambient state, so one can be built per test with fakes.
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/probes"
	"github.com/vigil-dev/vigil/internal/types"
)

const minCheckInterval = 30 // seconds

// Store is the persistence surface the engine depends on. The gorm-backed
// implementation lives in internal/store.
type Store interface {
	CreateConfig(ctx context.Context, config *models.MonitoringConfig) error
	UpdateConfig(ctx context.Context, config *models.MonitoringConfig) error
	GetConfig(ctx context.Context, tenantID string, id uint) (*models.MonitoringConfig, error)
	ListConfigs(ctx context.Context, tenantID string, includeInactive bool) ([]models.MonitoringConfig, error)
	DeleteConfig(ctx context.Context, tenantID string, id uint) error

	CreateResult(ctx context.Context, result *models.MonitoringResult) error
	ListResults(ctx context.Context, configID uint, limit, offset int) ([]models.MonitoringResult, error)
	ListResultsSince(ctx context.Context, configID uint, since time.Time) ([]models.MonitoringResult, error)

	CreateAlert(ctx context.Context, alert *models.Alert) error
	FindActiveAlert(ctx context.Context, configID uint) (*models.Alert, error)
	GetAlert(ctx context.Context, tenantID string, alertID uint) (*models.Alert, error)
	UpdateAlert(ctx context.Context, alert *models.Alert) error
	ListAlerts(ctx context.Context, tenantID string, statuses []types.AlertStatus) ([]models.Alert, error)
}

// Runner executes one probe for one config.
type Runner interface {
	Run(ctx context.Context, config *models.MonitoringConfig) (probes.ResultData, error)
}

// Notifier fans a freshly opened alert out to its recipients. Delivery is
// best effort; implementations must not fail the caller.
type Notifier interface {
	Dispatch(ctx context.Context, alert *models.Alert, config *models.MonitoringConfig)
}

type Service struct {
	store     Store
	probes    Runner
	notifier  Notifier
	logger    *zap.Logger
	alertHook func(alert *models.Alert, config *models.MonitoringConfig)
}

func NewService(store Store, runner Runner, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		probes:   runner,
		notifier: notifier,
		logger:   logger.Named("monitoring"),
	}
}

// SetAlertHook registers a callback invoked after a new alert is issued.
// The router uses it to push a websocket refresh.
func (s *Service) SetAlertHook(hook func(alert *models.Alert, config *models.MonitoringConfig)) {
	s.alertHook = hook
}

// ConfigInput carries the admin-submitted fields of a monitoring config.
type ConfigInput struct {
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	MonitoringType  types.MonitoringType  `json:"monitoring_type"`
	CheckInterval   int                   `json:"check_interval"`
	TargetResource  string                `json:"target_resource"`
	Parameters      types.CheckParameters `json:"parameters"`
	AlertThresholds types.Thresholds      `json:"alert_thresholds"`
	IsActive        *bool                 `json:"is_active"`
}

func (in ConfigInput) validate() (types.Target, error) {
	if in.Name == "" {
		return types.Target{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !in.MonitoringType.Valid() {
		return types.Target{}, fmt.Errorf("%w: %v", ErrValidation, types.ErrUnsupportedMonitoringType)
	}
	if in.CheckInterval < minCheckInterval {
		return types.Target{}, fmt.Errorf("%w: check interval must be at least %d seconds", ErrValidation, minCheckInterval)
	}

	target, err := types.ParseTarget(in.MonitoringType, in.TargetResource)
	if err != nil {
		return types.Target{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := in.Parameters.Validate(target); err != nil {
		return types.Target{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return target, nil
}

func (in ConfigInput) apply(config *models.MonitoringConfig, target types.Target) error {
	params, err := json.Marshal(in.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	thresholds, err := json.Marshal(in.AlertThresholds)
	if err != nil {
		return fmt.Errorf("marshal thresholds: %w", err)
	}

	config.Name = in.Name
	config.Description = in.Description
	config.MonitoringType = in.MonitoringType
	config.CheckInterval = in.CheckInterval
	config.TargetResource = in.TargetResource
	config.TargetFamily = target.Family
	config.TargetIdentifier = target.Identifier
	config.Parameters = params
	config.AlertThresholds = thresholds
	if in.IsActive != nil {
		config.IsActive = *in.IsActive
	}
	return nil
}

// CreateConfig validates and persists a new monitoring config. Targets are
// parsed here so malformed ones never reach check time.
func (s *Service) CreateConfig(ctx context.Context, tenantID string, in ConfigInput, userID uint) (*models.MonitoringConfig, error) {
	target, err := in.validate()
	if err != nil {
		return nil, err
	}

	config := models.MonitoringConfig{TenantID: tenantID, IsActive: true}
	if err := in.apply(&config, target); err != nil {
		return nil, err
	}

	if err := s.store.CreateConfig(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to create monitoring config: %w", err)
	}

	s.logger.Info("monitoring config created",
		zap.Uint("config_id", config.ID),
		zap.String("tenant_id", tenantID),
		zap.Uint("user_id", userID))

	return &config, nil
}

func (s *Service) UpdateConfig(ctx context.Context, tenantID string, id uint, in ConfigInput, userID uint) (*models.MonitoringConfig, error) {
	target, err := in.validate()
	if err != nil {
		return nil, err
	}

	config, err := s.store.GetConfig(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := in.apply(config, target); err != nil {
		return nil, err
	}

	if err := s.store.UpdateConfig(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to update monitoring config: %w", err)
	}

	s.logger.Info("monitoring config updated",
		zap.Uint("config_id", id),
		zap.String("tenant_id", tenantID),
		zap.Uint("user_id", userID))

	return config, nil
}

func (s *Service) DeleteConfig(ctx context.Context, tenantID string, id uint, userID uint) error {
	if err := s.store.DeleteConfig(ctx, tenantID, id); err != nil {
		return err
	}

	s.logger.Info("monitoring config deleted",
		zap.Uint("config_id", id),
		zap.String("tenant_id", tenantID),
		zap.Uint("user_id", userID))

	return nil
}

func (s *Service) GetConfig(ctx context.Context, tenantID string, id uint) (*models.MonitoringConfig, error) {
	return s.store.GetConfig(ctx, tenantID, id)
}

func (s *Service) ListConfigs(ctx context.Context, tenantID string, includeInactive bool) ([]models.MonitoringConfig, error) {
	return s.store.ListConfigs(ctx, tenantID, includeInactive)
}

// ExecuteCheck runs one check for one config: probe, classify, record,
// evaluate alerting. Every attempted check leaves exactly one result row;
// a probe dispatch failure is recorded as ERROR and then re-raised so the
// caller still sees the failure.
func (s *Service) ExecuteCheck(ctx context.Context, tenantID string, configID uint) (*models.MonitoringResult, error) {
	config, err := s.store.GetConfig(ctx, tenantID, configID)
	if err != nil {
		return nil, err
	}

	if !config.IsActive {
		return nil, ErrConfigInactive
	}

	data, probeErr := s.probes.Run(ctx, config)
	if probeErr != nil {
		data = probes.ResultData{
			Status:       types.StatusError,
			ErrorMessage: probeErr.Error(),
		}
	}

	if probeErr == nil {
		thresholds, err := config.Thresholds()
		if err != nil {
			s.logger.Warn("invalid thresholds, skipping classification",
				zap.Uint("config_id", config.ID), zap.Error(err))
		} else {
			// Threshold classification can only escalate, never downgrade,
			// a status already assigned by the probe.
			data.Status = data.Status.Max(Classify(data.Value, thresholds))
		}
	}

	result, err := s.recordResult(ctx, config, data)
	if err != nil {
		// A failed save would corrupt availability statistics; surface it.
		return nil, fmt.Errorf("failed to record check result: %w", err)
	}

	if probeErr != nil {
		s.logger.Error("check execution failed",
			zap.Uint("config_id", config.ID),
			zap.String("tenant_id", tenantID),
			zap.Error(probeErr))
		return result, probeErr
	}

	if _, err := s.evaluateAlert(ctx, config, data); err != nil {
		return result, err
	}

	return result, nil
}

// CheckOutcome is one entry of an ExecuteAllChecks batch.
type CheckOutcome struct {
	ConfigID uint                     `json:"config_id"`
	Result   *models.MonitoringResult `json:"result,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// ExecuteAllChecks runs every active config for a tenant, isolating
// per-config failures into the outcome list instead of aborting the batch.
func (s *Service) ExecuteAllChecks(ctx context.Context, tenantID string) ([]CheckOutcome, error) {
	configs, err := s.store.ListConfigs(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}

	outcomes := make([]CheckOutcome, 0, len(configs))
	for _, config := range configs {
		outcome := CheckOutcome{ConfigID: config.ID}

		result, err := s.ExecuteCheck(ctx, tenantID, config.ID)
		if err != nil {
			outcome.Error = err.Error()
		}
		outcome.Result = result

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (s *Service) recordResult(ctx context.Context, config *models.MonitoringConfig, data probes.ResultData) (*models.MonitoringResult, error) {
	details := []byte(`{}`)
	if data.Details != nil {
		if raw, err := json.Marshal(data.Details); err == nil {
			details = raw
		}
	}

	result := models.MonitoringResult{
		ConfigID:     config.ID,
		Status:       data.Status,
		ResponseTime: data.ResponseTime,
		Value:        data.Value,
		Details:      details,
		ErrorMessage: data.ErrorMessage,
		Timestamp:    time.Now(),
	}

	if err := s.store.CreateResult(ctx, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetMonitoringResults pages through a config's recorded history, newest
// first.
func (s *Service) GetMonitoringResults(ctx context.Context, tenantID string, configID uint, limit, offset int) ([]models.MonitoringResult, error) {
	if _, err := s.store.GetConfig(ctx, tenantID, configID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.store.ListResults(ctx, configID, limit, offset)
}

// GetActiveAlerts returns open alerts, optionally including acknowledged
// ones.
func (s *Service) GetActiveAlerts(ctx context.Context, tenantID string, includeAcknowledged bool) ([]models.Alert, error) {
	statuses := []types.AlertStatus{types.AlertActive}
	if includeAcknowledged {
		statuses = append(statuses, types.AlertAcknowledged)
	}
	return s.store.ListAlerts(ctx, tenantID, statuses)
}

// AcknowledgeAlert moves an ACTIVE alert to ACKNOWLEDGED.
func (s *Service) AcknowledgeAlert(ctx context.Context, tenantID string, alertID, userID uint) (*models.Alert, error) {
	alert, err := s.store.GetAlert(ctx, tenantID, alertID)
	if err != nil {
		return nil, err
	}

	if alert.Status != types.AlertActive {
		return nil, fmt.Errorf("%w: cannot acknowledge a %s alert", ErrInvalidTransition, alert.Status)
	}

	now := time.Now()
	alert.Status = types.AlertAcknowledged
	alert.AcknowledgedByID = &userID
	alert.AcknowledgedAt = &now

	if err := s.store.UpdateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	s.logger.Info("alert acknowledged",
		zap.Uint("alert_id", alertID),
		zap.Uint("user_id", userID))

	return alert, nil
}

// ResolveAlert closes an alert from ACTIVE or ACKNOWLEDGED. A resolved
// alert stays resolved; the next non-success result opens a brand-new one.
func (s *Service) ResolveAlert(ctx context.Context, tenantID string, alertID, userID uint) (*models.Alert, error) {
	alert, err := s.store.GetAlert(ctx, tenantID, alertID)
	if err != nil {
		return nil, err
	}

	if alert.Status == types.AlertResolved {
		return nil, fmt.Errorf("%w: alert is already resolved", ErrInvalidTransition)
	}

	now := time.Now()
	alert.Status = types.AlertResolved
	alert.ResolvedAt = &now

	if err := s.store.UpdateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}

	s.logger.Info("alert resolved",
		zap.Uint("alert_id", alertID),
		zap.Uint("user_id", userID))

	return alert, nil
}
