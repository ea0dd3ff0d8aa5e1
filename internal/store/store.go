// Package store is the gorm-backed persistence layer for the monitoring
// engine. It owns error translation: callers see the sentinel errors below
// instead of driver errors.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

var (
	ErrConfigNotFound = errors.New("monitoring config not found")
	ErrAlertNotFound  = errors.New("alert not found")

	// ErrDuplicateActiveAlert is returned when an insert trips the partial
	// unique index guarding "one ACTIVE alert per config".
	ErrDuplicateActiveAlert = errors.New("an active alert already exists for this config")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- configs ---

func (s *Store) CreateConfig(ctx context.Context, config *models.MonitoringConfig) error {
	return s.db.WithContext(ctx).Create(config).Error
}

func (s *Store) UpdateConfig(ctx context.Context, config *models.MonitoringConfig) error {
	return s.db.WithContext(ctx).Save(config).Error
}

func (s *Store) GetConfig(ctx context.Context, tenantID string, id uint) (*models.MonitoringConfig, error) {
	var config models.MonitoringConfig
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return &config, nil
}

func (s *Store) ListConfigs(ctx context.Context, tenantID string, includeInactive bool) ([]models.MonitoringConfig, error) {
	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var configs []models.MonitoringConfig
	if err := query.Order("name asc").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// ListAllActiveConfigs returns active configs across every tenant. Only the
// scheduler uses this; request paths stay tenant-scoped.
func (s *Store) ListAllActiveConfigs(ctx context.Context) ([]models.MonitoringConfig, error) {
	var configs []models.MonitoringConfig
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// DeleteConfig removes a config and everything it owns. Generation order
// matters: notification logs reference alerts, alerts and results reference
// the config.
func (s *Store) DeleteConfig(ctx context.Context, tenantID string, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var config models.MonitoringConfig
		if err := tx.Where("id = ? AND tenant_id = ?", id, tenantID).First(&config).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConfigNotFound
			}
			return err
		}

		if err := tx.Unscoped().Where("config_id = ?", id).Delete(&models.MonitoringResult{}).Error; err != nil {
			return err
		}

		var alertIDs []uint
		if err := tx.Model(&models.Alert{}).
			Where("config_id = ?", id).
			Pluck("id", &alertIDs).Error; err != nil {
			return err
		}

		if len(alertIDs) > 0 {
			if err := tx.Unscoped().
				Where("alert_id IN ?", alertIDs).
				Delete(&models.NotificationLog{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("config_id = ?", id).Delete(&models.Alert{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&config).Error
	})
}

// --- results ---

func (s *Store) CreateResult(ctx context.Context, result *models.MonitoringResult) error {
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	return s.db.WithContext(ctx).Create(result).Error
}

func (s *Store) ListResults(ctx context.Context, configID uint, limit, offset int) ([]models.MonitoringResult, error) {
	var results []models.MonitoringResult
	err := s.db.WithContext(ctx).
		Where("config_id = ?", configID).
		Order("timestamp desc").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) ListResultsSince(ctx context.Context, configID uint, since time.Time) ([]models.MonitoringResult, error) {
	var results []models.MonitoringResult
	err := s.db.WithContext(ctx).
		Where("config_id = ? AND timestamp >= ?", configID, since).
		Order("timestamp asc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// --- alerts ---

func (s *Store) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(alert).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateActiveAlert
		}
		return err
	}
	return nil
}

// FindActiveAlert returns the ACTIVE alert for a config, or nil when there
// is none.
func (s *Store) FindActiveAlert(ctx context.Context, configID uint) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.WithContext(ctx).
		Where("config_id = ? AND status = ?", configID, types.AlertActive).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (s *Store) GetAlert(ctx context.Context, tenantID string, alertID uint) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.WithContext(ctx).
		Joins("JOIN monitoring_configs ON monitoring_configs.id = alerts.config_id").
		Where("alerts.id = ? AND monitoring_configs.tenant_id = ?", alertID, tenantID).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return &alert, nil
}

func (s *Store) UpdateAlert(ctx context.Context, alert *models.Alert) error {
	return s.db.WithContext(ctx).Save(alert).Error
}

// ListAlerts returns a tenant's alerts in the given statuses, most severe
// and most recent first.
func (s *Store) ListAlerts(ctx context.Context, tenantID string, statuses []types.AlertStatus) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.WithContext(ctx).
		Joins("JOIN monitoring_configs ON monitoring_configs.id = alerts.config_id").
		Where("monitoring_configs.tenant_id = ? AND alerts.status IN ?", tenantID, statuses).
		Preload("Config").
		Order(`CASE alerts.severity
			WHEN 'CRITICAL' THEN 4
			WHEN 'ERROR' THEN 3
			WHEN 'WARNING' THEN 2
			ELSE 1 END DESC, alerts.timestamp DESC`).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// --- notification logs ---

func (s *Store) CreateNotificationLog(ctx context.Context, entry *models.NotificationLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *Store) ListNotificationLogs(ctx context.Context, alertID uint) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	err := s.db.WithContext(ctx).
		Where("alert_id = ?", alertID).
		Order("created_at asc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// --- recipients ---

func (s *Store) CreateRecipient(ctx context.Context, recipient *models.AlertRecipient) error {
	return s.db.WithContext(ctx).Create(recipient).Error
}

func (s *Store) DeleteRecipient(ctx context.Context, tenantID string, id uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.AlertRecipient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) ListRecipients(ctx context.Context, tenantID string) ([]models.AlertRecipient, error) {
	var recipients []models.AlertRecipient
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("address asc").
		Find(&recipients).Error
	if err != nil {
		return nil, err
	}
	return recipients, nil
}
