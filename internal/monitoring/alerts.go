package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/probes"
	"github.com/vigil-dev/vigil/internal/store"
	"github.com/vigil-dev/vigil/internal/types"
)

// severityFor maps a non-success check status to an alert severity.
func severityFor(status types.CheckStatus) (types.AlertSeverity, bool) {
	switch status {
	case types.StatusWarning:
		return types.SeverityWarning, true
	case types.StatusError:
		return types.SeverityError, true
	case types.StatusCritical:
		return types.SeverityCritical, true
	}
	return "", false
}

// evaluateAlert decides whether a check result opens a new alert. A SUCCESS
// result never does, and never auto-resolves an existing alert either;
// resolution is an explicit operator action. While an ACTIVE alert exists
// for the config, further non-success results are suppressed: no new row,
// no new notifications.
func (s *Service) evaluateAlert(ctx context.Context, config *models.MonitoringConfig, data probes.ResultData) (*models.Alert, error) {
	severity, ok := severityFor(data.Status)
	if !ok {
		return nil, nil
	}

	existing, err := s.store.FindActiveAlert(ctx, config.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active alert: %w", err)
	}
	if existing != nil {
		return nil, nil
	}

	details, err := json.Marshal(map[string]interface{}{
		"result":       data.Details,
		"value":        data.Value,
		"errorMessage": data.ErrorMessage,
	})
	if err != nil {
		details = []byte(`{}`)
	}

	alert := models.Alert{
		ConfigID: config.ID,
		Severity: severity,
		Message:  alertMessage(config.Name, data),
		Details:  details,
		Status:   types.AlertActive,
	}

	if err := s.store.CreateAlert(ctx, &alert); err != nil {
		if errors.Is(err, store.ErrDuplicateActiveAlert) {
			// Lost the race against a concurrent check for the same
			// config; the other alert is authoritative.
			s.logger.Debug("duplicate active alert suppressed",
				zap.Uint("config_id", config.ID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.logger.Warn("alert opened",
		zap.Uint("alert_id", alert.ID),
		zap.Uint("config_id", config.ID),
		zap.String("severity", string(severity)),
		zap.String("message", alert.Message))

	// Delivery is best effort: the alert row is authoritative regardless of
	// what happens to the fan-out.
	s.notifier.Dispatch(ctx, &alert, config)

	if s.alertHook != nil {
		s.alertHook(&alert, config)
	}

	return &alert, nil
}

// alertMessage builds the alert text. Precedence: the probe's error message,
// then the measured value with its unit, then a generic fallback.
func alertMessage(configName string, data probes.ResultData) string {
	message := fmt.Sprintf("[%s] %s: ", data.Status, configName)

	switch {
	case data.ErrorMessage != "":
		message += data.ErrorMessage
	case data.Value != nil:
		message += "Valor " + strconv.FormatFloat(*data.Value, 'f', -1, 64)
		if unit, ok := data.Details["unit"].(string); ok && unit != "" {
			message += " " + unit
		}
	default:
		message += "Problema detectado"
	}

	return message
}
