// Package probes executes one check against one target resource. Probes
// capture their own faults: anything anticipated (unknown sub-resource,
// network failure, timeout) comes back as a ResultData with a non-success
// status, never as an error. Only dispatch-level problems, like a monitoring
// type the set does not know, surface as errors, and the engine converts
// those into an ERROR result before re-raising.
package probes

import (
	"context"
	"fmt"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

// ResultData is the raw outcome of one probe execution, before threshold
// classification.
type ResultData struct {
	Status       types.CheckStatus
	ResponseTime *int     // ms
	Value        *float64 // numeric metric, when the probe produces one
	Details      map[string]interface{}
	ErrorMessage string
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// failure builds an ERROR result carrying the fault message.
func failure(responseTimeMs int, err error) ResultData {
	return ResultData{
		Status:       types.StatusError,
		ResponseTime: intPtr(responseTimeMs),
		ErrorMessage: err.Error(),
	}
}

// Prober runs one check family.
type Prober interface {
	Check(ctx context.Context, config *models.MonitoringConfig) ResultData
}

// Set dispatches a config to the probe for its monitoring type.
type Set struct {
	Infrastructure Prober
	Application    Prober
	UserExperience Prober
}

// Run executes the probe matching the config's monitoring type.
func (s *Set) Run(ctx context.Context, config *models.MonitoringConfig) (ResultData, error) {
	switch config.MonitoringType {
	case types.MonitoringInfrastructure:
		return s.Infrastructure.Check(ctx, config), nil
	case types.MonitoringApplication:
		return s.Application.Check(ctx, config), nil
	case types.MonitoringUserExperience:
		return s.UserExperience.Check(ctx, config), nil
	default:
		return ResultData{}, fmt.Errorf("%w: %s", types.ErrUnsupportedMonitoringType, config.MonitoringType)
	}
}
