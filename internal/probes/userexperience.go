package probes

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

// TelemetrySource supplies client-side measurements for user-experience
// checks. The real source is whatever RUM pipeline the deployment feeds;
// SimulatedTelemetry stands in when none is wired.
type TelemetrySource interface {
	Measure(ctx context.Context, family types.TargetFamily, identifier string) (value float64, unit string, err error)
}

// SimulatedTelemetry produces plausible values in the range each metric
// family uses: page loads and interactions in milliseconds, error rates as
// a percentage.
type SimulatedTelemetry struct{}

func (SimulatedTelemetry) Measure(_ context.Context, family types.TargetFamily, _ string) (float64, string, error) {
	switch family {
	case types.FamilyPageLoad:
		return rand.Float64() * 5000, "ms", nil
	case types.FamilyErrors:
		return rand.Float64() * 5, "%", nil
	case types.FamilyInteraction:
		return rand.Float64() * 2000, "ms", nil
	default:
		return 0, "", fmt.Errorf("%w: user experience family %q", types.ErrUnsupportedResource, family)
	}
}

// UserExperienceProbe reads one user-experience metric from the telemetry
// source.
type UserExperienceProbe struct {
	telemetry TelemetrySource
	logger    *zap.Logger
}

func NewUserExperienceProbe(telemetry TelemetrySource, logger *zap.Logger) *UserExperienceProbe {
	return &UserExperienceProbe{telemetry: telemetry, logger: logger.Named("probe-user-experience")}
}

func (p *UserExperienceProbe) Check(ctx context.Context, config *models.MonitoringConfig) ResultData {
	start := time.Now()
	target := config.Target()

	value, unit, err := p.telemetry.Measure(ctx, target.Family, target.Identifier)
	if err != nil {
		p.logger.Error("user experience check failed",
			zap.Uint("config_id", config.ID),
			zap.String("target", target.String()),
			zap.Error(err))
		return failure(elapsedMs(start), err)
	}

	details := map[string]interface{}{"unit": unit}
	switch target.Family {
	case types.FamilyPageLoad:
		details["page"] = target.Identifier
	case types.FamilyErrors:
		details["errorType"] = target.Identifier
	case types.FamilyInteraction:
		details["interaction"] = target.Identifier
	}

	return ResultData{
		Status:       types.StatusSuccess,
		ResponseTime: intPtr(elapsedMs(start)),
		Value:        floatPtr(value),
		Details:      details,
	}
}
