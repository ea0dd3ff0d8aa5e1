package probes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

type telemetryFunc func(ctx context.Context, family types.TargetFamily, identifier string) (float64, string, error)

func (f telemetryFunc) Measure(ctx context.Context, family types.TargetFamily, identifier string) (float64, string, error) {
	return f(ctx, family, identifier)
}

func uxConfig(family types.TargetFamily, identifier string) *models.MonitoringConfig {
	return &models.MonitoringConfig{
		Name:             "UX Check",
		MonitoringType:   types.MonitoringUserExperience,
		TargetResource:   string(family) + ":" + identifier,
		TargetFamily:     family,
		TargetIdentifier: identifier,
	}
}

func TestUserExperienceCheck(t *testing.T) {
	source := telemetryFunc(func(_ context.Context, family types.TargetFamily, identifier string) (float64, string, error) {
		require.Equal(t, types.FamilyPageLoad, family)
		require.Equal(t, "/checkout", identifier)
		return 1234.5, "ms", nil
	})

	probe := NewUserExperienceProbe(source, zap.NewNop())
	data := probe.Check(context.Background(), uxConfig(types.FamilyPageLoad, "/checkout"))

	require.Equal(t, types.StatusSuccess, data.Status)
	require.NotNil(t, data.Value)
	require.Equal(t, 1234.5, *data.Value)
	require.Equal(t, "ms", data.Details["unit"])
	require.Equal(t, "/checkout", data.Details["page"])
}

func TestUserExperienceCheckDetailsKeyPerFamily(t *testing.T) {
	source := telemetryFunc(func(context.Context, types.TargetFamily, string) (float64, string, error) {
		return 2.5, "%", nil
	})
	probe := NewUserExperienceProbe(source, zap.NewNop())

	data := probe.Check(context.Background(), uxConfig(types.FamilyErrors, "javascript"))
	require.Equal(t, "javascript", data.Details["errorType"])

	data = probe.Check(context.Background(), uxConfig(types.FamilyInteraction, "add-to-cart"))
	require.Equal(t, "add-to-cart", data.Details["interaction"])
}

func TestUserExperienceCheckFailure(t *testing.T) {
	source := telemetryFunc(func(context.Context, types.TargetFamily, string) (float64, string, error) {
		return 0, "", errors.New("telemetry pipeline unavailable")
	})

	probe := NewUserExperienceProbe(source, zap.NewNop())
	data := probe.Check(context.Background(), uxConfig(types.FamilyPageLoad, "/home"))

	require.Equal(t, types.StatusError, data.Status)
	require.Equal(t, "telemetry pipeline unavailable", data.ErrorMessage)
}

func TestSimulatedTelemetryRanges(t *testing.T) {
	source := SimulatedTelemetry{}

	for i := 0; i < 50; i++ {
		value, unit, err := source.Measure(context.Background(), types.FamilyPageLoad, "/home")
		require.NoError(t, err)
		require.Equal(t, "ms", unit)
		require.GreaterOrEqual(t, value, 0.0)
		require.Less(t, value, 5000.0)

		value, unit, err = source.Measure(context.Background(), types.FamilyErrors, "js")
		require.NoError(t, err)
		require.Equal(t, "%", unit)
		require.Less(t, value, 5.0)

		value, unit, err = source.Measure(context.Background(), types.FamilyInteraction, "click")
		require.NoError(t, err)
		require.Equal(t, "ms", unit)
		require.Less(t, value, 2000.0)
	}

	_, _, err := source.Measure(context.Background(), types.FamilyServer, "cpu")
	require.ErrorIs(t, err, types.ErrUnsupportedResource)
}
