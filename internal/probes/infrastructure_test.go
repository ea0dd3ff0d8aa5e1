package probes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

type stubMetrics struct {
	cpu      float64
	memory   float64
	disk     float64
	diskPath string
	err      error
}

func (s *stubMetrics) CPUPercent(context.Context) (float64, error)    { return s.cpu, s.err }
func (s *stubMetrics) MemoryPercent(context.Context) (float64, error) { return s.memory, s.err }
func (s *stubMetrics) DiskPercent(_ context.Context, path string) (float64, error) {
	s.diskPath = path
	return s.disk, s.err
}

func serverConfig(t *testing.T, resource string, params *types.ServerParameters) *models.MonitoringConfig {
	t.Helper()

	config := &models.MonitoringConfig{
		Name:             "Server Check",
		MonitoringType:   types.MonitoringInfrastructure,
		TargetResource:   "server:" + resource,
		TargetFamily:     types.FamilyServer,
		TargetIdentifier: resource,
	}

	if params != nil {
		raw, err := json.Marshal(types.CheckParameters{Server: params})
		require.NoError(t, err)
		config.Parameters = raw
	}

	return config
}

func TestInfrastructureCheckServerResources(t *testing.T) {
	metrics := &stubMetrics{cpu: 42.5, memory: 61.2, disk: 88.0}
	probe := NewInfrastructureProbe(metrics, zap.NewNop())

	data := probe.Check(context.Background(), serverConfig(t, "cpu", nil))
	require.Equal(t, types.StatusSuccess, data.Status)
	require.Equal(t, 42.5, *data.Value)
	require.Equal(t, "%", data.Details["unit"])
	require.Equal(t, "cpu", data.Details["resource"])

	data = probe.Check(context.Background(), serverConfig(t, "memory", nil))
	require.Equal(t, 61.2, *data.Value)

	data = probe.Check(context.Background(), serverConfig(t, "disk", nil))
	require.Equal(t, 88.0, *data.Value)
	require.Equal(t, "/", metrics.diskPath)

	data = probe.Check(context.Background(), serverConfig(t, "disk", &types.ServerParameters{Path: "/var/lib"}))
	require.Equal(t, types.StatusSuccess, data.Status)
	require.Equal(t, "/var/lib", metrics.diskPath)
}

func TestInfrastructureCheckUnknownResource(t *testing.T) {
	probe := NewInfrastructureProbe(&stubMetrics{}, zap.NewNop())

	data := probe.Check(context.Background(), serverConfig(t, "gpu", nil))
	require.Equal(t, types.StatusError, data.Status)
	require.Contains(t, data.ErrorMessage, "gpu")
}

func TestInfrastructureCheckMetricFailure(t *testing.T) {
	probe := NewInfrastructureProbe(&stubMetrics{err: errors.New("sensor offline")}, zap.NewNop())

	data := probe.Check(context.Background(), serverConfig(t, "cpu", nil))
	require.Equal(t, types.StatusError, data.Status)
	require.Equal(t, "sensor offline", data.ErrorMessage)
}

func TestInfrastructureCheckDatabaseWithoutParameters(t *testing.T) {
	probe := NewInfrastructureProbe(&stubMetrics{}, zap.NewNop())

	config := &models.MonitoringConfig{
		Name:             "DB Check",
		MonitoringType:   types.MonitoringInfrastructure,
		TargetResource:   "database:connections",
		TargetFamily:     types.FamilyDatabase,
		TargetIdentifier: "connections",
	}

	data := probe.Check(context.Background(), config)
	require.Equal(t, types.StatusError, data.Status)
	require.Contains(t, data.ErrorMessage, "requires database parameters")
}
