package probes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"

	// Drivers for the database:<resource> probes.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const defaultDatabaseTimeout = 5000 * time.Millisecond

// ServerMetrics supplies host readings for server:<resource> checks.
type ServerMetrics interface {
	CPUPercent(ctx context.Context) (float64, error)
	MemoryPercent(ctx context.Context) (float64, error)
	DiskPercent(ctx context.Context, path string) (float64, error)
}

// SystemMetrics reads host metrics from the local machine.
type SystemMetrics struct{}

func (SystemMetrics) CPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no cpu usage reading available")
	}
	return percents[0], nil
}

func (SystemMetrics) MemoryPercent(ctx context.Context) (float64, error) {
	info, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read memory usage: %w", err)
	}
	return info.UsedPercent, nil
}

func (SystemMetrics) DiskPercent(ctx context.Context, path string) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}
	return usage.UsedPercent, nil
}

// InfrastructureProbe measures server and database resources.
type InfrastructureProbe struct {
	metrics ServerMetrics
	logger  *zap.Logger
}

func NewInfrastructureProbe(metrics ServerMetrics, logger *zap.Logger) *InfrastructureProbe {
	return &InfrastructureProbe{metrics: metrics, logger: logger.Named("probe-infrastructure")}
}

func (p *InfrastructureProbe) Check(ctx context.Context, config *models.MonitoringConfig) ResultData {
	start := time.Now()
	target := config.Target()

	params, err := config.CheckParameters()
	if err != nil {
		p.logger.Error("invalid check parameters",
			zap.Uint("config_id", config.ID), zap.Error(err))
		return failure(elapsedMs(start), fmt.Errorf("invalid check parameters: %w", err))
	}

	var (
		value   float64
		details map[string]interface{}
	)

	switch target.Family {
	case types.FamilyServer:
		value, details, err = p.checkServer(ctx, target.Identifier, params.Server)
	case types.FamilyDatabase:
		value, details, err = p.checkDatabase(ctx, target.Identifier, params.Database)
	default:
		err = fmt.Errorf("%w: infrastructure family %q", types.ErrUnsupportedResource, target.Family)
	}

	if err != nil {
		p.logger.Error("infrastructure check failed",
			zap.Uint("config_id", config.ID),
			zap.String("target", target.String()),
			zap.Error(err))
		return failure(elapsedMs(start), err)
	}

	return ResultData{
		Status:       types.StatusSuccess,
		ResponseTime: intPtr(elapsedMs(start)),
		Value:        floatPtr(value),
		Details:      details,
	}
}

func (p *InfrastructureProbe) checkServer(ctx context.Context, resource string, params *types.ServerParameters) (float64, map[string]interface{}, error) {
	var (
		value float64
		err   error
	)

	switch resource {
	case "cpu":
		value, err = p.metrics.CPUPercent(ctx)
	case "memory":
		value, err = p.metrics.MemoryPercent(ctx)
	case "disk":
		path := "/"
		if params != nil && params.Path != "" {
			path = params.Path
		}
		value, err = p.metrics.DiskPercent(ctx, path)
	default:
		return 0, nil, fmt.Errorf("%w: server resource %q", types.ErrUnsupportedResource, resource)
	}

	if err != nil {
		return 0, nil, err
	}

	return value, map[string]interface{}{"resource": resource, "unit": "%"}, nil
}

func (p *InfrastructureProbe) checkDatabase(ctx context.Context, resource string, params *types.DatabaseParameters) (float64, map[string]interface{}, error) {
	if params == nil {
		return 0, nil, fmt.Errorf("database target %q requires database parameters", resource)
	}

	timeout := defaultDatabaseTimeout
	if params.TimeoutMs > 0 {
		timeout = time.Duration(params.TimeoutMs) * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	handle, err := sql.Open(params.Driver, params.DSN)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open a database connection: %w", err)
	}
	defer handle.Close()

	switch resource {
	case "connections":
		value, err := p.queryScalar(ctx, handle, params.Driver, queryConnections)
		if err != nil {
			return 0, nil, err
		}
		return value, map[string]interface{}{"resource": resource, "unit": "connections"}, nil
	case "queries":
		value, err := p.queryScalar(ctx, handle, params.Driver, queryThroughput)
		if err != nil {
			return 0, nil, err
		}
		return value, map[string]interface{}{"resource": resource, "unit": "queries"}, nil
	case "latency":
		pingStart := time.Now()
		if err := handle.PingContext(ctx); err != nil {
			return 0, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		latency := float64(time.Since(pingStart).Microseconds()) / 1000.0
		return latency, map[string]interface{}{"resource": resource, "unit": "ms"}, nil
	default:
		return 0, nil, fmt.Errorf("%w: database resource %q", types.ErrUnsupportedResource, resource)
	}
}

type scalarQuery int

const (
	queryConnections scalarQuery = iota
	queryThroughput
)

func (p *InfrastructureProbe) queryScalar(ctx context.Context, handle *sql.DB, driver string, kind scalarQuery) (float64, error) {
	var statement string

	switch driver {
	case "postgres":
		if kind == queryConnections {
			statement = `SELECT count(*) FROM pg_stat_activity`
		} else {
			statement = `SELECT coalesce(sum(xact_commit + xact_rollback), 0) FROM pg_stat_database`
		}
		var value float64
		if err := handle.QueryRowContext(ctx, statement).Scan(&value); err != nil {
			return 0, fmt.Errorf("failed to query database metric: %w", err)
		}
		return value, nil
	case "mysql":
		if kind == queryConnections {
			statement = `SHOW STATUS LIKE 'Threads_connected'`
		} else {
			statement = `SHOW STATUS LIKE 'Queries'`
		}
		var name string
		var value float64
		if err := handle.QueryRowContext(ctx, statement).Scan(&name, &value); err != nil {
			return 0, fmt.Errorf("failed to query database metric: %w", err)
		}
		return value, nil
	default:
		return 0, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

func elapsedMs(start time.Time) int {
	return int(time.Since(start).Milliseconds())
}
