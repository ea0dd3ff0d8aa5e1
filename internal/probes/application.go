package probes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

const defaultAPITimeout = 5000 * time.Millisecond

// HealthRegistry holds liveness checks for service:<name> targets.
type HealthRegistry struct {
	mu     sync.RWMutex
	checks map[string]func(ctx context.Context) error
}

func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checks: make(map[string]func(ctx context.Context) error)}
}

func (r *HealthRegistry) Register(name string, check func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

func (r *HealthRegistry) lookup(name string) (func(ctx context.Context) error, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	check, ok := r.checks[name]
	return check, ok
}

// ApplicationProbe checks API endpoints and registered internal services.
type ApplicationProbe struct {
	registry *HealthRegistry
	logger   *zap.Logger
}

func NewApplicationProbe(registry *HealthRegistry, logger *zap.Logger) *ApplicationProbe {
	return &ApplicationProbe{registry: registry, logger: logger.Named("probe-application")}
}

func (p *ApplicationProbe) Check(ctx context.Context, config *models.MonitoringConfig) ResultData {
	start := time.Now()
	target := config.Target()

	params, err := config.CheckParameters()
	if err != nil {
		p.logger.Error("invalid check parameters",
			zap.Uint("config_id", config.ID), zap.Error(err))
		return failure(elapsedMs(start), fmt.Errorf("invalid check parameters: %w", err))
	}

	switch target.Family {
	case types.FamilyAPI:
		return p.checkAPI(ctx, target.Identifier, params.API)
	case types.FamilyService:
		return p.checkService(ctx, target.Identifier, start)
	default:
		return failure(elapsedMs(start),
			fmt.Errorf("%w: application family %q", types.ErrUnsupportedResource, target.Family))
	}
}

// checkAPI issues the configured HTTP request and classifies the outcome:
// a timeout is CRITICAL, any other transport failure is CRITICAL, a 5xx
// response is ERROR, a 4xx is WARNING. The response time is surfaced as the
// result's value so the threshold classifier can escalate slow successes.
func (p *ApplicationProbe) checkAPI(ctx context.Context, url string, params *types.APIParameters) ResultData {
	method := http.MethodGet
	timeout := defaultAPITimeout
	var headers map[string]string
	var body string

	if params != nil {
		if params.Method != "" {
			method = strings.ToUpper(params.Method)
		}
		if params.TimeoutMs > 0 {
			timeout = time.Duration(params.TimeoutMs) * time.Millisecond
		}
		headers = params.Headers
		body = params.Body
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody *strings.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	} else {
		reqBody = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return ResultData{
			Status:       types.StatusCritical,
			ErrorMessage: err.Error(),
			Details:      map[string]interface{}{"error": err.Error()},
		}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: timeout}

	requestStart := time.Now()
	resp, err := client.Do(req)
	responseTime := elapsedMs(requestStart)

	if err != nil {
		if isTimeout(err) {
			return ResultData{
				Status:       types.StatusCritical,
				ResponseTime: intPtr(responseTime),
				ErrorMessage: "Timeout",
				Details:      map[string]interface{}{"error": "Timeout"},
			}
		}
		return ResultData{
			Status:       types.StatusCritical,
			ResponseTime: intPtr(responseTime),
			ErrorMessage: err.Error(),
			Details:      map[string]interface{}{"error": err.Error()},
		}
	}
	defer resp.Body.Close()

	details := map[string]interface{}{
		"statusCode":    resp.StatusCode,
		"contentType":   resp.Header.Get("Content-Type"),
		"contentLength": resp.Header.Get("Content-Length"),
		"unit":          "ms",
	}

	status := types.StatusSuccess
	errorMessage := ""

	switch {
	case resp.StatusCode >= 500:
		status = types.StatusError
		errorMessage = fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	case resp.StatusCode >= 400:
		status = types.StatusWarning
		errorMessage = fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return ResultData{
		Status:       status,
		ResponseTime: intPtr(responseTime),
		Value:        floatPtr(float64(responseTime)),
		Details:      details,
		ErrorMessage: errorMessage,
	}
}

func (p *ApplicationProbe) checkService(ctx context.Context, name string, start time.Time) ResultData {
	check, ok := p.registry.lookup(name)
	if !ok {
		return failure(elapsedMs(start),
			fmt.Errorf("%w: service %q is not registered", types.ErrUnsupportedResource, name))
	}

	if err := check(ctx); err != nil {
		return ResultData{
			Status:       types.StatusError,
			ResponseTime: intPtr(elapsedMs(start)),
			ErrorMessage: err.Error(),
			Details:      map[string]interface{}{"service": name, "status": "error"},
		}
	}

	return ResultData{
		Status:       types.StatusSuccess,
		ResponseTime: intPtr(elapsedMs(start)),
		Details:      map[string]interface{}{"service": name, "status": "ok"},
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
