package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/probes"
	"github.com/vigil-dev/vigil/internal/store"
	"github.com/vigil-dev/vigil/internal/types"
)

func ip(v int) *int { return &v }

// fakeStore is an in-memory Store that mirrors the uniqueness guarantee the
// real one gets from its partial index: at most one ACTIVE alert per config.
type fakeStore struct {
	mu      sync.Mutex
	nextID  uint
	configs map[uint]*models.MonitoringConfig
	results []models.MonitoringResult
	alerts  map[uint]*models.Alert
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		configs: make(map[uint]*models.MonitoringConfig),
		alerts:  make(map[uint]*models.Alert),
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateConfig(_ context.Context, config *models.MonitoringConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	config.ID = f.id()
	copied := *config
	f.configs[config.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateConfig(_ context.Context, config *models.MonitoringConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *config
	f.configs[config.ID] = &copied
	return nil
}

func (f *fakeStore) GetConfig(_ context.Context, tenantID string, id uint) (*models.MonitoringConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	config, ok := f.configs[id]
	if !ok || config.TenantID != tenantID {
		return nil, store.ErrConfigNotFound
	}
	copied := *config
	return &copied, nil
}

func (f *fakeStore) ListConfigs(_ context.Context, tenantID string, includeInactive bool) ([]models.MonitoringConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MonitoringConfig
	for _, config := range f.configs {
		if config.TenantID != tenantID {
			continue
		}
		if !includeInactive && !config.IsActive {
			continue
		}
		out = append(out, *config)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteConfig(_ context.Context, tenantID string, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	config, ok := f.configs[id]
	if !ok || config.TenantID != tenantID {
		return store.ErrConfigNotFound
	}
	delete(f.configs, id)
	return nil
}

func (f *fakeStore) CreateResult(_ context.Context, result *models.MonitoringResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	result.ID = f.id()
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeStore) ListResults(_ context.Context, configID uint, limit, offset int) ([]models.MonitoringResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.MonitoringResult
	for _, r := range f.results {
		if r.ConfigID == configID {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeStore) ListResultsSince(_ context.Context, configID uint, since time.Time) ([]models.MonitoringResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.MonitoringResult
	for _, r := range f.results {
		if r.ConfigID == configID && !r.Timestamp.Before(since) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.Before(matched[j].Timestamp) })
	return matched, nil
}

func (f *fakeStore) CreateAlert(_ context.Context, alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if alert.Status == types.AlertActive {
		for _, existing := range f.alerts {
			if existing.ConfigID == alert.ConfigID && existing.Status == types.AlertActive {
				return store.ErrDuplicateActiveAlert
			}
		}
	}
	alert.ID = f.id()
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	copied := *alert
	f.alerts[alert.ID] = &copied
	return nil
}

func (f *fakeStore) FindActiveAlert(_ context.Context, configID uint) (*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, alert := range f.alerts {
		if alert.ConfigID == configID && alert.Status == types.AlertActive {
			copied := *alert
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetAlert(_ context.Context, tenantID string, alertID uint) (*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert, ok := f.alerts[alertID]
	if !ok {
		return nil, store.ErrAlertNotFound
	}
	config, ok := f.configs[alert.ConfigID]
	if !ok || config.TenantID != tenantID {
		return nil, store.ErrAlertNotFound
	}
	copied := *alert
	return &copied, nil
}

func (f *fakeStore) UpdateAlert(_ context.Context, alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *alert
	f.alerts[alert.ID] = &copied
	return nil
}

func (f *fakeStore) ListAlerts(_ context.Context, tenantID string, statuses []types.AlertStatus) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Alert
	for _, alert := range f.alerts {
		config, ok := f.configs[alert.ConfigID]
		if !ok || config.TenantID != tenantID {
			continue
		}
		for _, status := range statuses {
			if alert.Status == status {
				out = append(out, *alert)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) alertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

func (f *fakeStore) resultCount(configID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.results {
		if r.ConfigID == configID {
			n++
		}
	}
	return n
}

// fakeRunner returns a canned result per config ID.
type fakeRunner struct {
	mu      sync.Mutex
	results map[uint]probes.ResultData
	errs    map[uint]error
	calls   int
}

func (f *fakeRunner) Run(_ context.Context, config *models.MonitoringConfig) (probes.ResultData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[config.ID]; ok {
		return probes.ResultData{}, err
	}
	return f.results[config.ID], nil
}

type fakeNotifier struct {
	mu         sync.Mutex
	dispatches []*models.Alert
}

func (f *fakeNotifier) Dispatch(_ context.Context, alert *models.Alert, _ *models.MonitoringConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatches = append(f.dispatches, alert)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dispatches)
}

func newTestService(st *fakeStore, runner *fakeRunner, notifier *fakeNotifier) *Service {
	return NewService(st, runner, notifier, zap.NewNop())
}

func mustThresholds(t *testing.T, thresholds types.Thresholds) []byte {
	t.Helper()
	raw, err := json.Marshal(thresholds)
	require.NoError(t, err)
	return raw
}

func seedConfig(t *testing.T, st *fakeStore, tenantID string, monitoringType types.MonitoringType, target string, thresholds types.Thresholds, active bool) *models.MonitoringConfig {
	t.Helper()
	parsed, err := types.ParseTarget(monitoringType, target)
	require.NoError(t, err)

	config := &models.MonitoringConfig{
		TenantID:         tenantID,
		Name:             "Test Monitor",
		MonitoringType:   monitoringType,
		CheckInterval:    60,
		TargetResource:   target,
		TargetFamily:     parsed.Family,
		TargetIdentifier: parsed.Identifier,
		AlertThresholds:  mustThresholds(t, thresholds),
		IsActive:         active,
	}
	require.NoError(t, st.CreateConfig(context.Background(), config))
	return config
}

func TestExecuteCheckSuccessProducesNoAlert(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{Warning: f(70), Error: f(85), Critical: f(95)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {Status: types.StatusSuccess, Value: f(42), Details: map[string]interface{}{"unit": "%"}},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(st, runner, notifier)

	result, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusSuccess, result.Status)
	require.Equal(t, 1, st.resultCount(config.ID))
	require.Zero(t, st.alertCount())
	require.Zero(t, notifier.count())
}

func TestExecuteCheckThresholdEscalation(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringApplication, "api:https://example.com/health",
		types.Thresholds{Warning: f(1000), Error: f(3000), Critical: f(5000)}, true)

	// The probe saw a 200 and reported SUCCESS, but the response time
	// crosses the error boundary.
	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {
			Status:       types.StatusSuccess,
			ResponseTime: ip(4000),
			Value:        f(4000),
			Details:      map[string]interface{}{"unit": "ms"},
		},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(st, runner, notifier)

	result, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusError, result.Status)

	require.Equal(t, 1, st.alertCount())
	alerts, err := st.ListAlerts(context.Background(), "tenant-1", []types.AlertStatus{types.AlertActive})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, "[ERROR] Test Monitor: Valor 4000 ms", alerts[0].Message)
	require.Equal(t, types.SeverityError, alerts[0].Severity)
	require.Equal(t, 1, notifier.count())
}

func TestExecuteCheckNeverDowngradesProbeStatus(t *testing.T) {
	st := newFakeStore()
	// Value is below every boundary, but the probe already saw a 5xx.
	config := seedConfig(t, st, "tenant-1", types.MonitoringApplication, "api:https://example.com/health",
		types.Thresholds{Warning: f(1000), Error: f(3000), Critical: f(5000)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {
			Status:       types.StatusError,
			ResponseTime: ip(120),
			Value:        f(120),
			Details:      map[string]interface{}{"unit": "ms"},
			ErrorMessage: "HTTP 500 Internal Server Error",
		},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(st, runner, notifier)

	result, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)
	require.Equal(t, types.StatusError, result.Status)

	alerts, err := st.ListAlerts(context.Background(), "tenant-1", []types.AlertStatus{types.AlertActive})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, "[ERROR] Test Monitor: HTTP 500 Internal Server Error", alerts[0].Message)
}

func TestExecuteCheckDeduplicatesAlerts(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{Critical: f(90)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {Status: types.StatusSuccess, Value: f(97), Details: map[string]interface{}{"unit": "%"}},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(st, runner, notifier)

	for i := 0; i < 5; i++ {
		_, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
		require.NoError(t, err)
	}

	// Five results, but only the first check opened an alert and notified.
	require.Equal(t, 5, st.resultCount(config.ID))
	require.Equal(t, 1, st.alertCount())
	require.Equal(t, 1, notifier.count())
}

func TestExecuteCheckDedupUnderConcurrency(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:memory",
		types.Thresholds{Critical: f(90)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {Status: types.StatusSuccess, Value: f(99), Details: map[string]interface{}{"unit": "%"}},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(st, runner, notifier)

	const workers = 16
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, workers, st.resultCount(config.ID))
	require.Equal(t, 1, st.alertCount())
	require.Equal(t, 1, notifier.count())
}

func TestExecuteCheckSuccessDoesNotResolveAlert(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{Critical: f(90)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {Status: types.StatusSuccess, Value: f(95), Details: map[string]interface{}{"unit": "%"}},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(st, runner, notifier)

	_, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)
	require.Equal(t, 1, st.alertCount())

	// Recovered: next check is clean, but the alert stays open until an
	// operator resolves it.
	runner.mu.Lock()
	runner.results[config.ID] = probes.ResultData{Status: types.StatusSuccess, Value: f(10), Details: map[string]interface{}{"unit": "%"}}
	runner.mu.Unlock()

	_, err = svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)

	alerts, err := svc.GetActiveAlerts(context.Background(), "tenant-1", false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, types.AlertActive, alerts[0].Status)
}

func TestExecuteCheckInactiveConfig(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{}, false)

	runner := &fakeRunner{}
	svc := newTestService(st, runner, &fakeNotifier{})

	_, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.ErrorIs(t, err, ErrConfigInactive)
	require.Zero(t, st.resultCount(config.ID))
	require.Zero(t, runner.calls)
}

func TestExecuteCheckUnknownConfig(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, &fakeRunner{}, &fakeNotifier{})

	_, err := svc.ExecuteCheck(context.Background(), "tenant-1", 999)
	require.ErrorIs(t, err, store.ErrConfigNotFound)
}

func TestExecuteCheckWrongTenant(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{}, true)

	svc := newTestService(st, &fakeRunner{}, &fakeNotifier{})

	_, err := svc.ExecuteCheck(context.Background(), "tenant-2", config.ID)
	require.ErrorIs(t, err, store.ErrConfigNotFound)
}

func TestExecuteCheckProbeDispatchFailure(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{Critical: f(90)}, true)

	probeErr := fmt.Errorf("%w: NETWORK", types.ErrUnsupportedMonitoringType)
	runner := &fakeRunner{errs: map[uint]error{config.ID: probeErr}}
	notifier := &fakeNotifier{}
	svc := newTestService(st, runner, notifier)

	result, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.ErrorIs(t, err, types.ErrUnsupportedMonitoringType)

	// The failure is still recorded as an ERROR result, but no alert is
	// evaluated for it.
	require.NotNil(t, result)
	require.Equal(t, types.StatusError, result.Status)
	require.Equal(t, probeErr.Error(), result.ErrorMessage)
	require.Equal(t, 1, st.resultCount(config.ID))
	require.Zero(t, st.alertCount())
	require.Zero(t, notifier.count())
}

func TestExecuteAllChecksIsolatesFailures(t *testing.T) {
	st := newFakeStore()
	healthy := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu", types.Thresholds{}, true)
	broken := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:memory", types.Thresholds{}, true)
	alsoHealthy := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:disk", types.Thresholds{}, true)
	seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "database:connections", types.Thresholds{}, false)
	seedConfig(t, st, "tenant-2", types.MonitoringInfrastructure, "server:cpu", types.Thresholds{}, true)

	runner := &fakeRunner{
		results: map[uint]probes.ResultData{
			healthy.ID:     {Status: types.StatusSuccess, Value: f(10)},
			alsoHealthy.ID: {Status: types.StatusSuccess, Value: f(20)},
		},
		errs: map[uint]error{broken.ID: errors.New("probe exploded")},
	}
	svc := newTestService(st, runner, &fakeNotifier{})

	outcomes, err := svc.ExecuteAllChecks(context.Background(), "tenant-1")
	require.NoError(t, err)

	// Only tenant-1's three active configs ran; inactive and foreign ones
	// were skipped.
	require.Len(t, outcomes, 3)

	byConfig := make(map[uint]CheckOutcome, len(outcomes))
	for _, outcome := range outcomes {
		byConfig[outcome.ConfigID] = outcome
	}

	require.Empty(t, byConfig[healthy.ID].Error)
	require.Empty(t, byConfig[alsoHealthy.ID].Error)
	require.Contains(t, byConfig[broken.ID].Error, "probe exploded")
	require.NotNil(t, byConfig[broken.ID].Result)
	require.Equal(t, types.StatusError, byConfig[broken.ID].Result.Status)
}

func TestAcknowledgeAndResolveTransitions(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{Critical: f(90)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {Status: types.StatusSuccess, Value: f(95), Details: map[string]interface{}{"unit": "%"}},
	}}
	svc := newTestService(st, runner, &fakeNotifier{})

	_, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)

	alerts, err := svc.GetActiveAlerts(context.Background(), "tenant-1", false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	alertID := alerts[0].ID

	acked, err := svc.AcknowledgeAlert(context.Background(), "tenant-1", alertID, 7)
	require.NoError(t, err)
	require.Equal(t, types.AlertAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)
	require.NotNil(t, acked.AcknowledgedByID)
	require.Equal(t, uint(7), *acked.AcknowledgedByID)

	// Acknowledged alerts disappear from the default listing but stay
	// visible when asked for.
	alerts, err = svc.GetActiveAlerts(context.Background(), "tenant-1", false)
	require.NoError(t, err)
	require.Empty(t, alerts)

	alerts, err = svc.GetActiveAlerts(context.Background(), "tenant-1", true)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	// A second acknowledge is rejected.
	_, err = svc.AcknowledgeAlert(context.Background(), "tenant-1", alertID, 7)
	require.ErrorIs(t, err, ErrInvalidTransition)

	resolved, err := svc.ResolveAlert(context.Background(), "tenant-1", alertID, 7)
	require.NoError(t, err)
	require.Equal(t, types.AlertResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	// Resolved is terminal.
	_, err = svc.ResolveAlert(context.Background(), "tenant-1", alertID, 7)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.AcknowledgeAlert(context.Background(), "tenant-1", alertID, 7)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolveDirectlyFromActive(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{Critical: f(90)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {Status: types.StatusSuccess, Value: f(95)},
	}}
	svc := newTestService(st, runner, &fakeNotifier{})

	_, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)

	alerts, err := svc.GetActiveAlerts(context.Background(), "tenant-1", false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	resolved, err := svc.ResolveAlert(context.Background(), "tenant-1", alerts[0].ID, 3)
	require.NoError(t, err)
	require.Equal(t, types.AlertResolved, resolved.Status)
}

func TestResolvedAlertAllowsNewAlert(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{Critical: f(90)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {Status: types.StatusSuccess, Value: f(95), Details: map[string]interface{}{"unit": "%"}},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(st, runner, notifier)

	_, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)

	alerts, err := svc.GetActiveAlerts(context.Background(), "tenant-1", false)
	require.NoError(t, err)
	_, err = svc.ResolveAlert(context.Background(), "tenant-1", alerts[0].ID, 1)
	require.NoError(t, err)

	// The condition persists: a fresh alert opens.
	_, err = svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)

	require.Equal(t, 2, st.alertCount())
	require.Equal(t, 2, notifier.count())
}

func TestAlertCarriesHook(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{Critical: f(90)}, true)

	runner := &fakeRunner{results: map[uint]probes.ResultData{
		config.ID: {Status: types.StatusSuccess, Value: f(95)},
	}}
	svc := newTestService(st, runner, &fakeNotifier{})

	var hookTenant string
	svc.SetAlertHook(func(_ *models.Alert, config *models.MonitoringConfig) {
		hookTenant = config.TenantID
	})

	_, err := svc.ExecuteCheck(context.Background(), "tenant-1", config.ID)
	require.NoError(t, err)
	require.Equal(t, "tenant-1", hookTenant)
}

func TestCreateConfigValidation(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, &fakeRunner{}, &fakeNotifier{})

	base := ConfigInput{
		Name:           "CPU",
		MonitoringType: types.MonitoringInfrastructure,
		CheckInterval:  60,
		TargetResource: "server:cpu",
	}

	_, err := svc.CreateConfig(context.Background(), "tenant-1", base, 1)
	require.NoError(t, err)

	missing := base
	missing.Name = ""
	_, err = svc.CreateConfig(context.Background(), "tenant-1", missing, 1)
	require.ErrorIs(t, err, ErrValidation)

	shortInterval := base
	shortInterval.CheckInterval = 10
	_, err = svc.CreateConfig(context.Background(), "tenant-1", shortInterval, 1)
	require.ErrorIs(t, err, ErrValidation)

	badTarget := base
	badTarget.TargetResource = "cpu"
	_, err = svc.CreateConfig(context.Background(), "tenant-1", badTarget, 1)
	require.ErrorIs(t, err, ErrValidation)

	badType := base
	badType.MonitoringType = "NETWORK"
	_, err = svc.CreateConfig(context.Background(), "tenant-1", badType, 1)
	require.ErrorIs(t, err, ErrValidation)

	dbMissingParams := base
	dbMissingParams.TargetResource = "database:connections"
	_, err = svc.CreateConfig(context.Background(), "tenant-1", dbMissingParams, 1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetMonitoringResultsChecksOwnership(t *testing.T) {
	st := newFakeStore()
	config := seedConfig(t, st, "tenant-1", types.MonitoringInfrastructure, "server:cpu",
		types.Thresholds{}, true)

	svc := newTestService(st, &fakeRunner{}, &fakeNotifier{})

	_, err := svc.GetMonitoringResults(context.Background(), "tenant-2", config.ID, 10, 0)
	require.ErrorIs(t, err, store.ErrConfigNotFound)
}

func TestAlertMessageFallback(t *testing.T) {
	require.Equal(t, "[CRITICAL] Web: Timeout",
		alertMessage("Web", probes.ResultData{Status: types.StatusCritical, ErrorMessage: "Timeout"}))

	require.Equal(t, "[WARNING] CPU: Valor 82.5 %",
		alertMessage("CPU", probes.ResultData{
			Status:  types.StatusWarning,
			Value:   f(82.5),
			Details: map[string]interface{}{"unit": "%"},
		}))

	require.Equal(t, "[ERROR] Job: Valor 12",
		alertMessage("Job", probes.ResultData{Status: types.StatusError, Value: f(12)}))

	require.Equal(t, "[ERROR] Job: Problema detectado",
		alertMessage("Job", probes.ResultData{Status: types.StatusError}))
}
