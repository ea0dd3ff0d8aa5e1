package monitoring

import (
	"context"
	"time"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

// DayStats is one calendar day's rollup. Days without checks are emitted
// with zero counts and zero availability.
type DayStats struct {
	Date            string  `json:"date"`
	TotalChecks     int     `json:"total_checks"`
	SuccessChecks   int     `json:"success_checks"`
	WarningChecks   int     `json:"warning_checks"`
	ErrorChecks     int     `json:"error_checks"`
	CriticalChecks  int     `json:"critical_checks"`
	Availability    float64 `json:"availability"`
	AvgResponseTime float64 `json:"avg_response_time"`
}

// Stats aggregates a config's history over a window of whole calendar days.
type Stats struct {
	TotalChecks     int        `json:"total_checks"`
	SuccessChecks   int        `json:"success_checks"`
	WarningChecks   int        `json:"warning_checks"`
	ErrorChecks     int        `json:"error_checks"`
	CriticalChecks  int        `json:"critical_checks"`
	Availability    float64    `json:"availability"`
	AvgResponseTime float64    `json:"avg_response_time"`
	DailyStats      []DayStats `json:"daily_stats"`
}

// GetMonitoringStats aggregates the last `days` calendar days (today
// included), producing exactly one DayStats entry per day.
func (s *Service) GetMonitoringStats(ctx context.Context, tenantID string, configID uint, days int) (*Stats, error) {
	if _, err := s.store.GetConfig(ctx, tenantID, configID); err != nil {
		return nil, err
	}

	if days <= 0 {
		days = 7
	}

	now := time.Now()
	windowStart := startOfDay(now.AddDate(0, 0, -(days - 1)))

	results, err := s.store.ListResultsSince(ctx, configID, windowStart)
	if err != nil {
		return nil, err
	}

	stats := Stats{DailyStats: make([]DayStats, 0, days)}
	summarize(results, &stats.TotalChecks, &stats.SuccessChecks, &stats.WarningChecks,
		&stats.ErrorChecks, &stats.CriticalChecks, &stats.Availability, &stats.AvgResponseTime)

	for i := 0; i < days; i++ {
		dayStart := windowStart.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var dayResults []models.MonitoringResult
		for _, r := range results {
			if !r.Timestamp.Before(dayStart) && r.Timestamp.Before(dayEnd) {
				dayResults = append(dayResults, r)
			}
		}

		day := DayStats{Date: dayStart.Format("2006-01-02")}
		summarize(dayResults, &day.TotalChecks, &day.SuccessChecks, &day.WarningChecks,
			&day.ErrorChecks, &day.CriticalChecks, &day.Availability, &day.AvgResponseTime)

		stats.DailyStats = append(stats.DailyStats, day)
	}

	return &stats, nil
}

// summarize computes the shared stat shape over a result slice. Empty input
// yields zero availability, not a division fault.
func summarize(results []models.MonitoringResult, total, success, warning, errorCount, critical *int, availability, avgResponseTime *float64) {
	var responseTimeSum int
	var responseTimeCount int

	for _, r := range results {
		*total++
		switch r.Status {
		case types.StatusSuccess:
			*success++
		case types.StatusWarning:
			*warning++
		case types.StatusError:
			*errorCount++
		case types.StatusCritical:
			*critical++
		}
		if r.ResponseTime != nil {
			responseTimeSum += *r.ResponseTime
			responseTimeCount++
		}
	}

	if *total > 0 {
		*availability = float64(*success) / float64(*total) * 100
	}
	if responseTimeCount > 0 {
		*avgResponseTime = float64(responseTimeSum) / float64(responseTimeCount)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ConfigSummary is one config's dashboard row.
type ConfigSummary struct {
	Config          models.MonitoringConfig  `json:"config"`
	LastResult      *models.MonitoringResult `json:"last_result,omitempty"`
	Availability    float64                  `json:"availability"`
	AvgResponseTime float64                  `json:"avg_response_time"`
}

// Dashboard is the monitoring overview for one tenant.
type Dashboard struct {
	TotalConfigs     int                         `json:"total_configs"`
	ActiveConfigs    int                         `json:"active_configs"`
	Configs          []ConfigSummary             `json:"configs"`
	AlertsBySeverity map[types.AlertSeverity]int `json:"alerts_by_severity"`
	OpenAlerts       []models.Alert              `json:"open_alerts"`
}

// GetDashboard builds the overview: per-config latest result plus 24 h
// availability and response time, and the open alert roster.
func (s *Service) GetDashboard(ctx context.Context, tenantID string) (*Dashboard, error) {
	configs, err := s.store.ListConfigs(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}

	dashboard := Dashboard{
		Configs:          make([]ConfigSummary, 0, len(configs)),
		AlertsBySeverity: make(map[types.AlertSeverity]int),
	}

	since := time.Now().Add(-24 * time.Hour)

	for _, config := range configs {
		dashboard.TotalConfigs++
		if config.IsActive {
			dashboard.ActiveConfigs++
		}

		summary := ConfigSummary{Config: config}

		latest, err := s.store.ListResults(ctx, config.ID, 1, 0)
		if err != nil {
			return nil, err
		}
		if len(latest) > 0 {
			summary.LastResult = &latest[0]
		}

		window, err := s.store.ListResultsSince(ctx, config.ID, since)
		if err != nil {
			return nil, err
		}

		var counts [5]int
		summarize(window, &counts[0], &counts[1], &counts[2], &counts[3], &counts[4],
			&summary.Availability, &summary.AvgResponseTime)

		dashboard.Configs = append(dashboard.Configs, summary)
	}

	alerts, err := s.store.ListAlerts(ctx, tenantID, []types.AlertStatus{types.AlertActive, types.AlertAcknowledged})
	if err != nil {
		return nil, err
	}
	for _, alert := range alerts {
		dashboard.AlertsBySeverity[alert.Severity]++
	}
	dashboard.OpenAlerts = alerts

	return &dashboard, nil
}
