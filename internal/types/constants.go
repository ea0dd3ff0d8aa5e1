package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// MonitoringType selects the probe family for a config.
type MonitoringType string

const (
	MonitoringInfrastructure MonitoringType = "INFRASTRUCTURE"
	MonitoringApplication    MonitoringType = "APPLICATION"
	MonitoringUserExperience MonitoringType = "USER_EXPERIENCE"
)

func (t MonitoringType) Valid() bool {
	switch t {
	case MonitoringInfrastructure, MonitoringApplication, MonitoringUserExperience:
		return true
	}
	return false
}

// CheckStatus is the outcome of a single check.
type CheckStatus string

const (
	StatusSuccess  CheckStatus = "SUCCESS"
	StatusWarning  CheckStatus = "WARNING"
	StatusError    CheckStatus = "ERROR"
	StatusCritical CheckStatus = "CRITICAL"
)

// rank orders check statuses from least to most severe.
func (s CheckStatus) rank() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusError:
		return 2
	case StatusCritical:
		return 3
	}
	return 0
}

// MoreSevere reports whether s outranks other.
func (s CheckStatus) MoreSevere(other CheckStatus) bool {
	return s.rank() > other.rank()
}

// Max returns the more severe of the two statuses.
func (s CheckStatus) Max(other CheckStatus) CheckStatus {
	if other.MoreSevere(s) {
		return other
	}
	return s
}

// AlertSeverity ranks alerts, distinct from the check status enum.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityError    AlertSeverity = "ERROR"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	AlertActive       AlertStatus = "ACTIVE"
	AlertAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertResolved     AlertStatus = "RESOLVED"
)

// NotificationChannel is a delivery transport for alert notifications.
type NotificationChannel string

const (
	ChannelEmail   NotificationChannel = "EMAIL"
	ChannelSMS     NotificationChannel = "SMS"
	ChannelWebhook NotificationChannel = "WEBHOOK"
)

func (c NotificationChannel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelWebhook:
		return true
	}
	return false
}

// NotificationStatus records the outcome of one delivery attempt.
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "SENT"
	NotificationFailed NotificationStatus = "FAILED"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
