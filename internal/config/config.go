package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vigil-dev/vigil/internal/notifications"
	"github.com/vigil-dev/vigil/internal/types"
)

// Config is the process configuration, read from the environment (a .env
// file is loaded first by main).
type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWTSecret   string

	SMTP   notifications.SMTPConfig
	Twilio notifications.TwilioConfig

	WebhookTimeoutSeconds int

	// DefaultRecipients is the fallback fan-out list used when a tenant has
	// no subscribed recipients, encoded "CHANNEL:address" comma-separated,
	// e.g. "EMAIL:admin@example.com,SMS:+573001112233".
	DefaultRecipients []notifications.Recipient

	SchedulerEnabled bool
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("WEBHOOK_TIMEOUT_SECONDS", 10)
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("ALERT_RECIPIENTS", "EMAIL:admin@example.com,EMAIL:alerts@example.com")

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		SMTP: notifications.SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Twilio: notifications.TwilioConfig{
			AccountSID: v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  v.GetString("TWILIO_AUTH_TOKEN"),
			FromNumber: v.GetString("TWILIO_FROM_NUMBER"),
		},
		WebhookTimeoutSeconds: v.GetInt("WEBHOOK_TIMEOUT_SECONDS"),
		SchedulerEnabled:      v.GetBool("SCHEDULER_ENABLED"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	recipients, err := parseRecipients(v.GetString("ALERT_RECIPIENTS"))
	if err != nil {
		return nil, err
	}
	cfg.DefaultRecipients = recipients

	return cfg, nil
}

func parseRecipients(raw string) ([]notifications.Recipient, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var recipients []notifications.Recipient
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		channel, address, found := strings.Cut(entry, ":")
		if !found || address == "" {
			return nil, fmt.Errorf("invalid ALERT_RECIPIENTS entry: %q", entry)
		}

		switch types.NotificationChannel(strings.ToUpper(channel)) {
		case types.ChannelEmail, types.ChannelSMS, types.ChannelWebhook:
			recipients = append(recipients, notifications.Recipient{
				Channel: types.NotificationChannel(strings.ToUpper(channel)),
				Address: address,
			})
		default:
			return nil, fmt.Errorf("unsupported channel in ALERT_RECIPIENTS: %q", channel)
		}
	}

	return recipients, nil
}
