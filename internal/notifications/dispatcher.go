// Package notifications fans alerts out to recipients over email, SMS and
// webhooks, recording one NotificationLog row per delivery attempt.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

// Recipient is one address on one channel.
type Recipient struct {
	Channel types.NotificationChannel
	Address string
}

// LogStore persists delivery outcomes.
type LogStore interface {
	CreateNotificationLog(ctx context.Context, entry *models.NotificationLog) error
}

// RecipientSource resolves a tenant's subscribed recipients.
type RecipientSource interface {
	ListRecipients(ctx context.Context, tenantID string) ([]models.AlertRecipient, error)
}

// EmailSender delivers one HTML email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMSSender delivers one text message.
type SMSSender interface {
	Send(ctx context.Context, to, message string) error
}

// WebhookSender POSTs one JSON envelope.
type WebhookSender interface {
	Send(ctx context.Context, url string, payload WebhookPayload) error
}

// Dispatcher resolves recipients per tenant and attempts delivery on each,
// in sequence. One recipient's failure never aborts delivery to the rest,
// and no failure escalates to the caller: operators discover failed
// deliveries through the notification log.
type Dispatcher struct {
	email      EmailSender
	sms        SMSSender
	webhook    WebhookSender
	logs       LogStore
	recipients RecipientSource
	defaults   []Recipient
	logger     *zap.Logger
}

func NewDispatcher(email EmailSender, sms SMSSender, webhook WebhookSender, logs LogStore, recipients RecipientSource, defaults []Recipient, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		email:      email,
		sms:        sms,
		webhook:    webhook,
		logs:       logs,
		recipients: recipients,
		defaults:   defaults,
		logger:     logger.Named("notifications"),
	}
}

// Dispatch delivers an alert to every resolved recipient.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *models.Alert, config *models.MonitoringConfig) {
	recipients := d.resolve(ctx, config.TenantID)
	if len(recipients) == 0 {
		d.logger.Warn("no recipients for alert",
			zap.Uint("alert_id", alert.ID),
			zap.String("tenant_id", config.TenantID))
		return
	}

	for _, recipient := range recipients {
		status := types.NotificationSent
		errorMessage := ""

		if err := d.deliver(ctx, recipient, alert, config); err != nil {
			status = types.NotificationFailed
			errorMessage = err.Error()
			d.logger.Error("notification delivery failed",
				zap.Uint("alert_id", alert.ID),
				zap.String("channel", string(recipient.Channel)),
				zap.String("recipient", recipient.Address),
				zap.Error(err))
		}

		entry := models.NotificationLog{
			AlertID:      alert.ID,
			Channel:      recipient.Channel,
			Recipient:    recipient.Address,
			Status:       status,
			ErrorMessage: errorMessage,
		}

		if err := d.logs.CreateNotificationLog(ctx, &entry); err != nil {
			d.logger.Error("failed to record notification log",
				zap.Uint("alert_id", alert.ID),
				zap.String("recipient", recipient.Address),
				zap.Error(err))
		}
	}
}

func (d *Dispatcher) resolve(ctx context.Context, tenantID string) []Recipient {
	if d.recipients != nil {
		subscribed, err := d.recipients.ListRecipients(ctx, tenantID)
		if err != nil {
			d.logger.Error("failed to resolve recipients, using defaults",
				zap.String("tenant_id", tenantID), zap.Error(err))
		} else if len(subscribed) > 0 {
			recipients := make([]Recipient, 0, len(subscribed))
			for _, r := range subscribed {
				recipients = append(recipients, Recipient{Channel: r.Channel, Address: r.Address})
			}
			return recipients
		}
	}
	return d.defaults
}

func (d *Dispatcher) deliver(ctx context.Context, recipient Recipient, alert *models.Alert, config *models.MonitoringConfig) error {
	switch recipient.Channel {
	case types.ChannelEmail:
		subject := "Alerta: " + alert.Message
		return d.email.Send(ctx, recipient.Address, subject, emailBody(alert, config))
	case types.ChannelSMS:
		return d.sms.Send(ctx, recipient.Address, alert.Message)
	case types.ChannelWebhook:
		return d.webhook.Send(ctx, recipient.Address, newWebhookPayload(alert, config))
	default:
		return fmt.Errorf("unsupported notification channel: %s", recipient.Channel)
	}
}

// emailBody renders the alert email: severity, message, timestamp, the
// monitored resource and the pretty-printed details snapshot.
func emailBody(alert *models.Alert, config *models.MonitoringConfig) string {
	var details string
	if len(alert.Details) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(alert.Details, &decoded); err == nil {
			if pretty, err := json.MarshalIndent(decoded, "", "  "); err == nil {
				details = fmt.Sprintf("<pre>%s</pre>", pretty)
			}
		}
	}

	return fmt.Sprintf(`<h2>Alerta de Monitoreo</h2>
<p><strong>Severidad:</strong> %s</p>
<p><strong>Mensaje:</strong> %s</p>
<p><strong>Fecha y hora:</strong> %s</p>
<h3>Detalles</h3>
<p><strong>Recurso monitoreado:</strong> %s (%s)</p>
<p><strong>Tipo de monitoreo:</strong> %s</p>
%s
<p>Acceda al panel de monitoreo para más información.</p>`,
		alert.Severity,
		alert.Message,
		alert.Timestamp.Format(time.RFC1123),
		config.Name,
		config.TargetResource,
		config.MonitoringType,
		details)
}
