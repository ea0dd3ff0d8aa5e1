package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vigil-dev/vigil/internal/types"
)

// Alert is a stateful incident opened when a check produces a non-success
// status and no other alert is active for the same config. The partial
// unique index created in db.Migrate enforces at most one ACTIVE alert per
// config.
type Alert struct {
	gorm.Model

	ConfigID  uint                `gorm:"not null;index" json:"config_id"`
	Severity  types.AlertSeverity `gorm:"not null" json:"severity"`
	Message   string              `gorm:"not null" json:"message"`
	Details   datatypes.JSON      `gorm:"type:jsonb" json:"details"`
	Status    types.AlertStatus   `gorm:"not null" json:"status"`
	Timestamp time.Time           `gorm:"not null;index" json:"timestamp"`

	AcknowledgedByID *uint      `json:"acknowledged_by_id,omitempty"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`

	// Relationships
	Config           MonitoringConfig  `gorm:"foreignKey:ConfigID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	NotificationLogs []NotificationLog `gorm:"foreignKey:AlertID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
