package models

import (
	"gorm.io/gorm"

	"github.com/vigil-dev/vigil/internal/types"
)

// NotificationLog records one delivery attempt to one recipient. Attempts
// are never retried automatically; a FAILED row stays FAILED.
type NotificationLog struct {
	gorm.Model

	AlertID      uint                      `gorm:"not null;index" json:"alert_id"`
	Channel      types.NotificationChannel `gorm:"not null" json:"channel"`
	Recipient    string                    `gorm:"not null" json:"recipient"`
	Status       types.NotificationStatus  `gorm:"not null" json:"status"`
	ErrorMessage string                    `json:"error_message,omitempty"`

	// Relationships
	Alert Alert `gorm:"foreignKey:AlertID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
