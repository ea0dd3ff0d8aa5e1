package models

import (
	"github.com/vigil-dev/vigil/internal/types"
)

// AlertRecipient subscribes an address to alert notifications for a tenant.
type AlertRecipient struct {
	BaseModel

	TenantID string                    `gorm:"not null;index" json:"tenant_id"`
	Channel  types.NotificationChannel `gorm:"not null" json:"channel"`
	Address  string                    `gorm:"not null" json:"address"`
	IsActive bool                      `gorm:"not null;default:true" json:"is_active"`
}
