package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/vigil-dev/vigil/internal/types"
)

// MonitoringResult is the immutable record of one check. Rows are only ever
// created; they disappear through cascading config deletion or retention
// cleanup.
type MonitoringResult struct {
	BaseModel

	ConfigID     uint              `gorm:"not null;index" json:"config_id"`
	Status       types.CheckStatus `gorm:"not null" json:"status"`
	ResponseTime *int              `json:"response_time,omitempty"` // ms
	Value        *float64          `json:"value,omitempty"`
	Details      datatypes.JSON    `gorm:"type:jsonb" json:"details"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Timestamp    time.Time         `gorm:"not null;index" json:"timestamp"`

	// Relationships
	Config MonitoringConfig `gorm:"foreignKey:ConfigID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
