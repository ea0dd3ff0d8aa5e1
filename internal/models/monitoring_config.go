package models

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/vigil-dev/vigil/internal/types"
)

type MonitoringConfig struct {
	BaseModel

	TenantID       string               `gorm:"not null;index" json:"tenant_id"`
	Name           string               `gorm:"not null" json:"name"`
	Description    string               `json:"description"`
	MonitoringType types.MonitoringType `gorm:"not null" json:"monitoring_type"`
	CheckInterval  int                  `gorm:"not null" json:"check_interval"` // seconds, >= 30

	// TargetResource keeps the raw family:identifier string as submitted;
	// TargetFamily and TargetIdentifier hold the form parsed at save time.
	TargetResource   string             `gorm:"not null" json:"target_resource"`
	TargetFamily     types.TargetFamily `gorm:"not null" json:"target_family"`
	TargetIdentifier string             `gorm:"not null" json:"target_identifier"`

	Parameters      datatypes.JSON `gorm:"type:jsonb" json:"parameters"`
	AlertThresholds datatypes.JSON `gorm:"type:jsonb" json:"alert_thresholds"`
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Results []MonitoringResult `gorm:"foreignKey:ConfigID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Alerts  []Alert            `gorm:"foreignKey:ConfigID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// Target returns the parsed target resource.
func (c *MonitoringConfig) Target() types.Target {
	return types.Target{Family: c.TargetFamily, Identifier: c.TargetIdentifier}
}

// CheckParameters decodes the JSONB parameters column. An empty column
// decodes to the zero value.
func (c *MonitoringConfig) CheckParameters() (types.CheckParameters, error) {
	var params types.CheckParameters
	if len(c.Parameters) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(c.Parameters, &params); err != nil {
		return types.CheckParameters{}, err
	}
	return params, nil
}

// Thresholds decodes the JSONB alert thresholds column.
func (c *MonitoringConfig) Thresholds() (types.Thresholds, error) {
	var thresholds types.Thresholds
	if len(c.AlertThresholds) == 0 {
		return thresholds, nil
	}
	if err := json.Unmarshal(c.AlertThresholds, &thresholds); err != nil {
		return types.Thresholds{}, err
	}
	return thresholds, nil
}
