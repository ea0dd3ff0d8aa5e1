package types

import (
	"encoding/json"
	"fmt"
)

// Thresholds holds the per-config alert boundaries. Any boundary may be
// absent, meaning no ceiling for that level.
type Thresholds struct {
	Warning  *float64 `json:"warning,omitempty"`
	Error    *float64 `json:"error,omitempty"`
	Critical *float64 `json:"critical,omitempty"`
}

// APIParameters configures an api:<url> check.
type APIParameters struct {
	Method    string            `json:"method,omitempty"`     // default GET
	TimeoutMs int               `json:"timeout,omitempty"`    // default 5000
	Headers   map[string]string `json:"headers,omitempty"`
	Body      string            `json:"data,omitempty"`
}

// DatabaseParameters configures a database:<resource> check.
type DatabaseParameters struct {
	Driver    string `json:"driver"` // "postgres" or "mysql"
	DSN       string `json:"dsn"`
	TimeoutMs int    `json:"timeout,omitempty"` // default 5000
}

// ServerParameters configures a server:<resource> check. The mount path is
// only consulted for disk usage.
type ServerParameters struct {
	Path string `json:"path,omitempty"` // default "/"
}

// CheckParameters is the closed union of per-family parameter records. The
// family of the parsed target decides which member is populated.
type CheckParameters struct {
	API      *APIParameters      `json:"api,omitempty"`
	Database *DatabaseParameters `json:"database,omitempty"`
	Server   *ServerParameters   `json:"server,omitempty"`
}

// Validate checks that the parameters required by the target family are
// present and consistent.
func (p CheckParameters) Validate(target Target) error {
	switch target.Family {
	case FamilyDatabase:
		if p.Database == nil {
			return fmt.Errorf("database target %q requires database parameters", target.Identifier)
		}
		if p.Database.Driver != "postgres" && p.Database.Driver != "mysql" {
			return fmt.Errorf("unsupported database driver: %q", p.Database.Driver)
		}
		if p.Database.DSN == "" {
			return fmt.Errorf("database target %q requires a dsn", target.Identifier)
		}
	case FamilyAPI:
		if p.API != nil && p.API.TimeoutMs < 0 {
			return fmt.Errorf("api timeout must not be negative")
		}
	}
	return nil
}

// MarshalParameters round-trips parameters into the JSONB column format.
func MarshalParameters(p CheckParameters) (json.RawMessage, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal check parameters: %w", err)
	}
	return raw, nil
}
