package types

import (
	"fmt"
	"strings"
)

// TargetFamily is the discriminant of a parsed target resource.
type TargetFamily string

const (
	FamilyServer      TargetFamily = "server"
	FamilyDatabase    TargetFamily = "database"
	FamilyAPI         TargetFamily = "api"
	FamilyService     TargetFamily = "service"
	FamilyPageLoad    TargetFamily = "pageload"
	FamilyErrors      TargetFamily = "errors"
	FamilyInteraction TargetFamily = "interaction"
)

// Target is the parsed form of a config's target resource string,
// e.g. "server:cpu" or "api:https://example.com/health". It is parsed
// once when a config is saved so malformed targets are rejected there
// instead of on every check.
type Target struct {
	Family     TargetFamily `json:"family"`
	Identifier string       `json:"identifier"`
}

func (t Target) String() string {
	return string(t.Family) + ":" + t.Identifier
}

// familiesByType lists the target families each monitoring type accepts.
var familiesByType = map[MonitoringType][]TargetFamily{
	MonitoringInfrastructure: {FamilyServer, FamilyDatabase},
	MonitoringApplication:    {FamilyAPI, FamilyService},
	MonitoringUserExperience: {FamilyPageLoad, FamilyErrors, FamilyInteraction},
}

// ParseTarget splits a raw target resource into its family and identifier
// and validates the family against the monitoring type.
func ParseTarget(monitoringType MonitoringType, raw string) (Target, error) {
	prefix, identifier, found := strings.Cut(raw, ":")
	if !found || prefix == "" || identifier == "" {
		return Target{}, fmt.Errorf("%w: %q", ErrMalformedTarget, raw)
	}

	family := TargetFamily(strings.ToLower(prefix))

	allowed, ok := familiesByType[monitoringType]
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", ErrUnsupportedMonitoringType, monitoringType)
	}

	for _, f := range allowed {
		if family == f {
			return Target{Family: family, Identifier: identifier}, nil
		}
	}

	return Target{}, fmt.Errorf("%w: family %q is not valid for %s checks", ErrMalformedTarget, prefix, monitoringType)
}
