package monitoring

import "github.com/vigil-dev/vigil/internal/types"

// Classify maps a numeric value to a status using the config's thresholds.
// Evaluation order is strict: critical first, then error, then warning, each
// with an inclusive >= boundary. Absent boundaries mean no ceiling for that
// level; a nil value skips numeric classification entirely.
func Classify(value *float64, thresholds types.Thresholds) types.CheckStatus {
	if value == nil {
		return types.StatusSuccess
	}

	switch {
	case thresholds.Critical != nil && *value >= *thresholds.Critical:
		return types.StatusCritical
	case thresholds.Error != nil && *value >= *thresholds.Error:
		return types.StatusError
	case thresholds.Warning != nil && *value >= *thresholds.Warning:
		return types.StatusWarning
	default:
		return types.StatusSuccess
	}
}
