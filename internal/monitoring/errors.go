package monitoring

import "errors"

var (
	// ErrConfigInactive is returned when a check is triggered on a config
	// whose isActive gate is off.
	ErrConfigInactive = errors.New("monitoring config is inactive")

	// ErrInvalidTransition is returned for an alert lifecycle move outside
	// ACTIVE -> ACKNOWLEDGED -> RESOLVED (resolving straight from ACTIVE is
	// allowed; anything touching a RESOLVED alert is not).
	ErrInvalidTransition = errors.New("invalid alert state transition")

	// ErrValidation wraps config input problems rejected at save time.
	ErrValidation = errors.New("invalid monitoring config")
)
