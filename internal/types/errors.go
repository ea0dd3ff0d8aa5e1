package types

import "errors"

var (
	// ErrUnsupportedMonitoringType is returned for a monitoring type the
	// probe set does not know how to dispatch.
	ErrUnsupportedMonitoringType = errors.New("unsupported monitoring type")

	// ErrMalformedTarget is returned when a target resource string does not
	// parse as family:identifier or the family does not match the type.
	ErrMalformedTarget = errors.New("malformed target resource")

	// ErrUnsupportedResource is returned when the family is known but the
	// sub-resource identifier is not recognized.
	ErrUnsupportedResource = errors.New("unsupported resource")
)
