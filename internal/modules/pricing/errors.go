package pricing

import "errors"

// ErrorKind classifies why a breakdown cannot be used as-is. Kinds are data
// on the breakdown, never returned as Go errors.
type ErrorKind string

const (
	ErrOutOfServiceArea         ErrorKind = "OutOfServiceArea"
	ErrVehicleUnavailableInZone ErrorKind = "VehicleUnavailableInZone"
	ErrLuggageCapacityExceeded  ErrorKind = "LuggageCapacityExceeded"
	ErrInvalidVehicleConfig     ErrorKind = "InvalidVehicleConfig"
)

// Fatal reports whether the kind stops the computation with a zero total.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrOutOfServiceArea, ErrVehicleUnavailableInZone, ErrInvalidVehicleConfig:
		return true
	default:
		return false
	}
}

// Message is the user-facing text for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case ErrOutOfServiceArea:
		return "address outside service area"
	case ErrVehicleUnavailableInZone:
		return "vehicle not available in this zone, please choose another vehicle"
	case ErrLuggageCapacityExceeded:
		return "too much luggage for this vehicle"
	case ErrInvalidVehicleConfig:
		return "vehicle pricing is not configured"
	default:
		return ""
	}
}

// ErrInvalidZoneMatcher is returned when a package zone entry cannot be parsed.
var ErrInvalidZoneMatcher = errors.New("invalid zone matcher")
