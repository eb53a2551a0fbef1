package vehicle

import (
	"errors"
	"fmt"
)

var (
	// ErrParameterBounds indicates a parameter value is outside its valid range.
	ErrParameterBounds = errors.New("vehicle: parameter out of valid bounds")

	// ErrUnknownParam indicates SetParam was given a name it does not know.
	ErrUnknownParam = errors.New("vehicle: unknown parameter")
)

// WarningKind classifies a DomainWarning.
type WarningKind int

const (
	// WarnNonPositiveVelocity: v <= 0 at the start of a step, slip ratio undefined.
	WarnNonPositiveVelocity WarningKind = iota
	// WarnThrottleRange: throttle outside [0, 1], torque map extrapolated.
	WarnThrottleRange
	// WarnTireForceClamped: c*s reached F_max.
	WarnTireForceClamped
	// WarnNegativeTireForce: tire force below zero, no lower clamp applied.
	WarnNegativeTireForce
	// WarnNonFinite: state contains NaN or Inf after the step.
	WarnNonFinite
)

func (k WarningKind) String() string {
	switch k {
	case WarnNonPositiveVelocity:
		return "non_positive_velocity"
	case WarnThrottleRange:
		return "throttle_range"
	case WarnTireForceClamped:
		return "tire_force_clamped"
	case WarnNegativeTireForce:
		return "negative_tire_force"
	case WarnNonFinite:
		return "non_finite_state"
	default:
		return "unknown"
	}
}

// DomainWarning reports a step whose inputs or results fall outside the
// range the model is meant for. Warnings are informational only.
type DomainWarning struct {
	Kind    WarningKind
	Step    int
	Value   float64
	Message string
}

func (w DomainWarning) Error() string {
	return fmt.Sprintf("step %d: %s: %s (%g)", w.Step, w.Kind, w.Message, w.Value)
}
