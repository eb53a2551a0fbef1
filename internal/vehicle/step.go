package vehicle

import (
	"math"

	"github.com/samber/lo"
)

// Forces holds the intermediate values of one step, all evaluated from the
// state at the start of that step.
type Forces struct {
	Slip         float64
	Tire         float64
	Gravity      float64
	Rolling      float64
	Aero         float64
	Load         float64
	EngineTorque float64
	Clamped      bool
}

// Advance returns the state one Dt after s. Position, velocity and engine
// speed are integrated with the derivatives carried in s; acceleration and
// engine acceleration are then recomputed from forces at s. The order of the
// statements below is part of the model.
func Advance(p Params, s State, throttle, incline float64) (State, Forces) {
	var f Forces
	var next State

	next.X = s.X + s.V*p.Dt

	f.Slip = (p.GearRatio*s.W*p.TireRadius - s.V) / s.V

	f.Tire = p.TireStiffness * f.Slip
	if f.Tire >= p.MaxTireForce {
		f.Tire = p.MaxTireForce
		f.Clamped = true
	}

	f.Gravity = p.Mass * p.Gravity * math.Sin(incline)
	f.Rolling = p.RollingCoeff * s.V
	f.Aero = p.DragCoeff * (s.V * s.V)
	f.Load = f.Aero + f.Rolling + f.Gravity

	next.V = s.V + s.A*p.Dt
	next.A = (f.Tire - f.Load) / p.Mass

	f.EngineTorque = throttle * (p.A0 + p.A1*s.W + p.A2*(s.W*s.W))

	next.W = s.W + s.WDot*p.Dt
	next.WDot = (f.EngineTorque - p.GearRatio*p.TireRadius*f.Load) / p.EngineInertia

	return next, f
}

// AdvanceHardened is Advance with guards: throttle is clamped to [0, 1] and
// the tire force to [-F_max, F_max]. When the vehicle is not moving forward
// the slip ratio is reported as zero and the tire force is F_max while the
// wheel turns forward, zero otherwise, so a spinning engine still launches
// the vehicle from standstill. Its output differs from Advance whenever a
// guard triggers.
func AdvanceHardened(p Params, s State, throttle, incline float64) (State, Forces) {
	throttle = lo.Clamp(throttle, 0, 1)

	var f Forces
	var next State

	next.X = s.X + s.V*p.Dt

	wheel := p.GearRatio * s.W * p.TireRadius
	switch {
	case s.V > 0:
		f.Slip = (wheel - s.V) / s.V
		raw := p.TireStiffness * f.Slip
		f.Tire = lo.Clamp(raw, -p.MaxTireForce, p.MaxTireForce)
		f.Clamped = f.Tire != raw
	case wheel > 0:
		// Unbounded slip at standstill saturates.
		f.Tire = p.MaxTireForce
		f.Clamped = true
	}

	f.Gravity = p.Mass * p.Gravity * math.Sin(incline)
	f.Rolling = p.RollingCoeff * s.V
	f.Aero = p.DragCoeff * (s.V * s.V)
	f.Load = f.Aero + f.Rolling + f.Gravity

	next.V = s.V + s.A*p.Dt
	next.A = (f.Tire - f.Load) / p.Mass

	f.EngineTorque = throttle * (p.A0 + p.A1*s.W + p.A2*(s.W*s.W))

	next.W = s.W + s.WDot*p.Dt
	next.WDot = (f.EngineTorque - p.GearRatio*p.TireRadius*f.Load) / p.EngineInertia

	return next, f
}
