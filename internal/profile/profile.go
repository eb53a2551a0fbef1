// Package profile supplies per-step driver inputs: a throttle command keyed
// on elapsed time and a road incline keyed on position.
package profile

import (
	"github.com/san-kum/longsim/internal/vehicle"
)

// Profile returns the throttle and incline (radians) to apply at time t to a
// vehicle in state s.
type Profile interface {
	Inputs(t float64, s vehicle.State) (throttle, incline float64)
}

// Func adapts a function to Profile.
type Func func(t float64, s vehicle.State) (float64, float64)

func (f Func) Inputs(t float64, s vehicle.State) (float64, float64) { return f(t, s) }

// Throttle is a time-keyed throttle command.
type Throttle interface {
	At(t float64) float64
}

// Incline is a position-keyed road angle.
type Incline interface {
	At(x float64) float64
}

// Constant holds both inputs fixed.
type Constant struct {
	Throttle float64
	Incline  float64
}

func (c Constant) Inputs(float64, vehicle.State) (float64, float64) {
	return c.Throttle, c.Incline
}

type composed struct {
	throttle Throttle
	incline  Incline
}

// Compose pairs a throttle schedule with a road. A nil incline is a flat road.
func Compose(throttle Throttle, incline Incline) Profile {
	return &composed{throttle: throttle, incline: incline}
}

func (c *composed) Inputs(t float64, s vehicle.State) (float64, float64) {
	var angle float64
	if c.incline != nil {
		angle = c.incline.At(s.X)
	}
	return c.throttle.At(t), angle
}
