package profile

import (
	"errors"
	"fmt"
)

var ErrBreakpoints = errors.New("profile: breakpoints must be non-empty and strictly increasing in time")

// Breakpoint pins the throttle to Value at time T.
type Breakpoint struct {
	T     float64 `yaml:"t" json:"t"`
	Value float64 `yaml:"value" json:"value"`
}

// Ramp interpolates linearly between breakpoints and holds the end values
// outside them.
type Ramp struct {
	points []Breakpoint
}

func NewRamp(points ...Breakpoint) (*Ramp, error) {
	if len(points) == 0 {
		return nil, ErrBreakpoints
	}
	for i := 1; i < len(points); i++ {
		if !(points[i].T > points[i-1].T) {
			return nil, fmt.Errorf("%w: t[%d]=%g after t[%d]=%g", ErrBreakpoints, i, points[i].T, i-1, points[i-1].T)
		}
	}
	cp := make([]Breakpoint, len(points))
	copy(cp, points)
	return &Ramp{points: cp}, nil
}

// MustRamp is NewRamp for fixed schedules known to be valid.
func MustRamp(points ...Breakpoint) *Ramp {
	r, err := NewRamp(points...)
	if err != nil {
		panic(err)
	}
	return r
}

// At evaluates each segment as start + slope*(t - t0), slope computed from
// the segment's end values.
func (r *Ramp) At(t float64) float64 {
	first := r.points[0]
	if t <= first.T {
		return first.Value
	}
	for i := 1; i < len(r.points); i++ {
		p0, p1 := r.points[i-1], r.points[i]
		if t < p1.T {
			slope := (p1.Value - p0.Value) / (p1.T - p0.T)
			return p0.Value + slope*(t-p0.T)
		}
	}
	return r.points[len(r.points)-1].Value
}

func (r *Ramp) Points() []Breakpoint {
	cp := make([]Breakpoint, len(r.points))
	copy(cp, r.points)
	return cp
}

// Hold is a constant throttle.
type Hold float64

func (h Hold) At(float64) float64 { return float64(h) }
