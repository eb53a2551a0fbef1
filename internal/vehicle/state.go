package vehicle

import "math"

const (
	DefaultX    = 0.0
	DefaultV    = 5.0
	DefaultA    = 0.0
	DefaultW    = 100.0
	DefaultWDot = 0.0
)

// State is the evolving part of the model. V >= 0 is assumed; the rolling
// resistance term and the slip ratio are only meaningful for forward motion.
type State struct {
	X    float64 `yaml:"x" json:"x"`       // position, m
	V    float64 `yaml:"v" json:"v"`       // velocity, m/s
	A    float64 `yaml:"a" json:"a"`       // acceleration, m/s^2
	W    float64 `yaml:"w" json:"w"`       // engine angular velocity, rad/s
	WDot float64 `yaml:"wdot" json:"wdot"` // engine angular acceleration, rad/s^2
}

func DefaultState() State {
	return State{X: DefaultX, V: DefaultV, A: DefaultA, W: DefaultW, WDot: DefaultWDot}
}

func (s State) IsValid() bool {
	for _, v := range s.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Slice returns the state as [x, v, a, w, wdot].
func (s State) Slice() []float64 {
	return []float64{s.X, s.V, s.A, s.W, s.WDot}
}
