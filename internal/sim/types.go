package sim

import (
	"fmt"

	"github.com/san-kum/longsim/internal/vehicle"
)

// Sample is the vehicle state at one time index together with the inputs
// applied from that state.
type Sample struct {
	Step     int           `json:"step"`
	T        float64       `json:"t"`
	State    vehicle.State `json:"state"`
	Throttle float64       `json:"throttle"`
	Incline  float64       `json:"incline"`
}

type Observer interface {
	OnStep(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnStep(s Sample) { f(s) }

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Config struct {
	// Duration in seconds; the run records round(Duration/dt)+1 samples.
	Duration float64
	// Steps overrides Duration when positive.
	Steps int
	// ValidateState stops the run at the first non-finite state.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{Duration: 20.0}
}

// Samples returns the number of time indices a run records for step dt.
func (c Config) Samples(dt float64) int {
	if c.Steps > 0 {
		return c.Steps
	}
	return int(c.Duration/dt+0.5) + 1
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.T
	}
	return out
}

func (r *Result) Positions() []float64 {
	return r.column(func(s vehicle.State) float64 { return s.X })
}

func (r *Result) Velocities() []float64 {
	return r.column(func(s vehicle.State) float64 { return s.V })
}

func (r *Result) Accelerations() []float64 {
	return r.column(func(s vehicle.State) float64 { return s.A })
}

func (r *Result) EngineSpeeds() []float64 {
	return r.column(func(s vehicle.State) float64 { return s.W })
}

func (r *Result) Throttles() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Throttle
	}
	return out
}

// Final returns the last recorded sample.
func (r *Result) Final() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

func (r *Result) column(get func(vehicle.State) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = get(s.State)
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
