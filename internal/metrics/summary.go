package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/longsim/internal/sim"
	"github.com/san-kum/longsim/internal/vehicle"
)

// Summary describes one signal of a run.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Final  float64 `json:"final"`
}

// Summarize ignores non-finite values. An empty or fully non-finite input
// yields a zero Summary.
func Summarize(values []float64) Summary {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(finite, nil)
	if len(finite) == 1 {
		std = 0
	}
	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(finite),
		Max:    floats.Max(finite),
		Final:  finite[len(finite)-1],
	}
}

// SummarizeRun summarizes velocity, acceleration and engine speed.
func SummarizeRun(r *sim.Result) map[string]Summary {
	return map[string]Summary{
		"velocity":     Summarize(r.Velocities()),
		"acceleration": Summarize(r.Accelerations()),
		"engine_speed": Summarize(r.EngineSpeeds()),
		"throttle":     Summarize(r.Throttles()),
	}
}

// Defaults returns the metrics attached to every CLI run.
func Defaults(p vehicle.Params) []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(p.Mass),
		NewClimb(p.Dt),
		NewThrottleEffort(),
		NewStability(100.0),
		NewMaxVelocity(),
	}
}
