package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/vehicle"
)

// ParameterSweep varies one named vehicle parameter across [Min, Max].
type ParameterSweep struct {
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	Base     vehicle.Params
	Init     vehicle.State
	Profile  func() profile.Profile
	Metrics  func() []Metric
	Parallel int
}

type SweepResult struct {
	ParamValue float64
	Final      vehicle.State
	Metrics    map[string]float64
}

func (p *ParameterSweep) Values() []float64 {
	if p.NumSteps <= 1 {
		return []float64{p.Min}
	}
	step := (p.Max - p.Min) / float64(p.NumSteps-1)
	values := make([]float64, p.NumSteps)
	for i := range values {
		values[i] = p.Min + float64(i)*step
	}
	return values
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, cfg Config) ([]SweepResult, error) {
	values := sweep.Values()
	jobs := make([]Job, len(values))
	for i, v := range values {
		params := sweep.Base
		if err := params.SetParam(sweep.Param, v); err != nil {
			return nil, err
		}
		jobs[i] = Job{
			Name:    fmt.Sprintf("%s=%g", sweep.Param, v),
			Params:  params,
			Init:    sweep.Init,
			Profile: sweep.Profile,
		}
	}

	ens := NewEnsemble(jobs, sweep.Parallel)
	if sweep.Metrics != nil {
		ens.WithMetrics(sweep.Metrics)
	}
	results, err := ens.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(values))
	for i, res := range results {
		final, _ := res.Final()
		out[i] = SweepResult{
			ParamValue: values[i],
			Final:      final.State,
			Metrics:    res.Metrics,
		}
	}
	return out, nil
}
