package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/vehicle"
)

// Job describes one independent vehicle run.
type Job struct {
	Name    string
	Params  vehicle.Params
	Init    vehicle.State
	Profile func() profile.Profile
	Options []vehicle.Option
	// Config, when set, replaces the ensemble-wide run config for this job.
	Config *Config
	// Metrics, when set, are used instead of the ensemble's metric factory.
	// They must not be shared with another job.
	Metrics []Metric
}

// Ensemble runs jobs concurrently. Each job gets its own integrator; nothing
// mutable is shared between runs.
type Ensemble struct {
	jobs    []Job
	metrics func() []Metric
	limit   int
}

func NewEnsemble(jobs []Job, limit int) *Ensemble {
	return &Ensemble{jobs: jobs, limit: limit}
}

// WithMetrics sets a factory producing fresh metrics for every job.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.jobs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, job := range e.jobs {
		i, job := i, job
		g.Go(func() error {
			opts := append([]vehicle.Option{vehicle.WithParams(job.Params), vehicle.WithState(job.Init)}, job.Options...)
			s := New(vehicle.New(opts...), job.Profile())
			metrics := job.Metrics
			if metrics == nil && e.metrics != nil {
				metrics = e.metrics()
			}
			for _, m := range metrics {
				s.AddMetric(m)
			}

			runCfg := cfg
			if job.Config != nil {
				runCfg = *job.Config
			}
			res, err := s.Run(ctx, runCfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
