package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/vehicle"
)

var ErrNoProfile = errors.New("sim: no driving profile")

// Simulator feeds profile inputs into one vehicle on a fixed time base
// t_i = i*dt and records the state before each step.
type Simulator struct {
	veh       *vehicle.Integrator
	profile   profile.Profile
	metrics   []Metric
	observers []Observer
}

func New(veh *vehicle.Integrator, prof profile.Profile) *Simulator {
	return &Simulator{
		veh:       veh,
		profile:   prof,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Vehicle() *vehicle.Integrator { return s.veh }

// Run starts from the vehicle's current state. Sample i holds the state after
// i steps; the run takes one step per sample.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validate(cfg); err != nil {
		return nil, err
	}

	dt := s.veh.Params().Dt
	n := cfg.Samples(dt)
	result := &Result{
		Samples: make([]Sample, 0, n),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		t := float64(i) * dt
		x := s.veh.State()
		throttle, incline := s.profile.Inputs(t, x)

		sample := Sample{Step: i, T: t, State: x, Throttle: throttle, Incline: incline}
		result.Samples = append(result.Samples, sample)

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(sample)
		}

		s.veh.Step(throttle, incline)
		result.StepsTaken++

		if cfg.ValidateState && !s.veh.State().IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}
	}

	s.collect(result)
	return result, nil
}

// RunWithCallback steps until the callback returns false or the duration is
// reached, without recording samples.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Sample) bool) error {
	if err := s.validate(cfg); err != nil {
		return err
	}

	dt := s.veh.Params().Dt
	n := cfg.Samples(dt)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * dt
		x := s.veh.State()
		throttle, incline := s.profile.Inputs(t, x)
		if !callback(Sample{Step: i, T: t, State: x, Throttle: throttle, Incline: incline}) {
			return nil
		}

		s.veh.Step(throttle, incline)

		if cfg.ValidateState && !s.veh.State().IsValid() {
			return fmt.Errorf("invalid state at t=%.4f", t+dt)
		}
	}
	return nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validate(cfg Config) error {
	if s.profile == nil {
		return ErrNoProfile
	}
	if err := s.veh.Params().Validate(); err != nil {
		return err
	}
	if cfg.Steps <= 0 && cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
