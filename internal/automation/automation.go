// Package automation runs scripted scenarios and Monte Carlo studies on top
// of the simulation runner.
package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/longsim/internal/config"
	"github.com/san-kum/longsim/internal/metrics"
	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/sim"
	"github.com/san-kum/longsim/internal/storage"
	"github.com/san-kum/longsim/internal/vehicle"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is one run. Preset, then Config, then the inline fields are
// layered over the defaults.
type ScenarioStep struct {
	Name     string               `yaml:"name"`
	Preset   string               `yaml:"preset"`
	Config   string               `yaml:"config"`
	Profile  string               `yaml:"profile"`
	Duration float64              `yaml:"duration"`
	Throttle []profile.Breakpoint `yaml:"throttle"`
	Params   map[string]float64   `yaml:"params"`
	Save     bool                 `yaml:"save"`
}

type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file. Step config paths are
// resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	scenario.dir = filepath.Dir(path)
	return &scenario, nil
}

// Resolve builds the run configuration for one step.
func (sc *Scenario) Resolve(step ScenarioStep) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if step.Preset != "" {
		if cfg = config.GetPreset(step.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", step.Preset)
		}
	}
	if step.Config != "" {
		path := step.Config
		if !filepath.IsAbs(path) && sc.dir != "" {
			path = filepath.Join(sc.dir, path)
		}
		loaded, err := config.LoadOver(path, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if step.Profile != "" {
		cfg.Profile = step.Profile
		cfg.Throttle, cfg.Road = nil, nil
	}
	if step.Duration > 0 {
		cfg.Duration = step.Duration
	}
	if len(step.Throttle) > 0 {
		cfg.Throttle = step.Throttle
	}
	for k, v := range step.Params {
		if err := cfg.Vehicle.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all steps in order. Steps marked save are written to
// store when it is non-nil. On error the results of the completed steps are
// returned with it.
func RunScenario(ctx context.Context, sc *Scenario, store *storage.Store, log logrus.FieldLogger) ([]StepResult, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	reg := profile.NewRegistry()
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.WithFields(logrus.Fields{"step": i + 1, "of": len(sc.Steps), "name": name}).Info("running scenario step")

		cfg, err := sc.Resolve(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		prof, err := cfg.BuildProfile(reg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		s := sim.New(vehicle.New(cfg.Options(vehicle.NewLogSink(log))...), prof)
		for _, m := range metrics.Defaults(cfg.Vehicle) {
			s.AddMetric(m)
		}

		res, err := s.Run(ctx, sim.Config{Duration: cfg.Duration, ValidateState: cfg.ValidateState})
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Config: cfg, Result: res}
		if step.Save && store != nil {
			sr.RunID, err = store.Save(storage.RunMetadata{
				Profile:  cfg.ProfileName(),
				Dt:       cfg.Vehicle.Dt,
				Duration: cfg.Duration,
				Hardened: cfg.Hardened,
				Params:   cfg.Vehicle,
				Init:     cfg.InitState,
			}, res)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
