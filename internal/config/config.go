package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/vehicle"
)

const (
	DefaultProfile  = "cruise"
	DefaultDuration = 20.0
)

type Config struct {
	Profile       string         `yaml:"profile"`
	Duration      float64        `yaml:"duration"`
	ValidateState bool           `yaml:"validate_state"`
	Hardened      bool           `yaml:"hardened"`
	Diagnostics   bool           `yaml:"diagnostics"`
	Vehicle       vehicle.Params `yaml:"vehicle"`
	InitState     vehicle.State  `yaml:"init_state"`

	// Throttle and Road, when set, replace the named profile.
	Throttle []profile.Breakpoint `yaml:"throttle,omitempty"`
	Road     []profile.Slope      `yaml:"road,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Profile:   DefaultProfile,
		Duration:  DefaultDuration,
		Vehicle:   vehicle.DefaultParams(),
		InitState: vehicle.DefaultState(),
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base, so keys absent from the
// file keep base's values. base itself is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Throttle = append([]profile.Breakpoint(nil), c.Throttle...)
	cp.Road = append([]profile.Slope(nil), c.Road...)
	return &cp
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if len(c.Throttle) == 0 && len(c.Road) > 0 {
		return fmt.Errorf("road requires a throttle schedule")
	}
	return c.Vehicle.Validate()
}

// Options returns the integrator options the config asks for. A non-nil
// sink is attached only when diagnostics are enabled.
func (c *Config) Options(sink vehicle.Sink) []vehicle.Option {
	opts := []vehicle.Option{
		vehicle.WithParams(c.Vehicle),
		vehicle.WithState(c.InitState),
		vehicle.WithHardened(c.Hardened),
	}
	if c.Diagnostics && sink != nil {
		opts = append(opts, vehicle.WithDiagnostics(sink))
	}
	return opts
}

// BuildProfile resolves the custom schedule if one is configured and the
// named profile otherwise.
func (c *Config) BuildProfile(reg *profile.Registry) (profile.Profile, error) {
	if len(c.Throttle) == 0 {
		return reg.Get(c.Profile)
	}

	ramp, err := profile.NewRamp(c.Throttle...)
	if err != nil {
		return nil, err
	}
	var road profile.Incline = profile.Flat{}
	if len(c.Road) > 0 {
		g, err := profile.NewGrade(c.Road...)
		if err != nil {
			return nil, err
		}
		road = g
	}
	return profile.Compose(ramp, road), nil
}

// ProfileName is the name recorded with a run.
func (c *Config) ProfileName() string {
	if len(c.Throttle) > 0 {
		return "custom"
	}
	return c.Profile
}
