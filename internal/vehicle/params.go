package vehicle

import (
	"fmt"
	"sort"
)

const (
	DefaultA0            = 400.0
	DefaultA1            = 0.1
	DefaultA2            = -0.0002
	DefaultGearRatio     = 0.35
	DefaultTireRadius    = 0.3
	DefaultEngineInertia = 10.0
	DefaultMass          = 2000.0
	DefaultGravity       = 9.81
	DefaultDragCoeff     = 1.36
	DefaultRollingCoeff  = 0.01
	DefaultTireStiffness = 10000.0
	DefaultMaxTireForce  = 10000.0
	DefaultDt            = 0.01
)

// Params holds the physical constants of one vehicle. A zero Params is not
// usable; start from DefaultParams.
type Params struct {
	// Engine torque map: T = throttle * (A0 + A1*w + A2*w^2).
	A0 float64 `yaml:"a0" json:"a0"`
	A1 float64 `yaml:"a1" json:"a1"`
	A2 float64 `yaml:"a2" json:"a2"`

	GearRatio     float64 `yaml:"gear_ratio" json:"gear_ratio"`
	TireRadius    float64 `yaml:"tire_radius" json:"tire_radius"`
	EngineInertia float64 `yaml:"engine_inertia" json:"engine_inertia"`
	Mass          float64 `yaml:"mass" json:"mass"`
	Gravity       float64 `yaml:"gravity" json:"gravity"`
	DragCoeff     float64 `yaml:"drag_coeff" json:"drag_coeff"`
	RollingCoeff  float64 `yaml:"rolling_coeff" json:"rolling_coeff"`
	TireStiffness float64 `yaml:"tire_stiffness" json:"tire_stiffness"`
	MaxTireForce  float64 `yaml:"max_tire_force" json:"max_tire_force"`

	// Dt is the fixed integration step in seconds.
	Dt float64 `yaml:"dt" json:"dt"`
}

func DefaultParams() Params {
	return Params{
		A0:            DefaultA0,
		A1:            DefaultA1,
		A2:            DefaultA2,
		GearRatio:     DefaultGearRatio,
		TireRadius:    DefaultTireRadius,
		EngineInertia: DefaultEngineInertia,
		Mass:          DefaultMass,
		Gravity:       DefaultGravity,
		DragCoeff:     DefaultDragCoeff,
		RollingCoeff:  DefaultRollingCoeff,
		TireStiffness: DefaultTireStiffness,
		MaxTireForce:  DefaultMaxTireForce,
		Dt:            DefaultDt,
	}
}

// Validate rejects parameter sets the update divides by or steps with.
// The model itself never calls it.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"dt", p.Dt},
		{"mass", p.Mass},
		{"engine_inertia", p.EngineInertia},
		{"tire_radius", p.TireRadius},
	}
	for _, c := range checks {
		if !(c.value > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrParameterBounds, c.name, c.value)
		}
	}
	return nil
}

func (p *Params) GetParams() map[string]float64 {
	return map[string]float64{
		"a0":             p.A0,
		"a1":             p.A1,
		"a2":             p.A2,
		"gear_ratio":     p.GearRatio,
		"tire_radius":    p.TireRadius,
		"engine_inertia": p.EngineInertia,
		"mass":           p.Mass,
		"gravity":        p.Gravity,
		"drag_coeff":     p.DragCoeff,
		"rolling_coeff":  p.RollingCoeff,
		"tire_stiffness": p.TireStiffness,
		"max_tire_force": p.MaxTireForce,
		"dt":             p.Dt,
	}
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "a0":
		p.A0 = value
	case "a1":
		p.A1 = value
	case "a2":
		p.A2 = value
	case "gear_ratio":
		p.GearRatio = value
	case "tire_radius":
		p.TireRadius = value
	case "engine_inertia":
		p.EngineInertia = value
	case "mass":
		p.Mass = value
	case "gravity":
		p.Gravity = value
	case "drag_coeff":
		p.DragCoeff = value
	case "rolling_coeff":
		p.RollingCoeff = value
	case "tire_stiffness":
		p.TireStiffness = value
	case "max_tire_force":
		p.MaxTireForce = value
	case "dt":
		p.Dt = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

// ParamNames lists the names accepted by SetParam in sorted order.
func ParamNames() []string {
	p := DefaultParams()
	m := p.GetParams()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
