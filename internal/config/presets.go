package config

import (
	"sort"

	"github.com/san-kum/longsim/internal/vehicle"
)

var Presets = map[string]*Config{
	// 8001 samples of constant 0.2 throttle on a flat road.
	"reference": {
		Profile: "cruise", Duration: 80.0,
		Vehicle: vehicle.DefaultParams(), InitState: vehicle.DefaultState(),
	},
	"hill": {
		Profile: "ramp", Duration: 20.0,
		Vehicle: vehicle.DefaultParams(), InitState: vehicle.DefaultState(),
	},
	"coast": {
		Profile: "coast", Duration: 10.0,
		Vehicle: vehicle.DefaultParams(), InitState: vehicle.DefaultState(),
	},
	"coast-matched": {
		Profile: "coast", Duration: 10.0,
		Vehicle:   vehicle.DefaultParams(),
		InitState: vehicle.State{V: 5, W: 5 / (vehicle.DefaultGearRatio * vehicle.DefaultTireRadius)},
	},
	"hardened-standstill": {
		Profile: "cruise", Duration: 20.0, Hardened: true, Diagnostics: true,
		Vehicle: vehicle.DefaultParams(), InitState: vehicle.State{},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
