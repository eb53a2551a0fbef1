package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/longsim/internal/sim"
)

// Signal names accepted by PlotSignals.
var Signals = []string{"position", "velocity", "acceleration", "engine_speed", "throttle"}

var captions = map[string]string{
	"position":     "position (m)",
	"velocity":     "velocity (m/s)",
	"acceleration": "acceleration (m/s²)",
	"engine_speed": "engine speed (rad/s)",
	"throttle":     "throttle",
}

func signal(r *sim.Result, name string) []float64 {
	switch name {
	case "position":
		return r.Positions()
	case "velocity":
		return r.Velocities()
	case "acceleration":
		return r.Accelerations()
	case "engine_speed":
		return r.EngineSpeeds()
	case "throttle":
		return r.Throttles()
	}
	return nil
}

// Plot draws one series. Non-finite values are dropped since asciigraph
// cannot scale them; an empty series yields "".
func Plot(data []float64, caption string, width, height int) string {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return ""
	}
	return asciigraph.Plot(finite,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotSignals returns one chart per requested signal, skipping unknown names.
func PlotSignals(r *sim.Result, names []string, width, height int) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		data := signal(r, name)
		if data == nil {
			continue
		}
		if g := Plot(data, captions[name], width, height); g != "" {
			out = append(out, g)
		}
	}
	return out
}
