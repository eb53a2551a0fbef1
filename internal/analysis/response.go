package analysis

import (
	"errors"
	"math"
)

var ErrShortTrace = errors.New("analysis: trace needs at least two finite samples")

// SettlingBand is the relative tolerance used for settling time.
const SettlingBand = 0.02

// Response describes how a trace moves from its first value to its last.
type Response struct {
	Initial      float64 `json:"initial"`
	Final        float64 `json:"final"`
	Peak         float64 `json:"peak"`
	PeakTime     float64 `json:"peak_time"`
	RiseTime     float64 `json:"rise_time"`     // 10% to 90% of the change; NaN if never reached
	SettlingTime float64 `json:"settling_time"` // last entry into the band around Final
	Overshoot    float64 `json:"overshoot"`     // fraction of the change beyond Final
}

// Respond measures the response of ys sampled at ts. The trace is cut at
// its first non-finite value.
func Respond(ts, ys []float64) (Response, error) {
	n := len(ts)
	if len(ys) < n {
		n = len(ys)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			n = i
			break
		}
	}
	if n < 2 {
		return Response{}, ErrShortTrace
	}
	ts, ys = ts[:n], ys[:n]

	r := Response{
		Initial:  ys[0],
		Final:    ys[n-1],
		RiseTime: math.NaN(),
	}
	delta := r.Final - r.Initial
	dir := 1.0
	if delta < 0 {
		dir = -1
	}

	r.Peak, r.PeakTime = ys[0], ts[0]
	for i, y := range ys {
		if dir*(y-r.Peak) > 0 {
			r.Peak, r.PeakTime = y, ts[i]
		}
	}

	if delta == 0 {
		return r, nil
	}

	t10, t90 := math.NaN(), math.NaN()
	for i, y := range ys {
		frac := (y - r.Initial) / delta
		if math.IsNaN(t10) && frac >= 0.1 {
			t10 = ts[i]
		}
		if math.IsNaN(t90) && frac >= 0.9 {
			t90 = ts[i]
			break
		}
	}
	if !math.IsNaN(t10) && !math.IsNaN(t90) {
		r.RiseTime = t90 - t10
	}

	band := SettlingBand * math.Abs(delta)
	r.SettlingTime = ts[0]
	for i := n - 1; i >= 0; i-- {
		if math.Abs(ys[i]-r.Final) > band {
			if i+1 < n {
				r.SettlingTime = ts[i+1]
			}
			break
		}
	}

	if over := dir * (r.Peak - r.Final); over > 0 {
		r.Overshoot = over / math.Abs(delta)
	}
	return r, nil
}
