package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/longsim/internal/sim"
	"github.com/san-kum/longsim/internal/vehicle"
)

func sample(v, throttle, incline float64) sim.Sample {
	return sim.Sample{State: vehicle.State{V: v}, Throttle: throttle, Incline: incline}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy(2000)

	m.Observe(sample(5, 0, 0))
	m.Observe(sample(10, 0, 0))

	expected := (0.5*2000*25 + 0.5*2000*100) / 2
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestClimb(t *testing.T) {
	m := NewClimb(0.1)
	for i := 0; i < 10; i++ {
		m.Observe(sample(10, 0, math.Pi/6))
	}
	if math.Abs(m.Value()-5.0) > 1e-9 {
		t.Errorf("expected 5 m climbed, got %f", m.Value())
	}
}

func TestThrottleEffort(t *testing.T) {
	m := NewThrottleEffort()
	m.Observe(sample(5, 0.2, 0))
	m.Observe(sample(5, -0.4, 0))
	if math.Abs(m.Value()-0.3) > 1e-12 {
		t.Errorf("expected effort 0.3, got %f", m.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(50)
	if m.Value() != 1.0 {
		t.Error("expected full stability with no samples")
	}

	m.Observe(sample(5, 0, 0))
	m.Observe(sample(60, 0, 0))
	m.Observe(sample(-1, 0, 0))
	m.Observe(sample(math.NaN(), 0, 0))

	if math.Abs(m.Value()-0.25) > 1e-12 {
		t.Errorf("expected stability 0.25, got %f", m.Value())
	}
}

func TestMaxVelocity(t *testing.T) {
	m := NewMaxVelocity()
	for _, v := range []float64{3, 7, 2} {
		m.Observe(sample(v, 0, 0))
	}
	if m.Value() != 7 {
		t.Errorf("expected 7, got %f", m.Value())
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, math.NaN(), 4, math.Inf(1)})
	if s.Mean != 2.5 || s.Min != 1 || s.Max != 4 || s.Final != 4 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Errorf("expected sample std dev, got %f", s.StdDev)
	}

	if (Summarize(nil) != Summary{}) {
		t.Error("expected zero summary for empty input")
	}
	if got := Summarize([]float64{7}); got.StdDev != 0 || got.Mean != 7 {
		t.Errorf("unexpected single-value summary %+v", got)
	}
}

func TestDefaultsHaveUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults(vehicle.DefaultParams()) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
