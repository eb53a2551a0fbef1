package metrics

import (
	"math"

	"github.com/san-kum/longsim/internal/sim"
)

// Stability is the fraction of samples whose state is finite and whose
// velocity stays within [0, maxVelocity].
type Stability struct {
	name        string
	maxVelocity float64
	violations  int
	samples     int
}

func NewStability(maxVelocity float64) *Stability {
	return &Stability{
		name:        "stability",
		maxVelocity: maxVelocity,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sm sim.Sample) {
	s.samples++
	v := sm.State.V
	if !sm.State.IsValid() || v < 0 || math.Abs(v) > s.maxVelocity {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxVelocity is the largest velocity seen.
type MaxVelocity struct {
	max  float64
	seen bool
}

func NewMaxVelocity() *MaxVelocity { return &MaxVelocity{} }

func (m *MaxVelocity) Name() string { return "max_velocity" }

func (m *MaxVelocity) Observe(s sim.Sample) {
	if !m.seen || s.State.V > m.max {
		m.max = s.State.V
		m.seen = true
	}
}

func (m *MaxVelocity) Value() float64 { return m.max }

func (m *MaxVelocity) Reset() {
	m.max = 0
	m.seen = false
}
