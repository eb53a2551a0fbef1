package metrics

import (
	"math"

	"github.com/san-kum/longsim/internal/sim"
)

// KineticEnergy is the mean body kinetic energy 0.5*m*v^2 over a run.
type KineticEnergy struct {
	name    string
	mass    float64
	samples int
	total   float64
}

func NewKineticEnergy(mass float64) *KineticEnergy {
	return &KineticEnergy{
		name: "kinetic_energy",
		mass: mass,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s sim.Sample) {
	v := s.State.V
	e.total += 0.5 * e.mass * v * v
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// Climb tracks the height gained along the road, integrating v*dt*sin(incline).
type Climb struct {
	name   string
	dt     float64
	height float64
}

func NewClimb(dt float64) *Climb {
	return &Climb{name: "climb", dt: dt}
}

func (c *Climb) Name() string { return c.name }

func (c *Climb) Observe(s sim.Sample) {
	c.height += s.State.V * c.dt * math.Sin(s.Incline)
}

func (c *Climb) Value() float64 { return c.height }

func (c *Climb) Reset() { c.height = 0 }
