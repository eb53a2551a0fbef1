package metrics

import (
	"math"

	"github.com/san-kum/longsim/internal/sim"
)

// ThrottleEffort is the mean absolute throttle command.
type ThrottleEffort struct {
	name    string
	sum     float64
	samples int
}

func NewThrottleEffort() *ThrottleEffort {
	return &ThrottleEffort{
		name: "throttle_effort",
	}
}

func (c *ThrottleEffort) Name() string {
	return c.name
}

func (c *ThrottleEffort) Observe(s sim.Sample) {
	c.sum += math.Abs(s.Throttle)
	c.samples++
}

func (c *ThrottleEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ThrottleEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
