package vehicle

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink receives domain warnings emitted by an Integrator.
type Sink interface {
	Warn(w DomainWarning)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(DomainWarning)

func (f SinkFunc) Warn(w DomainWarning) { f(w) }

// LogSink writes warnings to a logrus logger at warn level.
type LogSink struct {
	Logger logrus.FieldLogger
}

func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return &LogSink{Logger: logger}
}

func (l *LogSink) Warn(w DomainWarning) {
	l.Logger.WithFields(logrus.Fields{
		"step":  w.Step,
		"kind":  w.Kind.String(),
		"value": w.Value,
	}).Warn(w.Message)
}

// Collector keeps every warning it receives. Safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	warnings []DomainWarning
}

func (c *Collector) Warn(w DomainWarning) {
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()
}

func (c *Collector) Warnings() []DomainWarning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]DomainWarning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Count returns how many warnings of kind k were collected.
func (c *Collector) Count(k WarningKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.warnings {
		if w.Kind == k {
			n++
		}
	}
	return n
}

func (c *Collector) Reset() {
	c.mu.Lock()
	c.warnings = nil
	c.mu.Unlock()
}

// inspect reports the warnings for a step that started at prev and produced
// next with forces f. It only reads.
func inspect(sink Sink, step int, prev, next State, f Forces, throttle float64) {
	if prev.V <= 0 {
		sink.Warn(DomainWarning{Kind: WarnNonPositiveVelocity, Step: step, Value: prev.V,
			Message: "velocity non-positive, slip ratio undefined"})
	}
	if throttle < 0 || throttle > 1 {
		sink.Warn(DomainWarning{Kind: WarnThrottleRange, Step: step, Value: throttle,
			Message: "throttle outside [0, 1], torque map extrapolated"})
	}
	if f.Clamped {
		sink.Warn(DomainWarning{Kind: WarnTireForceClamped, Step: step, Value: f.Tire,
			Message: "tire force clamped to maximum"})
	}
	if f.Tire < 0 {
		sink.Warn(DomainWarning{Kind: WarnNegativeTireForce, Step: step, Value: f.Tire,
			Message: "negative tire force, no lower clamp applied"})
	}
	if !next.IsValid() {
		sink.Warn(DomainWarning{Kind: WarnNonFinite, Step: step, Value: next.V,
			Message: "state contains NaN or Inf"})
	}
}
