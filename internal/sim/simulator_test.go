package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/vehicle"
)

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(s Sample) {
	t.count++
	t.sum += s.State.V
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorRun(t *testing.T) {
	s := New(vehicle.New(), profile.Constant{Throttle: 0.2})

	result, err := s.Run(context.Background(), Config{Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 101 {
		t.Errorf("expected 101 samples, got %d", len(result.Samples))
	}
	if result.StepsTaken != 101 {
		t.Errorf("expected 101 steps, got %d", result.StepsTaken)
	}

	first := result.Samples[0]
	if first.State != vehicle.DefaultState() || first.T != 0 {
		t.Errorf("first sample should be the initial state at t=0, got %+v", first)
	}

	times := result.Times()
	if math.Abs(times[100]-1.0) > 1e-12 {
		t.Errorf("expected t[100]=1.0, got %v", times[100])
	}
}

func TestSimulatorSamplesMatchDirectStepping(t *testing.T) {
	s := New(vehicle.New(), profile.Constant{Throttle: 0.3, Incline: 0.02})
	result, err := s.Run(context.Background(), Config{Steps: 50})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	veh := vehicle.New()
	for i := 0; i < 50; i++ {
		if result.Samples[i].State != veh.State() {
			t.Fatalf("sample %d differs from direct stepping", i)
		}
		veh.Step(0.3, 0.02)
	}
}

func TestReferenceCruiseVelocity(t *testing.T) {
	s := New(vehicle.New(), profile.Constant{Throttle: 0.2})
	result, err := s.Run(context.Background(), Config{Duration: 80})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Samples) != 8001 {
		t.Fatalf("expected 8001 samples, got %d", len(result.Samples))
	}
	v := result.Samples[8000].State.V
	if math.Abs(v-23.99) > 0.01 {
		t.Errorf("expected v[8000] ~23.99, got %.6f", v)
	}
}

func TestRampScenario(t *testing.T) {
	prof, err := profile.NewRegistry().Get("ramp")
	if err != nil {
		t.Fatal(err)
	}
	s := New(vehicle.New(), prof)
	result, err := s.Run(context.Background(), Config{Duration: 20})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Samples) != 2001 {
		t.Fatalf("expected 2001 samples, got %d", len(result.Samples))
	}
	if got := result.Samples[100].Throttle; got != 0.26 {
		t.Errorf("expected throttle 0.26 at t=1.0, got %v", got)
	}
	if got := result.Samples[0].Incline; got != math.Atan(3.0/60.0) {
		t.Errorf("expected first-section incline, got %v", got)
	}
	if got := result.Samples[2000].Incline; got != 0 {
		t.Errorf("expected flat road at the end, got %v", got)
	}

	final, _ := result.Final()
	if math.Abs(final.State.X-211.739) > 0.01 {
		t.Errorf("expected x(20s) ~211.739, got %.6f", final.State.X)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		sim  *Simulator
		cfg  Config
	}{
		{"zero duration", New(vehicle.New(), profile.Constant{}), Config{Duration: 0}},
		{"negative duration", New(vehicle.New(), profile.Constant{}), Config{Duration: -1.0}},
		{"no profile", New(vehicle.New(), nil), Config{Duration: 1.0}},
		{"zero dt", New(vehicle.New(vehicle.WithParams(vehicle.Params{Mass: 1, EngineInertia: 1, TireRadius: 1})), profile.Constant{}), Config{Duration: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.sim.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := New(vehicle.New(), profile.Constant{Throttle: 0.2})

	metric := &testMetric{}
	s.AddMetric(metric)

	var seen int
	s.AddObserver(ObserverFunc(func(Sample) { seen++ }))

	result, err := s.Run(context.Background(), Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if seen != 10 {
		t.Errorf("expected 10 observer calls, got %d", seen)
	}
}

func TestSimulatorValidateState(t *testing.T) {
	veh := vehicle.New(vehicle.WithState(vehicle.State{}))
	s := New(veh, profile.Constant{Throttle: 0.2})

	result, err := s.Run(context.Background(), Config{Steps: 100, ValidateState: true})
	if err != nil {
		t.Fatalf("numerical faults must not be fatal: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one SimError, got %v", result.Errors)
	}
	var simErr SimError
	if !errors.As(result.Errors[0], &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimError at step 0, got %v", result.Errors[0])
	}
}

func TestSimulatorPropagatesFaultsByDefault(t *testing.T) {
	veh := vehicle.New(vehicle.WithState(vehicle.State{}))
	s := New(veh, profile.Constant{Throttle: 0.2})

	result, err := s.Run(context.Background(), Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Samples) != 10 || len(result.Errors) != 0 {
		t.Errorf("expected an uninterrupted run, got %d samples and %v", len(result.Samples), result.Errors)
	}
	if veh.State().IsValid() {
		t.Error("expected NaN to propagate into the state")
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(vehicle.New(), profile.Constant{})
	result, err := s.Run(ctx, Config{Steps: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.Samples) != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New(vehicle.New(), profile.Constant{Throttle: 0.2})

	var calls int
	err := s.RunWithCallback(context.Background(), Config{Steps: 100}, func(sm Sample) bool {
		calls++
		return sm.Step < 9
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if calls != 10 {
		t.Errorf("expected 10 calls, got %d", calls)
	}
	if s.Vehicle().Steps() != 9 {
		t.Errorf("expected 9 steps, got %d", s.Vehicle().Steps())
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 150, Message: "test error"}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConfigSamples(t *testing.T) {
	tests := []struct {
		cfg      Config
		dt       float64
		expected int
	}{
		{Config{Duration: 20}, 0.01, 2001},
		{Config{Duration: 80}, 0.01, 8001},
		{Config{Duration: 1}, 0.1, 11},
		{Config{Duration: 20, Steps: 5}, 0.01, 5},
	}
	for _, tt := range tests {
		if got := tt.cfg.Samples(tt.dt); got != tt.expected {
			t.Errorf("Samples(%+v, %g) = %d, want %d", tt.cfg, tt.dt, got, tt.expected)
		}
	}
}
