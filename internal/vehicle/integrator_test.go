package vehicle_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/longsim/internal/vehicle"
)

var _ = Describe("Integrator", func() {
	var veh *vehicle.Integrator

	BeforeEach(func() {
		veh = vehicle.New()
	})

	Describe("construction", func() {
		It("starts from the default state", func() {
			Expect(veh.State()).To(Equal(vehicle.State{X: 0, V: 5, A: 0, W: 100, WDot: 0}))
			Expect(veh.Steps()).To(BeZero())
		})

		It("uses the reference parameters", func() {
			p := veh.Params()
			Expect(p.A0).To(Equal(400.0))
			Expect(p.A2).To(Equal(-0.0002))
			Expect(p.GearRatio).To(Equal(0.35))
			Expect(p.Mass).To(Equal(2000.0))
			Expect(p.MaxTireForce).To(Equal(10000.0))
			Expect(p.Dt).To(Equal(0.01))
		})
	})

	Describe("Step", func() {
		It("matches a hand-evaluated first step", func() {
			veh.Step(0.5, 0.1)
			s := veh.State()

			Expect(s.X).To(BeNumerically("~", 0.05, 1e-12))
			Expect(s.V).To(Equal(5.0), "velocity integrates the previous (zero) acceleration")
			Expect(s.W).To(Equal(100.0), "engine speed integrates the previous (zero) engine acceleration")
			Expect(s.A).To(BeNumerically("~", 4.003609182694616, 1e-9))
			Expect(s.WDot).To(BeNumerically("~", -0.5242071634130667, 1e-9))
		})

		It("reproduces the reference cruise velocity after 8000 steps", func() {
			var v8000 float64
			for i := 0; i < 8001; i++ {
				if i == 8000 {
					v8000 = veh.State().V
				}
				veh.Step(0.2, 0)
			}
			Expect(v8000).To(BeNumerically("~", 23.99, 0.01))
		})

		It("is deterministic across instances", func() {
			other := vehicle.New()
			for i := 0; i < 500; i++ {
				veh.Step(0.3, 0.02)
				other.Step(0.3, 0.02)
			}
			Expect(veh.State()).To(Equal(other.State()))
		})

		It("uses F_max exactly when the slip force saturates", func() {
			// default w=100 gives slip 1.1 and c*s = 11000
			veh.Step(0, 0)
			f := veh.LastForces()
			Expect(f.Slip).To(BeNumerically("~", 1.1, 1e-12))
			Expect(f.Clamped).To(BeTrue())
			Expect(f.Tire).To(Equal(veh.Params().MaxTireForce))

			load := f.Load
			Expect(veh.State().A).To(Equal((veh.Params().MaxTireForce - load) / veh.Params().Mass))
		})

		It("does not clamp negative tire force", func() {
			veh = vehicle.New(vehicle.WithState(vehicle.State{V: 10, W: -50}))
			veh.Step(0, 0)
			f := veh.LastForces()
			Expect(f.Tire).To(BeNumerically("<", -veh.Params().MaxTireForce))
			Expect(f.Clamped).To(BeFalse())
		})

		It("decelerates without throttle from a matched wheel speed", func() {
			p := vehicle.DefaultParams()
			matched := 5.0 / (p.GearRatio * p.TireRadius)
			veh = vehicle.New(vehicle.WithState(vehicle.State{V: 5, W: matched}))

			prev := veh.State().V
			for i := 0; i < 10; i++ {
				veh.Step(0, 0)
				v := veh.State().V
				Expect(v).To(BeNumerically("<=", prev), "step %d", i)
				prev = v
			}
			Expect(prev).To(BeNumerically("<", 5.0))
		})

		It("keeps accelerating without throttle from the default state", func() {
			// w=100 saturates the tire force, so the body is pushed forward
			// until the engine winds down.
			prev := veh.State().V
			for i := 0; i < 10; i++ {
				veh.Step(0, 0)
				Expect(veh.State().V).To(BeNumerically(">=", prev))
				prev = veh.State().V
			}
		})

		It("extrapolates the torque map for out-of-range throttle", func() {
			a := vehicle.New()
			b := vehicle.New()
			a.Step(2.0, 0)
			b.Step(1.0, 0)
			Expect(a.LastForces().EngineTorque).To(BeNumerically("~", 2*b.LastForces().EngineTorque, 1e-9))
		})

		It("propagates non-finite values from zero velocity", func() {
			veh = vehicle.New(vehicle.WithState(vehicle.State{V: 0, W: 0}))
			veh.Step(0.2, 0)
			Expect(math.IsNaN(veh.LastForces().Slip)).To(BeTrue())

			veh.Step(0.2, 0)
			veh.Step(0.2, 0)
			Expect(veh.State().IsValid()).To(BeFalse())
		})

		It("is not reversible by stepping with a negated Dt", func() {
			for i := 0; i < 100; i++ {
				veh.Step(0.3, 0)
			}
			forward := veh.State()

			p := veh.Params()
			p.Dt = -p.Dt
			back := vehicle.New(vehicle.WithParams(p), vehicle.WithState(forward))
			for i := 0; i < 100; i++ {
				back.Step(0.3, 0)
			}

			start := vehicle.DefaultState()
			Expect(math.Abs(back.State().V - start.V)).To(BeNumerically(">", 0.05))
			Expect(math.Abs(back.State().A - start.A)).To(BeNumerically(">", 1.0))
		})
	})

	Describe("Reset", func() {
		It("restores the defaults after any history", func() {
			for i := 0; i < 1234; i++ {
				veh.Step(float64(i%7)/3, 0.05)
			}
			veh.Reset()
			Expect(veh.State()).To(Equal(vehicle.DefaultState()))
			Expect(veh.Steps()).To(BeZero())
			Expect(veh.LastForces()).To(Equal(vehicle.Forces{}))
		})

		It("leaves parameters untouched", func() {
			p := vehicle.DefaultParams()
			p.Mass = 1500
			veh = vehicle.New(vehicle.WithParams(p))
			veh.Step(0.4, 0)
			veh.Reset()
			Expect(veh.Params().Mass).To(Equal(1500.0))
		})

		It("restores a custom initial state", func() {
			init := vehicle.State{X: 10, V: 12, W: 120}
			veh = vehicle.New(vehicle.WithState(init))
			veh.Step(0.4, 0)
			veh.Reset()
			Expect(veh.State()).To(Equal(init))
		})

		It("makes a rerun identical to the first run", func() {
			for i := 0; i < 300; i++ {
				veh.Step(0.25, 0.01)
			}
			first := veh.State()
			veh.Reset()
			for i := 0; i < 300; i++ {
				veh.Step(0.25, 0.01)
			}
			Expect(veh.State()).To(Equal(first))
		})
	})

	Describe("diagnostics", func() {
		It("does not change numerical output", func() {
			var c vehicle.Collector
			watched := vehicle.New(vehicle.WithDiagnostics(&c))
			for i := 0; i < 1000; i++ {
				veh.Step(1.5, 0.1)
				watched.Step(1.5, 0.1)
			}
			Expect(watched.State()).To(Equal(veh.State()))
			Expect(c.Count(vehicle.WarnThrottleRange)).To(Equal(1000))
		})

		It("reports saturated tire force", func() {
			var c vehicle.Collector
			veh = vehicle.New(vehicle.WithDiagnostics(&c))
			veh.Step(0, 0)
			Expect(c.Count(vehicle.WarnTireForceClamped)).To(Equal(1))
			Expect(c.Warnings()[0].Step).To(Equal(0))
		})

		It("reports zero velocity and the non-finite state it causes", func() {
			var c vehicle.Collector
			veh = vehicle.New(
				vehicle.WithState(vehicle.State{V: 0, W: 0}),
				vehicle.WithDiagnostics(&c),
			)
			veh.Step(0.2, 0)
			veh.Step(0.2, 0)
			Expect(c.Count(vehicle.WarnNonPositiveVelocity)).To(BeNumerically(">=", 1))
			Expect(c.Count(vehicle.WarnNonFinite)).To(BeNumerically(">=", 1))
		})

		It("reports negative tire force", func() {
			var c vehicle.Collector
			veh = vehicle.New(
				vehicle.WithState(vehicle.State{V: 10, W: 10}),
				vehicle.WithDiagnostics(&c),
			)
			veh.Step(0, 0)
			Expect(c.Count(vehicle.WarnNegativeTireForce)).To(Equal(1))
		})
	})

	Describe("hardened mode", func() {
		It("matches the default mode when no guard triggers", func() {
			p := vehicle.DefaultParams()
			init := vehicle.State{V: 5, W: 5.0 / (p.GearRatio * p.TireRadius)}
			plain := vehicle.New(vehicle.WithState(init))
			hard := vehicle.New(vehicle.WithState(init), vehicle.WithHardened(true))
			for i := 0; i < 50; i++ {
				plain.Step(0.1, 0)
				hard.Step(0.1, 0)
			}
			Expect(hard.State()).To(Equal(plain.State()))
		})

		It("clamps throttle to [0, 1]", func() {
			hard := vehicle.New(vehicle.WithHardened(true))
			plain := vehicle.New()
			hard.Step(3.0, 0)
			plain.Step(1.0, 0)
			Expect(hard.LastForces().EngineTorque).To(Equal(plain.LastForces().EngineTorque))
		})

		It("stays finite at zero velocity", func() {
			hard := vehicle.New(vehicle.WithState(vehicle.State{V: 0, W: 0}), vehicle.WithHardened(true))
			for i := 0; i < 10; i++ {
				hard.Step(0.2, 0)
			}
			Expect(hard.State().IsValid()).To(BeTrue())
			Expect(hard.Hardened()).To(BeTrue())
		})

		It("launches from standstill while the engine turns", func() {
			hard := vehicle.New(vehicle.WithState(vehicle.State{V: 0, W: 100}), vehicle.WithHardened(true))
			for i := 0; i < 3; i++ {
				hard.Step(0.2, 0)
			}
			Expect(hard.State().V).To(BeNumerically(">", 0))
			Expect(hard.State().IsValid()).To(BeTrue())
		})

		It("applies full tire force at standstill with forward wheel speed", func() {
			hard := vehicle.New(vehicle.WithState(vehicle.State{V: 0, W: 100}), vehicle.WithHardened(true))
			hard.Step(0.2, 0)
			Expect(hard.LastForces().Tire).To(Equal(hard.Params().MaxTireForce))
			Expect(hard.LastForces().Slip).To(Equal(0.0))
			Expect(hard.LastForces().Clamped).To(BeTrue())
		})

		It("applies no tire force when both vehicle and wheel are stopped", func() {
			hard := vehicle.New(vehicle.WithState(vehicle.State{}), vehicle.WithHardened(true))
			hard.Step(0.2, 0)
			Expect(hard.LastForces().Tire).To(Equal(0.0))
			Expect(hard.LastForces().Clamped).To(BeFalse())
		})

		It("bounds negative tire force", func() {
			hard := vehicle.New(vehicle.WithState(vehicle.State{V: 10, W: -50}), vehicle.WithHardened(true))
			hard.Step(0, 0)
			Expect(hard.LastForces().Tire).To(Equal(-hard.Params().MaxTireForce))
			Expect(hard.LastForces().Clamped).To(BeTrue())
		})
	})
})
