package vehicle_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/longsim/internal/vehicle"
)

var _ = Describe("Advance", func() {
	It("does not modify its input", func() {
		p := vehicle.DefaultParams()
		s := vehicle.DefaultState()
		next, _ := vehicle.Advance(p, s, 0.2, 0)
		Expect(s).To(Equal(vehicle.DefaultState()))
		Expect(next).NotTo(Equal(s))
	})

	It("agrees with Integrator.Step", func() {
		p := vehicle.DefaultParams()
		s := vehicle.DefaultState()
		veh := vehicle.New()
		for i := 0; i < 200; i++ {
			s, _ = vehicle.Advance(p, s, 0.35, 0.03)
			veh.Step(0.35, 0.03)
		}
		Expect(veh.State()).To(Equal(s))
	})

	It("sums the load from aero, rolling and grade", func() {
		p := vehicle.DefaultParams()
		_, f := vehicle.Advance(p, vehicle.DefaultState(), 0, 0.1)
		Expect(f.Load).To(Equal(f.Aero + f.Rolling + f.Gravity))
		Expect(f.Aero).To(BeNumerically("~", 1.36*25, 1e-12))
		Expect(f.Rolling).To(BeNumerically("~", 0.05, 1e-12))
	})

	DescribeTable("engine torque follows the quadratic map",
		func(throttle, w float64) {
			p := vehicle.DefaultParams()
			_, f := vehicle.Advance(p, vehicle.State{V: 5, W: w}, throttle, 0)
			Expect(f.EngineTorque).To(BeNumerically("~", throttle*(400+0.1*w-0.0002*w*w), 1e-9))
		},
		Entry("idle", 0.0, 100.0),
		Entry("cruise", 0.2, 150.0),
		Entry("full", 1.0, 300.0),
	)
})

var _ = Describe("Params", func() {
	It("round-trips values by name", func() {
		p := vehicle.DefaultParams()
		for _, name := range vehicle.ParamNames() {
			Expect(p.SetParam(name, 42)).To(Succeed())
			Expect(p.GetParams()[name]).To(Equal(42.0), name)
		}
	})

	It("rejects unknown names", func() {
		p := vehicle.DefaultParams()
		err := p.SetParam("wheelbase", 2.7)
		Expect(errors.Is(err, vehicle.ErrUnknownParam)).To(BeTrue())
	})

	It("validates the defaults", func() {
		Expect(vehicle.DefaultParams().Validate()).To(Succeed())
	})

	DescribeTable("rejects non-positive divisors",
		func(name string) {
			p := vehicle.DefaultParams()
			Expect(p.SetParam(name, 0)).To(Succeed())
			Expect(errors.Is(p.Validate(), vehicle.ErrParameterBounds)).To(BeTrue())
		},
		Entry("dt", "dt"),
		Entry("mass", "mass"),
		Entry("engine inertia", "engine_inertia"),
		Entry("tire radius", "tire_radius"),
	)
})
