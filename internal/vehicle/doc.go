// Package vehicle implements the longitudinal vehicle model: a coupled
// engine, driveline and body advanced by a fixed-step forward Euler update.
//
// The package exposes:
//
//   - [Params]: immutable physical and tuning parameters
//   - [State]: the five evolving quantities (x, v, a, ω_e, ω̇_e)
//   - [Advance]: the pure single-step update
//   - [Integrator]: an owned parameter/state pair with Step and Reset
//
// # Example
//
//	veh := vehicle.New()
//	for i := 0; i < 2000; i++ {
//	    veh.Step(0.2, 0)
//	}
//	fmt.Println(veh.State().V)
//
// # Integration Order
//
// Step integrates position, velocity and engine speed with the derivative
// values held from the previous step, then recomputes those derivatives from
// forces evaluated at the previous state. The scheme is neither symmetric nor
// reversible: stepping a recorded trajectory backwards does not reproduce the
// forward states.
//
// # Thread Safety
//
// Integrator instances are NOT thread-safe. Simulate independent vehicles
// with independent integrators.
package vehicle
