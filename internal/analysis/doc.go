// Package analysis characterizes recorded runs.
//
//   - [Respond]: rise time, settling time and overshoot of a velocity trace
//   - [PowerSpectrum]: one-sided amplitude spectrum of a signal
//   - [NewPhasePortrait]: two signals plotted against each other
//
// Typical use on a stored run:
//
//	resp := analysis.Respond(r.Times(), r.Velocities())
//	fmt.Println(resp.RiseTime, resp.SettlingTime)
package analysis
