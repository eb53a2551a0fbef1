// Package viz renders simulation runs in the terminal.
//
//   - [PlotSignals]: asciigraph charts of a recorded run
//   - [StatePanel]: a styled readout of one vehicle state
//   - [Live]: a Bubble Tea program stepping a vehicle in real time
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	+/-   - Change simulation speed
//	Q     - Quit
package viz
