// Package viz provides a live terminal view of an experiment converging.
//
// The view is a Bubble Tea program. Each tick runs one batch of trials and
// redraws the running difference rate against its expected value.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the original seed
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
