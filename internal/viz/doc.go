// Package viz renders a running heat simulation in the terminal.
//
// [Model] is a Bubble Tea model that advances its own grid a few steps per
// frame, draws the temperature profile on a Braille [Canvas] and charts the
// sampled energy with asciigraph.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial condition
//	+/-   - More/fewer steps per frame
//	Q     - Quit
package viz
