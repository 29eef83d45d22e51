// Package viz renders scenes in the terminal.
//
// [Player] is a Bubble Tea program that drives a built scene from the
// engine's ticker and shows every object's properties, the playhead and a
// rolling graph of one channel. [PlotSeries], [PlotRun] and [EaseCurve]
// produce static plots for the command line.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart
//	←/→   - Seek backward/forward
//	[ ]   - Halve/double the time scale
//	<     - Reverse direction
//	L     - Jump to the next label
//	Tab   - Cycle the graphed channel
//	T     - Cycle color themes
//	Q     - Quit
package viz
