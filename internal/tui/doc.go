// Package tui is the bubbletea front end of the watch command. It runs the L1
// estimator in the background and redraws the bounds after every refinement.
package tui
