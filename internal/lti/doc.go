// Package lti holds the state-space representation consumed by the norm and
// gramian routines.
//
// A [System] is built once from matrices ([New]), a transfer function
// ([FromTransferFunction]) or a named filter ([Lowpass], [Alpha]), and is
// never modified afterwards. Composition ([Sum], [Series], [Scale]),
// zero-order-hold discretization and impulse responses all return new
// values, so a *System can be shared freely between goroutines.
package lti
