// Package gramian computes controllability and observability gramians and the
// quantities derived from them.
//
//   - [Solve]: one Lyapunov solve, analog or discrete
//   - [ControlGram], [ObserveGram]: the two gramians of an [lti.System]
//   - [StateNorm]: per-state H2 norm
//   - [BalancedTransformation], [Balance]: balanced realization
//   - [Hankel]: Hankel singular values, sorted descending
//
// # Balancing
//
// Balancing needs both gramians to be positive definite. A realization that
// is not minimal fails with a [*FactorizationError] naming the gramian:
//
//	b, err := gramian.BalancedTransformation(sys)
//	var ferr *gramian.FactorizationError
//	if errors.As(err, &ferr) {
//	    // ferr.Gramian is "controllability" or "observability"
//	}
//
// The singular values in [Balanced] are left in SVD order, while [Hankel]
// sorts its own copy.
package gramian
