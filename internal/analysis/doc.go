// Package analysis assembles the per-system numbers into a [Report].
//
//   - [Analyze]: gramians, state norms, Hankel values, balancing, H2, L1 and
//     a sampled impulse response with its spectrum
//   - [Batch]: Analyze over many systems concurrently, order preserved
//   - [Spectrum]: magnitude spectrum of a sampled response
//
// # Optional results
//
// Balancing needs a minimal realization and the L1 bound needs an analog,
// stable SISO system. When those preconditions fail the report records the
// reason and the remaining fields are still filled:
//
//	r, err := analysis.Analyze(ctx, "mixed", sys, analysis.DefaultOptions())
//	if r.BalanceErr != "" {
//	    // non-minimal realization
//	}
package analysis
