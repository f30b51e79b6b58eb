// Package l1norm computes a two-sided bound on the L1 norm of an analog LTI
// system, the integral of the absolute impulse response. The L1 norm is the
// worst-case output amplitude for any input confined to [-1, 1].
//
// [Norm] starts from the DC gain as a lower bound and a Lyapunov tail bound
// as an upper bound, then repeatedly discretizes the system with twice as
// many samples. Each pass raises the lower bound with the sampled response
// and lowers the upper bound on intervals where the response cannot change
// sign. The horizon doubles only when the tail, rather than the sampling
// resolution, dominates the gap.
//
//	res, err := l1norm.Norm(sys, l1norm.WithRelTol(1e-8))
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%.6f ± %.1e\n", res.Estimate, res.HalfWidth)
//
// Based on Rutland and Lane, "Computing the 1-norm of the impulse response
// of linear time-invariant systems", Systems & Control Letters 26 (1995).
package l1norm
