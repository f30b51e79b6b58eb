package gramian

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltinorm/internal/linalg"
	"github.com/san-kum/ltinorm/internal/lti"
)

// Norm selects the energy measure used by StateNorm.
type Norm string

// H2 measures the RMS response to unit-power white noise.
const H2 Norm = "H2"

// Solve returns the gramian P driven through the given dynamics:
//
//	analog:   A·P + P·Aᵀ = −B·Bᵀ
//	discrete: A·P·Aᵀ − P = −B·Bᵀ
//
// Stability of A is not checked. Solver failures are returned unchanged.
func Solve(dynamics, driving mat.Matrix, analog bool) (*mat.SymDense, error) {
	var bbt mat.Dense
	bbt.Mul(driving, driving.T())

	var (
		p   *mat.Dense
		err error
	)
	if analog {
		bbt.Scale(-1, &bbt)
		p, err = linalg.SolveContinuousLyapunov(dynamics, &bbt)
	} else {
		p, err = linalg.SolveDiscreteLyapunov(dynamics, &bbt)
	}
	if err != nil {
		return nil, err
	}
	return linalg.Symmetrize(p), nil
}

// ControlGram returns the controllability gramian R of sys.
func ControlGram(sys *lti.System) (*mat.SymDense, error) {
	return Solve(sys.A(), sys.B(), sys.Analog())
}

// ObserveGram returns the observability gramian O of sys, which is the
// controllability gramian of its dual.
func ObserveGram(sys *lti.System) (*mat.SymDense, error) {
	return Solve(sys.A().T(), sys.C().T(), sys.Analog())
}

// StateNorm returns the norm of each state's impulse response, the square
// root of the diagonal of the controllability gramian.
func StateNorm(sys *lti.System, norm Norm) ([]float64, error) {
	if norm != H2 {
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedNorm, norm)
	}
	r, err := ControlGram(sys)
	if err != nil {
		return nil, err
	}
	n := r.SymmetricDim()
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sqrt(r.At(i, i))
	}
	return out, nil
}
