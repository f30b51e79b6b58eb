package gramian

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltinorm/internal/linalg"
	"github.com/san-kum/ltinorm/internal/lti"
)

// Balanced is a similarity transform that makes both gramians equal to
// diag(S). S holds the Hankel singular values in SVD order.
type Balanced struct {
	T    *mat.Dense
	Tinv *mat.Dense
	S    []float64
}

// BalancedTransformation computes the balancing transform of an analog,
// minimal system:
//
//	R = Lr·Lrᵀ, O = Lo·Loᵀ, Loᵀ·Lr = U·S·Vᵀ
//	T = Lr·V·S^-½, Tinv = S^-½·Uᵀ·Loᵀ
func BalancedTransformation(sys *lti.System) (*Balanced, error) {
	if !sys.Analog() {
		return nil, ErrDiscreteBalancing
	}

	r, err := ControlGram(sys)
	if err != nil {
		return nil, err
	}
	o, err := ObserveGram(sys)
	if err != nil {
		return nil, err
	}

	lr, err := choleskyFactor(r, "controllability")
	if err != nil {
		return nil, err
	}
	lo, err := choleskyFactor(o, "observability")
	if err != nil {
		return nil, err
	}

	var m mat.Dense
	m.Mul(lo.T(), lr)

	var svd mat.SVD
	if ok := svd.Factorize(&m, mat.SVDFull); !ok {
		return nil, &FactorizationError{Gramian: "cross", Wrapped: ErrNotPositiveDefinite}
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	isqrt := make([]float64, len(s))
	for i, x := range s {
		isqrt[i] = 1 / math.Sqrt(x)
	}
	scale := linalg.Diag(isqrt)

	var lv, t mat.Dense
	lv.Mul(lr, &v)
	t.Mul(&lv, scale)

	var ul, tinv mat.Dense
	ul.Mul(u.T(), lo.T())
	tinv.Mul(scale, &ul)

	return &Balanced{T: &t, Tinv: &tinv, S: s}, nil
}

// Balance returns the balanced realization of sys together with its Hankel
// singular values.
func Balance(sys *lti.System) (*lti.System, []float64, error) {
	b, err := BalancedTransformation(sys)
	if err != nil {
		return nil, nil, err
	}
	balanced, err := sys.Transform(b.T, b.Tinv)
	if err != nil {
		return nil, nil, err
	}
	return balanced, b.S, nil
}

// Hankel returns the Hankel singular values of sys, sorted descending. They
// are computed from the eigenvalues of O·R rather than from the balancing
// factorization.
func Hankel(sys *lti.System) ([]float64, error) {
	r, err := ControlGram(sys)
	if err != nil {
		return nil, err
	}
	o, err := ObserveGram(sys)
	if err != nil {
		return nil, err
	}

	var or mat.Dense
	or.Mul(o, r)

	var eig mat.Eigen
	if ok := eig.Factorize(&or, mat.EigenNone); !ok {
		return nil, lti.ErrEigen
	}
	values := eig.Values(nil)

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Sqrt(cmplx.Abs(v))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out, nil
}

func choleskyFactor(g *mat.SymDense, name string) (*mat.TriDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(g); !ok {
		return nil, &FactorizationError{Gramian: name, Wrapped: ErrNotPositiveDefinite}
	}
	var l mat.TriDense
	chol.LTo(&l)
	return &l, nil
}
