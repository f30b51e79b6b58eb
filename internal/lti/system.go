package lti

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltinorm/internal/linalg"
)

// System is an immutable state-space realization
//
//	x' = A x + B u      (analog)
//	x[k+1] = A x[k] + B u[k]   (discrete)
//	y = C x + D u
//
// Build one with New or one of the description constructors and pass the
// pointer around; every accessor hands out a copy.
type System struct {
	a, b, c, d *mat.Dense
	analog     bool
	dcgain     *mat.Dense
}

// New validates and copies the given matrices. A nil d is read as zeros.
func New(a, b, c, d mat.Matrix, analog bool) (*System, error) {
	if a == nil || b == nil || c == nil {
		return nil, fmt.Errorf("%w: A, B and C are required", ErrDimensionMismatch)
	}
	n, nc := a.Dims()
	if n == 0 {
		return nil, ErrNoStates
	}
	if n != nc {
		return nil, fmt.Errorf("%w: A is %d×%d", ErrDimensionMismatch, n, nc)
	}
	br, m := b.Dims()
	if br != n {
		return nil, fmt.Errorf("%w: B has %d rows, want %d", ErrDimensionMismatch, br, n)
	}
	p, cc := c.Dims()
	if cc != n {
		return nil, fmt.Errorf("%w: C has %d columns, want %d", ErrDimensionMismatch, cc, n)
	}
	var dd *mat.Dense
	if d == nil {
		dd = mat.NewDense(p, m, nil)
	} else {
		dr, dc := d.Dims()
		if dr != p || dc != m {
			return nil, fmt.Errorf("%w: D is %d×%d, want %d×%d", ErrDimensionMismatch, dr, dc, p, m)
		}
		dd = mat.DenseCopyOf(d)
	}

	for _, x := range []mat.Matrix{a, b, c, dd} {
		if linalg.HasNaNOrInf(x) {
			return nil, ErrInvalidMatrix
		}
	}

	return build(mat.DenseCopyOf(a), mat.DenseCopyOf(b), mat.DenseCopyOf(c), dd, analog), nil
}

// build takes ownership of already validated matrices.
func build(a, b, c, d *mat.Dense, analog bool) *System {
	s := &System{a: a, b: b, c: c, d: d, analog: analog}
	s.dcgain = s.computeDCGain()
	return s
}

// computeDCGain evaluates the transfer function at s=0 (analog) or z=1
// (discrete). A pole at that point yields +Inf entries.
func (s *System) computeDCGain() *mat.Dense {
	n, m, p := s.Dims()

	var lhs mat.Dense
	if s.analog {
		lhs.CloneFrom(s.a)
	} else {
		lhs.Sub(linalg.Eye(n), s.a)
	}

	var x mat.Dense
	if err := x.Solve(&lhs, s.b); err != nil {
		inf := mat.NewDense(p, m, nil)
		inf.Apply(func(_, _ int, _ float64) float64 { return math.Inf(1) }, inf)
		return inf
	}

	var cx mat.Dense
	cx.Mul(s.c, &x)

	gain := mat.NewDense(p, m, nil)
	if s.analog {
		gain.Sub(s.d, &cx)
	} else {
		gain.Add(s.d, &cx)
	}
	return gain
}

// A returns a copy of the state matrix.
func (s *System) A() *mat.Dense { return mat.DenseCopyOf(s.a) }

// B returns a copy of the input matrix.
func (s *System) B() *mat.Dense { return mat.DenseCopyOf(s.b) }

// C returns a copy of the output matrix.
func (s *System) C() *mat.Dense { return mat.DenseCopyOf(s.c) }

// D returns a copy of the feedthrough matrix.
func (s *System) D() *mat.Dense { return mat.DenseCopyOf(s.d) }

// Analog reports whether the system is continuous-time.
func (s *System) Analog() bool { return s.analog }

// DCGain returns the steady-state gain, D − C·A⁻¹·B for analog systems and
// D + C·(I−A)⁻¹·B for discrete ones.
func (s *System) DCGain() *mat.Dense { return mat.DenseCopyOf(s.dcgain) }

// Dims returns the number of states, inputs and outputs.
func (s *System) Dims() (n, m, p int) {
	n, _ = s.a.Dims()
	_, m = s.b.Dims()
	p, _ = s.c.Dims()
	return n, m, p
}

// IsSISO reports whether the system has one input and one output.
func (s *System) IsSISO() bool {
	_, m, p := s.Dims()
	return m == 1 && p == 1
}

// Eigenvalues returns the eigenvalues of A.
func (s *System) Eigenvalues() ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(s.a, mat.EigenNone); !ok {
		return nil, ErrEigen
	}
	return eig.Values(nil), nil
}

// MaxRealEigenvalue returns the eigenvalue of A with the largest real part.
func (s *System) MaxRealEigenvalue() (complex128, error) {
	values, err := s.Eigenvalues()
	if err != nil {
		return 0, err
	}
	best := values[0]
	for _, v := range values[1:] {
		if real(v) > real(best) {
			best = v
		}
	}
	return best, nil
}

// Dual returns the transposed system (Aᵀ, Cᵀ, Bᵀ, Dᵀ), which swaps the roles
// of controllability and observability.
func (s *System) Dual() *System {
	return build(
		mat.DenseCopyOf(s.a.T()),
		mat.DenseCopyOf(s.c.T()),
		mat.DenseCopyOf(s.b.T()),
		mat.DenseCopyOf(s.d.T()),
		s.analog,
	)
}

// StrictlyProper returns the same system with D set to zero.
func (s *System) StrictlyProper() *System {
	p, m := s.d.Dims()
	return build(s.A(), s.B(), s.C(), mat.NewDense(p, m, nil), s.analog)
}

// Transform applies the change of basis x = T·z, giving
// (Tinv·A·T, Tinv·B, C·T, D).
func (s *System) Transform(t, tinv mat.Matrix) (*System, error) {
	n, _, _ := s.Dims()
	if r, c := t.Dims(); r != n || c != n {
		return nil, fmt.Errorf("%w: T is %d×%d, want %d×%d", ErrDimensionMismatch, r, c, n, n)
	}
	if r, c := tinv.Dims(); r != n || c != n {
		return nil, fmt.Errorf("%w: Tinv is %d×%d, want %d×%d", ErrDimensionMismatch, r, c, n, n)
	}

	var at, a, b, c mat.Dense
	at.Mul(s.a, t)
	a.Mul(tinv, &at)
	b.Mul(tinv, s.b)
	c.Mul(s.c, t)
	return build(&a, &b, &c, s.D(), s.analog), nil
}

func (s *System) String() string {
	n, m, p := s.Dims()
	kind := "discrete"
	if s.analog {
		kind = "analog"
	}
	return fmt.Sprintf("%s system (states=%d, inputs=%d, outputs=%d)", kind, n, m, p)
}
