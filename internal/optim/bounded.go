package optim

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultMaxEvaluations bounds the function evaluations of Bounded.
	DefaultMaxEvaluations = 500

	// DefaultXTol is the absolute tolerance on the minimizer location.
	DefaultXTol = 1e-5
)

var (
	// ErrInvalidInterval indicates lo > hi or a non-finite bound.
	ErrInvalidInterval = errors.New("optim: invalid search interval")

	// ErrMaxEvaluations indicates the evaluation budget ran out before the
	// interval shrank below tolerance. The best point found is still returned.
	ErrMaxEvaluations = errors.New("optim: maximum number of function evaluations exceeded")
)

// Result is the outcome of a scalar minimization.
type Result struct {
	X           float64
	F           float64
	Evaluations int
}

// Bounded minimizes a scalar function on a closed interval using Brent's
// method: golden-section steps with parabolic interpolation whenever the
// parabola is acceptable. The endpoints themselves are never evaluated.
//
// The step logic follows Forsythe, Malcolm and Moler's fmin routine, with the
// tolerance xtol/3 + sqrt(eps)·|x| on each step.
type Bounded struct {
	XTol           float64
	MaxEvaluations int
}

// NewBounded returns a Bounded minimizer with default settings.
func NewBounded() *Bounded {
	return &Bounded{
		XTol:           DefaultXTol,
		MaxEvaluations: DefaultMaxEvaluations,
	}
}

// Minimize searches (lo, hi) for a local minimum of f.
func (b *Bounded) Minimize(f func(float64) float64, lo, hi float64) (Result, error) {
	if lo > hi || math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Result{}, fmt.Errorf("%w: [%g, %g]", ErrInvalidInterval, lo, hi)
	}

	xtol := b.XTol
	if xtol <= 0 {
		xtol = DefaultXTol
	}
	maxEval := b.MaxEvaluations
	if maxEval <= 0 {
		maxEval = DefaultMaxEvaluations
	}

	sqrtEps := math.Sqrt(2.2e-16)
	goldenMean := 0.5 * (3.0 - math.Sqrt(5.0))

	a, c := lo, hi
	fulc := a + goldenMean*(c-a)
	nfc, xf := fulc, fulc
	rat, e := 0.0, 0.0
	x := xf
	fx := f(x)
	num := 1
	ffulc, fnfc := fx, fx
	xm := 0.5 * (a + c)
	tol1 := sqrtEps*math.Abs(xf) + xtol/3.0
	tol2 := 2.0 * tol1

	for math.Abs(xf-xm) > (tol2 - 0.5*(c-a)) {
		golden := true

		if math.Abs(e) > tol1 {
			golden = false
			r := (xf - nfc) * (fx - ffulc)
			q := (xf - fulc) * (fx - fnfc)
			p := (xf-fulc)*q - (xf-nfc)*r
			q = 2.0 * (q - r)
			if q > 0.0 {
				p = -p
			}
			q = math.Abs(q)
			r = e
			e = rat

			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-xf) && p < q*(c-xf) {
				rat = p / q
				x = xf + rat
				if (x-a) < tol2 || (c-x) < tol2 {
					rat = tol1 * signOrOne(xm-xf)
				}
			} else {
				golden = true
			}
		}

		if golden {
			if xf >= xm {
				e = a - xf
			} else {
				e = c - xf
			}
			rat = goldenMean * e
		}

		x = xf + signOrOne(rat)*math.Max(math.Abs(rat), tol1)
		fu := f(x)
		num++

		if fu <= fx {
			if x >= xf {
				a = xf
			} else {
				c = xf
			}
			fulc, ffulc = nfc, fnfc
			nfc, fnfc = xf, fx
			xf, fx = x, fu
		} else {
			if x < xf {
				a = x
			} else {
				c = x
			}
			if fu <= fnfc || nfc == xf {
				fulc, ffulc = nfc, fnfc
				nfc, fnfc = x, fu
			} else if fu <= ffulc || fulc == xf || fulc == nfc {
				fulc, ffulc = x, fu
			}
		}

		xm = 0.5 * (a + c)
		tol1 = sqrtEps*math.Abs(xf) + xtol/3.0
		tol2 = 2.0 * tol1

		if num >= maxEval {
			return Result{X: xf, F: fx, Evaluations: num}, ErrMaxEvaluations
		}
	}

	return Result{X: xf, F: fx, Evaluations: num}, nil
}

// signOrOne is sign(v) with sign(0) taken as +1.
func signOrOne(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
