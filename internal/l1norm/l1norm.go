package l1norm

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltinorm/internal/linalg"
	"github.com/san-kum/ltinorm/internal/lti"
	"github.com/san-kum/ltinorm/internal/optim"
)

// Result is the outcome of Norm. Lower and Upper include |D|, so
// Lower ≤ Estimate ≤ Upper.
type Result struct {
	Estimate   float64
	HalfWidth  float64
	Lower      float64
	Upper      float64
	Iterations int
	Samples    int
	Horizon    float64
	Converged  bool
}

// Iteration reports the bounds after one refinement. Bounds exclude |D|.
type Iteration struct {
	Index          int
	Samples        int
	Horizon        float64
	Step           float64
	Lower          float64
	Upper          float64
	HalfWidth      float64
	HorizonDoubled bool
}

// estimator holds the strictly proper part of an analog SISO system.
type estimator struct {
	a, b, c  *mat.Dense
	sys      *lti.System
	ctc      *mat.Dense
	alpha    float64
	gain     float64
	minimize *optim.Bounded
}

// Norm bounds the L1 norm of an analog, BIBO stable SISO system, the integral
// of the absolute value of its impulse response. Lower and upper bounds are
// refined on progressively finer and longer discretizations until their
// relative half-width drops below the tolerance or the sample ceiling is
// reached. Hitting the ceiling is not an error; check Result.Converged.
func Norm(sys *lti.System, opts ...Option) (Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e, err := newEstimator(sys)
	if err != nil {
		return Result{}, err
	}

	upper, err := e.tail(mat.Col(nil, 0, e.b))
	if err != nil {
		return Result{}, err
	}
	state := bounds{
		lower:   math.Abs(e.gain),
		upper:   upper,
		samples: initialLength,
		horizon: -1 / e.alpha,
	}
	state.lowerUpper(math.Inf(1))
	o.log.Debugw("l1 initial bounds",
		"alpha", e.alpha, "lower", state.lower, "upper", state.upper)

	iterations := 0
	var last bounds
	for !state.done(o.relTol, o.maxLength) {
		prev := state
		grow, err := e.refine(&state)
		if err != nil {
			return Result{}, err
		}
		if err := state.check(prev); err != nil {
			return Result{}, err
		}
		last = prev
		iterations++

		it := Iteration{
			Index:          iterations,
			Samples:        prev.samples,
			Horizon:        prev.horizon,
			Step:           prev.step(),
			Lower:          state.lower,
			Upper:          state.upper,
			HalfWidth:      state.halfWidth(),
			HorizonDoubled: grow,
		}
		o.log.Debugw("l1 refinement",
			"iteration", it.Index,
			"samples", it.Samples,
			"horizon", it.Horizon,
			"lower", it.Lower,
			"upper", it.Upper,
			"half_width", it.HalfWidth,
		)
		if o.observer != nil {
			o.observer(it)
		}
	}

	d := math.Abs(sys.D().At(0, 0))
	hw := state.halfWidth()
	return Result{
		Estimate:   (state.upper+state.lower)/2 + d,
		HalfWidth:  hw,
		Lower:      state.lower + d,
		Upper:      state.upper + d,
		Iterations: iterations,
		Samples:    last.samples,
		Horizon:    last.horizon,
		Converged:  hw < o.relTol,
	}, nil
}

func newEstimator(sys *lti.System) (*estimator, error) {
	if !sys.Analog() {
		return nil, ErrNotAnalog
	}
	if !sys.IsSISO() {
		return nil, ErrNotSISO
	}

	ev, err := sys.MaxRealEigenvalue()
	if err != nil {
		return nil, err
	}
	alpha := real(ev)
	if alpha >= 0 {
		return nil, &StabilityError{Eigenvalue: ev, Alpha: alpha, Wrapped: ErrUnstable}
	}

	sp := sys.StrictlyProper()
	c := sp.C()
	var ctc mat.Dense
	ctc.Mul(c.T(), c)

	return &estimator{
		a:     sp.A(),
		b:     sp.B(),
		c:     c,
		sys:   sp,
		ctc:   &ctc,
		alpha: alpha,
		gain:  sys.DCGain().At(0, 0) - sys.D().At(0, 0),
		minimize: &optim.Bounded{
			XTol:           -alpha * 1e-4,
			MaxEvaluations: optim.DefaultMaxEvaluations,
		},
	}, nil
}

// refine performs one pass at the current resolution and reports whether the
// horizon was doubled for the next one.
func (e *estimator) refine(state *bounds) (bool, error) {
	n := state.samples
	dt := state.step()

	dsys, err := e.sys.Discretize(dt)
	if err != nil {
		return false, err
	}
	y, err := dsys.Impulse(n)
	if err != nil {
		return false, err
	}

	// Lower bound: sampled response plus what the DC gain says is missing
	// beyond the horizon.
	absY := make([]float64, n)
	for i, v := range y {
		absY[i] = math.Abs(v)
	}
	lowerImpulse := floats.Sum(absY)
	lowerTail := math.Abs(e.gain - floats.Sum(y))
	state.raiseLower(lowerImpulse + lowerTail)

	// Upper bound: intervals whose endpoint magnitudes stay under the
	// threshold cannot contain a zero crossing and get the exact
	// quadratic-form bound.
	phi := dsys.A()
	x := dsys.StateImpulse(mat.Col(nil, 0, e.b), n)
	c := e.c.RawRowView(0)
	absE := make([]float64, n)
	for k := range absE {
		absE[k] = math.Abs(floats.Dot(c, x.RawRowView(k)))
	}

	var cphi, rhs mat.Dense
	cphi.Mul(e.ctc, phi)
	rhs.Mul(phi.T(), &cphi)
	rhs.Sub(&rhs, e.ctc)
	w, err := linalg.SolveContinuousLyapunov(e.a.T(), &rhs)
	if err != nil {
		return false, err
	}
	var wa, awa mat.Dense
	wa.Mul(w, e.a)
	awa.Mul(e.a.T(), &wa)

	for i := 0; i < n-1; i++ {
		xi := x.RawRowView(i)
		thresh := math.Sqrt(dt * linalg.QuadForm(xi, &awa))
		if math.Max(absE[i], absE[i+1]) <= thresh {
			absY[i] = math.Sqrt(dt * linalg.QuadForm(xi, w))
		}
	}

	upperTail, err := e.tail(x.RawRowView(n - 2))
	if err != nil {
		return false, err
	}
	upperImpulse := floats.Sum(absY)
	state.lowerUpper(upperImpulse + upperTail)

	grow := upperImpulse-lowerImpulse < upperTail-lowerTail
	state.advance(grow)
	return grow, nil
}

// tail bounds the L1 norm of the free response from state x:
//
//	min over 0 < σ < −α of sqrt(x·Wσ·xᵀ / 2σ)
//	(A+σI)ᵀ·Wσ + Wσ·(A+σI) = −CᵀC
func (e *estimator) tail(x []float64) (float64, error) {
	n, _ := e.a.Dims()
	var q mat.Dense
	q.Scale(-1, e.ctc)

	objective := func(sigma float64) float64 {
		var shifted mat.Dense
		shifted.Add(e.a.T(), scaledEye(n, sigma))
		w, err := linalg.SolveContinuousLyapunov(&shifted, &q)
		if err != nil {
			return math.Inf(1)
		}
		return math.Sqrt(linalg.QuadForm(x, w) / 2 / sigma)
	}

	res, err := e.minimize.Minimize(objective, 0, -e.alpha)
	if err != nil && !errors.Is(err, optim.ErrMaxEvaluations) {
		return 0, err
	}
	return res.F, nil
}

func scaledEye(n int, v float64) *mat.DiagDense {
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return mat.NewDiagDense(n, data)
}
