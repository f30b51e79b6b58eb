package l1norm

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltinorm/internal/lti"
)

func oscillator(t *testing.T) *lti.System {
	t.Helper()
	sys, err := lti.New(
		mat.NewDense(2, 2, []float64{-1, -10, 10, -1}),
		mat.NewDense(2, 1, []float64{1, 0}),
		mat.NewDense(1, 2, []float64{0, 1}),
		nil, true,
	)
	if err != nil {
		t.Fatal(err)
	}
	return sys
}

// dampedSineL1 is the integral of |e^{-at}·sin(bt)| over [0, ∞).
func dampedSineL1(a, b float64) float64 {
	return b / (a*a + b*b) / math.Tanh(math.Pi*a/(2*b))
}

func assertBracket(t *testing.T, res Result, truth float64) {
	t.Helper()
	slack := 1e-9 * math.Abs(truth)
	if res.Lower > truth+slack || res.Upper < truth-slack {
		t.Errorf("true value %v outside [%v, %v]", truth, res.Lower, res.Upper)
	}
	if res.Lower > res.Estimate || res.Estimate > res.Upper {
		t.Errorf("estimate %v outside [%v, %v]", res.Estimate, res.Lower, res.Upper)
	}
}

func TestNormOfPositiveFilters(t *testing.T) {
	lp, _ := lti.Lowpass(0.1)
	al, _ := lti.Alpha(0.1)

	tests := []struct {
		name string
		sys  *lti.System
		tol  float64
	}{
		{"lowpass", lp, 1e-6},
		{"alpha", al, 1e-4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Norm(tt.sys)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(res.Estimate-1) > tt.tol {
				t.Errorf("expected L1 norm 1, got %v (half-width %v)", res.Estimate, res.HalfWidth)
			}
			assertBracket(t, res, 1)
		})
	}
}

func TestNormLowpassNeedsNoRefinement(t *testing.T) {
	lp, _ := lti.Lowpass(0.05)
	res, err := Norm(lp)
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations != 0 {
		t.Errorf("expected the tail bound alone to converge, got %d iterations", res.Iterations)
	}
	if !res.Converged {
		t.Errorf("expected convergence, half-width %v", res.HalfWidth)
	}
}

func TestNormDampedOscillator(t *testing.T) {
	truth := dampedSineL1(1, 10)

	res, err := Norm(oscillator(t))
	if err != nil {
		t.Fatal(err)
	}
	assertBracket(t, res, truth)
	if res.HalfWidth >= 1e-3 {
		t.Errorf("half-width %v too large", res.HalfWidth)
	}
	if math.Abs(res.Estimate-truth) > res.HalfWidth*res.Lower+1e-12 {
		t.Errorf("estimate %v too far from %v", res.Estimate, truth)
	}
}

func TestNormIncludesFeedthrough(t *testing.T) {
	// 2 + 1/(s+1): impulse response 2δ(t) + e^{-t}
	sys, err := lti.FromTransferFunction([]float64{2, 3}, []float64{1, 1}, true)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Norm(sys)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Estimate-3) > 1e-6 {
		t.Errorf("expected 3, got %v", res.Estimate)
	}
	assertBracket(t, res, 3)
}

func TestNormHalfWidthShrinksWithLength(t *testing.T) {
	sys := oscillator(t)
	prev := math.Inf(1)
	for _, length := range []int{1 << 6, 1 << 8, 1 << 10} {
		res, err := Norm(sys, WithRelTol(1e-12), WithMaxLength(length))
		if err != nil {
			t.Fatal(err)
		}
		if res.HalfWidth > prev {
			t.Errorf("max length %d: half-width grew from %v to %v", length, prev, res.HalfWidth)
		}
		prev = res.HalfWidth

		maxIterations := int(math.Log2(float64(length)/16)) + 1
		if res.Iterations != maxIterations {
			t.Errorf("max length %d: expected %d iterations, got %d", length, maxIterations, res.Iterations)
		}
		if res.Samples != length {
			t.Errorf("max length %d: last refinement used %d samples", length, res.Samples)
		}
		if res.Converged {
			t.Error("did not expect convergence at rtol 1e-12")
		}
	}
}

func TestNormShortCeilingSkipsRefinement(t *testing.T) {
	res, err := Norm(oscillator(t), WithMaxLength(8))
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations != 0 {
		t.Errorf("expected no refinement, got %d", res.Iterations)
	}
	assertBracket(t, res, dampedSineL1(1, 10))
}

func TestNormObserverSeesMonotoneBounds(t *testing.T) {
	var seen []Iteration
	res, err := Norm(oscillator(t),
		WithMaxLength(1<<9),
		WithObserver(func(it Iteration) { seen = append(seen, it) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != res.Iterations {
		t.Fatalf("observer saw %d iterations, result reports %d", len(seen), res.Iterations)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i].Lower < seen[i-1].Lower {
			t.Errorf("iteration %d: lower bound decreased", seen[i].Index)
		}
		if seen[i].Upper > seen[i-1].Upper {
			t.Errorf("iteration %d: upper bound increased", seen[i].Index)
		}
		if seen[i].Samples != 2*seen[i-1].Samples {
			t.Errorf("iteration %d: samples %d after %d", seen[i].Index, seen[i].Samples, seen[i-1].Samples)
		}
	}
}

func TestNormLogsRefinements(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	res, err := Norm(oscillator(t), WithMaxLength(1<<7), WithLogger(zap.New(core).Sugar()))
	if err != nil {
		t.Fatal(err)
	}
	if got := logs.FilterMessage("l1 refinement").Len(); got != res.Iterations {
		t.Errorf("expected %d refinement entries, got %d", res.Iterations, got)
	}
	if logs.FilterMessage("l1 initial bounds").Len() != 1 {
		t.Error("missing initial bounds entry")
	}
}

func TestNormPreconditions(t *testing.T) {
	lp, _ := lti.Lowpass(0.1)
	dlp, err := lp.Discretize(0.01)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Norm(dlp); !errors.Is(err, ErrNotAnalog) {
		t.Errorf("expected ErrNotAnalog, got %v", err)
	}

	mimo, err := lti.New(
		mat.NewDense(1, 1, []float64{-1}),
		mat.NewDense(1, 2, []float64{1, 1}),
		mat.NewDense(1, 1, []float64{1}),
		nil, true,
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Norm(mimo); !errors.Is(err, ErrNotSISO) {
		t.Errorf("expected ErrNotSISO, got %v", err)
	}
}

func TestNormRejectsUnstable(t *testing.T) {
	tests := []struct {
		name string
		sys  *lti.System
		want float64
	}{
		{"growing", mustNew(t, 0.5), 0.5},
		{"integrator", lti.Integrator(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Norm(tt.sys)
			if !errors.Is(err, ErrUnstable) {
				t.Fatalf("expected ErrUnstable, got %v", err)
			}
			var serr *StabilityError
			if !errors.As(err, &serr) {
				t.Fatal("expected *StabilityError")
			}
			if real(serr.Eigenvalue) != tt.want {
				t.Errorf("expected eigenvalue %v, got %v", tt.want, serr.Eigenvalue)
			}
		})
	}
}

func mustNew(t *testing.T, a float64) *lti.System {
	t.Helper()
	sys, err := lti.New(
		mat.NewDense(1, 1, []float64{a}),
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}),
		nil, true,
	)
	if err != nil {
		t.Fatal(err)
	}
	return sys
}
