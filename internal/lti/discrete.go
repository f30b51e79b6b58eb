package lti

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Discretize converts an analog system to a discrete one with a zero-order
// hold on the input. Both discrete matrices come out of a single matrix
// exponential:
//
//	expm([A B; 0 0]·dt) = [Φ Γ; 0 I]
func (s *System) Discretize(dt float64) (*System, error) {
	if !s.analog {
		return nil, ErrAlreadyDiscrete
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt=%g", ErrInvalidStep, dt)
	}
	n, m, _ := s.Dims()

	aug := mat.NewDense(n+m, n+m, nil)
	aug.Slice(0, n, 0, n).(*mat.Dense).Scale(dt, s.a)
	aug.Slice(0, n, n, n+m).(*mat.Dense).Scale(dt, s.b)

	var e mat.Dense
	e.Exp(aug)

	phi := mat.DenseCopyOf(e.Slice(0, n, 0, n))
	gamma := mat.DenseCopyOf(e.Slice(0, n, n, n+m))
	return build(phi, gamma, s.C(), s.D(), false), nil
}

// Impulse returns the first length samples of the impulse response of a
// discrete SISO system. The state is updated before the output is read, so
//
//	y[0] = C·B + D,  y[k] = C·Aᵏ·B
//
// and for a system produced by Discretize the samples are the exact integrals
// of the analog impulse response over each step.
func (s *System) Impulse(length int) ([]float64, error) {
	if s.analog {
		return nil, ErrNotDiscrete
	}
	if !s.IsSISO() {
		return nil, ErrNotSISO
	}
	if length <= 0 {
		return []float64{}, nil
	}

	x := s.StateImpulse(mat.Col(nil, 0, s.b), length)
	y := make([]float64, length)
	c := s.c.RawRowView(0)
	for k := 0; k < length; k++ {
		row := x.RawRowView(k)
		sum := 0.0
		for j, v := range row {
			sum += c[j] * v
		}
		y[k] = sum
	}
	y[0] += s.d.At(0, 0)
	return y, nil
}

// StateImpulse iterates the free response x[k+1] = A·x[k] from x[0] = x0
// and returns the states as the rows of a length×n matrix, or nil for a
// non-positive length. The analog flag is ignored; A is simply powered.
func (s *System) StateImpulse(x0 []float64, length int) *mat.Dense {
	n, _, _ := s.Dims()
	if len(x0) != n {
		panic(ErrDimensionMismatch)
	}
	if length <= 0 {
		return nil
	}
	out := mat.NewDense(length, n, nil)
	out.SetRow(0, x0)
	for k := 1; k < length; k++ {
		prev := out.RawRowView(k - 1)
		next := out.RawRowView(k)
		for i := 0; i < n; i++ {
			sum := 0.0
			for j, v := range s.a.RawRowView(i) {
				sum += v * prev[j]
			}
			next[i] = sum
		}
	}
	return out
}

// Response evaluates the analog impulse response h(t) = C·e^{At}·B of a SISO
// system at the given times. Each sample is computed independently.
func (s *System) Response(times []float64) ([]float64, error) {
	if !s.analog {
		return nil, ErrNotAnalog
	}
	if !s.IsSISO() {
		return nil, ErrNotSISO
	}

	res := make([]float64, len(times))
	var wg sync.WaitGroup
	wg.Add(len(times))
	for index, t := range times {
		go func(i int, t float64) {
			defer wg.Done()
			var at, eat, ceat, h mat.Dense
			at.Scale(t, s.a)
			eat.Exp(&at)
			ceat.Mul(s.c, &eat)
			h.Mul(&ceat, s.b)
			res[i] = h.At(0, 0)
		}(index, t)
	}
	wg.Wait()
	return res, nil
}
