package lti

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FromTransferFunction realizes num(s)/den(s) (coefficients in decreasing
// powers) in controllable canonical form:
//
//	A = [-a1 -a2 ... -an; I 0],  B = e1,  C = b[1:] - b0·a[1:],  D = b0
//
// where den is normalized to be monic and num is padded to the length of den.
func FromTransferFunction(num, den []float64, analog bool) (*System, error) {
	den = trimLeadingZeros(den)
	num = trimLeadingZeros(num)
	if len(den) == 0 {
		return nil, fmt.Errorf("%w: denominator is zero", ErrInvalidMatrix)
	}
	if len(num) > len(den) {
		return nil, fmt.Errorf("%w: numerator degree %d > denominator degree %d", ErrImproper, len(num)-1, len(den)-1)
	}
	n := len(den) - 1
	if n == 0 {
		return nil, ErrNoStates
	}

	lead := den[0]
	a := make([]float64, len(den))
	for i, v := range den {
		a[i] = v / lead
	}
	b := make([]float64, len(den))
	offset := len(den) - len(num)
	for i, v := range num {
		b[offset+i] = v / lead
	}

	A := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		A.Set(0, j, -a[j+1])
	}
	for i := 1; i < n; i++ {
		A.Set(i, i-1, 1)
	}
	B := mat.NewDense(n, 1, nil)
	B.Set(0, 0, 1)
	C := mat.NewDense(1, n, nil)
	for j := 0; j < n; j++ {
		C.Set(0, j, b[j+1]-b[0]*a[j+1])
	}
	D := mat.NewDense(1, 1, []float64{b[0]})

	return New(A, B, C, D, analog)
}

// Lowpass returns the first-order analog filter 1/(τs + 1).
func Lowpass(tau float64) (*System, error) {
	if tau <= 0 {
		return nil, fmt.Errorf("%w: lowpass time constant %g", ErrParameterBounds, tau)
	}
	return FromTransferFunction([]float64{1}, []float64{tau, 1}, true)
}

// Alpha returns the second-order analog filter 1/(τs + 1)², the alpha
// synapse.
func Alpha(tau float64) (*System, error) {
	if tau <= 0 {
		return nil, fmt.Errorf("%w: alpha time constant %g", ErrParameterBounds, tau)
	}
	return FromTransferFunction([]float64{1}, []float64{tau * tau, 2 * tau, 1}, true)
}

// Integrator returns 1/s.
func Integrator() *System {
	sys, _ := FromTransferFunction([]float64{1}, []float64{1, 0}, true)
	return sys
}

func trimLeadingZeros(p []float64) []float64 {
	for i, v := range p {
		if v != 0 {
			return p[i:]
		}
	}
	return nil
}
