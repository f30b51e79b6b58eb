package linalg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotSquare indicates a matrix that has to be square is not.
	ErrNotSquare = errors.New("linalg: matrix is not square")

	// ErrShape indicates operands with incompatible dimensions.
	ErrShape = errors.New("linalg: dimension mismatch")
)

// Eye returns the n×n identity matrix.
func Eye(n int) *mat.DiagDense {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1
	}
	return mat.NewDiagDense(n, data)
}

// Diag returns a square diagonal matrix holding values.
func Diag(values []float64) *mat.DiagDense {
	data := make([]float64, len(values))
	copy(data, values)
	return mat.NewDiagDense(len(data), data)
}

// Symmetrize returns (M + Mᵀ)/2 as a symmetric matrix. M must be square.
func Symmetrize(m mat.Matrix) *mat.SymDense {
	n, c := m.Dims()
	if n != c {
		panic(ErrNotSquare)
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	return sym
}

// HasNaNOrInf reports whether any entry of m is NaN or ±Inf.
func HasNaNOrInf(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

// QuadForm returns x·M·xᵀ for the row vector x.
func QuadForm(x []float64, m mat.Matrix) float64 {
	v := mat.NewVecDense(len(x), x)
	return mat.Inner(v, m, v)
}

// MaxAbs returns the largest absolute entry of m.
func MaxAbs(m mat.Matrix) float64 {
	r, c := m.Dims()
	best := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			best = math.Max(best, math.Abs(m.At(i, j)))
		}
	}
	return best
}
