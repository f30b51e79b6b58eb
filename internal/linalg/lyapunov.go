package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SolveContinuousLyapunov returns the X satisfying
//
//	A·X + X·Aᵀ = Q
//
// The equation is rewritten in Kronecker form (A⊗I + I⊗A)·vec(X) = vec(Q)
// and handed to a dense LU solve. A singular operator, which happens when two
// eigenvalues of A sum to zero, surfaces as the mat.Condition error of the
// solve.
func SolveContinuousLyapunov(a, q mat.Matrix) (*mat.Dense, error) {
	n, err := lyapunovDims(a, q)
	if err != nil {
		return nil, err
	}

	eye := Eye(n)
	var op, right mat.Dense
	op.Kronecker(a, eye)
	right.Kronecker(eye, a)
	op.Add(&op, &right)

	return solveKronecker(&op, q, n, 1)
}

// SolveDiscreteLyapunov returns the X satisfying
//
//	A·X·Aᵀ − X + Q = 0
//
// also known as the Stein equation.
func SolveDiscreteLyapunov(a, q mat.Matrix) (*mat.Dense, error) {
	n, err := lyapunovDims(a, q)
	if err != nil {
		return nil, err
	}

	var op mat.Dense
	op.Kronecker(a, a)
	for i := 0; i < n*n; i++ {
		op.Set(i, i, op.At(i, i)-1)
	}

	return solveKronecker(&op, q, n, -1)
}

// solveKronecker solves op·vec(X) = sign·vec(Q) with row-major vectorization
// and reshapes the solution back into an n×n matrix.
func solveKronecker(op mat.Matrix, q mat.Matrix, n int, sign float64) (*mat.Dense, error) {
	rhs := mat.NewVecDense(n*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rhs.SetVec(i*n+j, sign*q.At(i, j))
		}
	}

	var x mat.VecDense
	if err := x.SolveVec(op, rhs); err != nil {
		return nil, err
	}

	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, x.AtVec(i*n+j))
		}
	}
	return out, nil
}

func lyapunovDims(a, q mat.Matrix) (int, error) {
	ar, ac := a.Dims()
	if ar != ac {
		return 0, fmt.Errorf("%w: dynamics matrix is %d×%d", ErrNotSquare, ar, ac)
	}
	qr, qc := q.Dims()
	if qr != ar || qc != ac {
		return 0, fmt.Errorf("%w: forcing matrix is %d×%d, want %d×%d", ErrShape, qr, qc, ar, ac)
	}
	return ar, nil
}
