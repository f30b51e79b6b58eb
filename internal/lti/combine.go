package lti

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Scale multiplies the output of s by k.
func Scale(k float64, s *System) *System {
	var c, d mat.Dense
	c.Scale(k, s.c)
	d.Scale(k, s.d)
	return build(s.A(), s.B(), &c, &d, s.analog)
}

// Sum connects a and b in parallel: both see the same input and their
// outputs add. The realization is block diagonal.
func Sum(a, b *System) (*System, error) {
	if a.analog != b.analog {
		return nil, fmt.Errorf("%w: cannot add analog and discrete systems", ErrIncompatible)
	}
	na, ma, pa := a.Dims()
	nb, mb, pb := b.Dims()
	if ma != mb || pa != pb {
		return nil, fmt.Errorf("%w: parallel systems need equal input/output counts (%d×%d vs %d×%d)",
			ErrIncompatible, pa, ma, pb, mb)
	}
	n := na + nb

	A := mat.NewDense(n, n, nil)
	A.Slice(0, na, 0, na).(*mat.Dense).Copy(a.a)
	A.Slice(na, n, na, n).(*mat.Dense).Copy(b.a)

	var B, C, D mat.Dense
	B.Stack(a.b, b.b)
	C.Augment(a.c, b.c)
	D.Add(a.d, b.d)

	return build(A, &B, &C, &D, a.analog), nil
}

// Series feeds the output of first into the input of second.
//
//	A = [A1 0; B2·C1 A2], B = [B1; B2·D1], C = [D2·C1 C2], D = D2·D1
func Series(first, second *System) (*System, error) {
	if first.analog != second.analog {
		return nil, fmt.Errorf("%w: cannot chain analog and discrete systems", ErrIncompatible)
	}
	n1, _, p1 := first.Dims()
	n2, m2, _ := second.Dims()
	if p1 != m2 {
		return nil, fmt.Errorf("%w: %d outputs feed %d inputs", ErrIncompatible, p1, m2)
	}
	n := n1 + n2

	A := mat.NewDense(n, n, nil)
	A.Slice(0, n1, 0, n1).(*mat.Dense).Copy(first.a)
	A.Slice(n1, n, n1, n).(*mat.Dense).Copy(second.a)
	A.Slice(n1, n, 0, n1).(*mat.Dense).Mul(second.b, first.c)

	var b2d1, B mat.Dense
	b2d1.Mul(second.b, first.d)
	B.Stack(first.b, &b2d1)

	var d2c1, C mat.Dense
	d2c1.Mul(second.d, first.c)
	C.Augment(&d2c1, second.c)

	var D mat.Dense
	D.Mul(second.d, first.d)

	return build(A, &B, &C, &D, first.analog), nil
}
