package gramian_test

import (
	"errors"
	"math"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltinorm/internal/gramian"
	"github.com/san-kum/ltinorm/internal/linalg"
	"github.com/san-kum/ltinorm/internal/lti"
)

func outer(b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(b, b.T())
	return &out
}

// continuousResidual returns A·P + P·Aᵀ + Q.
func continuousResidual(a, p, q mat.Matrix) *mat.Dense {
	var ap, pat, res mat.Dense
	ap.Mul(a, p)
	pat.Mul(p, a.T())
	res.Add(&ap, &pat)
	res.Add(&res, q)
	return &res
}

// discreteResidual returns A·P·Aᵀ − P + Q.
func discreteResidual(a, p, q mat.Matrix) *mat.Dense {
	var ap, apat, res mat.Dense
	ap.Mul(a, p)
	apat.Mul(&ap, a.T())
	res.Sub(&apat, p)
	res.Add(&res, q)
	return &res
}

func residualTol(a, p, q mat.Matrix) float64 {
	return 1e-8 * (linalg.MaxAbs(q) + linalg.MaxAbs(a)*linalg.MaxAbs(p))
}

func rank(m mat.Matrix) int {
	var svd mat.SVD
	Expect(svd.Factorize(m, mat.SVDNone)).To(BeTrue())
	values := svd.Values(nil)
	count := 0
	for _, v := range values {
		if v > 1e-12*values[0] {
			count++
		}
	}
	return count
}

func mixedSystem() *lti.System {
	al, err := lti.Alpha(0.01)
	Expect(err).NotTo(HaveOccurred())
	lp, err := lti.Lowpass(0.05)
	Expect(err).NotTo(HaveOccurred())
	sys, err := lti.Sum(lti.Scale(0.6, al), lti.Scale(0.4, lp))
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func oscillator() *lti.System {
	sys, err := lti.New(
		mat.NewDense(2, 2, []float64{-1, -10, 10, -1}),
		mat.NewDense(2, 1, []float64{1, 0}),
		mat.NewDense(1, 2, []float64{0, 1}),
		nil, true,
	)
	Expect(err).NotTo(HaveOccurred())
	return sys
}

var _ = Describe("Solve", func() {
	It("satisfies the continuous Lyapunov equation", func() {
		a := mat.NewDense(2, 2, []float64{1, 0.5, 1, 0})
		b := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

		p, err := gramian.Solve(a, b, true)
		Expect(err).NotTo(HaveOccurred())

		res := continuousResidual(a, p, outer(b))
		Expect(linalg.MaxAbs(res)).To(BeNumerically("<", 1e-8))
	})

	It("satisfies the discrete Lyapunov equation", func() {
		a := mat.NewDense(2, 2, []float64{0.5, 0.1, 0, 0.3})
		b := mat.NewDense(2, 1, []float64{1, 0.5})

		p, err := gramian.Solve(a, b, false)
		Expect(err).NotTo(HaveOccurred())

		res := discreteResidual(a, p, outer(b))
		Expect(linalg.MaxAbs(res)).To(BeNumerically("<", 1e-12))
	})

	It("propagates a singular Lyapunov operator", func() {
		a := mat.NewDiagDense(2, []float64{1, -1})
		b := mat.NewDense(2, 1, []float64{1, 1})

		_, err := gramian.Solve(a, b, true)
		Expect(err).To(HaveOccurred())
		var cond mat.Condition
		Expect(errors.As(err, &cond)).To(BeTrue())
	})
})

var _ = Describe("ControlGram and ObserveGram", func() {
	It("are full rank and solve their equations for a mixed filter", func() {
		sys := mixedSystem()
		a := sys.A()

		r, err := gramian.ControlGram(sys)
		Expect(err).NotTo(HaveOccurred())
		o, err := gramian.ObserveGram(sys)
		Expect(err).NotTo(HaveOccurred())

		Expect(rank(r)).To(Equal(3))
		Expect(rank(o)).To(Equal(3))

		q := outer(sys.B())
		Expect(linalg.MaxAbs(continuousResidual(a, r, q))).To(BeNumerically("<", residualTol(a, r, q)))

		ct := sys.C().T()
		qo := outer(ct)
		Expect(linalg.MaxAbs(continuousResidual(a.T(), o, qo))).To(BeNumerically("<", residualTol(a, o, qo)))
	})

	It("are dual to each other", func() {
		sys := mixedSystem()
		o, err := gramian.ObserveGram(sys)
		Expect(err).NotTo(HaveOccurred())
		r, err := gramian.ControlGram(sys.Dual())
		Expect(err).NotTo(HaveOccurred())
		Expect(mat.EqualApprox(o, r, 1e-9*linalg.MaxAbs(o))).To(BeTrue())
	})

	It("matches the closed form for an alpha filter", func() {
		tau := 0.1
		sys, err := lti.Alpha(tau)
		Expect(err).NotTo(HaveOccurred())

		r, err := gramian.ControlGram(sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.At(0, 0)).To(BeNumerically("~", tau/4, 1e-9))
		Expect(r.At(1, 1)).To(BeNumerically("~", math.Pow(tau, 3)/4, 1e-12))
		Expect(r.At(0, 1)).To(BeNumerically("~", 0, 1e-12))
	})
})

var _ = Describe("StateNorm", func() {
	It("returns the square root of the gramian diagonal", func() {
		tau := 0.1
		sys, err := lti.Alpha(tau)
		Expect(err).NotTo(HaveOccurred())

		norms, err := gramian.StateNorm(sys, gramian.H2)
		Expect(err).NotTo(HaveOccurred())
		Expect(norms).To(HaveLen(2))
		Expect(norms[0]).To(BeNumerically("~", math.Sqrt(tau/4), 1e-9))
		Expect(norms[1]).To(BeNumerically("~", math.Sqrt(math.Pow(tau, 3)/4), 1e-9))
	})

	It("rejects other norms", func() {
		sys, err := lti.Alpha(0.1)
		Expect(err).NotTo(HaveOccurred())

		_, err = gramian.StateNorm(sys, gramian.Norm("Hinf"))
		Expect(err).To(MatchError(gramian.ErrUnsupportedNorm))
		Expect(err.Error()).To(ContainSubstring("H2"))
	})

	It("equals the energy of the simulated state response for a discrete system", func() {
		sys, err := lti.Alpha(0.1)
		Expect(err).NotTo(HaveOccurred())
		dsys, err := sys.Discretize(1e-3)
		Expect(err).NotTo(HaveOccurred())

		norms, err := gramian.StateNorm(dsys, gramian.H2)
		Expect(err).NotTo(HaveOccurred())

		x := dsys.StateImpulse(mat.Col(nil, 0, dsys.B()), 20000)
		for i := range norms {
			energy := 0.0
			for k := 0; k < 20000; k++ {
				energy += x.At(k, i) * x.At(k, i)
			}
			Expect(norms[i]).To(BeNumerically("~", math.Sqrt(energy), 1e-6*norms[i]))
		}
	})

	It("converges to the analog norm as dt shrinks", func() {
		sys, err := lti.Alpha(0.1)
		Expect(err).NotTo(HaveOccurred())
		analog, err := gramian.StateNorm(sys, gramian.H2)
		Expect(err).NotTo(HaveOccurred())

		dt := 1e-4
		dsys, err := sys.Discretize(dt)
		Expect(err).NotTo(HaveOccurred())
		discrete, err := gramian.StateNorm(dsys, gramian.H2)
		Expect(err).NotTo(HaveOccurred())

		for i := range analog {
			Expect(discrete[i]).To(BeNumerically("~", analog[i]*math.Sqrt(dt), 1e-2*analog[i]*math.Sqrt(dt)))
		}
	})
})

var _ = Describe("BalancedTransformation", func() {
	It("produces an inverse pair", func() {
		b, err := gramian.BalancedTransformation(oscillator())
		Expect(err).NotTo(HaveOccurred())

		var prod mat.Dense
		prod.Mul(b.T, b.Tinv)
		Expect(mat.EqualApprox(&prod, linalg.Eye(2), 1e-9)).To(BeTrue())
	})

	It("agrees with Hankel up to ordering", func() {
		for _, sys := range []*lti.System{oscillator(), mixedSystem()} {
			b, err := gramian.BalancedTransformation(sys)
			Expect(err).NotTo(HaveOccurred())
			hsv, err := gramian.Hankel(sys)
			Expect(err).NotTo(HaveOccurred())

			s := append([]float64(nil), b.S...)
			sort.Sort(sort.Reverse(sort.Float64Slice(s)))
			Expect(s).To(HaveLen(len(hsv)))
			for i := range s {
				Expect(s[i]).To(BeNumerically("~", hsv[i], 1e-6*hsv[0]))
			}
		}
	})

	It("balances both gramians to diag(S)", func() {
		balanced, s, err := gramian.Balance(oscillator())
		Expect(err).NotTo(HaveOccurred())

		r, err := gramian.ControlGram(balanced)
		Expect(err).NotTo(HaveOccurred())
		o, err := gramian.ObserveGram(balanced)
		Expect(err).NotTo(HaveOccurred())

		want := linalg.Diag(s)
		Expect(mat.EqualApprox(r, want, 1e-8)).To(BeTrue())
		Expect(mat.EqualApprox(o, want, 1e-8)).To(BeTrue())
	})

	It("rejects discrete systems", func() {
		sys, err := lti.Lowpass(0.1)
		Expect(err).NotTo(HaveOccurred())
		dsys, err := sys.Discretize(0.01)
		Expect(err).NotTo(HaveOccurred())

		_, err = gramian.BalancedTransformation(dsys)
		Expect(err).To(MatchError(gramian.ErrDiscreteBalancing))
	})

	It("names the gramian of a non-minimal realization", func() {
		sys, err := lti.New(
			mat.NewDiagDense(2, []float64{-1, -2}),
			mat.NewDense(2, 1, []float64{1, 0}),
			mat.NewDense(1, 2, []float64{1, 1}),
			nil, true,
		)
		Expect(err).NotTo(HaveOccurred())

		_, err = gramian.BalancedTransformation(sys)
		Expect(err).To(MatchError(gramian.ErrNotPositiveDefinite))

		var ferr *gramian.FactorizationError
		Expect(errors.As(err, &ferr)).To(BeTrue())
		Expect(ferr.Gramian).To(Equal("controllability"))
	})
})

var _ = Describe("Hankel", func() {
	It("is sorted descending", func() {
		hsv, err := gramian.Hankel(mixedSystem())
		Expect(err).NotTo(HaveOccurred())
		Expect(hsv).To(HaveLen(3))
		Expect(sort.IsSorted(sort.Reverse(sort.Float64Slice(hsv)))).To(BeTrue())
	})

	It("is invariant under a change of basis", func() {
		sys := oscillator()
		t := mat.NewDense(2, 2, []float64{3, 1, 1, 2})
		var tinv mat.Dense
		Expect(tinv.Inverse(t)).To(Succeed())
		moved, err := sys.Transform(t, &tinv)
		Expect(err).NotTo(HaveOccurred())

		want, err := gramian.Hankel(sys)
		Expect(err).NotTo(HaveOccurred())
		got, err := gramian.Hankel(moved)
		Expect(err).NotTo(HaveOccurred())
		for i := range want {
			Expect(got[i]).To(BeNumerically("~", want[i], 1e-8))
		}
	})
})
