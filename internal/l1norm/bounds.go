package l1norm

import "fmt"

// bounds is the state of the refinement loop. lower and upper exclude the
// feedthrough term.
type bounds struct {
	lower   float64
	upper   float64
	samples int
	horizon float64
}

func (b bounds) step() float64 {
	return b.horizon / float64(b.samples)
}

func (b bounds) halfWidth() float64 {
	return 0.5 * (b.upper - b.lower) / b.lower
}

func (b bounds) done(rtol float64, maxLength int) bool {
	return b.samples > maxLength || !(b.halfWidth() >= rtol)
}

// raiseLower keeps the larger of the two, ignoring a NaN candidate.
func (b *bounds) raiseLower(candidate float64) {
	if candidate > b.lower {
		b.lower = candidate
	}
}

// lowerUpper keeps the smaller of the two, ignoring a NaN candidate, and
// never lets upper fall below lower.
func (b *bounds) lowerUpper(candidate float64) {
	if candidate < b.upper {
		b.upper = candidate
	}
	if b.lower > b.upper {
		b.upper = b.lower
	}
}

// advance doubles the sample count and, when requested, the horizon.
func (b *bounds) advance(growHorizon bool) {
	b.samples *= 2
	if growHorizon {
		b.horizon *= 2
	}
}

// check verifies the refinement against the previous state: lower never
// decreases, upper never increases unless clipped to lower, and lower ≤ upper.
// Comparisons with NaN pass.
func (b bounds) check(prev bounds) error {
	switch {
	case b.lower < prev.lower:
		return fmt.Errorf("%w: lower bound fell from %g to %g", ErrBoundsViolated, prev.lower, b.lower)
	case b.upper > prev.upper && b.upper != b.lower:
		return fmt.Errorf("%w: upper bound rose from %g to %g", ErrBoundsViolated, prev.upper, b.upper)
	case b.lower > b.upper:
		return fmt.Errorf("%w: lower %g exceeds upper %g", ErrBoundsViolated, b.lower, b.upper)
	}
	return nil
}
