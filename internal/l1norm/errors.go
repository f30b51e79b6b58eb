package l1norm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAnalog indicates a discrete system was passed to Norm.
	ErrNotAnalog = errors.New("l1norm: system must be analog")

	// ErrNotSISO indicates a system with more than one input or output.
	ErrNotSISO = errors.New("l1norm: system must have a single input and output")

	// ErrUnstable indicates A has an eigenvalue with non-negative real part.
	ErrUnstable = errors.New("l1norm: system is not BIBO stable")

	// ErrBoundsViolated indicates the refinement broke the ordering or
	// monotonicity of its bounds, which only happens on numerical breakdown.
	ErrBoundsViolated = errors.New("l1norm: bound invariant violated")
)

// StabilityError carries the eigenvalue that makes a system unstable.
type StabilityError struct {
	Eigenvalue complex128
	Alpha      float64
	Wrapped    error
}

func (e *StabilityError) Error() string {
	return fmt.Sprintf("%v: unstable eigenvalue %v", e.Wrapped, e.Eigenvalue)
}

func (e *StabilityError) Unwrap() error {
	return e.Wrapped
}
