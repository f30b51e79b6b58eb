package gramian

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedNorm indicates a norm kind other than H2.
	ErrUnsupportedNorm = errors.New("gramian: norm must be one of: H2")

	// ErrDiscreteBalancing indicates a discrete system was given to the
	// balanced transform, which is only defined here for analog systems.
	ErrDiscreteBalancing = errors.New("gramian: balanced transformation of discrete systems is not supported")

	// ErrNotPositiveDefinite indicates a gramian could not be Cholesky
	// factored, i.e. the realization is not minimal.
	ErrNotPositiveDefinite = errors.New("gramian: gramian is not positive definite")
)

// FactorizationError names the gramian whose factorization failed.
type FactorizationError struct {
	Gramian string
	Wrapped error
}

func (e *FactorizationError) Error() string {
	return fmt.Sprintf("%s gramian: %v", e.Gramian, e.Wrapped)
}

func (e *FactorizationError) Unwrap() error {
	return e.Wrapped
}
