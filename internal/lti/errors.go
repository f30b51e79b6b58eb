package lti

import "errors"

// Construction and conversion errors.
var (
	// ErrDimensionMismatch indicates state-space matrices that do not fit together.
	ErrDimensionMismatch = errors.New("lti: dimension mismatch between state-space matrices")

	// ErrNoStates indicates a description without any state (a pure gain).
	ErrNoStates = errors.New("lti: system has no states")

	// ErrInvalidMatrix indicates a NaN or Inf entry.
	ErrInvalidMatrix = errors.New("lti: matrix contains NaN or Inf")

	// ErrImproper indicates a transfer function with more zeros than poles.
	ErrImproper = errors.New("lti: transfer function is improper")

	// ErrIncompatible indicates systems that cannot be combined.
	ErrIncompatible = errors.New("lti: incompatible systems")

	// ErrAlreadyDiscrete indicates a discretization request on a discrete system.
	ErrAlreadyDiscrete = errors.New("lti: system is already discrete")

	// ErrNotDiscrete indicates a discrete-time operation applied to an analog system.
	ErrNotDiscrete = errors.New("lti: system must be discrete")

	// ErrNotAnalog indicates a continuous-time operation applied to a discrete system.
	ErrNotAnalog = errors.New("lti: system must be analog")

	// ErrInvalidStep indicates a non-positive or non-finite time step.
	ErrInvalidStep = errors.New("lti: time step must be positive and finite")

	// ErrNotSISO indicates an operation that needs a single-input single-output system.
	ErrNotSISO = errors.New("lti: system must be single-input single-output")

	// ErrParameterBounds indicates a filter parameter outside its valid range.
	ErrParameterBounds = errors.New("lti: parameter out of valid bounds")

	// ErrEigen indicates the eigenvalue decomposition did not converge.
	ErrEigen = errors.New("lti: eigenvalue decomposition failed")
)
