package l1norm

import "go.uber.org/zap"

const (
	// DefaultRelTol is the default target relative half-width.
	DefaultRelTol = 1e-6

	// DefaultMaxLength is the default ceiling on impulse samples.
	DefaultMaxLength = 1 << 18

	initialLength = 16
)

type options struct {
	relTol    float64
	maxLength int
	log       *zap.SugaredLogger
	observer  func(Iteration)
}

// Option configures Norm.
type Option func(*options)

// WithRelTol sets the relative half-width at which refinement stops.
func WithRelTol(rtol float64) Option {
	return func(o *options) { o.relTol = rtol }
}

// WithMaxLength caps the number of impulse samples per refinement.
func WithMaxLength(n int) Option {
	return func(o *options) { o.maxLength = n }
}

// WithLogger logs every refinement at debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver is called synchronously after every refinement.
func WithObserver(fn func(Iteration)) Option {
	return func(o *options) { o.observer = fn }
}

func defaultOptions() options {
	return options{
		relTol:    DefaultRelTol,
		maxLength: DefaultMaxLength,
		log:       zap.NewNop().Sugar(),
	}
}
