package analysis

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/ltinorm/internal/config"
	"github.com/san-kum/ltinorm/internal/gramian"
	"github.com/san-kum/ltinorm/internal/l1norm"
	"github.com/san-kum/ltinorm/internal/logger"
	"github.com/san-kum/ltinorm/internal/lti"
	"github.com/san-kum/ltinorm/internal/metrics"
)

// settleFraction sets the settling band relative to the response peak.
const settleFraction = 0.02

// responseDecays is how many slowest time constants the sampled impulse
// response of an analog system spans.
const responseDecays = 8

type Options struct {
	RelTol    float64
	MaxLength int
	Samples   int
	// Observer receives every L1 refinement.
	Observer func(l1norm.Iteration)
}

func DefaultOptions() Options {
	return Options{
		RelTol:    config.DefaultRelTol,
		MaxLength: config.DefaultMaxLength,
		Samples:   config.DefaultSamples,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RelTol:    cfg.RelTol,
		MaxLength: cfg.MaxLength,
		Samples:   cfg.Samples,
	}
}

type Eigenvalue struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// Report collects everything ltinorm computes for one system. Response and
// Spectrum are stored separately from the JSON metadata.
type Report struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Analog      bool               `json:"analog"`
	States      int                `json:"states"`
	Inputs      int                `json:"inputs"`
	Outputs     int                `json:"outputs"`
	Eigenvalues []Eigenvalue       `json:"eigenvalues"`
	Stable      bool               `json:"stable"`
	DCGain      [][]float64        `json:"dc_gain"`
	StateNorms  []float64          `json:"state_norms"`
	ControlGram [][]float64        `json:"control_gram"`
	ObserveGram [][]float64        `json:"observe_gram"`
	Hankel      []float64          `json:"hankel"`
	Balanced    []float64          `json:"balanced,omitempty"`
	BalanceErr  string             `json:"balance_error,omitempty"`
	H2          float64            `json:"h2"`
	SpectralH2  float64            `json:"spectral_h2,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	L1          *l1norm.Result     `json:"l1,omitempty"`
	L1Err       string             `json:"l1_error,omitempty"`
	Step        float64            `json:"step"`
	CreatedAt   time.Time          `json:"created_at"`

	Response []float64 `json:"-"`
	Spectrum []float64 `json:"-"`
}

// Analyze computes the gramians, norms and the sampled impulse response of
// sys. Balancing and the L1 bound are optional: when a system does not meet
// their preconditions the reason is recorded in the report instead of
// failing the call.
func Analyze(ctx context.Context, name string, sys *lti.System, opts Options) (*Report, error) {
	log := logger.FromContext(ctx).With("system", name)
	n, m, p := sys.Dims()

	r := &Report{
		Name:      name,
		Analog:    sys.Analog(),
		States:    n,
		Inputs:    m,
		Outputs:   p,
		DCGain:    rows(sys.DCGain()),
		CreatedAt: time.Now(),
	}

	eig, err := sys.Eigenvalues()
	if err != nil {
		return nil, err
	}
	r.Eigenvalues, r.Stable = classify(eig, sys.Analog())

	cg, err := gramian.ControlGram(sys)
	if err != nil {
		return nil, err
	}
	og, err := gramian.ObserveGram(sys)
	if err != nil {
		return nil, err
	}
	r.ControlGram = rows(cg)
	r.ObserveGram = rows(og)

	if r.Hankel, err = gramian.Hankel(sys); err != nil {
		return nil, err
	}
	// Gramians of unstable systems solve their equations but carry no
	// energy meaning, and their diagonals may be negative.
	if r.Stable {
		if r.StateNorms, err = gramian.StateNorm(sys, gramian.H2); err != nil {
			return nil, err
		}
		r.H2 = outputH2(sys, cg)
	}

	if b, err := gramian.BalancedTransformation(sys); err != nil {
		r.BalanceErr = err.Error()
		log.Debugw("balancing skipped", "error", err)
	} else {
		r.Balanced = b.S
	}

	if sys.Analog() && sys.IsSISO() && r.Stable {
		res, err := l1norm.Norm(sys,
			l1norm.WithRelTol(opts.RelTol),
			l1norm.WithMaxLength(opts.MaxLength),
			l1norm.WithLogger(log),
			l1norm.WithObserver(opts.Observer),
		)
		if err != nil {
			r.L1Err = err.Error()
		} else {
			r.L1 = &res
		}
	}

	if sys.IsSISO() && opts.Samples > 0 {
		if err := r.sampleResponse(sys, opts.Samples); err != nil {
			return nil, err
		}
	}

	log.Infow("analyzed", "states", n, "h2", r.H2, "stable", r.Stable)
	return r, nil
}

func (r *Report) sampleResponse(sys *lti.System, samples int) error {
	if !sys.Analog() {
		y, err := sys.Impulse(samples)
		if err != nil {
			return err
		}
		times := make([]float64, samples)
		for i := range times {
			times[i] = float64(i)
		}
		r.Step = 1
		r.Response = y
		_, r.Spectrum = Spectrum(y, 1)
		r.evaluate(times)
		return nil
	}

	r.Step = responseHorizon(r.Eigenvalues) / float64(samples)
	times := make([]float64, samples)
	if samples > 1 {
		floats.Span(times, 0, r.Step*float64(samples-1))
	}
	y, err := sys.Response(times)
	if err != nil {
		return err
	}
	r.Response = y
	_, r.Spectrum = Spectrum(y, r.Step)
	r.evaluate(times)
	if r.Stable {
		r.SpectralH2 = math.Sqrt(SpectralEnergy(y) * r.Step)
	}
	return nil
}

func (r *Report) evaluate(times []float64) {
	peak := 0.0
	for _, v := range r.Response {
		peak = math.Max(peak, math.Abs(v))
	}
	if math.IsInf(peak, 0) || math.IsNaN(peak) {
		return
	}
	r.Metrics = metrics.Evaluate(r.Response, times, metrics.Default(r.Step, settleFraction*peak)...)
}

// FailedL1 reports whether an L1 bound was attempted and failed.
func (r *Report) FailedL1() bool {
	return r.L1 == nil && r.L1Err != ""
}

// Summary returns a flat key-value view for logging.
func (r *Report) Summary() []zap.Field {
	fields := []zap.Field{
		zap.String("name", r.Name),
		zap.Bool("analog", r.Analog),
		zap.Int("states", r.States),
		zap.Float64("h2", r.H2),
		zap.Float64s("hankel", r.Hankel),
	}
	if r.L1 != nil {
		fields = append(fields,
			zap.Float64("l1", r.L1.Estimate),
			zap.Float64("l1_half_width", r.L1.HalfWidth))
	}
	return fields
}

// outputH2 is sqrt(trace(C·R·Cᵀ)), plus trace(D·Dᵀ) for discrete systems.
// The feedthrough of an analog system is ignored.
func outputH2(sys *lti.System, r mat.Symmetric) float64 {
	c := sys.C()
	var cr, crc mat.Dense
	cr.Mul(c, r)
	crc.Mul(&cr, c.T())
	total := mat.Trace(&crc)
	if !sys.Analog() {
		d := sys.D()
		var ddt mat.Dense
		ddt.Mul(d, d.T())
		total += mat.Trace(&ddt)
	}
	return math.Sqrt(total)
}

func classify(values []complex128, analog bool) ([]Eigenvalue, bool) {
	out := make([]Eigenvalue, len(values))
	stable := true
	for i, v := range values {
		out[i] = Eigenvalue{Re: real(v), Im: imag(v)}
		if analog && real(v) >= 0 {
			stable = false
		}
		if !analog && math.Hypot(real(v), imag(v)) >= 1 {
			stable = false
		}
	}
	return out, stable
}

func responseHorizon(eig []Eigenvalue) float64 {
	slowest := math.Inf(-1)
	for _, v := range eig {
		slowest = math.Max(slowest, v.Re)
	}
	if slowest >= 0 || math.IsInf(slowest, -1) {
		return responseDecays
	}
	return responseDecays / -slowest
}

func rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
