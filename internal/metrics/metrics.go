// Package metrics summarizes a sampled scalar response one sample at a time.
package metrics

import "math"

// Metric accumulates a scalar summary of a response.
type Metric interface {
	Name() string
	Observe(y, t float64)
	Value() float64
	Reset()
}

// Evaluate feeds every sample to each metric and returns their values by
// name. The metrics are reset first.
func Evaluate(y, times []float64, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i, v := range y {
		for _, m := range ms {
			m.Observe(v, times[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Default returns the metrics reported for an impulse response sampled every
// step. settle is the absolute band used for the settling time.
func Default(step, settle float64) []Metric {
	return []Metric{
		NewPeak(),
		NewAbsIntegral(step),
		NewEnergy(step),
		NewSettling(settle),
		NewZeroCrossings(),
	}
}

type Peak struct {
	peak float64
	at   float64
}

func NewPeak() *Peak { return &Peak{} }

func (p *Peak) Name() string { return "peak" }

func (p *Peak) Observe(y, t float64) {
	if math.Abs(y) > p.peak {
		p.peak = math.Abs(y)
		p.at = t
	}
}

func (p *Peak) Value() float64 { return p.peak }

// Time is when the peak magnitude was first reached.
func (p *Peak) Time() float64 { return p.at }

func (p *Peak) Reset() { *p = Peak{} }

// AbsIntegral is the rectangle-rule integral of |y|. For an impulse response
// it approximates the L1 norm from below when the tail is truncated.
type AbsIntegral struct {
	step float64
	sum  float64
}

func NewAbsIntegral(step float64) *AbsIntegral { return &AbsIntegral{step: step} }

func (a *AbsIntegral) Name() string { return "abs_integral" }

func (a *AbsIntegral) Observe(y, _ float64) { a.sum += math.Abs(y) }

func (a *AbsIntegral) Value() float64 { return a.sum * a.step }

func (a *AbsIntegral) Reset() { a.sum = 0 }

// Energy is the rectangle-rule integral of y².
type Energy struct {
	step float64
	sum  float64
}

func NewEnergy(step float64) *Energy { return &Energy{step: step} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(y, _ float64) { e.sum += y * y }

func (e *Energy) Value() float64 { return e.sum * e.step }

func (e *Energy) Reset() { e.sum = 0 }

// Settling records the last time |y| was outside the band.
type Settling struct {
	band float64
	last float64
}

func NewSettling(band float64) *Settling { return &Settling{band: band} }

func (s *Settling) Name() string { return "settling_time" }

func (s *Settling) Observe(y, t float64) {
	if math.Abs(y) > s.band {
		s.last = t
	}
}

func (s *Settling) Value() float64 { return s.last }

func (s *Settling) Reset() { s.last = 0 }

// ZeroCrossings counts strict sign changes, skipping exact zeros.
type ZeroCrossings struct {
	sign  float64
	count int
}

func NewZeroCrossings() *ZeroCrossings { return &ZeroCrossings{} }

func (z *ZeroCrossings) Name() string { return "zero_crossings" }

func (z *ZeroCrossings) Observe(y, _ float64) {
	if y == 0 || math.IsNaN(y) {
		return
	}
	s := math.Copysign(1, y)
	if z.sign != 0 && s != z.sign {
		z.count++
	}
	z.sign = s
}

func (z *ZeroCrossings) Value() float64 { return float64(z.count) }

func (z *ZeroCrossings) Reset() { *z = ZeroCrossings{} }
