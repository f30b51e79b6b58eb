package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the one-sided magnitude spectrum of a response sampled
// every dt. Magnitudes are scaled by dt so they approximate the continuous
// Fourier transform; frequencies are in Hz.
func Spectrum(y []float64, dt float64) (freqs, mags []float64) {
	n := len(y)
	if n == 0 || dt <= 0 {
		return nil, nil
	}
	coeffs := fft.FFTReal(y)

	bins := n/2 + 1
	freqs = make([]float64, bins)
	mags = make([]float64, bins)
	for k := 0; k < bins; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		mags[k] = cmplx.Abs(coeffs[k]) * dt
	}
	return freqs, mags
}

// SpectralEnergy returns Σ|Y_k|²/N over the full FFT of y, which by
// Parseval's theorem equals Σ y².
func SpectralEnergy(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	coeffs := fft.FFTReal(y)
	sum := 0.0
	for _, c := range coeffs {
		a := cmplx.Abs(c)
		sum += a * a
	}
	return sum / float64(len(y))
}
