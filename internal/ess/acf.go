// Package ess computes the integrated autocorrelation time and effective
// sample size used to trigger early termination of a run.
package ess

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// autocovariance returns the (biased) autocovariance of x at lags
// 0..len(x)-1, computed via the Wiener-Khinchin theorem: the inverse FFT
// of the power spectrum of the (zero-padded, mean-subtracted) series.
// gonum has no autocorrelation function of its own, so this builds one
// directly on its real-input FFT (dsp/fourier), the same substitution
// SPEC_FULL.md documents for the KDE estimator.
func autocovariance(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	padded := nextPow2(2 * n)
	series := make([]float64, padded)
	for i, v := range x {
		series[i] = v - mean
	}

	fft := fourier.NewFFT(padded)
	coeffs := fft.Coefficients(nil, series)

	power := make([]complex128, len(coeffs))
	for i, c := range coeffs {
		power[i] = complex(cmplx.Abs(c)*cmplx.Abs(c), 0)
	}

	auto := fft.Sequence(nil, power)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = auto[i] / float64(padded)
	}
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// IntegratedAutocorrTime estimates the integrated autocorrelation time of
// x using Sokal's adaptive windowing: sum the normalized autocorrelation
// function rho(t) = acov(t)/acov(0) out to the smallest window M such
// that M >= c*tau(M), for c=5, capped so the window never exceeds n/2.
func IntegratedAutocorrTime(x []float64) float64 {
	n := len(x)
	if n < 4 {
		return math.NaN()
	}

	acov := autocovariance(x)
	if acov[0] <= 0 {
		return math.NaN()
	}

	const c = 5.0
	maxLag := n / 2
	tau := 1.0
	for m := 1; m < maxLag; m++ {
		tau += 2 * acov[m] / acov[0]
		if float64(m) >= c*tau {
			return tau
		}
	}
	return tau
}
