// Package dsp provides the signal-processing primitives shared by the
// forensic analyzers: windowing, FFT, short-time spectra, mel filterbanks,
// descriptive statistics, and sample-rate conversion.
//
// All routines operate on float64 mono samples normalized to [-1, 1] and
// are deterministic: the same input always produces bit-identical output.
package dsp

import "math"

// HannWindow generates a Hann window of the given length.
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}

// HammingWindow generates a Hamming window of the given length.
func HammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// NextPow2 returns the smallest power of 2 >= n.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PreEmphasize applies a first-order high-pass filter in place:
// y[i] = x[i] - coeff*x[i-1]. A coeff of 0 leaves the samples untouched.
func PreEmphasize(samples []float64, coeff float64) {
	if coeff <= 0 || len(samples) == 0 {
		return
	}
	for i := len(samples) - 1; i > 0; i-- {
		samples[i] -= coeff * samples[i-1]
	}
	samples[0] *= 1.0 - coeff
}

// PreEmphasisCoeff converts a pre-emphasis cutoff frequency into the
// first-order filter coefficient for the given sample rate.
func PreEmphasisCoeff(cutoffHz float64, sampleRate int) float64 {
	return math.Exp(-2.0 * math.Pi * cutoffHz / float64(sampleRate))
}
