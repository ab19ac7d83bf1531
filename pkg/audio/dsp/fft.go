package dsp

import "math"

// FFT performs an in-place radix-2 Cooley-Tukey FFT.
// real and imag must have the same power-of-2 length.
func FFT(real, imag []float64) {
	n := len(real)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 0; i < n-1; i++ {
		if i < j {
			real[i], real[j] = real[j], real[i]
			imag[i], imag[j] = imag[j], imag[i]
		}
		k := n >> 1
		for k <= j {
			j -= k
			k >>= 1
		}
		j += k
	}

	// Cooley-Tukey butterfly
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		angle := -2.0 * math.Pi / float64(size)
		wR := math.Cos(angle)
		wI := math.Sin(angle)

		for start := 0; start < n; start += size {
			tR, tI := 1.0, 0.0
			for k := 0; k < half; k++ {
				u := start + k
				v := u + half

				// Butterfly
				tmpR := tR*real[v] - tI*imag[v]
				tmpI := tR*imag[v] + tI*real[v]

				real[v] = real[u] - tmpR
				imag[v] = imag[u] - tmpI
				real[u] += tmpR
				imag[u] += tmpI

				// Twiddle factor update
				tR, tI = tR*wR-tI*wI, tR*wI+tI*wR
			}
		}
	}
}

// Spectrogram holds the complex short-time spectra of a signal, one row per
// analysis frame, bins 0..FFTSize/2 inclusive.
type Spectrogram struct {
	Re      [][]float64
	Im      [][]float64
	FFTSize int
	Hop     int
}

// STFT computes a short-time Fourier transform. Frames of len(window)
// samples are taken every hop samples, windowed, zero-padded to fftSize
// and transformed. Only the non-redundant half spectrum is kept.
// Returns an empty Spectrogram (zero frames) when the signal is shorter
// than one window.
func STFT(samples []float64, fftSize, hop int, window []float64) Spectrogram {
	frameLen := len(window)
	sg := Spectrogram{FFTSize: fftSize, Hop: hop}
	if len(samples) < frameLen || hop <= 0 {
		return sg
	}

	halfFFT := fftSize/2 + 1
	numFrames := (len(samples)-frameLen)/hop + 1
	sg.Re = make([][]float64, numFrames)
	sg.Im = make([][]float64, numFrames)

	re := make([]float64, fftSize)
	im := make([]float64, fftSize)
	for t := 0; t < numFrames; t++ {
		start := t * hop
		for i := 0; i < frameLen; i++ {
			re[i] = samples[start+i] * window[i]
		}
		for i := frameLen; i < fftSize; i++ {
			re[i] = 0
		}
		for i := range im {
			im[i] = 0
		}
		FFT(re, im)

		sg.Re[t] = make([]float64, halfFFT)
		sg.Im[t] = make([]float64, halfFFT)
		copy(sg.Re[t], re[:halfFFT])
		copy(sg.Im[t], im[:halfFFT])
	}
	return sg
}

// NumFrames returns the number of analysis frames.
func (s Spectrogram) NumFrames() int { return len(s.Re) }

// NumBins returns the number of frequency bins per frame.
func (s Spectrogram) NumBins() int { return s.FFTSize/2 + 1 }

// BinFreq returns the center frequency in Hz of the given bin.
func (s Spectrogram) BinFreq(bin, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / float64(s.FFTSize)
}

// Magnitude returns |X[k]| for every bin of the given frame.
func (s Spectrogram) Magnitude(frame int) []float64 {
	re, im := s.Re[frame], s.Im[frame]
	mag := make([]float64, len(re))
	for k := range re {
		mag[k] = math.Hypot(re[k], im[k])
	}
	return mag
}

// Power returns |X[k]|^2 for every bin of the given frame.
func (s Spectrogram) Power(frame int) []float64 {
	re, im := s.Re[frame], s.Im[frame]
	pwr := make([]float64, len(re))
	for k := range re {
		pwr[k] = re[k]*re[k] + im[k]*im[k]
	}
	return pwr
}

// Phase returns the phase angle in radians for every bin of the given frame.
func (s Spectrogram) Phase(frame int) []float64 {
	re, im := s.Re[frame], s.Im[frame]
	ph := make([]float64, len(re))
	for k := range re {
		ph[k] = math.Atan2(im[k], re[k])
	}
	return ph
}

// WrapPhase wraps a phase difference into (-pi, pi].
func WrapPhase(d float64) float64 {
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
