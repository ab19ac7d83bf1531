package dsp

import "math"

// HzToMel converts frequency in Hz to mel scale.
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts mel scale frequency back to Hz.
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// MelFilterBank creates a triangular mel filterbank matrix.
// Returns [numMels][halfFFT] weights where halfFFT = fftSize/2 + 1.
func MelFilterBank(numMels, fftSize, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	halfFFT := fftSize/2 + 1
	lowMel := HzToMel(lowFreq)
	highMel := HzToMel(highFreq)

	// numMels + 2 equally spaced mel points
	melPoints := make([]float64, numMels+2)
	step := (highMel - lowMel) / float64(numMels+1)
	for i := range melPoints {
		melPoints[i] = lowMel + float64(i)*step
	}

	// Convert mel points to FFT bin indices (round to nearest)
	bins := make([]int, numMels+2)
	for i, m := range melPoints {
		hz := MelToHz(m)
		bin := int(math.Round(hz * float64(fftSize) / float64(sampleRate)))
		if bin >= halfFFT {
			bin = halfFFT - 1
		}
		bins[i] = bin
	}

	// Ensure each filter has at least 1 bin width
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			bins[i] = bins[i-1] + 1
		}
	}

	// Create triangular filters
	bank := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		filter := make([]float64, halfFFT)
		left := bins[m]
		center := bins[m+1]
		right := bins[m+2]

		for k := left; k < center && k < halfFFT; k++ {
			if center != left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right && k < halfFFT; k++ {
			if right != center {
				filter[k] = float64(right-k) / float64(right-center)
			}
		}
		bank[m] = filter
	}
	return bank
}

// MelSpectrogram applies the filterbank to every frame of the power
// spectrogram. Returns [frame][mel] energies.
func MelSpectrogram(sg Spectrogram, bank [][]float64) [][]float64 {
	out := make([][]float64, sg.NumFrames())
	for t := range out {
		pwr := sg.Power(t)
		row := make([]float64, len(bank))
		for m, filter := range bank {
			var energy float64
			for k, w := range filter {
				if w != 0 {
					energy += w * pwr[k]
				}
			}
			row[m] = energy
		}
		out[t] = row
	}
	return out
}

const (
	// powerFloor guards log10 of silent bins.
	powerFloor = 1e-10
	// dbRange clamps the dynamic range below the peak.
	dbRange = 80.0
)

// PowerToDB converts a power matrix to decibels relative to its peak value,
// flooring tiny powers and clamping the dynamic range to 80 dB below peak.
func PowerToDB(power [][]float64) [][]float64 {
	ref := powerFloor
	for _, row := range power {
		for _, p := range row {
			if p > ref {
				ref = p
			}
		}
	}
	refDB := 10.0 * math.Log10(ref)

	out := make([][]float64, len(power))
	maxDB := math.Inf(-1)
	for i, row := range power {
		r := make([]float64, len(row))
		for j, p := range row {
			if p < powerFloor {
				p = powerFloor
			}
			r[j] = 10.0*math.Log10(p) - refDB
			if r[j] > maxDB {
				maxDB = r[j]
			}
		}
		out[i] = r
	}

	floor := maxDB - dbRange
	for _, row := range out {
		for j, v := range row {
			if v < floor {
				row[j] = floor
			}
		}
	}
	return out
}
