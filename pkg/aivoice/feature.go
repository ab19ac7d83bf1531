package aivoice

import (
	"math"
	"sort"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/audio/dsp"
)

// Frame geometry shared by the feature extractors.
const (
	featureFFT = 2048
	featureHop = 512
)

// frameRMS returns the root-mean-square energy of 2048-sample frames at a
// 512-sample hop.
func frameRMS(samples []float64) []float64 {
	if len(samples) < featureFFT {
		return nil
	}
	n := (len(samples)-featureFFT)/featureHop + 1
	out := make([]float64, n)
	for t := 0; t < n; t++ {
		var sum float64
		for i := t * featureHop; i < t*featureHop+featureFFT; i++ {
			sum += samples[i] * samples[i]
		}
		out[t] = math.Sqrt(sum / featureFFT)
	}
	return out
}

// zeroCrossingRate returns the per-frame fraction of adjacent samples
// that change sign.
func zeroCrossingRate(samples []float64) []float64 {
	if len(samples) < featureFFT {
		return nil
	}
	n := (len(samples)-featureFFT)/featureHop + 1
	out := make([]float64, n)
	for t := 0; t < n; t++ {
		start := t * featureHop
		crossings := 0
		for i := start + 1; i < start+featureFFT; i++ {
			if (samples[i] >= 0) != (samples[i-1] >= 0) {
				crossings++
			}
		}
		out[t] = float64(crossings) / featureFFT
	}
	return out
}

// spectralRolloff returns, per frame, the frequency below which 85% of
// the magnitude mass lies.
func spectralRolloff(sg dsp.Spectrogram, sampleRate int) []float64 {
	const rollPercent = 0.85
	out := make([]float64, sg.NumFrames())
	for t := range out {
		mag := sg.Magnitude(t)
		var total float64
		for _, m := range mag {
			total += m
		}
		target := rollPercent * total
		var cum float64
		for k, m := range mag {
			cum += m
			if cum >= target {
				out[t] = sg.BinFreq(k, sampleRate)
				break
			}
		}
	}
	return out
}

// spectralCentroid returns the magnitude-weighted mean frequency per
// frame.
func spectralCentroid(sg dsp.Spectrogram, sampleRate int) []float64 {
	out := make([]float64, sg.NumFrames())
	for t := range out {
		mag := sg.Magnitude(t)
		var wsum, total float64
		for k, m := range mag {
			wsum += sg.BinFreq(k, sampleRate) * m
			total += m
		}
		if total > 0 {
			out[t] = wsum / total
		}
	}
	return out
}

// spectralFlux returns the RMS frame-to-frame magnitude change.
func spectralFlux(sg dsp.Spectrogram) []float64 {
	if sg.NumFrames() < 2 {
		return nil
	}
	out := make([]float64, sg.NumFrames()-1)
	prev := sg.Magnitude(0)
	for t := 1; t < sg.NumFrames(); t++ {
		cur := sg.Magnitude(t)
		var sum float64
		for k := range cur {
			d := cur[k] - prev[k]
			sum += d * d
		}
		out[t-1] = math.Sqrt(sum / float64(len(cur)))
		prev = cur
	}
	return out
}

// pitchContour returns the refined peak frequency of each frame whose
// strongest spectral peak lies within [lo, hi] Hz.
func pitchContour(sg dsp.Spectrogram, sampleRate int, lo, hi float64) []float64 {
	binHz := float64(sampleRate) / float64(sg.FFTSize)
	var contour []float64
	for t := 0; t < sg.NumFrames(); t++ {
		mag := sg.Magnitude(t)
		best, bestMag := 0, 0.0
		for k, m := range mag {
			if m > bestMag {
				best, bestMag = k, m
			}
		}
		if bestMag == 0 || best == 0 || best == len(mag)-1 {
			continue
		}
		// Parabolic refinement around the peak bin.
		a, b, c := mag[best-1], mag[best], mag[best+1]
		shift := 0.0
		if denom := a - 2*b + c; denom != 0 {
			shift = 0.5 * (a - c) / denom
			if shift > 0.5 {
				shift = 0.5
			} else if shift < -0.5 {
				shift = -0.5
			}
		}
		freq := (float64(best) + shift) * binHz
		if freq >= lo && freq <= hi {
			contour = append(contour, freq)
		}
	}
	return contour
}

// onsetStrength returns the mean positive band-energy rise between
// consecutive frames of a dB mel spectrogram.
func onsetStrength(melDB [][]float64) []float64 {
	if len(melDB) < 2 {
		return nil
	}
	out := make([]float64, len(melDB)-1)
	for t := 1; t < len(melDB); t++ {
		var sum float64
		for b := range melDB[t] {
			if rise := melDB[t][b] - melDB[t-1][b]; rise > 0 {
				sum += rise
			}
		}
		out[t-1] = sum / float64(len(melDB[t]))
	}
	return out
}

// peakPick selects local maxima of an envelope: a peak must dominate its
// max window, clear the local mean by delta, and respect a refractory
// wait. The envelope is min-max normalized first.
func peakPick(env []float64, preMax, postMax, preAvg, postAvg int, delta float64, wait int) []int {
	if len(env) == 0 {
		return nil
	}
	norm := make([]float64, len(env))
	lo, hi := env[0], env[0]
	for _, v := range env {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi > lo {
		for i, v := range env {
			norm[i] = (v - lo) / (hi - lo)
		}
	}

	var peaks []int
	last := -wait - 1
	for i := range norm {
		winLo := max(0, i-preMax)
		winHi := min(len(norm), i+postMax+1)
		isMax := true
		for j := winLo; j < winHi; j++ {
			if norm[j] > norm[i] {
				isMax = false
				break
			}
		}
		if !isMax {
			continue
		}
		avgLo := max(0, i-preAvg)
		avgHi := min(len(norm), i+postAvg+1)
		var mean float64
		for j := avgLo; j < avgHi; j++ {
			mean += norm[j]
		}
		mean /= float64(avgHi - avgLo)
		if norm[i] < mean+delta {
			continue
		}
		if i-last <= wait {
			continue
		}
		peaks = append(peaks, i)
		last = i
	}
	return peaks
}

// activeIntervals returns [start, end) sample ranges whose frame energy
// sits within topDB of the loudest frame.
func activeIntervals(samples []float64, topDB float64) [][2]int {
	rms := frameRMS(samples)
	if len(rms) == 0 {
		return nil
	}
	var ref float64
	for _, v := range rms {
		if v > ref {
			ref = v
		}
	}
	if ref == 0 {
		return nil
	}
	threshold := -topDB
	var intervals [][2]int
	open := -1
	for t, v := range rms {
		db := 20 * math.Log10(math.Max(v, 1e-10)/ref)
		active := db > threshold
		if active && open < 0 {
			open = t
		}
		if !active && open >= 0 {
			intervals = append(intervals, [2]int{open * featureHop, t * featureHop})
			open = -1
		}
	}
	if open >= 0 {
		intervals = append(intervals, [2]int{open * featureHop, len(samples)})
	}
	return intervals
}

// savgol smooths data with a least-squares polynomial of the given order
// over an odd window, extending the edge windows with their own fits.
func savgol(data []float64, window, order int) []float64 {
	n := len(data)
	out := make([]float64, n)
	copy(out, data)
	if window > n {
		window = n
	}
	if window%2 == 0 {
		window--
	}
	if window <= order || window < 3 {
		return out
	}
	half := window / 2

	fitAt := func(start int, pos float64) float64 {
		return polyFitEval(data[start:start+window], order, pos)
	}
	for i := 0; i < n; i++ {
		switch {
		case i < half:
			out[i] = fitAt(0, float64(i))
		case i >= n-half:
			out[i] = fitAt(n-window, float64(i-(n-window)))
		default:
			out[i] = fitAt(i-half, float64(half))
		}
	}
	return out
}

// polyFitEval fits a polynomial of the given order to y (sampled at
// x = 0..len(y)-1) by normal equations and evaluates it at pos.
func polyFitEval(y []float64, order int, pos float64) float64 {
	m := order + 1
	// Normal equations: A c = b with A[i][j] = sum x^(i+j).
	a := make([][]float64, m)
	b := make([]float64, m)
	for i := range a {
		a[i] = make([]float64, m)
	}
	for xi := range y {
		x := float64(xi)
		pow := 1.0
		xp := make([]float64, 2*m-1)
		for p := range xp {
			xp[p] = pow
			pow *= x
		}
		for i := 0; i < m; i++ {
			b[i] += xp[i] * y[xi]
			for j := 0; j < m; j++ {
				a[i][j] += xp[i+j]
			}
		}
	}
	coeffs := solveLinear(a, b)
	if coeffs == nil {
		return y[int(pos)]
	}
	v, pw := 0.0, 1.0
	for _, c := range coeffs {
		v += c * pw
		pw *= pos
	}
	return v
}

// solveLinear solves a small dense system by Gaussian elimination with
// partial pivoting. Returns nil for a singular system.
func solveLinear(a [][]float64, b []float64) []float64 {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		v := b[r]
		for c := r + 1; c < n; c++ {
			v -= a[r][c] * x[c]
		}
		x[r] = v / a[r][r]
	}
	return x
}

// mfcc converts a dB mel spectrogram to n cepstral coefficients per frame
// with an orthonormal DCT-II.
func mfcc(melDB [][]float64, n int) [][]float64 {
	if len(melDB) == 0 {
		return nil
	}
	bands := len(melDB[0])
	if n > bands {
		n = bands
	}
	scale0 := math.Sqrt(1 / float64(bands))
	scale := math.Sqrt(2 / float64(bands))

	out := make([][]float64, len(melDB))
	for t, row := range melDB {
		cep := make([]float64, n)
		for i := 0; i < n; i++ {
			var sum float64
			for b := 0; b < bands; b++ {
				sum += row[b] * math.Cos(math.Pi*float64(i)*(2*float64(b)+1)/(2*float64(bands)))
			}
			if i == 0 {
				cep[i] = sum * scale0
			} else {
				cep[i] = sum * scale
			}
		}
		out[t] = cep
	}
	return out
}

// harmonicNoiseRatio median-splits the spectrogram into a time-smooth
// harmonic part and a frequency-smooth percussive part (31-point kernels,
// squared soft masks) and returns their energy ratio in dB.
func harmonicNoiseRatio(sg dsp.Spectrogram) float64 {
	const kernel = 31
	frames, bins := sg.NumFrames(), sg.NumBins()
	if frames == 0 {
		return 0
	}
	mags := make([][]float64, frames)
	for t := range mags {
		mags[t] = sg.Magnitude(t)
	}

	half := kernel / 2
	var harmonicEnergy, noiseEnergy float64
	column := make([]float64, 0, kernel)
	row := make([]float64, 0, kernel)
	for t := 0; t < frames; t++ {
		for b := 0; b < bins; b++ {
			// Median across time at this bin.
			column = column[:0]
			for tt := max(0, t-half); tt < min(frames, t+half+1); tt++ {
				column = append(column, mags[tt][b])
			}
			h := median(column)

			// Median across frequency at this frame.
			row = row[:0]
			for bb := max(0, b-half); bb < min(bins, b+half+1); bb++ {
				row = append(row, mags[t][bb])
			}
			p := median(row)

			h2, p2 := h*h, p*p
			denom := h2 + p2
			if denom == 0 {
				continue
			}
			m := mags[t][b]
			hc := m * h2 / denom
			pc := m * p2 / denom
			harmonicEnergy += hc * hc
			noiseEnergy += pc * pc
		}
	}
	return 10 * math.Log10((harmonicEnergy+1e-10)/(noiseEnergy+1e-10))
}

// median sorts its scratch argument.
func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return (v[mid-1] + v[mid]) / 2
}
