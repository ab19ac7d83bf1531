package forensics

import (
	"math"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/audio/dsp"
)

// FormantPoint is one analysis frame in which all three formants resolved.
type FormantPoint struct {
	Time float64 // seconds from clip start
	F1   float64 // Hz
	F2   float64 // Hz
	F3   float64 // Hz
}

// VocalTractReport is the physical-voice assessment derived from formant
// medians. Formants reflect vocal-tract geometry and survive pitch
// manipulation, so Physical is the anchor the presented category is
// checked against. Unresolved formants degrade to 0 medians.
type VocalTractReport struct {
	F1Median float64
	F2Median float64
	F3Median float64
	Physical VoiceCategory
	Track    []FormantPoint
}

// ExtractVocalTract estimates formant tracks with a Burg linear-prediction
// resonance estimator and classifies the physical voice category.
//
// The signal is decimated to twice the resonance ceiling, pre-emphasized
// above the configured cutoff, and analyzed in overlapping Hamming
// windows. Each window yields up to MaxCandidates ascending resonance
// peaks; the first three become F1-F3 when present. A frame that fails to
// resolve a formant skips that formant only.
func ExtractVocalTract(sig *Signal, cfg FormantConfig) *VocalTractReport {
	samples := sig.Samples()
	rate := sig.SampleRate()

	// Decimate so the model spends its poles below the ceiling.
	target := int(2 * cfg.MaxFrequency)
	if rate > target {
		if ds, err := dsp.Resample(samples, rate, target); err == nil && len(ds) > 0 {
			samples, rate = ds, target
		}
	}

	// Pre-emphasis tilts energy toward the higher formants.
	pre := make([]float64, len(samples))
	copy(pre, samples)
	dsp.PreEmphasize(pre, dsp.PreEmphasisCoeff(cfg.PreEmphasis, rate))

	frameLen := int(cfg.WindowLength * float64(rate))
	hop := int(cfg.TimeStep * float64(rate))
	report := &VocalTractReport{Physical: classifyFormants(0, 0)}
	if frameLen < 2 || hop < 1 || len(pre) < frameLen {
		return report
	}

	window := dsp.HammingWindow(frameLen)
	order := 2 * cfg.MaxCandidates
	numFrames := (len(pre)-frameLen)/hop + 1

	var f1s, f2s, f3s []float64
	frame := make([]float64, frameLen)

	for t := 0; t < numFrames; t++ {
		start := t * hop
		var energy float64
		for i := 0; i < frameLen; i++ {
			frame[i] = pre[start+i] * window[i]
			energy += frame[i] * frame[i]
		}
		if energy < 1e-10 {
			continue // silent frame
		}

		coeffs := burgCoeffs(frame, order)
		if coeffs == nil {
			continue
		}
		peaks := resonancePeaks(coeffs, rate, cfg.MaxFrequency, cfg.MaxCandidates)

		var f1, f2, f3 float64
		if len(peaks) > 0 {
			f1 = peaks[0]
		}
		if len(peaks) > 1 {
			f2 = peaks[1]
		}
		if len(peaks) > 2 {
			f3 = peaks[2]
		}

		if f1 > 0 && !math.IsInf(f1, 0) {
			f1s = append(f1s, f1)
		} else {
			f1 = 0
		}
		if f2 > 0 && !math.IsInf(f2, 0) {
			f2s = append(f2s, f2)
		} else {
			f2 = 0
		}
		if f3 > 0 && !math.IsInf(f3, 0) {
			f3s = append(f3s, f3)
		} else {
			f3 = 0
		}
		if f1 > 0 && f2 > 0 && f3 > 0 {
			report.Track = append(report.Track, FormantPoint{
				Time: float64(start) / float64(rate),
				F1:   f1,
				F2:   f2,
				F3:   f3,
			})
		}
	}

	report.F1Median = dsp.Median(f1s)
	report.F2Median = dsp.Median(f2s)
	report.F3Median = dsp.Median(f3s)
	report.Physical = classifyFormants(report.F1Median, report.F2Median)
	return report
}

// classifyFormants maps formant medians to the physical voice category.
// F1 decides alone outside the ambiguous band; F2 breaks the tie inside.
func classifyFormants(f1, f2 float64) VoiceCategory {
	switch {
	case f1 < f1MaleMax:
		return CategoryMale
	case f1 > f1FemaleMin:
		return CategoryFemale
	case f2 < f2Boundary:
		return CategoryMale
	default:
		return CategoryFemale
	}
}

// burgCoeffs estimates order-m autoregressive coefficients with Burg's
// method (a[0] == 1). Returns nil when the recursion degenerates: frame
// too short or prediction energy collapsing to zero.
func burgCoeffs(x []float64, order int) []float64 {
	n := len(x)
	if n <= order+1 {
		return nil
	}

	a := make([]float64, order+1)
	a[0] = 1

	f := make([]float64, n)
	b := make([]float64, n)
	copy(f, x)
	copy(b, x)

	var dk float64
	for _, v := range x {
		dk += 2 * v * v
	}
	dk -= x[0]*x[0] + x[n-1]*x[n-1]

	tmp := make([]float64, order+1)
	for k := 0; k < order; k++ {
		if dk <= 1e-12 {
			return nil
		}
		var num float64
		for i := k + 1; i < n; i++ {
			num += f[i] * b[i-k-1]
		}
		mu := -2 * num / dk

		// Reflection update of the coefficient vector.
		copy(tmp, a)
		for i := 0; i <= k+1; i++ {
			a[i] = tmp[i] + mu*tmp[k+1-i]
		}

		// Update forward and backward prediction errors.
		for i := n - 1; i > k; i-- {
			fi := f[i]
			f[i] += mu * b[i-k-1]
			b[i-k-1] += mu * fi
		}

		dk = (1-mu*mu)*dk - f[k+1]*f[k+1] - b[n-2-k]*b[n-2-k]
	}
	return a
}

// resonancePeaks evaluates the all-pole spectral envelope on a uniform
// frequency grid and returns the ascending local-maximum frequencies in
// (50 Hz, ceiling], at most max peaks.
func resonancePeaks(a []float64, rate int, ceiling float64, max int) []float64 {
	const gridN = 1024
	nyquist := float64(rate) / 2
	if ceiling > nyquist {
		ceiling = nyquist
	}

	// log envelope = -log |A(e^jw)|^2; resonances are its local maxima.
	env := make([]float64, gridN)
	for g := 0; g < gridN; g++ {
		freq := ceiling * float64(g) / float64(gridN-1)
		omega := 2 * math.Pi * freq / float64(rate)
		var re, im float64
		for i, c := range a {
			re += c * math.Cos(omega*float64(i))
			im -= c * math.Sin(omega*float64(i))
		}
		mag2 := re*re + im*im
		if mag2 < 1e-12 {
			mag2 = 1e-12
		}
		env[g] = -math.Log(mag2)
	}

	hzPerStep := ceiling / float64(gridN-1)
	peaks := make([]float64, 0, max)
	for g := 1; g < gridN-1 && len(peaks) < max; g++ {
		if env[g] <= env[g-1] || env[g] < env[g+1] {
			continue
		}
		// Parabolic refinement on the log envelope.
		denom := env[g-1] - 2*env[g] + env[g+1]
		shift := 0.0
		if denom != 0 {
			shift = 0.5 * (env[g-1] - env[g+1]) / denom
			if shift > 0.5 {
				shift = 0.5
			} else if shift < -0.5 {
				shift = -0.5
			}
		}
		freq := (float64(g) + shift) * hzPerStep
		if freq <= 50 {
			continue // spectral-tilt pole, not a vocal resonance
		}
		peaks = append(peaks, freq)
	}
	return peaks
}
