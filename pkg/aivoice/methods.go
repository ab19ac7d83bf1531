package aivoice

import (
	"math"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/audio/dsp"
)

// analysis carries the spectral material shared by the detection methods.
type analysis struct {
	samples []float64
	rate    int
	wide    dsp.Spectrogram // 4096-point STFT for vocoder artifacts
	narrow  dsp.Spectrogram // 2048-point STFT for the general features
	melDB   [][]float64     // 128-band dB mel spectrogram of narrow
}

func newAnalysis(samples []float64, rate int) *analysis {
	narrow := dsp.STFT(samples, featureFFT, featureHop, dsp.HannWindow(featureFFT))
	bank := dsp.MelFilterBank(128, featureFFT, rate, 0, float64(rate)/2)
	return &analysis{
		samples: samples,
		rate:    rate,
		wide:    dsp.STFT(samples, 4096, featureHop, dsp.HannWindow(4096)),
		narrow:  narrow,
		melDB:   dsp.PowerToDB(dsp.MelSpectrogram(narrow, bank)),
	}
}

// methodFlags records which of the six detection methods fired.
type methodFlags struct {
	Spectral    bool
	Prosody     bool
	Breathing   bool
	Timing      bool
	Harmonic    bool
	Statistical bool
}

func (f methodFlags) count() int {
	n := 0
	for _, fired := range []bool{f.Spectral, f.Prosody, f.Breathing, f.Timing, f.Harmonic, f.Statistical} {
		if fired {
			n++
		}
	}
	return n
}

// detectSpectralArtifacts looks for neural-vocoder fingerprints: missing
// high-band energy, over-consistent rolloff, over-stable flux, and phase
// discontinuities.
func detectSpectralArtifacts(a *analysis) bool {
	if a.wide.NumFrames() < 2 {
		return false
	}
	power := make([][]float64, a.wide.NumFrames())
	for t := range power {
		power[t] = a.wide.Power(t)
	}
	db := dsp.PowerToDB(power)

	// High band above 8 kHz against everything below it.
	numBins := a.wide.NumBins()
	nyquist := float64(a.rate) / 2
	highStart := int(8000 / nyquist * float64(numBins))
	unnaturalFreq := false
	if highStart > 0 && highStart < numBins {
		var highSum, lowSum float64
		var highN, lowN int
		for _, row := range db {
			for k, v := range row {
				if k >= highStart {
					highSum += v
					highN++
				} else {
					lowSum += v
					lowN++
				}
			}
		}
		ratio := (highSum / float64(highN)) / (lowSum/float64(lowN) + 1e-10)
		unnaturalFreq = ratio < -40
	}

	rolloff := spectralRolloff(a.narrow, a.rate)
	rolloffConsistent := len(rolloff) >= 2 && dsp.StdDev(rolloff) < 500

	flux := spectralFlux(a.wide)
	fluxStable := false
	if len(flux) >= 2 {
		fluxStable = dsp.StdDev(flux)/(dsp.Mean(flux)+1e-10) < 0.3
	}

	// Raw frame-to-frame phase steps near a half turn betray vocoder
	// frame boundaries.
	var jumps, total int
	prev := a.wide.Phase(0)
	for t := 1; t < a.wide.NumFrames(); t++ {
		cur := a.wide.Phase(t)
		for k := range cur {
			if math.Abs(cur[k]-prev[k]) > math.Pi*0.9 {
				jumps++
			}
			total++
		}
		prev = cur
	}
	excessiveJumps := total > 0 && float64(jumps)/float64(total) > 0.15

	return unnaturalFreq || rolloffConsistent || fluxStable || excessiveJumps
}

// analyzeProsody checks for machine-smooth pitch and energy contours.
// Fires when at least three of its four cues agree.
func analyzeProsody(a *analysis) bool {
	contour := pitchContour(a.narrow, a.rate, 75, 400)
	if len(contour) < 10 {
		return false
	}

	tooSmooth := dsp.StdDev(dsp.Diff(contour)) < 2.0

	detrended := subtract(contour, savgol(contour, 11, 2))
	lacksVariation := dsp.StdDev(detrended) < 1.0

	rms := frameRMS(a.samples)
	energyTooSmooth := len(rms) >= 2 && dsp.StdDev(dsp.Diff(rms)) < 0.005

	unnaturalCorrelation := false
	if len(contour) == len(rms) {
		unnaturalCorrelation = math.Abs(dsp.Correlation(contour, rms)) > 0.8
	}

	fired := 0
	for _, b := range []bool{tooSmooth, lacksVariation, energyTooSmooth, unnaturalCorrelation} {
		if b {
			fired++
		}
	}
	return fired >= 3
}

// detectBreathingPauses fires when the clip lacks the irregular pauses
// and faint breath noise of a live speaker.
func detectBreathingPauses(a *analysis) bool {
	intervals := activeIntervals(a.samples, 30)
	if len(intervals) < 2 {
		return true
	}

	var pauses []float64
	for i := 0; i < len(intervals)-1; i++ {
		d := float64(intervals[i+1][0]-intervals[i][1]) / float64(a.rate)
		if d > 0.05 {
			pauses = append(pauses, d)
		}
	}
	lacksPauses := len(pauses) == 0 || dsp.StdDev(pauses) < 0.05

	// Breath sounds are weak broadband noise inside longer pauses;
	// tilt the signal toward low frequencies before measuring.
	low := make([]float64, len(a.samples))
	low[0] = a.samples[0]
	for i := 1; i < len(low); i++ {
		low[i] = a.samples[i] + 0.97*a.samples[i-1]
	}
	breath := false
	minPause := a.rate / 10
	for i := 0; i < len(intervals)-1; i++ {
		start, end := intervals[i][1], intervals[i+1][0]
		if end-start < minPause {
			continue
		}
		if e := dsp.MeanAbs(low[start:end]); e > 0.001 && e < 0.05 {
			breath = true
			break
		}
	}

	return lacksPauses || !breath
}

// analyzeMicroTiming measures inter-onset intervals; synthetic speech
// keeps a beat no human holds.
func analyzeMicroTiming(a *analysis) bool {
	env := onsetStrength(a.melDB)
	framesPerSec := float64(a.rate) / featureHop
	peaks := peakPick(env,
		int(0.03*framesPerSec), 1,
		int(0.10*framesPerSec), int(0.10*framesPerSec)+1,
		0.07, int(0.03*framesPerSec))
	if len(peaks) < 5 {
		return false
	}

	times := make([]float64, len(peaks))
	for i, p := range peaks {
		times[i] = float64(p) * featureHop / float64(a.rate)
	}
	ioi := dsp.Diff(times)

	cv := dsp.StdDev(ioi) / (dsp.Mean(ioi) + 1e-10)
	tooPerfect := cv < 0.15

	lacksJitter := false
	if len(ioi) > 3 {
		w := 5
		if w > len(ioi) {
			w = len(ioi)
		}
		detrended := subtract(ioi, savgol(ioi, w, 1))
		lacksJitter = dsp.StdDev(detrended) < 0.01
	}

	return tooPerfect || lacksJitter
}

// analyzeHarmonics checks the harmonic structure: an unnaturally clean
// harmonic-to-noise split, a pitch with no drift at all, or a frozen
// spectral centroid.
func analyzeHarmonics(a *analysis) bool {
	hnrTooHigh := a.narrow.NumFrames() > 0 && harmonicNoiseRatio(a.narrow) > 25

	f0s := pitchContour(a.narrow, a.rate, 150, 4000)
	harmonicsPerfect := len(f0s) > 10 && dsp.StdDev(f0s) < 1.0

	centroid := spectralCentroid(a.narrow, a.rate)
	centroidStable := false
	if len(centroid) >= 2 {
		centroidStable = dsp.StdDev(centroid)/(dsp.Mean(centroid)+1e-10) < 0.1
	}

	return hnrTooHigh || harmonicsPerfect || centroidStable
}

// extractStatisticalFeatures looks at cepstral and zero-crossing
// statistics for the compressed dynamics typical of generated audio.
func extractStatisticalFeatures(a *analysis) bool {
	ceps := mfcc(a.melDB, 20)
	if len(ceps) < 2 {
		return false
	}
	numCoef := len(ceps[0])

	series := make([]float64, len(ceps))
	var stdSum, skewSum, kurtSum float64
	for c := 0; c < numCoef; c++ {
		for t := range ceps {
			series[t] = ceps[t][c]
		}
		stdSum += dsp.StdDev(series)
		skewSum += math.Abs(dsp.Skewness(series))
		kurtSum += math.Abs(dsp.Kurtosis(series))
	}
	n := float64(numCoef)
	lowVariance := stdSum/n < 15.0
	abnormalDistribution := skewSum/n > 1.5 || kurtSum/n > 4.0

	zcr := zeroCrossingRate(a.samples)
	zcrConsistent := len(zcr) >= 2 && dsp.StdDev(zcr) < 0.02

	return lowVariance || abnormalDistribution || zcrConsistent
}

func subtract(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] - b[i]
	}
	return out
}
