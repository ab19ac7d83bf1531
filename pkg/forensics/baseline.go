package forensics

import (
	"math"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/audio/dsp"
)

// PitchPoint is one voiced analysis frame of the F0 track.
type PitchPoint struct {
	Time float64 // seconds from clip start
	Freq float64 // Hz
}

// BaselineReport is the presented-voice assessment derived from pitch
// alone. Unvoiced frames are excluded from the track, not zero-filled;
// when no frame is voiced the statistics are 0 and Presented is
// CategoryUnknown.
type BaselineReport struct {
	F0Median  float64
	F0Mean    float64
	F0StdDev  float64
	Presented VoiceCategory
	Track     []PitchPoint
}

// ExtractBaseline estimates the fundamental frequency track and classifies
// the presented voice category.
//
// Per analysis frame the candidate spectrum is restricted to
// [F0Min, F0Max]; the strongest in-band peak is taken as the frame's pitch
// candidate and emitted only when its magnitude exceeds VoicingThreshold
// times the frame's overall spectral peak. Peak frequencies are refined by
// parabolic interpolation of the neighbouring bin magnitudes.
//
// Never fails: silent or unvoiced input degrades to CategoryUnknown.
func ExtractBaseline(sig *Signal, cfg BaselineConfig) *BaselineReport {
	fftSize := dsp.NextPow2(cfg.FrameLength)
	sg := dsp.STFT(sig.Samples(), fftSize, cfg.HopLength, dsp.HannWindow(cfg.FrameLength))

	sr := sig.SampleRate()
	binHz := float64(sr) / float64(fftSize)
	loBin := int(math.Ceil(cfg.F0Min / binHz))
	hiBin := int(cfg.F0Max / binHz)
	if hiBin >= sg.NumBins() {
		hiBin = sg.NumBins() - 1
	}
	if loBin < 1 {
		loBin = 1
	}

	report := &BaselineReport{Presented: CategoryUnknown}
	freqs := make([]float64, 0, sg.NumFrames())

	for t := 0; t < sg.NumFrames(); t++ {
		mag := sg.Magnitude(t)

		// Overall frame peak sets the voicing threshold.
		framePeak := 0.0
		for _, m := range mag {
			if m > framePeak {
				framePeak = m
			}
		}
		if framePeak <= 0 {
			continue
		}

		// Strongest candidate inside the search band.
		bestBin, bestMag := -1, 0.0
		for k := loBin; k <= hiBin; k++ {
			if mag[k] > bestMag {
				bestBin, bestMag = k, mag[k]
			}
		}
		if bestBin < 0 || bestMag <= cfg.VoicingThreshold*framePeak {
			continue // unvoiced frame
		}

		freq := refinePeak(mag, bestBin, binHz)
		freqs = append(freqs, freq)
		report.Track = append(report.Track, PitchPoint{
			Time: float64(t*cfg.HopLength) / float64(sr),
			Freq: freq,
		})
	}

	if len(freqs) == 0 {
		return report
	}

	report.F0Median = dsp.Median(freqs)
	report.F0Mean = dsp.Mean(freqs)
	report.F0StdDev = dsp.StdDev(freqs)
	if report.F0Median > categoryBoundaryHz {
		report.Presented = CategoryFemale
	} else {
		report.Presented = CategoryMale
	}
	return report
}

// refinePeak sharpens a spectral peak frequency by fitting a parabola
// through the peak bin and its neighbours.
func refinePeak(mag []float64, bin int, binHz float64) float64 {
	if bin <= 0 || bin >= len(mag)-1 {
		return float64(bin) * binHz
	}
	a, b, c := mag[bin-1], mag[bin], mag[bin+1]
	denom := a - 2*b + c
	if denom == 0 {
		return float64(bin) * binHz
	}
	shift := 0.5 * (a - c) / denom
	if shift > 0.5 {
		shift = 0.5
	} else if shift < -0.5 {
		shift = -0.5
	}
	return (float64(bin) + shift) * binHz
}
