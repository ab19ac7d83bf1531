package forensics

import (
	"fmt"
	"strings"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/audio/dsp"
)

// Expected formant envelopes by presented category. A pitch-shifted voice
// presents one category while its formants stay inside the other envelope;
// the distance outside the expected envelope scales the confidence.
const (
	femaleF1Lo = 600.0
	femaleF1Hi = 1000.0
	femaleF2Lo = 1400.0
	femaleF2Hi = 2200.0

	maleF1Lo = 400.0
	maleF1Hi = 800.0
	maleF2Lo = 1000.0
	maleF2Hi = 1500.0
)

// IncoherenceDetector cross-checks the presented voice category from the
// pitch baseline against the physical category from the formants. Pitch
// shifting moves F0 but leaves the vocal-tract resonances behind, so a
// category mismatch is direct manipulation evidence.
type IncoherenceDetector struct{}

func (IncoherenceDetector) Name() string { return "incoherence" }

func (IncoherenceDetector) Detect(sig *Signal, ctx *Context) ArtifactEvidence {
	if ctx == nil || ctx.Baseline == nil || ctx.VocalTract == nil {
		return ArtifactEvidence{Narrative: "Pitch and formants are coherent"}
	}
	bl, vt := ctx.Baseline, ctx.VocalTract

	detected := bl.Presented != vt.Physical

	// Measure how far the formants sit outside the envelope the
	// presented category predicts.
	f1Lo, f1Hi, f2Lo, f2Hi := maleF1Lo, maleF1Hi, maleF2Lo, maleF2Hi
	if bl.Presented == CategoryFemale {
		f1Lo, f1Hi, f2Lo, f2Hi = femaleF1Lo, femaleF1Hi, femaleF2Lo, femaleF2Hi
	}
	f1Dev := rangeDeviation(vt.F1Median, f1Lo, f1Hi)
	f2Dev := rangeDeviation(vt.F2Median, f2Lo, f2Hi)

	var confidence float64
	narrative := "Pitch and formants are coherent"
	if detected {
		confidence = 0.5 + (f1Dev+f2Dev)/2
		if confidence > 0.99 {
			confidence = 0.99
		}
		narrative = fmt.Sprintf(
			"Pitch suggests %s (F0: %.1f Hz), but formants suggest %s (F1: %.1f Hz, F2: %.1f Hz)",
			bl.Presented, bl.F0Median, vt.Physical, vt.F1Median, vt.F2Median)
	}

	return ArtifactEvidence{
		Detected:   detected,
		Confidence: confidence,
		Measurements: map[string]float64{
			"f0_median":    bl.F0Median,
			"f1_median":    vt.F1Median,
			"f2_median":    vt.F2Median,
			"f1_deviation": f1Dev,
			"f2_deviation": f2Dev,
		},
		Narrative: narrative,
	}
}

// rangeDeviation returns the relative distance of x outside [lo, hi],
// 0 when inside.
func rangeDeviation(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return (lo - x) / lo
	case x > hi:
		return (x - hi) / hi
	default:
		return 0
	}
}

// SpectralDetector looks for processing fingerprints in the mel
// spectrogram: a noise floor too uniform across the spectrum (synthesis
// or heavy denoising) and a harmonic envelope rougher than natural
// speech (resampling or vocoder artifacts).
type SpectralDetector struct {
	cfg SpectralConfig
}

func NewSpectralDetector(cfg SpectralConfig) SpectralDetector {
	return SpectralDetector{cfg: cfg}
}

func (SpectralDetector) Name() string { return "spectral" }

func (d SpectralDetector) Detect(sig *Signal, _ *Context) ArtifactEvidence {
	const cleanNarrative = "No significant mel artifacts detected"

	sg := dsp.STFT(sig.Samples(), d.cfg.FFTSize, d.cfg.HopLength, dsp.HannWindow(d.cfg.FFTSize))
	if sg.NumFrames() < 2 {
		return ArtifactEvidence{Narrative: cleanNarrative}
	}
	bank := dsp.MelFilterBank(d.cfg.MelBands, d.cfg.FFTSize, sig.SampleRate(), 0, float64(sig.SampleRate())/2)
	melDB := dsp.PowerToDB(dsp.MelSpectrogram(sg, bank))

	// Noise floor per band: the quiet percentile of that band over time.
	// Natural floors slope and differ band to band; processed or
	// synthetic audio bottoms out at one uniform level.
	floor := make([]float64, d.cfg.MelBands)
	band := make([]float64, len(melDB))
	for b := 0; b < d.cfg.MelBands; b++ {
		for t := range melDB {
			band[t] = melDB[t][b]
		}
		floor[b] = dsp.Percentile(band, d.cfg.NoiseFloorPercentile)
	}
	floorStd := dsp.StdDev(floor)
	consistentFloor := floorStd < d.cfg.NoiseFloorStdMax

	// Mean spectral envelope across time, then its band-to-band
	// roughness.
	envelope := make([]float64, d.cfg.MelBands)
	for _, row := range melDB {
		for b, v := range row {
			envelope[b] += v
		}
	}
	for b := range envelope {
		envelope[b] /= float64(len(melDB))
	}
	smoothness := dsp.StdDev(dsp.Gradient(envelope))
	unnaturalHarmonics := smoothness > d.cfg.SmoothnessMax

	var parts []string
	if consistentFloor {
		parts = append(parts, fmt.Sprintf("Consistent noise floor detected (std: %.2f)", floorStd))
	}
	if unnaturalHarmonics {
		parts = append(parts, fmt.Sprintf("Unnatural harmonic structure (smoothness: %.2f)", smoothness))
	}
	narrative := cleanNarrative
	if len(parts) > 0 {
		narrative = strings.Join(parts, "; ")
	}

	return ArtifactEvidence{
		Detected: consistentFloor || unnaturalHarmonics,
		Measurements: map[string]float64{
			"noise_floor_std":     floorStd,
			"spectral_smoothness": smoothness,
		},
		Narrative: narrative,
	}
}

// onsetMelBands sizes the mel filterbank behind the onset-strength
// envelope.
const onsetMelBands = 128

// PhaseDetector looks for time-stretch fingerprints: phase-vocoder
// processing decorrelates the frame-to-frame phase progression and smears
// transients that are sharp in natural speech.
type PhaseDetector struct {
	cfg PhaseConfig
}

func NewPhaseDetector(cfg PhaseConfig) PhaseDetector {
	return PhaseDetector{cfg: cfg}
}

func (PhaseDetector) Name() string { return "phase" }

func (d PhaseDetector) Detect(sig *Signal, _ *Context) ArtifactEvidence {
	const cleanNarrative = "No phase artifacts detected - natural timing characteristics"

	sg := dsp.STFT(sig.Samples(), d.cfg.FFTSize, d.cfg.HopLength, dsp.HannWindow(d.cfg.FFTSize))
	if sg.NumFrames() < 2 {
		return ArtifactEvidence{Narrative: cleanNarrative}
	}

	// Frame-to-frame phase advance per bin, wrapped to (-pi, pi]. A
	// natural clip progresses coherently; vocoded audio scatters.
	diffs := make([]float64, 0, (sg.NumFrames()-1)*sg.NumBins())
	prev := sg.Phase(0)
	for t := 1; t < sg.NumFrames(); t++ {
		cur := sg.Phase(t)
		for k := range cur {
			diffs = append(diffs, dsp.WrapPhase(cur[k]-prev[k]))
		}
		prev = cur
	}
	variance := dsp.Variance(diffs)
	highVariance := variance > d.cfg.VarianceMax
	entropy := dsp.HistogramEntropy(diffs, d.cfg.EntropyBins)

	// Onset strength from the dB mel spectrogram: mean positive
	// band-energy increase per frame. Smeared transients flatten it.
	bank := dsp.MelFilterBank(onsetMelBands, d.cfg.FFTSize, sig.SampleRate(), 0, float64(sig.SampleRate())/2)
	melDB := dsp.PowerToDB(dsp.MelSpectrogram(sg, bank))
	onset := make([]float64, 0, len(melDB)-1)
	for t := 1; t < len(melDB); t++ {
		var sum float64
		for b := range melDB[t] {
			if rise := melDB[t][b] - melDB[t-1][b]; rise > 0 {
				sum += rise
			}
		}
		onset = append(onset, sum/float64(onsetMelBands))
	}
	sharpness := dsp.MeanAbs(dsp.Diff(onset))
	smearing := len(onset) >= 2 && sharpness < d.cfg.SharpnessMin

	var parts []string
	if highVariance {
		parts = append(parts, fmt.Sprintf("High phase variance detected (%.2f)", variance))
	}
	if smearing {
		parts = append(parts, fmt.Sprintf("Transient smearing detected (sharpness: %.2f)", sharpness))
	}
	narrative := cleanNarrative
	if len(parts) > 0 {
		narrative = strings.Join(parts, "; ")
	}

	return ArtifactEvidence{
		Detected: highVariance || smearing,
		Measurements: map[string]float64{
			"phase_variance":  variance,
			"phase_entropy":   entropy,
			"onset_sharpness": sharpness,
		},
		Narrative: narrative,
	}
}
