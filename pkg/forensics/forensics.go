// Package forensics implements multi-vector detection of voice manipulation
// (pitch-shifting, time-stretching) and AI-synthesized speech in a recorded
// clip.
//
// # Architecture
//
// One clip flows through four stages:
//
//  1. ExtractBaseline: F0 pitch track → presented voice category
//  2. ExtractVocalTract: formant tracks (F1–F3) → physical voice category
//  3. Artifact detectors: pitch/formant incoherence, spectral/mel
//     artifacts, phase/transient coherence
//  4. Fuse: the three artifact vectors plus an external AI score → one
//     Verdict with a calibrated confidence score and label
//
// The baseline and vocal-tract stages run independently over the same
// signal; their reports feed the artifact detectors through a shared
// Context. Fusion is a pure function of the four evidence vectors.
//
// # Determinism
//
// Every stage is a pure, synchronous computation: analyzing the same
// Signal twice produces bit-identical reports. Per-clip analyses share no
// mutable state, so callers may run many clips in parallel without
// coordination.
//
// # Degradation
//
// Absence of a signal property is a valid forensic outcome, not an error:
// unvoiced audio degrades to CategoryUnknown with zeroed pitch statistics,
// and unresolved formants degrade to zero medians. Only malformed input
// (empty samples, non-positive rate) and AI-scorer failures surface as
// errors.
package forensics

import "fmt"

// VoiceCategory is a coarse voice classification derived from either the
// pitch baseline (presented) or the vocal-tract formants (physical).
type VoiceCategory int

const (
	// CategoryUnknown means the category cannot be determined
	// (e.g., no voiced frames in the clip).
	CategoryUnknown VoiceCategory = iota

	// CategoryMale is the low-pitch / low-formant classification.
	CategoryMale

	// CategoryFemale is the high-pitch / high-formant classification.
	CategoryFemale
)

func (c VoiceCategory) String() string {
	switch c {
	case CategoryUnknown:
		return "Unknown"
	case CategoryMale:
		return "Male"
	case CategoryFemale:
		return "Female"
	default:
		return fmt.Sprintf("VoiceCategory(%d)", int(c))
	}
}

// ConfidenceLabel grades a fused confidence score.
type ConfidenceLabel int

const (
	LabelLow ConfidenceLabel = iota
	LabelMedium
	LabelHigh
	LabelVeryHigh
)

func (l ConfidenceLabel) String() string {
	switch l {
	case LabelLow:
		return "Low"
	case LabelMedium:
		return "Medium"
	case LabelHigh:
		return "High"
	case LabelVeryHigh:
		return "Very High"
	default:
		return fmt.Sprintf("ConfidenceLabel(%d)", int(l))
	}
}

// ArtifactEvidence is the outcome of one artifact sub-detector.
type ArtifactEvidence struct {
	// Detected reports whether the detector fired.
	Detected bool

	// Confidence is in [0, 1] and is 0 whenever Detected is false.
	// Only the incoherence detector scores itself; the spectral and
	// phase detectors leave this 0 and fusion applies fixed weights.
	Confidence float64

	// Measurements holds the named metrics behind the decision.
	Measurements map[string]float64

	// Narrative is a human-readable account of the evidence.
	Narrative string
}

// AIEvidence is the synthetic-speech assessment from a Scorer.
type AIEvidence struct {
	Detected   bool
	Confidence float64
	Label      string
}

// Scorer estimates the likelihood that a clip is AI-synthesized speech.
//
// The input is normalized mono samples at the given rate. Implementations
// are expected to cap or pad to a bounded window (a few seconds) and
// return within finite time.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; the batch runner may
// call Score from multiple goroutines.
type Scorer interface {
	// Score analyzes the clip and reports whether it appears synthetic,
	// with a confidence in [0, 1] and a descriptive label.
	Score(samples []float64, sampleRate int) (AIEvidence, error)
}

// Context carries the baseline reports shared by the artifact detectors.
type Context struct {
	Baseline   *BaselineReport
	VocalTract *VocalTractReport
}

// ArtifactDetector is the capability surface shared by the artifact
// sub-detectors. The set is closed: incoherence, spectral and phase, plus
// the external Scorer. Detectors never fail; degraded input yields a
// not-detected result.
type ArtifactDetector interface {
	// Name identifies the detector in logs and measurements.
	Name() string

	// Detect analyzes the signal in the light of the baseline context.
	Detect(sig *Signal, ctx *Context) ArtifactEvidence
}
