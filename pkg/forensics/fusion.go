package forensics

import "fmt"

// Evidence bundles the four detection vectors feeding the fused verdict.
type Evidence struct {
	Incoherence ArtifactEvidence
	Spectral    ArtifactEvidence
	Phase       ArtifactEvidence
	AI          AIEvidence
}

// Count returns how many vectors fired.
func (e Evidence) Count() int {
	n := 0
	if e.Incoherence.Detected {
		n++
	}
	if e.Spectral.Detected {
		n++
	}
	if e.Phase.Detected {
		n++
	}
	if e.AI.Detected {
		n++
	}
	return n
}

// Fusion weights for the detectors that do not score themselves.
const (
	spectralWeight = 0.60
	phaseWeight    = 0.65
)

// fuseConfidence maps the evidence vectors to a calibrated score.
// Agreement between independent methods outweighs any single method: two
// vectors score 0.85, three 0.95, all four 0.99. A lone vector
// contributes its own weight.
func fuseConfidence(ev Evidence) float64 {
	switch ev.Count() {
	case 0:
		return 0.0
	case 1:
		if ev.AI.Detected {
			return ev.AI.Confidence
		}
		conf := 0.0
		if ev.Incoherence.Detected {
			conf = ev.Incoherence.Confidence
		}
		if ev.Spectral.Detected && spectralWeight > conf {
			conf = spectralWeight
		}
		if ev.Phase.Detected && phaseWeight > conf {
			conf = phaseWeight
		}
		return conf
	case 2:
		return 0.85
	case 3:
		return 0.95
	default:
		return 0.99
	}
}

// GradeConfidence maps a fused score to its reporting label.
func GradeConfidence(score float64) ConfidenceLabel {
	switch {
	case score >= 0.90:
		return LabelVeryHigh
	case score >= 0.75:
		return LabelHigh
	case score >= 0.50:
		return LabelMedium
	default:
		return LabelLow
	}
}

// Fuse combines the extraction reports and evidence vectors into the
// final Verdict. AssetID is left for the caller.
func Fuse(bl *BaselineReport, vt *VocalTractReport, ev Evidence) *Verdict {
	score := fuseConfidence(ev)
	count := ev.Count()
	return &Verdict{
		AlterationDetected: count > 0,
		Confidence:         score,
		Label:              GradeConfidence(score),
		EvidenceCount:      count,

		PitchFinding:    pitchFinding(ev.Incoherence),
		TimeFinding:     timeFinding(ev.Phase),
		SpectralFinding: spectralFinding(ev.Spectral),
		AIFinding:       aiFinding(ev.AI),

		Presented: bl.Presented,
		Physical:  vt.Physical,
		F0Median:  bl.F0Median,
		F1Median:  vt.F1Median,
		F2Median:  vt.F2Median,
		F3Median:  vt.F3Median,

		Summary: buildSummary(count > 0, bl, vt),

		Baseline:   bl,
		VocalTract: vt,
		Vectors:    ev,
	}
}

func pitchFinding(ev ArtifactEvidence) string {
	if ev.Detected {
		return "Pitch-Formant Incoherence Detected. " + ev.Narrative
	}
	return "No pitch-formant incoherence detected"
}

func timeFinding(ev ArtifactEvidence) string {
	if ev.Detected {
		return "Phase Decoherence / Transient Smearing Detected. " + ev.Narrative
	}
	return "No time-stretch artifacts detected"
}

func spectralFinding(ev ArtifactEvidence) string {
	if ev.Detected {
		return "Spectral Artifacts Detected. " + ev.Narrative
	}
	return "No spectral artifacts detected"
}

func aiFinding(ev AIEvidence) string {
	if ev.Detected {
		return fmt.Sprintf("AI Voice Detected (%s, %.0f%% confidence).", ev.Label, ev.Confidence*100)
	}
	return "No AI voice artifacts detected"
}

func buildSummary(detected bool, bl *BaselineReport, vt *VocalTractReport) string {
	if detected {
		return fmt.Sprintf(
			"MANIPULATION DETECTED: Audio presents as %s (F0: %.1f Hz) but physical vocal tract characteristics indicate %s (F1: %.0f Hz). Multiple independent artifact detection methods confirm alteration.",
			bl.Presented, bl.F0Median, vt.Physical, vt.F1Median)
	}
	return fmt.Sprintf(
		"NO MANIPULATION DETECTED: Audio characteristics are coherent. Presented sex (%s) matches physical characteristics (%s).",
		bl.Presented, vt.Physical)
}
