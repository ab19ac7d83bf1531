package forensics

import "math"

// Verdict is the complete outcome of analyzing one clip.
type Verdict struct {
	AssetID string

	AlterationDetected bool
	Confidence         float64
	Label              ConfidenceLabel
	EvidenceCount      int

	// Findings are the per-vector report sentences.
	PitchFinding    string
	TimeFinding     string
	SpectralFinding string
	AIFinding       string

	Presented VoiceCategory
	Physical  VoiceCategory

	F0Median float64
	F1Median float64
	F2Median float64
	F3Median float64

	Summary string

	// Full stage detail for reporting and archival.
	Baseline   *BaselineReport
	VocalTract *VocalTractReport
	Vectors    Evidence
}

// Document is the canonical wire form of a Verdict. Field order is the
// serialization order; two identical verdicts marshal to identical bytes,
// which the evidence seal depends on. The msgpack tags serve the verdict
// cache, which stores documents in compact binary form.
type Document struct {
	AssetID            string        `json:"asset_id" msgpack:"asset_id"`
	AlterationDetected bool          `json:"alteration_detected" msgpack:"alteration_detected"`
	Confidence         ConfidenceDoc `json:"confidence" msgpack:"confidence"`
	Evidence           EvidenceDoc   `json:"evidence" msgpack:"evidence"`
	PresentedSex       string        `json:"presented_sex" msgpack:"presented_sex"`
	ProbableSex        string        `json:"probable_sex" msgpack:"probable_sex"`
	F0Baseline         float64       `json:"f0_baseline" msgpack:"f0_baseline"`
	FormantBaseline    FormantDoc    `json:"formant_baseline" msgpack:"formant_baseline"`
	Summary            string        `json:"summary" msgpack:"summary"`
}

// ConfidenceDoc is the confidence block of a Document.
type ConfidenceDoc struct {
	Score float64 `json:"score" msgpack:"score"`
	Label string  `json:"label" msgpack:"label"`
}

// EvidenceDoc carries the four finding sentences of a Document.
type EvidenceDoc struct {
	Pitch    string `json:"pitch" msgpack:"pitch"`
	Time     string `json:"time" msgpack:"time"`
	Spectral string `json:"spectral" msgpack:"spectral"`
	AI       string `json:"ai" msgpack:"ai"`
}

// FormantDoc is the formant baseline block of a Document.
type FormantDoc struct {
	F1 float64 `json:"f1" msgpack:"f1"`
	F2 float64 `json:"f2" msgpack:"f2"`
	F3 float64 `json:"f3" msgpack:"f3"`
}

// Document renders the verdict in canonical form. Every float is forced
// finite so the document always survives JSON encoding.
func (v *Verdict) Document() Document {
	return Document{
		AssetID:            v.AssetID,
		AlterationDetected: v.AlterationDetected,
		Confidence: ConfidenceDoc{
			Score: finite(v.Confidence),
			Label: v.Label.String(),
		},
		Evidence: EvidenceDoc{
			Pitch:    v.PitchFinding,
			Time:     v.TimeFinding,
			Spectral: v.SpectralFinding,
			AI:       v.AIFinding,
		},
		PresentedSex: v.Presented.String(),
		ProbableSex:  v.Physical.String(),
		F0Baseline:   finite(v.F0Median),
		FormantBaseline: FormantDoc{
			F1: finite(v.F1Median),
			F2: finite(v.F2Median),
			F3: finite(v.F3Median),
		},
		Summary: v.Summary,
	}
}

// finite clamps NaN and infinities to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
