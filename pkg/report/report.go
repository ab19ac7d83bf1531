// Package report renders, exports, validates, and queries analysis
// reports.
//
// A Report bundles the canonical verdict document with its custody seal
// and the stage detail the document's fixed shape leaves out. The
// package writes three formats: plain text for the console, markdown for
// case files, and indented JSON for archival. Stored documents can be
// checked against a derived JSON Schema before their hashes are trusted,
// and filtered with jq expressions.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/seal"
)

// Report is the archival form of one analysis.
type Report struct {
	Document forensics.Document `json:"document"`
	Seal     *seal.Seal         `json:"seal,omitempty"`
	Detail   *Detail            `json:"detail,omitempty"`
}

// Detail carries the baseline measurements behind the document's medians.
// It lives outside the document so the sealed bytes stay minimal and
// stable.
type Detail struct {
	AnalyzedAt      time.Time `json:"analyzed_at"`
	PipelineVersion string    `json:"pipeline_version"`
	F0Mean          float64   `json:"f0_mean"`
	F0StdDev        float64   `json:"f0_std"`
	VoicedFrames    int       `json:"voiced_frames"`
	FormantFrames   int       `json:"formant_frames"`
}

// New builds a Report from a verdict and an optional seal. The analysis
// timestamp is taken from the seal when present so the report and the
// seal never disagree about when the work happened.
func New(v *forensics.Verdict, s *seal.Seal) *Report {
	r := &Report{
		Document: v.Document(),
		Seal:     s,
	}
	d := &Detail{
		AnalyzedAt:      time.Now().UTC(),
		PipelineVersion: seal.PipelineVersion,
	}
	if s != nil {
		d.AnalyzedAt = s.SealedAt
	}
	if v.Baseline != nil {
		d.F0Mean = v.Baseline.F0Mean
		d.F0StdDev = v.Baseline.F0StdDev
		d.VoicedFrames = len(v.Baseline.Track)
	}
	if v.VocalTract != nil {
		d.FormantFrames = len(v.VocalTract.Track)
	}
	r.Detail = d
	return r
}

// EncodeJSON writes the report as indented JSON with a trailing newline.
func EncodeJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// DecodeJSON reads a report written by EncodeJSON. The embedded document
// is checked against the document schema before it is returned, so a
// hand-edited file fails here rather than at seal verification.
func DecodeJSON(rd io.Reader) (*Report, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("report: read: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: decode json: %w", err)
	}

	var outer struct {
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, fmt.Errorf("report: decode json: %w", err)
	}
	if len(outer.Document) == 0 {
		return nil, fmt.Errorf("report: missing document")
	}
	if err := ValidateDocument(outer.Document); err != nil {
		return nil, err
	}
	return &r, nil
}

// RenderText writes the console form of the report.
func RenderText(w io.Writer, r *Report) error {
	doc := &r.Document
	var b bytes.Buffer

	detected := "NO"
	if doc.AlterationDetected {
		detected = "YES"
	}
	fmt.Fprintf(&b, "FORENSIC AUDIO ANALYSIS\n\n")
	fmt.Fprintf(&b, "Asset:                %s\n", doc.AssetID)
	fmt.Fprintf(&b, "Alteration detected:  %s\n", detected)
	fmt.Fprintf(&b, "Confidence:           %s (%.2f)\n\n", doc.Confidence.Label, doc.Confidence.Score)
	fmt.Fprintf(&b, "Presented as:         %s (F0 %.1f Hz)\n", doc.PresentedSex, doc.F0Baseline)
	fmt.Fprintf(&b, "Physical read:        %s (F1 %.0f Hz, F2 %.0f Hz, F3 %.0f Hz)\n\n",
		doc.ProbableSex, doc.FormantBaseline.F1, doc.FormantBaseline.F2, doc.FormantBaseline.F3)
	fmt.Fprintf(&b, "Evidence\n")
	fmt.Fprintf(&b, "  [1] pitch:     %s\n", doc.Evidence.Pitch)
	fmt.Fprintf(&b, "  [2] time:      %s\n", doc.Evidence.Time)
	fmt.Fprintf(&b, "  [3] spectral:  %s\n", doc.Evidence.Spectral)
	fmt.Fprintf(&b, "  [4] synthetic: %s\n\n", doc.Evidence.AI)
	fmt.Fprintf(&b, "%s\n", doc.Summary)
	if r.Seal != nil {
		fmt.Fprintf(&b, "\nSealed %s  audio %s  report %s\n",
			r.Seal.SealedAt.Format(time.RFC3339),
			shortHash(r.Seal.AudioSHA256),
			shortHash(r.Seal.ReportSHA256))
	}

	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}
	return nil
}

// RenderMarkdown writes the case-file form of the report.
func RenderMarkdown(w io.Writer, r *Report) error {
	doc := &r.Document
	var b bytes.Buffer

	generated := "N/A"
	if r.Detail != nil {
		generated = r.Detail.AnalyzedAt.Format(time.RFC3339)
	}

	fmt.Fprintf(&b, "# FORENSIC AUDIO ANALYSIS REPORT\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n---\n\n", generated)

	fmt.Fprintf(&b, "## EXECUTIVE SUMMARY\n\n")
	fmt.Fprintf(&b, "- **Asset ID:** %s\n", doc.AssetID)
	fmt.Fprintf(&b, "- **Alteration Detected:** %s\n", strconv.FormatBool(doc.AlterationDetected))
	fmt.Fprintf(&b, "- **Confidence:** %s (%.2f)\n\n---\n\n", doc.Confidence.Label, doc.Confidence.Score)

	fmt.Fprintf(&b, "## CLASSIFICATION\n\n")
	fmt.Fprintf(&b, "- **Presented As:** %s\n", doc.PresentedSex)
	fmt.Fprintf(&b, "- **Probable Sex:** %s\n\n---\n\n", doc.ProbableSex)

	fmt.Fprintf(&b, "## BASELINE METRICS\n\n")
	fmt.Fprintf(&b, "### Pitch Analysis (F0)\n")
	fmt.Fprintf(&b, "- **Deception Baseline:** %.1f Hz\n", doc.F0Baseline)
	if r.Detail != nil {
		fmt.Fprintf(&b, "- **Mean / Std:** %.1f Hz / %.1f Hz over %d voiced frames\n",
			r.Detail.F0Mean, r.Detail.F0StdDev, r.Detail.VoicedFrames)
	}
	fmt.Fprintf(&b, "\n### Vocal Tract Analysis (Formants)\n")
	fmt.Fprintf(&b, "- **Physical Baseline:** F1 %.0f Hz, F2 %.0f Hz, F3 %.0f Hz\n\n---\n\n",
		doc.FormantBaseline.F1, doc.FormantBaseline.F2, doc.FormantBaseline.F3)

	fmt.Fprintf(&b, "## EVIDENCE VECTORS\n\n")
	fmt.Fprintf(&b, "### [1] PITCH MANIPULATION\n%s\n\n", doc.Evidence.Pitch)
	fmt.Fprintf(&b, "### [2] TIME MANIPULATION\n%s\n\n", doc.Evidence.Time)
	fmt.Fprintf(&b, "### [3] SPECTRAL ARTIFACTS\n%s\n\n", doc.Evidence.Spectral)
	fmt.Fprintf(&b, "### [4] SYNTHETIC VOICE\n%s\n\n---\n\n", doc.Evidence.AI)

	fmt.Fprintf(&b, "## DETAILED FINDINGS\n\n%s\n\n---\n\n", doc.Summary)

	fmt.Fprintf(&b, "## VERIFICATION\n\n")
	if r.Seal != nil {
		fmt.Fprintf(&b, "**Timestamp:** %s\n", r.Seal.SealedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "**File Hash (SHA-256):** `%s`\n", r.Seal.AudioSHA256)
		fmt.Fprintf(&b, "**Report Hash (SHA-256):** `%s`\n", r.Seal.ReportSHA256)
		fmt.Fprintf(&b, "**Pipeline Version:** %s\n\n", r.Seal.Version)
		fmt.Fprintf(&b, "This report is cryptographically signed and tamper-evident.\n")
	} else {
		fmt.Fprintf(&b, "This report is unsealed.\n")
	}

	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("report: render markdown: %w", err)
	}
	return nil
}

// WriteCSVSummary writes one row per report for spreadsheet triage of a
// batch run.
func WriteCSVSummary(w io.Writer, reports []*Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"asset_id", "alteration_detected", "confidence_score", "confidence_label",
		"presented_sex", "probable_sex", "f0_median_hz", "analyzed_at",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	for _, r := range reports {
		doc := &r.Document
		analyzedAt := ""
		if r.Detail != nil {
			analyzedAt = r.Detail.AnalyzedAt.Format(time.RFC3339)
		}
		row := []string{
			doc.AssetID,
			strconv.FormatBool(doc.AlterationDetected),
			strconv.FormatFloat(doc.Confidence.Score, 'f', 2, 64),
			doc.Confidence.Label,
			doc.PresentedSex,
			doc.ProbableSex,
			strconv.FormatFloat(doc.F0Baseline, 'f', 1, 64),
			analyzedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	return nil
}

// shortHash abbreviates a digest for single-line console output.
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
