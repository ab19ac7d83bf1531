// Package seal produces and checks tamper-evident custody seals for
// analysis reports.
//
// A seal binds two SHA-256 digests: one over the raw audio bytes and one
// over the canonical JSON form of the report document (object keys
// sorted, compact encoding, no trailing newline). Verification recomputes
// both digests and reports which side changed: a report mismatch means
// the findings were edited after sealing, an audio mismatch means the
// clip on disk is not the one that was analyzed.
package seal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// Protocol identifies the sealing scheme carried by a Seal.
	Protocol = "FORENSIC-AUDIO-v1"

	// PipelineVersion is stamped into every new seal and checked by the
	// verdict cache.
	PipelineVersion = "1.0.0"
)

var (
	// ErrNoSeal reports a verify call without a seal record.
	ErrNoSeal = errors.New("seal: missing seal record")

	// ErrProtocol reports a seal produced under an unknown scheme.
	ErrProtocol = errors.New("seal: unknown protocol")

	// ErrAudioModified reports that the audio bytes no longer match the
	// sealed digest.
	ErrAudioModified = errors.New("seal: audio hash mismatch")

	// ErrReportTampered reports that the report document no longer
	// matches the sealed digest.
	ErrReportTampered = errors.New("seal: report hash mismatch")
)

// Seal is the custody record stored alongside a report.
type Seal struct {
	Protocol     string    `json:"protocol"`
	Version      string    `json:"pipeline_version"`
	AudioSHA256  string    `json:"audio_sha256"`
	ReportSHA256 string    `json:"report_sha256"`
	SealedAt     time.Time `json:"sealed_at"`
}

// Sign seals a report document against the audio bytes it was derived
// from. The report may be any JSON-encodable value; it is reduced to
// canonical form before hashing so that key order and whitespace never
// affect the digest.
func Sign(report any, audio []byte) (*Seal, error) {
	canon, err := Canonical(report)
	if err != nil {
		return nil, fmt.Errorf("canonicalize report: %w", err)
	}
	return &Seal{
		Protocol:     Protocol,
		Version:      PipelineVersion,
		AudioSHA256:  digest(audio),
		ReportSHA256: digest(canon),
		SealedAt:     time.Now().UTC(),
	}, nil
}

// Verify checks a seal against the report document and audio bytes it
// claims to cover. The audio digest is checked before the report digest,
// so when both differ the error names the evidence, not the paperwork.
func Verify(s *Seal, report any, audio []byte) error {
	if s == nil {
		return ErrNoSeal
	}
	if s.Protocol != Protocol {
		return fmt.Errorf("%w: %q", ErrProtocol, s.Protocol)
	}
	if digest(audio) != s.AudioSHA256 {
		return ErrAudioModified
	}
	canon, err := Canonical(report)
	if err != nil {
		return fmt.Errorf("canonicalize report: %w", err)
	}
	if digest(canon) != s.ReportSHA256 {
		return ErrReportTampered
	}
	return nil
}

// Canonical renders v as canonical JSON. Object keys come out sorted and
// the encoding is compact, so two structurally equal documents produce
// byte-identical output regardless of field order at the source.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// AudioDigest returns the hex SHA-256 of raw audio bytes. The verdict
// cache uses the same digest as its key.
func AudioDigest(audio []byte) string {
	return digest(audio)
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
