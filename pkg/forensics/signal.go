package forensics

import (
	"errors"
	"time"
)

var (
	// ErrEmptySignal indicates audio with no samples.
	ErrEmptySignal = errors.New("forensics: empty audio signal")

	// ErrInvalidSampleRate indicates a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("forensics: sample rate must be positive")
)

// Signal is an immutable decoded audio clip: mono samples normalized to
// [-1, 1] plus the sample rate. It is created once at load time and shared
// read-only across all analyzers.
type Signal struct {
	samples    []float64
	sampleRate int
}

// NewSignal validates and wraps decoded audio. The samples slice is
// retained; callers must not modify it afterwards.
func NewSignal(samples []float64, sampleRate int) (*Signal, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	return &Signal{samples: samples, sampleRate: sampleRate}, nil
}

// Samples returns the sample data. The returned slice is shared; callers
// must treat it as read-only.
func (s *Signal) Samples() []float64 { return s.samples }

// SampleRate returns the sample rate in Hz.
func (s *Signal) SampleRate() int { return s.sampleRate }

// Len returns the number of samples.
func (s *Signal) Len() int { return len(s.samples) }

// Duration returns the clip length.
func (s *Signal) Duration() time.Duration {
	return time.Duration(float64(len(s.samples)) / float64(s.sampleRate) * float64(time.Second))
}
