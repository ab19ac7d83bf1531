package forensics

import (
	"fmt"
	"log/slog"
)

// Pipeline runs the full analysis chain over one clip: baseline and
// vocal-tract extraction, the three artifact detectors, the optional AI
// scorer, then fusion. One Pipeline is safe for concurrent Analyze calls
// as long as its Scorer is.
type Pipeline struct {
	cfg    Config
	scorer Scorer
	logger *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithConfig replaces the default analysis parameters.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithScorer attaches an AI-voice scorer. Without one the AI vector
// stays clean.
func WithScorer(s Scorer) Option {
	return func(p *Pipeline) { p.scorer = s }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline builds an analysis pipeline with the default configuration.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the analysis parameters in effect.
func (p *Pipeline) Config() Config { return p.cfg }

// Analyze runs every stage over the clip and fuses the verdict.
// Malformed input and scorer failures are the only error paths; silent or
// degraded audio yields a valid (possibly Unknown) verdict.
func (p *Pipeline) Analyze(assetID string, samples []float64, sampleRate int) (*Verdict, error) {
	sig, err := NewSignal(samples, sampleRate)
	if err != nil {
		return nil, err
	}

	bl := ExtractBaseline(sig, p.cfg.Baseline)
	p.logger.Debug("baseline extracted",
		"asset", assetID,
		"f0_median", bl.F0Median,
		"presented", bl.Presented.String(),
		"voiced_frames", len(bl.Track))

	vt := ExtractVocalTract(sig, p.cfg.Formant)
	p.logger.Debug("vocal tract extracted",
		"asset", assetID,
		"f1_median", vt.F1Median,
		"f2_median", vt.F2Median,
		"physical", vt.Physical.String())

	ctx := &Context{Baseline: bl, VocalTract: vt}
	ev := Evidence{
		Incoherence: IncoherenceDetector{}.Detect(sig, ctx),
		Spectral:    NewSpectralDetector(p.cfg.Spectral).Detect(sig, ctx),
		Phase:       NewPhaseDetector(p.cfg.Phase).Detect(sig, ctx),
	}
	if p.scorer != nil {
		ai, err := p.scorer.Score(sig.Samples(), sig.SampleRate())
		if err != nil {
			return nil, fmt.Errorf("ai voice scoring: %w", err)
		}
		ev.AI = ai
	}

	verdict := Fuse(bl, vt, ev)
	verdict.AssetID = assetID
	p.logger.Info("analysis complete",
		"asset", assetID,
		"alteration", verdict.AlterationDetected,
		"confidence", verdict.Confidence,
		"evidence_count", verdict.EvidenceCount)
	return verdict, nil
}
