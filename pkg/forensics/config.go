package forensics

// Config bundles the tunable parameters of every analyzer stage. The
// detection thresholds are empirically tuned constants; changing them
// changes what the pipeline calls manipulation.
type Config struct {
	Baseline BaselineConfig `yaml:"baseline"`
	Formant  FormantConfig  `yaml:"formant"`
	Spectral SpectralConfig `yaml:"spectral"`
	Phase    PhaseConfig    `yaml:"phase"`
}

// BaselineConfig configures F0 pitch-track extraction.
type BaselineConfig struct {
	F0Min            float64 `yaml:"f0_min"`            // lower search bound in Hz (default: 75)
	F0Max            float64 `yaml:"f0_max"`            // upper search bound in Hz (default: 400)
	VoicingThreshold float64 `yaml:"voicing_threshold"` // fraction of frame peak (default: 0.1)
	FrameLength      int     `yaml:"frame_length"`      // analysis frame in samples (default: 2048)
	HopLength        int     `yaml:"hop_length"`        // frame step in samples (default: 512)
}

// FormantConfig configures vocal-tract resonance estimation.
type FormantConfig struct {
	MaxCandidates int     `yaml:"max_candidates"` // resonance candidates per frame (default: 5)
	WindowLength  float64 `yaml:"window_length"`  // analysis window in seconds (default: 0.025)
	TimeStep      float64 `yaml:"time_step"`      // step in seconds (default: 0.010)
	MaxFrequency  float64 `yaml:"max_frequency"`  // resonance ceiling in Hz (default: 5500)
	PreEmphasis   float64 `yaml:"pre_emphasis"`   // pre-emphasis cutoff in Hz (default: 50)
}

// SpectralConfig configures the mel-spectrogram artifact detector.
type SpectralConfig struct {
	MelBands             int     `yaml:"mel_bands"`              // filterbank size (default: 128)
	FFTSize              int     `yaml:"fft_size"`               // STFT window (default: 2048)
	HopLength            int     `yaml:"hop_length"`             // STFT hop (default: 512)
	NoiseFloorPercentile int     `yaml:"noise_floor_percentile"` // per-band floor percentile (default: 10)
	NoiseFloorStdMax     float64 `yaml:"noise_floor_std_max"`    // dB; lower std is suspicious (default: 3.0)
	SmoothnessMax        float64 `yaml:"smoothness_max"`         // envelope-gradient std limit (default: 2.5)
}

// PhaseConfig configures the phase/transient coherence detector.
type PhaseConfig struct {
	FFTSize      int     `yaml:"fft_size"`      // STFT window (default: 2048)
	HopLength    int     `yaml:"hop_length"`    // STFT hop (default: 512)
	VarianceMax  float64 `yaml:"variance_max"`  // phase-difference variance limit (default: 2.5)
	SharpnessMin float64 `yaml:"sharpness_min"` // onset sharpness floor (default: 0.5)
	EntropyBins  int     `yaml:"entropy_bins"`  // phase histogram bins (default: 50)
}

// DefaultConfig returns the standard analysis parameters.
func DefaultConfig() Config {
	return Config{
		Baseline: BaselineConfig{
			F0Min:            75,
			F0Max:            400,
			VoicingThreshold: 0.1,
			FrameLength:      2048,
			HopLength:        512,
		},
		Formant: FormantConfig{
			MaxCandidates: 5,
			WindowLength:  0.025,
			TimeStep:      0.010,
			MaxFrequency:  5500,
			PreEmphasis:   50,
		},
		Spectral: SpectralConfig{
			MelBands:             128,
			FFTSize:              2048,
			HopLength:            512,
			NoiseFloorPercentile: 10,
			NoiseFloorStdMax:     3.0,
			SmoothnessMax:        2.5,
		},
		Phase: PhaseConfig{
			FFTSize:      2048,
			HopLength:    512,
			VarianceMax:  2.5,
			SharpnessMin: 0.5,
			EntropyBins:  50,
		},
	}
}

// categoryBoundaryHz splits presented Male from Female on the F0 median.
const categoryBoundaryHz = 165.0

// Formant classification thresholds (Hz). F1 decides alone outside the
// ambiguous band; inside it F2 breaks the tie.
const (
	f1MaleMax   = 550.0
	f1FemaleMin = 900.0
	f2Boundary  = 1350.0
)
