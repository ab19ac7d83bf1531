package forensics

import (
	"math"
	"math/rand"
	"strings"
	"testing"
)

func incoherenceContext(presented VoiceCategory, f0, f1, f2 float64) *Context {
	vt := &VocalTractReport{F1Median: f1, F2Median: f2}
	vt.Physical = classifyFormants(f1, f2)
	return &Context{
		Baseline:   &BaselineReport{F0Median: f0, Presented: presented},
		VocalTract: vt,
	}
}

func shortSignal(t *testing.T) *Signal {
	t.Helper()
	sig, err := NewSignal(sine(120, 256, testRate, 0.5), testRate)
	if err != nil {
		t.Fatal(err)
	}
	return sig
}

func TestIncoherenceCoherent(t *testing.T) {
	sig := shortSignal(t)
	ev := IncoherenceDetector{}.Detect(sig, incoherenceContext(CategoryMale, 120, 480, 1450))

	if ev.Detected {
		t.Fatal("coherent male voice flagged")
	}
	if ev.Confidence != 0 {
		t.Errorf("confidence = %g, want 0", ev.Confidence)
	}
	if ev.Narrative != "Pitch and formants are coherent" {
		t.Errorf("narrative = %q", ev.Narrative)
	}
	if ev.Measurements["f1_deviation"] != 0 || ev.Measurements["f2_deviation"] != 0 {
		t.Errorf("deviations nonzero inside envelope: %v", ev.Measurements)
	}
}

func TestIncoherencePitchShift(t *testing.T) {
	// Presents female pitch over a male vocal tract: F1 sits 20% below
	// the female envelope, F2 just inside it.
	sig := shortSignal(t)
	ev := IncoherenceDetector{}.Detect(sig, incoherenceContext(CategoryFemale, 250, 480, 1450))

	if !ev.Detected {
		t.Fatal("female pitch over male formants not flagged")
	}
	if math.Abs(ev.Confidence-0.6) > 1e-9 {
		t.Errorf("confidence = %g, want 0.6", ev.Confidence)
	}
	want := "Pitch suggests Female (F0: 250.0 Hz), but formants suggest Male (F1: 480.0 Hz, F2: 1450.0 Hz)"
	if ev.Narrative != want {
		t.Errorf("narrative = %q, want %q", ev.Narrative, want)
	}
	if d := ev.Measurements["f1_deviation"]; math.Abs(d-0.2) > 1e-9 {
		t.Errorf("f1 deviation = %g, want 0.2", d)
	}
}

func TestIncoherenceUnknownPresented(t *testing.T) {
	// Unvoiced audio presents Unknown, which can never match a physical
	// category; the formants themselves are unremarkable, so the score
	// stays at the floor.
	sig := shortSignal(t)
	ev := IncoherenceDetector{}.Detect(sig, incoherenceContext(CategoryUnknown, 0, 480, 1450))

	if !ev.Detected {
		t.Fatal("unknown presented category not flagged")
	}
	if math.Abs(ev.Confidence-0.5) > 1e-9 {
		t.Errorf("confidence = %g, want 0.5", ev.Confidence)
	}
}

func TestIncoherenceConfidenceCap(t *testing.T) {
	sig := shortSignal(t)
	ev := IncoherenceDetector{}.Detect(sig, incoherenceContext(CategoryMale, 120, 5000, 9000))

	if !ev.Detected {
		t.Fatal("extreme formants over male pitch not flagged")
	}
	if ev.Confidence != 0.99 {
		t.Errorf("confidence = %g, want cap 0.99", ev.Confidence)
	}
}

func TestIncoherenceNilContext(t *testing.T) {
	sig := shortSignal(t)
	ev := IncoherenceDetector{}.Detect(sig, nil)
	if ev.Detected || ev.Confidence != 0 {
		t.Errorf("nil context produced %+v", ev)
	}
}

func TestRangeDeviation(t *testing.T) {
	tests := []struct {
		x, lo, hi, want float64
	}{
		{500, 400, 800, 0},
		{400, 400, 800, 0},
		{300, 400, 800, 0.25},
		{1000, 400, 800, 0.25},
		{0, 400, 800, 1},
	}
	for _, tc := range tests {
		if got := rangeDeviation(tc.x, tc.lo, tc.hi); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("rangeDeviation(%g, %g, %g) = %g, want %g", tc.x, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestSpectralDetectorShortInput(t *testing.T) {
	d := NewSpectralDetector(DefaultConfig().Spectral)
	ev := d.Detect(shortSignal(t), nil)

	if ev.Detected {
		t.Fatal("short input flagged")
	}
	if ev.Narrative != "No significant mel artifacts detected" {
		t.Errorf("narrative = %q", ev.Narrative)
	}
}

func TestSpectralDetectorSteadyTone(t *testing.T) {
	// A machine-steady tone carves a cliff into the mel envelope; its
	// band-to-band gradient is far rougher than any voiced spectrum.
	sig, err := NewSignal(sine(500, 2*testRate, testRate, 0.8), testRate)
	if err != nil {
		t.Fatal(err)
	}
	d := NewSpectralDetector(DefaultConfig().Spectral)
	ev := d.Detect(sig, nil)

	if !ev.Detected {
		t.Fatal("steady tone not flagged")
	}
	if !strings.Contains(ev.Narrative, "Unnatural harmonic structure") {
		t.Errorf("narrative = %q, want harmonic-structure evidence", ev.Narrative)
	}
	if s := ev.Measurements["spectral_smoothness"]; s <= 2.5 {
		t.Errorf("spectral smoothness = %g, want > 2.5", s)
	}
}

func TestSpectralDetectorSilencePadding(t *testing.T) {
	// Digital-zero spans put every band at the dB clamp for well over a
	// tenth of the frames, so the per-band floors collapse to one level.
	n := 2 * testRate
	samples := sine(500, n, testRate, 0.8)
	for i := n / 4; i < n/2; i++ {
		samples[i] = 0
	}
	sig, err := NewSignal(samples, testRate)
	if err != nil {
		t.Fatal(err)
	}
	d := NewSpectralDetector(DefaultConfig().Spectral)
	ev := d.Detect(sig, nil)

	if !ev.Detected {
		t.Fatal("zero-padded tone not flagged")
	}
	if !strings.Contains(ev.Narrative, "Consistent noise floor detected") {
		t.Errorf("narrative = %q, want consistent-floor evidence", ev.Narrative)
	}
	if std := ev.Measurements["noise_floor_std"]; std >= 3.0 {
		t.Errorf("noise floor std = %g, want < 3", std)
	}
}

func TestSpectralDetectorNaturalNoise(t *testing.T) {
	// Lowpassed noise slopes like a room recording: the per-band floors
	// spread over tens of dB while the averaged envelope decays smoothly.
	rng := rand.New(rand.NewSource(11))
	n := 4 * testRate
	samples := make([]float64, n)
	var y float64
	for i := range samples {
		y = 0.95*y + 0.05*rng.NormFloat64()
		samples[i] = y
	}
	sig, err := NewSignal(samples, testRate)
	if err != nil {
		t.Fatal(err)
	}
	d := NewSpectralDetector(DefaultConfig().Spectral)
	ev := d.Detect(sig, nil)

	if ev.Detected {
		t.Fatalf("sloped noise flagged: %q (floor std %.2f, smoothness %.2f)",
			ev.Narrative, ev.Measurements["noise_floor_std"], ev.Measurements["spectral_smoothness"])
	}
	if std := ev.Measurements["noise_floor_std"]; std < 3.0 {
		t.Errorf("noise floor std = %g, want >= 3 for a sloped floor", std)
	}
	if s := ev.Measurements["spectral_smoothness"]; s > 2.5 {
		t.Errorf("spectral smoothness = %g, want <= 2.5 for a smooth envelope", s)
	}
}

func TestPhaseDetectorShortInput(t *testing.T) {
	d := NewPhaseDetector(DefaultConfig().Phase)
	ev := d.Detect(shortSignal(t), nil)

	if ev.Detected {
		t.Fatal("short input flagged")
	}
	if ev.Narrative != "No phase artifacts detected - natural timing characteristics" {
		t.Errorf("narrative = %q", ev.Narrative)
	}
}

func TestPhaseDetectorWhiteNoise(t *testing.T) {
	// White noise has no phase structure at all; successive frames
	// scatter uniformly.
	rng := rand.New(rand.NewSource(13))
	samples := make([]float64, 2*testRate)
	for i := range samples {
		samples[i] = 0.5 * rng.NormFloat64()
	}
	sig, err := NewSignal(samples, testRate)
	if err != nil {
		t.Fatal(err)
	}
	d := NewPhaseDetector(DefaultConfig().Phase)
	ev := d.Detect(sig, nil)

	if !ev.Detected {
		t.Fatal("white noise not flagged")
	}
	if !strings.Contains(ev.Narrative, "High phase variance detected") {
		t.Errorf("narrative = %q, want phase-variance evidence", ev.Narrative)
	}
	if v := ev.Measurements["phase_variance"]; v <= 2.5 {
		t.Errorf("phase variance = %g, want > 2.5", v)
	}
	if e := ev.Measurements["phase_entropy"]; e <= 0 {
		t.Errorf("phase entropy = %g, want > 0", e)
	}
}

func TestPhaseDetectorSteadyToneSmearing(t *testing.T) {
	// A gently breathing tone keeps a coherent phase track but has no
	// transients at all, the signature the smearing check looks for.
	n := 2 * testRate
	samples := make([]float64, n)
	for i := range samples {
		mod := 0.8 + 0.2*math.Sin(2*math.Pi*0.5*float64(i)/float64(testRate))
		samples[i] = 0.7 * mod * math.Sin(2*math.Pi*500*float64(i)/float64(testRate))
	}
	sig, err := NewSignal(samples, testRate)
	if err != nil {
		t.Fatal(err)
	}
	d := NewPhaseDetector(DefaultConfig().Phase)
	ev := d.Detect(sig, nil)

	if !ev.Detected {
		t.Fatal("transient-free tone not flagged")
	}
	if !strings.Contains(ev.Narrative, "Transient smearing detected") {
		t.Errorf("narrative = %q, want smearing evidence", ev.Narrative)
	}
	if s := ev.Measurements["onset_sharpness"]; s >= 0.5 {
		t.Errorf("onset sharpness = %g, want < 0.5", s)
	}
	if v := ev.Measurements["phase_variance"]; v > 2.5 {
		t.Errorf("phase variance = %g for a steady tone", v)
	}
}

func TestDetectorNames(t *testing.T) {
	detectors := []ArtifactDetector{
		IncoherenceDetector{},
		NewSpectralDetector(DefaultConfig().Spectral),
		NewPhaseDetector(DefaultConfig().Phase),
	}
	want := []string{"incoherence", "spectral", "phase"}
	for i, d := range detectors {
		if d.Name() != want[i] {
			t.Errorf("detector %d name = %q, want %q", i, d.Name(), want[i])
		}
	}
}
