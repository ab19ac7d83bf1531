package forensics

import (
	"math"
	"testing"
)

func TestExtractBaselineMale(t *testing.T) {
	sig, err := NewSignal(sine(120, 2*testRate, testRate, 0.8), testRate)
	if err != nil {
		t.Fatal(err)
	}
	bl := ExtractBaseline(sig, DefaultConfig().Baseline)

	if bl.Presented != CategoryMale {
		t.Fatalf("presented = %v, want Male", bl.Presented)
	}
	if math.Abs(bl.F0Median-120) > 2 {
		t.Errorf("f0 median = %.2f Hz, want 120 +/- 2", bl.F0Median)
	}
	if math.Abs(bl.F0Mean-120) > 2 {
		t.Errorf("f0 mean = %.2f Hz, want 120 +/- 2", bl.F0Mean)
	}
	if bl.F0StdDev > 2 {
		t.Errorf("f0 stddev = %.2f for a steady tone", bl.F0StdDev)
	}
	if len(bl.Track) == 0 {
		t.Fatal("no voiced frames for a steady in-band tone")
	}
	for i := 1; i < len(bl.Track); i++ {
		if bl.Track[i].Time <= bl.Track[i-1].Time {
			t.Fatalf("track times not increasing at %d", i)
		}
	}
}

func TestExtractBaselineFemale(t *testing.T) {
	sig, err := NewSignal(sine(220, 2*testRate, testRate, 0.8), testRate)
	if err != nil {
		t.Fatal(err)
	}
	bl := ExtractBaseline(sig, DefaultConfig().Baseline)

	if bl.Presented != CategoryFemale {
		t.Fatalf("presented = %v, want Female", bl.Presented)
	}
	if math.Abs(bl.F0Median-220) > 2 {
		t.Errorf("f0 median = %.2f Hz, want 220 +/- 2", bl.F0Median)
	}
}

func TestExtractBaselineCategoryBoundary(t *testing.T) {
	// 160 Hz sits below the 165 Hz boundary, 170 Hz above.
	for _, tc := range []struct {
		freq float64
		want VoiceCategory
	}{
		{160, CategoryMale},
		{170, CategoryFemale},
	} {
		sig, err := NewSignal(sine(tc.freq, 2*testRate, testRate, 0.8), testRate)
		if err != nil {
			t.Fatal(err)
		}
		bl := ExtractBaseline(sig, DefaultConfig().Baseline)
		if bl.Presented != tc.want {
			t.Errorf("%.0f Hz: presented = %v, want %v", tc.freq, bl.Presented, tc.want)
		}
	}
}

func TestExtractBaselineOutOfBand(t *testing.T) {
	// A 50 Hz hum is below the search band; only window leakage reaches
	// it, far under the voicing threshold.
	sig, err := NewSignal(sine(50, 2*testRate, testRate, 0.8), testRate)
	if err != nil {
		t.Fatal(err)
	}
	bl := ExtractBaseline(sig, DefaultConfig().Baseline)

	if bl.Presented != CategoryUnknown {
		t.Fatalf("presented = %v, want Unknown", bl.Presented)
	}
	if bl.F0Median != 0 || bl.F0Mean != 0 || bl.F0StdDev != 0 {
		t.Errorf("stats not zeroed: median=%g mean=%g std=%g", bl.F0Median, bl.F0Mean, bl.F0StdDev)
	}
	if len(bl.Track) != 0 {
		t.Errorf("track has %d points, want none", len(bl.Track))
	}
}

func TestExtractBaselineSilence(t *testing.T) {
	sig, err := NewSignal(make([]float64, testRate), testRate)
	if err != nil {
		t.Fatal(err)
	}
	bl := ExtractBaseline(sig, DefaultConfig().Baseline)

	if bl.Presented != CategoryUnknown {
		t.Fatalf("presented = %v, want Unknown", bl.Presented)
	}
	if bl.F0Median != 0 {
		t.Errorf("f0 median = %g, want 0", bl.F0Median)
	}
}

func TestExtractBaselineTooShort(t *testing.T) {
	// Shorter than one analysis frame: no frames, not an error.
	sig, err := NewSignal(sine(120, 512, testRate, 0.8), testRate)
	if err != nil {
		t.Fatal(err)
	}
	bl := ExtractBaseline(sig, DefaultConfig().Baseline)
	if bl.Presented != CategoryUnknown {
		t.Fatalf("presented = %v, want Unknown", bl.Presented)
	}
}

func BenchmarkExtractBaseline(b *testing.B) {
	sig, _ := NewSignal(sine(120, 3*testRate, testRate, 0.8), testRate)
	cfg := DefaultConfig().Baseline
	b.ResetTimer()
	for range b.N {
		ExtractBaseline(sig, cfg)
	}
}
