package dsp

import (
	"math"
	"testing"
)

// makeSine generates nSamples of a sine wave at freqHz with the given
// amplitude, normalized to [-1, 1].
func makeSine(freqHz float64, nSamples, sampleRate int, amp float64) []float64 {
	out := make([]float64, nSamples)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = amp * math.Sin(2*math.Pi*freqHz*t)
	}
	return out
}

func TestFFTImpulse(t *testing.T) {
	n := 8
	re := make([]float64, n)
	im := make([]float64, n)
	re[0] = 1

	FFT(re, im)

	// FFT of impulse should be all 1s.
	for i := 0; i < n; i++ {
		if math.Abs(re[i]-1.0) > 1e-10 || math.Abs(im[i]) > 1e-10 {
			t.Errorf("FFT[%d] = %f%+fi, expected 1+0i", i, re[i], im[i])
		}
	}
}

func TestFFTSinePeak(t *testing.T) {
	const (
		sampleRate = 8192
		n          = 1024
	)
	// Bin 128 corresponds to exactly 1024 Hz at this rate and size.
	freq := 128.0 * float64(sampleRate) / float64(n)
	re := makeSine(freq, n, sampleRate, 1.0)
	im := make([]float64, n)

	FFT(re, im)

	peakBin, peakMag := 0, 0.0
	for k := 0; k < n/2; k++ {
		mag := math.Hypot(re[k], im[k])
		if mag > peakMag {
			peakBin, peakMag = k, mag
		}
	}
	if peakBin != 128 {
		t.Errorf("peak at bin %d, want 128", peakBin)
	}
}

func TestSTFTShape(t *testing.T) {
	const (
		sampleRate = 16000
		fftSize    = 512
		hop        = 128
	)
	samples := makeSine(440, sampleRate/2, sampleRate, 0.8) // 500ms
	sg := STFT(samples, fftSize, hop, HannWindow(fftSize))

	wantFrames := (len(samples)-fftSize)/hop + 1
	if sg.NumFrames() != wantFrames {
		t.Errorf("got %d frames, want %d", sg.NumFrames(), wantFrames)
	}
	if sg.NumBins() != fftSize/2+1 {
		t.Errorf("got %d bins, want %d", sg.NumBins(), fftSize/2+1)
	}

	for f := 0; f < sg.NumFrames(); f++ {
		for k, v := range sg.Magnitude(f) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("frame %d bin %d: non-finite magnitude %f", f, k, v)
			}
		}
	}
}

func TestSTFTTooShort(t *testing.T) {
	sg := STFT(make([]float64, 100), 512, 128, HannWindow(512))
	if sg.NumFrames() != 0 {
		t.Errorf("expected 0 frames for short input, got %d", sg.NumFrames())
	}
}

func TestSTFTPeakTracksFrequency(t *testing.T) {
	const (
		sampleRate = 16000
		fftSize    = 2048
		hop        = 512
	)
	samples := makeSine(1000, sampleRate, sampleRate, 0.8) // 1s at 1kHz
	sg := STFT(samples, fftSize, hop, HannWindow(fftSize))

	for f := 0; f < sg.NumFrames(); f++ {
		mag := sg.Magnitude(f)
		peakBin, peakMag := 0, 0.0
		for k, m := range mag {
			if m > peakMag {
				peakBin, peakMag = k, m
			}
		}
		freq := sg.BinFreq(peakBin, sampleRate)
		if math.Abs(freq-1000) > float64(sampleRate)/float64(fftSize)*2 {
			t.Errorf("frame %d: peak at %.1f Hz, want ~1000 Hz", f, freq)
		}
	}
}

func TestWrapPhase(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{2 * math.Pi, 0},
		{-5 * math.Pi / 2, -math.Pi / 2},
	}
	for _, tt := range tests {
		got := WrapPhase(tt.in)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapPhase(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct{ in, want int }{
		{1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8},
		{400, 512}, {512, 512}, {513, 1024},
	}
	for _, tt := range tests {
		got := NextPow2(tt.in)
		if got != tt.want {
			t.Errorf("NextPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMelConversion(t *testing.T) {
	// Round-trip: Hz -> Mel -> Hz.
	for _, hz := range []float64{0, 100, 1000, 4000, 8000} {
		mel := HzToMel(hz)
		back := MelToHz(mel)
		if math.Abs(back-hz) > 0.01 {
			t.Errorf("round-trip failed: %f Hz -> %f mel -> %f Hz", hz, mel, back)
		}
	}
}

func TestMelSpectrogramLowVsHigh(t *testing.T) {
	const (
		sampleRate = 16000
		fftSize    = 1024
		hop        = 256
		numMels    = 40
	)
	bank := MelFilterBank(numMels, fftSize, sampleRate, 0, float64(sampleRate)/2)
	window := HannWindow(fftSize)

	low := MelSpectrogram(STFT(makeSine(200, 8000, sampleRate, 0.8), fftSize, hop, window), bank)
	high := MelSpectrogram(STFT(makeSine(4000, 8000, sampleRate, 0.8), fftSize, hop, window), bank)

	var lowBins, highBins float64
	for t := range low {
		for m := 0; m < numMels/4; m++ {
			lowBins += low[t][m]
			highBins += high[t][m]
		}
	}
	// The 200 Hz tone should dominate the lowest quarter of the bank.
	if lowBins <= highBins {
		t.Errorf("200Hz low-bin energy %f should exceed 4kHz low-bin energy %f", lowBins, highBins)
	}
}

func TestPowerToDBPeakIsZero(t *testing.T) {
	power := [][]float64{{1e-4, 1e-2, 1.0}, {1e-6, 1e-3, 0.5}}
	db := PowerToDB(power)

	maxDB := math.Inf(-1)
	for _, row := range db {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite dB value %f", v)
			}
			if v > maxDB {
				maxDB = v
			}
		}
	}
	if math.Abs(maxDB) > 1e-9 {
		t.Errorf("peak dB = %f, want 0 (relative to max)", maxDB)
	}
	if db[0][0] != -40 {
		t.Errorf("1e-4 relative to 1.0 should be -40 dB, got %f", db[0][0])
	}
}

func TestStats(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := Mean(data); got != 5 {
		t.Errorf("Mean = %f, want 5", got)
	}
	if got := StdDev(data); math.Abs(got-2) > 1e-12 {
		t.Errorf("StdDev = %f, want 2", got)
	}
	if got := Median(data); got != 4.5 {
		t.Errorf("Median = %f, want 4.5", got)
	}
	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("odd Median = %f, want 2", got)
	}

	// Empty inputs all degrade to 0.
	if Mean(nil) != 0 || Median(nil) != 0 || StdDev(nil) != 0 || Variance(nil) != 0 {
		t.Error("empty input should yield 0 statistics")
	}
}

func TestPercentile(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(99 - i) // descending 99..0
	}
	if got := Percentile(data, 10); got != 10 {
		t.Errorf("Percentile(10) = %f, want 10", got)
	}
	if got := Percentile(data, 0); got != 0 {
		t.Errorf("Percentile(0) = %f, want 0", got)
	}
	if got := Percentile(data, 100); got != 99 {
		t.Errorf("Percentile(100) = %f, want 99", got)
	}
}

func TestDiff(t *testing.T) {
	got := Diff([]float64{1, 3, 6, 10})
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Diff length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Diff[%d] = %f, want %f", i, got[i], want[i])
		}
	}
	if Diff([]float64{1}) != nil {
		t.Error("Diff of single element should be nil")
	}
}

func TestGradient(t *testing.T) {
	got := Gradient([]float64{1, 2, 4, 8})
	want := []float64{1, 1.5, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Gradient length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Gradient[%d] = %f, want %f", i, got[i], want[i])
		}
	}
	if g := Gradient([]float64{7}); len(g) != 1 || g[0] != 0 {
		t.Errorf("single-element gradient = %v, want [0]", g)
	}
}

func TestHistogramEntropy(t *testing.T) {
	// Constant data has zero entropy.
	if got := HistogramEntropy([]float64{5, 5, 5, 5}, 50); got != 0 {
		t.Errorf("constant entropy = %f, want 0", got)
	}

	// Uniform data across bins approaches log(bins).
	uniform := make([]float64, 5000)
	for i := range uniform {
		uniform[i] = float64(i % 50)
	}
	got := HistogramEntropy(uniform, 50)
	want := math.Log(50)
	if math.Abs(got-want) > 0.1 {
		t.Errorf("uniform entropy = %f, want ~%f", got, want)
	}
}

func TestCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	if got := Correlation(a, b); math.Abs(got-1) > 1e-12 {
		t.Errorf("perfect positive correlation = %f, want 1", got)
	}
	inv := []float64{10, 8, 6, 4, 2}
	if got := Correlation(a, inv); math.Abs(got+1) > 1e-12 {
		t.Errorf("perfect negative correlation = %f, want -1", got)
	}
	if got := Correlation(a, []float64{3, 3, 3, 3, 3}); got != 0 {
		t.Errorf("constant series correlation = %f, want 0", got)
	}
}

func TestSkewnessKurtosis(t *testing.T) {
	// Symmetric data has ~0 skewness.
	sym := []float64{-2, -1, 0, 1, 2}
	if got := Skewness(sym); math.Abs(got) > 1e-12 {
		t.Errorf("symmetric skewness = %f, want 0", got)
	}
	// Right-skewed data has positive skewness.
	skewed := []float64{1, 1, 1, 1, 100}
	if got := Skewness(skewed); got <= 0 {
		t.Errorf("right-skewed skewness = %f, want > 0", got)
	}
	// Constant data degrades to 0 for both.
	if Skewness([]float64{3, 3, 3}) != 0 || Kurtosis([]float64{3, 3, 3}) != 0 {
		t.Error("constant input should yield 0 skewness and kurtosis")
	}
}

func TestResampleHalvesLength(t *testing.T) {
	const (
		srcRate = 32000
		dstRate = 16000
	)
	in := makeSine(440, srcRate, srcRate, 0.5) // 1 second
	out, err := Resample(in, srcRate, dstRate)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}

	// Output should be roughly half the input length (filter edges may
	// trim a few samples).
	ratio := float64(len(out)) / float64(len(in))
	if ratio < 0.4 || ratio > 0.6 {
		t.Errorf("length ratio = %f, want ~0.5 (in=%d out=%d)", ratio, len(in), len(out))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d: non-finite value %f", i, v)
		}
	}
}

func TestResampleSameRate(t *testing.T) {
	in := makeSine(440, 1600, 16000, 0.5)
	out, err := Resample(in, 16000, 16000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) != len(in) {
		t.Errorf("same-rate resample changed length: %d -> %d", len(in), len(out))
	}
}

func BenchmarkSTFT(b *testing.B) {
	samples := makeSine(440, 16000*5, 16000, 0.8) // 5 seconds
	window := HannWindow(2048)
	b.ResetTimer()
	for range b.N {
		STFT(samples, 2048, 512, window)
	}
}
