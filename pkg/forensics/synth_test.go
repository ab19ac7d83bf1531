package forensics

import (
	"math"
	"math/rand"
)

// Test-signal construction. Steady fixtures are built on a 31.25 Hz
// frequency comb (one cycle per 512-sample hop at 16 kHz) so their STFT
// phase advances a whole number of turns per frame.

const testRate = 16000

func sine(freq float64, n, rate int, amp float64) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freq / float64(rate)
	for i := range out {
		out[i] = amp * math.Sin(w*float64(i))
	}
	return out
}

// impulseTrain emits a unit impulse every rate/f0 samples.
func impulseTrain(f0 float64, n, rate int) []float64 {
	out := make([]float64, n)
	period := float64(rate) / f0
	next := 0.0
	for i := 0; i < n; i++ {
		if float64(i) >= next {
			out[i] = 1
			next += period
		}
	}
	return out
}

// resonate runs x through a two-pole resonator centered at f with the
// given bandwidth, both in Hz.
func resonate(x []float64, f, bandwidth float64, rate int) []float64 {
	r := math.Exp(-math.Pi * bandwidth / float64(rate))
	c := 2 * r * math.Cos(2*math.Pi*f/float64(rate))
	r2 := r * r
	out := make([]float64, len(x))
	var y1, y2 float64
	for i, v := range x {
		y := v + c*y1 - r2*y2
		out[i] = y
		y2, y1 = y1, y
	}
	return out
}

func normalize(x []float64) {
	var peak float64
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range x {
			x[i] /= peak
		}
	}
}

// gateSyllables zeroes 100 ms out of every 500 ms, giving the fixture
// speech-like onsets.
func gateSyllables(x []float64, rate int) {
	onLen := int(0.4 * float64(rate))
	cycle := onLen + int(0.1*float64(rate))
	for i := range x {
		if i%cycle >= onLen {
			x[i] = 0
		}
	}
}

// modulatedComb returns background texture: random-amplitude partials on
// the 31.25 Hz comb, slowly amplitude-modulated so the noise floor
// wanders the way a natural recording does.
func modulatedComb(n, rate int, amp float64) []float64 {
	rng := rand.New(rand.NewSource(7))
	nyquist := rate / 2
	type partial struct{ w, a, ph float64 }
	var partials []partial
	for m := 2; float64(m)*31.25 < float64(nyquist); m++ {
		partials = append(partials, partial{
			w:  2 * math.Pi * float64(m) * 31.25 / float64(rate),
			a:  0.5 + 0.5*rng.Float64(),
			ph: 2 * math.Pi * rng.Float64(),
		})
	}
	out := make([]float64, n)
	for i := range out {
		var v float64
		for _, p := range partials {
			v += p.a * math.Sin(p.w*float64(i)+p.ph)
		}
		mod := 0.6 + 0.4*math.Sin(2*math.Pi*0.5*float64(i)/float64(rate))
		out[i] = v * mod
	}
	// Scale so the comb sits well under a unit-peak voice.
	var peak float64
	for _, v := range out {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range out {
			out[i] *= amp / peak
		}
	}
	return out
}

// synthVoice builds a vowel-like clip at testRate: an impulse train at f0
// shaped by three vocal-tract resonators, gated into syllables, over a
// wandering comb background. f0 must sit on the 31.25 Hz comb.
func synthVoice(f0 float64, formants [3]float64, seconds float64) []float64 {
	n := int(seconds * testRate)
	voice := impulseTrain(f0, n, testRate)
	for _, f := range formants {
		voice = resonate(voice, f, 90, testRate)
	}
	normalize(voice)
	gateSyllables(voice, testRate)

	comb := modulatedComb(n, testRate, 0.02)
	out := make([]float64, n)
	for i := range out {
		out[i] = voice[i] + comb[i]
	}
	return out
}
