package dsp

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Median returns the middle value (mean of the two middle values for even
// lengths), 0 for empty input.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Variance returns the population variance, 0 for empty input.
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := Mean(data)
	var sum float64
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(data))
}

// StdDev returns the population standard deviation, 0 for empty input.
func StdDev(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// Percentile returns the value at the given percentile (0-100) of the data.
func Percentile(data []float64, pct int) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	// Partial sort: find the idx-th smallest
	for i := 0; i <= idx; i++ {
		minIdx := i
		for j := i + 1; j < n; j++ {
			if sorted[j] < sorted[minIdx] {
				minIdx = j
			}
		}
		sorted[i], sorted[minIdx] = sorted[minIdx], sorted[i]
	}
	return sorted[idx]
}

// Diff returns the first difference data[i+1]-data[i].
// The result is one element shorter than the input; nil for inputs with
// fewer than two elements.
func Diff(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	out := make([]float64, len(data)-1)
	for i := range out {
		out[i] = data[i+1] - data[i]
	}
	return out
}

// Gradient returns the unit-step numerical gradient: central differences
// in the interior, one-sided differences at the edges. Same length as the
// input; a single element yields a zero gradient.
func Gradient(data []float64) []float64 {
	n := len(data)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = data[1] - data[0]
	out[n-1] = data[n-1] - data[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (data[i+1] - data[i-1]) / 2
	}
	return out
}

// MeanAbs returns the mean of absolute values, 0 for empty input.
func MeanAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += math.Abs(v)
	}
	return sum / float64(len(data))
}

// HistogramEntropy returns the Shannon entropy (natural log) of a bins-bin
// histogram of the data. Returns 0 for empty or constant input.
func HistogramEntropy(data []float64, bins int) float64 {
	if len(data) == 0 || bins <= 0 {
		return 0
	}
	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return 0
	}

	counts := make([]float64, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range data {
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}

	total := float64(len(data))
	var entropy float64
	for _, c := range counts {
		if c > 0 {
			p := c / total
			entropy -= p * math.Log(p)
		}
	}
	return entropy
}

// Correlation returns the Pearson correlation coefficient of a and b,
// 0 when either side is constant or the lengths differ.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}
	meanA, meanB := Mean(a), Mean(b)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// Skewness returns the sample skewness, 0 for constant or empty input.
func Skewness(data []float64) float64 {
	n := float64(len(data))
	if n == 0 {
		return 0
	}
	mean := Mean(data)
	var m2, m3 float64
	for _, v := range data {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}

// Kurtosis returns the excess kurtosis (normal distribution -> 0),
// 0 for constant or empty input.
func Kurtosis(data []float64) float64 {
	n := float64(len(data))
	if n == 0 {
		return 0
	}
	mean := Mean(data)
	var m2, m4 float64
	for _, v := range data {
		d := v - mean
		d2 := d * d
		m2 += d2
		m4 += d2 * d2
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0
	}
	return m4/(m2*m2) - 3.0
}
