package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// percentile returns the p-th percentile (0-100) of values using linear
// interpolation between closest ranks. gonum's Quantile cumulant kinds
// interpolate the empirical CDF differently, so this one is computed directly.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// percentiles evaluates several percentile levels over one sorted copy.
func percentiles(values []float64, levels ...float64) []float64 {
	out := make([]float64, len(levels))
	for i, p := range levels {
		out[i] = percentile(values, p)
	}
	return out
}

// meanStd returns the mean and sample standard deviation. A single
// observation has zero deviation, not NaN.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := stat.Mean(values, nil)
	if len(values) < 2 {
		return mean, 0
	}
	return mean, stat.StdDev(values, nil)
}

// variance returns the population variance of values, 0 for short input.
func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := stat.Mean(values, nil)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(values))
}
