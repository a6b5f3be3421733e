package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileLinearInterpolation(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	// Positions interpolate between closest ranks.
	assert.InDelta(t, 18, percentile(values, 20), 1e-9)
	assert.InDelta(t, 26, percentile(values, 40), 1e-9)
	assert.InDelta(t, 30, percentile(values, 50), 1e-9)
	assert.InDelta(t, 42, percentile(values, 80), 1e-9)

	assert.InDelta(t, 10, percentile(values, 0), 1e-9)
	assert.InDelta(t, 50, percentile(values, 100), 1e-9)
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	percentile(values, 50)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentileEmpty(t *testing.T) {
	assert.True(t, math.IsNaN(percentile(nil, 50)))
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, mean, 1e-9)
	assert.InDelta(t, 2.138, std, 1e-3) // sample deviation

	mean, std = meanStd([]float64{42})
	assert.InDelta(t, 42, mean, 1e-9)
	assert.Equal(t, 0.0, std)

	mean, std = meanStd(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)
}

func TestVariance(t *testing.T) {
	assert.InDelta(t, 2, variance([]float64{1, 2, 3, 4, 5}), 1e-9)
	assert.Equal(t, 0.0, variance([]float64{7}))
	assert.Equal(t, 0.0, variance([]float64{3, 3, 3}))
}
