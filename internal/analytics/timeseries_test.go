package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesight/backend-go/internal/dataset"
)

func TestTimeSeriesMovingAverages(t *testing.T) {
	ds := dailySales(t, 10, func(i int) float64 { return float64(i + 1) })

	result, err := NewTimeSeriesEngine(7, 30, 30).Analyze(ds)
	require.NoError(t, err)
	require.Len(t, result.Points, 10)

	// The short window leaves the first window-1 points undefined, never zero.
	for i := 0; i < 6; i++ {
		assert.Nil(t, result.Points[i].ShortMA, "point %d", i)
	}
	for i := 6; i < 10; i++ {
		require.NotNil(t, result.Points[i].ShortMA, "point %d", i)
	}
	// mean(1..7) = 4, mean(4..10) = 7.
	assert.InDelta(t, 4, *result.Points[6].ShortMA, 1e-9)
	assert.InDelta(t, 7, *result.Points[9].ShortMA, 1e-9)

	// The long window never fills on a 10-day series.
	for _, p := range result.Points {
		assert.Nil(t, p.LongMA)
	}
}

func TestTimeSeriesGrowthRate(t *testing.T) {
	ds := dailySales(t, 4, func(i int) float64 { return []float64{100, 150, 0, 30}[i] })

	result, err := NewTimeSeriesEngine(7, 30, 30).Analyze(ds)
	require.NoError(t, err)

	points := result.Points
	assert.Nil(t, points[0].GrowthPct, "first point has no previous period")
	assert.InDelta(t, 50, *points[1].GrowthPct, 1e-9)
	assert.InDelta(t, -100, *points[2].GrowthPct, 1e-9)
	// Growth from a zero base is reported as 0, not infinity.
	assert.InDelta(t, 0, *points[3].GrowthPct, 1e-9)
}

func TestTimeSeriesFlatGrowthIsZero(t *testing.T) {
	ds := dailySales(t, 40, func(int) float64 { return 250 })

	result, err := NewTimeSeriesEngine(7, 30, 30).Analyze(ds)
	require.NoError(t, err)

	for i, p := range result.Points[1:] {
		require.NotNil(t, p.GrowthPct, "point %d", i+1)
		assert.InDelta(t, 0, *p.GrowthPct, 1e-9)
	}
}

// A table with an unparseable date loses that row at build time; the series
// must start at the first real date, never at the zero time.
func TestTimeSeriesExcludesUnparseableDates(t *testing.T) {
	ds, err := dataset.Build(&dataset.Table{
		Header: []string{"timestamp", "product_id", "quantity", "revenue"},
		Rows: [][]string{
			{"not-a-date", "P1", "1", "100"},
			{"2024-01-02", "P1", "1", "200"},
			{"2024-01-03", "P1", "1", "300"},
		},
	})
	var dateErr *dataset.DateParseError
	require.ErrorAs(t, err, &dateErr)
	require.NotNil(t, ds)

	result, err := NewTimeSeriesEngine(7, 30, 30).Analyze(ds)
	require.NoError(t, err)
	require.Len(t, result.Points, 2)
	assert.Equal(t, day("2024-01-02"), result.Points[0].Date)
	assert.InDelta(t, 200, result.Points[0].Revenue, 1e-9)
}

func TestDecompositionSkippedOnShortSeries(t *testing.T) {
	// 59 days is one short of the two full 30-day periods required.
	ds := dailySales(t, 59, func(i int) float64 { return float64(i) })

	result, err := NewTimeSeriesEngine(7, 30, 30).Analyze(ds)
	require.NoError(t, err)
	assert.Nil(t, result.Decomposition)
}

func TestDecompositionWeeklyPattern(t *testing.T) {
	pattern := []float64{0, 10, 20, 70, 40, 50, 60}
	ds := dailySales(t, 28, func(i int) float64 { return 1000 + pattern[i%7] })

	result, err := NewTimeSeriesEngine(7, 30, 7).Analyze(ds)
	require.NoError(t, err)

	dec := result.Decomposition
	require.NotNil(t, dec)
	assert.Equal(t, 7, dec.Period)
	require.Len(t, dec.Seasonal, 28)
	require.Len(t, dec.Trend, 28)
	require.Len(t, dec.Residual, 28)

	// The seasonal component repeats with the period and sums to ~0 over it.
	var sum float64
	for p := 0; p < 7; p++ {
		assert.InDelta(t, dec.Seasonal[p], dec.Seasonal[p+7], 1e-9)
		sum += dec.Seasonal[p]
	}
	assert.InDelta(t, 0, sum, 1e-9)

	// The centered window runs off both series ends.
	half := 7 / 2
	for i := 0; i < half; i++ {
		assert.Nil(t, dec.Trend[i])
		assert.Nil(t, dec.Trend[27-i])
		assert.Nil(t, dec.Residual[i])
	}
	require.NotNil(t, dec.Trend[half])

	// With a constant level plus a pure weekly pattern, the interior trend is
	// the level and the residuals vanish.
	for i := half; i < 28-half; i++ {
		require.NotNil(t, dec.Trend[i])
		assert.InDelta(t, 1000+250.0/7, *dec.Trend[i], 1e-9)
		require.NotNil(t, dec.Residual[i])
		assert.InDelta(t, 0, *dec.Residual[i], 1e-9)
	}
}

func TestRevenueHeatmap(t *testing.T) {
	header := []string{"timestamp", "product_id", "quantity", "revenue"}
	rows := [][]string{
		{"2024-01-01 09:00:00", "P1", "1", "10"},
		{"2024-01-01 09:30:00", "P1", "1", "5"},
		{"2024-01-01 17:00:00", "P1", "1", "20"},
		{"2024-01-02 09:15:00", "P1", "1", "7"},
	}
	ds := buildDataset(t, header, rows)

	result, err := NewTimeSeriesEngine(7, 30, 30).Analyze(ds)
	require.NoError(t, err)

	hm := result.Heatmap
	require.NotNil(t, hm)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, hm.Dates)
	assert.Equal(t, []int{9, 17}, hm.Hours)

	// Values[hour][date]; same-cell transactions accumulate.
	assert.InDelta(t, 15, hm.Values[0][0], 1e-9)
	assert.InDelta(t, 7, hm.Values[0][1], 1e-9)
	assert.InDelta(t, 20, hm.Values[1][0], 1e-9)
	assert.InDelta(t, 0, hm.Values[1][1], 1e-9)
}
