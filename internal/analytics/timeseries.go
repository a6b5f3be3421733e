package analytics

import (
	"sort"
	"time"

	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
)

// TimeSeriesEngine aggregates transactions into a daily revenue series and
// derives moving averages, growth rates and an additive decomposition.
type TimeSeriesEngine struct {
	ShortWindow int
	LongWindow  int
	Period      int
}

func NewTimeSeriesEngine(shortWindow, longWindow, period int) *TimeSeriesEngine {
	return &TimeSeriesEngine{
		ShortWindow: shortWindow,
		LongWindow:  longWindow,
		Period:      period,
	}
}

// dailyRevenue sums revenue per calendar day and returns the series in date
// order. Shared with the forecast engine, which aggregates independently.
func dailyRevenue(ds *dataset.Dataset) ([]time.Time, []float64) {
	totals := make(map[time.Time]float64)
	for _, tx := range ds.Transactions {
		day := tx.Timestamp.Truncate(24 * time.Hour)
		totals[day] += tx.Revenue
	}

	dates := make([]time.Time, 0, len(totals))
	for day := range totals {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([]float64, len(dates))
	for i, day := range dates {
		values[i] = totals[day]
	}
	return dates, values
}

// Analyze builds the daily series with both moving averages and the growth
// rate, and attaches the decomposition when the series is long enough. A
// series too short to decompose is not an error; the decomposition is simply
// absent.
func (e *TimeSeriesEngine) Analyze(ds *dataset.Dataset) (*domain.TimeSeriesResult, error) {
	dates, values := dailyRevenue(ds)

	points := make([]domain.SeriesPoint, len(dates))
	for i := range dates {
		points[i] = domain.SeriesPoint{
			Date:      dates[i],
			Revenue:   values[i],
			ShortMA:   trailingMean(values, i, e.ShortWindow),
			LongMA:    trailingMean(values, i, e.LongWindow),
			GrowthPct: growthRate(values, i),
		}
	}

	result := &domain.TimeSeriesResult{
		Points:        points,
		Decomposition: decompose(values, e.Period),
		Heatmap:       revenueHeatmap(ds),
	}
	return result, nil
}

// trailingMean returns the mean of the window ending at index i, or nil while
// the window has not filled. Nil is "no value", never zero.
func trailingMean(values []float64, i, window int) *float64 {
	if window <= 0 || i < window-1 {
		return nil
	}
	var sum float64
	for j := i - window + 1; j <= i; j++ {
		sum += values[j]
	}
	mean := sum / float64(window)
	return &mean
}

// growthRate returns the percent change against the previous point. The first
// point has no previous period; a zero previous value yields a guarded 0
// instead of an arithmetic fault.
func growthRate(values []float64, i int) *float64 {
	if i == 0 {
		return nil
	}
	prev := values[i-1]
	var pct float64
	if prev != 0 {
		pct = (values[i] - prev) / prev * 100
	}
	return &pct
}

// decompose performs classical additive decomposition with the given
// periodicity. It needs at least two full periods; on shorter series it
// returns nil rather than an error, decomposition being a soft feature.
func decompose(values []float64, period int) *domain.Decomposition {
	n := len(values)
	if period < 2 || n < 2*period {
		return nil
	}

	trend := centeredMovingAverage(values, period)

	// Seasonal component: mean of detrended values per period phase,
	// recentred so the component sums to zero over one period.
	phaseSums := make([]float64, period)
	phaseCounts := make([]int, period)
	for i, t := range trend {
		if t == nil {
			continue
		}
		phase := i % period
		phaseSums[phase] += values[i] - *t
		phaseCounts[phase]++
	}

	phaseMeans := make([]float64, period)
	var total float64
	for p := 0; p < period; p++ {
		if phaseCounts[p] > 0 {
			phaseMeans[p] = phaseSums[p] / float64(phaseCounts[p])
		}
		total += phaseMeans[p]
	}
	center := total / float64(period)

	seasonal := make([]float64, n)
	residual := make([]*float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = phaseMeans[i%period] - center
		if trend[i] != nil {
			r := values[i] - *trend[i] - seasonal[i]
			residual[i] = &r
		}
	}

	return &domain.Decomposition{
		Period:   period,
		Seasonal: seasonal,
		Trend:    trend,
		Residual: residual,
	}
}

// centeredMovingAverage computes the trend estimate. Even periods use the
// standard 2xMA weighting (half weight on both window ends); entries whose
// centered window runs off the series are nil.
func centeredMovingAverage(values []float64, period int) []*float64 {
	n := len(values)
	out := make([]*float64, n)
	half := period / 2

	for i := range values {
		if period%2 == 1 {
			if i < half || i+half >= n {
				continue
			}
			var sum float64
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
			v := sum / float64(period)
			out[i] = &v
			continue
		}

		if i < half || i+half >= n {
			continue
		}
		sum := 0.5*values[i-half] + 0.5*values[i+half]
		for j := i - half + 1; j <= i+half-1; j++ {
			sum += values[j]
		}
		v := sum / float64(period)
		out[i] = &v
	}
	return out
}

// revenueHeatmap pivots raw transactions into an hour-by-date revenue matrix.
func revenueHeatmap(ds *dataset.Dataset) *domain.RevenueHeatmap {
	if ds.Empty() {
		return nil
	}

	type cell struct {
		date string
		hour int
	}
	totals := make(map[cell]float64)
	dateSet := make(map[string]struct{})
	hourSet := make(map[int]struct{})
	for _, tx := range ds.Transactions {
		c := cell{date: tx.Timestamp.Format("2006-01-02"), hour: tx.Timestamp.Hour()}
		totals[c] += tx.Revenue
		dateSet[c.date] = struct{}{}
		hourSet[c.hour] = struct{}{}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	hours := make([]int, 0, len(hourSet))
	for h := range hourSet {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	matrix := make([][]float64, len(hours))
	for i, h := range hours {
		matrix[i] = make([]float64, len(dates))
		for j, d := range dates {
			matrix[i][j] = totals[cell{date: d, hour: h}]
		}
	}

	return &domain.RevenueHeatmap{Dates: dates, Hours: hours, Values: matrix}
}
