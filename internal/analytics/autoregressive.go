package analytics

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/salesight/backend-go/internal/domain"
)

// AutoAR is the auto-selected autoregressive model. It decides seasonal
// differencing at the weekly period by a variance-reduction check, then picks
// the AR order by AIC over conditional least-squares fits. Predictions are
// point values for exactly the horizon, no bounds.
type AutoAR struct {
	maxOrder       int
	seasonalPeriod int

	lastDate  time.Time
	history   []float64 // original series, needed to invert differencing
	work      []float64 // de-meaned working series
	mean      float64
	coeffs    []float64
	order     int
	seasonalD bool
	flat      bool
	flatValue float64
}

func NewAutoAR(maxOrder, seasonalPeriod int) *AutoAR {
	if maxOrder <= 0 {
		maxOrder = 10
	}
	if seasonalPeriod <= 0 {
		seasonalPeriod = 7
	}
	return &AutoAR{maxOrder: maxOrder, seasonalPeriod: seasonalPeriod}
}

func (m *AutoAR) Name() string { return "auto_autoregressive" }

// Fit selects differencing and order on the given series. A constant series
// short-circuits to a flat forecast: the only correct prediction for it. Very
// short series degrade to a mean forecast rather than failing.
func (m *AutoAR) Fit(dates []time.Time, values []float64) error {
	n := len(values)
	if n < 3 {
		return fmt.Errorf("%w: need at least 3 points, got %d", ErrInsufficientData, n)
	}

	m.lastDate = dates[len(dates)-1]
	m.history = values
	m.coeffs = nil
	m.flat = false
	m.seasonalD = false

	if variance(values) == 0 {
		m.flat = true
		m.flatValue = values[0]
		return nil
	}

	work := values
	// Seasonal differencing at the weekly period when it stabilises the
	// series (variance-reduction stand-in for a formal seasonal unit-root
	// test).
	if n > 2*m.seasonalPeriod {
		diffed := seasonalDifference(values, m.seasonalPeriod)
		if variance(diffed) < variance(values) {
			work = diffed
			m.seasonalD = true
		}
	}

	m.mean = 0
	for _, v := range work {
		m.mean += v
	}
	m.mean /= float64(len(work))

	m.work = make([]float64, len(work))
	for i, v := range work {
		m.work[i] = v - m.mean
	}

	maxP := m.maxOrder
	if limit := (len(m.work) - 1) / 2; limit < maxP {
		maxP = limit
	}
	if maxP < 1 {
		// Too short for any lag structure; fall back to the mean level.
		m.order = 0
		return nil
	}

	bestAIC := math.Inf(1)
	for p := 1; p <= maxP; p++ {
		coeffs, rss, ok := fitAR(m.work, p)
		if !ok {
			continue
		}
		nEff := float64(len(m.work) - p)
		aic := nEff*math.Log(rss/nEff+1e-12) + 2*float64(p+1)
		if aic < bestAIC {
			bestAIC = aic
			m.coeffs = coeffs
			m.order = p
		}
	}
	if m.coeffs == nil && m.order != 0 {
		return fmt.Errorf("no autoregressive order could be fitted")
	}

	return nil
}

// Predict produces exactly horizon point predictions for the days following
// the last observed date.
func (m *AutoAR) Predict(horizon int) ([]domain.IntervalPoint, error) {
	if m.history == nil {
		return nil, fmt.Errorf("model not fitted")
	}

	out := make([]domain.IntervalPoint, 0, horizon)
	emit := func(h int, v float64) {
		d := m.lastDate.AddDate(0, 0, h)
		out = append(out, domain.IntervalPoint{Date: d, Value: v, Lower: v, Upper: v})
	}

	if m.flat {
		for h := 1; h <= horizon; h++ {
			emit(h, m.flatValue)
		}
		return out, nil
	}

	// Recursive forecast on the working series.
	buf := make([]float64, len(m.work), len(m.work)+horizon)
	copy(buf, m.work)
	for h := 0; h < horizon; h++ {
		var next float64
		for lag := 1; lag <= m.order; lag++ {
			next += m.coeffs[lag-1] * buf[len(buf)-lag]
		}
		buf = append(buf, next)
	}

	forecasts := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		forecasts[h] = buf[len(m.work)+h] + m.mean
	}

	if m.seasonalD {
		forecasts = invertSeasonalDifference(forecasts, m.history, m.seasonalPeriod)
	}

	for h := 1; h <= horizon; h++ {
		emit(h, forecasts[h-1])
	}
	return out, nil
}

// seasonalDifference returns x[t] - x[t-period].
func seasonalDifference(values []float64, period int) []float64 {
	out := make([]float64, 0, len(values)-period)
	for i := period; i < len(values); i++ {
		out = append(out, values[i]-values[i-period])
	}
	return out
}

// invertSeasonalDifference reconstructs level forecasts from forecasted
// seasonal differences using the tail of the original series.
func invertSeasonalDifference(diffs, history []float64, period int) []float64 {
	out := make([]float64, len(diffs))
	n := len(history)
	for i := range diffs {
		if i < period {
			out[i] = diffs[i] + history[n-period+i]
		} else {
			out[i] = diffs[i] + out[i-period]
		}
	}
	return out
}

// fitAR fits AR(p) by conditional least squares and returns the lag
// coefficients and residual sum of squares.
func fitAR(series []float64, p int) ([]float64, float64, bool) {
	n := len(series) - p
	if n < p+1 {
		return nil, 0, false
	}

	A := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		t := p + i
		y.SetVec(i, series[t])
		for lag := 1; lag <= p; lag++ {
			A.Set(i, lag-1, series[t-lag])
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(A, y); err != nil {
		return nil, 0, false
	}

	coeffs := make([]float64, p)
	for j := 0; j < p; j++ {
		coeffs[j] = beta.AtVec(j)
	}

	var rss float64
	for i := 0; i < n; i++ {
		t := p + i
		var pred float64
		for lag := 1; lag <= p; lag++ {
			pred += coeffs[lag-1] * series[t-lag]
		}
		r := series[t] - pred
		rss += r * r
	}
	return coeffs, rss, true
}
