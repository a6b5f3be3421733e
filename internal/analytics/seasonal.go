package analytics

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/salesight/backend-go/internal/domain"
)

// SeasonalOptions enables the additive seasonal components. IntervalZ is the
// z-value for the uncertainty bounds (1.96 for a 95% interval).
type SeasonalOptions struct {
	Yearly    bool
	Weekly    bool
	Daily     bool
	IntervalZ float64
}

// SeasonalRegression is the additive seasonal-regression model: a linear
// trend plus Fourier terms for the enabled seasonalities, fitted by ordinary
// least squares. It predicts over the full history plus the horizon, with
// residual-based uncertainty bounds on every point.
type SeasonalRegression struct {
	opts SeasonalOptions

	dates   []time.Time
	beta    []float64
	columns []featureColumn
	residSD float64
}

// featureColumn evaluates one design-matrix column at day offset t.
type featureColumn func(t float64) float64

// seasonalBlock describes one seasonality as a Fourier expansion.
type seasonalBlock struct {
	name   string
	period float64
	order  int
}

func NewSeasonalRegression(opts SeasonalOptions) *SeasonalRegression {
	if opts.IntervalZ <= 0 {
		opts.IntervalZ = 1.96
	}
	return &SeasonalRegression{opts: opts}
}

func (m *SeasonalRegression) Name() string { return "seasonal_regression" }

// Fit builds the design matrix and solves the least-squares problem. A block
// is only admitted when the series spans its period and leaves enough rows
// for the added columns; Fourier terms that collapse to constants on daily
// sampling (the daily component) are filtered out by the zero-variance check,
// so enabling them is harmless.
func (m *SeasonalRegression) Fit(dates []time.Time, values []float64) error {
	n := len(values)
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrInsufficientData, n)
	}

	m.dates = dates
	t := dayOffsets(dates)
	spanDays := t[n-1] - t[0]

	columns := []featureColumn{
		func(float64) float64 { return 1 },
		func(x float64) float64 { return x },
	}

	blocks := []seasonalBlock{}
	if m.opts.Weekly {
		blocks = append(blocks, seasonalBlock{name: "weekly", period: 7, order: 3})
	}
	if m.opts.Yearly {
		blocks = append(blocks, seasonalBlock{name: "yearly", period: 365.25, order: 3})
	}
	if m.opts.Daily {
		blocks = append(blocks, seasonalBlock{name: "daily", period: 1, order: 2})
	}

	for _, b := range blocks {
		added := len(columns) + 2*b.order
		if spanDays < b.period || n < added+2 {
			continue
		}
		columns = append(columns, fourierColumns(b.period, b.order)...)
	}

	columns = dropConstantColumns(columns, t)

	A := mat.NewDense(n, len(columns), nil)
	for i := 0; i < n; i++ {
		for j, col := range columns {
			A.Set(i, j, col(t[i]))
		}
	}
	y := mat.NewVecDense(n, values)

	var beta mat.VecDense
	if err := beta.SolveVec(A, y); err != nil {
		return fmt.Errorf("least squares solve: %w", err)
	}

	m.columns = columns
	m.beta = make([]float64, len(columns))
	for j := range m.beta {
		m.beta[j] = beta.AtVec(j)
	}

	// Residual standard deviation drives the uncertainty bounds.
	var rss float64
	for i := 0; i < n; i++ {
		r := values[i] - m.evaluate(t[i])
		rss += r * r
	}
	dof := n - len(columns)
	if dof > 0 {
		m.residSD = math.Sqrt(rss / float64(dof))
	}

	return nil
}

// Predict returns fitted values with bounds for every historical date plus
// horizon future days.
func (m *SeasonalRegression) Predict(horizon int) ([]domain.IntervalPoint, error) {
	if m.beta == nil {
		return nil, fmt.Errorf("model not fitted")
	}

	n := len(m.dates)
	t := dayOffsets(m.dates)
	last := m.dates[n-1]

	out := make([]domain.IntervalPoint, 0, n+horizon)
	for i := 0; i < n; i++ {
		out = append(out, m.point(m.dates[i], t[i]))
	}
	for h := 1; h <= horizon; h++ {
		out = append(out, m.point(last.AddDate(0, 0, h), t[n-1]+float64(h)))
	}
	return out, nil
}

func (m *SeasonalRegression) point(date time.Time, t float64) domain.IntervalPoint {
	v := m.evaluate(t)
	margin := m.opts.IntervalZ * m.residSD
	return domain.IntervalPoint{
		Date:  date,
		Value: v,
		Lower: v - margin,
		Upper: v + margin,
	}
}

func (m *SeasonalRegression) evaluate(t float64) float64 {
	var sum float64
	for j, col := range m.columns {
		sum += m.beta[j] * col(t)
	}
	return sum
}

// dayOffsets converts dates into float day offsets from the first date.
func dayOffsets(dates []time.Time) []float64 {
	out := make([]float64, len(dates))
	for i, d := range dates {
		out[i] = d.Sub(dates[0]).Hours() / 24
	}
	return out
}

// fourierColumns expands one seasonality into paired sin/cos columns.
func fourierColumns(period float64, order int) []featureColumn {
	cols := make([]featureColumn, 0, 2*order)
	for k := 1; k <= order; k++ {
		freq := 2 * math.Pi * float64(k) / period
		cols = append(cols,
			func(t float64) float64 { return math.Sin(freq * t) },
			func(t float64) float64 { return math.Cos(freq * t) },
		)
	}
	return cols
}

// dropConstantColumns removes columns with no variance over the sample
// (except the intercept), which would otherwise make the system singular.
func dropConstantColumns(columns []featureColumn, t []float64) []featureColumn {
	kept := make([]featureColumn, 0, len(columns))
	kept = append(kept, columns[0])
	for _, col := range columns[1:] {
		first := col(t[0])
		constant := true
		for _, x := range t[1:] {
			if math.Abs(col(x)-first) > 1e-12 {
				constant = false
				break
			}
		}
		if !constant {
			kept = append(kept, col)
		}
	}
	return kept
}
