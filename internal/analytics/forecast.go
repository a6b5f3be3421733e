package analytics

import (
	"fmt"
	"time"

	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
)

// Forecaster is the capability both demand models implement. Fit learns from
// the daily series; Predict produces dated predictions for the model's own
// output range. Bounds are optional: models without uncertainty estimates
// set Lower == Upper == Value.
//
// Adding a third model means implementing this interface and registering it
// in the engine, nothing else.
type Forecaster interface {
	Name() string
	Fit(dates []time.Time, values []float64) error
	Predict(horizon int) ([]domain.IntervalPoint, error)
}

// ForecastEngine runs both models over the same daily-aggregated revenue
// series. The models are independent by design; their disagreement is signal
// for the reader, not an error to reconcile.
//
// The engine itself carries only configuration. The models hold fit state,
// so each call builds its own instances; one engine is safe to share across
// concurrent requests.
type ForecastEngine struct {
	cfg ForecastConfig
}

// ForecastConfig collects the engine parameters. Everything is an explicit
// parameter; the engine keeps no state between invocations.
type ForecastConfig struct {
	MaxAutoregOrder      int
	WeeklySeasonalPeriod int
	IntervalZ            float64
}

func NewForecastEngine(cfg ForecastConfig) *ForecastEngine {
	return &ForecastEngine{cfg: cfg}
}

// Forecast aggregates the dataset into a daily series and runs both models
// over it for the given horizon.
//
// A model's fit failure is fatal only to that model: the bundle records the
// attributable error and carries the other model's output. Only an empty
// series or a non-positive horizon fails the whole call.
func (e *ForecastEngine) Forecast(ds *dataset.Dataset, horizon int) (*domain.ForecastBundle, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", horizon)
	}

	dates, values := dailyRevenue(ds)
	if len(dates) == 0 {
		return nil, fmt.Errorf("forecast: %w: empty series", ErrInsufficientData)
	}

	bundle := &domain.ForecastBundle{
		AnchorDate: dates[len(dates)-1],
	}

	seasonal := NewSeasonalRegression(SeasonalOptions{
		Yearly:    true,
		Weekly:    true,
		Daily:     true,
		IntervalZ: e.cfg.IntervalZ,
	})
	autoAR := NewAutoAR(e.cfg.MaxAutoregOrder, e.cfg.WeeklySeasonalPeriod)

	if pts, err := runModel(seasonal, dates, values, horizon); err != nil {
		bundle.SeasonalError = err.Error()
	} else {
		bundle.Seasonal = pts
	}

	if pts, err := runModel(autoAR, dates, values, horizon); err != nil {
		bundle.AutoARError = err.Error()
	} else {
		bundle.AutoAR = stripBounds(pts)
	}

	return bundle, nil
}

func runModel(m Forecaster, dates []time.Time, values []float64, horizon int) ([]domain.IntervalPoint, error) {
	if err := m.Fit(dates, values); err != nil {
		return nil, &ModelFitError{Model: m.Name(), Err: err}
	}
	pts, err := m.Predict(horizon)
	if err != nil {
		return nil, &ModelFitError{Model: m.Name(), Err: err}
	}
	return pts, nil
}

func stripBounds(pts []domain.IntervalPoint) []domain.ForecastPoint {
	out := make([]domain.ForecastPoint, len(pts))
	for i, p := range pts {
		out[i] = domain.ForecastPoint{Date: p.Date, Value: p.Value}
	}
	return out
}
