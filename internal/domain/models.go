package domain

import "time"

// AnalysisParams are the caller-supplied knobs for one analytics run. Filters
// are applied before any engine sees the data; the engines never filter on
// their own.
type AnalysisParams struct {
	HorizonDays int       `json:"horizon_days"`
	From        time.Time `json:"from,omitempty"`
	To          time.Time `json:"to,omitempty"`
	Category    string    `json:"category,omitempty"`
}

// RFMRecord is the per-customer output of the segmentation engine. Recency is
// measured in whole days against the dataset's latest timestamp. Score is the
// concatenated R/F/M digits, display-only.
type RFMRecord struct {
	CustomerID  string  `json:"customer_id"`
	RecencyDays int     `json:"recency_days"`
	Frequency   int     `json:"frequency"`
	Monetary    float64 `json:"monetary"`
	R           int     `json:"r"`
	F           int     `json:"f"`
	M           int     `json:"m"`
	Score       string  `json:"rfm_score"`
	Segment     string  `json:"segment"`
}

// SeriesPoint is one day of the aggregated revenue series. Moving averages
// and growth are nil while their trailing window has not filled yet; nil
// means "no value", never zero.
type SeriesPoint struct {
	Date      time.Time `json:"date"`
	Revenue   float64   `json:"revenue"`
	ShortMA   *float64  `json:"ma7"`
	LongMA    *float64  `json:"ma30"`
	GrowthPct *float64  `json:"growth_pct"`
}

// Decomposition is the additive seasonal/trend/residual split of the daily
// series, aligned index-for-index with the series points. Trend and residual
// are nil where the centered trend window runs off the series ends.
type Decomposition struct {
	Period   int        `json:"period"`
	Seasonal []float64  `json:"seasonal"`
	Trend    []*float64 `json:"trend"`
	Residual []*float64 `json:"residual"`
}

// RevenueHeatmap is the date-by-hour revenue matrix behind the dashboard's
// intensity chart. Values is indexed [hour][date].
type RevenueHeatmap struct {
	Dates  []string    `json:"dates"`
	Hours  []int       `json:"hours"`
	Values [][]float64 `json:"values"`
}

// TimeSeriesResult bundles the daily series with its optional decomposition.
// Decomposition is absent (nil) when the series is too short for the period.
type TimeSeriesResult struct {
	Points        []SeriesPoint   `json:"points"`
	Decomposition *Decomposition  `json:"decomposition,omitempty"`
	Heatmap       *RevenueHeatmap `json:"heatmap,omitempty"`
}

// ForecastPoint is a dated point prediction without uncertainty bounds.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// IntervalPoint is a dated point prediction with lower/upper bounds.
type IntervalPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// ForecastBundle carries both model outputs plus the anchor date (the last
// observed day). The models are independent; one failing leaves the other
// usable, with the failure recorded rather than propagated.
type ForecastBundle struct {
	Seasonal      []IntervalPoint `json:"seasonal_regression,omitempty"`
	SeasonalError string          `json:"seasonal_regression_error,omitempty"`
	AutoAR        []ForecastPoint `json:"autoregressive,omitempty"`
	AutoARError   string          `json:"autoregressive_error,omitempty"`
	AnchorDate    time.Time       `json:"anchor_date"`
}

// ProductInventory is the per-product output of the inventory heuristic
// engine. SafetyStock and ReorderPoint are rounded to whole units.
type ProductInventory struct {
	ProductID      string  `json:"product_id"`
	TotalQuantity  float64 `json:"total_quantity"`
	MeanQuantity   float64 `json:"mean_quantity"`
	StdDevQuantity float64 `json:"std_dev_quantity"`
	OrderCount     int     `json:"order_count"`
	SafetyStock    int     `json:"safety_stock"`
	ReorderPoint   int     `json:"reorder_point"`
	Status         string  `json:"status"`
}

// CategoryMetrics summarises one category across the filtered dataset.
type CategoryMetrics struct {
	Category      string  `json:"category"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgRevenue    float64 `json:"avg_revenue"`
	OrderCount    int     `json:"order_count"`
	TotalQuantity float64 `json:"total_quantity"`
}

// CategoryGrowthPoint is one month of a category's revenue with its
// month-over-month growth. Growth is nil on a category's first month.
type CategoryGrowthPoint struct {
	Category  string    `json:"category"`
	Month     time.Time `json:"month"`
	Revenue   float64   `json:"revenue"`
	GrowthPct *float64  `json:"growth_pct"`
}

// CategoryAnalysis is present only when the dataset carries a category column.
type CategoryAnalysis struct {
	Metrics []CategoryMetrics     `json:"metrics"`
	Growth  []CategoryGrowthPoint `json:"growth"`
}

// DashboardResult is the full analytics bundle the presentation layer and the
// report assembler consume. Engine sections are nil when their preconditions
// are not met (no customer column, no category column, fatal forecast error).
type DashboardResult struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Params      AnalysisParams    `json:"params"`
	Records     int               `json:"records"`
	RFM         []RFMRecord       `json:"rfm,omitempty"`
	TimeSeries  *TimeSeriesResult `json:"time_series,omitempty"`
	Forecast    *ForecastBundle   `json:"forecast,omitempty"`
	Inventory   []ProductInventory `json:"inventory,omitempty"`
	Categories  *CategoryAnalysis `json:"categories,omitempty"`
}
