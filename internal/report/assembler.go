package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
)

// KPISet is the headline figures block of the report. Delta fields compare
// the analysed period against the immediately preceding period of equal
// length and are nil when no prior period exists.
type KPISet struct {
	TotalRevenue    float64
	TotalQuantity   float64
	OrderCount      int
	UniqueCustomers int
	AvgOrderValue   float64
	DailyAvgRevenue float64

	RevenueDeltaPct   *float64
	OrderDeltaPct     *float64
	CustomersDeltaPct *float64
}

// SegmentSummary aggregates the RFM table per segment.
type SegmentSummary struct {
	Segment       string
	Customers     int
	TotalMonetary float64
	AvgRecency    float64
	AvgFrequency  float64
}

// Report is everything the HTML template needs, already aggregated. The
// assembler consumes engine outputs plus the raw dataset; it computes nothing
// analytical itself beyond sums and rankings.
type Report struct {
	ID          string
	GeneratedAt time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time

	KPIs     KPISet
	Segments []SegmentSummary

	TopCustomers []domain.RFMRecord
	TopProducts  []domain.ProductInventory
	StockAlerts  []domain.ProductInventory

	SeasonalForecastTotal float64
	AutoARForecastTotal   float64
	ForecastHorizonDays   int
	HasForecast           bool

	Categories *domain.CategoryAnalysis
}

const topListSize = 10

// Assemble builds the report model from the analysed dataset and a dashboard
// bundle. history is the unfiltered-by-date dataset; the period-over-period
// deltas look up the preceding window in it. Passing the analysed dataset for
// both is valid and simply yields no deltas when nothing precedes the period.
func Assemble(ds, history *dataset.Dataset, result *domain.DashboardResult) *Report {
	r := &Report{
		ID:          uuid.New().String(),
		GeneratedAt: result.GeneratedAt,
		PeriodStart: ds.MinTimestamp(),
		PeriodEnd:   ds.MaxTimestamp(),
		Categories:  result.Categories,
	}

	r.KPIs = buildKPIs(ds, history)
	r.Segments = buildSegments(result.RFM)
	r.TopCustomers = topCustomers(result.RFM)
	r.TopProducts, r.StockAlerts = rankProducts(result.Inventory)

	if result.Forecast != nil {
		r.HasForecast = len(result.Forecast.Seasonal) > 0 || len(result.Forecast.AutoAR) > 0
		r.ForecastHorizonDays = result.Params.HorizonDays
		r.SeasonalForecastTotal = seasonalFutureTotal(result.Forecast)
		for _, p := range result.Forecast.AutoAR {
			r.AutoARForecastTotal += p.Value
		}
	}

	return r
}

func buildKPIs(ds, history *dataset.Dataset) KPISet {
	kpis := KPISet{}

	customers := make(map[string]struct{})
	days := make(map[string]struct{})
	for _, tx := range ds.Transactions {
		kpis.TotalRevenue += tx.Revenue
		kpis.TotalQuantity += tx.Quantity
		if tx.CustomerID != "" {
			customers[tx.CustomerID] = struct{}{}
		}
		days[tx.Timestamp.Format("2006-01-02")] = struct{}{}
	}
	kpis.OrderCount = ds.Len()
	kpis.UniqueCustomers = len(customers)
	if kpis.OrderCount > 0 {
		kpis.AvgOrderValue = kpis.TotalRevenue / float64(kpis.OrderCount)
	}
	if len(days) > 0 {
		kpis.DailyAvgRevenue = kpis.TotalRevenue / float64(len(days))
	}

	applyPeriodDeltas(&kpis, ds, history)
	return kpis
}

// applyPeriodDeltas compares the analysed period against the preceding window
// of equal length, looked up in the history dataset. No preceding data means
// no deltas, not zero deltas.
func applyPeriodDeltas(kpis *KPISet, ds, history *dataset.Dataset) {
	start := ds.MinTimestamp()
	end := ds.MaxTimestamp()
	if start.IsZero() || !end.After(start) {
		return
	}

	span := end.Sub(start)
	prev := history.FilterDateRange(start.Add(-span-24*time.Hour), start.Add(-24*time.Hour))
	if prev.Empty() {
		return
	}

	var prevRevenue float64
	prevCustomers := make(map[string]struct{})
	for _, tx := range prev.Transactions {
		prevRevenue += tx.Revenue
		if tx.CustomerID != "" {
			prevCustomers[tx.CustomerID] = struct{}{}
		}
	}

	kpis.RevenueDeltaPct = pctChange(prevRevenue, kpis.TotalRevenue)
	kpis.OrderDeltaPct = pctChange(float64(prev.Len()), float64(kpis.OrderCount))
	kpis.CustomersDeltaPct = pctChange(float64(len(prevCustomers)), float64(kpis.UniqueCustomers))
}

func pctChange(prev, cur float64) *float64 {
	var pct float64
	if prev != 0 {
		pct = (cur - prev) / prev * 100
	}
	return &pct
}

func buildSegments(records []domain.RFMRecord) []SegmentSummary {
	if len(records) == 0 {
		return nil
	}

	byLabel := make(map[string]*SegmentSummary)
	for _, rec := range records {
		s, ok := byLabel[rec.Segment]
		if !ok {
			s = &SegmentSummary{Segment: rec.Segment}
			byLabel[rec.Segment] = s
		}
		s.Customers++
		s.TotalMonetary += rec.Monetary
		s.AvgRecency += float64(rec.RecencyDays)
		s.AvgFrequency += float64(rec.Frequency)
	}

	// Fixed display order, most valuable first.
	order := []string{domain.SegmentVIP, domain.SegmentLoyal, domain.SegmentPotential, domain.SegmentAtRisk}
	out := make([]SegmentSummary, 0, len(byLabel))
	for _, label := range order {
		s, ok := byLabel[label]
		if !ok {
			continue
		}
		n := float64(s.Customers)
		s.AvgRecency /= n
		s.AvgFrequency /= n
		out = append(out, *s)
	}
	return out
}

func topCustomers(records []domain.RFMRecord) []domain.RFMRecord {
	if len(records) == 0 {
		return nil
	}
	sorted := make([]domain.RFMRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Monetary > sorted[j].Monetary })
	if len(sorted) > topListSize {
		sorted = sorted[:topListSize]
	}
	return sorted
}

func rankProducts(inventory []domain.ProductInventory) (top, alerts []domain.ProductInventory) {
	if len(inventory) == 0 {
		return nil, nil
	}
	sorted := make([]domain.ProductInventory, len(inventory))
	copy(sorted, inventory)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TotalQuantity > sorted[j].TotalQuantity })

	top = sorted
	if len(top) > topListSize {
		top = top[:topListSize]
	}

	for _, p := range inventory {
		if p.Status == domain.StockReorder {
			alerts = append(alerts, p)
		}
	}
	return top, alerts
}

// seasonalFutureTotal sums only the future part of the seasonal model's
// output, which spans history plus horizon.
func seasonalFutureTotal(bundle *domain.ForecastBundle) float64 {
	var total float64
	for _, p := range bundle.Seasonal {
		if p.Date.After(bundle.AnchorDate) {
			total += p.Value
		}
	}
	return total
}
