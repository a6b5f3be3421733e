package analytics

import (
	"sort"
	"time"

	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
)

// CategoryEngine summarises revenue per category and tracks month-over-month
// category growth.
type CategoryEngine struct{}

func NewCategoryEngine() *CategoryEngine {
	return &CategoryEngine{}
}

// Analyze returns per-category metrics plus monthly growth rates. Datasets
// without a category column are reported through ErrNoCategoryColumn; the
// caller is expected to skip the engine instead of treating this as fatal.
func (e *CategoryEngine) Analyze(ds *dataset.Dataset) (*domain.CategoryAnalysis, error) {
	if !ds.HasCategory() {
		return nil, ErrNoCategoryColumn
	}

	type agg struct {
		revenue  float64
		quantity float64
		count    int
	}
	byCategory := make(map[string]*agg)
	monthly := make(map[string]map[time.Time]float64)

	for _, tx := range ds.Transactions {
		a, ok := byCategory[tx.Category]
		if !ok {
			a = &agg{}
			byCategory[tx.Category] = a
			monthly[tx.Category] = make(map[time.Time]float64)
		}
		a.revenue += tx.Revenue
		a.quantity += tx.Quantity
		a.count++

		month := time.Date(tx.Timestamp.Year(), tx.Timestamp.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthly[tx.Category][month] += tx.Revenue
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	result := &domain.CategoryAnalysis{}
	for _, c := range categories {
		a := byCategory[c]
		result.Metrics = append(result.Metrics, domain.CategoryMetrics{
			Category:      c,
			TotalRevenue:  a.revenue,
			AvgRevenue:    a.revenue / float64(a.count),
			OrderCount:    a.count,
			TotalQuantity: a.quantity,
		})

		months := make([]time.Time, 0, len(monthly[c]))
		for m := range monthly[c] {
			months = append(months, m)
		}
		sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

		for i, m := range months {
			point := domain.CategoryGrowthPoint{
				Category: c,
				Month:    m,
				Revenue:  monthly[c][m],
			}
			if i > 0 {
				prev := monthly[c][months[i-1]]
				var pct float64
				if prev != 0 {
					pct = (point.Revenue - prev) / prev * 100
				}
				point.GrowthPct = &pct
			}
			result.Growth = append(result.Growth, point)
		}
	}

	return result, nil
}
