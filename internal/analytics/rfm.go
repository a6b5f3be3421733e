package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
)

// RFMEngine scores customers on recency, frequency and monetary value and
// assigns each one of the four fixed segments.
type RFMEngine struct{}

func NewRFMEngine() *RFMEngine {
	return &RFMEngine{}
}

// customerAgg accumulates per-customer metrics during the grouping pass.
type customerAgg struct {
	lastSeen time.Time
	orders   map[string]struct{}
	monetary float64
}

// Compute runs the full RFM analysis against the dataset's latest timestamp.
//
// Frequency counts distinct order ids when the dataset carries them.
// Otherwise a synthetic (customer, calendar day) grouping stands in, so two
// same-day transactions count as a single order.
func (e *RFMEngine) Compute(ds *dataset.Dataset) ([]domain.RFMRecord, error) {
	if !ds.HasCustomerID() {
		return nil, ErrNoCustomerColumn
	}
	if ds.Empty() {
		return []domain.RFMRecord{}, nil
	}

	maxDate := ds.MaxTimestamp()

	groups := make(map[string]*customerAgg)
	for _, tx := range ds.Transactions {
		// Rows without a customer value cannot be attributed; they still
		// count toward maxDate above, just not toward any customer.
		if tx.CustomerID == "" {
			continue
		}
		agg, ok := groups[tx.CustomerID]
		if !ok {
			agg = &customerAgg{orders: make(map[string]struct{})}
			groups[tx.CustomerID] = agg
		}
		if tx.Timestamp.After(agg.lastSeen) {
			agg.lastSeen = tx.Timestamp
		}
		agg.monetary += tx.Revenue

		if ds.HasOrderID() {
			agg.orders[tx.OrderID] = struct{}{}
		} else {
			// One order per customer per calendar day.
			agg.orders[tx.Timestamp.Format("2006-01-02")] = struct{}{}
		}
	}

	customers := make([]string, 0, len(groups))
	for id := range groups {
		customers = append(customers, id)
	}
	sort.Strings(customers)

	recencies := make([]float64, len(customers))
	monetaries := make([]float64, len(customers))
	for i, id := range customers {
		recencies[i] = float64(int(maxDate.Sub(groups[id].lastSeen).Hours() / 24))
		monetaries[i] = groups[id].monetary
	}

	recencyThresholds := recencyBoundaries(recencies)
	monetaryThresholds := percentiles(monetaries, 20, 40, 60, 80)

	records := make([]domain.RFMRecord, len(customers))
	for i, id := range customers {
		agg := groups[id]
		r := scoreRecency(recencies[i], recencyThresholds)
		f := scoreFrequency(len(agg.orders))
		m := scoreMonetary(agg.monetary, monetaryThresholds)

		records[i] = domain.RFMRecord{
			CustomerID:  id,
			RecencyDays: int(recencies[i]),
			Frequency:   len(agg.orders),
			Monetary:    agg.monetary,
			R:           r,
			F:           f,
			M:           m,
			Score:       fmt.Sprintf("%d%d%d", r, f, m),
			Segment:     domain.AssignSegment(r, f, m),
		}
	}

	return records, nil
}

// recencyBoundaries derives the four bucket boundaries for recency scoring.
//
// With at least five distinct values the boundaries are the equal-frequency
// 20/40/60/80th percentile cuts. Below that the distribution cannot fill five
// buckets, so the same fixed-percentile cut applies with collapsed buckets:
// repeated boundaries funnel ties into the first bracket that admits them.
// Both cases reduce to the same percentile cut once ties are scored by
// first-matching bracket, so the distinct-value count decides nothing beyond
// documentation: degenerate distributions are an expected path, not a caught
// binning error, and no input can fail here.
func recencyBoundaries(recencies []float64) []float64 {
	return percentiles(recencies, 20, 40, 60, 80)
}

// scoreRecency maps a recency value to 1..5, reversed: the most recent
// customers score highest. The top bin is open-ended.
func scoreRecency(r float64, bounds []float64) int {
	switch {
	case r <= bounds[0]:
		return 5
	case r <= bounds[1]:
		return 4
	case r <= bounds[2]:
		return 3
	case r <= bounds[3]:
		return 2
	default:
		return 1
	}
}

// scoreFrequency uses fixed manual thresholds. Order counts are small
// repeated integers, which makes quantile binning unstable, so this is
// deliberately not percentile-based.
func scoreFrequency(orders int) int {
	switch {
	case orders <= 1:
		return 1
	case orders <= 2:
		return 2
	case orders <= 3:
		return 3
	case orders <= 5:
		return 4
	default:
		return 5
	}
}

// scoreMonetary maps spend into the percentile bracket it falls into.
func scoreMonetary(m float64, bounds []float64) int {
	switch {
	case m <= bounds[0]:
		return 1
	case m <= bounds[1]:
		return 2
	case m <= bounds[2]:
		return 3
	case m <= bounds[3]:
		return 4
	default:
		return 5
	}
}
