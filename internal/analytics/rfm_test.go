package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesight/backend-go/internal/domain"
)

var rfmHeader = []string{"timestamp", "product_id", "quantity", "revenue", "customer_id"}

// customerRows emits one row per purchase day, ending at lastDay, with the
// customer's spend split evenly across the days.
func customerRows(customer string, lastDay string, days int, totalSpend float64) [][]string {
	end := day(lastDay)
	perDay := totalSpend / float64(days)

	rows := make([][]string, days)
	for i := 0; i < days; i++ {
		d := end.AddDate(0, 0, -(days - 1 - i))
		rows[i] = []string{d.Format("2006-01-02"), "P1", "1", fmt.Sprintf("%g", perDay)}
		rows[i] = append(rows[i], customer)
	}
	return rows
}

func TestRFMScoresAndSegments(t *testing.T) {
	var rows [][]string
	rows = append(rows, customerRows("c1", "2024-03-01", 6, 1200)...)
	rows = append(rows, customerRows("c2", "2024-02-20", 5, 800)...)
	rows = append(rows, customerRows("c3", "2024-02-10", 3, 600)...)
	rows = append(rows, customerRows("c4", "2024-01-31", 2, 400)...)
	rows = append(rows, customerRows("c5", "2024-01-21", 1, 200)...)

	ds := buildDataset(t, rfmHeader, rows)

	records, err := NewRFMEngine().Compute(ds)
	require.NoError(t, err)
	require.Len(t, records, 5)

	byID := make(map[string]domain.RFMRecord)
	for _, rec := range records {
		byID[rec.CustomerID] = rec
	}

	// Recency against the dataset's latest day (2024-03-01).
	assert.Equal(t, 0, byID["c1"].RecencyDays)
	assert.Equal(t, 10, byID["c2"].RecencyDays)
	assert.Equal(t, 40, byID["c5"].RecencyDays)

	// Five distinct recency/monetary levels spread across all five scores,
	// with recency reversed (most recent scores highest).
	assert.Equal(t, "555", byID["c1"].Score)
	assert.Equal(t, "444", byID["c2"].Score)
	assert.Equal(t, "333", byID["c3"].Score)
	assert.Equal(t, "222", byID["c4"].Score)
	assert.Equal(t, "111", byID["c5"].Score)

	assert.Equal(t, domain.SegmentVIP, byID["c1"].Segment)
	assert.Equal(t, domain.SegmentVIP, byID["c2"].Segment)
	assert.Equal(t, domain.SegmentLoyal, byID["c3"].Segment)
	assert.Equal(t, domain.SegmentPotential, byID["c4"].Segment)
	assert.Equal(t, domain.SegmentAtRisk, byID["c5"].Segment)
}

// Without an order id column, frequency counts distinct purchase days: two
// same-day transactions are one order.
func TestRFMFrequencyDayProxy(t *testing.T) {
	rows := [][]string{
		{"2024-01-01", "P1", "1", "10", "A"},
		{"2024-01-01", "P2", "1", "15", "A"},
		{"2024-01-01", "P1", "1", "10", "B"},
		{"2024-01-03", "P1", "1", "10", "B"},
	}
	ds := buildDataset(t, rfmHeader, rows)

	records, err := NewRFMEngine().Compute(ds)
	require.NoError(t, err)

	byID := make(map[string]domain.RFMRecord)
	for _, rec := range records {
		byID[rec.CustomerID] = rec
	}
	assert.Equal(t, 1, byID["A"].Frequency)
	assert.Equal(t, 2, byID["B"].Frequency)
	assert.Equal(t, 25.0, byID["A"].Monetary)
}

// With an order id column, frequency counts distinct orders even on the same
// day.
func TestRFMFrequencyDistinctOrders(t *testing.T) {
	header := append(append([]string{}, rfmHeader...), "order_id")
	rows := [][]string{
		{"2024-01-01", "P1", "1", "10", "A", "o-1"},
		{"2024-01-01", "P2", "1", "15", "A", "o-2"},
		{"2024-01-01", "P3", "1", "5", "A", "o-2"},
	}
	ds := buildDataset(t, header, rows)

	records, err := NewRFMEngine().Compute(ds)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Frequency)
}

// A single customer collapses every percentile boundary onto their own
// values; ties fall into the first bracket that admits them. The anonymous
// sale two days after their last order moves the dataset's anchor date
// without creating a phantom customer.
func TestRFMSingleCustomer(t *testing.T) {
	var rows [][]string
	rows = append(rows, customerRows("solo", "2024-01-05", 3, 500)...)
	rows = append(rows, []string{"2024-01-07", "P9", "1", "10", ""})
	ds := buildDataset(t, rfmHeader, rows)

	records, err := NewRFMEngine().Compute(ds)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "solo", rec.CustomerID)
	assert.Equal(t, 2, rec.RecencyDays)
	assert.Equal(t, 3, rec.Frequency)
	assert.InDelta(t, 500, rec.Monetary, 1e-9)
	assert.Equal(t, 5, rec.R) // the only recency value lands in the first bracket
	assert.Equal(t, 3, rec.F)
	assert.Equal(t, 1, rec.M) // degenerate distribution funnels into bracket 1
	assert.Equal(t, domain.SegmentAtRisk, rec.Segment)
}

func TestRFMRequiresCustomerColumn(t *testing.T) {
	ds := dailySales(t, 5, func(int) float64 { return 100 })

	_, err := NewRFMEngine().Compute(ds)
	assert.ErrorIs(t, err, ErrNoCustomerColumn)
}

func TestRFMEmptyDataset(t *testing.T) {
	ds := buildDataset(t, rfmHeader, nil)

	records, err := NewRFMEngine().Compute(ds)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRFMRecencyUsesDatasetMax(t *testing.T) {
	rows := [][]string{
		{"2024-01-01", "P1", "1", "10", "old"},
		{"2024-01-31", "P1", "1", "10", "new"},
	}
	ds := buildDataset(t, rfmHeader, rows)

	records, err := NewRFMEngine().Compute(ds)
	require.NoError(t, err)

	for _, rec := range records {
		if rec.CustomerID == "old" {
			assert.Equal(t, 30, rec.RecencyDays)
		} else {
			assert.Equal(t, 0, rec.RecencyDays)
		}
	}
}
