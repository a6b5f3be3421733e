package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesight/backend-go/internal/domain"
)

func testInventoryEngine() *InventoryEngine {
	return NewInventoryEngine(1.5, 2.0, 2.0)
}

func inventoryRows(product string, quantities ...float64) [][]string {
	rows := make([][]string, len(quantities))
	for i, q := range quantities {
		rows[i] = []string{"2024-01-01", product, fmt.Sprintf("%g", q), "10"}
	}
	return rows
}

func TestInventoryThresholds(t *testing.T) {
	// Ten single-unit sales: mean 1, safety round(1.5)=2, reorder round(2)=2.
	ds := buildDataset(t, []string{"timestamp", "product_id", "quantity", "revenue"},
		inventoryRows("P1", 1, 1, 1, 1, 1, 1, 1, 1, 1, 1))

	out := testInventoryEngine().Analyze(ds)
	require.Len(t, out, 1)

	p := out[0]
	assert.Equal(t, "P1", p.ProductID)
	assert.InDelta(t, 10, p.TotalQuantity, 1e-9)
	assert.InDelta(t, 1, p.MeanQuantity, 1e-9)
	assert.InDelta(t, 0, p.StdDevQuantity, 1e-9)
	assert.Equal(t, 10, p.OrderCount)
	assert.Equal(t, 2, p.SafetyStock)
	assert.Equal(t, 2, p.ReorderPoint)
	// Total 10 exceeds twice the safety stock.
	assert.Equal(t, domain.StockHigh, p.Status)
}

func TestInventoryStatusBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		quantities []float64
		want       string
	}{
		// mean 4 -> safety 6; total 8 sits inside [6, 12].
		{"normal inside band", []float64{4, 4}, domain.StockNormal},
		// mean 2 -> safety 3; total 10 > 6.
		{"high above twice safety", []float64{2, 2, 2, 2, 2}, domain.StockHigh},
		// mean 6 -> safety 9; total 6 < 9.
		{"reorder below safety", []float64{6}, domain.StockReorder},
		// mean 3 -> safety 5 (banker-free rounding of 4.5); total 9 < 10.
		{"normal at band edge", []float64{3, 3, 3}, domain.StockNormal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ds := buildDataset(t, []string{"timestamp", "product_id", "quantity", "revenue"},
				inventoryRows("P1", tc.quantities...))

			out := testInventoryEngine().Analyze(ds)
			require.Len(t, out, 1)
			assert.Equal(t, tc.want, out[0].Status)
		})
	}
}

func TestInventorySingleObservationHasZeroDeviation(t *testing.T) {
	ds := buildDataset(t, []string{"timestamp", "product_id", "quantity", "revenue"},
		inventoryRows("P1", 8))

	out := testInventoryEngine().Analyze(ds)
	require.Len(t, out, 1)
	assert.InDelta(t, 0, out[0].StdDevQuantity, 1e-9)
	assert.Equal(t, 12, out[0].SafetyStock)
	assert.Equal(t, 16, out[0].ReorderPoint)
}

func TestInventorySortedByProduct(t *testing.T) {
	var rows [][]string
	rows = append(rows, inventoryRows("banana", 5)...)
	rows = append(rows, inventoryRows("apple", 3)...)
	rows = append(rows, inventoryRows("cherry", 1)...)
	ds := buildDataset(t, []string{"timestamp", "product_id", "quantity", "revenue"}, rows)

	out := testInventoryEngine().Analyze(ds)
	require.Len(t, out, 3)
	assert.Equal(t, "apple", out[0].ProductID)
	assert.Equal(t, "banana", out[1].ProductID)
	assert.Equal(t, "cherry", out[2].ProductID)
}

func TestInventoryEmptyDataset(t *testing.T) {
	ds := buildDataset(t, []string{"timestamp", "product_id", "quantity", "revenue"}, nil)
	assert.Empty(t, testInventoryEngine().Analyze(ds))
}
