package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salesight/backend-go/internal/dataset"
)

// buildDataset runs rows through the dataset contract so the engines see
// exactly what they would in production.
func buildDataset(t *testing.T, header []string, rows [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Build(&dataset.Table{Header: header, Rows: rows})
	require.NoError(t, err)
	return ds
}

// dailySales builds a one-product dataset with one transaction per day
// starting at 2024-01-01, revenue taken from value(i).
func dailySales(t *testing.T, days int, value func(i int) float64) *dataset.Dataset {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := make([][]string, days)
	for i := 0; i < days; i++ {
		rows[i] = []string{
			start.AddDate(0, 0, i).Format("2006-01-02"),
			"P1",
			"1",
			fmt.Sprintf("%g", value(i)),
		}
	}
	return buildDataset(t, []string{"timestamp", "product_id", "quantity", "revenue"}, rows)
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
