package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTable() *Table {
	return &Table{
		Header: []string{"timestamp", "product_id", "quantity", "revenue", "customer_id", "category"},
		Rows: [][]string{
			{"2024-01-01", "P1", "2", "20.50", "C1", "Toys"},
			{"2024-01-02", "P2", "1", "9.99", "C2", "Books"},
			{"2024-01-03", "P1", "3", "30", "C1", "Toys"},
		},
	}
}

func TestResolveSchemaMissingColumns(t *testing.T) {
	table := &Table{Header: []string{"timestamp", "product_id"}}

	_, err := ResolveSchema(table)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ElementsMatch(t, []string{"quantity", "revenue"}, schemaErr.MissingColumns)
}

func TestResolveSchemaCaseInsensitive(t *testing.T) {
	table := &Table{Header: []string{" Timestamp ", "PRODUCT_ID", "Quantity", "revenue"}}

	schema, err := ResolveSchema(table)
	require.NoError(t, err)
	assert.True(t, schema.Has(ColTimestamp))
	assert.True(t, schema.Has(ColProductID))
	assert.False(t, schema.Has(ColCustomerID))
}

func TestBuild(t *testing.T) {
	ds, err := Build(validTable())
	require.NoError(t, err)

	require.Equal(t, 3, ds.Len())
	assert.True(t, ds.HasCustomerID())
	assert.True(t, ds.HasCategory())
	assert.False(t, ds.HasOrderID())

	first := ds.Transactions[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, "P1", first.ProductID)
	assert.Equal(t, 2.0, first.Quantity)
	assert.Equal(t, 20.50, first.Revenue)
	assert.Equal(t, "C1", first.CustomerID)
	assert.Equal(t, "Toys", first.Category)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ds.MinTimestamp())
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), ds.MaxTimestamp())
}

func TestBuildRejectsNonNumericValues(t *testing.T) {
	table := validTable()
	table.Rows[1][2] = "many"

	_, err := Build(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid quantity")
}

func TestBuildRejectsNonFiniteValues(t *testing.T) {
	table := validTable()
	table.Rows[2][3] = "NaN"

	_, err := Build(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid revenue")
}

func TestBuildAcceptsNegativeValues(t *testing.T) {
	table := validTable()
	table.Rows[0][3] = "-5.00" // a return

	ds, err := Build(table)
	require.NoError(t, err)
	assert.Equal(t, -5.0, ds.Transactions[0].Revenue)
}

func TestBuildPartialDateFailureIsNonFatal(t *testing.T) {
	table := validTable()
	table.Rows[1][0] = "not a date"

	ds, err := Build(table)
	require.Error(t, err)

	var dateErr *DateParseError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, 1, dateErr.FailedCount)
	assert.Equal(t, "not a date", dateErr.Sample)

	// The dataset is still handed back, with the bad row dropped. No
	// zero-time transaction may survive into the analysis window.
	require.NotNil(t, ds)
	require.Equal(t, 2, ds.Len())
	for _, tx := range ds.Transactions {
		assert.False(t, tx.Timestamp.IsZero())
	}
	assert.Equal(t, "P1", ds.Transactions[0].ProductID)
	assert.Equal(t, "P1", ds.Transactions[1].ProductID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ds.MinTimestamp())
}

func TestFilterDateRange(t *testing.T) {
	ds, err := Build(validTable())
	require.NoError(t, err)

	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	filtered := ds.FilterDateRange(from, to)
	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "P2", filtered.Transactions[0].ProductID)

	// Zero bounds are open-ended.
	assert.Equal(t, 3, ds.FilterDateRange(time.Time{}, time.Time{}).Len())
	assert.Equal(t, 2, ds.FilterDateRange(from, time.Time{}).Len())

	// Column presence survives filtering.
	assert.True(t, filtered.HasCustomerID())
}

func TestFilterCategory(t *testing.T) {
	ds, err := Build(validTable())
	require.NoError(t, err)

	filtered := ds.FilterCategory("Toys")
	require.Equal(t, 2, filtered.Len())
	for _, tx := range filtered.Transactions {
		assert.Equal(t, "Toys", tx.Category)
	}
}

func TestFilterCustomers(t *testing.T) {
	ds, err := Build(validTable())
	require.NoError(t, err)

	filtered := ds.FilterCustomers(map[string]struct{}{"C2": {}})
	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "C2", filtered.Transactions[0].CustomerID)
}

func TestBuildEmptyTable(t *testing.T) {
	table := &Table{Header: []string{"timestamp", "product_id", "quantity", "revenue"}}

	ds, err := Build(table)
	require.NoError(t, err)
	assert.True(t, ds.Empty())
	assert.True(t, ds.MaxTimestamp().IsZero())
}
