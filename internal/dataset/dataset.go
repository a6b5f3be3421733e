package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Transaction is one validated, date-typed row of the input log. CustomerID,
// OrderID and Category are empty when their columns are absent from the
// source table.
type Transaction struct {
	Timestamp  time.Time `json:"timestamp"`
	ProductID  string    `json:"product_id"`
	Quantity   float64   `json:"quantity"`
	Revenue    float64   `json:"revenue"`
	CustomerID string    `json:"customer_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	Category   string    `json:"category,omitempty"`
}

// Dataset is the canonical in-memory form every engine consumes. Records keep
// insertion order; nothing downstream mutates them.
type Dataset struct {
	Transactions []Transaction

	hasCustomerID bool
	hasOrderID    bool
	hasCategory   bool
}

// Build validates a raw table against the required schema, normalizes its
// timestamp column and parses the numeric columns.
//
// A missing required column fails with *SchemaError and no dataset. Rows
// whose timestamp no layout could parse are dropped, and the dataset built
// from the remaining rows is returned together with a *DateParseError so the
// caller can decide whether to proceed. Negative or zero quantity and revenue
// are accepted (returns), but non-numeric and non-finite values are rejected
// outright.
func Build(t *Table) (*Dataset, error) {
	schema, err := ResolveSchema(t)
	if err != nil {
		return nil, err
	}

	rawDates := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		rawDates[i] = schema.cell(row, ColTimestamp)
	}
	timestamps, dateErr := NormalizeTimestamps(rawDates)

	skip := make(map[int]struct{})
	if dateErr != nil {
		var parseErr *DateParseError
		if errors.As(dateErr, &parseErr) {
			for _, i := range parseErr.Rows {
				skip[i] = struct{}{}
			}
		}
	}

	ds := &Dataset{
		Transactions:  make([]Transaction, 0, len(t.Rows)-len(skip)),
		hasCustomerID: schema.Has(ColCustomerID),
		hasOrderID:    schema.Has(ColOrderID),
		hasCategory:   schema.Has(ColCategory),
	}

	for i, row := range t.Rows {
		if _, dropped := skip[i]; dropped {
			continue
		}
		qty, err := parseFinite(schema.cell(row, ColQuantity))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity: %w", i+1, err)
		}
		rev, err := parseFinite(schema.cell(row, ColRevenue))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid revenue: %w", i+1, err)
		}

		ds.Transactions = append(ds.Transactions, Transaction{
			Timestamp:  timestamps[i],
			ProductID:  schema.cell(row, ColProductID),
			Quantity:   qty,
			Revenue:    rev,
			CustomerID: schema.cell(row, ColCustomerID),
			OrderID:    schema.cell(row, ColOrderID),
			Category:   schema.cell(row, ColCategory),
		})
	}

	if dateErr != nil {
		return ds, dateErr
	}
	return ds, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}

func (d *Dataset) Len() int { return len(d.Transactions) }

func (d *Dataset) Empty() bool { return len(d.Transactions) == 0 }

func (d *Dataset) HasCustomerID() bool { return d.hasCustomerID }

func (d *Dataset) HasOrderID() bool { return d.hasOrderID }

func (d *Dataset) HasCategory() bool { return d.hasCategory }

// MaxTimestamp returns the latest transaction time, or the zero time for an
// empty dataset.
func (d *Dataset) MaxTimestamp() time.Time {
	var max time.Time
	for _, tx := range d.Transactions {
		if tx.Timestamp.After(max) {
			max = tx.Timestamp
		}
	}
	return max
}

// MinTimestamp returns the earliest transaction time, or the zero time for an
// empty dataset.
func (d *Dataset) MinTimestamp() time.Time {
	var min time.Time
	for i, tx := range d.Transactions {
		if i == 0 || tx.Timestamp.Before(min) {
			min = tx.Timestamp
		}
	}
	return min
}

// FilterDateRange returns the subset of records with from <= timestamp <= to.
// Zero bounds are open-ended.
func (d *Dataset) FilterDateRange(from, to time.Time) *Dataset {
	return d.filter(func(tx Transaction) bool {
		if !from.IsZero() && tx.Timestamp.Before(from) {
			return false
		}
		if !to.IsZero() && tx.Timestamp.After(to) {
			return false
		}
		return true
	})
}

// FilterCategory returns the subset of records in the given category.
func (d *Dataset) FilterCategory(category string) *Dataset {
	return d.filter(func(tx Transaction) bool {
		return tx.Category == category
	})
}

// FilterCustomers returns the subset of records whose customer is in ids.
func (d *Dataset) FilterCustomers(ids map[string]struct{}) *Dataset {
	return d.filter(func(tx Transaction) bool {
		_, ok := ids[tx.CustomerID]
		return ok
	})
}

func (d *Dataset) filter(keep func(Transaction) bool) *Dataset {
	out := &Dataset{
		hasCustomerID: d.hasCustomerID,
		hasOrderID:    d.hasOrderID,
		hasCategory:   d.hasCategory,
	}
	for _, tx := range d.Transactions {
		if keep(tx) {
			out.Transactions = append(out.Transactions, tx)
		}
	}
	return out
}
