package dataset

import (
	"fmt"
	"strings"
)

// Column is the semantic name of a table column. Engines never look columns up
// by raw header string; the schema resolves headers to semantic columns once,
// at the contract boundary.
type Column string

const (
	ColTimestamp  Column = "timestamp"
	ColProductID  Column = "product_id"
	ColQuantity   Column = "quantity"
	ColRevenue    Column = "revenue"
	ColCustomerID Column = "customer_id"
	ColOrderID    Column = "order_id"
	ColCategory   Column = "category"
)

var requiredColumns = []Column{ColTimestamp, ColProductID, ColQuantity, ColRevenue}

var optionalColumns = []Column{ColCustomerID, ColOrderID, ColCategory}

// Table is the raw tabular input handed over by the ingestion layer: a header
// row plus string cells, untyped and unvalidated.
type Table struct {
	Header []string
	Rows   [][]string
}

// SchemaError reports every required column absent from the input table.
type SchemaError struct {
	MissingColumns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.MissingColumns, ", "))
}

// Schema maps semantic columns to their positions in a table header.
type Schema struct {
	indices map[Column]int
}

// ResolveSchema matches the table header against the required and optional
// columns. Header matching is case-insensitive and ignores surrounding
// whitespace. It fails with a SchemaError listing every missing required
// column; optional columns are recorded only when present.
func ResolveSchema(t *Table) (*Schema, error) {
	byName := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	s := &Schema{indices: make(map[Column]int)}

	var missing []string
	for _, col := range requiredColumns {
		idx, ok := byName[string(col)]
		if !ok {
			missing = append(missing, string(col))
			continue
		}
		s.indices[col] = idx
	}
	if len(missing) > 0 {
		return nil, &SchemaError{MissingColumns: missing}
	}

	for _, col := range optionalColumns {
		if idx, ok := byName[string(col)]; ok {
			s.indices[col] = idx
		}
	}

	return s, nil
}

// Has reports whether the schema resolved the given column.
func (s *Schema) Has(col Column) bool {
	_, ok := s.indices[col]
	return ok
}

// cell returns the raw cell for col in row, or "" when the column is absent
// or the row is ragged.
func (s *Schema) cell(row []string, col Column) string {
	idx, ok := s.indices[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
