package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/salesight/backend-go/internal/dataset"
)

// Load reads a transaction table from r, dispatching on the file extension.
// Supported formats: .csv, .xlsx, .json (array of flat objects).
func Load(r io.Reader, filename string) (*dataset.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return LoadCSV(r)
	case ".xlsx":
		return LoadXLSX(r)
	case ".json":
		return LoadJSON(r)
	default:
		return nil, fmt.Errorf("unsupported file format %q (expected .csv, .xlsx or .json)", filepath.Ext(filename))
	}
}

// LoadCSV parses a CSV stream with a header row.
func LoadCSV(r io.Reader) (*dataset.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, the schema guards access

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}

	return &dataset.Table{Header: header, Rows: rows}, nil
}

// LoadXLSX parses the first sheet of an XLSX workbook, first row as header.
func LoadXLSX(r io.Reader) (*dataset.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("XLSX sheet is empty")
	}

	return &dataset.Table{Header: rows[0], Rows: rows[1:]}, nil
}

// LoadJSON parses an array of flat objects. The header is the sorted union of
// keys across all records, so sparse objects produce empty cells rather than
// errors. Numbers keep their textual form via json.Number.
func LoadJSON(r io.Reader) (*dataset.Table, error) {
	var records []map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON records: %w", err)
	}

	seen := make(map[string]struct{})
	var keys []string
	for _, rec := range records {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(keys))
		for j, k := range keys {
			v, ok := rec[k]
			if !ok || v == nil {
				continue
			}
			switch val := v.(type) {
			case string:
				row[j] = val
			case json.Number:
				row[j] = val.String()
			default:
				row[j] = fmt.Sprintf("%v", val)
			}
		}
		rows[i] = row
	}
	return &dataset.Table{Header: keys, Rows: rows}, nil
}
