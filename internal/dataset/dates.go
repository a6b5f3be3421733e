package dataset

import (
	"fmt"
	"time"
)

// knownLayouts is the fixed, ordered list of date layouts tried against the
// whole timestamp column. The first layout that parses every value wins, so
// ambiguous day/month inputs resolve deterministically by list order.
var knownLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
	"2006.01.02",
}

// fallbackLayouts extends the known set for the per-value best-effort pass,
// covering timestamps that carry a time component.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02.01.2006 15:04:05",
}

// DateParseError reports timestamp values no known or fallback layout could
// parse. It is non-fatal by contract: Build drops the affected rows and hands
// back the rest, and the caller decides whether the remainder is still worth
// analysing. Rows lists the failed row indices so the caller can exclude them.
type DateParseError struct {
	Column      string
	FailedCount int
	Sample      string
	Rows        []int
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("column %q: %d row(s) dropped, timestamp not parseable (e.g. %q)", e.Column, e.FailedCount, e.Sample)
}

// NormalizeTimestamps converts a raw string column into time values.
//
// It first tries each known layout against the entire column and stops at the
// first one that parses every value. If none fits, it falls back to a
// per-value best-effort parse over the extended layout set. Values that still
// fail are left as zero times in the slice and reported, with their indices,
// through a DateParseError alongside the partial result.
func NormalizeTimestamps(values []string) ([]time.Time, error) {
	out := make([]time.Time, len(values))

	for _, layout := range knownLayouts {
		if parseAll(values, layout, out) {
			return out, nil
		}
	}

	// Generic fallback: each value independently, any layout.
	var failedRows []int
	sample := ""
	for i, v := range values {
		t, ok := parseAny(v)
		if !ok {
			failedRows = append(failedRows, i)
			if sample == "" {
				sample = v
			}
			continue
		}
		out[i] = t
	}
	if len(failedRows) > 0 {
		return out, &DateParseError{
			Column:      string(ColTimestamp),
			FailedCount: len(failedRows),
			Sample:      sample,
			Rows:        failedRows,
		}
	}
	return out, nil
}

// parseAll parses every value with one layout, writing into dst. Returns
// false on the first miss without touching the remaining slots.
func parseAll(values []string, layout string, dst []time.Time) bool {
	for i, v := range values {
		t, err := time.Parse(layout, v)
		if err != nil {
			return false
		}
		dst[i] = t
	}
	return true
}

func parseAny(v string) (time.Time, bool) {
	for _, layout := range knownLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
