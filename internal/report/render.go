package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html.tmpl").Funcs(template.FuncMap{
		"money":   formatMoney,
		"num":     formatNumber,
		"pct":     formatPct,
		"pctSign": pctClass,
	}).ParseFS(templateFS, "templates/report.html.tmpl"),
)

// Render writes the report as a standalone HTML document.
func Render(w io.Writer, r *Report) error {
	if err := reportTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func formatMoney(v float64) string {
	return "$" + formatNumber(v)
}

// formatNumber renders with thousands separators and two decimals, dropping
// the decimals for whole numbers. Rounding to cents happens once up front so
// a fraction that rounds up carries into the integer part.
func formatNumber(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	intPart := cents / 100
	fracCents := cents % 100

	digits := fmt.Sprintf("%d", intPart)
	var grouped []byte
	for i, c := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, c)
	}

	out := string(grouped)
	if fracCents > 0 {
		out += fmt.Sprintf(".%02d", fracCents)
	}
	if neg {
		out = "-" + out
	}
	return out
}

func formatPct(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%+.1f%%", *v)
}

// pctClass maps a delta to a CSS class name for colouring.
func pctClass(v *float64) string {
	switch {
	case v == nil:
		return "flat"
	case *v > 0:
		return "up"
	case *v < 0:
		return "down"
	default:
		return "flat"
	}
}
