package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"DrawdownMonitor/internal/model"
)

// Column identifies a sortable table column.
type Column string

const (
	ColTicker       Column = "ticker"
	ColCurrentPrice Column = "current_price"
	ColMax          Column = "historical_max"
	ColDrawdown     Column = "drawdown_pct"
	ColRecoverRatio Column = "recover_ratio"
	ColError        Column = "error"
)

var headings = map[Column]string{
	ColTicker:       "Ticker",
	ColCurrentPrice: "Current Price",
	ColMax:          "Historical Max (High)",
	ColDrawdown:     "Current Drawdown (%)",
	ColRecoverRatio: "Recover Ratio (%)",
	ColError:        "Error",
}

// ParseColumn maps a config string to a Column.
func ParseColumn(s string) (Column, error) {
	switch Column(strings.ToLower(strings.TrimSpace(s))) {
	case ColTicker, ColCurrentPrice, ColMax, ColDrawdown, ColRecoverRatio, ColError:
		return Column(strings.ToLower(strings.TrimSpace(s))), nil
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// rawValue returns the unrounded numeric sort key for a record, or NaN for
// string columns and missing values.
func rawValue(r *model.MetricRecord, col Column) float64 {
	switch col {
	case ColCurrentPrice:
		return r.RawCurrentPrice
	case ColMax:
		return r.RawHistoricalMax
	case ColDrawdown:
		return r.RawDrawdownPct
	case ColRecoverRatio:
		return r.RawRecoverRatioPct
	}
	return math.NaN()
}

// Sort orders records by the given column. Numeric columns sort on the raw
// unrounded values; NaN keys (missing values, errored rows) always sort last
// regardless of direction. The sort is stable so equal keys keep input order.
func Sort(records []model.MetricRecord, col Column, ascending bool) {
	sort.SliceStable(records, func(i, j int) bool {
		switch col {
		case ColTicker, ColError:
			a, b := stringKey(&records[i], col), stringKey(&records[j], col)
			if ascending {
				return a < b
			}
			return a > b
		}
		a, b := rawValue(&records[i], col), rawValue(&records[j], col)
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		if ascending {
			return a < b
		}
		return a > b
	})
}

func stringKey(r *model.MetricRecord, col Column) string {
	if col == ColError {
		return r.Error
	}
	return r.Ticker
}

// FormatNumber renders a price-like value with thousands separators and fixed
// decimals. Missing values render blank.
func FormatNumber(v float64, digits int) string {
	if math.IsNaN(v) {
		return ""
	}
	return humanize.CommafWithDigits(v, digits)
}

// FormatPct renders a signed percentage. Missing values render blank.
func FormatPct(v float64, digits int) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%+.*f%%", digits, v)
}

// Table renders records as a plain-text table. The caller sorts first.
func Table(records []model.MetricRecord, digits int) string {
	cols := []Column{ColTicker, ColCurrentPrice, ColMax, ColDrawdown, ColRecoverRatio, ColError}

	rows := make([][]string, 0, len(records)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = headings[c]
	}
	rows = append(rows, header)

	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			r.Ticker,
			FormatNumber(r.CurrentPrice, digits),
			FormatNumber(r.HistoricalMax, digits),
			FormatPct(r.DrawdownPct, digits),
			FormatPct(r.RecoverRatioPct, digits),
			r.Error,
		})
	}

	widths := make([]int, len(cols))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for ri, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == 0 || i == len(cols)-1 {
				b.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
			} else {
				b.WriteString(fmt.Sprintf("%*s", widths[i], cell))
			}
		}
		b.WriteString("\n")
		if ri == 0 {
			for i, w := range widths {
				if i > 0 {
					b.WriteString("  ")
				}
				b.WriteString(strings.Repeat("-", w))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
