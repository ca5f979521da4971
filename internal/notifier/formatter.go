package notifier

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"DrawdownMonitor/internal/model"
	"DrawdownMonitor/internal/render"
)

// FormatBatchReport formats a completed batch into a Telegram message:
// a summary line, the deepest drawdowns, and any per-ticker errors.
func FormatBatchReport(records []model.MetricRecord, digits int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📉 <b>Drawdown Monitor</b> | %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC")))

	failed := 0
	for i := range records {
		if records[i].Failed() {
			failed++
		}
	}
	b.WriteString(fmt.Sprintf("Tickers: %d | Errors: %d\n\n", len(records), failed))

	if deepest := FormatTopDrawdowns(records, 5, digits); deepest != "" {
		b.WriteString("📊 <b>Deepest drawdowns:</b>\n")
		b.WriteString(deepest)
	}

	for i := range records {
		r := &records[i]
		if r.Failed() {
			b.WriteString(fmt.Sprintf("⚠️ %s: %s\n", r.Ticker, r.Error))
		}
	}

	return b.String()
}

// FormatTopDrawdowns lists the n most negative drawdowns, one line each.
// Errored and missing records are skipped.
func FormatTopDrawdowns(records []model.MetricRecord, n, digits int) string {
	ok := make([]model.MetricRecord, 0, len(records))
	for i := range records {
		if !records[i].Failed() && !math.IsNaN(records[i].RawDrawdownPct) {
			ok = append(ok, records[i])
		}
	}
	sort.SliceStable(ok, func(i, j int) bool { return ok[i].RawDrawdownPct < ok[j].RawDrawdownPct })
	if len(ok) > n {
		ok = ok[:n]
	}

	var b strings.Builder
	for i := range ok {
		r := &ok[i]
		b.WriteString(fmt.Sprintf("  %s: %s from high %s (recover ratio %s)\n",
			r.Ticker,
			render.FormatPct(r.DrawdownPct, digits),
			render.FormatNumber(r.HistoricalMax, digits),
			render.FormatPct(r.RecoverRatioPct, digits)))
	}
	return b.String()
}

// FormatTable wraps the plain-text table in a <pre> block so Telegram keeps
// the column alignment.
func FormatTable(records []model.MetricRecord, digits int) string {
	return "<pre>" + render.Table(records, digits) + "</pre>"
}
