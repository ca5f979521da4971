package model

import "math"

// MetricRecord is the per-ticker result of one batch run. Numeric fields use
// NaN for missing values. Each record is either fully populated with an empty
// Error, or fully NaN with a non-empty Error — the one exception being
// RecoverRatioPct, which may be NaN on its own when the history has zero rows.
//
// The Raw* fields carry the unrounded values so the presentation layer can
// sort numerically regardless of display rounding.
type MetricRecord struct {
	Ticker string

	CurrentPrice    float64
	HistoricalMax   float64
	DrawdownPct     float64
	RecoverRatioPct float64

	RawCurrentPrice    float64
	RawHistoricalMax   float64
	RawDrawdownPct     float64
	RawRecoverRatioPct float64

	Error string
}

// Failed reports whether the ticker's computation errored.
func (r *MetricRecord) Failed() bool { return r.Error != "" }

// ErrorRecord builds a fully-missing record for a failed ticker.
func ErrorRecord(ticker string, err error) MetricRecord {
	nan := math.NaN()
	return MetricRecord{
		Ticker:             ticker,
		CurrentPrice:       nan,
		HistoricalMax:      nan,
		DrawdownPct:        nan,
		RecoverRatioPct:    nan,
		RawCurrentPrice:    nan,
		RawHistoricalMax:   nan,
		RawDrawdownPct:     nan,
		RawRecoverRatioPct: nan,
		Error:              err.Error(),
	}
}
