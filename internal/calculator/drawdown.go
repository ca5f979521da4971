package calculator

import (
	"errors"
	"math"

	"DrawdownMonitor/internal/model"
)

// ErrMalformedHistory means no bar in the history carries a usable High.
var ErrMalformedHistory = errors.New("calculator: history has no usable High values")

// Metrics holds the unrounded drawdown statistics for one instrument.
type Metrics struct {
	HistoricalMax   float64
	DrawdownPct     float64
	RecoverRatioPct float64 // NaN when the history has zero rows
}

// Compute derives the all-time high, the signed drawdown of currentPrice from
// that high, and the recovery ratio: the percentage of trading days whose
// running peak-to-date drawdown was shallower than today's. A current price
// above a stale historical max yields a positive drawdown; it is not clamped.
//
// A zero-row history returns all-NaN metrics without error — callers are
// expected to have rejected empty histories upstream. A non-empty history
// where no High is usable returns ErrMalformedHistory.
func Compute(bars []model.OHLCV, currentPrice float64) (Metrics, error) {
	nan := math.NaN()
	if len(bars) == 0 {
		return Metrics{HistoricalMax: nan, DrawdownPct: nan, RecoverRatioPct: nan}, nil
	}

	histMax := math.Inf(-1)
	found := false
	for _, b := range bars {
		if usableHigh(b.High) && b.High > histMax {
			histMax = b.High
			found = true
		}
	}
	if !found {
		return Metrics{}, ErrMalformedHistory
	}

	drawdown := (currentPrice - histMax) / histMax * 100.0

	// Recovery ratio: count days whose running drawdown sat above today's.
	peak := math.NaN()
	shallower := 0
	for _, b := range bars {
		if usableHigh(b.High) && (math.IsNaN(peak) || b.High > peak) {
			peak = b.High
		}
		dd := (b.High/peak - 1.0) * 100.0 // NaN before the first usable High
		if dd > drawdown {
			shallower++
		}
	}
	ratio := float64(shallower) / float64(len(bars)) * 100.0

	return Metrics{
		HistoricalMax:   histMax,
		DrawdownPct:     drawdown,
		RecoverRatioPct: ratio,
	}, nil
}

func usableHigh(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Round rounds v to the given number of decimal digits. NaN passes through.
func Round(v float64, digits int) float64 {
	if math.IsNaN(v) {
		return v
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
