package calculator

import (
	"fmt"
	"math"
	"strconv"
	"testing"
	"time"

	"DrawdownMonitor/internal/model"
)

func barsFromHighs(highs []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(highs))
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, h := range highs {
		bars[i] = model.OHLCV{Time: day.AddDate(0, 0, i), High: h, Close: h * 0.99}
	}
	return bars
}

func TestCompute_KnownScenario(t *testing.T) {
	// Highs 100,90,80,120 with current price 60: running peaks 100,100,100,120
	// give running drawdowns 0,-10,-20,0, all shallower than -50.
	m, err := Compute(barsFromHighs([]float64{100, 90, 80, 120}), 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.HistoricalMax != 120 {
		t.Errorf("historical max: expected 120, got %v", m.HistoricalMax)
	}
	if m.DrawdownPct != -50.0 {
		t.Errorf("drawdown: expected -50.0, got %v", m.DrawdownPct)
	}
	if m.RecoverRatioPct != 100.0 {
		t.Errorf("recover ratio: expected 100.0, got %v", m.RecoverRatioPct)
	}
}

func TestCompute_SingleRow(t *testing.T) {
	m, err := Compute(barsFromHighs([]float64{100}), 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.HistoricalMax != 100 {
		t.Errorf("historical max: expected 100, got %v", m.HistoricalMax)
	}
	if m.DrawdownPct != -20.0 {
		t.Errorf("drawdown: expected -20.0, got %v", m.DrawdownPct)
	}
	if m.RecoverRatioPct != 100.0 {
		t.Errorf("recover ratio: expected 100.0, got %v", m.RecoverRatioPct)
	}
}

func TestCompute_EmptyHistory(t *testing.T) {
	m, err := Compute(nil, 50)
	if err != nil {
		t.Fatalf("empty history must not error, got: %v", err)
	}
	if !math.IsNaN(m.HistoricalMax) || !math.IsNaN(m.DrawdownPct) || !math.IsNaN(m.RecoverRatioPct) {
		t.Errorf("expected all-NaN metrics for empty history, got %+v", m)
	}
}

func TestCompute_NoUsableHigh(t *testing.T) {
	bars := []model.OHLCV{
		{High: 0},
		{High: math.NaN()},
		{High: -5},
	}
	if _, err := Compute(bars, 50); err != ErrMalformedHistory {
		t.Fatalf("expected ErrMalformedHistory, got %v", err)
	}
}

func TestCompute_PositiveDrawdownNotClamped(t *testing.T) {
	// A live price above a stale historical max yields a positive drawdown.
	m, err := Compute(barsFromHighs([]float64{100, 95}), 110)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.DrawdownPct != 10.0 {
		t.Errorf("expected +10.0 drawdown, got %v", m.DrawdownPct)
	}
	// No running drawdown can exceed zero, so none is shallower than +10.
	if m.RecoverRatioPct != 0.0 {
		t.Errorf("expected 0.0 recover ratio, got %v", m.RecoverRatioPct)
	}
}

func TestCompute_RecoverRatioMonotonic(t *testing.T) {
	bars := barsFromHighs([]float64{100, 95, 80, 90, 120, 70, 110})
	prices := []float64{115, 100, 90, 70, 50, 20}

	prev := -1.0
	for _, p := range prices {
		m, err := Compute(bars, p)
		if err != nil {
			t.Fatalf("price %v: unexpected error: %v", p, err)
		}
		if m.RecoverRatioPct < prev {
			t.Errorf("price %v: recover ratio %v dropped below %v for a deeper drawdown",
				p, m.RecoverRatioPct, prev)
		}
		prev = m.RecoverRatioPct
	}
}

func TestRound_RoundTrip(t *testing.T) {
	values := []float64{-50.004999, 0.005, 99.994, 1234.56789, -0.001}
	for _, digits := range []int{0, 1, 2, 4} {
		for _, raw := range values {
			rounded := Round(raw, digits)
			formatted := fmt.Sprintf("%.*f", digits, rounded)
			parsed, err := strconv.ParseFloat(formatted, 64)
			if err != nil {
				t.Fatalf("parse %q: %v", formatted, err)
			}
			tolerance := 0.5 * math.Pow(10, -float64(digits))
			if math.Abs(parsed-raw) > tolerance+1e-12 {
				t.Errorf("digits=%d raw=%v: parsed %v differs by more than %v", digits, raw, parsed, tolerance)
			}
		}
	}
}

func TestRound_NaNPassesThrough(t *testing.T) {
	if !math.IsNaN(Round(math.NaN(), 2)) {
		t.Error("expected NaN to pass through Round")
	}
}
