package resolver

import (
	"errors"
	"math"
	"testing"

	"DrawdownMonitor/internal/model"
	"DrawdownMonitor/internal/source"
)

func f(v float64) *float64 { return &v }

func closeBars(closes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Close: c}
	}
	return bars
}

func TestResolve_QuoteTier(t *testing.T) {
	r := New(&source.MockSource{
		QuoteFn: func(string) (*model.Quote, error) {
			return &model.Quote{RegularMarketPrice: f(101.5)}, nil
		},
	})
	got, err := r.Resolve("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 101.5 {
		t.Errorf("expected 101.5, got %v", got)
	}
}

func TestResolve_QuoteProbeOrder(t *testing.T) {
	// LastPrice outranks PreviousClose when both are usable.
	r := New(&source.MockSource{
		QuoteFn: func(string) (*model.Quote, error) {
			return &model.Quote{LastPrice: f(55), PreviousClose: f(54)}, nil
		},
	})
	got, _ := r.Resolve("SPY")
	if got != 55 {
		t.Errorf("expected LastPrice 55 to win, got %v", got)
	}
}

func TestResolve_RejectsNonPositive(t *testing.T) {
	// Zero, negative and NaN fields are skipped in favor of the next probe.
	r := New(&source.MockSource{
		QuoteFn: func(string) (*model.Quote, error) {
			return &model.Quote{
				LastPrice:          f(0),
				RegularMarketPrice: f(-3),
				LastTradedPrice:    f(math.NaN()),
				PreviousClose:      f(99),
			}, nil
		},
	})
	got, err := r.Resolve("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 99 {
		t.Errorf("expected 99, got %v", got)
	}
}

func TestResolve_FallsToInfoTier(t *testing.T) {
	src := &source.MockSource{
		QuoteFn: func(string) (*model.Quote, error) {
			return nil, errors.New("quote endpoint down")
		},
		InfoFn: func(string) (*model.Info, error) {
			return &model.Info{NavPrice: f(42.42)}, nil
		},
	}
	got, err := New(src).Resolve("VOO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42.42 {
		t.Errorf("expected 42.42, got %v", got)
	}
}

func TestResolve_IntradayWidening(t *testing.T) {
	// The 1d/1m request is empty; the 5d/5m window has the price.
	src := &source.MockSource{
		BarsFn: func(_ string, rng source.Range, interval source.Interval, _ bool) ([]model.OHLCV, error) {
			if rng == source.Range1D && interval == source.Interval1Min {
				return nil, nil
			}
			if rng == source.Range5D && interval == source.Interval5Min {
				return closeBars(50.5, 51.25), nil
			}
			return nil, errors.New("unexpected request")
		},
	}
	got, err := New(src).Resolve("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 51.25 {
		t.Errorf("expected last 5m close 51.25, got %v", got)
	}
}

func TestResolve_DailyFallback(t *testing.T) {
	src := &source.MockSource{
		BarsFn: func(_ string, rng source.Range, interval source.Interval, _ bool) ([]model.OHLCV, error) {
			if rng == source.Range1Mo && interval == source.Interval1Day {
				// Trailing unusable closes are skipped.
				return closeBars(88, 89.5, math.NaN(), 0), nil
			}
			return nil, errors.New("intraday down")
		},
	}
	got, err := New(src).Resolve("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 89.5 {
		t.Errorf("expected 89.5, got %v", got)
	}
}

func TestResolve_Exhaustion(t *testing.T) {
	src := &source.MockSource{} // every endpoint errors
	_, err := New(src).Resolve("NOPE")
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable, got %v", err)
	}
	if src.QuoteCalls.Load() != 1 || src.InfoCalls.Load() != 1 {
		t.Error("expected quote and info tiers to be probed once each")
	}
	if n := src.BarsCalls.Load(); n != 3 {
		t.Errorf("expected 3 bar requests (1d/1m, 5d/5m, 1mo/1d), got %d", n)
	}
}
