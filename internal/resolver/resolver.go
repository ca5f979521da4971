package resolver

import (
	"errors"
	"fmt"
	"math"

	"DrawdownMonitor/internal/model"
	"DrawdownMonitor/internal/source"
)

// ErrPriceUnavailable means every resolution tier was exhausted for a symbol.
var ErrPriceUnavailable = errors.New("resolver: current price unavailable")

// quoteProbes lists the snapshot fields in priority order. The first present,
// strictly-positive value wins.
var quoteProbes = []func(*model.Quote) *float64{
	func(q *model.Quote) *float64 { return q.LastPrice },
	func(q *model.Quote) *float64 { return q.RegularMarketPrice },
	func(q *model.Quote) *float64 { return q.LastTradedPrice },
	func(q *model.Quote) *float64 { return q.PreviousClose },
}

// infoProbes lists the extended metadata fields in priority order.
var infoProbes = []func(*model.Info) *float64{
	func(i *model.Info) *float64 { return i.CurrentPrice },
	func(i *model.Info) *float64 { return i.RegularMarketPrice },
	func(i *model.Info) *float64 { return i.RegularMarketPreviousClose },
	func(i *model.Info) *float64 { return i.PreviousClose },
	func(i *model.Info) *float64 { return i.NavPrice },
}

// intradayAttempts widen the window when the narrow request comes back empty.
var intradayAttempts = []struct {
	rng      source.Range
	interval source.Interval
}{
	{source.Range1D, source.Interval1Min},
	{source.Range5D, source.Interval5Min},
}

// Resolver extracts a usable current price from an unreliable source.
type Resolver struct {
	Source source.Source
}

// New creates a Resolver backed by the given source.
func New(src source.Source) *Resolver {
	return &Resolver{Source: src}
}

// Resolve tries four tiers in strict order: quote snapshot fields, extended
// info fields, recent intraday closes, then recent daily closes. Source
// faults inside a tier are swallowed and the next tier is tried; only total
// exhaustion returns ErrPriceUnavailable.
func (r *Resolver) Resolve(symbol string) (float64, error) {
	// 1) fast snapshot fields
	if q, err := r.Source.Quote(symbol); err == nil && q != nil {
		for _, probe := range quoteProbes {
			if v := probe(q); v != nil && usable(*v) {
				return *v, nil
			}
		}
	}

	// 2) extended info fields
	if info, err := r.Source.Info(symbol); err == nil && info != nil {
		for _, probe := range infoProbes {
			if v := probe(info); v != nil && usable(*v) {
				return *v, nil
			}
		}
	}

	// 3) intraday bars, widening the window if the narrow one is empty
	for _, a := range intradayAttempts {
		bars, err := r.Source.Bars(symbol, a.rng, a.interval, false)
		if err != nil {
			continue
		}
		if v, ok := lastUsableClose(bars); ok {
			return v, nil
		}
	}

	// 4) recent daily closes
	if bars, err := r.Source.Bars(symbol, source.Range1Mo, source.Interval1Day, false); err == nil {
		if v, ok := lastUsableClose(bars); ok {
			return v, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
}

// usable is the validity predicate applied at every tier: finite and
// strictly positive.
func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func lastUsableClose(bars []model.OHLCV) (float64, bool) {
	for i := len(bars) - 1; i >= 0; i-- {
		if usable(bars[i].Close) {
			return bars[i].Close, true
		}
	}
	return 0, false
}
