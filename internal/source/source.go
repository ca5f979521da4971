package source

import (
	"errors"

	"DrawdownMonitor/internal/model"
)

// Range selects how far back a bar request reaches.
type Range string

const (
	Range1D  Range = "1d"
	Range5D  Range = "5d"
	Range1Mo Range = "1mo"
	RangeMax Range = "max"
)

// Interval selects the bar granularity.
type Interval string

const (
	Interval1Min Interval = "1m"
	Interval5Min Interval = "5m"
	Interval1Day Interval = "1d"
)

// ErrNotSupported is returned by sources that do not implement a given
// endpoint. Callers treat it like any other source fault and fall back.
var ErrNotSupported = errors.New("source: endpoint not supported")

// Source defines the interface for fetching market data. Implementations are
// allowed to be unreliable: any method may return an error or a partially
// populated result, and callers must cope.
type Source interface {
	// Quote returns the fast snapshot fields for a symbol.
	Quote(symbol string) (*model.Quote, error)
	// Info returns the slower extended metadata fields for a symbol.
	Info(symbol string) (*model.Info, error)
	// Bars returns bars for the given range and interval in chronological
	// order. Adjusted selects split/dividend-adjusted prices.
	Bars(symbol string, rng Range, interval Interval, adjusted bool) ([]model.OHLCV, error)
	Name() string
}
