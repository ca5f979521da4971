package source

import (
	"errors"
	"sync/atomic"
	"time"

	"DrawdownMonitor/internal/model"
)

// MockSource returns controllable data for development and testing. Any
// endpoint without a configured func fails, which exercises the fallback
// paths of callers. Call counters are safe for concurrent use.
type MockSource struct {
	QuoteFn func(symbol string) (*model.Quote, error)
	InfoFn  func(symbol string) (*model.Info, error)
	BarsFn  func(symbol string, rng Range, interval Interval, adjusted bool) ([]model.OHLCV, error)

	QuoteCalls atomic.Int64
	InfoCalls  atomic.Int64
	BarsCalls  atomic.Int64
}

var errMockUnconfigured = errors.New("mock: endpoint not configured")

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Quote(symbol string) (*model.Quote, error) {
	m.QuoteCalls.Add(1)
	if m.QuoteFn == nil {
		return nil, errMockUnconfigured
	}
	return m.QuoteFn(symbol)
}

func (m *MockSource) Info(symbol string) (*model.Info, error) {
	m.InfoCalls.Add(1)
	if m.InfoFn == nil {
		return nil, errMockUnconfigured
	}
	return m.InfoFn(symbol)
}

func (m *MockSource) Bars(symbol string, rng Range, interval Interval, adjusted bool) ([]model.OHLCV, error) {
	m.BarsCalls.Add(1)
	if m.BarsFn == nil {
		return nil, errMockUnconfigured
	}
	return m.BarsFn(symbol, rng, interval, adjusted)
}

// GenerateBars produces count synthetic daily bars around basePrice, oldest
// first, for tests and dry runs.
func GenerateBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
