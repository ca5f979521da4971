package engine

import (
	"sync"

	"DrawdownMonitor/internal/calculator"
	"DrawdownMonitor/internal/history"
	"DrawdownMonitor/internal/model"
	"DrawdownMonitor/internal/resolver"
)

// ProgressFunc receives incremental completion counts during a batch. It is
// called from the collector, not from workers, so a slow consumer delays
// result assembly but never a ticker computation.
type ProgressFunc func(completed, total int)

// Engine fans per-ticker metric computations out across a bounded worker
// pool. One ticker's failure never aborts its siblings or the batch.
type Engine struct {
	Resolver    *resolver.Resolver
	History     *history.Cache
	RoundDigits int
	Progress    ProgressFunc // optional
}

// New creates an Engine with the given collaborators.
func New(res *resolver.Resolver, hist *history.Cache, roundDigits int) *Engine {
	return &Engine{Resolver: res, History: hist, RoundDigits: roundDigits}
}

type task struct {
	idx    int
	ticker string
}

type outcome struct {
	idx    int
	record model.MetricRecord
}

// ComputeAll computes metrics for every ticker using at most maxWorkers
// concurrent workers (at least 1, never more than the ticker count) and
// returns exactly one record per input ticker, in input order. Workers
// complete in arbitrary order; the collector reassembles by index and fires
// the progress callback after each completion.
func (e *Engine) ComputeAll(tickers []string, maxWorkers int) []model.MetricRecord {
	total := len(tickers)
	if total == 0 {
		return nil
	}

	workers := maxWorkers
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan task)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				outcomes <- outcome{idx: t.idx, record: e.computeOne(t.ticker)}
			}
		}()
	}

	go func() {
		for i, tk := range tickers {
			tasks <- task{idx: i, ticker: tk}
		}
		close(tasks)
		wg.Wait()
		close(outcomes)
	}()

	records := make([]model.MetricRecord, total)
	completed := 0
	for o := range outcomes {
		records[o.idx] = o.record
		completed++
		if e.Progress != nil {
			e.Progress(completed, total)
		}
	}
	return records
}

// computeOne is the per-ticker isolation boundary: any failure from the
// resolver, the history cache, or the calculator becomes an errored record.
func (e *Engine) computeOne(ticker string) model.MetricRecord {
	price, err := e.Resolver.Resolve(ticker)
	if err != nil {
		return model.ErrorRecord(ticker, err)
	}

	bars, err := e.History.Get(ticker, false)
	if err != nil {
		return model.ErrorRecord(ticker, err)
	}

	m, err := calculator.Compute(bars, price)
	if err != nil {
		return model.ErrorRecord(ticker, err)
	}

	d := e.RoundDigits
	return model.MetricRecord{
		Ticker:             ticker,
		CurrentPrice:       calculator.Round(price, d),
		HistoricalMax:      calculator.Round(m.HistoricalMax, d),
		DrawdownPct:        calculator.Round(m.DrawdownPct, d),
		RecoverRatioPct:    calculator.Round(m.RecoverRatioPct, d),
		RawCurrentPrice:    price,
		RawHistoricalMax:   m.HistoricalMax,
		RawDrawdownPct:     m.DrawdownPct,
		RawRecoverRatioPct: m.RecoverRatioPct,
	}
}
