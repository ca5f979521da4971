package source

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"DrawdownMonitor/internal/model"
)

// YahooSource implements Source using Yahoo Finance public endpoints.
type YahooSource struct {
	Client  *http.Client
	BaseURL string // overridable for tests
}

// NewYahooSource creates a new Yahoo Finance source with optional proxy support.
func NewYahooSource(proxyURL string) *YahooSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooSource{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: "https://query1.finance.yahoo.com",
	}
}

func (s *YahooSource) Name() string { return "yahoo" }

func (s *YahooSource) get(u string, out any) error {
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// yahooQuote is the response structure from the v7 quote API.
type yahooQuote struct {
	QuoteResponse struct {
		Result []struct {
			RegularMarketPrice         *float64 `json:"regularMarketPrice"`
			PostMarketPrice            *float64 `json:"postMarketPrice"`
			RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

func (s *YahooSource) Quote(symbol string) (*model.Quote, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", s.BaseURL, url.QueryEscape(symbol))
	var q yahooQuote
	if err := s.get(u, &q); err != nil {
		return nil, err
	}
	if q.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", q.QuoteResponse.Error.Description)
	}
	if len(q.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no quote for %s", symbol)
	}
	r := q.QuoteResponse.Result[0]
	return &model.Quote{
		LastPrice:          r.PostMarketPrice,
		RegularMarketPrice: r.RegularMarketPrice,
		PreviousClose:      r.RegularMarketPreviousClose,
	}, nil
}

// yahooValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

// yahooSummary is the response structure from the v10 quoteSummary API.
type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				RegularMarketPrice         *yahooValue `json:"regularMarketPrice"`
				RegularMarketPreviousClose *yahooValue `json:"regularMarketPreviousClose"`
			} `json:"price"`
			SummaryDetail *struct {
				PreviousClose *yahooValue `json:"previousClose"`
				NavPrice      *yahooValue `json:"navPrice"`
			} `json:"summaryDetail"`
			FinancialData *struct {
				CurrentPrice *yahooValue `json:"currentPrice"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func raw(v *yahooValue) *float64 {
	if v == nil {
		return nil
	}
	return v.Raw
}

func (s *YahooSource) Info(symbol string) (*model.Info, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,financialData",
		s.BaseURL, url.PathEscape(symbol))
	var sum yahooSummary
	if err := s.get(u, &sum); err != nil {
		return nil, err
	}
	if sum.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", sum.QuoteSummary.Error.Description)
	}
	if len(sum.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no summary for %s", symbol)
	}

	r := sum.QuoteSummary.Result[0]
	info := &model.Info{}
	if r.FinancialData != nil {
		info.CurrentPrice = raw(r.FinancialData.CurrentPrice)
	}
	if r.Price != nil {
		info.RegularMarketPrice = raw(r.Price.RegularMarketPrice)
		info.RegularMarketPreviousClose = raw(r.Price.RegularMarketPreviousClose)
	}
	if r.SummaryDetail != nil {
		info.PreviousClose = raw(r.SummaryDetail.PreviousClose)
		info.NavPrice = raw(r.SummaryDetail.NavPrice)
	}
	return info, nil
}

// yahooChart is the response structure from the v8 chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (s *YahooSource) Bars(symbol string, rng Range, interval Interval, adjusted bool) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s&includeAdjustedClose=true",
		s.BaseURL, url.PathEscape(symbol), interval, rng)

	var chart yahooChart
	if err := s.get(u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote indicators for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	var adj []interface{}
	if adjusted && len(result.Indicators.Adjclose) > 0 {
		adj = result.Indicators.Adjclose[0].Adjclose
	}

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(at(quote.Open, i))
		h := toFloat(at(quote.High, i))
		l := toFloat(at(quote.Low, i))
		c := toFloat(at(quote.Close, i))
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		if adj != nil && c != 0 {
			if ac := toFloat(at(adj, i)); ac != 0 {
				// Scale OHLC by the adjustment factor, like auto-adjusted feeds do.
				factor := ac / c
				o, h, l, c = o*factor, h*factor, l*factor, ac
			}
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(at(quote.Volume, i)),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func at(arr []interface{}, i int) interface{} {
	if i < 0 || i >= len(arr) {
		return nil
	}
	return arr[i]
}
