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

// RestSource implements Source against a self-hosted bars/quote REST API.
// The API has no extended-info endpoint, so Info returns ErrNotSupported and
// price resolution falls through to the bar tiers.
type RestSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRestSource creates a new REST source with optional proxy support.
func NewRestSource(baseURL, apiKey, proxyURL string) *RestSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RestSource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *RestSource) Name() string { return "rest" }

func (s *RestSource) get(endpoint string, out any) error {
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return err
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("rest fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("rest: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rest decode: %w", err)
	}
	return nil
}

func (s *RestSource) Quote(symbol string) (*model.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", s.BaseURL, url.QueryEscape(symbol))
	var result struct {
		Price         *float64 `json:"price"`
		PreviousClose *float64 `json:"previous_close"`
	}
	if err := s.get(endpoint, &result); err != nil {
		return nil, err
	}
	return &model.Quote{
		LastPrice:     result.Price,
		PreviousClose: result.PreviousClose,
	}, nil
}

func (s *RestSource) Info(_ string) (*model.Info, error) {
	return nil, ErrNotSupported
}

// restBar is the expected JSON shape from the bars endpoint.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (s *RestSource) Bars(symbol string, rng Range, interval Interval, adjusted bool) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars?symbol=%s&range=%s&interval=%s&adjusted=%t",
		s.BaseURL, url.QueryEscape(symbol), rng, interval, adjusted)
	var restBars []restBar
	if err := s.get(endpoint, &restBars); err != nil {
		return nil, err
	}
	bars := make([]model.OHLCV, len(restBars))
	for i, rb := range restBars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
