package source

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func yahooTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
			// Second bar is a null placeholder (holiday) and must be skipped.
			w.Write([]byte(`{"chart":{"result":[{
				"timestamp":[1700000000,1700086400,1700172800],
				"indicators":{"quote":[{
					"open":[10.0,null,12.0],
					"high":[10.5,null,12.5],
					"low":[9.5,null,11.5],
					"close":[10.2,null,12.2],
					"volume":[1000,null,3000]
				}]}
			}],"error":null}}`))
		case strings.HasPrefix(r.URL.Path, "/v7/finance/quote"):
			w.Write([]byte(`{"quoteResponse":{"result":[{
				"regularMarketPrice":101.25,
				"regularMarketPreviousClose":100.5
			}],"error":null}}`))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			w.Write([]byte(`{"quoteSummary":{"result":[{
				"price":{"regularMarketPrice":{"raw":101.25,"fmt":"101.25"}},
				"summaryDetail":{"previousClose":{"raw":100.5,"fmt":"100.50"},"navPrice":{"raw":99.9,"fmt":"99.90"}}
			}],"error":null}}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestYahooBars(t *testing.T) {
	srv := yahooTestServer(t)
	defer srv.Close()

	s := NewYahooSource("")
	s.BaseURL = srv.URL

	bars, err := s.Bars("SPY", RangeMax, Interval1Day, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars (null bar skipped), got %d", len(bars))
	}
	if bars[0].High != 10.5 || bars[1].Close != 12.2 {
		t.Errorf("unexpected bar values: %+v", bars)
	}
	if !bars[0].Time.Before(bars[1].Time) {
		t.Error("bars must be chronological")
	}
}

func TestYahooQuote(t *testing.T) {
	srv := yahooTestServer(t)
	defer srv.Close()

	s := NewYahooSource("")
	s.BaseURL = srv.URL

	q, err := s.Quote("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.RegularMarketPrice == nil || *q.RegularMarketPrice != 101.25 {
		t.Errorf("unexpected regular market price: %+v", q.RegularMarketPrice)
	}
	if q.PreviousClose == nil || *q.PreviousClose != 100.5 {
		t.Errorf("unexpected previous close: %+v", q.PreviousClose)
	}
	if q.LastPrice != nil {
		t.Errorf("absent post-market price should stay nil, got %v", *q.LastPrice)
	}
}

func TestYahooInfo(t *testing.T) {
	srv := yahooTestServer(t)
	defer srv.Close()

	s := NewYahooSource("")
	s.BaseURL = srv.URL

	info, err := s.Info("VOO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.RegularMarketPrice == nil || *info.RegularMarketPrice != 101.25 {
		t.Errorf("unexpected regular market price: %+v", info.RegularMarketPrice)
	}
	if info.NavPrice == nil || *info.NavPrice != 99.9 {
		t.Errorf("unexpected nav price: %+v", info.NavPrice)
	}
	if info.CurrentPrice != nil {
		t.Error("absent financialData.currentPrice should stay nil")
	}
}

func TestYahooBars_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewYahooSource("")
	s.BaseURL = srv.URL

	if _, err := s.Bars("SPY", Range1D, Interval1Min, false); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
