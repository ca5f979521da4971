package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Quote holds the fast snapshot fields a data source may expose for a symbol.
// Sources rarely populate every field; absent values stay nil.
type Quote struct {
	LastPrice          *float64
	RegularMarketPrice *float64
	LastTradedPrice    *float64
	PreviousClose      *float64
}

// Info holds the slower extended metadata fields. Like Quote, any field
// may be nil depending on instrument type (ETFs report NavPrice, equities
// usually CurrentPrice).
type Info struct {
	CurrentPrice               *float64
	RegularMarketPrice         *float64
	RegularMarketPreviousClose *float64
	PreviousClose              *float64
	NavPrice                   *float64
}
