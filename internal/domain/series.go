package domain

import "time"

// PricePoint is a single daily OHLCV bar.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is an ordered (ascending by date) sequence of daily bars for
// one ticker. It is built once per analysis call and never mutated; missing
// trading days are simply absent.
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of bars in the series.
func (s *PriceSeries) Len() int {
	return len(s.Points)
}

// Closes returns the closing prices in date order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// LastClose returns the most recent closing price, or 0 for an empty series.
func (s *PriceSeries) LastClose() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Close
}

// Quote is the latest known price for a ticker.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Fundamentals is a snapshot of company fundamentals used by the composite
// analyzer. Fields are pointers because the upstream provider omits values
// for ETFs and many non-US listings.
type Fundamentals struct {
	Ticker        string   `json:"ticker"`
	Name          string   `json:"name,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	MarketCap     *int64   `json:"market_cap,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
}
