// Package portfolio defines the portfolio model and implements validation,
// construction and evaluation of holdings sets.
package portfolio

import (
	"math"
	"time"
)

// CashTicker is the pseudo-ticker used for the cash sleeve.
const CashTicker = "CASH"

// WeightTolerance is the allowed deviation of the weight sum from 1.
const WeightTolerance = 1e-6

// NormalizeTolerance is the looser bound inside which an off-by-a-bit
// weight sum is silently rescaled instead of rejected.
const NormalizeTolerance = 0.01

// Holding is one position expressed as a fraction of the portfolio.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Portfolio is an immutable set of holdings plus a cash fraction.
// Invariant: sum of holding weights plus cash equals 1 within
// WeightTolerance, tickers are unique and sorted.
type Portfolio struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Holdings  []Holding         `json:"holdings"`
	Cash      float64           `json:"cash"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// TotalWeight returns the sum of holding weights plus cash.
func (p *Portfolio) TotalWeight() float64 {
	total := p.Cash
	for _, h := range p.Holdings {
		total += h.Weight
	}
	return total
}

// Weights returns the holdings as a map including the cash sleeve.
func (p *Portfolio) Weights() map[string]float64 {
	weights := make(map[string]float64, len(p.Holdings)+1)
	for _, h := range p.Holdings {
		weights[h.Ticker] = h.Weight
	}
	if p.Cash > 0 {
		weights[CashTicker] = p.Cash
	}
	return weights
}

// Valid reports whether the weight-sum invariant holds.
func (p *Portfolio) Valid() bool {
	return math.Abs(p.TotalWeight()-1) <= WeightTolerance
}
