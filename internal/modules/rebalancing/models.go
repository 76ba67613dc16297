// Package rebalancing computes the trade set that moves current holdings
// toward a target allocation.
package rebalancing

// Side is the direction of a rebalance order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Priority buckets orders by drift magnitude.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Order is one suggested trade. WeightDelta is the absolute drift; Amount
// is the currency value when the portfolio value is known.
type Order struct {
	Ticker      string   `json:"ticker"`
	Side        Side     `json:"side"`
	WeightDelta float64  `json:"weight_delta"`
	Amount      *float64 `json:"amount,omitempty"`
	Priority    Priority `json:"priority"`
}

// Plan is the full rebalance proposal. Orders are sorted by ticker so the
// same inputs always produce the same plan.
type Plan struct {
	Orders              []Order            `json:"orders"`
	Target              map[string]float64 `json:"target"`
	TotalDrift          float64            `json:"total_drift"`
	NeedsRebalance      bool               `json:"needs_rebalance"`
	EstimatedCommission float64            `json:"estimated_commission"`
	Advice              string             `json:"advice"`
}
