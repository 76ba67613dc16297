package rebalancing

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
)

const (
	highPriorityDrift   = 0.10
	mediumPriorityDrift = 0.05

	rebalanceSoonDrift = 0.10
	rebalanceNowDrift  = 0.15
)

// Rebalancer computes rebalance plans. The per-order fee feeds the
// commission estimate.
type Rebalancer struct {
	orderFee float64
	log      zerolog.Logger
}

// NewRebalancer creates a rebalancer with the given per-order fee.
func NewRebalancer(orderFee float64, log zerolog.Logger) *Rebalancer {
	return &Rebalancer{
		orderFee: orderFee,
		log:      log.With().Str("module", "rebalancing").Logger(),
	}
}

// Rebalance compares current and target weights over the union of their
// tickers and emits one order per ticker whose absolute drift exceeds the
// threshold. Drift is current minus target, so positive drift sells.
// Cash is a regular pseudo-ticker. An empty target means an equal split
// across the current tickers. A positive value prices the orders in
// currency.
func (rb *Rebalancer) Rebalance(current, target map[string]float64, threshold, value float64) (*Plan, error) {
	if threshold < 0 {
		return nil, domain.InvalidParameter("threshold", "threshold must be non-negative, got %.4f", threshold)
	}
	if value < 0 {
		return nil, domain.InvalidParameter("value", "portfolio value must be non-negative, got %.2f", value)
	}
	currentW, err := normalizeWeights(current, domain.ErrInvalidPortfolio, "current")
	if err != nil {
		return nil, err
	}
	if len(target) == 0 {
		target = equalSplit(currentW)
	}
	targetW, err := normalizeWeights(target, domain.ErrInvalidParameter, "target")
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(currentW)+len(targetW))
	seen := make(map[string]bool)
	for ticker := range currentW {
		seen[ticker] = true
		tickers = append(tickers, ticker)
	}
	for ticker := range targetW {
		if !seen[ticker] {
			tickers = append(tickers, ticker)
		}
	}
	sort.Strings(tickers)

	plan := &Plan{Orders: []Order{}, Target: targetW}
	for _, ticker := range tickers {
		drift := currentW[ticker] - targetW[ticker]
		plan.TotalDrift += math.Abs(drift)
		if math.Abs(drift) <= threshold {
			continue
		}
		order := Order{
			Ticker:      ticker,
			Side:        SideBuy,
			WeightDelta: math.Abs(drift),
			Priority:    priorityFor(math.Abs(drift)),
		}
		if drift > 0 {
			order.Side = SideSell
		}
		if value > 0 {
			amount := math.Abs(drift) * value
			order.Amount = &amount
		}
		plan.Orders = append(plan.Orders, order)
	}

	plan.NeedsRebalance = plan.TotalDrift > rebalanceSoonDrift
	plan.EstimatedCommission = float64(len(plan.Orders)) * rb.orderFee
	plan.Advice = adviceFor(plan.TotalDrift)

	rb.log.Debug().
		Int("orders", len(plan.Orders)).
		Float64("total_drift", plan.TotalDrift).
		Msg("rebalance plan computed")
	return plan, nil
}

// normalizeWeights upper-cases tickers, rejects negatives and duplicates
// and checks the sum against 1.
func normalizeWeights(weights map[string]float64, kind domain.ErrorKind, field string) (map[string]float64, error) {
	if len(weights) == 0 {
		return nil, domain.NewError(kind, field, "no weights given")
	}
	out := make(map[string]float64, len(weights))
	total := 0.0
	for raw, w := range weights {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			return nil, domain.NewError(kind, field, "empty ticker")
		}
		if w < 0 {
			return nil, domain.NewError(kind, ticker, "negative weight %.4f", w)
		}
		if _, dup := out[ticker]; dup {
			return nil, domain.NewError(kind, ticker, "duplicate ticker")
		}
		out[ticker] = w
		total += w
	}
	if math.Abs(total-1) > 0.01 {
		return nil, domain.NewError(kind, field, "weights sum to %.4f, expected 1.0", total)
	}
	return out, nil
}

func equalSplit(current map[string]float64) map[string]float64 {
	target := make(map[string]float64, len(current))
	for ticker := range current {
		target[ticker] = 1 / float64(len(current))
	}
	return target
}

func priorityFor(drift float64) Priority {
	switch {
	case drift > highPriorityDrift:
		return PriorityHigh
	case drift > mediumPriorityDrift:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func adviceFor(totalDrift float64) string {
	switch {
	case totalDrift > rebalanceNowDrift:
		return "rebalance now"
	case totalDrift > rebalanceSoonDrift:
		return "rebalance within a few months"
	default:
		return "no rebalance needed"
	}
}
