package portfolio

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
)

// Builder constructs validated portfolios from raw weight maps.
type Builder struct {
	log zerolog.Logger
}

// NewBuilder creates a portfolio builder.
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{log: log.With().Str("module", "portfolio").Logger()}
}

// Build validates a raw weight map and returns a portfolio. Weights must
// be non-negative and sum to 1; a sum within NormalizeTolerance of 1 is
// rescaled, anything further off is rejected. The CASH pseudo-ticker, if
// present, becomes the cash sleeve. Tickers are upper-cased, so "aapl"
// and "AAPL" count as duplicates.
func (b *Builder) Build(name string, weights map[string]float64, meta map[string]string) (*Portfolio, error) {
	if len(weights) == 0 {
		return nil, domain.NewError(domain.ErrInvalidComposition, "holdings", "at least one holding is required")
	}

	cash := 0.0
	seen := make(map[string]bool, len(weights))
	holdings := make([]Holding, 0, len(weights))
	for raw, w := range weights {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			return nil, domain.NewError(domain.ErrInvalidComposition, "ticker", "empty ticker")
		}
		if w < 0 {
			return nil, domain.NewError(domain.ErrInvalidComposition, ticker, "negative weight %.4f", w)
		}
		if seen[ticker] {
			return nil, domain.NewError(domain.ErrInvalidComposition, ticker, "duplicate ticker")
		}
		seen[ticker] = true
		if ticker == CashTicker {
			cash = w
			continue
		}
		holdings = append(holdings, Holding{Ticker: ticker, Weight: w})
	}

	total := cash
	for _, h := range holdings {
		total += h.Weight
	}
	if total <= 0 {
		return nil, domain.NewError(domain.ErrInvalidComposition, "holdings", "weights sum to zero")
	}
	if math.Abs(total-1) > NormalizeTolerance {
		return nil, domain.NewError(domain.ErrInvalidComposition, "holdings",
			"weights sum to %.4f, expected 1.0", total)
	}
	if math.Abs(total-1) > WeightTolerance {
		b.log.Debug().Float64("sum", total).Msg("normalizing weight sum")
		for i := range holdings {
			holdings[i].Weight /= total
		}
		cash /= total
	}

	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Ticker < holdings[j].Ticker })

	p := &Portfolio{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Holdings:  holdings,
		Cash:      cash,
		Meta:      meta,
	}
	b.log.Info().Str("id", p.ID).Int("holdings", len(holdings)).Float64("cash", cash).Msg("portfolio created")
	return p, nil
}
