package portfolio

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/pkg/formulas"
)

// SeriesProvider supplies cached price history for evaluation.
type SeriesProvider interface {
	GetPriceSeries(ticker string) (*domain.PriceSeries, error)
}

// FundamentalsProvider supplies company metadata for sector grouping.
type FundamentalsProvider interface {
	GetFundamentals(ticker string) (*domain.Fundamentals, error)
}

const (
	momentumWindow   = 30
	volatilityWindow = 60
	rsiLength        = 14
)

// AssetReport is the per-holding slice of an evaluation.
type AssetReport struct {
	Ticker     string   `json:"ticker"`
	Weight     float64  `json:"weight"`
	Price      *float64 `json:"price,omitempty"`
	RSI        *float64 `json:"rsi,omitempty"`
	Momentum   *float64 `json:"momentum_30d,omitempty"`
	Volatility *float64 `json:"volatility,omitempty"`
	Sector     string   `json:"sector,omitempty"`
}

// Report is the full evaluation of a portfolio.
type Report struct {
	Assets          []AssetReport `json:"assets"`
	Cash            float64       `json:"cash"`
	Volatility      *float64      `json:"volatility,omitempty"`
	Herfindahl      float64       `json:"herfindahl"`
	EffectiveAssets float64       `json:"effective_assets"`
	MaxWeight       float64       `json:"max_weight"`
	Diversification float64       `json:"diversification_score"`
	MeanCorrelation *float64      `json:"mean_correlation,omitempty"`
	Recommendations []string      `json:"recommendations"`
}

// Evaluator computes risk and concentration metrics for a portfolio.
type Evaluator struct {
	series       SeriesProvider
	fundamentals FundamentalsProvider
	log          zerolog.Logger
}

// NewEvaluator creates a portfolio evaluator.
func NewEvaluator(series SeriesProvider, fundamentals FundamentalsProvider, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		series:       series,
		fundamentals: fundamentals,
		log:          log.With().Str("module", "portfolio").Logger(),
	}
}

// Evaluate validates the portfolio invariants and computes the report.
// Per-asset metrics that cannot be resolved (unknown ticker, short
// history) are left nil rather than failing the whole evaluation.
func (e *Evaluator) Evaluate(p *Portfolio) (*Report, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	report := &Report{Cash: p.Cash, Recommendations: []string{}}
	returnsByTicker := make(map[string][]float64, len(p.Holdings))

	sumVar := 0.0
	volKnownWeight := 0.0
	for _, h := range p.Holdings {
		asset := AssetReport{Ticker: h.Ticker, Weight: h.Weight}
		if series, err := e.series.GetPriceSeries(h.Ticker); err == nil && series.Len() > 0 {
			closes := series.Closes()
			price := closes[len(closes)-1]
			asset.Price = &price
			asset.RSI = formulas.CalculateRSI(closes, rsiLength)
			asset.Momentum = formulas.CalculateMomentum(closes, momentumWindow)
			returns := formulas.LogReturns(closes)
			if len(returns) >= volatilityWindow {
				returns = returns[len(returns)-volatilityWindow:]
			}
			if len(returns) >= 2 {
				vol := formulas.AnnualizedVolatility(returns) * 100
				asset.Volatility = &vol
				sumVar += h.Weight * h.Weight * vol * vol
				volKnownWeight += h.Weight
				returnsByTicker[h.Ticker] = returns
			}
		} else if err != nil {
			e.log.Debug().Err(err).Str("ticker", h.Ticker).Msg("no history for holding")
		}
		if e.fundamentals != nil {
			if f, err := e.fundamentals.GetFundamentals(h.Ticker); err == nil && f != nil {
				asset.Sector = f.Sector
			}
		}
		report.Assets = append(report.Assets, asset)
	}
	sort.Slice(report.Assets, func(i, j int) bool { return report.Assets[i].Ticker < report.Assets[j].Ticker })

	if volKnownWeight > 0 {
		vol := math.Sqrt(sumVar)
		report.Volatility = &vol
	}

	hhi := 0.0
	maxWeight := 0.0
	for _, h := range p.Holdings {
		hhi += h.Weight * h.Weight
		if h.Weight > maxWeight {
			maxWeight = h.Weight
		}
	}
	hhi += p.Cash * p.Cash
	report.Herfindahl = hhi
	report.MaxWeight = maxWeight
	if hhi > 0 {
		report.EffectiveAssets = 1 / hhi
	}
	report.Diversification = (1 - hhi) * 100
	report.MeanCorrelation = meanPairwiseCorrelation(p.Holdings, returnsByTicker)
	report.Recommendations = recommendations(p, report)

	return report, nil
}

// validate enforces the portfolio invariants, returning an
// invalid_portfolio error on violation.
func validate(p *Portfolio) error {
	if p == nil || len(p.Holdings) == 0 {
		return domain.NewError(domain.ErrInvalidPortfolio, "holdings", "portfolio has no holdings")
	}
	seen := make(map[string]bool, len(p.Holdings))
	for _, h := range p.Holdings {
		if h.Weight < 0 {
			return domain.NewError(domain.ErrInvalidPortfolio, h.Ticker, "negative weight %.4f", h.Weight)
		}
		if seen[h.Ticker] {
			return domain.NewError(domain.ErrInvalidPortfolio, h.Ticker, "duplicate ticker")
		}
		seen[h.Ticker] = true
	}
	if p.Cash < 0 {
		return domain.NewError(domain.ErrInvalidPortfolio, "cash", "negative cash fraction %.4f", p.Cash)
	}
	if !p.Valid() {
		return domain.NewError(domain.ErrInvalidPortfolio, "holdings",
			"weights sum to %.4f, expected 1.0", p.TotalWeight())
	}
	return nil
}

// meanPairwiseCorrelation averages the correlation of daily log returns
// over every holding pair with history. Pairs with mismatched sample
// counts are truncated to the shorter series.
func meanPairwiseCorrelation(holdings []Holding, returns map[string][]float64) *float64 {
	tickers := make([]string, 0, len(returns))
	for _, h := range holdings {
		if _, ok := returns[h.Ticker]; ok {
			tickers = append(tickers, h.Ticker)
		}
	}
	if len(tickers) < 2 {
		return nil
	}
	sort.Strings(tickers)

	sum := 0.0
	pairs := 0
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			a, b := returns[tickers[i]], returns[tickers[j]]
			n := len(a)
			if len(b) < n {
				n = len(b)
			}
			c := formulas.Correlation(a[len(a)-n:], b[len(b)-n:])
			if !math.IsNaN(c) {
				sum += c
				pairs++
			}
		}
	}
	if pairs == 0 {
		return nil
	}
	mean := sum / float64(pairs)
	return &mean
}

func recommendations(p *Portfolio, r *Report) []string {
	var recs []string
	if r.MaxWeight > 0.35 {
		recs = append(recs, "largest position exceeds 35% of the portfolio, consider trimming it")
	}
	if r.EffectiveAssets > 0 && r.EffectiveAssets < 3 {
		recs = append(recs, "effective number of assets is below 3, consider adding holdings")
	}
	if r.MeanCorrelation != nil && *r.MeanCorrelation > 0.7 {
		recs = append(recs, "holdings are highly correlated, diversification benefit is limited")
	}
	if p.Cash > 0.25 {
		recs = append(recs, "cash allocation above 25% may drag on long-term returns")
	}
	if r.Volatility != nil && *r.Volatility > 30 {
		recs = append(recs, "estimated volatility is high, review position sizing")
	}
	if len(recs) == 0 {
		recs = append(recs, "composition looks balanced")
	}
	return recs
}
