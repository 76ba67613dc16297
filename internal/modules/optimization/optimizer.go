package optimization

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/internal/modules/portfolio"
	"github.com/quantdesk/quantdesk/pkg/formulas"
)

const (
	momentumWindow   = 90
	volatilityWindow = 252

	minCash = 0.02
	maxCash = 0.30
	// horizon tilt in weight points per year away from the 5y baseline
	cashTiltPerYear = 0.005
	baselineHorizon = 5
)

// archetype is an equity/bond/cash mix for a risk tolerance.
type archetype struct {
	equity, bond, cash float64
}

var archetypes = map[RiskTolerance]archetype{
	RiskLow:    {equity: 0.35, bond: 0.50, cash: 0.15},
	RiskMedium: {equity: 0.60, bond: 0.30, cash: 0.10},
	RiskHigh:   {equity: 0.80, bond: 0.15, cash: 0.05},
}

// SeriesProvider supplies cached price history for candidate tickers.
type SeriesProvider interface {
	GetPriceSeries(ticker string) (*domain.PriceSeries, error)
}

// Optimizer builds allocation proposals.
type Optimizer struct {
	series SeriesProvider
	log    zerolog.Logger
}

// NewOptimizer creates an allocation optimizer.
func NewOptimizer(series SeriesProvider, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		series: series,
		log:    log.With().Str("module", "optimization").Logger(),
	}
}

// Propose maps the risk tolerance to an archetype mix, tilts the cash
// buffer by horizon, splits the equity sleeve inversely to each
// candidate's recent volatility and the bond sleeve equally. Candidates
// without usable history fall back to the sleeve average volatility.
func (o *Optimizer) Propose(profile RiskProfile, universe Universe) (*Proposal, error) {
	if err := validateProfile(&profile); err != nil {
		return nil, err
	}
	if len(universe.Equities) == 0 && len(universe.Bonds) == 0 {
		return nil, domain.InvalidParameter("universe", "candidate universe is empty")
	}

	mix := archetypes[profile.Risk]
	cash := clamp(mix.cash-cashTiltPerYear*float64(profile.HorizonYears-baselineHorizon), minCash, maxCash)
	// the tilt moves weight between cash and the equity sleeve
	equity := mix.equity + (mix.cash - cash)
	bond := mix.bond
	if len(universe.Bonds) == 0 {
		equity += bond
		bond = 0
	}
	if len(universe.Equities) == 0 {
		bond += equity
		equity = 0
	}

	vols := o.candidateVolatilities(universe.Equities)
	weights := make(map[string]float64, len(universe.Equities)+len(universe.Bonds)+1)
	for ticker, w := range inverseVolWeights(universe.Equities, vols, equity) {
		weights[ticker] = w
	}
	for _, ticker := range universe.Bonds {
		weights[ticker] += bond / float64(len(universe.Bonds))
	}
	weights[portfolio.CashTicker] = cash

	proposal := &Proposal{
		Profile: profile,
		Weights: weights,
		Amounts: make(map[string]float64, len(weights)),
		Note: fmt.Sprintf("%s allocation for a %s risk profile over %d years",
			profile.Objective, profile.Risk, profile.HorizonYears),
	}
	for ticker, w := range weights {
		proposal.Amounts[ticker] = w * profile.Capital
	}
	o.attachAssetPlans(proposal, vols)

	o.log.Info().
		Str("risk", string(profile.Risk)).
		Str("objective", string(profile.Objective)).
		Float64("cash", cash).
		Int("candidates", len(weights)-1).
		Msg("allocation proposed")
	return proposal, nil
}

func validateProfile(p *RiskProfile) error {
	if p.Capital <= 0 {
		return domain.InvalidParameter("capital", "capital must be positive, got %.2f", p.Capital)
	}
	if p.HorizonYears <= 0 {
		return domain.InvalidParameter("horizon_years", "horizon must be at least 1 year, got %d", p.HorizonYears)
	}
	if p.Objective == "" {
		p.Objective = ObjectiveBalanced
	}
	if p.Risk == "" {
		p.Risk = RiskMedium
	}
	switch p.Objective {
	case ObjectiveGrowth, ObjectiveIncome, ObjectiveBalanced:
	default:
		return domain.InvalidParameter("objective", "unknown objective %q", p.Objective)
	}
	if _, ok := archetypes[p.Risk]; !ok {
		return domain.InvalidParameter("risk_tolerance", "unknown risk tolerance %q", p.Risk)
	}
	return nil
}

// candidateVolatilities computes annualized volatility over the trailing
// year for each ticker with enough history.
func (o *Optimizer) candidateVolatilities(tickers []string) map[string]float64 {
	vols := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		series, err := o.series.GetPriceSeries(ticker)
		if err != nil || series.Len() < 2 {
			o.log.Debug().Str("ticker", ticker).Msg("no volatility for candidate")
			continue
		}
		returns := formulas.LogReturns(series.Closes())
		if len(returns) > volatilityWindow {
			returns = returns[len(returns)-volatilityWindow:]
		}
		if vol := formulas.AnnualizedVolatility(returns); vol > 0 {
			vols[ticker] = vol
		}
	}
	return vols
}

// inverseVolWeights distributes sleeve across tickers proportionally to
// 1/volatility. Tickers without a volatility get the mean of the known
// ones; with no volatilities at all the sleeve is split equally.
func inverseVolWeights(tickers []string, vols map[string]float64, sleeve float64) map[string]float64 {
	weights := make(map[string]float64, len(tickers))
	if len(tickers) == 0 || sleeve <= 0 {
		return weights
	}

	meanVol := 0.0
	for _, v := range vols {
		meanVol += v
	}
	if len(vols) > 0 {
		meanVol /= float64(len(vols))
	}

	inverses := make(map[string]float64, len(tickers))
	total := 0.0
	for _, ticker := range tickers {
		vol, ok := vols[ticker]
		if !ok {
			vol = meanVol
		}
		inv := 1.0
		if vol > 0 {
			inv = 1 / vol
		}
		inverses[ticker] = inv
		total += inv
	}
	for _, ticker := range tickers {
		weights[ticker] = sleeve * inverses[ticker] / total
	}
	return weights
}

// attachAssetPlans fills the per-candidate snapshot: last price, whole
// shares for the allocated amount, volatility and 90-day momentum.
func (o *Optimizer) attachAssetPlans(p *Proposal, vols map[string]float64) {
	tickers := make([]string, 0, len(p.Weights))
	for ticker := range p.Weights {
		if ticker != portfolio.CashTicker {
			tickers = append(tickers, ticker)
		}
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		plan := AssetPlan{Ticker: ticker, Weight: p.Weights[ticker], Amount: p.Amounts[ticker]}
		if vol, ok := vols[ticker]; ok {
			v := vol * 100
			plan.Volatility = &v
		}
		if series, err := o.series.GetPriceSeries(ticker); err == nil && series.Len() > 0 {
			closes := series.Closes()
			price := closes[len(closes)-1]
			plan.Price = &price
			if price > 0 {
				shares := int(plan.Amount / price)
				plan.Shares = &shares
				p.TotalInvested += float64(shares) * price
			}
			plan.Momentum = formulas.CalculateMomentum(closes, momentumWindow)
		}
		p.Assets = append(p.Assets, plan)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
