package optimization

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/internal/modules/portfolio"
)

type fakeStore struct {
	series map[string][]float64
}

func (f *fakeStore) GetPriceSeries(ticker string) (*domain.PriceSeries, error) {
	closes, ok := f.series[ticker]
	if !ok {
		return nil, domain.NotFound(ticker)
	}
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]domain.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = domain.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return &domain.PriceSeries{Ticker: ticker, Points: points}, nil
}

// oscillating series whose daily log-return magnitude controls volatility
func noisySeries(n int, amplitude float64) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		if i%2 == 0 {
			price *= 1 + amplitude
		} else {
			price *= 1 - amplitude
		}
		closes[i] = price
	}
	return closes
}

func sumWeights(weights map[string]float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}

func newOptimizer(store *fakeStore) *Optimizer {
	return NewOptimizer(store, zerolog.Nop())
}

func TestPropose_WeightsSumToOneAcrossProfiles(t *testing.T) {
	store := &fakeStore{series: map[string][]float64{
		"AAA": noisySeries(300, 0.01),
		"BBB": noisySeries(300, 0.03),
		"DDD": noisySeries(300, 0.005),
	}}
	o := newOptimizer(store)
	universe := Universe{Equities: []string{"AAA", "BBB"}, Bonds: []string{"DDD"}}

	for _, risk := range []RiskTolerance{RiskLow, RiskMedium, RiskHigh} {
		for _, horizon := range []int{1, 5, 20} {
			profile := RiskProfile{Capital: 10000, Objective: ObjectiveBalanced, HorizonYears: horizon, Risk: risk}
			proposal, err := o.Propose(profile, universe)
			require.NoError(t, err)

			assert.InDelta(t, 1.0, sumWeights(proposal.Weights), 1e-9)
			for ticker, w := range proposal.Weights {
				assert.GreaterOrEqual(t, w, 0.0, "weight for %s", ticker)
				assert.InDelta(t, w*10000, proposal.Amounts[ticker], 1e-6)
			}
		}
	}
}

func TestPropose_InverseVolatilityEquitySleeve(t *testing.T) {
	store := &fakeStore{series: map[string][]float64{
		"AAA": noisySeries(300, 0.01), // calm
		"BBB": noisySeries(300, 0.03), // volatile
	}}
	o := newOptimizer(store)

	profile := RiskProfile{Capital: 10000, Objective: ObjectiveBalanced, HorizonYears: 5, Risk: RiskMedium}
	proposal, err := o.Propose(profile, Universe{Equities: []string{"AAA", "BBB"}})
	require.NoError(t, err)

	assert.Greater(t, proposal.Weights["AAA"], proposal.Weights["BBB"],
		"the calmer candidate gets the larger weight")
}

func TestPropose_RiskToleranceOrdersCashAndEquity(t *testing.T) {
	store := &fakeStore{series: map[string][]float64{"AAA": noisySeries(300, 0.01)}}
	o := newOptimizer(store)
	universe := Universe{Equities: []string{"AAA"}, Bonds: []string{"DDD"}}

	equityByRisk := map[RiskTolerance]float64{}
	cashByRisk := map[RiskTolerance]float64{}
	for _, risk := range []RiskTolerance{RiskLow, RiskMedium, RiskHigh} {
		profile := RiskProfile{Capital: 10000, HorizonYears: 5, Risk: risk}
		proposal, err := o.Propose(profile, universe)
		require.NoError(t, err)
		equityByRisk[risk] = proposal.Weights["AAA"]
		cashByRisk[risk] = proposal.Weights[portfolio.CashTicker]
	}

	assert.Less(t, equityByRisk[RiskLow], equityByRisk[RiskMedium])
	assert.Less(t, equityByRisk[RiskMedium], equityByRisk[RiskHigh])
	assert.Greater(t, cashByRisk[RiskLow], cashByRisk[RiskMedium])
	assert.Greater(t, cashByRisk[RiskMedium], cashByRisk[RiskHigh])
}

func TestPropose_LongerHorizonLowersCash(t *testing.T) {
	store := &fakeStore{series: map[string][]float64{"AAA": noisySeries(300, 0.01)}}
	o := newOptimizer(store)
	universe := Universe{Equities: []string{"AAA"}}

	short, err := o.Propose(
		RiskProfile{Capital: 10000, HorizonYears: 1, Risk: RiskMedium}, universe)
	require.NoError(t, err)
	long, err := o.Propose(
		RiskProfile{Capital: 10000, HorizonYears: 20, Risk: RiskMedium}, universe)
	require.NoError(t, err)

	assert.Greater(t, short.Weights[portfolio.CashTicker], long.Weights[portfolio.CashTicker])
	assert.GreaterOrEqual(t, long.Weights[portfolio.CashTicker], 0.02)
}

func TestPropose_MissingHistoryFallsBackToSleeveAverage(t *testing.T) {
	store := &fakeStore{series: map[string][]float64{"AAA": noisySeries(300, 0.02)}}
	o := newOptimizer(store)

	profile := RiskProfile{Capital: 10000, HorizonYears: 5, Risk: RiskMedium}
	proposal, err := o.Propose(profile, Universe{Equities: []string{"AAA", "ZZZ"}})
	require.NoError(t, err)

	// ZZZ has no history, so it is weighted at the sleeve mean volatility
	assert.InDelta(t, proposal.Weights["AAA"], proposal.Weights["ZZZ"], 1e-9)
	assert.InDelta(t, 1.0, sumWeights(proposal.Weights), 1e-9)
}

func TestPropose_AssetPlans(t *testing.T) {
	store := &fakeStore{series: map[string][]float64{
		"AAA": noisySeries(300, 0.01),
		"DDD": noisySeries(300, 0.002),
	}}
	o := newOptimizer(store)

	profile := RiskProfile{Capital: 10000, Objective: ObjectiveGrowth, HorizonYears: 5, Risk: RiskMedium}
	proposal, err := o.Propose(profile,
		Universe{Equities: []string{"AAA"}, Bonds: []string{"DDD"}})
	require.NoError(t, err)

	require.Len(t, proposal.Assets, 2)
	assert.Equal(t, "AAA", proposal.Assets[0].Ticker)
	assert.Equal(t, "DDD", proposal.Assets[1].Ticker)

	aaa := proposal.Assets[0]
	require.NotNil(t, aaa.Price)
	require.NotNil(t, aaa.Shares)
	assert.Equal(t, int(aaa.Amount / *aaa.Price), *aaa.Shares)
	require.NotNil(t, aaa.Volatility)
	assert.Greater(t, *aaa.Volatility, 0.0)
	require.NotNil(t, aaa.Momentum)
	assert.False(t, math.IsNaN(*aaa.Momentum))
	assert.Greater(t, proposal.TotalInvested, 0.0)
	assert.LessOrEqual(t, proposal.TotalInvested, 10000.0)
	assert.Contains(t, proposal.Note, "growth")
}

func TestPropose_Validation(t *testing.T) {
	o := newOptimizer(&fakeStore{})
	universe := Universe{Equities: []string{"AAA"}}

	cases := map[string]RiskProfile{
		"zero capital":     {Capital: 0, HorizonYears: 5},
		"negative capital": {Capital: -100, HorizonYears: 5},
		"zero horizon":     {Capital: 1000, HorizonYears: 0},
		"bad objective":    {Capital: 1000, HorizonYears: 5, Objective: "yolo"},
		"bad risk":         {Capital: 1000, HorizonYears: 5, Risk: "extreme"},
	}
	for name, profile := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := o.Propose(profile, universe)
			var derr *domain.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domain.ErrInvalidParameter, derr.Kind)
		})
	}

	t.Run("empty universe", func(t *testing.T) {
		_, err := o.Propose(RiskProfile{Capital: 1000, HorizonYears: 5}, Universe{})
		var derr *domain.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domain.ErrInvalidParameter, derr.Kind)
	})

	t.Run("defaults applied", func(t *testing.T) {
		store := &fakeStore{series: map[string][]float64{"AAA": noisySeries(300, 0.01)}}
		proposal, err := newOptimizer(store).Propose(
			RiskProfile{Capital: 1000, HorizonYears: 5}, universe)
		require.NoError(t, err)
		assert.Equal(t, ObjectiveBalanced, proposal.Profile.Objective)
		assert.Equal(t, RiskMedium, proposal.Profile.Risk)
	})
}
