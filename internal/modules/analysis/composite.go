// Package analysis combines indicator, trend, seasonality and fundamental
// signals into a single weighted verdict.
package analysis

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/config"
	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/internal/modules/indicators"
	"github.com/quantdesk/quantdesk/internal/modules/seasonality"
	"github.com/quantdesk/quantdesk/internal/modules/trend"
)

// RSI levels used to normalize the oscillator into a score.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// FundamentalsProvider supplies the fundamental snapshot for a ticker.
type FundamentalsProvider interface {
	GetFundamentals(ticker string) (*domain.Fundamentals, error)
}

// SeriesProvider supplies the price series for a ticker.
type SeriesProvider interface {
	GetPriceSeries(ticker string) (*domain.PriceSeries, error)
}

// Analyzer orchestrates the sub-analyzers into one verdict.
type Analyzer struct {
	indicators   *indicators.Service
	trend        *trend.Analyzer
	seasonality  *seasonality.Analyzer
	fundamentals FundamentalsProvider
	series       SeriesProvider
	defaults     config.IndicatorDefaults
	weights      config.CompositeWeights
	log          zerolog.Logger
}

// NewAnalyzer creates a new composite analyzer. Weights must sum to 1;
// they are renormalized over the signals that actually resolve.
func NewAnalyzer(
	ind *indicators.Service,
	tr *trend.Analyzer,
	seas *seasonality.Analyzer,
	fund FundamentalsProvider,
	series SeriesProvider,
	defaults config.IndicatorDefaults,
	weights config.CompositeWeights,
	log zerolog.Logger,
) *Analyzer {
	return &Analyzer{
		indicators:   ind,
		trend:        tr,
		seasonality:  seas,
		fundamentals: fund,
		series:       series,
		defaults:     defaults,
		weights:      weights,
		log:          log.With().Str("module", "analysis").Logger(),
	}
}

// Analyze runs every sub-analyzer for the ticker and combines whatever
// succeeded. It fails only when no sub-signal resolves at all.
func (a *Analyzer) Analyze(ticker string) (*Result, error) {
	series, err := a.series.GetPriceSeries(ticker)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Ticker: ticker,
		Price:  series.LastClose(),
	}

	var signals []Signal
	var rawWeights []float64

	// RSI
	if rsi, err := a.indicators.RSI(ticker, a.defaults.RSIPeriod); err == nil {
		result.RSI = rsi
		signals = append(signals, Signal{
			Name:   "rsi",
			Score:  rsiScore(rsi.RSI),
			Detail: fmt.Sprintf("RSI(%d)=%.1f", rsi.Period, rsi.RSI),
		})
		rawWeights = append(rawWeights, a.weights.RSI)
	} else {
		a.log.Debug().Err(err).Str("ticker", ticker).Msg("RSI signal unavailable")
	}

	// Trend
	if tr, err := a.trend.Analyze(ticker); err == nil {
		result.Trend = tr
		signals = append(signals, Signal{
			Name:   "trend",
			Score:  trendScore(tr),
			Detail: fmt.Sprintf("%s (MA%d vs MA%d)", tr.State, tr.ShortWindow, tr.LongWindow),
		})
		rawWeights = append(rawWeights, a.weights.Trend)
	} else {
		a.log.Debug().Err(err).Str("ticker", ticker).Msg("Trend signal unavailable")
	}

	// Seasonality
	if seas, err := a.seasonality.Analyze(ticker); err == nil {
		result.Seasonality = seas
		signals = append(signals, Signal{
			Name:   "seasonality",
			Score:  seasonalityScore(seas),
			Detail: fmt.Sprintf("month rank %d of %d", monthRank(seas), len(seas.Buckets)),
		})
		rawWeights = append(rawWeights, a.weights.Seasonality)
	} else {
		a.log.Debug().Err(err).Str("ticker", ticker).Msg("Seasonality signal unavailable")
	}

	// Fundamentals
	if fund, err := a.fundamentals.GetFundamentals(ticker); err == nil {
		result.Name = fund.Name
		result.Fundamentals = summarize(fund)
		if score, ok := fundamentalsScore(fund); ok {
			signals = append(signals, Signal{
				Name:   "fundamentals",
				Score:  score,
				Detail: fundamentalsDetail(fund),
			})
			rawWeights = append(rawWeights, a.weights.Fundamentals)
		}
	} else {
		a.log.Debug().Err(err).Str("ticker", ticker).Msg("Fundamentals unavailable")
	}

	if len(signals) == 0 {
		return nil, domain.InsufficientData("signals", 0, 1)
	}

	// Renormalize the configured weights over the signals that resolved.
	var weightSum float64
	for _, w := range rawWeights {
		weightSum += w
	}
	var score float64
	for i := range signals {
		w := rawWeights[i]
		if weightSum > 0 {
			w /= weightSum
		} else {
			w = 1.0 / float64(len(signals))
		}
		signals[i].Weight = w
		score += signals[i].Score * w
	}

	result.Signals = signals
	result.Score = score
	result.Verdict = verdictFor(score)
	result.Rationale = rationale(result.Verdict, signals)

	// Best-effort extras for the complete analysis payload.
	if macd, err := a.indicators.MACD(ticker, a.defaults.MACDFast, a.defaults.MACDSlow, a.defaults.MACDSignal); err == nil {
		result.MACD = macd
	}
	if boll, err := a.indicators.Bollinger(ticker, a.defaults.BollingerPeriod, a.defaults.BollingerMultiplier); err == nil {
		result.Bollinger = boll
	}
	if vol, err := a.indicators.Volatility(ticker, 0); err == nil {
		result.Volatility = vol
	}

	return result, nil
}

// rsiScore maps RSI into [-1, 1]: oversold is a buy (+1), overbought a
// sell (-1), linear in between.
func rsiScore(rsi float64) float64 {
	if rsi <= rsiOversold {
		return 1
	}
	if rsi >= rsiOverbought {
		return -1
	}
	return (50 - rsi) / 20
}

// trendScore maps the trend state into {-1, 0, +1}, halved when the
// analyzer ran on reduced history.
func trendScore(tr *trend.Result) float64 {
	var score float64
	switch tr.State {
	case trend.StateUptrend:
		score = 1
	case trend.StateDowntrend:
		score = -1
	}
	if tr.Confidence == trend.ConfidenceReduced {
		score /= 2
	}
	return score
}

// seasonalityScore converts the current month's rank among all buckets
// into [-1, 1]: +1 for the historically best month, -1 for the worst.
// Low-confidence buckets contribute half.
func seasonalityScore(p *seasonality.Profile) float64 {
	n := len(p.Buckets)
	if n < 2 {
		return 0
	}
	rank := monthRank(p)
	if rank == 0 {
		return 0
	}
	score := 1 - 2*float64(rank-1)/float64(n-1)
	for _, b := range p.Buckets {
		if b.Month == p.CurrentMonth && b.LowConfidence {
			score /= 2
			break
		}
	}
	return score
}

// monthRank returns the 1-based rank of the current month, 0 if absent.
func monthRank(p *seasonality.Profile) int {
	for i, b := range p.Buckets {
		if b.Month == p.CurrentMonth {
			return i + 1
		}
	}
	return 0
}

// fundamentalsScore derives a coarse valuation score from the snapshot.
// Returns ok=false when nothing usable is present (typical for ETFs).
func fundamentalsScore(f *domain.Fundamentals) (float64, bool) {
	if f.PERatio == nil && f.DividendYield == nil {
		return 0, false
	}

	var score float64
	if f.PERatio != nil {
		// PE 25 is neutral; cheaper is better.
		score = (25 - *f.PERatio) / 25
		if score > 1 {
			score = 1
		}
		if score < -1 {
			score = -1
		}
	}
	if f.DividendYield != nil && *f.DividendYield > 0.03 {
		score += 0.25
		if score > 1 {
			score = 1
		}
	}
	return score, true
}

func fundamentalsDetail(f *domain.Fundamentals) string {
	var parts []string
	if f.PERatio != nil {
		parts = append(parts, fmt.Sprintf("PE=%.1f", *f.PERatio))
	}
	if f.DividendYield != nil {
		parts = append(parts, fmt.Sprintf("yield=%.2f%%", *f.DividendYield*100))
	}
	return strings.Join(parts, " ")
}

func summarize(f *domain.Fundamentals) *FundamentalsSummary {
	s := &FundamentalsSummary{
		Sector:        f.Sector,
		PERatio:       f.PERatio,
		DividendYield: f.DividendYield,
	}
	if f.MarketCap != nil {
		b := float64(*f.MarketCap) / 1e9
		s.MarketCapB = &b
	}
	return s
}

func rationale(verdict Verdict, signals []Signal) string {
	parts := make([]string, 0, len(signals))
	for _, s := range signals {
		parts = append(parts, fmt.Sprintf("%s %.2f×%.2f", s.Name, s.Score, s.Weight))
	}
	return fmt.Sprintf("%s: %s", verdict, strings.Join(parts, ", "))
}
