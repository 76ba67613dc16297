package analysis

import (
	"github.com/quantdesk/quantdesk/internal/modules/indicators"
	"github.com/quantdesk/quantdesk/internal/modules/seasonality"
	"github.com/quantdesk/quantdesk/internal/modules/trend"
)

// Verdict is the bucketed composite recommendation.
type Verdict string

const (
	VerdictStrongBuy  Verdict = "strong-buy"
	VerdictBuy        Verdict = "buy"
	VerdictHold       Verdict = "hold"
	VerdictSell       Verdict = "sell"
	VerdictStrongSell Verdict = "strong-sell"
)

// Score thresholds for the verdict buckets.
const (
	ThresholdStrongBuy  = 0.5
	ThresholdBuy        = 0.2
	ThresholdSell       = -0.2
	ThresholdStrongSell = -0.5
)

// Signal is one contributing sub-signal, normalized to [-1, 1].
type Signal struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"` // renormalized weight actually applied
	Detail string  `json:"detail,omitempty"`
}

// Result is the combined verdict with every sub-result that produced it.
type Result struct {
	Ticker   string   `json:"ticker"`
	Name     string   `json:"name,omitempty"`
	Price    float64  `json:"price"`
	Score    float64  `json:"score"`
	Verdict  Verdict  `json:"verdict"`
	Signals  []Signal `json:"signals"`
	Rationale string  `json:"rationale"`

	RSI          *indicators.RSIResult        `json:"rsi,omitempty"`
	MACD         *indicators.MACDResult       `json:"macd,omitempty"`
	Bollinger    *indicators.BollingerResult  `json:"bollinger,omitempty"`
	Volatility   *indicators.VolatilityResult `json:"volatility,omitempty"`
	Trend        *trend.Result                `json:"trend,omitempty"`
	Seasonality  *seasonality.Profile         `json:"seasonality,omitempty"`
	Fundamentals *FundamentalsSummary         `json:"fundamentals,omitempty"`
}

// FundamentalsSummary is the slice of the fundamental snapshot the verdict
// actually uses.
type FundamentalsSummary struct {
	Sector        string   `json:"sector,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	MarketCapB    *float64 `json:"market_cap_bln,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
}

func verdictFor(score float64) Verdict {
	switch {
	case score >= ThresholdStrongBuy:
		return VerdictStrongBuy
	case score >= ThresholdBuy:
		return VerdictBuy
	case score > ThresholdSell:
		return VerdictHold
	case score > ThresholdStrongSell:
		return VerdictSell
	default:
		return VerdictStrongSell
	}
}
