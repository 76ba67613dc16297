// Package trend derives a directional state from moving-average
// relationships over a daily price series.
package trend

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/pkg/formulas"
)

// Moving-average windows and classification thresholds.
const (
	ShortWindow = 50
	LongWindow  = 200

	// Two averages within this relative distance are considered flat.
	SidewaysTolerance = 0.005

	// Bars over which the MA gap must widen for a confirmed uptrend.
	GapLookback = 20
)

// State is the directional classification.
type State string

const (
	StateUptrend   State = "uptrend"
	StateDowntrend State = "downtrend"
	StateSideways  State = "sideways"
)

// Confidence marks whether the full 200-bar window was available.
type Confidence string

const (
	ConfidenceFull    Confidence = "full"
	ConfidenceReduced Confidence = "reduced"
)

// Result carries the trend state plus the moving averages that produced it.
type Result struct {
	Ticker      string     `json:"ticker"`
	State       State      `json:"state"`
	ShortMA     float64    `json:"short_ma"`
	LongMA      float64    `json:"long_ma"`
	ShortWindow int        `json:"short_window"`
	LongWindow  int        `json:"long_window"`
	Price       float64    `json:"price"`
	Confidence  Confidence `json:"confidence"`
}

// SeriesProvider supplies the price series for a ticker.
type SeriesProvider interface {
	GetPriceSeries(ticker string) (*domain.PriceSeries, error)
}

// Analyzer classifies price trends.
type Analyzer struct {
	provider SeriesProvider
	log      zerolog.Logger
}

// NewAnalyzer creates a new trend analyzer.
func NewAnalyzer(provider SeriesProvider, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		log:      log.With().Str("module", "trend").Logger(),
	}
}

// Analyze computes the trend state for a ticker. With fewer than 200 bars
// but at least 50, shorter windows are substituted and the result is
// flagged reduced-confidence instead of failing.
func (a *Analyzer) Analyze(ticker string) (*Result, error) {
	series, err := a.provider.GetPriceSeries(ticker)
	if err != nil {
		return nil, err
	}

	closes := series.Closes()
	if len(closes) < ShortWindow {
		return nil, domain.InsufficientData("history", len(closes), ShortWindow)
	}

	short, long := ShortWindow, LongWindow
	confidence := ConfidenceFull
	if len(closes) < LongWindow {
		// Fall back to short/long over what we have.
		long = len(closes)
		confidence = ConfidenceReduced
	}

	return a.classify(ticker, closes, short, long, confidence), nil
}

func (a *Analyzer) classify(ticker string, closes []float64, short, long int, confidence Confidence) *Result {
	shortMA := formulas.CalculateSMA(closes, short)
	longMA := formulas.CalculateSMA(closes, long)

	result := &Result{
		Ticker:      ticker,
		ShortMA:     *shortMA,
		LongMA:      *longMA,
		ShortWindow: short,
		LongWindow:  long,
		Price:       closes[len(closes)-1],
		Confidence:  confidence,
	}

	switch {
	case *longMA != 0 && math.Abs(*shortMA-*longMA)/math.Abs(*longMA) < SidewaysTolerance:
		result.State = StateSideways
	case *shortMA < *longMA:
		result.State = StateDowntrend
	case gapWidened(closes, short, long):
		result.State = StateUptrend
	default:
		// Short MA is above the long one but the gap is closing; the
		// advance is stalling, so we do not call it an uptrend.
		result.State = StateSideways
	}

	return result
}

// gapWidened reports whether the short/long MA gap is larger now than it
// was GapLookback bars ago. With too little history for the comparison the
// current positive gap is taken at face value.
func gapWidened(closes []float64, short, long int) bool {
	if len(closes) < long+GapLookback {
		return true
	}

	current := maGap(closes, short, long)
	previous := maGap(closes[:len(closes)-GapLookback], short, long)
	return current > previous
}

func maGap(closes []float64, short, long int) float64 {
	shortMA := formulas.CalculateSMA(closes, short)
	longMA := formulas.CalculateSMA(closes, long)
	if shortMA == nil || longMA == nil {
		return 0
	}
	return *shortMA - *longMA
}
