package formulas

import (
	"github.com/markcheno/go-talib"
)

// MACD holds the three MACD components for the latest bar.
type MACD struct {
	Line      float64 `json:"line"`      // EMA(fast) - EMA(slow)
	Signal    float64 `json:"signal"`    // EMA of the MACD line
	Histogram float64 `json:"histogram"` // Line - Signal
}

// CalculateMACD calculates Moving Average Convergence Divergence.
//
// MACD Formula:
//
//	MACD Line = EMA(close, fast) - EMA(close, slow)
//	Signal    = EMA(MACD Line, signalPeriod)
//	Histogram = MACD Line - Signal
//
// Requires at least slow+signalPeriod closes so the signal line has a
// defined value; returns nil otherwise.
func CalculateMACD(closes []float64, fast, slow, signalPeriod int) *MACD {
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 || fast >= slow {
		return nil
	}
	if len(closes) < slow+signalPeriod {
		return nil
	}

	line, signal, hist := talib.Macd(closes, fast, slow, signalPeriod)

	last := len(line) - 1
	if last < 0 || isNaN(line[last]) || isNaN(signal[last]) {
		return nil
	}

	return &MACD{
		Line:      line[last],
		Signal:    signal[last],
		Histogram: hist[last],
	}
}
