package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateRSI calculates the Relative Strength Index using Wilder's smoothing.
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods
//
// The averages are seeded with a simple mean of the first N deltas and then
// smoothed exponentially (Wilder). When the average loss is zero RSI is 100.
//
// Returns the current RSI value (0-100) or nil if fewer than length+1 closes
// are available.
func CalculateRSI(closes []float64, length int) *float64 {
	if length <= 0 {
		return nil
	}
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)

	if len(rsi) > 0 && !isNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}

	return nil
}
