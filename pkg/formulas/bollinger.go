package formulas

import (
	"github.com/markcheno/go-talib"
)

// BollingerBands represents Bollinger Bands values
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// BollingerPosition represents where price is relative to Bollinger Bands.
// Range: 0.0 (at lower band) to 1.0 (at upper band).
type BollingerPosition struct {
	Position float64        `json:"position"`
	Bands    BollingerBands `json:"bands"`
}

// CalculateBollingerBands calculates Bollinger Bands.
//
// Bollinger Bands Formula:
//
//	Middle Band = SMA(close, length)
//	Upper Band  = Middle + (multiplier × population std deviation)
//	Lower Band  = Middle - (multiplier × population std deviation)
//
// For any multiplier >= 0 the result satisfies lower <= middle <= upper.
// Returns nil if fewer than length closes are available.
func CalculateBollingerBands(closes []float64, length int, stdDevMultiplier float64) *BollingerBands {
	if length <= 0 || stdDevMultiplier < 0 {
		return nil
	}
	if len(closes) < length {
		return nil
	}

	// MAType 0 = SMA; talib uses the population standard deviation.
	upper, middle, lower := talib.BBands(closes, length, stdDevMultiplier, stdDevMultiplier, 0)

	last := len(upper) - 1
	if last >= 0 && !isNaN(upper[last]) {
		return &BollingerBands{
			Upper:  upper[last],
			Middle: middle[last],
			Lower:  lower[last],
		}
	}

	return nil
}

// CalculateBollingerPosition calculates where the latest close sits within
// the bands: 0.0 at the lower band, 0.5 at the middle, 1.0 at the upper.
// Collapsed bands (zero width) place the price at the middle.
func CalculateBollingerPosition(closes []float64, length int, stdDevMultiplier float64) *BollingerPosition {
	if len(closes) == 0 {
		return nil
	}

	bands := CalculateBollingerBands(closes, length, stdDevMultiplier)
	if bands == nil {
		return nil
	}

	currentPrice := closes[len(closes)-1]
	bandWidth := bands.Upper - bands.Lower

	if bandWidth == 0 {
		return &BollingerPosition{Position: 0.5, Bands: *bands}
	}

	position := (currentPrice - bands.Lower) / bandWidth

	// Price can close outside the bands; clamp to the band range.
	if position < 0.0 {
		position = 0.0
	}
	if position > 1.0 {
		position = 1.0
	}

	return &BollingerPosition{Position: position, Bands: *bands}
}
