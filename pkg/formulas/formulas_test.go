package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func risingSeries(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

func constantSeries(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

func TestCalculateRSI_MonotonicIncrease(t *testing.T) {
	rsi := CalculateRSI(risingSeries(20), 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 100.0, *rsi, 1e-9, "all gains should give RSI=100")
}

func TestCalculateRSI_MonotonicDecrease(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	rsi := CalculateRSI(closes, 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 0.0, *rsi, 1e-9, "all losses should give RSI=0")
}

func TestCalculateRSI_Range(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 103, 108, 107, 110, 106, 111, 109, 113, 112, 115, 114, 118}
	rsi := CalculateRSI(closes, 14)
	require.NotNil(t, rsi)
	assert.GreaterOrEqual(t, *rsi, 0.0)
	assert.LessOrEqual(t, *rsi, 100.0)
}

func TestCalculateRSI_InsufficientData(t *testing.T) {
	assert.Nil(t, CalculateRSI(risingSeries(14), 14), "needs period+1 closes")
	assert.Nil(t, CalculateRSI(nil, 14))
}

func TestCalculateRSI_InvalidPeriod(t *testing.T) {
	assert.Nil(t, CalculateRSI(risingSeries(20), 0))
	assert.Nil(t, CalculateRSI(risingSeries(20), -3))
}

func TestCalculateMomentum(t *testing.T) {
	closes := constantSeries(15, 100)
	closes[len(closes)-1] = 110

	m := CalculateMomentum(closes, 10)
	require.NotNil(t, m)
	assert.InDelta(t, 10.0, *m, 1e-9)
}

func TestCalculateMomentum_InsufficientData(t *testing.T) {
	assert.Nil(t, CalculateMomentum(risingSeries(10), 10))
}

func TestCalculateMACD_FlatSeries(t *testing.T) {
	macd := CalculateMACD(constantSeries(40, 50), 12, 26, 9)
	require.NotNil(t, macd)
	assert.InDelta(t, 0.0, macd.Line, 1e-9)
	assert.InDelta(t, 0.0, macd.Signal, 1e-9)
	assert.InDelta(t, 0.0, macd.Histogram, 1e-9)
}

func TestCalculateMACD_HistogramIdentity(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}

	macd := CalculateMACD(closes, 12, 26, 9)
	require.NotNil(t, macd)
	assert.InDelta(t, macd.Line-macd.Signal, macd.Histogram, 1e-9)
}

func TestCalculateMACD_InsufficientData(t *testing.T) {
	assert.Nil(t, CalculateMACD(risingSeries(30), 12, 26, 9), "needs slow+signal closes")
}

func TestCalculateMACD_InvalidPeriods(t *testing.T) {
	closes := risingSeries(60)
	assert.Nil(t, CalculateMACD(closes, 0, 26, 9))
	assert.Nil(t, CalculateMACD(closes, 26, 12, 9), "fast must be shorter than slow")
}

func TestCalculateBollingerBands_Ordering(t *testing.T) {
	closes := []float64{100, 102, 99, 104, 101, 106, 103, 108, 105, 110, 107, 112, 109, 114, 111, 116, 113, 118, 115, 120, 117, 122}

	for _, mult := range []float64{0, 0.5, 1, 2, 3} {
		bands := CalculateBollingerBands(closes, 20, mult)
		require.NotNil(t, bands, "multiplier %v", mult)
		assert.LessOrEqual(t, bands.Lower, bands.Middle)
		assert.LessOrEqual(t, bands.Middle, bands.Upper)
	}
}

func TestCalculateBollingerBands_ConstantSeries(t *testing.T) {
	bands := CalculateBollingerBands(constantSeries(25, 42), 20, 2)
	require.NotNil(t, bands)
	assert.InDelta(t, 42.0, bands.Upper, 1e-9)
	assert.InDelta(t, 42.0, bands.Middle, 1e-9)
	assert.InDelta(t, 42.0, bands.Lower, 1e-9)
}

func TestCalculateBollingerPosition_CollapsedBands(t *testing.T) {
	pos := CalculateBollingerPosition(constantSeries(25, 42), 20, 2)
	require.NotNil(t, pos)
	assert.InDelta(t, 0.5, pos.Position, 1e-9)
}

func TestCalculateBollingerBands_NegativeMultiplier(t *testing.T) {
	assert.Nil(t, CalculateBollingerBands(risingSeries(25), 20, -1))
}

func TestAnnualizedVolatility(t *testing.T) {
	vol := AnnualizedVolatility(LogReturns(constantSeries(30, 75)))
	assert.Equal(t, 0.0, vol, "constant prices have zero volatility")

	noisy := []float64{100, 103, 99, 105, 98, 107, 101}
	vol = AnnualizedVolatility(LogReturns(noisy))
	assert.Greater(t, vol, 0.0)
}

func TestLogReturns(t *testing.T) {
	rets := LogReturns([]float64{100, 110})
	require.Len(t, rets, 1)
	assert.InDelta(t, math.Log(1.1), rets[0], 1e-12)
}

func TestPopStdDev(t *testing.T) {
	// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2.
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, PopStdDev(data), 1e-12)
}

func TestCalculateSMA(t *testing.T) {
	sma := CalculateSMA([]float64{1, 2, 3, 4, 5}, 5)
	require.NotNil(t, sma)
	assert.InDelta(t, 3.0, *sma, 1e-12)

	assert.Nil(t, CalculateSMA([]float64{1, 2}, 5))
}

func TestCalculateEMA_ShortSeriesFallsBackToMean(t *testing.T) {
	ema := CalculateEMA([]float64{10, 20}, 5)
	require.NotNil(t, ema)
	assert.InDelta(t, 15.0, *ema, 1e-12)
}
