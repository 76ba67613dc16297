package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/pkg/logger"
)

type staticProvider struct {
	series map[string]*domain.PriceSeries
}

func (p *staticProvider) GetPriceSeries(ticker string) (*domain.PriceSeries, error) {
	if s, ok := p.series[ticker]; ok {
		return s, nil
	}
	return nil, domain.NotFound(ticker)
}

func seriesOf(ticker string, closes []float64) *domain.PriceSeries {
	points := make([]domain.PricePoint, len(closes))
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		points[i] = domain.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return &domain.PriceSeries{Ticker: ticker, Points: points}
}

func newAnalyzer(series map[string]*domain.PriceSeries) *Analyzer {
	log := logger.New(logger.Config{Level: "error"})
	return NewAnalyzer(&staticProvider{series: series}, log)
}

func TestAnalyze_Uptrend(t *testing.T) {
	// Steadily accelerating rise: MA50 above MA200 with a widening gap.
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5 + float64(i*i)*0.002
	}
	a := newAnalyzer(map[string]*domain.PriceSeries{"UP": seriesOf("UP", closes)})

	result, err := a.Analyze("UP")
	require.NoError(t, err)
	assert.Equal(t, StateUptrend, result.State)
	assert.Equal(t, ConfidenceFull, result.Confidence)
	assert.Greater(t, result.ShortMA, result.LongMA)
	assert.Equal(t, 200, result.LongWindow)
}

func TestAnalyze_Downtrend(t *testing.T) {
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = 500 - float64(i)
	}
	a := newAnalyzer(map[string]*domain.PriceSeries{"DOWN": seriesOf("DOWN", closes)})

	result, err := a.Analyze("DOWN")
	require.NoError(t, err)
	assert.Equal(t, StateDowntrend, result.State)
	assert.Less(t, result.ShortMA, result.LongMA)
}

func TestAnalyze_Sideways(t *testing.T) {
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = 100 // flat: both MAs identical
	}
	a := newAnalyzer(map[string]*domain.PriceSeries{"FLAT": seriesOf("FLAT", closes)})

	result, err := a.Analyze("FLAT")
	require.NoError(t, err)
	assert.Equal(t, StateSideways, result.State)
}

func TestAnalyze_ReducedConfidenceFallback(t *testing.T) {
	closes := make([]float64, 120) // between 50 and 199 bars
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	a := newAnalyzer(map[string]*domain.PriceSeries{"MID": seriesOf("MID", closes)})

	result, err := a.Analyze("MID")
	require.NoError(t, err)
	assert.Equal(t, ConfidenceReduced, result.Confidence)
	assert.Equal(t, 120, result.LongWindow)
}

func TestAnalyze_InsufficientData(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	a := newAnalyzer(map[string]*domain.PriceSeries{"TINY": seriesOf("TINY", closes)})

	_, err := a.Analyze("TINY")
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrInsufficientData, derr.Kind)
}

func TestAnalyze_UnknownTicker(t *testing.T) {
	a := newAnalyzer(nil)

	_, err := a.Analyze("NOPE")
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrNotFound, derr.Kind)
}
