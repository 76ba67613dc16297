// Package indicators computes technical indicators over daily price series.
// All operations are pure: they read an immutable series snapshot and
// return a self-describing result.
package indicators

import (
	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/pkg/formulas"
)

// SeriesProvider supplies the price series for a ticker.
type SeriesProvider interface {
	GetPriceSeries(ticker string) (*domain.PriceSeries, error)
}

// Service computes indicators for tickers.
type Service struct {
	provider SeriesProvider
	log      zerolog.Logger
}

// NewService creates a new indicators service.
func NewService(provider SeriesProvider, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log.With().Str("module", "indicators").Logger(),
	}
}

// RSI computes Wilder's Relative Strength Index over the given period.
func (s *Service) RSI(ticker string, period int) (*RSIResult, error) {
	if period <= 0 {
		return nil, domain.InvalidParameter("period", "period must be positive, got %d", period)
	}

	series, err := s.provider.GetPriceSeries(ticker)
	if err != nil {
		return nil, err
	}

	rsi := formulas.CalculateRSI(series.Closes(), period)
	if rsi == nil {
		return nil, domain.InsufficientData("period", series.Len(), period+1)
	}

	return &RSIResult{Kind: KindRSI, Ticker: ticker, Period: period, RSI: *rsi}, nil
}

// Momentum computes the percent price change over the given period.
func (s *Service) Momentum(ticker string, period int) (*MomentumResult, error) {
	if period <= 0 {
		return nil, domain.InvalidParameter("period", "period must be positive, got %d", period)
	}

	series, err := s.provider.GetPriceSeries(ticker)
	if err != nil {
		return nil, err
	}

	momentum := formulas.CalculateMomentum(series.Closes(), period)
	if momentum == nil {
		return nil, domain.InsufficientData("period", series.Len(), period+1)
	}

	return &MomentumResult{Kind: KindMomentum, Ticker: ticker, Period: period, Momentum: *momentum}, nil
}

// MACD computes the MACD line, signal line and histogram.
func (s *Service) MACD(ticker string, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, domain.InvalidParameter("period", "MACD periods must be positive")
	}
	if fast >= slow {
		return nil, domain.InvalidParameter("fast", "fast period %d must be shorter than slow period %d", fast, slow)
	}

	series, err := s.provider.GetPriceSeries(ticker)
	if err != nil {
		return nil, err
	}

	macd := formulas.CalculateMACD(series.Closes(), fast, slow, signal)
	if macd == nil {
		return nil, domain.InsufficientData("period", series.Len(), slow+signal)
	}

	return &MACDResult{
		Kind:      KindMACD,
		Ticker:    ticker,
		Fast:      fast,
		Slow:      slow,
		Signal:    signal,
		Line:      macd.Line,
		SignalVal: macd.Signal,
		Histogram: macd.Histogram,
	}, nil
}

// Bollinger computes Bollinger Bands and the band position of the latest close.
func (s *Service) Bollinger(ticker string, period int, multiplier float64) (*BollingerResult, error) {
	if period <= 0 {
		return nil, domain.InvalidParameter("period", "period must be positive, got %d", period)
	}
	if multiplier < 0 {
		return nil, domain.InvalidParameter("multiplier", "multiplier must be non-negative, got %v", multiplier)
	}

	series, err := s.provider.GetPriceSeries(ticker)
	if err != nil {
		return nil, err
	}

	pos := formulas.CalculateBollingerPosition(series.Closes(), period, multiplier)
	if pos == nil {
		return nil, domain.InsufficientData("period", series.Len(), period)
	}

	return &BollingerResult{
		Kind:       KindBollinger,
		Ticker:     ticker,
		Period:     period,
		Multiplier: multiplier,
		Upper:      pos.Bands.Upper,
		Middle:     pos.Bands.Middle,
		Lower:      pos.Bands.Lower,
		Position:   pos.Position,
	}, nil
}

// Volatility computes the annualized volatility of daily log returns in
// percent. Window limits the calculation to the trailing N returns; zero
// uses the whole series.
func (s *Service) Volatility(ticker string, window int) (*VolatilityResult, error) {
	if window < 0 {
		return nil, domain.InvalidParameter("window", "window must be non-negative, got %d", window)
	}

	series, err := s.provider.GetPriceSeries(ticker)
	if err != nil {
		return nil, err
	}

	if series.Len() < 2 {
		return nil, domain.InsufficientData("window", series.Len(), 2)
	}

	returns := formulas.LogReturns(series.Closes())
	if window > 0 && len(returns) > window {
		returns = returns[len(returns)-window:]
	}

	vol := formulas.AnnualizedVolatility(returns) * 100

	return &VolatilityResult{Kind: KindVolatility, Ticker: ticker, Window: window, Volatility: vol}, nil
}
