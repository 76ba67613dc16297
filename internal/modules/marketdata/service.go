// Package marketdata supplies price series, quotes and fundamentals to the
// analysis modules. Series are fetched from Yahoo Finance, cached in SQLite
// and served as immutable request-scoped snapshots.
package marketdata

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/quantdesk/quantdesk/internal/domain"
)

// MarketClient is the upstream data provider.
type MarketClient interface {
	GetDailyHistory(symbol, period string) ([]domain.PricePoint, error)
	GetQuote(symbol string) (*domain.Quote, error)
	GetBatchQuotes(symbols []string) (map[string]domain.Quote, error)
	GetFundamentals(symbol string) (*domain.Fundamentals, error)
}

// Service is the price series store.
type Service struct {
	client   MarketClient
	repo     *Repository
	lookback string
	ttl      time.Duration
	log      zerolog.Logger
}

// NewService creates a new market data service.
func NewService(client MarketClient, repo *Repository, lookback string, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		client:   client,
		repo:     repo,
		lookback: lookback,
		ttl:      ttl,
		log:      log.With().Str("module", "marketdata").Logger(),
	}
}

// GetPriceSeries returns the daily series for a ticker, serving cached bars
// while they are fresh and re-fetching otherwise. A stale cache is still
// served when the upstream fetch fails.
func (s *Service) GetPriceSeries(ticker string) (*domain.PriceSeries, error) {
	fetchedAt, err := s.repo.FetchedAt(ticker)
	if err != nil {
		return nil, err
	}

	if fetchedAt != nil && time.Since(*fetchedAt) < s.ttl {
		points, err := s.repo.GetSeries(ticker)
		if err != nil {
			return nil, err
		}
		if len(points) > 0 {
			return &domain.PriceSeries{Ticker: ticker, Points: points}, nil
		}
	}

	points, err := s.client.GetDailyHistory(ticker, s.lookback)
	if err != nil || len(points) == 0 {
		// Upstream failed; a stale cache beats no data.
		if fetchedAt != nil {
			cached, cacheErr := s.repo.GetSeries(ticker)
			if cacheErr == nil && len(cached) > 0 {
				s.log.Warn().Err(err).Str("ticker", ticker).Msg("Serving stale cached series")
				return &domain.PriceSeries{Ticker: ticker, Points: cached}, nil
			}
		}
		if err != nil {
			s.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to fetch history")
		}
		return nil, domain.NotFound(ticker)
	}

	if err := s.repo.SaveSeries(ticker, points); err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache series")
	}

	return &domain.PriceSeries{Ticker: ticker, Points: points}, nil
}

// GetQuote returns the latest price for a ticker.
func (s *Service) GetQuote(ticker string) (*domain.Quote, error) {
	quote, err := s.client.GetQuote(ticker)
	if err != nil {
		return nil, domain.NotFound(ticker)
	}
	return quote, nil
}

// GetQuotesNow returns the latest close for each ticker in the set.
// Tickers with no data are omitted rather than failing the whole call.
func (s *Service) GetQuotesNow(tickers []string) (map[string]domain.Quote, error) {
	return s.client.GetBatchQuotes(dedupe(tickers))
}

// GetFundamentals returns the fundamental snapshot for a ticker.
func (s *Service) GetFundamentals(ticker string) (*domain.Fundamentals, error) {
	f, err := s.client.GetFundamentals(ticker)
	if err != nil {
		return nil, domain.NotFound(ticker)
	}
	return f, nil
}

// RefreshAll re-fetches every cached ticker. Called by the scheduler.
func (s *Service) RefreshAll() error {
	tickers, err := s.repo.CachedTickers()
	if err != nil {
		return err
	}

	for _, ticker := range tickers {
		points, err := s.client.GetDailyHistory(ticker, s.lookback)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Refresh failed, keeping cached bars")
			continue
		}
		if len(points) == 0 {
			continue
		}
		if err := s.repo.SaveSeries(ticker, points); err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to store refreshed bars")
		}
	}

	s.log.Info().Int("tickers", len(tickers)).Msg("History refresh complete")
	return nil
}

func dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
