// Package yahoo fetches market data from Yahoo Finance via go-yfinance.
package yahoo

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/multi"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/quantdesk/quantdesk/internal/domain"
)

// Client is a Yahoo Finance market data client.
type Client struct {
	log zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// GetDailyHistory fetches daily OHLCV bars for a symbol over the given
// Yahoo period string (e.g. "1y", "2y"). Bars are returned ascending by date.
func (c *Client) GetDailyHistory(symbol, period string) ([]domain.PricePoint, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	params := models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	}

	bars, err := t.History(params)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}

	points := make([]domain.PricePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, domain.PricePoint{
			Date:   bar.Date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}

	return points, nil
}

// GetQuote fetches the latest price for a symbol. Falls back to pre/post
// market prices and finally the previous close when the regular market
// price is unavailable.
func (c *Client) GetQuote(symbol string) (*domain.Quote, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	quote, err := t.Quote()
	if err == nil && quote != nil {
		price := quote.RegularMarketPrice
		if price <= 0 && quote.PreMarketPrice > 0 {
			price = quote.PreMarketPrice
		}
		if price <= 0 && quote.PostMarketPrice > 0 {
			price = quote.PostMarketPrice
		}
		if price > 0 {
			return &domain.Quote{Ticker: symbol, Price: price, Timestamp: time.Now().UTC()}, nil
		}
	}

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get quote info: %w", err)
	}
	if info.CurrentPrice > 0 {
		return &domain.Quote{Ticker: symbol, Price: info.CurrentPrice, Timestamp: time.Now().UTC()}, nil
	}
	if info.RegularMarketPreviousClose > 0 {
		return &domain.Quote{Ticker: symbol, Price: info.RegularMarketPreviousClose, Timestamp: time.Now().UTC()}, nil
	}

	return nil, fmt.Errorf("no valid price for %s", symbol)
}

// GetBatchQuotes fetches last closes for multiple symbols in one download.
// Symbols that fail to resolve are omitted from the result.
func (c *Client) GetBatchQuotes(symbols []string) (map[string]domain.Quote, error) {
	if len(symbols) == 0 {
		return map[string]domain.Quote{}, nil
	}

	params := models.DefaultDownloadParams()
	params.Symbols = symbols
	params.Period = "5d" // last 5 days so holidays still yield a close
	params.Interval = "1d"

	result, err := multi.Download(symbols, &params)
	if err != nil {
		return nil, fmt.Errorf("failed to download batch quotes: %w", err)
	}

	quotes := make(map[string]domain.Quote, len(symbols))
	for _, symbol := range symbols {
		if bars, ok := result.Data[symbol]; ok && len(bars) > 0 {
			last := bars[len(bars)-1]
			quotes[symbol] = domain.Quote{
				Ticker:    symbol,
				Price:     last.Close,
				Volume:    int64(last.Volume),
				Timestamp: last.Date,
			}
		} else if derr, ok := result.Errors[symbol]; ok {
			c.log.Warn().Err(derr).Str("symbol", symbol).Msg("Failed to get quote for symbol")
		}
	}

	return quotes, nil
}

// GetFundamentals fetches a fundamental snapshot for a symbol. Optional
// fields stay nil when the provider omits them (common for ETFs).
func (c *Client) GetFundamentals(symbol string) (*domain.Fundamentals, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	f := &domain.Fundamentals{Ticker: symbol}

	if info.LongName != "" {
		f.Name = info.LongName
	} else if info.ShortName != "" {
		f.Name = info.ShortName
	}
	f.Sector = info.Industry

	// Copy values to locals before taking addresses; the ticker library may
	// reuse internal buffers between calls.
	if info.TrailingPE > 0 {
		pe := info.TrailingPE
		f.PERatio = &pe
	}
	if info.MarketCap > 0 {
		mc := info.MarketCap
		f.MarketCap = &mc
	}
	if info.DividendYield > 0 {
		dy := info.DividendYield
		f.DividendYield = &dy
	}

	return f, nil
}
