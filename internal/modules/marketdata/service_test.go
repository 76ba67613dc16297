package marketdata

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk/internal/database"
	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/pkg/logger"
)

type fakeClient struct {
	history   []domain.PricePoint
	histErr   error
	histCalls int
}

func (f *fakeClient) GetDailyHistory(symbol, period string) ([]domain.PricePoint, error) {
	f.histCalls++
	return f.history, f.histErr
}

func (f *fakeClient) GetQuote(symbol string) (*domain.Quote, error) {
	return &domain.Quote{Ticker: symbol, Price: 101.5, Timestamp: time.Now()}, nil
}

func (f *fakeClient) GetBatchQuotes(symbols []string) (map[string]domain.Quote, error) {
	quotes := make(map[string]domain.Quote)
	for _, s := range symbols {
		quotes[s] = domain.Quote{Ticker: s, Price: 50, Timestamp: time.Now()}
	}
	return quotes, nil
}

func (f *fakeClient) GetFundamentals(symbol string) (*domain.Fundamentals, error) {
	return &domain.Fundamentals{Ticker: symbol, Sector: "Technology"}, nil
}

func newTestService(t *testing.T, client MarketClient, ttl time.Duration) *Service {
	t.Helper()
	log := logger.New(logger.Config{Level: "error"})

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db.Conn(), log)
	require.NoError(t, err)

	return NewService(client, repo, "2y", ttl, log)
}

func bars(n int) []domain.PricePoint {
	points := make([]domain.PricePoint, n)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range points {
		points[i] = domain.PricePoint{
			Date:   start.AddDate(0, 0, i),
			Open:   100,
			High:   102,
			Low:    99,
			Close:  100 + float64(i),
			Volume: 1000,
		}
	}
	return points
}

func TestGetPriceSeries_FetchesAndCaches(t *testing.T) {
	client := &fakeClient{history: bars(10)}
	svc := newTestService(t, client, time.Hour)

	series, err := svc.GetPriceSeries("SPY")
	require.NoError(t, err)
	assert.Equal(t, 10, series.Len())
	assert.Equal(t, 1, client.histCalls)

	// Second call inside the TTL is served from cache.
	series, err = svc.GetPriceSeries("SPY")
	require.NoError(t, err)
	assert.Equal(t, 10, series.Len())
	assert.Equal(t, 1, client.histCalls)
}

func TestGetPriceSeries_UnknownTicker(t *testing.T) {
	client := &fakeClient{histErr: errors.New("boom")}
	svc := newTestService(t, client, time.Hour)

	_, err := svc.GetPriceSeries("NOPE")
	require.Error(t, err)

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrNotFound, derr.Kind)
}

func TestGetPriceSeries_ServesStaleCacheOnUpstreamFailure(t *testing.T) {
	client := &fakeClient{history: bars(5)}
	svc := newTestService(t, client, 0) // TTL zero forces a re-fetch every call

	_, err := svc.GetPriceSeries("SPY")
	require.NoError(t, err)

	client.histErr = errors.New("upstream down")
	client.history = nil

	series, err := svc.GetPriceSeries("SPY")
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())
}

func TestGetQuotesNow_DedupesTickers(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(t, client, time.Hour)

	quotes, err := svc.GetQuotesNow([]string{"SPY", "GLD", "SPY", ""})
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func TestRefreshAll_UpdatesCachedTickers(t *testing.T) {
	client := &fakeClient{history: bars(3)}
	svc := newTestService(t, client, time.Hour)

	_, err := svc.GetPriceSeries("SPY")
	require.NoError(t, err)

	client.history = bars(4)
	require.NoError(t, svc.RefreshAll())

	points, err := svc.repo.GetSeries("SPY")
	require.NoError(t, err)
	assert.Len(t, points, 4)
}

func TestRepository_RoundTrip(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "cache.db"),
		Name: "cache",
	})
	require.NoError(t, err)
	defer db.Close()

	repo, err := NewRepository(db.Conn(), log)
	require.NoError(t, err)

	in := bars(7)
	require.NoError(t, repo.SaveSeries("VTI", in))

	out, err := repo.GetSeries("VTI")
	require.NoError(t, err)
	require.Len(t, out, 7)
	assert.Equal(t, in[0].Close, out[0].Close)
	assert.True(t, out[0].Date.Before(out[6].Date), "bars are date ascending")

	fetched, err := repo.FetchedAt("VTI")
	require.NoError(t, err)
	require.NotNil(t, fetched)

	missing, err := repo.FetchedAt("MISSING")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
