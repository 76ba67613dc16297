package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk/internal/config"
	"github.com/quantdesk/quantdesk/internal/database"
	"github.com/quantdesk/quantdesk/internal/domain"
	"github.com/quantdesk/quantdesk/internal/modules/analysis"
	"github.com/quantdesk/quantdesk/internal/modules/indicators"
	"github.com/quantdesk/quantdesk/internal/modules/marketdata"
	"github.com/quantdesk/quantdesk/internal/modules/optimization"
	"github.com/quantdesk/quantdesk/internal/modules/portfolio"
	"github.com/quantdesk/quantdesk/internal/modules/rebalancing"
	"github.com/quantdesk/quantdesk/internal/modules/seasonality"
	"github.com/quantdesk/quantdesk/internal/modules/trend"
	"github.com/quantdesk/quantdesk/pkg/logger"
)

type fakeClient struct {
	history map[string][]domain.PricePoint
}

func (f *fakeClient) GetDailyHistory(symbol, period string) ([]domain.PricePoint, error) {
	points, ok := f.history[symbol]
	if !ok {
		return nil, domain.NotFound(symbol)
	}
	return points, nil
}

func (f *fakeClient) GetQuote(symbol string) (*domain.Quote, error) {
	if _, ok := f.history[symbol]; !ok {
		return nil, domain.NotFound(symbol)
	}
	return &domain.Quote{Ticker: symbol, Price: 100, Timestamp: time.Now()}, nil
}

func (f *fakeClient) GetBatchQuotes(symbols []string) (map[string]domain.Quote, error) {
	quotes := make(map[string]domain.Quote)
	for _, s := range symbols {
		if _, ok := f.history[s]; ok {
			quotes[s] = domain.Quote{Ticker: s, Price: 100, Timestamp: time.Now()}
		}
	}
	return quotes, nil
}

func (f *fakeClient) GetFundamentals(symbol string) (*domain.Fundamentals, error) {
	if _, ok := f.history[symbol]; !ok {
		return nil, domain.NotFound(symbol)
	}
	return &domain.Fundamentals{Ticker: symbol, Name: "Test Corp", Sector: "Technology"}, nil
}

func dailyBars(n int) []domain.PricePoint {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]domain.PricePoint, n)
	price := 100.0
	for i := range points {
		price *= 1.001
		points[i] = domain.PricePoint{Date: start.AddDate(0, 0, i), Close: price, Volume: 1000}
	}
	return points
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := logger.New(logger.Config{Level: "error"})
	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := marketdata.NewRepository(db.Conn(), log)
	require.NoError(t, err)

	client := &fakeClient{history: map[string][]domain.PricePoint{"AAA": dailyBars(300), "BBB": dailyBars(300)}}
	store := marketdata.NewService(client, repo, cfg.HistoryLookback, 5*time.Minute, log)

	indicatorService := indicators.NewService(store, log)
	trendAnalyzer := trend.NewAnalyzer(store, log)
	seasonalityAnalyzer := seasonality.NewAnalyzer(store, log)
	composite := analysis.NewAnalyzer(indicatorService, trendAnalyzer, seasonalityAnalyzer,
		store, store, cfg.Indicators, cfg.Composite, log)

	builder := portfolio.NewBuilder(log)
	evaluator := portfolio.NewEvaluator(store, store, log)

	return New(Config{
		Log:        log,
		Config:     cfg,
		MarketData: marketdata.NewHandlers(store, log),
		Indicators: indicators.NewHandlers(indicatorService, cfg.Indicators, log),
		Analysis:   analysis.NewHandlers(trendAnalyzer, seasonalityAnalyzer, composite, log),
		Portfolio:  portfolio.NewHandlers(builder, evaluator, log),
		Optimizer:  optimization.NewHandlers(optimization.NewOptimizer(store, log), log),
		Rebalancer: rebalancing.NewHandlers(rebalancing.NewRebalancer(cfg.OrderFee, log), cfg.DriftThreshold, log),
		System: NewSystemHandlers(log, func() (int, error) {
			tickers, err := repo.CachedTickers()
			return len(tickers), err
		}),
	})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_IndicatorRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/indicators/AAA/rsi")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AAA", body["ticker"])

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/indicators/ZZZ/rsi").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/indicators/AAA/rsi?period=0").Code)
}

func TestServer_AnalysisRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, get(t, s, "/api/analysis/AAA/trend").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/analysis/AAA/seasonality").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/analysis/AAA/complete").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/analysis/ZZZ/trend").Code)
}

func TestServer_TickerResources(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, get(t, s, "/api/tickers/AAA/history").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/tickers/AAA/info").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/tickers/AAA/quote").Code)

	rec := post(t, s, "/api/quotes", `{"tickers": ["AAA", "ZZZ"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var quotes map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quotes))
	assert.Contains(t, quotes, "AAA")
	assert.NotContains(t, quotes, "ZZZ")
}

func TestServer_PortfolioRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := post(t, s, "/api/portfolio/create", `{"name": "core", "holdings": {"AAA": 0.6, "BBB": 0.4}}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = post(t, s, "/api/portfolio/evaluate", `{"holdings": {"AAA": 0.6, "BBB": 0.4}}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, s, "/api/portfolio/evaluate", `{"holdings": {"AAA": 0.5, "BBB": 0.6}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, s, "/api/portfolio/rebalance",
		`{"current": {"AAA": 0.7, "BBB": 0.3}, "target": {"AAA": 0.5, "BBB": 0.5}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, s, "/api/portfolio/propose", `{"capital": 10000, "horizon_years": 10}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
