package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockpulse/internal/app"
	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
	"github.com/bobmcallan/stockpulse/internal/services/portfolio"
	"github.com/bobmcallan/stockpulse/internal/services/rewards"
)

// --- Fakes ---

type stubStore struct {
	available bool
}

func (s *stubStore) Available() bool { return s.available }
func (s *stubStore) Get(context.Context, string) ([]byte, error) {
	return nil, interfaces.ErrNotFound
}
func (s *stubStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (s *stubStore) Delete(context.Context, string) error                     { return nil }
func (s *stubStore) HGet(context.Context, string, string) ([]byte, error) {
	return nil, interfaces.ErrNotFound
}
func (s *stubStore) HSet(context.Context, string, string, []byte) error { return nil }
func (s *stubStore) HDel(context.Context, string, ...string) error      { return nil }
func (s *stubStore) HGetAll(context.Context, string) (map[string][]byte, error) {
	return nil, nil
}
func (s *stubStore) SAdd(context.Context, string, ...string) error      { return nil }
func (s *stubStore) SRem(context.Context, string, ...string) error      { return nil }
func (s *stubStore) SMembers(context.Context, string) ([]string, error) { return nil, nil }
func (s *stubStore) SIsMember(context.Context, string, string) (bool, error) {
	return false, nil
}
func (s *stubStore) Close() error { return nil }

var _ interfaces.KeyedStore = (*stubStore)(nil)

type stubMetrics struct{}

func (s *stubMetrics) GetPEHistory(_ context.Context, symbol string) (*models.PEHistory, models.CacheMeta, error) {
	return &models.PEHistory{Symbol: symbol, Current: 25, Source: models.SourceFinnhub},
		models.CacheMeta{Cached: true, AgeSeconds: 120}, nil
}
func (s *stubMetrics) GetDividendHistory(_ context.Context, symbol string) (*models.DividendHistory, models.CacheMeta, error) {
	return &models.DividendHistory{Symbol: symbol, Source: models.SourceEstimated}, models.CacheMeta{}, nil
}
func (s *stubMetrics) GetRevenueGrowth(context.Context, string) (*models.RevenueGrowth, models.CacheMeta, error) {
	return nil, models.CacheMeta{}, errors.New("upstream down")
}

type stubSentiment struct{}

func (s *stubSentiment) GetSentiment(_ context.Context, symbol, period string) (*models.RedditSentimentData, models.CacheMeta, error) {
	return &models.RedditSentimentData{Symbol: symbol, Period: period, RedditScore: 61}, models.CacheMeta{}, nil
}

type stubPortfolio struct {
	holdings []models.Holding
	addErr   error
}

func (s *stubPortfolio) ListHoldings(context.Context, string) ([]models.Holding, error) {
	return s.holdings, nil
}
func (s *stubPortfolio) AddHolding(_ context.Context, _ string, h models.Holding) (*models.Holding, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	h.ID = "new-id"
	return &h, nil
}
func (s *stubPortfolio) DeleteHolding(_ context.Context, _, holdingID string) error {
	if holdingID == "missing" {
		return portfolio.ErrHoldingNotFound
	}
	return nil
}
func (s *stubPortfolio) GetHistory(_ context.Context, identity, timeframe string, _ bool) (*models.PortfolioHistory, models.CacheMeta, error) {
	if !models.ValidTimeframe(timeframe) {
		return nil, models.CacheMeta{}, portfolio.ErrInvalidTimeframe
	}
	return &models.PortfolioHistory{UserIdentity: identity}, models.CacheMeta{}, nil
}
func (s *stubPortfolio) RenderHistoryChart(context.Context, string, string) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

type stubMarket struct{}

func (s *stubMarket) GetHeatmap(context.Context) (*models.Heatmap, models.CacheMeta, error) {
	return &models.Heatmap{Entries: []models.HeatmapEntry{{Symbol: "AAPL", Price: 100}}},
		models.CacheMeta{Cached: true, Stale: true, AgeSeconds: 900}, nil
}
func (s *stubMarket) GetTrending(context.Context) (*models.Trending, models.CacheMeta, error) {
	return &models.Trending{}, models.CacheMeta{}, nil
}
func (s *stubMarket) GetSP500PE(context.Context) (*models.SP500PE, models.CacheMeta, error) {
	return &models.SP500PE{PE: 24.5, Source: "static"}, models.CacheMeta{}, nil
}

type stubRewards struct {
	claimed bool
}

func (s *stubRewards) ClaimDaily(context.Context, string) (*models.DailyClaim, error) {
	if s.claimed {
		return nil, rewards.ErrAlreadyClaimed
	}
	return &models.DailyClaim{Awarded: 10, Points: 10, Streak: 1}, nil
}

type stubUsers struct{}

func (s *stubUsers) CheckUsername(_ context.Context, username string) (*models.UsernameCheck, error) {
	if username == "admin" {
		return &models.UsernameCheck{Available: false, Reason: "This username is reserved"}, nil
	}
	return &models.UsernameCheck{Available: true}, nil
}
func (s *stubUsers) GetUser(_ context.Context, identity string) (*models.UserRecord, error) {
	return &models.UserRecord{UserID: identity, Username: "trader"}, nil
}
func (s *stubUsers) SaveUser(context.Context, *models.UserRecord) error { return nil }

type stubWatchlist struct{}

func (s *stubWatchlist) List(context.Context, string) ([]string, error) {
	return []string{"AAPL"}, nil
}
func (s *stubWatchlist) Add(context.Context, string, string) error    { return nil }
func (s *stubWatchlist) Remove(context.Context, string, string) error { return nil }

func newTestServer(t *testing.T) (*Server, *app.App) {
	t.Helper()
	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           common.NewSilentLogger(),
		Store:            &stubStore{available: true},
		MetricsService:   &stubMetrics{},
		SentimentService: &stubSentiment{},
		PortfolioService: &stubPortfolio{},
		MarketService:    &stubMarket{},
		RewardsService:   &stubRewards{},
		UserService:      &stubUsers{},
		WatchlistService: &stubWatchlist{},
		StartupTime:      time.Now(),
	}
	return NewServer(a), a
}

func doRequest(t *testing.T, srv *Server, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

var asUser = map[string]string{"X-User-ID": "user-1"}

// --- System ---

func TestHealth(t *testing.T) {
	srv, a := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	a.Store.(*stubStore).available = false
	rec = doRequest(t, srv, http.MethodGet, "/api/health", nil, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

// --- Metrics ---

func TestPEHistoryEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/metrics/pe/AAPL", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data       models.PEHistory `json:"data"`
		Cached     bool             `json:"cached"`
		AgeSeconds int              `json:"cache_age_seconds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body.Data.Symbol)
	assert.True(t, body.Cached)
	assert.Equal(t, 120, body.AgeSeconds)
}

func TestMetricsMissingSymbol(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/metrics/pe/", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevenueUpstreamFailure(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/metrics/revenue/AAPL", nil, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSentimentPeriodValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/sentiment/GME?period=1y", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/sentiment/GME?period=7d", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data models.RedditSentimentData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "7d", body.Data.Period)
}

// --- Market ---

func TestHeatmapStaleFlag(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/market/heatmap", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Cached bool `json:"cached"`
		Stale  bool `json:"stale"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Cached)
	assert.True(t, body.Stale)
}

// --- Portfolio ---

func TestHoldingsRequireIdentity(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/portfolio/holdings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddHolding(t *testing.T) {
	srv, _ := newTestServer(t)

	payload, _ := json.Marshal(models.Holding{
		Symbol: "AAPL", Shares: 10, PurchasePrice: 100, PurchaseDate: "2024-01-01",
	})
	rec := doRequest(t, srv, http.MethodPost, "/api/portfolio/holdings", payload, asUser)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Holding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "new-id", created.ID)
}

func TestAddHoldingValidationError(t *testing.T) {
	srv, a := newTestServer(t)
	a.PortfolioService.(*stubPortfolio).addErr = portfolio.ErrInvalidHolding

	rec := doRequest(t, srv, http.MethodPost, "/api/portfolio/holdings", []byte(`{}`), asUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteHoldingNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodDelete, "/api/portfolio/holdings/missing", nil, asUser)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryInvalidTimeframe(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/portfolio/history?timeframe=2W", nil, asUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryChartContentType(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/portfolio/history/chart?timeframe=1M", nil, asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

// --- Users ---

func TestUsernameCheckPassthrough(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/users/check/admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var check models.UsernameCheck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.False(t, check.Available)
	assert.Equal(t, "This username is reserved", check.Reason)
}

func TestClaimDaily(t *testing.T) {
	srv, a := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/rewards/claim", nil, asUser)
	require.Equal(t, http.StatusOK, rec.Code)

	a.RewardsService.(*stubRewards).claimed = true
	rec = doRequest(t, srv, http.MethodPost, "/api/rewards/claim", nil, asUser)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// --- Watchlist ---

func TestWatchlist(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/watchlist", nil, asUser)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Symbols []string `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"AAPL"}, body.Symbols)

	rec = doRequest(t, srv, http.MethodPost, "/api/watchlist", []byte(`{"symbol":"NVDA"}`), asUser)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/api/watchlist/NVDA", nil, asUser)
	assert.Equal(t, http.StatusOK, rec.Code)
}
