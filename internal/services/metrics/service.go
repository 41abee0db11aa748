package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/stockpulse/internal/cache"
	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
)

// Cache key prefixes per metric kind.
const (
	peKeyPrefix       = "pe:"
	dividendKeyPrefix = "dividend:"
	revenueKeyPrefix  = "revenue:"
)

// candleLookback bounds how far back monthly prices are fetched for the
// P/E series.
const candleLookback = 5 * 365 * 24 * time.Hour

// Service computes derived metrics behind the cache envelope. Read path:
// fresh cache entry, else recompute from upstream and store; on upstream
// failure the last stale entry is served before giving up.
type Service struct {
	finnhub interfaces.FinnhubClient
	cache   *cache.Envelope
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a metrics service.
func NewService(finnhub interfaces.FinnhubClient, envelope *cache.Envelope, logger *common.Logger) *Service {
	return &Service{
		finnhub: finnhub,
		cache:   envelope,
		logger:  logger,
		now:     time.Now,
	}
}

// GetPEHistory returns the historical P/E view for a symbol.
func (s *Service) GetPEHistory(ctx context.Context, symbol string) (*models.PEHistory, models.CacheMeta, error) {
	symbol = common.NormalizeSymbol(symbol)
	key := peKeyPrefix + symbol

	var cached models.PEHistory
	if meta, ok := s.readFresh(ctx, key, &cached); ok {
		return &cached, meta, nil
	}

	history, err := s.computePEHistory(ctx, symbol)
	if err != nil {
		var stale models.PEHistory
		if meta, ok := s.serveStale(ctx, key, &stale); ok {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Serving stale P/E history after upstream failure")
			return &stale, meta, nil
		}
		return nil, models.CacheMeta{}, fmt.Errorf("failed to compute P/E history for %s: %w", symbol, err)
	}

	s.cache.Write(ctx, key, history, common.FreshnessPERatio)
	return history, models.CacheMeta{}, nil
}

func (s *Service) computePEHistory(ctx context.Context, symbol string) (*models.PEHistory, error) {
	now := s.now()

	earnings, earnErr := s.finnhub.GetQuarterlyEPS(ctx, symbol)

	var currentPE float64
	bf, bfErr := s.finnhub.GetBasicFinancials(ctx, symbol)
	if bfErr == nil {
		currentPE = bf.PERatio
	}

	if earnErr != nil && bfErr != nil {
		return nil, fmt.Errorf("earnings: %v; financials: %w", earnErr, bfErr)
	}

	var prices []models.HistoricalPricePoint
	if earnErr == nil && len(earnings) > 0 {
		var priceErr error
		prices, priceErr = s.finnhub.GetCandles(ctx, symbol, "M", now.Add(-candleLookback), now)
		if priceErr != nil {
			s.logger.Debug().Err(priceErr).Str("symbol", symbol).Msg("Monthly candles unavailable, P/E series will be estimated")
		}
	}

	return ComputePEHistory(symbol, earnings, prices, currentPE, now), nil
}

// GetDividendHistory returns the dividend growth view for a symbol.
func (s *Service) GetDividendHistory(ctx context.Context, symbol string) (*models.DividendHistory, models.CacheMeta, error) {
	symbol = common.NormalizeSymbol(symbol)
	key := dividendKeyPrefix + symbol

	var cached models.DividendHistory
	if meta, ok := s.readFresh(ctx, key, &cached); ok {
		return &cached, meta, nil
	}

	bf, err := s.finnhub.GetBasicFinancials(ctx, symbol)
	if err != nil {
		var stale models.DividendHistory
		if meta, ok := s.serveStale(ctx, key, &stale); ok {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Serving stale dividend history after upstream failure")
			return &stale, meta, nil
		}
		return nil, models.CacheMeta{}, fmt.Errorf("failed to fetch financials for %s: %w", symbol, err)
	}

	history := ComputeDividendHistory(symbol, bf.Price, bf.DividendYield, s.now())
	s.cache.Write(ctx, key, history, common.FreshnessDividends)
	return history, models.CacheMeta{}, nil
}

// GetRevenueGrowth returns the revenue growth view for a symbol.
func (s *Service) GetRevenueGrowth(ctx context.Context, symbol string) (*models.RevenueGrowth, models.CacheMeta, error) {
	symbol = common.NormalizeSymbol(symbol)
	key := revenueKeyPrefix + symbol

	var cached models.RevenueGrowth
	if meta, ok := s.readFresh(ctx, key, &cached); ok {
		return &cached, meta, nil
	}

	reports, err := s.finnhub.GetFinancialsReported(ctx, symbol)
	if err != nil {
		var stale models.RevenueGrowth
		if meta, ok := s.serveStale(ctx, key, &stale); ok {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Serving stale revenue growth after upstream failure")
			return &stale, meta, nil
		}
		return nil, models.CacheMeta{}, fmt.Errorf("failed to fetch filed reports for %s: %w", symbol, err)
	}

	growth := ComputeRevenueGrowth(symbol, reports, s.now())
	s.cache.Write(ctx, key, growth, common.FreshnessRevenue)
	return growth, models.CacheMeta{}, nil
}

// readFresh decodes a fresh cache entry into v.
func (s *Service) readFresh(ctx context.Context, key string, v any) (models.CacheMeta, bool) {
	l := s.cache.Read(ctx, key)
	if l.Status != cache.Fresh {
		return models.CacheMeta{}, false
	}
	if err := l.Decode(v); err != nil {
		return models.CacheMeta{}, false
	}
	return models.CacheMeta{Cached: true, AgeSeconds: int(l.Age.Seconds())}, true
}

// serveStale decodes the last entry regardless of TTL into v.
func (s *Service) serveStale(ctx context.Context, key string, v any) (models.CacheMeta, bool) {
	l, ok := s.cache.ServeStale(ctx, key)
	if !ok {
		return models.CacheMeta{}, false
	}
	if err := l.Decode(v); err != nil {
		return models.CacheMeta{}, false
	}
	return models.CacheMeta{Cached: true, AgeSeconds: int(l.Age.Seconds()), Stale: true}, true
}

// Ensure Service implements MetricsService
var _ interfaces.MetricsService = (*Service)(nil)
