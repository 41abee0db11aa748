package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/stockpulse/internal/cache"
	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/fetch"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
)

// Cache keys for the market-wide views.
const (
	heatmapKey  = "market:heatmap"
	trendingKey = "market:trending"
	sp500Key    = "market:sp500pe"
)

// sp500Proxy is the symbol whose financials stand in for the index.
const sp500Proxy = "SPY"

// sourceStatic marks an index P/E that came from the configured constant
// rather than any upstream.
const sourceStatic = "static"

const (
	trendingPostLimit = 50
	trendingMaxOut    = 10
)

// Service serves the market-wide views. These endpoints are high fan-out
// (every dashboard load hits them), so they carry a second in-process cache
// tier consulted when the remote store misses or is down.
type Service struct {
	finnhub  interfaces.FinnhubClient
	reddit   interfaces.RedditClient
	cache    *cache.Envelope
	memory   *cache.Memory
	orch     *fetch.Orchestrator
	symbols  []string
	staticPE float64
	logger   *common.Logger
	now      func() time.Time // injectable clock for testing
}

// NewService creates a market service. symbols is the heatmap universe and
// staticPE the last-resort index P/E.
func NewService(finnhub interfaces.FinnhubClient, reddit interfaces.RedditClient, envelope *cache.Envelope, memory *cache.Memory, orch *fetch.Orchestrator, cfg common.MarketConfig, logger *common.Logger) *Service {
	return &Service{
		finnhub:  finnhub,
		reddit:   reddit,
		cache:    envelope,
		memory:   memory,
		orch:     orch,
		symbols:  cfg.HeatmapSymbols,
		staticPE: cfg.SP500FallbackPE,
		logger:   logger,
		now:      time.Now,
	}
}

// GetHeatmap returns current quotes for the configured symbol universe.
func (s *Service) GetHeatmap(ctx context.Context) (*models.Heatmap, models.CacheMeta, error) {
	var cached models.Heatmap
	if meta, ok := s.readTiered(ctx, heatmapKey, &cached); ok {
		return &cached, meta, nil
	}

	heatmap, err := s.fetchHeatmap(ctx)
	if err != nil {
		var stale models.Heatmap
		if meta, ok := s.serveStale(ctx, heatmapKey, &stale); ok {
			s.logger.Warn().Err(err).Msg("Serving stale heatmap after upstream failure")
			return &stale, meta, nil
		}
		return nil, models.CacheMeta{}, fmt.Errorf("failed to build heatmap: %w", err)
	}

	s.writeTiered(ctx, heatmapKey, heatmap, common.FreshnessHeatmap)
	return heatmap, models.CacheMeta{}, nil
}

func (s *Service) fetchHeatmap(ctx context.Context) (*models.Heatmap, error) {
	results, summary := s.orch.FetchAll(ctx, s.symbols, func(callCtx context.Context, symbol string) (any, error) {
		return s.finnhub.GetQuote(callCtx, symbol)
	})
	if summary.Succeeded == 0 {
		return nil, fmt.Errorf("all %d heatmap quotes failed: %s", summary.Attempted, strings.Join(summary.Errors, "; "))
	}

	quotes := fetch.Collected[*models.RealTimeQuote](results)
	entries := make([]models.HeatmapEntry, 0, len(s.symbols))
	for _, symbol := range s.symbols {
		q, ok := quotes[symbol]
		if !ok || q == nil {
			continue
		}
		entries = append(entries, models.HeatmapEntry{
			Symbol:    symbol,
			Price:     q.Price,
			ChangePct: q.ChangePct,
		})
	}

	s.logger.Info().Int("entries", len(entries)).Int("failures", summary.Failed).Msg("Heatmap refreshed")
	return &models.Heatmap{Entries: entries, FetchedAt: s.now()}, nil
}

// GetTrending returns the symbols most mentioned in r/wallstreetbets hot
// posts right now.
func (s *Service) GetTrending(ctx context.Context) (*models.Trending, models.CacheMeta, error) {
	var cached models.Trending
	if meta, ok := s.readTiered(ctx, trendingKey, &cached); ok {
		return &cached, meta, nil
	}

	posts, err := s.reddit.HotPosts(ctx, "wallstreetbets", trendingPostLimit)
	if err != nil {
		var stale models.Trending
		if meta, ok := s.serveStale(ctx, trendingKey, &stale); ok {
			s.logger.Warn().Err(err).Msg("Serving stale trending list after upstream failure")
			return &stale, meta, nil
		}
		return nil, models.CacheMeta{}, fmt.Errorf("failed to fetch hot posts: %w", err)
	}

	trending := &models.Trending{
		Symbols:   countMentions(posts, trendingMaxOut),
		FetchedAt: s.now(),
	}
	s.writeTiered(ctx, trendingKey, trending, common.FreshnessTrending)
	return trending, models.CacheMeta{}, nil
}

// GetSP500PE returns the index-level P/E. Degradation order: fresh cache,
// fresh fetch, stale cache, configured static constant. This endpoint never
// errors; the static value is always available.
func (s *Service) GetSP500PE(ctx context.Context) (*models.SP500PE, models.CacheMeta, error) {
	var cached models.SP500PE
	if meta, ok := s.readTiered(ctx, sp500Key, &cached); ok {
		return &cached, meta, nil
	}

	bf, err := s.finnhub.GetBasicFinancials(ctx, sp500Proxy)
	if err == nil && bf.PERatio > 0 {
		result := &models.SP500PE{PE: bf.PERatio, Source: models.SourceFinnhub, FetchedAt: s.now()}
		s.writeTiered(ctx, sp500Key, result, common.FreshnessSP500PE)
		return result, models.CacheMeta{}, nil
	}

	var stale models.SP500PE
	if meta, ok := s.serveStale(ctx, sp500Key, &stale); ok {
		s.logger.Warn().Err(err).Msg("Serving stale S&P 500 P/E after upstream failure")
		return &stale, meta, nil
	}

	s.logger.Warn().Err(err).Float64("static_pe", s.staticPE).Msg("Falling back to static S&P 500 P/E")
	return &models.SP500PE{PE: s.staticPE, Source: sourceStatic, FetchedAt: s.now()}, models.CacheMeta{}, nil
}

// readTiered tries the remote envelope first, then the in-process tier.
func (s *Service) readTiered(ctx context.Context, key string, v any) (models.CacheMeta, bool) {
	if l := s.cache.Read(ctx, key); l.Status == cache.Fresh {
		if err := l.Decode(v); err == nil {
			return models.CacheMeta{Cached: true, AgeSeconds: int(l.Age.Seconds())}, true
		}
	}
	if raw, age, ok := s.memory.Get(key); ok {
		if err := json.Unmarshal(raw, v); err == nil {
			return models.CacheMeta{Cached: true, AgeSeconds: int(age.Seconds())}, true
		}
	}
	return models.CacheMeta{}, false
}

// writeTiered populates both cache tiers. Failures are non-fatal and
// handled inside the envelope.
func (s *Service) writeTiered(ctx context.Context, key string, v any, ttl time.Duration) {
	s.cache.Write(ctx, key, v, ttl)
	if raw, err := json.Marshal(v); err == nil {
		s.memory.Set(key, raw)
	}
}

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

// countMentions tallies ticker-looking tokens across post titles and
// returns the top max symbols by mention count.
func countMentions(posts []models.RedditPost, max int) []models.TrendingSymbol {
	counts := make(map[string]int)
	for _, post := range posts {
		for _, symbol := range extractTickers(post.Title) {
			counts[symbol]++
		}
	}

	symbols := make([]models.TrendingSymbol, 0, len(counts))
	for symbol, n := range counts {
		symbols = append(symbols, models.TrendingSymbol{Symbol: symbol, Mentions: n})
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].Mentions != symbols[j].Mentions {
			return symbols[i].Mentions > symbols[j].Mentions
		}
		return symbols[i].Symbol < symbols[j].Symbol
	})
	if len(symbols) > max {
		symbols = symbols[:max]
	}
	return symbols
}

// tickerStopwords are common all-caps words that are not tickers.
var tickerStopwords = map[string]bool{
	"A": true, "I": true, "DD": true, "CEO": true, "CFO": true, "IPO": true,
	"YOLO": true, "FOMO": true, "ATH": true, "EPS": true, "ETF": true,
	"USA": true, "USD": true, "GDP": true, "FED": true, "SEC": true,
	"AI": true, "IMO": true, "WSB": true, "EOD": true, "OTM": true,
	"ITM": true, "LOL": true, "PSA": true, "TLDR": true, "EDIT": true,
	"BUY": true, "SELL": true, "HOLD": true, "PUT": true, "CALL": true,
	"NOT": true, "THE": true, "FOR": true, "AND": true, "ALL": true,
	"ARE": true, "YOU": true, "NOW": true, "NEW": true, "TO": true,
	"IS": true, "IT": true, "ON": true, "IN": true, "UP": true, "OR": true,
	"BE": true, "SO": true, "GO": true, "MY": true, "WE": true, "AT": true,
	"IF": true, "OF": true, "DO": true, "NO": true, "US": true,
}

// extractTickers pulls candidate symbols from a title: explicit cashtags
// ($AAPL) always count; bare tokens count when 2-5 uppercase letters and
// not a stopword.
func extractTickers(title string) []string {
	var out []string
	for _, token := range strings.Fields(title) {
		cashtag := strings.HasPrefix(token, "$")
		token = strings.Trim(token, "$.,!?:;()[]\"'")
		if len(token) < 1 || len(token) > 5 {
			continue
		}
		if !isAllUpper(token) {
			continue
		}
		if cashtag {
			out = append(out, token)
			continue
		}
		if len(token) >= 2 && !tickerStopwords[token] {
			out = append(out, token)
		}
	}
	return out
}

func isAllUpper(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(s) > 0
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
