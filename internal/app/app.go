package app

import (
	"fmt"
	"os"
	"time"

	"github.com/bobmcallan/stockpulse/internal/cache"
	"github.com/bobmcallan/stockpulse/internal/clients/finnhub"
	"github.com/bobmcallan/stockpulse/internal/clients/reddit"
	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/fetch"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/services/market"
	"github.com/bobmcallan/stockpulse/internal/services/metrics"
	"github.com/bobmcallan/stockpulse/internal/services/portfolio"
	"github.com/bobmcallan/stockpulse/internal/services/rewards"
	"github.com/bobmcallan/stockpulse/internal/services/sentiment"
	"github.com/bobmcallan/stockpulse/internal/services/users"
	"github.com/bobmcallan/stockpulse/internal/services/watchlist"
	redisstore "github.com/bobmcallan/stockpulse/internal/storage/redis"
)

// App holds all initialized services, clients, and caches. It is the shared
// core wired once at startup and handed to the HTTP server.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Store        interfaces.KeyedStore
	Cache        *cache.Envelope
	Memory       *cache.Memory
	Orchestrator *fetch.Orchestrator

	MetricsService   interfaces.MetricsService
	SentimentService interfaces.SentimentService
	PortfolioService interfaces.PortfolioService
	MarketService    interfaces.MarketService
	RewardsService   interfaces.RewardsService
	UserService      interfaces.UserService
	WatchlistService interfaces.WatchlistService

	StartupTime time.Time

	warmer *warmer
}

// NewApp initializes config, logging, storage, clients, and services.
// configPath may be empty, in which case STOCKPULSE_CONFIG and the default
// file locations are consulted.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	if configPath == "" {
		configPath = os.Getenv("STOCKPULSE_CONFIG")
	}
	if configPath == "" {
		configPath = "config/stockpulse.toml"
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	store := redisstore.New(config.Storage.Redis, logger)
	if !store.Available() {
		logger.Warn().Str("addr", config.Storage.Redis.Addr).Msg("Key-value store unavailable, running degraded")
	}

	envelope := cache.NewEnvelope(store, logger)
	memory := cache.NewMemory(common.FreshnessMemory)

	orch := fetch.New(logger,
		fetch.WithBatchSize(config.Fetch.BatchSize),
		fetch.WithBatchDelay(config.Fetch.GetBatchDelay()),
		fetch.WithTimeout(config.Fetch.GetTimeout()),
	)

	finnhubKey, err := common.ResolveAPIKey("finnhub_api_key", config.Clients.Finnhub.APIKey)
	if err != nil {
		logger.Warn().Msg("Finnhub API key not configured, upstream fetches will fail")
	}

	finnhubClient := finnhub.NewClient(finnhubKey,
		finnhub.WithBaseURL(config.Clients.Finnhub.BaseURL),
		finnhub.WithLogger(logger),
		finnhub.WithRateLimit(config.Clients.Finnhub.RateLimit),
		finnhub.WithTimeout(config.Clients.Finnhub.GetTimeout()),
	)

	redditClient := reddit.NewClient(
		reddit.WithBaseURL(config.Clients.Reddit.BaseURL),
		reddit.WithUserAgent(config.Clients.Reddit.UserAgent),
		reddit.WithLogger(logger),
		reddit.WithRateLimit(config.Clients.Reddit.RateLimit),
		reddit.WithTimeout(config.Clients.Reddit.GetTimeout()),
	)

	userService := users.NewService(store, logger)

	a := &App{
		Config:       config,
		Logger:       logger,
		Store:        store,
		Cache:        envelope,
		Memory:       memory,
		Orchestrator: orch,

		MetricsService:   metrics.NewService(finnhubClient, envelope, logger),
		SentimentService: sentiment.NewService(redditClient, envelope, orch, logger),
		PortfolioService: portfolio.NewService(store, envelope, finnhubClient, orch, logger),
		MarketService:    market.NewService(finnhubClient, redditClient, envelope, memory, orch, config.Market, logger),
		RewardsService:   rewards.NewService(userService, logger),
		UserService:      userService,
		WatchlistService: watchlist.NewService(store, logger),

		StartupTime: startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// StartWarmer launches the periodic cache warmer when enabled in config.
func (a *App) StartWarmer() error {
	if !a.Config.Warmer.Enabled {
		return nil
	}
	w, err := newWarmer(a.Config.Warmer.Schedule, a.MarketService, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to start cache warmer: %w", err)
	}
	a.warmer = w
	w.start()
	return nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.warmer != nil {
		a.warmer.stop()
		a.warmer = nil
	}
	if a.Store != nil {
		a.Store.Close()
		a.Store = nil
	}
}
