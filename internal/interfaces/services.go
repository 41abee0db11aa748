package interfaces

import (
	"context"

	"github.com/bobmcallan/stockpulse/internal/models"
)

// MetricsService computes and caches derived financial metrics per symbol.
type MetricsService interface {
	GetPEHistory(ctx context.Context, symbol string) (*models.PEHistory, models.CacheMeta, error)
	GetDividendHistory(ctx context.Context, symbol string) (*models.DividendHistory, models.CacheMeta, error)
	GetRevenueGrowth(ctx context.Context, symbol string) (*models.RevenueGrowth, models.CacheMeta, error)
}

// SentimentService computes and caches Reddit sentiment per symbol.
type SentimentService interface {
	GetSentiment(ctx context.Context, symbol, period string) (*models.RedditSentimentData, models.CacheMeta, error)
}

// PortfolioService manages holdings and the derived history series.
type PortfolioService interface {
	ListHoldings(ctx context.Context, identity string) ([]models.Holding, error)
	AddHolding(ctx context.Context, identity string, h models.Holding) (*models.Holding, error)
	DeleteHolding(ctx context.Context, identity, holdingID string) error
	GetHistory(ctx context.Context, identity, timeframe string, forceRefresh bool) (*models.PortfolioHistory, models.CacheMeta, error)
	RenderHistoryChart(ctx context.Context, identity, timeframe string) ([]byte, error)
}

// MarketService serves market-wide views: heatmap, trending, index P/E.
type MarketService interface {
	GetHeatmap(ctx context.Context) (*models.Heatmap, models.CacheMeta, error)
	GetTrending(ctx context.Context) (*models.Trending, models.CacheMeta, error)
	GetSP500PE(ctx context.Context) (*models.SP500PE, models.CacheMeta, error)
}

// RewardsService handles gamified daily-login points.
type RewardsService interface {
	ClaimDaily(ctx context.Context, identity string) (*models.DailyClaim, error)
}

// UserService handles profile records and username availability.
type UserService interface {
	CheckUsername(ctx context.Context, username string) (*models.UsernameCheck, error)
	GetUser(ctx context.Context, identity string) (*models.UserRecord, error)
	SaveUser(ctx context.Context, user *models.UserRecord) error
}

// WatchlistService manages the per-identity symbol watchlist.
type WatchlistService interface {
	List(ctx context.Context, identity string) ([]string, error)
	Add(ctx context.Context, identity, symbol string) error
	Remove(ctx context.Context, identity, symbol string) error
}
