package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/stockpulse/internal/models"
)

// FinnhubClient is the upstream financial data provider.
type FinnhubClient interface {
	// GetQuote returns the current quote for a symbol.
	GetQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error)

	// GetCandles returns price bars between from and to at the given
	// resolution ("D" daily, "M" monthly).
	GetCandles(ctx context.Context, symbol, resolution string, from, to time.Time) ([]models.HistoricalPricePoint, error)

	// GetBasicFinancials returns headline metrics (P/E, dividend yield).
	GetBasicFinancials(ctx context.Context, symbol string) (*models.BasicFinancials, error)

	// GetQuarterlyEPS returns quarterly EPS reports, most recent first.
	GetQuarterlyEPS(ctx context.Context, symbol string) ([]models.EarningsReport, error)

	// GetFinancialsReported returns filed reports with standardized concepts.
	GetFinancialsReported(ctx context.Context, symbol string) ([]models.FinancialReport, error)
}

// RedditClient is the upstream social data provider.
type RedditClient interface {
	// SearchPosts searches a subreddit for posts mentioning the query within
	// the given period ("24h" or "7d").
	SearchPosts(ctx context.Context, subreddit, query, period string, limit int) ([]models.RedditPost, error)

	// HotPosts returns the current hot posts of a subreddit.
	HotPosts(ctx context.Context, subreddit string, limit int) ([]models.RedditPost, error)
}
