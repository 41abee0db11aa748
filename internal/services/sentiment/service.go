package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/stockpulse/internal/cache"
	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/fetch"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
)

// Service computes Reddit sentiment behind the cache envelope. Sentiment
// uses a 2-hour freshness TTL with a 4-hour stale-serve window on the
// error path.
type Service struct {
	reddit interfaces.RedditClient
	cache  *cache.Envelope
	orch   *fetch.Orchestrator
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewService creates a sentiment service.
func NewService(reddit interfaces.RedditClient, envelope *cache.Envelope, orch *fetch.Orchestrator, logger *common.Logger) *Service {
	return &Service{
		reddit: reddit,
		cache:  envelope,
		orch:   orch,
		logger: logger,
		now:    time.Now,
	}
}

func sentimentKey(symbol, period string) string {
	return fmt.Sprintf("reddit:sentiment:%s:%s", symbol, period)
}

// GetSentiment returns the sentiment view for a symbol over "24h" or "7d".
func (s *Service) GetSentiment(ctx context.Context, symbol, period string) (*models.RedditSentimentData, models.CacheMeta, error) {
	symbol = common.NormalizeSymbol(symbol)
	if period != models.SentimentPeriod24h && period != models.SentimentPeriod7d {
		return nil, models.CacheMeta{}, fmt.Errorf("invalid sentiment period %q", period)
	}
	key := sentimentKey(symbol, period)

	if l := s.cache.Read(ctx, key); l.Status == cache.Fresh {
		var cached models.RedditSentimentData
		if err := l.Decode(&cached); err == nil {
			return &cached, models.CacheMeta{Cached: true, AgeSeconds: int(l.Age.Seconds())}, nil
		}
	}

	data, err := s.compute(ctx, symbol, period)
	if err != nil {
		if l, ok := s.cache.ServeStaleWithin(ctx, key, common.StaleServeSentiment); ok {
			var stale models.RedditSentimentData
			if derr := l.Decode(&stale); derr == nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Serving stale sentiment after upstream failure")
				return &stale, models.CacheMeta{Cached: true, AgeSeconds: int(l.Age.Seconds()), Stale: true}, nil
			}
		}
		return nil, models.CacheMeta{}, err
	}

	s.cache.Write(ctx, key, data, common.FreshnessSentiment)
	return data, models.CacheMeta{}, nil
}

// compute fans the search out across all weighted subreddits. Per-subreddit
// failures are tolerated; the computation fails only when every subreddit
// fails.
func (s *Service) compute(ctx context.Context, symbol, period string) (*models.RedditSentimentData, error) {
	names := make([]string, len(subredditWeights))
	for i, sw := range subredditWeights {
		names[i] = sw.Name
	}

	results, summary := s.orch.FetchAll(ctx, names, func(callCtx context.Context, subreddit string) (any, error) {
		return s.reddit.SearchPosts(callCtx, subreddit, symbol, period, searchLimit)
	})

	if summary.Succeeded == 0 {
		return nil, fmt.Errorf("all %d subreddit fetches failed for %s: %v", summary.Attempted, symbol, summary.Errors)
	}

	postsBySubreddit := fetch.Collected[[]models.RedditPost](results)
	breakdown, topPosts := Aggregate(postsBySubreddit)

	data := &models.RedditSentimentData{
		Symbol:             symbol,
		Period:             period,
		RedditScore:        Score(breakdown),
		Sentiment:          OverallSentiment(breakdown),
		SubredditBreakdown: breakdown,
		TopPosts:           topPosts,
		FetchedAt:          s.now(),
	}
	for _, sub := range breakdown {
		data.TotalMentions += sub.Mentions
		data.TotalUpvotes += sub.TotalUpvotes
		data.TotalComments += sub.TotalComments
	}
	return data, nil
}

// Ensure Service implements SentimentService
var _ interfaces.SentimentService = (*Service)(nil)
