package models

import "time"

// RedditPost is a single upstream post, narrowed at the fetch boundary.
type RedditPost struct {
	Title       string  `json:"title"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
	Sentiment   string  `json:"sentiment,omitempty"` // bullish | bearish | neutral
}

// Sentiment labels.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// Periods accepted by the sentiment endpoint.
const (
	SentimentPeriod24h = "24h"
	SentimentPeriod7d  = "7d"
)

// SubredditSentiment aggregates classified posts for one subreddit.
type SubredditSentiment struct {
	Subreddit     string `json:"subreddit"`
	Mentions      int    `json:"mentions"`
	TotalUpvotes  int    `json:"total_upvotes"`
	TotalComments int    `json:"total_comments"`
	Bullish       int    `json:"bullish"`
	Bearish       int    `json:"bearish"`
	Neutral       int    `json:"neutral"`
}

// RedditSentimentData is the cached sentiment view for a symbol.
type RedditSentimentData struct {
	Symbol             string               `json:"symbol"`
	Period             string               `json:"period"` // "24h" or "7d"
	RedditScore        int                  `json:"reddit_score"` // 0-100
	Sentiment          string               `json:"sentiment"`
	TotalMentions      int                  `json:"total_mentions"`
	TotalUpvotes       int                  `json:"total_upvotes"`
	TotalComments      int                  `json:"total_comments"`
	SubredditBreakdown []SubredditSentiment `json:"subreddit_breakdown"`
	TopPosts           []RedditPost         `json:"top_posts"` // 5 max
	FetchedAt          time.Time            `json:"fetched_at"`
}
