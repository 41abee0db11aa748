package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockpulse/internal/models"
)

func TestClassify_Keywords(t *testing.T) {
	cases := []struct {
		title string
		score int
		want  string
	}{
		{"Time to buy the dip, going long", 10, models.SentimentBullish},
		{"Bought puts, this will crash", 10, models.SentimentBearish},
		{"Quarterly earnings discussion", 100, models.SentimentBullish}, // tie-break: high engagement
		{"Quarterly earnings discussion", 2, models.SentimentBearish},   // tie-break: dead post
		{"Quarterly earnings discussion", 20, models.SentimentNeutral},
		{"Calls printing, to the moon", 1, models.SentimentBullish}, // keywords beat engagement
	}
	for _, tc := range cases {
		got := Classify(models.RedditPost{Title: tc.title, Score: tc.score})
		assert.Equal(t, tc.want, got, "title=%q score=%d", tc.title, tc.score)
	}
}

func TestClassify_WholeWordsOnly(t *testing.T) {
	// "redder" must not match "red", "buyer" must not match "buy"... the
	// word boundary check is what keeps score labels from drifting.
	got := Classify(models.RedditPost{Title: "buyers remorse in redderland", Score: 20})
	assert.Equal(t, models.SentimentNeutral, got)
}

func TestScore_EmptyIsZero(t *testing.T) {
	assert.Equal(t, 0, Score(nil))
	assert.Equal(t, 0, Score([]models.SubredditSentiment{}))
}

func TestScore_AlwaysInRange(t *testing.T) {
	cases := [][]models.SubredditSentiment{
		{{Subreddit: "wallstreetbets", Mentions: 25, TotalUpvotes: 100000, TotalComments: 50000, Bullish: 25}},
		{{Subreddit: "investing", Mentions: 1, TotalUpvotes: 0, TotalComments: 0, Bearish: 1}},
		{{Subreddit: "unknown_sub", Mentions: 10, TotalUpvotes: 100}},
		{
			{Subreddit: "wallstreetbets", Mentions: 25, TotalUpvotes: 9000, TotalComments: 4000, Bullish: 20, Neutral: 5},
			{Subreddit: "stocks", Mentions: 3, TotalUpvotes: 50, TotalComments: 20, Bearish: 3},
		},
	}
	for i, breakdown := range cases {
		score := Score(breakdown)
		assert.GreaterOrEqual(t, score, 0, "case %d", i)
		assert.LessOrEqual(t, score, 100, "case %d", i)
	}
}

func TestScore_BullishMixOutscoresBearish(t *testing.T) {
	bullish := []models.SubredditSentiment{
		{Subreddit: "wallstreetbets", Mentions: 10, TotalUpvotes: 500, TotalComments: 200, Bullish: 9, Bearish: 1},
	}
	bearish := []models.SubredditSentiment{
		{Subreddit: "wallstreetbets", Mentions: 10, TotalUpvotes: 500, TotalComments: 200, Bullish: 1, Bearish: 9},
	}
	assert.Greater(t, Score(bullish), Score(bearish))
}

func TestOverallSentiment_Majority(t *testing.T) {
	assert.Equal(t, models.SentimentNeutral, OverallSentiment(nil))

	bullish := []models.SubredditSentiment{{Subreddit: "stocks", Bullish: 6, Bearish: 2, Neutral: 2, Mentions: 10}}
	assert.Equal(t, models.SentimentBullish, OverallSentiment(bullish))

	bearish := []models.SubredditSentiment{{Subreddit: "stocks", Bullish: 1, Bearish: 8, Neutral: 1, Mentions: 10}}
	assert.Equal(t, models.SentimentBearish, OverallSentiment(bearish))

	// Exactly 50% is not a majority
	split := []models.SubredditSentiment{{Subreddit: "stocks", Bullish: 5, Bearish: 5, Mentions: 10}}
	assert.Equal(t, models.SentimentNeutral, OverallSentiment(split))
}

func TestAggregate(t *testing.T) {
	posts := map[string][]models.RedditPost{
		"wallstreetbets": {
			{Title: "YOLO calls on NVDA", Subreddit: "wallstreetbets", Score: 900, NumComments: 300},
			{Title: "nvda discussion", Subreddit: "wallstreetbets", Score: 30, NumComments: 10},
		},
		"stocks": {
			{Title: "Why I sold everything, crash incoming", Subreddit: "stocks", Score: 120, NumComments: 80},
		},
	}

	breakdown, top := Aggregate(posts)
	require.Len(t, breakdown, 2)

	// Breakdown follows the fixed weight order
	wsb := breakdown[0]
	assert.Equal(t, "wallstreetbets", wsb.Subreddit)
	assert.Equal(t, 2, wsb.Mentions)
	assert.Equal(t, 930, wsb.TotalUpvotes)
	assert.Equal(t, 1, wsb.Bullish)
	assert.Equal(t, 1, wsb.Neutral)

	assert.Equal(t, 1, breakdown[1].Bearish)

	// Top posts sorted by score, labelled, capped at 5
	require.Len(t, top, 3)
	assert.Equal(t, 900, top[0].Score)
	assert.Equal(t, models.SentimentBullish, top[0].Sentiment)
}

func TestAggregate_TopPostsCappedAtFive(t *testing.T) {
	posts := map[string][]models.RedditPost{"stocks": {}}
	for i := 0; i < 12; i++ {
		posts["stocks"] = append(posts["stocks"], models.RedditPost{Title: "post", Score: i})
	}
	_, top := Aggregate(posts)
	assert.Len(t, top, 5)
}
