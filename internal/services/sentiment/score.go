// Package sentiment implements Reddit sentiment scoring for StockPulse
package sentiment

import (
	"math"
	"sort"
	"strings"

	"github.com/bobmcallan/stockpulse/internal/models"
)

// Subreddits scanned per symbol, with their fixed score weights.
var subredditWeights = []struct {
	Name   string
	Weight float64
}{
	{"wallstreetbets", 1.0},
	{"stocks", 0.8},
	{"options", 0.7},
	{"investing", 0.6},
}

// Keyword lists for post classification. Matching is on the lowercased
// title only; ties fall back to engagement.
var (
	bullishKeywords = []string{
		"buy", "call", "calls", "moon", "bullish", "long", "rocket",
		"yolo", "undervalued", "squeeze", "breakout", "gain", "green",
	}
	bearishKeywords = []string{
		"sell", "put", "puts", "short", "bearish", "crash", "dump",
		"overvalued", "drop", "tank", "loss", "red", "bag",
	}
)

// Engagement tie-break thresholds.
const (
	tieBreakBullishScore = 50
	tieBreakBearishScore = 5
)

// searchLimit is the per-subreddit post fetch size; mention percentage is
// computed against it.
const searchLimit = 25

// maxTopPosts bounds the posts carried in the response.
const maxTopPosts = 5

// Score-component caps: mention share contributes at most 50 points,
// average upvotes 30, average comments 20.
const (
	mentionPointsCap = 50.0
	upvotePointsCap  = 30.0
	commentPointsCap = 20.0
)

// Classify labels a post bullish, bearish, or neutral by keyword matching
// with an engagement tie-break.
func Classify(post models.RedditPost) string {
	title := strings.ToLower(post.Title)

	var bullish, bearish int
	for _, kw := range bullishKeywords {
		if containsWord(title, kw) {
			bullish++
		}
	}
	for _, kw := range bearishKeywords {
		if containsWord(title, kw) {
			bearish++
		}
	}

	switch {
	case bullish > bearish:
		return models.SentimentBullish
	case bearish > bullish:
		return models.SentimentBearish
	case post.Score > tieBreakBullishScore:
		return models.SentimentBullish
	case post.Score < tieBreakBearishScore:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

// containsWord matches kw as a whole word in text.
func containsWord(text, kw string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

// Aggregate classifies posts and rolls them up into the per-subreddit
// breakdown plus the labelled top posts.
func Aggregate(postsBySubreddit map[string][]models.RedditPost) ([]models.SubredditSentiment, []models.RedditPost) {
	breakdown := make([]models.SubredditSentiment, 0, len(subredditWeights))
	var allPosts []models.RedditPost

	for _, sw := range subredditWeights {
		posts := postsBySubreddit[sw.Name]
		if len(posts) == 0 {
			continue
		}

		agg := models.SubredditSentiment{Subreddit: sw.Name, Mentions: len(posts)}
		for _, p := range posts {
			p.Sentiment = Classify(p)
			agg.TotalUpvotes += p.Score
			agg.TotalComments += p.NumComments
			switch p.Sentiment {
			case models.SentimentBullish:
				agg.Bullish++
			case models.SentimentBearish:
				agg.Bearish++
			default:
				agg.Neutral++
			}
			allPosts = append(allPosts, p)
		}
		breakdown = append(breakdown, agg)
	}

	sort.Slice(allPosts, func(i, j int) bool { return allPosts[i].Score > allPosts[j].Score })
	if len(allPosts) > maxTopPosts {
		allPosts = allPosts[:maxTopPosts]
	}
	return breakdown, allPosts
}

// Score computes the 0-100 Reddit Score from the per-subreddit breakdown.
// Each subreddit contributes mention share (60%, capped 50 pts) plus
// engagement (40%: avg upvotes capped 30, avg comments capped 20), scaled
// by its fixed weight and a sentiment multiplier in [0.5, 1.5]. The empty
// breakdown scores 0.
func Score(breakdown []models.SubredditSentiment) int {
	var weightedSum, weightTotal float64

	for _, sub := range breakdown {
		if sub.Mentions == 0 {
			continue
		}
		weight := weightFor(sub.Subreddit)
		if weight == 0 {
			continue
		}

		mentionPct := float64(sub.Mentions) / searchLimit * 100
		mentionPts := math.Min(mentionPointsCap, 0.6*mentionPct)

		avgUpvotes := float64(sub.TotalUpvotes) / float64(sub.Mentions)
		avgComments := float64(sub.TotalComments) / float64(sub.Mentions)
		engagementPts := math.Min(upvotePointsCap, avgUpvotes/10) + math.Min(commentPointsCap, avgComments/5)

		raw := mentionPts + engagementPts

		classified := float64(sub.Bullish + sub.Bearish + sub.Neutral)
		multiplier := 1.0
		if classified > 0 {
			multiplier = 1 + 0.5*float64(sub.Bullish-sub.Bearish)/classified
		}
		multiplier = clamp(multiplier, 0.5, 1.5)

		weightedSum += weight * clamp(raw*multiplier, 0, 100)
		weightTotal += weight
	}

	if weightTotal == 0 {
		return 0
	}
	return int(clamp(weightedSum/weightTotal, 0, 100))
}

// OverallSentiment labels the aggregate: bullish or bearish when either
// side holds a strict majority of classified posts, else neutral.
func OverallSentiment(breakdown []models.SubredditSentiment) string {
	var bullish, bearish, total int
	for _, sub := range breakdown {
		bullish += sub.Bullish
		bearish += sub.Bearish
		total += sub.Bullish + sub.Bearish + sub.Neutral
	}
	if total == 0 {
		return models.SentimentNeutral
	}
	switch {
	case float64(bullish)/float64(total) > 0.5:
		return models.SentimentBullish
	case float64(bearish)/float64(total) > 0.5:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

func weightFor(subreddit string) float64 {
	for _, sw := range subredditWeights {
		if sw.Name == subreddit {
			return sw.Weight
		}
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
