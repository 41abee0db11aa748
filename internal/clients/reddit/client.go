// Package reddit provides a client for the public Reddit JSON API
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
	"github.com/bobmcallan/stockpulse/internal/models"
)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultUserAgent = "stockpulse/1.0"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 1 // requests per second; Reddit throttles hard
)

// Client implements the RedditClient interface against the unauthenticated
// listing endpoints.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Reddit client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// listingResponse is the tagged shape of a Reddit listing, narrowed at the
// fetch boundary instead of trusting field presence at point of use.
type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Subreddit   string  `json:"subreddit"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				Permalink   string  `json:"permalink"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*listingResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Reddit API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Reddit API error: status %d on %s: %s", resp.StatusCode, path, string(body))
	}

	var listing listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing from %s: %w", path, err)
	}
	return &listing, nil
}

func (l *listingResponse) toPosts(baseURL string) []models.RedditPost {
	posts := make([]models.RedditPost, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		d := child.Data
		posts = append(posts, models.RedditPost{
			Title:       d.Title,
			Subreddit:   d.Subreddit,
			Score:       d.Score,
			NumComments: d.NumComments,
			URL:         baseURL + d.Permalink,
			CreatedUTC:  d.CreatedUTC,
		})
	}
	return posts
}

// SearchPosts searches a subreddit for posts mentioning the query.
// period maps to Reddit's time filter: "24h" -> day, "7d" -> week.
func (c *Client) SearchPosts(ctx context.Context, subreddit, query, period string, limit int) ([]models.RedditPost, error) {
	t := "week"
	if period == models.SentimentPeriod24h {
		t = "day"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("sort", "top")
	params.Set("t", t)
	params.Set("limit", strconv.Itoa(limit))

	listing, err := c.get(ctx, fmt.Sprintf("/r/%s/search.json", subreddit), params)
	if err != nil {
		return nil, err
	}
	return listing.toPosts(c.baseURL), nil
}

// HotPosts returns the current hot posts of a subreddit.
func (c *Client) HotPosts(ctx context.Context, subreddit string, limit int) ([]models.RedditPost, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	listing, err := c.get(ctx, fmt.Sprintf("/r/%s/hot.json", subreddit), params)
	if err != nil {
		return nil, err
	}
	return listing.toPosts(c.baseURL), nil
}

// Ensure Client implements RedditClient
var _ interfaces.RedditClient = (*Client)(nil)
