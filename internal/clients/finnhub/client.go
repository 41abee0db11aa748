// Package finnhub provides a client for the Finnhub API
package finnhub

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

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the FinnhubClient interface
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a new Finnhub client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Finnhub API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Finnhub API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// Ensure Client implements FinnhubClient
var _ interfaces.FinnhubClient = (*Client)(nil)

// --- Tagged upstream response schemas, narrowed at the fetch boundary ---

type quoteResponse struct {
	Current   flexFloat64 `json:"c"`
	Change    flexFloat64 `json:"d"`
	ChangePct flexFloat64 `json:"dp"`
	High      flexFloat64 `json:"h"`
	Low       flexFloat64 `json:"l"`
	Open      flexFloat64 `json:"o"`
	PrevClose flexFloat64 `json:"pc"`
	Timestamp int64       `json:"t"`
}

// GetQuote returns the current quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp quoteResponse
	if err := c.get(ctx, "/quote", params, &resp); err != nil {
		return nil, err
	}

	if resp.Current == 0 && resp.Timestamp == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	return &models.RealTimeQuote{
		Symbol:    symbol,
		Price:     float64(resp.Current),
		Change:    float64(resp.Change),
		ChangePct: float64(resp.ChangePct),
		High:      float64(resp.High),
		Low:       float64(resp.Low),
		Open:      float64(resp.Open),
		PrevClose: float64(resp.PrevClose),
		Timestamp: time.Unix(resp.Timestamp, 0).UTC(),
	}, nil
}

type candleResponse struct {
	Close  []float64 `json:"c"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Open   []float64 `json:"o"`
	Times  []int64   `json:"t"`
	Status string    `json:"s"`
}

// GetCandles returns price bars between from and to at the given resolution.
func (c *Client) GetCandles(ctx context.Context, symbol, resolution string, from, to time.Time) ([]models.HistoricalPricePoint, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", resolution)
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))

	var resp candleResponse
	if err := c.get(ctx, "/stock/candle", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "ok" {
		return nil, fmt.Errorf("no candle data for %s (status: %s)", symbol, resp.Status)
	}
	if len(resp.Times) != len(resp.Close) {
		return nil, fmt.Errorf("malformed candle data for %s: %d timestamps, %d closes", symbol, len(resp.Times), len(resp.Close))
	}

	points := make([]models.HistoricalPricePoint, 0, len(resp.Times))
	for i, ts := range resp.Times {
		p := models.HistoricalPricePoint{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: resp.Close[i],
		}
		if i < len(resp.Open) {
			p.Open = resp.Open[i]
		}
		if i < len(resp.High) {
			p.High = resp.High[i]
		}
		if i < len(resp.Low) {
			p.Low = resp.Low[i]
		}
		points = append(points, p)
	}
	return points, nil
}

type metricResponse struct {
	Metric struct {
		PETTM         flexFloat64 `json:"peTTM"`
		EPSTTM        flexFloat64 `json:"epsTTM"`
		DividendYield flexFloat64 `json:"currentDividendYieldTTM"`
	} `json:"metric"`
}

// GetBasicFinancials returns headline metrics for a symbol.
func (c *Client) GetBasicFinancials(ctx context.Context, symbol string) (*models.BasicFinancials, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("metric", "all")

	var resp metricResponse
	if err := c.get(ctx, "/stock/metric", params, &resp); err != nil {
		return nil, err
	}

	bf := &models.BasicFinancials{
		Symbol:        symbol,
		PERatio:       float64(resp.Metric.PETTM),
		EPS:           float64(resp.Metric.EPSTTM),
		DividendYield: float64(resp.Metric.DividendYield),
	}

	// The metric endpoint carries no price; take it from the quote.
	if quote, err := c.GetQuote(ctx, symbol); err == nil {
		bf.Price = quote.Price
	}

	return bf, nil
}

type earningsEntry struct {
	Actual  flexFloat64 `json:"actual"`
	Period  string      `json:"period"`
	Quarter int         `json:"quarter"`
	Year    int         `json:"year"`
}

// GetQuarterlyEPS returns quarterly EPS reports, most recent first.
func (c *Client) GetQuarterlyEPS(ctx context.Context, symbol string) ([]models.EarningsReport, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp []earningsEntry
	if err := c.get(ctx, "/stock/earnings", params, &resp); err != nil {
		return nil, err
	}

	reports := make([]models.EarningsReport, 0, len(resp))
	for _, e := range resp {
		if e.Year == 0 {
			continue
		}
		reports = append(reports, models.EarningsReport{
			Year:    e.Year,
			Quarter: e.Quarter,
			EPS:     float64(e.Actual),
			Period:  e.Period,
		})
	}
	return reports, nil
}

type financialsReportedResponse struct {
	Data []struct {
		Year    int    `json:"year"`
		Quarter int    `json:"quarter"`
		Form    string `json:"form"`
		Report  struct {
			IncomeStatement []struct {
				Concept string      `json:"concept"`
				Value   flexFloat64 `json:"value"`
			} `json:"ic"`
		} `json:"report"`
	} `json:"data"`
}

// GetFinancialsReported returns filed reports with standardized concepts.
func (c *Client) GetFinancialsReported(ctx context.Context, symbol string) ([]models.FinancialReport, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("freq", "quarterly")

	var resp financialsReportedResponse
	if err := c.get(ctx, "/stock/financials-reported", params, &resp); err != nil {
		return nil, err
	}

	reports := make([]models.FinancialReport, 0, len(resp.Data))
	for _, d := range resp.Data {
		r := models.FinancialReport{
			Year:    d.Year,
			Quarter: d.Quarter,
			Form:    d.Form,
		}
		for _, c := range d.Report.IncomeStatement {
			r.Concepts = append(r.Concepts, models.ReportConcept{
				Concept: c.Concept,
				Value:   float64(c.Value),
			})
		}
		reports = append(reports, r)
	}
	return reports, nil
}
