// Package models defines the domain data structures for StockPulse
package models

import "time"

// RealTimeQuote is a live quote for a symbol.
type RealTimeQuote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	Open      float64   `json:"open,omitempty"`
	PrevClose float64   `json:"prev_close,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoricalPricePoint is a single bar of candle data. Immutable once fetched.
type HistoricalPricePoint struct {
	Date  string  `json:"date"` // ISO date
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// BasicFinancials carries the headline per-symbol metrics used by the
// derived-metric calculators.
type BasicFinancials struct {
	Symbol        string  `json:"symbol"`
	PERatio       float64 `json:"pe_ratio"`
	EPS           float64 `json:"eps"`
	DividendYield float64 `json:"dividend_yield"` // percent
	Price         float64 `json:"price"`
}

// EarningsReport is one quarterly EPS figure from filings. Reports are
// deduplicated by (year, quarter) with the most recent filing winning.
type EarningsReport struct {
	Year    int     `json:"year"`
	Quarter int     `json:"quarter"`
	EPS     float64 `json:"eps"`
	Period  string  `json:"period"` // ISO date of the quarter end
}

// ReportConcept is a single standardized accounting line item from a filing.
type ReportConcept struct {
	Concept string  `json:"concept"`
	Value   float64 `json:"value"`
}

// FinancialReport is one filed report (10-K or 10-Q) with its income
// statement concepts.
type FinancialReport struct {
	Year     int             `json:"year"`
	Quarter  int             `json:"quarter"`
	Form     string          `json:"form"` // "10-K" or "10-Q"
	Concepts []ReportConcept `json:"concepts"`
}

// Metric sources. Estimated series are fabricated fallbacks and must never
// be presented as real data.
const (
	SourceFinnhub   = "finnhub"
	SourceEstimated = "estimated"
)

// PEPoint is one point of a historical P/E series.
type PEPoint struct {
	Date string  `json:"date"`
	PE   float64 `json:"pe"`
}

// PEHistory is the historical P/E view for a symbol.
type PEHistory struct {
	Symbol    string    `json:"symbol"`
	Current   float64   `json:"current"`
	Average   float64   `json:"average"`
	Points    []PEPoint `json:"points"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// DividendPoint is one year of the (back-projected) dividend series.
type DividendPoint struct {
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

// DividendHistory is the dividend growth view for a symbol. The series is
// synthetic by construction, so Source is always "estimated".
type DividendHistory struct {
	Symbol        string          `json:"symbol"`
	CurrentAnnual float64         `json:"current_annual"`
	Points        []DividendPoint `json:"points"`
	FiveYearAvg   float64         `json:"five_year_avg"`
	FiveYearCAGR  float64         `json:"five_year_cagr"` // percent
	Source        string          `json:"source"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// RevenuePoint is one quarter of revenue with its YoY growth where a
// same-quarter prior-year figure exists.
type RevenuePoint struct {
	Year      int      `json:"year"`
	Quarter   int      `json:"quarter"`
	Revenue   float64  `json:"revenue"`
	YoYGrowth *float64 `json:"yoy_growth,omitempty"` // percent
}

// RevenueGrowth is the revenue growth view for a symbol.
type RevenueGrowth struct {
	Symbol        string         `json:"symbol"`
	Points        []RevenuePoint `json:"points"`
	AverageGrowth float64        `json:"average_growth"` // percent
	Source        string         `json:"source"`
	FetchedAt     time.Time      `json:"fetched_at"`
}

// HeatmapEntry is one cell of the global heatmap.
type HeatmapEntry struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// Heatmap is the full heatmap payload.
type Heatmap struct {
	Entries   []HeatmapEntry `json:"entries"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// TrendingSymbol is one entry of the Reddit trending list.
type TrendingSymbol struct {
	Symbol   string `json:"symbol"`
	Mentions int    `json:"mentions"`
}

// Trending is the trending payload.
type Trending struct {
	Symbols   []TrendingSymbol `json:"symbols"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// SP500PE is the index-level P/E payload.
type SP500PE struct {
	PE        float64   `json:"pe"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}
