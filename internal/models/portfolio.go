package models

import "time"

// Holding is one position in a user's portfolio. Mutated only via explicit
// add/delete; persisted directly without versioning.
type Holding struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Shares        float64 `json:"shares"`
	PurchasePrice float64 `json:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date"` // ISO date
	TotalCost     float64 `json:"total_cost"`
}

// PortfolioSnapshot is the portfolio's value on a single date.
type PortfolioSnapshot struct {
	Date            string  `json:"date"`
	TotalValue      float64 `json:"total_value"`
	TotalCost       float64 `json:"total_cost"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
}

// PortfolioHistory is the cached snapshot series for a user. HoldingsHash is
// the content fingerprint of the holdings list at calculation time; a cached
// history is valid only while it matches the current holdings.
type PortfolioHistory struct {
	UserIdentity   string              `json:"user_identity"`
	Snapshots      []PortfolioSnapshot `json:"snapshots"`
	HoldingsHash   string              `json:"holdings_hash"`
	LastCalculated time.Time           `json:"last_calculated"`
}

// Timeframes accepted by the history endpoint.
const (
	Timeframe1W  = "1W"
	Timeframe1M  = "1M"
	Timeframe3M  = "3M"
	Timeframe1Y  = "1Y"
	TimeframeAll = "All"
)

// ValidTimeframe reports whether tf is one of the accepted timeframes.
func ValidTimeframe(tf string) bool {
	switch tf {
	case Timeframe1W, Timeframe1M, Timeframe3M, Timeframe1Y, TimeframeAll:
		return true
	}
	return false
}
