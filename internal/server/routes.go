package server

import (
	"net/http"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Derived metrics
	mux.HandleFunc("/api/metrics/pe/", s.handlePEHistory)
	mux.HandleFunc("/api/metrics/dividends/", s.handleDividendHistory)
	mux.HandleFunc("/api/metrics/revenue/", s.handleRevenueGrowth)

	// Sentiment
	mux.HandleFunc("/api/sentiment/", s.handleSentiment)

	// Market-wide views
	mux.HandleFunc("/api/market/heatmap", s.handleHeatmap)
	mux.HandleFunc("/api/market/trending", s.handleTrending)
	mux.HandleFunc("/api/market/sp500pe", s.handleSP500PE)

	// Portfolio
	mux.HandleFunc("/api/portfolio/holdings/", s.handleHoldingByID)
	mux.HandleFunc("/api/portfolio/holdings", s.handleHoldings)
	mux.HandleFunc("/api/portfolio/history/chart", s.handleHistoryChart)
	mux.HandleFunc("/api/portfolio/history", s.handleHistory)

	// Users and rewards
	mux.HandleFunc("/api/users/check/", s.handleUsernameCheck)
	mux.HandleFunc("/api/users/me", s.handleCurrentUser)
	mux.HandleFunc("/api/rewards/claim", s.handleClaimDaily)

	// Watchlist
	mux.HandleFunc("/api/watchlist/", s.handleWatchlistSymbol)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)
}
