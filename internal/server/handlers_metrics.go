package server

import (
	"net/http"

	"github.com/bobmcallan/stockpulse/internal/models"
)

// metricResponse is the envelope for cached derived-metric payloads.
type metricResponse struct {
	Data interface{} `json:"data"`
	models.CacheMeta
}

// handlePEHistory handles GET /api/metrics/pe/{symbol}.
func (s *Server) handlePEHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := PathParam(r, "/api/metrics/pe/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	history, meta, err := s.app.MetricsService.GetPEHistory(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metricResponse{Data: history, CacheMeta: meta})
}

// handleDividendHistory handles GET /api/metrics/dividends/{symbol}.
func (s *Server) handleDividendHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := PathParam(r, "/api/metrics/dividends/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	history, meta, err := s.app.MetricsService.GetDividendHistory(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metricResponse{Data: history, CacheMeta: meta})
}

// handleRevenueGrowth handles GET /api/metrics/revenue/{symbol}.
func (s *Server) handleRevenueGrowth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := PathParam(r, "/api/metrics/revenue/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	growth, meta, err := s.app.MetricsService.GetRevenueGrowth(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metricResponse{Data: growth, CacheMeta: meta})
}

// handleSentiment handles GET /api/sentiment/{symbol}?period=24h|7d.
func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := PathParam(r, "/api/sentiment/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = models.SentimentPeriod24h
	}
	if period != models.SentimentPeriod24h && period != models.SentimentPeriod7d {
		WriteError(w, http.StatusBadRequest, "Period must be 24h or 7d")
		return
	}

	data, meta, err := s.app.SentimentService.GetSentiment(r.Context(), symbol, period)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metricResponse{Data: data, CacheMeta: meta})
}
