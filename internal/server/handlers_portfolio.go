package server

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/stockpulse/internal/models"
	"github.com/bobmcallan/stockpulse/internal/services/portfolio"
)

// handleHoldings handles GET and POST /api/portfolio/holdings.
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		holdings, err := s.app.PortfolioService.ListHoldings(r.Context(), identity)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"holdings": holdings})

	case http.MethodPost:
		var h models.Holding
		if !DecodeJSON(w, r, &h) {
			return
		}
		created, err := s.app.PortfolioService.AddHolding(r.Context(), identity, h)
		if err != nil {
			if errors.Is(err, portfolio.ErrInvalidHolding) {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleHoldingByID handles DELETE /api/portfolio/holdings/{id}.
func (s *Server) handleHoldingByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	holdingID := PathParam(r, "/api/portfolio/holdings/", "")
	if holdingID == "" {
		WriteError(w, http.StatusBadRequest, "Holding ID is required")
		return
	}

	if err := s.app.PortfolioService.DeleteHolding(r.Context(), identity, holdingID); err != nil {
		if errors.Is(err, portfolio.ErrHoldingNotFound) {
			WriteError(w, http.StatusNotFound, "Holding not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleHistory handles GET /api/portfolio/history?timeframe=1M&force_refresh=true.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = models.TimeframeAll
	}
	forceRefresh := r.URL.Query().Get("force_refresh") == "true"

	history, meta, err := s.app.PortfolioService.GetHistory(r.Context(), identity, timeframe, forceRefresh)
	if err != nil {
		if errors.Is(err, portfolio.ErrInvalidTimeframe) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metricResponse{Data: history, CacheMeta: meta})
}

// handleHistoryChart handles GET /api/portfolio/history/chart?timeframe=1M.
// Responds with a PNG rendering of the history series.
func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = models.TimeframeAll
	}

	png, err := s.app.PortfolioService.RenderHistoryChart(r.Context(), identity, timeframe)
	if err != nil {
		if errors.Is(err, portfolio.ErrInvalidTimeframe) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
