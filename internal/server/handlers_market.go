package server

import (
	"net/http"
)

// handleHeatmap handles GET /api/market/heatmap.
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	heatmap, meta, err := s.app.MarketService.GetHeatmap(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metricResponse{Data: heatmap, CacheMeta: meta})
}

// handleTrending handles GET /api/market/trending.
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	trending, meta, err := s.app.MarketService.GetTrending(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metricResponse{Data: trending, CacheMeta: meta})
}

// handleSP500PE handles GET /api/market/sp500pe.
func (s *Server) handleSP500PE(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	result, meta, err := s.app.MarketService.GetSP500PE(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, metricResponse{Data: result, CacheMeta: meta})
}
