package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/stockpulse/internal/common"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := "ok"
	storeStatus := "available"
	if !s.app.Store.Available() {
		status = "degraded"
		storeStatus = "unavailable"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  status,
		"store":   storeStatus,
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
		"version": common.GetVersion(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
	})
}

// requireIdentity resolves the request identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity := common.ResolveUserID(r.Context())
	if identity == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return identity, true
}
