package server

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/stockpulse/internal/services/rewards"
	"github.com/bobmcallan/stockpulse/internal/services/users"
	"github.com/bobmcallan/stockpulse/internal/services/watchlist"
)

// handleUsernameCheck handles GET /api/users/check/{username}.
func (s *Server) handleUsernameCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	username := PathParam(r, "/api/users/check/", "")
	if username == "" {
		WriteError(w, http.StatusBadRequest, "Username is required")
		return
	}

	check, err := s.app.UserService.CheckUsername(r.Context(), username)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, check)
}

// handleCurrentUser handles GET /api/users/me.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := s.app.UserService.GetUser(r.Context(), identity)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// handleClaimDaily handles POST /api/rewards/claim.
func (s *Server) handleClaimDaily(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	claim, err := s.app.RewardsService.ClaimDaily(r.Context(), identity)
	if err != nil {
		if errors.Is(err, rewards.ErrAlreadyClaimed) {
			WriteError(w, http.StatusConflict, "Daily points already claimed today")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, claim)
}

// handleWatchlist handles GET and POST /api/watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		symbols, err := s.app.WatchlistService.List(r.Context(), identity)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"symbols": symbols})

	case http.MethodPost:
		var body struct {
			Symbol string `json:"symbol"`
		}
		if !DecodeJSON(w, r, &body) {
			return
		}
		if err := s.app.WatchlistService.Add(r.Context(), identity, body.Symbol); err != nil {
			if errors.Is(err, watchlist.ErrInvalidSymbol) {
				WriteError(w, http.StatusBadRequest, "Symbol is required")
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, map[string]string{"status": "added"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistSymbol handles DELETE /api/watchlist/{symbol}.
func (s *Server) handleWatchlistSymbol(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	symbol := PathParam(r, "/api/watchlist/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	if err := s.app.WatchlistService.Remove(r.Context(), identity, symbol); err != nil {
		if errors.Is(err, watchlist.ErrInvalidSymbol) {
			WriteError(w, http.StatusBadRequest, "Symbol is required")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
