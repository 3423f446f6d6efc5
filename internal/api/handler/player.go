package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/services/league"
)

// PlayerHandler handles player and league table endpoints
type PlayerHandler struct {
	league *league.Controller
	logger *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(league *league.Controller, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{league: league, logger: logger}
}

// List handles GET /api/v1/players
// With ?q= it returns roster candidates matching the query instead.
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	if q, ok := r.URL.Query()["q"]; ok {
		candidates, err := h.league.SearchPlayers(r.Context(), q[0])
		if err != nil {
			writeError(h.logger, w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, response.CandidatesFromRoster(candidates))
		return
	}

	players, err := h.league.ListPlayers(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayersFromModel(players))
}

// Standings handles GET /api/v1/standings
func (h *PlayerHandler) Standings(w http.ResponseWriter, r *http.Request) {
	totals, err := h.league.LeagueStandings(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeagueTotalsFromModel(totals))
}
