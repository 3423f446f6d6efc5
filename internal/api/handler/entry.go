package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/pokerleague/internal/api/request"
	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/league"
	"github.com/mcoot/pokerleague/internal/services/rostersync"
)

// EntryHandler handles the admin entries endpoints of an event
type EntryHandler struct {
	league *league.Controller
	logger *slog.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(league *league.Controller, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{league: league, logger: logger}
}

// List handles GET /api/v1/events/{eventID}/entries
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.league.ListEntries(r.Context(), eventID(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EntriesFromViews(views))
}

// Add handles POST /api/v1/events/{eventID}/entries
func (h *EntryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req request.AddEntryRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	id := eventID(r)
	var player *model.Player
	var err error
	switch {
	case req.PlayerID != "":
		err = h.league.AddPlayer(r.Context(), id, req.PlayerID)
	case req.Query != "":
		player, err = h.league.AddExistingPlayer(r.Context(), id, req.Query)
	case req.DisplayName != "":
		player, err = h.league.CreateAndAddPlayer(r.Context(), id, req.DisplayName, req.Handle)
	default:
		err = NewInvalidRequestError("One of player_id, query or display_name is required.")
	}
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	resp := response.AddEntryResponse{EventID: string(id)}
	if player != nil {
		p := response.PlayerFromModel(player)
		resp.Player = &p
	}
	response.JSON(w, http.StatusCreated, resp)
}

// BulkAdd handles POST /api/v1/events/{eventID}/entries/bulk
func (h *EntryHandler) BulkAdd(w http.ResponseWriter, r *http.Request) {
	var req request.BulkAddRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.league.BulkAdd(r.Context(), eventID(r), req.PlayerIDs); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.NoContent(w)
}

// BulkRemove handles DELETE /api/v1/events/{eventID}/entries
func (h *EntryHandler) BulkRemove(w http.ResponseWriter, r *http.Request) {
	var req request.BulkRemoveRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.league.BulkRemove(r.Context(), eventID(r), req.EntryIDs); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.NoContent(w)
}

// Remove handles DELETE /api/v1/events/{eventID}/entries/{entryID}
func (h *EntryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.league.RemoveEntry(r.Context(), eventID(r), entryID(r)); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.NoContent(w)
}

// RemovePlayer handles DELETE /api/v1/events/{eventID}/players/{playerID}
func (h *EntryHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.league.RemovePlayer(r.Context(), eventID(r), playerID(r)); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.NoContent(w)
}

// SetSelected handles PUT /api/v1/events/{eventID}/players/{playerID}
func (h *EntryHandler) SetSelected(w http.ResponseWriter, r *http.Request) {
	var req request.SetSelectedRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.league.SetSelected(r.Context(), eventID(r), playerID(r), req.Selected); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.NoContent(w)
}

// Rebuy handles POST /api/v1/events/{eventID}/entries/{entryID}/rebuy
func (h *EntryHandler) Rebuy(w http.ResponseWriter, r *http.Request) {
	entry, err := h.league.IncrementRebuy(r.Context(), eventID(r), entryID(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EntryFromModel(entry))
}

// Addon handles POST /api/v1/events/{eventID}/entries/{entryID}/addon
func (h *EntryHandler) Addon(w http.ResponseWriter, r *http.Request) {
	entry, err := h.league.ToggleAddon(r.Context(), eventID(r), entryID(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EntryFromModel(entry))
}

// Result handles PUT /api/v1/events/{eventID}/entries/{entryID}/result
func (h *EntryHandler) Result(w http.ResponseWriter, r *http.Request) {
	var req request.RecordResultRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	entry, err := h.league.RecordResult(r.Context(), eventID(r), entryID(r), league.ResultInput{
		FinishPlace: req.FinishPlace,
		CashGBP:     req.CashGBP,
		Points:      req.Points,
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EntryFromModel(entry))
}

// SyncRoster handles PUT /api/v1/events/{eventID}/roster
func (h *EntryHandler) SyncRoster(w http.ResponseWriter, r *http.Request) {
	var req request.SyncRosterRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	report, err := h.league.SyncRoster(r.Context(), rostersync.SyncRequest{
		EventID:          eventID(r),
		DesiredPlayerIDs: req.DesiredPlayerIDs,
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SyncReportFromRostersync(report))
}
