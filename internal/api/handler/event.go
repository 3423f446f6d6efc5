package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pokerleague/internal/api/request"
	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/league"
)

// EventHandler handles event endpoints
type EventHandler struct {
	league *league.Controller
	logger *slog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(league *league.Controller, logger *slog.Logger) *EventHandler {
	return &EventHandler{league: league, logger: logger}
}

// List handles GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.league.ListEvents(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventsFromModel(events))
}

// Create handles POST /api/v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateEventRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	event, err := h.league.CreateEvent(r.Context(), league.CreateEventInput{
		Title:     req.Title,
		EventDate: req.EventDate,
		Venue:     req.Venue,
		BuyInGBP:  req.BuyInGBP,
		RakeGBP:   req.RakeGBP,
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.EventFromModel(event))
}

// Get handles GET /api/v1/events/{eventID}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.league.GetEvent(r.Context(), eventID(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventFromModel(event))
}

// Results handles GET /api/v1/events/{eventID}/results
func (h *EventHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.league.EventResults(r.Context(), eventID(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ResultsFromLeague(results))
}

func eventID(r *http.Request) model.EventID {
	return model.EventID(mux.Vars(r)["eventID"])
}

func entryID(r *http.Request) model.EntryID {
	return model.EntryID(mux.Vars(r)["entryID"])
}

func playerID(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["playerID"])
}
