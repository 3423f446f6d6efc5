package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mcoot/pokerleague/internal/api/middleware"
	"github.com/mcoot/pokerleague/internal/services/auth"
	"github.com/mcoot/pokerleague/internal/web/sse"
)

// StreamHandler serves SSE invalidation streams
type StreamHandler struct {
	hubManager  *sse.HubManager
	authService *auth.Service
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hubManager *sse.HubManager, authService *auth.Service) *StreamHandler {
	return &StreamHandler{hubManager: hubManager, authService: authService}
}

// Event handles GET /api/v1/events/{eventID}/stream?view=admin|public
// The admin view needs the admin token.
func (h *StreamHandler) Event(w http.ResponseWriter, r *http.Request) {
	id := eventID(r)
	switch r.URL.Query().Get("view") {
	case "admin":
		middleware.Admin(h.authService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.serve(w, r, sse.AdminTopic(id))
		})).ServeHTTP(w, r)
	case "", "public":
		h.serve(w, r, sse.EventTopic(id))
	default:
		WriteError(w, NewInvalidRequestError("view must be admin or public"))
	}
}

// Events handles GET /api/v1/events/stream
func (h *StreamHandler) Events(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, sse.EventsTopic)
}

// Standings handles GET /api/v1/standings/stream
func (h *StreamHandler) Standings(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, sse.StandingsTopic)
}

func (h *StreamHandler) serve(w http.ResponseWriter, r *http.Request, topic sse.Topic) {
	sse.ServeSSE(w, r, h.hubManager, topic, uuid.NewString())
}
