package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/auth"
	"github.com/mcoot/pokerleague/internal/services/rostersync"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeEventNotFound    = "EVENT_NOT_FOUND"
	CodeEntryNotFound    = "ENTRY_NOT_FOUND"
	CodeHandleTaken      = "HANDLE_TAKEN"
	CodeDuplicateEntry   = "DUPLICATE_ENTRY"
	CodeSubmitInProgress = "SUBMIT_IN_PROGRESS"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Action errors already carry a message meant for the user
	var ae *rostersync.ActionError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case rostersync.KindAuthorization:
			return &httpError{http.StatusForbidden, APIError{CodeForbidden, ae.Message()}}
		case rostersync.KindValidation:
			return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, ae.Message()}}
		}
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found."}}
	case errors.Is(err, model.ErrEventNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeEventNotFound, "Event not found."}}
	case errors.Is(err, model.ErrEntryNotFound), errors.Is(err, model.ErrEntryEventMismatch):
		return &httpError{http.StatusNotFound, APIError{CodeEntryNotFound, "Entry not found."}}
	case errors.Is(err, model.ErrDuplicateHandle):
		return &httpError{http.StatusConflict, APIError{CodeHandleTaken, "Handle is already taken."}}
	case errors.Is(err, model.ErrDuplicateEntry):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateEntry, "Player is already entered."}}
	case errors.Is(err, rostersync.ErrSubmitInProgress):
		return &httpError{http.StatusConflict, APIError{CodeSubmitInProgress, "A roster submission is already in progress."}}
	case errors.Is(err, model.ErrNotAuthorized):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Not authorized."}}
	case model.IsValidationError(err), errors.Is(err, rostersync.ErrEventMismatch):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, sentence(err.Error())}}

	case errors.Is(err, auth.ErrTokenRequired):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Admin token required."}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid admin token."}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// sentence capitalises a sentinel error message for display
func sentence(msg string) string {
	if msg == "" {
		return "Invalid request."
	}
	// Wrapped errors read "context: cause"; the cause is what the user needs
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
