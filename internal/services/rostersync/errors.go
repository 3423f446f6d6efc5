package rostersync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcoot/pokerleague/internal/model"
)

var (
	ErrSubmitInProgress = errors.New("a roster submission is already in progress")
	ErrEventMismatch    = errors.New("request is for a different event")
	ErrClosed           = errors.New("roster sync is closed")
)

// Kind classifies a failure by how the sync controller must react to it
type Kind int

const (
	KindNone Kind = iota
	// KindValidation is raised before any gateway call
	KindValidation
	// KindConflict is a duplicate row; the write is already satisfied
	KindConflict
	// KindAuthorization is shown to the user and never retried
	KindAuthorization
	// KindTransient covers every other gateway failure
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	default:
		return "transient"
	}
}

// Classify maps an error returned by validation or the gateway to its Kind
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case model.IsValidationError(err), errors.Is(err, ErrEventMismatch):
		return KindValidation
	case errors.Is(err, model.ErrDuplicateEntry),
		strings.Contains(strings.ToLower(err.Error()), "duplicate"):
		return KindConflict
	case errors.Is(err, model.ErrNotAuthorized):
		return KindAuthorization
	default:
		return KindTransient
	}
}

// ActionError is a failed roster action, described for the person who asked for it
type ActionError struct {
	Action string
	Kind   Kind
	Err    error
}

// NewActionError classifies err and wraps it with the action that failed
func NewActionError(action string, err error) *ActionError {
	return &ActionError{Action: action, Kind: Classify(err), Err: err}
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing text for the failure
func (e *ActionError) Message() string {
	switch e.Kind {
	case KindAuthorization:
		return "Not authorized to " + e.Action + "."
	case KindValidation:
		msg := e.Err.Error()
		if msg == "" {
			return "Invalid request."
		}
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	default:
		return "Failed to " + e.Action + ". Please try again."
	}
}
