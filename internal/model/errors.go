package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound      = errors.New("player not found")
	ErrDuplicateHandle     = errors.New("handle is already taken")
	ErrPlayerIDRequired    = errors.New("player id is required")
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrQueryRequired       = errors.New("handle or display name is required")

	// Event errors
	ErrEventNotFound   = errors.New("event not found")
	ErrEventIDRequired = errors.New("event id is required")
	ErrTitleRequired   = errors.New("title is required")
	ErrDateRequired    = errors.New("event date is required")
	ErrInvalidDate     = errors.New("event date must be YYYY-MM-DD")
	ErrInvalidAmount   = errors.New("amount must not be negative")

	// Entry errors
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEntryIDRequired    = errors.New("entry id is required")
	ErrDuplicateEntry     = errors.New("player is already entered in event")
	ErrEntryEventMismatch = errors.New("entry does not belong to event")
	ErrInvalidPlace       = errors.New("finish place must be at least 1")

	// Access errors
	ErrNotAuthorized = errors.New("not authorized")
)

// IsValidationError reports whether err is one of the request validation errors
// that must be raised before any storage call is made.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var validationErrors = []error{
	ErrPlayerIDRequired,
	ErrDisplayNameRequired,
	ErrQueryRequired,
	ErrEventIDRequired,
	ErrTitleRequired,
	ErrDateRequired,
	ErrInvalidDate,
	ErrInvalidAmount,
	ErrEntryIDRequired,
	ErrInvalidPlace,
}
