package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/mcoot/pokerleague/internal/model"
)

const (
	codeUniqueViolation       = "23505"
	codeInsufficientPrivilege = "42501"
)

// isDuplicate reports whether err is a unique-constraint violation
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate")
}

// isNotAuthorized reports whether err is a privilege or row-level security rejection
func isNotAuthorized(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeInsufficientPrivilege {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "row-level security") || containsWord(msg, "rls")
}

func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	}) {
		if f == word {
			return true
		}
	}
	return false
}

// wrapError annotates a driver error with the failed operation, mapping
// authorization failures onto model.ErrNotAuthorized
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isNotAuthorized(err) {
		return fmt.Errorf("%s: %w: %v", op, model.ErrNotAuthorized, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
