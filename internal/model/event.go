package model

import (
	"strings"
	"time"
)

// EventID uniquely identifies a league event (a single tournament night)
type EventID string

// DateLayout is the civil date format used for event dates
const DateLayout = "2006-01-02"

// Event is a single league event that players can be entered into
type Event struct {
	ID         EventID   `json:"id"`
	Title      string    `json:"title"`
	EventDate  string    `json:"event_date"` // YYYY-MM-DD
	Venue      *string   `json:"venue,omitempty"`
	BuyInCents int64     `json:"buy_in_cents"`
	RakeCents  *int64    `json:"rake_cents,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ParseEventDate validates a YYYY-MM-DD date string
func ParseEventDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrDateRequired
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(DateLayout), nil
}
