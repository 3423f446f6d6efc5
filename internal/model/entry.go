package model

import "time"

// EntryID uniquely identifies a persisted entry row
type EntryID string

// Default counters for a freshly created entry
const (
	DefaultBuyins = 1
	DefaultRebuys = 0
	DefaultAddon  = false
)

// Entry is a player's registration in one event.
// At most one entry exists per (event, player) pair.
type Entry struct {
	ID          EntryID   `json:"id"`
	EventID     EventID   `json:"event_id"`
	PlayerID    PlayerID  `json:"player_id"`
	Buyins      int       `json:"buyins"`
	Rebuys      int       `json:"rebuys"`
	Addon       bool      `json:"addon"`
	FinishPlace *int      `json:"finish_place,omitempty"`
	CashCents   int64     `json:"cash_cents"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEntry creates an entry with the default counters
func NewEntry(id EntryID, eventID EventID, playerID PlayerID, now time.Time) *Entry {
	return &Entry{
		ID:        id,
		EventID:   eventID,
		PlayerID:  playerID,
		Buyins:    DefaultBuyins,
		Rebuys:    DefaultRebuys,
		Addon:     DefaultAddon,
		CreatedAt: now,
	}
}

// EntryView is an entry joined with its player, as shown on the admin entries page
type EntryView struct {
	Entry
	DisplayName string  `json:"display_name"`
	Handle      *string `json:"handle,omitempty"`
}

// EntryTotals summarises the counters across an event's entries
type EntryTotals struct {
	Entries int `json:"entries"`
	Buyins  int `json:"buyins"`
	Rebuys  int `json:"rebuys"`
	Addons  int `json:"addons"`
}

// TotalsOf sums the counters of the given entries
func TotalsOf(entries []*Entry) EntryTotals {
	var t EntryTotals
	for _, e := range entries {
		t.Entries++
		t.Buyins += e.Buyins
		t.Rebuys += e.Rebuys
		if e.Addon {
			t.Addons++
		}
	}
	return t
}

// Result is the outcome recorded against an entry once an event is played
type Result struct {
	FinishPlace *int
	CashCents   int64
	Points      int
}
