package request

import "github.com/mcoot/pokerleague/internal/model"

// CreateEventRequest is the request body for creating an event
type CreateEventRequest struct {
	Title     string   `json:"title"`
	EventDate string   `json:"event_date"`
	Venue     string   `json:"venue,omitempty"`
	BuyInGBP  float64  `json:"buy_in_gbp"`
	RakeGBP   *float64 `json:"rake_gbp,omitempty"`
}

// AddEntryRequest is the request body for adding a player to an event.
// Exactly one form is used: PlayerID, Query, or DisplayName with an optional Handle.
type AddEntryRequest struct {
	PlayerID    model.PlayerID `json:"player_id,omitempty"`
	Query       string         `json:"query,omitempty"`
	DisplayName string         `json:"display_name,omitempty"`
	Handle      string         `json:"handle,omitempty"`
}

// BulkAddRequest is the request body for adding several players
type BulkAddRequest struct {
	PlayerIDs []model.PlayerID `json:"player_ids"`
}

// BulkRemoveRequest is the request body for removing several entries
type BulkRemoveRequest struct {
	EntryIDs []model.EntryID `json:"entry_ids"`
}

// SetSelectedRequest is the request body for selecting or deselecting one player
type SetSelectedRequest struct {
	Selected bool `json:"selected"`
}

// RecordResultRequest is the request body for recording an entry's result
type RecordResultRequest struct {
	FinishPlace *int    `json:"finish_place,omitempty"`
	CashGBP     float64 `json:"cash_gbp"`
	Points      int     `json:"points"`
}

// SyncRosterRequest is the request body for replacing an event's roster
type SyncRosterRequest struct {
	DesiredPlayerIDs []model.PlayerID `json:"desired_player_ids"`
}
