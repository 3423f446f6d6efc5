package model

import "time"

// View identifies a rendered view whose data may go stale after a write
type View string

const (
	ViewAdminEntries    View = "admin-entries"
	ViewPublicEvent     View = "public-event"
	ViewEventList       View = "event-list"
	ViewLeagueStandings View = "league-standings"
)

// Invalidation tells downstream consumers that a view must be re-fetched
type Invalidation struct {
	View      View
	EventID   EventID // Empty for views that are not scoped to an event
	Reason    string  // The mutation that caused the invalidation, e.g. "bulk_add"
	Timestamp time.Time
}

// Views invalidated by a change to an event's entries
var EntryViews = []View{ViewAdminEntries, ViewPublicEvent}
