package response

import (
	"time"

	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/league"
	"github.com/mcoot/pokerleague/internal/services/roster"
	"github.com/mcoot/pokerleague/internal/services/rostersync"
)

// Player represents a player in API responses
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Handle      *string   `json:"handle,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Handle:      p.Handle,
		CreatedAt:   p.CreatedAt,
	}
}

// PlayersFromModel converts a slice of players
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// Candidate is a player offered by a roster search
type Candidate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle,omitempty"`
}

// CandidatesFromRoster converts roster search results
func CandidatesFromRoster(cs []roster.Candidate) []Candidate {
	out := make([]Candidate, len(cs))
	for i, c := range cs {
		out[i] = Candidate{ID: string(c.ID), Name: c.Name, Handle: c.Handle}
	}
	return out
}

// Event represents an event in API responses
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	EventDate  string    `json:"event_date"`
	Venue      *string   `json:"venue,omitempty"`
	BuyInCents int64     `json:"buy_in_cents"`
	BuyIn      string    `json:"buy_in"`
	RakeCents  *int64    `json:"rake_cents,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventFromModel converts a model.Event
func EventFromModel(e *model.Event) Event {
	return Event{
		ID:         string(e.ID),
		Title:      e.Title,
		EventDate:  e.EventDate,
		Venue:      e.Venue,
		BuyInCents: e.BuyInCents,
		BuyIn:      model.FormatPence(e.BuyInCents),
		RakeCents:  e.RakeCents,
		CreatedAt:  e.CreatedAt,
	}
}

// EventsFromModel converts a slice of events
func EventsFromModel(events []*model.Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = EventFromModel(e)
	}
	return out
}

// Entry represents an entry in API responses
type Entry struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	PlayerID    string    `json:"player_id"`
	Buyins      int       `json:"buyins"`
	Rebuys      int       `json:"rebuys"`
	Addon       bool      `json:"addon"`
	FinishPlace *int      `json:"finish_place,omitempty"`
	CashCents   int64     `json:"cash_cents"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
	DisplayName string    `json:"display_name,omitempty"`
	Handle      *string   `json:"handle,omitempty"`
}

// EntryFromModel converts a model.Entry
func EntryFromModel(e *model.Entry) Entry {
	return Entry{
		ID:          string(e.ID),
		EventID:     string(e.EventID),
		PlayerID:    string(e.PlayerID),
		Buyins:      e.Buyins,
		Rebuys:      e.Rebuys,
		Addon:       e.Addon,
		FinishPlace: e.FinishPlace,
		CashCents:   e.CashCents,
		Points:      e.Points,
		CreatedAt:   e.CreatedAt,
	}
}

// EntryViewFromModel converts an entry joined with its player
func EntryViewFromModel(v *model.EntryView) Entry {
	e := EntryFromModel(&v.Entry)
	e.DisplayName = v.DisplayName
	e.Handle = v.Handle
	return e
}

// EntriesResponse lists an event's entries with their counters
type EntriesResponse struct {
	Entries []Entry           `json:"entries"`
	Totals  model.EntryTotals `json:"totals"`
}

// EntriesFromViews builds an EntriesResponse
func EntriesFromViews(views []*model.EntryView) EntriesResponse {
	resp := EntriesResponse{Entries: make([]Entry, len(views))}
	entries := make([]*model.Entry, len(views))
	for i, v := range views {
		resp.Entries[i] = EntryViewFromModel(v)
		entries[i] = &v.Entry
	}
	resp.Totals = model.TotalsOf(entries)
	return resp
}

// AddEntryResponse is returned after adding a player to an event
type AddEntryResponse struct {
	EventID string  `json:"event_id"`
	Player  *Player `json:"player,omitempty"`
}

// Standing represents one line of an event's results
type Standing struct {
	EntryID     string  `json:"entry_id"`
	PlayerID    string  `json:"player_id"`
	DisplayName string  `json:"display_name"`
	Handle      *string `json:"handle,omitempty"`
	FinishPlace *int    `json:"finish_place,omitempty"`
	CashCents   int64   `json:"cash_cents"`
	Cash        string  `json:"cash"`
}

// ResultsResponse is an event with its standings
type ResultsResponse struct {
	Event          Event      `json:"event"`
	Standings      []Standing `json:"standings"`
	PrizePoolCents int64      `json:"prize_pool_cents"`
	PrizePool      string     `json:"prize_pool"`
}

// ResultsFromLeague converts league.EventResults
func ResultsFromLeague(r *league.EventResults) ResultsResponse {
	resp := ResultsResponse{
		Event:          EventFromModel(r.Event),
		Standings:      make([]Standing, len(r.Standings)),
		PrizePoolCents: r.PrizePoolCents,
		PrizePool:      model.FormatPence(r.PrizePoolCents),
	}
	for i, s := range r.Standings {
		resp.Standings[i] = Standing{
			EntryID:     string(s.EntryID),
			PlayerID:    string(s.PlayerID),
			DisplayName: s.DisplayName,
			Handle:      s.Handle,
			FinishPlace: s.FinishPlace,
			CashCents:   s.CashCents,
			Cash:        model.FormatPence(s.CashCents),
		}
	}
	return resp
}

// LeagueTotal is one line of the league table
type LeagueTotal struct {
	PlayerID    string  `json:"player_id"`
	DisplayName string  `json:"display_name"`
	Handle      *string `json:"handle,omitempty"`
	TotalPoints int     `json:"total_points"`
	Wins        int     `json:"wins"`
	Podiums     int     `json:"podiums"`
}

// LeagueTotalsFromModel converts league totals
func LeagueTotalsFromModel(totals []*model.LeagueTotal) []LeagueTotal {
	out := make([]LeagueTotal, len(totals))
	for i, t := range totals {
		out[i] = LeagueTotal{
			PlayerID:    string(t.PlayerID),
			DisplayName: t.DisplayName,
			Handle:      t.Handle,
			TotalPoints: t.TotalPoints,
			Wins:        t.Wins,
			Podiums:     t.Podiums,
		}
	}
	return out
}

// SyncReport is returned by a roster sync
type SyncReport struct {
	EventID string   `json:"event_id"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Calls   int      `json:"calls"`
	Atomic  bool     `json:"atomic"`
}

// SyncReportFromRostersync converts a rostersync.Report
func SyncReportFromRostersync(r rostersync.Report) SyncReport {
	return SyncReport{
		EventID: string(r.EventID),
		Added:   idStrings(r.Added),
		Removed: idStrings(r.Removed),
		Calls:   r.Calls,
		Atomic:  r.Atomic,
	}
}

func idStrings(ids []model.PlayerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// HealthResponse reports server and storage health
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
