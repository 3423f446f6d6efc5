package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/rostersync"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.HealthResponse:
		o.printf("Status: %s\n", v.Status)
		o.printf("Storage: %s\n", v.Storage)
	case response.Event:
		o.printEvent(v)
	case []response.Event:
		o.printEvents(v)
	case response.EntriesResponse:
		o.printEntries(v)
	case response.Entry:
		o.printEntry(v)
	case response.AddEntryResponse:
		o.printAddEntry(v)
	case response.ResultsResponse:
		o.printResults(v)
	case []response.LeagueTotal:
		o.printStandings(v)
	case []response.Player:
		o.printPlayers(v)
	case []response.Candidate:
		o.printCandidates(v)
	case response.SyncReport:
		o.printSyncReport(v)
	case []rostersync.Outcome:
		o.printOutcomes(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printEvent(e response.Event) {
	o.printf("Event: %s (%s)\n", e.Title, e.ID)
	o.printf("Date: %s\n", e.EventDate)
	if e.Venue != nil {
		o.printf("Venue: %s\n", *e.Venue)
	}
	o.printf("Buy-in: %s\n", e.BuyIn)
	if e.RakeCents != nil {
		o.printf("Rake: %s\n", model.FormatPence(*e.RakeCents))
	}
}

func (o *Output) printEvents(events []response.Event) {
	if len(events) == 0 {
		o.printf("No events\n")
		return
	}
	for _, e := range events {
		o.printf("%s  %-30s %8s  %s\n", e.EventDate, e.Title, e.BuyIn, e.ID)
	}
}

func (o *Output) printEntries(r response.EntriesResponse) {
	o.printf("Entries: %d  Rebuys: %d  Add-ons: %d\n", r.Totals.Entries, r.Totals.Rebuys, r.Totals.Addons)
	for _, e := range r.Entries {
		o.printEntry(e)
	}
}

func (o *Output) printEntry(e response.Entry) {
	name := e.DisplayName
	if name == "" {
		name = e.PlayerID
	}
	addon := ""
	if e.Addon {
		addon = " +addon"
	}
	place := ""
	if e.FinishPlace != nil {
		place = fmt.Sprintf(" #%d", *e.FinishPlace)
	}
	o.printf("  - %s (%s) rebuys=%d%s%s [%s]\n", name, e.PlayerID, e.Rebuys, addon, place, e.ID)
}

func (o *Output) printAddEntry(r response.AddEntryResponse) {
	if r.Player == nil {
		o.printf("Entered into %s\n", r.EventID)
		return
	}
	o.printf("Entered %s (%s) into %s\n", r.Player.DisplayName, r.Player.ID, r.EventID)
}

func (o *Output) printResults(r response.ResultsResponse) {
	o.printf("%s (%s)\n", r.Event.Title, r.Event.EventDate)
	o.printf("Prize pool: %s\n", r.PrizePool)
	for _, s := range r.Standings {
		place := "-"
		if s.FinishPlace != nil {
			place = fmt.Sprintf("%d", *s.FinishPlace)
		}
		o.printf("%4s  %-24s %10s\n", place, s.DisplayName, s.Cash)
	}
}

func (o *Output) printStandings(totals []response.LeagueTotal) {
	if len(totals) == 0 {
		o.printf("No results yet\n")
		return
	}
	o.printf("%4s  %-24s %6s %4s %7s\n", "#", "Player", "Points", "Wins", "Podiums")
	for i, t := range totals {
		o.printf("%4d  %-24s %6d %4d %7d\n", i+1, t.DisplayName, t.TotalPoints, t.Wins, t.Podiums)
	}
}

func (o *Output) printPlayers(players []response.Player) {
	for _, p := range players {
		o.printf("  - %s%s (%s)\n", p.DisplayName, handleSuffix(p.Handle), p.ID)
	}
}

func (o *Output) printCandidates(candidates []response.Candidate) {
	if len(candidates) == 0 {
		o.printf("No matching players\n")
		return
	}
	for _, c := range candidates {
		handle := c.Handle
		o.printf("  - %s%s (%s)\n", c.Name, handleSuffix(&handle), c.ID)
	}
}

func (o *Output) printSyncReport(r response.SyncReport) {
	if len(r.Added) == 0 && len(r.Removed) == 0 {
		o.printf("Roster unchanged\n")
		return
	}
	if len(r.Added) > 0 {
		o.printf("Added: %s\n", strings.Join(r.Added, ", "))
	}
	if len(r.Removed) > 0 {
		o.printf("Removed: %s\n", strings.Join(r.Removed, ", "))
	}
}

func (o *Output) printOutcomes(outcomes []rostersync.Outcome) {
	for _, out := range outcomes {
		action := "deselected"
		if out.Selected {
			action = "selected"
		}
		switch {
		case out.Reverted:
			o.printf("%s: %s failed, reverted (%v)\n", out.PlayerID, action, out.Err)
		case out.Stale:
			o.printf("%s: %s superseded\n", out.PlayerID, action)
		default:
			o.printf("%s: %s\n", out.PlayerID, action)
		}
	}
}

func handleSuffix(handle *string) string {
	if handle == nil || *handle == "" {
		return ""
	}
	return " @" + *handle
}
