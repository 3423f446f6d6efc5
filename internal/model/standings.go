package model

import "sort"

// Standing is one row of an event's results (v_event_standings)
type Standing struct {
	EventID     EventID  `json:"event_id"`
	EntryID     EntryID  `json:"entry_id"`
	PlayerID    PlayerID `json:"player_id"`
	FinishPlace *int     `json:"finish_place,omitempty"`
	CashCents   int64    `json:"cash_cents"`
	DisplayName string   `json:"display_name"`
	Handle      *string  `json:"handle,omitempty"`
}

// LeagueTotal is one row of the league table (v_league_totals joined with players)
type LeagueTotal struct {
	PlayerID    PlayerID `json:"player_id"`
	TotalPoints int      `json:"total_points"`
	Wins        int      `json:"wins"`
	Podiums     int      `json:"podiums"`
	DisplayName string   `json:"display_name"`
	Handle      *string  `json:"handle,omitempty"`
}

// PrizePool sums the cash paid out across standings
func PrizePool(standings []*Standing) int64 {
	var total int64
	for _, s := range standings {
		total += s.CashCents
	}
	return total
}

// SortStandings orders standings by finish place, unplaced entries last
func SortStandings(standings []*Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i].FinishPlace, standings[j].FinishPlace
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// SortLeagueTotals orders totals by points descending
func SortLeagueTotals(totals []*LeagueTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalPoints > totals[j].TotalPoints
	})
}

// StandingsFromEntries derives event standings from entry results.
// Used by backends without the standings view.
func StandingsFromEntries(entries []*EntryView) []*Standing {
	standings := make([]*Standing, 0, len(entries))
	for _, e := range entries {
		standings = append(standings, &Standing{
			EventID:     e.EventID,
			EntryID:     e.ID,
			PlayerID:    e.PlayerID,
			FinishPlace: e.FinishPlace,
			CashCents:   e.CashCents,
			DisplayName: e.DisplayName,
			Handle:      e.Handle,
		})
	}
	SortStandings(standings)
	return standings
}

// LeagueTotalsFromEntries derives the league table from every entry's results.
// Wins count first places, podiums count places one to three.
func LeagueTotalsFromEntries(entries []*Entry, players map[PlayerID]*Player) []*LeagueTotal {
	byPlayer := make(map[PlayerID]*LeagueTotal)
	var order []PlayerID
	for _, e := range entries {
		t, ok := byPlayer[e.PlayerID]
		if !ok {
			t = &LeagueTotal{PlayerID: e.PlayerID}
			byPlayer[e.PlayerID] = t
			order = append(order, e.PlayerID)
		}
		t.TotalPoints += e.Points
		if e.FinishPlace != nil {
			if *e.FinishPlace == 1 {
				t.Wins++
			}
			if *e.FinishPlace >= 1 && *e.FinishPlace <= 3 {
				t.Podiums++
			}
		}
	}

	totals := make([]*LeagueTotal, 0, len(order))
	for _, id := range order {
		t := byPlayer[id]
		ApplyPlayerName(t, players[id])
		totals = append(totals, t)
	}
	SortLeagueTotals(totals)
	return totals
}

// ApplyPlayerName fills in the display name and handle of a league total,
// falling back to a shortened ID when the player is unknown
func ApplyPlayerName(t *LeagueTotal, p *Player) {
	if p == nil {
		t.DisplayName = FallbackName(t.PlayerID)
		t.Handle = nil
		return
	}
	t.DisplayName = p.DisplayName
	t.Handle = p.Handle
}
