package roster

import (
	"strings"

	"github.com/mcoot/pokerleague/internal/model"
)

// Candidate is a player offered for selection
type Candidate struct {
	ID     model.PlayerID `json:"id"`
	Name   string         `json:"name"`
	Handle string         `json:"handle,omitempty"`
}

// CandidateFromPlayer builds a candidate from a stored player
func CandidateFromPlayer(p *model.Player) Candidate {
	return Candidate{ID: p.ID, Name: p.DisplayName, Handle: p.HandleOrEmpty()}
}

// Filter returns the candidates whose name or handle contains query,
// ignoring case. An empty query matches everyone.
func Filter(candidates []Candidate, query string) []Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return candidates
	}
	matched := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Handle), q) {
			matched = append(matched, c)
		}
	}
	return matched
}
