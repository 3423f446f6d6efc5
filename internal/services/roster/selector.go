// Package roster holds the locally edited selection of players for an event.
package roster

import (
	"sync"

	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/reconcile"
)

// Selector tracks which players are selected. It is safe for concurrent use.
type Selector struct {
	mu       sync.RWMutex
	selected reconcile.Set
}

// NewSelector creates a selector holding the given IDs
func NewSelector(ids ...model.PlayerID) *Selector {
	return &Selector{selected: reconcile.NewSet(ids...)}
}

// Toggle flips the membership of id and returns whether it is now selected
func (s *Selector) Toggle(id model.PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected.Has(id) {
		s.selected.Remove(id)
		return false
	}
	s.selected.Add(id)
	return true
}

// Mark sets whether id is selected
func (s *Selector) Mark(id model.PlayerID, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if selected {
		s.selected.Add(id)
	} else {
		s.selected.Remove(id)
	}
}

// Set replaces the selection with ids
func (s *Selector) Set(ids []model.PlayerID) {
	s.Reset(reconcile.NewSet(ids...))
}

// Reset replaces the selection wholesale, e.g. with a fresh server-confirmed set
func (s *Selector) Reset(ids reconcile.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ids.Clone()
}

func (s *Selector) IsSelected(id model.PlayerID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected.Has(id)
}

// Selection returns a copy of the current selection
func (s *Selector) Selection() reconcile.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected.Clone()
}

func (s *Selector) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected.Len()
}
