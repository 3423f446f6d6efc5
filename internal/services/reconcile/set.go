// Package reconcile computes the minimal roster changes that turn the
// persisted selection of an event into the desired one.
package reconcile

import (
	"slices"

	"github.com/mcoot/pokerleague/internal/model"
)

// Set is an unordered set of player IDs
type Set map[model.PlayerID]struct{}

// NewSet builds a set from the given IDs, dropping duplicates
func NewSet(ids ...model.PlayerID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id model.PlayerID) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id model.PlayerID) {
	s[id] = struct{}{}
}

func (s Set) Remove(id model.PlayerID) {
	delete(s, id)
}

func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy; cloning a nil set yields an empty one
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same IDs
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the IDs in ascending order
func (s Set) Sorted() []model.PlayerID {
	ids := make([]model.PlayerID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
