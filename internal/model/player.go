package model

import (
	"strings"
	"time"
)

// PlayerID uniquely identifies a player across the league
type PlayerID string

// Player is a league member who can be entered into events
type Player struct {
	ID          PlayerID  `json:"id"`
	DisplayName string    `json:"display_name"`
	Handle      *string   `json:"handle,omitempty"` // unique when set, matched case-insensitively
	CreatedAt   time.Time `json:"created_at"`
}

// HandleOrEmpty returns the player's handle, or "" when none is set
func (p *Player) HandleOrEmpty() string {
	if p.Handle == nil {
		return ""
	}
	return *p.Handle
}

// HandleMatches reports whether the player's handle equals h ignoring case
func (p *Player) HandleMatches(h string) bool {
	return p.Handle != nil && strings.EqualFold(*p.Handle, h)
}

// FallbackName is the name shown for a player ID with no player row
func FallbackName(id PlayerID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// NormalizeHandle trims whitespace and a leading "@" from a handle.
// Returns nil for an empty handle.
func NormalizeHandle(h string) *string {
	h = strings.TrimPrefix(strings.TrimSpace(h), "@")
	if h == "" {
		return nil
	}
	return &h
}
