package redis

import (
	"fmt"
	"strings"

	"github.com/mcoot/pokerleague/internal/model"
)

// Key prefix for all league data
const keyPrefix = "pokerleague"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the SET of all player IDs
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// handleIndexKey returns the Redis key for the lower-cased handle -> player_id index
func handleIndexKey(handle string) string {
	return fmt.Sprintf("%s:idx:handle:%s", keyPrefix, strings.ToLower(handle))
}

// eventKey returns the Redis key for an Event
func eventKey(id model.EventID) string {
	return fmt.Sprintf("%s:event:%s", keyPrefix, id)
}

// eventsIndexKey returns the Redis key for the SET of all event IDs
func eventsIndexKey() string {
	return fmt.Sprintf("%s:idx:events", keyPrefix)
}

// entryKey returns the Redis key for an Entry
func entryKey(id model.EntryID) string {
	return fmt.Sprintf("%s:entry:%s", keyPrefix, id)
}

// entryPairIndexKey returns the Redis key enforcing one entry per (event, player)
func entryPairIndexKey(eventID model.EventID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:entry_pair:%s:%s", keyPrefix, eventID, playerID)
}

// eventEntriesIndexKey returns the Redis key for the ZSET of an event's entries,
// scored by insertion sequence
func eventEntriesIndexKey(eventID model.EventID) string {
	return fmt.Sprintf("%s:idx:event_entries:%s", keyPrefix, eventID)
}

// entriesIndexKey returns the Redis key for the SET of all entry IDs
func entriesIndexKey() string {
	return fmt.Sprintf("%s:idx:entries", keyPrefix)
}

// entrySeqKey returns the Redis key for the entry insertion counter
func entrySeqKey() string {
	return fmt.Sprintf("%s:seq:entry", keyPrefix)
}
