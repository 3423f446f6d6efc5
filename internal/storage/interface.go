package storage

import (
	"context"

	"github.com/mcoot/pokerleague/internal/model"
)

// Gateway is the persistence surface the roster sync core talks to.
// Adds tolerate duplicates and removes tolerate missing rows, so every
// mutation is safe to repeat.
type Gateway interface {
	// ListEntries returns the event's entries ordered by creation time
	ListEntries(ctx context.Context, eventID model.EventID) ([]*model.Entry, error)

	// AddEntry creates an entry with default counters; a duplicate is not an error
	AddEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error
	RemoveEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error
	RemoveEntryByID(ctx context.Context, entryID model.EntryID) error

	// BulkAdd creates one entry per player ID, skipping duplicates
	BulkAdd(ctx context.Context, eventID model.EventID, playerIDs []model.PlayerID) error
	BulkRemove(ctx context.Context, entryIDs []model.EntryID) error

	IncrementRebuy(ctx context.Context, entryID model.EntryID) error
	ToggleAddon(ctx context.Context, entryID model.EntryID) error
}

// AtomicGateway is implemented by gateways that can apply both halves of a
// roster diff in a single transaction
type AtomicGateway interface {
	Gateway
	ApplyDiff(ctx context.Context, eventID model.EventID, add []model.PlayerID, remove []model.EntryID) error
}

// Storage defines the interface for data persistence
type Storage interface {
	Gateway

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	FindPlayerByHandle(ctx context.Context, handle string) (*model.Player, error)
	FindPlayerByDisplayName(ctx context.Context, displayName string) (*model.Player, error)
	// UpsertPlayerByHandle inserts the player, or returns the existing player
	// holding the same handle
	UpsertPlayerByHandle(ctx context.Context, player *model.Player) (*model.Player, error)

	// Event operations
	SaveEvent(ctx context.Context, event *model.Event) error
	GetEvent(ctx context.Context, id model.EventID) (*model.Event, error)
	ListEvents(ctx context.Context) ([]*model.Event, error)

	// Entry operations
	GetEntry(ctx context.Context, id model.EntryID) (*model.Entry, error)
	ListEntryViews(ctx context.Context, eventID model.EventID) ([]*model.EntryView, error)
	RecordResult(ctx context.Context, entryID model.EntryID, result model.Result) error

	// Standings operations
	ListEventStandings(ctx context.Context, eventID model.EventID) ([]*model.Standing, error)
	ListLeagueTotals(ctx context.Context) ([]*model.LeagueTotal, error)

	Ping(ctx context.Context) error
	Close() error
}
