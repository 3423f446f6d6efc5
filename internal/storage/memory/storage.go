package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/pokerleague/internal/dependencies/clock"
	"github.com/mcoot/pokerleague/internal/dependencies/idgen"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	clock clock.Clock
	ids   idgen.Generator

	players     map[model.PlayerID]*model.Player
	handleIndex map[string]model.PlayerID // lower-cased handle -> player
	events      map[model.EventID]*model.Event
	entries     map[model.EntryID]*model.Entry
	entryIndex  map[entryKey]model.EntryID
	eventOrder  map[model.EventID][]model.EntryID // insertion order per event
}

type entryKey struct {
	eventID  model.EventID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return NewWithDependencies(clock.New(), idgen.New())
}

// NewWithDependencies creates an in-memory storage with the given clock and ID generator
func NewWithDependencies(clk clock.Clock, ids idgen.Generator) *Storage {
	return &Storage{
		clock:       clk,
		ids:         ids,
		players:     make(map[model.PlayerID]*model.Player),
		handleIndex: make(map[string]model.PlayerID),
		events:      make(map[model.EventID]*model.Event),
		entries:     make(map[model.EntryID]*model.Entry),
		entryIndex:  make(map[entryKey]model.EntryID),
		eventOrder:  make(map[model.EventID][]model.EntryID),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage       = (*Storage)(nil)
	_ storage.AtomicGateway = (*Storage)(nil)
)

func (s *Storage) Ping(ctx context.Context) error { return nil }

func (s *Storage) Close() error { return nil }

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePlayerLocked(player)
}

func (s *Storage) savePlayerLocked(player *model.Player) error {
	if player.Handle != nil {
		key := strings.ToLower(*player.Handle)
		if owner, ok := s.handleIndex[key]; ok && owner != player.ID {
			return model.ErrDuplicateHandle
		}
	}
	if prev, ok := s.players[player.ID]; ok && prev.Handle != nil {
		delete(s.handleIndex, strings.ToLower(*prev.Handle))
	}
	p := *player
	s.players[player.ID] = &p
	if player.Handle != nil {
		s.handleIndex[strings.ToLower(*player.Handle)] = player.ID
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, player := range s.players {
		p := *player
		players = append(players, &p)
	}
	sort.Slice(players, func(i, j int) bool {
		a, b := strings.ToLower(players[i].DisplayName), strings.ToLower(players[j].DisplayName)
		if a != b {
			return a < b
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

func (s *Storage) FindPlayerByHandle(ctx context.Context, handle string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.handleIndex[strings.ToLower(handle)]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *s.players[id]
	return &p, nil
}

func (s *Storage) FindPlayerByDisplayName(ctx context.Context, displayName string) (*model.Player, error) {
	players, err := s.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if p.DisplayName == displayName {
			return p, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

func (s *Storage) UpsertPlayerByHandle(ctx context.Context, player *model.Player) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player.Handle != nil {
		if id, ok := s.handleIndex[strings.ToLower(*player.Handle)]; ok {
			p := *s.players[id]
			return &p, nil
		}
	}
	if err := s.savePlayerLocked(player); err != nil {
		return nil, err
	}
	p := *player
	return &p, nil
}

// Event operations

func (s *Storage) SaveEvent(ctx context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *event
	s.events[event.ID] = &e
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	e := *event
	return &e, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]*model.Event, 0, len(s.events))
	for _, event := range s.events {
		e := *event
		events = append(events, &e)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].EventDate != events[j].EventDate {
			return events[i].EventDate > events[j].EventDate
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

// Entry operations

func (s *Storage) ListEntries(ctx context.Context, eventID model.EventID) ([]*model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order := s.eventOrder[eventID]
	entries := make([]*model.Entry, 0, len(order))
	for _, id := range order {
		e := *s.entries[id]
		entries = append(entries, &e)
	}
	return entries, nil
}

func (s *Storage) GetEntry(ctx context.Context, id model.EntryID) (*model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, model.ErrEntryNotFound
	}
	e := *entry
	return &e, nil
}

func (s *Storage) ListEntryViews(ctx context.Context, eventID model.EventID) ([]*model.EntryView, error) {
	entries, err := s.ListEntries(ctx, eventID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	views := make([]*model.EntryView, 0, len(entries))
	for _, e := range entries {
		view := &model.EntryView{Entry: *e, DisplayName: model.FallbackName(e.PlayerID)}
		if p, ok := s.players[e.PlayerID]; ok {
			view.DisplayName = p.DisplayName
			view.Handle = p.Handle
		}
		views = append(views, view)
	}
	s.mu.RUnlock()

	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].DisplayName) < strings.ToLower(views[j].DisplayName)
	})
	return views, nil
}

func (s *Storage) AddEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addEntryLocked(eventID, playerID)
	return nil
}

func (s *Storage) BulkAdd(ctx context.Context, eventID model.EventID, playerIDs []model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, playerID := range playerIDs {
		s.addEntryLocked(eventID, playerID)
	}
	return nil
}

// addEntryLocked inserts an entry unless the (event, player) pair already exists
func (s *Storage) addEntryLocked(eventID model.EventID, playerID model.PlayerID) {
	key := entryKey{eventID: eventID, playerID: playerID}
	if _, exists := s.entryIndex[key]; exists {
		return
	}
	entry := model.NewEntry(model.EntryID(s.ids.NewID()), eventID, playerID, s.clock.Now())
	s.entries[entry.ID] = entry
	s.entryIndex[key] = entry.ID
	s.eventOrder[eventID] = append(s.eventOrder[eventID], entry.ID)
}

func (s *Storage) RemoveEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entryIndex[entryKey{eventID: eventID, playerID: playerID}]; ok {
		s.removeEntryLocked(id)
	}
	return nil
}

func (s *Storage) RemoveEntryByID(ctx context.Context, entryID model.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeEntryLocked(entryID)
	return nil
}

func (s *Storage) BulkRemove(ctx context.Context, entryIDs []model.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range entryIDs {
		s.removeEntryLocked(id)
	}
	return nil
}

func (s *Storage) removeEntryLocked(id model.EntryID) {
	entry, ok := s.entries[id]
	if !ok {
		return
	}
	delete(s.entries, id)
	delete(s.entryIndex, entryKey{eventID: entry.EventID, playerID: entry.PlayerID})
	s.eventOrder[entry.EventID] = slices.DeleteFunc(s.eventOrder[entry.EventID], func(other model.EntryID) bool {
		return other == id
	})
}

func (s *Storage) ApplyDiff(ctx context.Context, eventID model.EventID, add []model.PlayerID, remove []model.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, playerID := range add {
		s.addEntryLocked(eventID, playerID)
	}
	for _, id := range remove {
		s.removeEntryLocked(id)
	}
	return nil
}

func (s *Storage) IncrementRebuy(ctx context.Context, entryID model.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return model.ErrEntryNotFound
	}
	entry.Rebuys++
	return nil
}

func (s *Storage) ToggleAddon(ctx context.Context, entryID model.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return model.ErrEntryNotFound
	}
	entry.Addon = !entry.Addon
	return nil
}

func (s *Storage) RecordResult(ctx context.Context, entryID model.EntryID, result model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return model.ErrEntryNotFound
	}
	entry.FinishPlace = result.FinishPlace
	entry.CashCents = result.CashCents
	entry.Points = result.Points
	return nil
}

// Standings operations

func (s *Storage) ListEventStandings(ctx context.Context, eventID model.EventID) ([]*model.Standing, error) {
	views, err := s.ListEntryViews(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return model.StandingsFromEntries(views), nil
}

func (s *Storage) ListLeagueTotals(ctx context.Context) ([]*model.LeagueTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	// Deterministic tie order for players on equal points
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return model.LeagueTotalsFromEntries(entries, s.players), nil
}
