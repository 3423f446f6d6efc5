// Package notify decorates a Storage so that every successful write tells an
// Invalidator which views went stale.
package notify

import (
	"context"
	"log/slog"

	"github.com/mcoot/pokerleague/internal/dependencies/clock"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/storage"
)

// Invalidator receives view invalidations after successful writes
type Invalidator interface {
	Invalidate(ctx context.Context, inv model.Invalidation)
}

// InvalidatorFunc adapts a function to the Invalidator interface
type InvalidatorFunc func(ctx context.Context, inv model.Invalidation)

func (f InvalidatorFunc) Invalidate(ctx context.Context, inv model.Invalidation) {
	f(ctx, inv)
}

// Storage wraps a storage.Storage and emits invalidations for its writes.
// Reads pass straight through to the wrapped storage.
type Storage struct {
	storage.Storage
	invalidator Invalidator
	clock       clock.Clock
	logger      *slog.Logger
}

// AtomicStorage is returned by Wrap when the wrapped storage can apply a
// roster diff in one transaction
type AtomicStorage struct {
	*Storage
	atomic storage.AtomicGateway
}

// Wrap decorates inner. The result implements storage.AtomicGateway exactly
// when inner does.
func Wrap(inner storage.Storage, invalidator Invalidator, clk clock.Clock, logger *slog.Logger) storage.Storage {
	s := &Storage{
		Storage:     inner,
		invalidator: invalidator,
		clock:       clk,
		logger:      logger.With(slog.String("component", "notify")),
	}
	if atomic, ok := inner.(storage.AtomicGateway); ok {
		return &AtomicStorage{Storage: s, atomic: atomic}
	}
	return s
}

var (
	_ storage.Storage       = (*Storage)(nil)
	_ storage.AtomicGateway = (*AtomicStorage)(nil)
)

func (s *Storage) emit(ctx context.Context, eventID model.EventID, reason string, views ...model.View) {
	now := s.clock.Now()
	for _, view := range views {
		s.invalidator.Invalidate(ctx, model.Invalidation{
			View:      view,
			EventID:   eventID,
			Reason:    reason,
			Timestamp: now,
		})
	}
	s.logger.Debug("views invalidated",
		slog.String("event_id", string(eventID)),
		slog.String("reason", reason),
		slog.Int("views", len(views)))
}

func (s *Storage) emitEntries(ctx context.Context, eventID model.EventID, reason string) {
	s.emit(ctx, eventID, reason, model.EntryViews...)
}

// eventsOf resolves the events owning the given entries. Entries that no
// longer exist are skipped.
func (s *Storage) eventsOf(ctx context.Context, entryIDs []model.EntryID) []model.EventID {
	seen := make(map[model.EventID]bool)
	var events []model.EventID
	for _, id := range entryIDs {
		entry, err := s.Storage.GetEntry(ctx, id)
		if err != nil {
			continue
		}
		if !seen[entry.EventID] {
			seen[entry.EventID] = true
			events = append(events, entry.EventID)
		}
	}
	return events
}

// Gateway writes

func (s *Storage) AddEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	if err := s.Storage.AddEntry(ctx, eventID, playerID); err != nil {
		return err
	}
	s.emitEntries(ctx, eventID, "add_entry")
	return nil
}

func (s *Storage) RemoveEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	if err := s.Storage.RemoveEntry(ctx, eventID, playerID); err != nil {
		return err
	}
	s.emitEntries(ctx, eventID, "remove_entry")
	return nil
}

func (s *Storage) RemoveEntryByID(ctx context.Context, entryID model.EntryID) error {
	events := s.eventsOf(ctx, []model.EntryID{entryID})
	if err := s.Storage.RemoveEntryByID(ctx, entryID); err != nil {
		return err
	}
	for _, eventID := range events {
		s.emitEntries(ctx, eventID, "remove_entry")
	}
	return nil
}

func (s *Storage) BulkAdd(ctx context.Context, eventID model.EventID, playerIDs []model.PlayerID) error {
	if err := s.Storage.BulkAdd(ctx, eventID, playerIDs); err != nil {
		return err
	}
	if len(playerIDs) > 0 {
		s.emitEntries(ctx, eventID, "bulk_add")
	}
	return nil
}

func (s *Storage) BulkRemove(ctx context.Context, entryIDs []model.EntryID) error {
	events := s.eventsOf(ctx, entryIDs)
	if err := s.Storage.BulkRemove(ctx, entryIDs); err != nil {
		return err
	}
	for _, eventID := range events {
		s.emitEntries(ctx, eventID, "bulk_remove")
	}
	return nil
}

func (s *Storage) IncrementRebuy(ctx context.Context, entryID model.EntryID) error {
	if err := s.Storage.IncrementRebuy(ctx, entryID); err != nil {
		return err
	}
	for _, eventID := range s.eventsOf(ctx, []model.EntryID{entryID}) {
		s.emitEntries(ctx, eventID, "rebuy")
	}
	return nil
}

func (s *Storage) ToggleAddon(ctx context.Context, entryID model.EntryID) error {
	if err := s.Storage.ToggleAddon(ctx, entryID); err != nil {
		return err
	}
	for _, eventID := range s.eventsOf(ctx, []model.EntryID{entryID}) {
		s.emitEntries(ctx, eventID, "addon")
	}
	return nil
}

func (s *AtomicStorage) ApplyDiff(ctx context.Context, eventID model.EventID, add []model.PlayerID, remove []model.EntryID) error {
	if err := s.atomic.ApplyDiff(ctx, eventID, add, remove); err != nil {
		return err
	}
	if len(add) > 0 || len(remove) > 0 {
		s.emitEntries(ctx, eventID, "apply_diff")
	}
	return nil
}

// Event and result writes

func (s *Storage) SaveEvent(ctx context.Context, event *model.Event) error {
	if err := s.Storage.SaveEvent(ctx, event); err != nil {
		return err
	}
	s.emit(ctx, event.ID, "save_event", model.ViewEventList, model.ViewPublicEvent)
	return nil
}

func (s *Storage) RecordResult(ctx context.Context, entryID model.EntryID, result model.Result) error {
	if err := s.Storage.RecordResult(ctx, entryID, result); err != nil {
		return err
	}
	for _, eventID := range s.eventsOf(ctx, []model.EntryID{entryID}) {
		s.emit(ctx, eventID, "record_result", model.ViewPublicEvent, model.ViewLeagueStandings)
	}
	return nil
}
