// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/storage"
)

// Suite exercises a storage.Storage implementation.
// Backends embed it and set Storage in their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

// SetupContext prepares the shared context; call from the backend's SetupTest
func (s *Suite) SetupContext() {
	s.Ctx = context.Background()
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func (s *Suite) savePlayer(id model.PlayerID, name, handle string) *model.Player {
	p := &model.Player{
		ID:          id,
		DisplayName: name,
		Handle:      model.NormalizeHandle(handle),
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, p))
	return p
}

func (s *Suite) playerIDs(eventID model.EventID) []model.PlayerID {
	entries, err := s.Storage.ListEntries(s.Ctx, eventID)
	s.Require().NoError(err)
	ids := make([]model.PlayerID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PlayerID)
	}
	return ids
}

func (s *Suite) entryFor(eventID model.EventID, playerID model.PlayerID) *model.Entry {
	entries, err := s.Storage.ListEntries(s.Ctx, eventID)
	s.Require().NoError(err)
	for _, e := range entries {
		if e.PlayerID == playerID {
			return e
		}
	}
	s.FailNow("entry not found", "player %s", playerID)
	return nil
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	s.savePlayer("player-1", "Alice", "ally")

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.DisplayName)
	s.Equal("ally", retrieved.HandleOrEmpty())
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestFindPlayerByHandleIgnoresCase() {
	s.savePlayer("player-1", "Alice", "AllyCat")

	found, err := s.Storage.FindPlayerByHandle(s.Ctx, "allycat")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), found.ID)
	s.Equal("AllyCat", found.HandleOrEmpty())
}

func (s *Suite) TestFindPlayerByHandleNotFound() {
	_, err := s.Storage.FindPlayerByHandle(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestFindPlayerByDisplayNameIsExact() {
	s.savePlayer("player-1", "Alice", "")

	found, err := s.Storage.FindPlayerByDisplayName(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), found.ID)

	_, err = s.Storage.FindPlayerByDisplayName(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerRejectsTakenHandle() {
	s.savePlayer("player-1", "Alice", "ace")

	err := s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "player-2", DisplayName: "Bob", Handle: strPtr("ACE")})
	s.ErrorIs(err, model.ErrDuplicateHandle)
}

func (s *Suite) TestUpsertPlayerByHandleReturnsExisting() {
	s.savePlayer("player-1", "Alice", "ace")

	got, err := s.Storage.UpsertPlayerByHandle(s.Ctx, &model.Player{ID: "player-2", DisplayName: "Someone", Handle: strPtr("ace")})
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), got.ID)
	s.Equal("Alice", got.DisplayName)
}

func (s *Suite) TestUpsertPlayerByHandleInsertsNew() {
	got, err := s.Storage.UpsertPlayerByHandle(s.Ctx, &model.Player{ID: "player-2", DisplayName: "Bob", Handle: strPtr("bobby")})
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-2"), got.ID)

	found, err := s.Storage.FindPlayerByHandle(s.Ctx, "BOBBY")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-2"), found.ID)
}

func (s *Suite) TestListPlayersOrderedByName() {
	s.savePlayer("player-1", "Charlie", "")
	s.savePlayer("player-2", "alice", "")
	s.savePlayer("player-3", "Bob", "")

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal("alice", players[0].DisplayName)
	s.Equal("Bob", players[1].DisplayName)
	s.Equal("Charlie", players[2].DisplayName)
}

// Event tests

func (s *Suite) TestSaveAndGetEvent() {
	rake := int64(200)
	event := &model.Event{ID: "event-1", Title: "Weekly #1", EventDate: "2024-03-01", Venue: strPtr("Clubhouse"), BuyInCents: 2000, RakeCents: &rake}
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, event))

	got, err := s.Storage.GetEvent(s.Ctx, "event-1")
	s.Require().NoError(err)
	s.Equal("Weekly #1", got.Title)
	s.Equal("2024-03-01", got.EventDate)
	s.Equal(int64(2000), got.BuyInCents)
	s.Require().NotNil(got.RakeCents)
	s.Equal(int64(200), *got.RakeCents)
}

func (s *Suite) TestGetEventNotFound() {
	_, err := s.Storage.GetEvent(s.Ctx, "nope")
	s.ErrorIs(err, model.ErrEventNotFound)
}

func (s *Suite) TestListEventsNewestFirst() {
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, &model.Event{ID: "event-1", Title: "Old", EventDate: "2024-01-05"}))
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, &model.Event{ID: "event-2", Title: "New", EventDate: "2024-02-05"}))
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, &model.Event{ID: "event-3", Title: "Mid", EventDate: "2024-01-20"}))

	events, err := s.Storage.ListEvents(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal("New", events[0].Title)
	s.Equal("Mid", events[1].Title)
	s.Equal("Old", events[2].Title)
}

// Gateway tests

func (s *Suite) TestAddEntryAppliesDefaults() {
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))

	entry := s.entryFor("event-1", "player-1")
	s.NotEmpty(entry.ID)
	s.Equal(model.EventID("event-1"), entry.EventID)
	s.Equal(1, entry.Buyins)
	s.Equal(0, entry.Rebuys)
	s.False(entry.Addon)
}

func (s *Suite) TestAddEntryDuplicateIsSuccess() {
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))
	first := s.entryFor("event-1", "player-1")

	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))

	entries, err := s.Storage.ListEntries(s.Ctx, "event-1")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(first.ID, entries[0].ID)
}

func (s *Suite) TestSamePlayerInTwoEvents() {
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-2", "player-1"))

	s.Equal([]model.PlayerID{"player-1"}, s.playerIDs("event-1"))
	s.Equal([]model.PlayerID{"player-1"}, s.playerIDs("event-2"))
}

func (s *Suite) TestRemoveEntryByPlayer() {
	s.Require().NoError(s.Storage.BulkAdd(s.Ctx, "event-1", []model.PlayerID{"player-1", "player-2"}))

	s.Require().NoError(s.Storage.RemoveEntry(s.Ctx, "event-1", "player-1"))

	s.Equal([]model.PlayerID{"player-2"}, s.playerIDs("event-1"))
}

func (s *Suite) TestRemoveMissingEntryIsSuccess() {
	s.NoError(s.Storage.RemoveEntry(s.Ctx, "event-1", "player-1"))
	s.NoError(s.Storage.RemoveEntryByID(s.Ctx, "missing"))
	s.NoError(s.Storage.BulkRemove(s.Ctx, []model.EntryID{"missing"}))
}

func (s *Suite) TestRemoveEntryByID() {
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))
	entry := s.entryFor("event-1", "player-1")

	s.Require().NoError(s.Storage.RemoveEntryByID(s.Ctx, entry.ID))

	s.Empty(s.playerIDs("event-1"))
	_, err := s.Storage.GetEntry(s.Ctx, entry.ID)
	s.ErrorIs(err, model.ErrEntryNotFound)
}

func (s *Suite) TestBulkAddSkipsDuplicates() {
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))

	s.Require().NoError(s.Storage.BulkAdd(s.Ctx, "event-1", []model.PlayerID{"player-1", "player-2", "player-3"}))

	s.ElementsMatch([]model.PlayerID{"player-1", "player-2", "player-3"}, s.playerIDs("event-1"))
}

func (s *Suite) TestBulkRemove() {
	s.Require().NoError(s.Storage.BulkAdd(s.Ctx, "event-1", []model.PlayerID{"player-1", "player-2", "player-3"}))
	a := s.entryFor("event-1", "player-1")
	c := s.entryFor("event-1", "player-3")

	s.Require().NoError(s.Storage.BulkRemove(s.Ctx, []model.EntryID{a.ID, c.ID}))

	s.Equal([]model.PlayerID{"player-2"}, s.playerIDs("event-1"))
}

func (s *Suite) TestBulkAddThenReAddAfterRemove() {
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))
	s.Require().NoError(s.Storage.RemoveEntry(s.Ctx, "event-1", "player-1"))

	s.Require().NoError(s.Storage.BulkAdd(s.Ctx, "event-1", []model.PlayerID{"player-1"}))

	s.Equal([]model.PlayerID{"player-1"}, s.playerIDs("event-1"))
}

func (s *Suite) TestIncrementRebuy() {
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))
	entry := s.entryFor("event-1", "player-1")

	s.Require().NoError(s.Storage.IncrementRebuy(s.Ctx, entry.ID))
	s.Require().NoError(s.Storage.IncrementRebuy(s.Ctx, entry.ID))

	got, err := s.Storage.GetEntry(s.Ctx, entry.ID)
	s.Require().NoError(err)
	s.Equal(2, got.Rebuys)
	s.Equal(1, got.Buyins)
}

func (s *Suite) TestIncrementRebuyUnknownEntry() {
	err := s.Storage.IncrementRebuy(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrEntryNotFound)
}

func (s *Suite) TestToggleAddon() {
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))
	entry := s.entryFor("event-1", "player-1")

	s.Require().NoError(s.Storage.ToggleAddon(s.Ctx, entry.ID))
	got, _ := s.Storage.GetEntry(s.Ctx, entry.ID)
	s.True(got.Addon)

	s.Require().NoError(s.Storage.ToggleAddon(s.Ctx, entry.ID))
	got, _ = s.Storage.GetEntry(s.Ctx, entry.ID)
	s.False(got.Addon)
}

func (s *Suite) TestToggleAddonUnknownEntry() {
	err := s.Storage.ToggleAddon(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrEntryNotFound)
}

func (s *Suite) TestApplyDiffWhenAtomic() {
	atomic, ok := s.Storage.(storage.AtomicGateway)
	if !ok {
		s.T().Skip("backend has no atomic diff")
	}
	s.Require().NoError(s.Storage.BulkAdd(s.Ctx, "event-1", []model.PlayerID{"player-1", "player-2"}))
	a := s.entryFor("event-1", "player-1")

	err := atomic.ApplyDiff(s.Ctx, "event-1", []model.PlayerID{"player-3"}, []model.EntryID{a.ID})
	s.Require().NoError(err)

	s.ElementsMatch([]model.PlayerID{"player-2", "player-3"}, s.playerIDs("event-1"))
}

// Entry view and standings tests

func (s *Suite) TestListEntryViewsJoinsPlayers() {
	s.savePlayer("player-1", "Zed", "zz")
	s.savePlayer("player-2", "Amy", "")
	s.Require().NoError(s.Storage.BulkAdd(s.Ctx, "event-1", []model.PlayerID{"player-1", "player-2"}))

	views, err := s.Storage.ListEntryViews(s.Ctx, "event-1")
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal("Amy", views[0].DisplayName)
	s.Equal("Zed", views[1].DisplayName)
	s.Equal("zz", *views[1].Handle)
}

func (s *Suite) TestRecordResultAndStandings() {
	s.savePlayer("player-1", "Alice", "")
	s.savePlayer("player-2", "Bob", "")
	s.savePlayer("player-3", "Cara", "")
	s.Require().NoError(s.Storage.BulkAdd(s.Ctx, "event-1", []model.PlayerID{"player-1", "player-2", "player-3"}))

	s.Require().NoError(s.Storage.RecordResult(s.Ctx, s.entryFor("event-1", "player-1").ID, model.Result{FinishPlace: intPtr(2), CashCents: 3000, Points: 7}))
	s.Require().NoError(s.Storage.RecordResult(s.Ctx, s.entryFor("event-1", "player-2").ID, model.Result{FinishPlace: intPtr(1), CashCents: 5000, Points: 10}))

	standings, err := s.Storage.ListEventStandings(s.Ctx, "event-1")
	s.Require().NoError(err)
	s.Require().Len(standings, 3)
	s.Equal("Bob", standings[0].DisplayName)
	s.Equal("Alice", standings[1].DisplayName)
	s.Equal("Cara", standings[2].DisplayName)
	s.Nil(standings[2].FinishPlace)
	s.Equal(int64(8000), model.PrizePool(standings))
}

func (s *Suite) TestRecordResultUnknownEntry() {
	err := s.Storage.RecordResult(s.Ctx, "missing", model.Result{Points: 1})
	s.ErrorIs(err, model.ErrEntryNotFound)
}

func (s *Suite) TestLeagueTotals() {
	s.savePlayer("player-1", "Alice", "ally")
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "player-1"))
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-2", "player-1"))
	s.Require().NoError(s.Storage.AddEntry(s.Ctx, "event-1", "unknown-player-id"))

	s.Require().NoError(s.Storage.RecordResult(s.Ctx, s.entryFor("event-1", "player-1").ID, model.Result{FinishPlace: intPtr(1), Points: 10}))
	s.Require().NoError(s.Storage.RecordResult(s.Ctx, s.entryFor("event-2", "player-1").ID, model.Result{FinishPlace: intPtr(3), Points: 5}))
	s.Require().NoError(s.Storage.RecordResult(s.Ctx, s.entryFor("event-1", "unknown-player-id").ID, model.Result{FinishPlace: intPtr(2), Points: 7}))

	totals, err := s.Storage.ListLeagueTotals(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(totals, 2)

	s.Equal(model.PlayerID("player-1"), totals[0].PlayerID)
	s.Equal(15, totals[0].TotalPoints)
	s.Equal(1, totals[0].Wins)
	s.Equal(2, totals[0].Podiums)
	s.Equal("Alice", totals[0].DisplayName)

	s.Equal(7, totals[1].TotalPoints)
	s.Equal("unknown-", totals[1].DisplayName)
}
