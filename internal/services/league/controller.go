// Package league implements the admin and public operations of the league:
// events, entries, results and standings.
package league

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/pokerleague/internal/dependencies/clock"
	"github.com/mcoot/pokerleague/internal/dependencies/idgen"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/roster"
	"github.com/mcoot/pokerleague/internal/services/rostersync"
	"github.com/mcoot/pokerleague/internal/storage"
)

// Controller runs league operations against storage
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	ids     idgen.Generator
	logger  *slog.Logger

	mu         sync.Mutex
	submitters map[model.EventID]*rostersync.Submitter
}

// NewController creates a new league Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	ids idgen.Generator,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:    storage,
		clock:      clock,
		ids:        ids,
		logger:     logger.With(slog.String("component", "league")),
		submitters: make(map[model.EventID]*rostersync.Submitter),
	}
}

// guard turns a storage authorization failure into a user-facing action error
func guard(action string, err error) error {
	if err != nil && errors.Is(err, model.ErrNotAuthorized) {
		return rostersync.NewActionError(action, err)
	}
	return err
}

// Events

// CreateEventInput holds the fields of the create event form
type CreateEventInput struct {
	Title     string   `json:"title"`
	EventDate string   `json:"event_date"`
	Venue     string   `json:"venue,omitempty"`
	BuyInGBP  float64  `json:"buy_in_gbp"`
	RakeGBP   *float64 `json:"rake_gbp,omitempty"`
}

// CreateEvent validates the input and stores a new event
func (c *Controller) CreateEvent(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, model.ErrTitleRequired
	}
	date, err := model.ParseEventDate(in.EventDate)
	if err != nil {
		return nil, err
	}
	if in.BuyInGBP < 0 || (in.RakeGBP != nil && *in.RakeGBP < 0) {
		return nil, model.ErrInvalidAmount
	}

	event := &model.Event{
		ID:         model.EventID(c.ids.NewID()),
		Title:      title,
		EventDate:  date,
		BuyInCents: model.PoundsToPence(in.BuyInGBP),
		CreatedAt:  c.clock.Now(),
	}
	if venue := strings.TrimSpace(in.Venue); venue != "" {
		event.Venue = &venue
	}
	if in.RakeGBP != nil {
		rake := model.PoundsToPence(*in.RakeGBP)
		event.RakeCents = &rake
	}

	if err := c.storage.SaveEvent(ctx, event); err != nil {
		return nil, guard("create events", err)
	}
	c.logger.Info("event created",
		slog.String("event_id", string(event.ID)),
		slog.String("event_date", event.EventDate))
	return event, nil
}

func (c *Controller) ListEvents(ctx context.Context) ([]*model.Event, error) {
	return c.storage.ListEvents(ctx)
}

func (c *Controller) GetEvent(ctx context.Context, eventID model.EventID) (*model.Event, error) {
	if eventID == "" {
		return nil, model.ErrEventIDRequired
	}
	return c.storage.GetEvent(ctx, eventID)
}

// Entries

// ListEntries returns the event's entries joined with their players
func (c *Controller) ListEntries(ctx context.Context, eventID model.EventID) ([]*model.EntryView, error) {
	if _, err := c.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return c.storage.ListEntryViews(ctx, eventID)
}

// AddPlayer enters a known player into the event. Already entered players
// are left as they are.
func (c *Controller) AddPlayer(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	if playerID == "" {
		return model.ErrPlayerIDRequired
	}
	if _, err := c.GetEvent(ctx, eventID); err != nil {
		return err
	}
	if _, err := c.storage.GetPlayer(ctx, playerID); err != nil {
		return err
	}
	return guard("add entries", c.storage.AddEntry(ctx, eventID, playerID))
}

// AddExistingPlayer finds a player by handle (ignoring case and a leading
// "@"), then by exact display name, and enters them into the event
func (c *Controller) AddExistingPlayer(ctx context.Context, eventID model.EventID, query string) (*model.Player, error) {
	query = strings.TrimSpace(query)
	if eventID == "" {
		return nil, model.ErrEventIDRequired
	}
	if query == "" {
		return nil, model.ErrQueryRequired
	}
	if _, err := c.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	player, err := c.findPlayer(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := c.storage.AddEntry(ctx, eventID, player.ID); err != nil {
		return nil, guard("add entries", err)
	}
	return player, nil
}

func (c *Controller) findPlayer(ctx context.Context, query string) (*model.Player, error) {
	if handle := model.NormalizeHandle(query); handle != nil {
		player, err := c.storage.FindPlayerByHandle(ctx, *handle)
		if err == nil {
			return player, nil
		}
		if !errors.Is(err, model.ErrPlayerNotFound) {
			return nil, err
		}
	}
	return c.storage.FindPlayerByDisplayName(ctx, query)
}

// CreateAndAddPlayer reuses the player holding handle when there is one,
// otherwise creates a player, then enters them into the event
func (c *Controller) CreateAndAddPlayer(ctx context.Context, eventID model.EventID, displayName, handle string) (*model.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if eventID == "" {
		return nil, model.ErrEventIDRequired
	}
	if displayName == "" {
		return nil, model.ErrDisplayNameRequired
	}
	if _, err := c.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	candidate := &model.Player{
		ID:          model.PlayerID(c.ids.NewID()),
		DisplayName: displayName,
		Handle:      model.NormalizeHandle(handle),
		CreatedAt:   c.clock.Now(),
	}

	var player *model.Player
	var err error
	if candidate.Handle != nil {
		player, err = c.storage.UpsertPlayerByHandle(ctx, candidate)
	} else {
		err = c.storage.SavePlayer(ctx, candidate)
		player = candidate
	}
	if err != nil {
		return nil, guard("create players", err)
	}

	if err := c.storage.AddEntry(ctx, eventID, player.ID); err != nil {
		return nil, guard("add entries", err)
	}
	c.logger.Info("player entered",
		slog.String("event_id", string(eventID)),
		slog.String("player_id", string(player.ID)),
		slog.Bool("created", player.ID == candidate.ID))
	return player, nil
}

// BulkAdd enters every listed player, skipping those already entered
func (c *Controller) BulkAdd(ctx context.Context, eventID model.EventID, playerIDs []model.PlayerID) error {
	for _, id := range playerIDs {
		if id == "" {
			return model.ErrPlayerIDRequired
		}
	}
	if _, err := c.GetEvent(ctx, eventID); err != nil {
		return err
	}
	if len(playerIDs) == 0 {
		return nil
	}
	if err := c.requirePlayers(ctx, playerIDs); err != nil {
		return err
	}
	return guard("add entries", c.storage.BulkAdd(ctx, eventID, playerIDs))
}

// requirePlayers fails with ErrPlayerNotFound unless every ID names a stored player
func (c *Controller) requirePlayers(ctx context.Context, playerIDs []model.PlayerID) error {
	if len(playerIDs) == 0 {
		return nil
	}
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return err
	}
	known := make(map[model.PlayerID]struct{}, len(players))
	for _, p := range players {
		known[p.ID] = struct{}{}
	}
	for _, id := range playerIDs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, id)
		}
	}
	return nil
}

// BulkRemove deletes the listed entries of the event. Entries that are
// already gone are skipped.
func (c *Controller) BulkRemove(ctx context.Context, eventID model.EventID, entryIDs []model.EntryID) error {
	if eventID == "" {
		return model.ErrEventIDRequired
	}
	for _, id := range entryIDs {
		if id == "" {
			return model.ErrEntryIDRequired
		}
		if _, err := c.entryOf(ctx, eventID, id); err != nil && !errors.Is(err, model.ErrEntryNotFound) {
			return err
		}
	}
	if len(entryIDs) == 0 {
		return nil
	}
	return guard("remove entries", c.storage.BulkRemove(ctx, entryIDs))
}

// RemovePlayer takes the player out of the event
func (c *Controller) RemovePlayer(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	if eventID == "" {
		return model.ErrEventIDRequired
	}
	if playerID == "" {
		return model.ErrPlayerIDRequired
	}
	return guard("remove entries", c.storage.RemoveEntry(ctx, eventID, playerID))
}

// RemoveEntry deletes one entry of the event
func (c *Controller) RemoveEntry(ctx context.Context, eventID model.EventID, entryID model.EntryID) error {
	if _, err := c.entryOf(ctx, eventID, entryID); err != nil {
		return err
	}
	return guard("remove entries", c.storage.RemoveEntryByID(ctx, entryID))
}

// IncrementRebuy adds one rebuy to the entry and returns it
func (c *Controller) IncrementRebuy(ctx context.Context, eventID model.EventID, entryID model.EntryID) (*model.Entry, error) {
	if _, err := c.entryOf(ctx, eventID, entryID); err != nil {
		return nil, err
	}
	if err := c.storage.IncrementRebuy(ctx, entryID); err != nil {
		return nil, guard("update entries", err)
	}
	return c.storage.GetEntry(ctx, entryID)
}

// ToggleAddon flips the entry's add-on and returns it
func (c *Controller) ToggleAddon(ctx context.Context, eventID model.EventID, entryID model.EntryID) (*model.Entry, error) {
	if _, err := c.entryOf(ctx, eventID, entryID); err != nil {
		return nil, err
	}
	if err := c.storage.ToggleAddon(ctx, entryID); err != nil {
		return nil, guard("update entries", err)
	}
	return c.storage.GetEntry(ctx, entryID)
}

// entryOf loads an entry and checks that it belongs to the event
func (c *Controller) entryOf(ctx context.Context, eventID model.EventID, entryID model.EntryID) (*model.Entry, error) {
	if eventID == "" {
		return nil, model.ErrEventIDRequired
	}
	if entryID == "" {
		return nil, model.ErrEntryIDRequired
	}
	entry, err := c.storage.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.EventID != eventID {
		return nil, model.ErrEntryEventMismatch
	}
	return entry, nil
}

// Roster

// SetSelected adds or removes a single player, as one checkbox click
func (c *Controller) SetSelected(ctx context.Context, eventID model.EventID, playerID model.PlayerID, selected bool) error {
	if selected {
		return c.AddPlayer(ctx, eventID, playerID)
	}
	return c.RemovePlayer(ctx, eventID, playerID)
}

// SyncRoster converges the event's entries on the requested selection
// against a freshly loaded server-confirmed selection. A second sync of the
// same event while one is running fails with rostersync.ErrSubmitInProgress.
func (c *Controller) SyncRoster(ctx context.Context, req rostersync.SyncRequest) (rostersync.Report, error) {
	report := rostersync.Report{EventID: req.EventID}
	if err := req.Validate(); err != nil {
		return report, err
	}
	if _, err := c.GetEvent(ctx, req.EventID); err != nil {
		return report, err
	}
	if err := c.requirePlayers(ctx, req.DesiredPlayerIDs); err != nil {
		return report, err
	}
	return c.submitterFor(req.EventID).SubmitFresh(ctx, req)
}

// submitterFor returns the event's shared submitter, creating it on first use
func (c *Controller) submitterFor(eventID model.EventID) *rostersync.Submitter {
	c.mu.Lock()
	defer c.mu.Unlock()
	submitter, ok := c.submitters[eventID]
	if !ok {
		submitter = rostersync.NewSubmitter(c.storage, eventID, c.logger)
		c.submitters[eventID] = submitter
	}
	return submitter
}

// Players

func (c *Controller) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return c.storage.ListPlayers(ctx)
}

// SearchPlayers returns the players whose name or handle contains query
func (c *Controller) SearchPlayers(ctx context.Context, query string) ([]roster.Candidate, error) {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]roster.Candidate, len(players))
	for i, p := range players {
		candidates[i] = roster.CandidateFromPlayer(p)
	}
	return roster.Filter(candidates, query), nil
}

// Results

// ResultInput is the outcome of an entry once the event is played
type ResultInput struct {
	FinishPlace *int    `json:"finish_place,omitempty"`
	CashGBP     float64 `json:"cash_gbp"`
	Points      int     `json:"points"`
}

// RecordResult stores the finishing place, cash and points of an entry
func (c *Controller) RecordResult(ctx context.Context, eventID model.EventID, entryID model.EntryID, in ResultInput) (*model.Entry, error) {
	if in.FinishPlace != nil && *in.FinishPlace < 1 {
		return nil, model.ErrInvalidPlace
	}
	if in.CashGBP < 0 {
		return nil, model.ErrInvalidAmount
	}
	if _, err := c.entryOf(ctx, eventID, entryID); err != nil {
		return nil, err
	}

	result := model.Result{
		FinishPlace: in.FinishPlace,
		CashCents:   model.PoundsToPence(in.CashGBP),
		Points:      in.Points,
	}
	if err := c.storage.RecordResult(ctx, entryID, result); err != nil {
		return nil, guard("record results", err)
	}
	return c.storage.GetEntry(ctx, entryID)
}

// EventResults is an event with its standings
type EventResults struct {
	Event          *model.Event      `json:"event"`
	Standings      []*model.Standing `json:"standings"`
	PrizePoolCents int64             `json:"prize_pool_cents"`
}

// EventResults loads the event and its standings concurrently
func (c *Controller) EventResults(ctx context.Context, eventID model.EventID) (*EventResults, error) {
	if eventID == "" {
		return nil, model.ErrEventIDRequired
	}

	results := &EventResults{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		event, err := c.storage.GetEvent(gctx, eventID)
		results.Event = event
		return err
	})
	g.Go(func() error {
		standings, err := c.storage.ListEventStandings(gctx, eventID)
		results.Standings = standings
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results.PrizePoolCents = model.PrizePool(results.Standings)
	return results, nil
}

// LeagueStandings returns the league table, best first
func (c *Controller) LeagueStandings(ctx context.Context) ([]*model.LeagueTotal, error) {
	return c.storage.ListLeagueTotals(ctx)
}
