package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/mcoot/pokerleague/internal/dependencies/clock"
	"github.com/mcoot/pokerleague/internal/dependencies/idgen"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface.
// Tables and views live in Config.Schema and are managed outside this service.
type Storage struct {
	db     *sql.DB
	schema string
	clock  clock.Clock
	ids    idgen.Generator
}

// New connects to Postgres and returns a storage instance
func New(cfg Config) (*Storage, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db, cfg.Schema, clock.New(), idgen.New()), nil
}

// NewWithDB creates a storage over an existing handle (for testing)
func NewWithDB(db *sql.DB, schema string, clk clock.Clock, ids idgen.Generator) *Storage {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Storage{db: db, schema: schema, clock: clk, ids: ids}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage       = (*Storage)(nil)
	_ storage.AtomicGateway = (*Storage)(nil)
)

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// t returns the schema-qualified name of a table or view
func (s *Storage) t(name string) string {
	return pq.QuoteIdentifier(s.schema) + "." + pq.QuoteIdentifier(name)
}

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

const playerColumns = `id::text, display_name, handle, created_at`

func scanPlayer(row interface{ Scan(...any) error }) (*model.Player, error) {
	var p model.Player
	var handle sql.NullString
	if err := row.Scan(&p.ID, &p.DisplayName, &handle, &p.CreatedAt); err != nil {
		return nil, err
	}
	if handle.Valid {
		p.Handle = &handle.String
	}
	return &p, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, display_name, handle, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, handle = EXCLUDED.handle`,
		s.t("players"))

	_, err := s.db.ExecContext(ctx, query, string(player.ID), player.DisplayName, nullString(player.Handle), s.createdAt(player.CreatedAt))
	if err != nil {
		if isDuplicate(err) {
			return model.ErrDuplicateHandle
		}
		return wrapError("save player", err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id::text = $1`, playerColumns, s.t("players"))
	return s.findPlayer(ctx, "get player", query, string(id))
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY lower(display_name), id`, playerColumns, s.t("players"))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError("list players", err)
	}
	defer rows.Close()

	players := make([]*model.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Storage) FindPlayerByHandle(ctx context.Context, handle string) (*model.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(handle) = lower($1) ORDER BY created_at LIMIT 1`,
		playerColumns, s.t("players"))
	return s.findPlayer(ctx, "find player by handle", query, handle)
}

func (s *Storage) FindPlayerByDisplayName(ctx context.Context, displayName string) (*model.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE display_name = $1 ORDER BY created_at LIMIT 1`,
		playerColumns, s.t("players"))
	return s.findPlayer(ctx, "find player by name", query, displayName)
}

func (s *Storage) findPlayer(ctx context.Context, op, query string, arg any) (*model.Player, error) {
	p, err := scanPlayer(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, wrapError(op, err)
	}
	return p, nil
}

func (s *Storage) UpsertPlayerByHandle(ctx context.Context, player *model.Player) (*model.Player, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, display_name, handle, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING %s`, s.t("players"), playerColumns)

	p, err := scanPlayer(s.db.QueryRowContext(ctx, query,
		string(player.ID), player.DisplayName, nullString(player.Handle), s.createdAt(player.CreatedAt)))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, wrapError("upsert player", err)
	}
	if player.Handle == nil {
		return s.GetPlayer(ctx, player.ID)
	}
	return s.FindPlayerByHandle(ctx, *player.Handle)
}

// Event operations

const eventColumns = `id::text, title, to_char(event_date, 'YYYY-MM-DD'), venue, buy_in_cents, rake_cents, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var venue sql.NullString
	var rake sql.NullInt64
	if err := row.Scan(&e.ID, &e.Title, &e.EventDate, &venue, &e.BuyInCents, &rake, &e.CreatedAt); err != nil {
		return nil, err
	}
	if venue.Valid {
		e.Venue = &venue.String
	}
	if rake.Valid {
		e.RakeCents = &rake.Int64
	}
	return &e, nil
}

func (s *Storage) SaveEvent(ctx context.Context, event *model.Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, event_date, venue, buy_in_cents, rake_cents, created_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, event_date = EXCLUDED.event_date, venue = EXCLUDED.venue,
			buy_in_cents = EXCLUDED.buy_in_cents, rake_cents = EXCLUDED.rake_cents`,
		s.t("events"))

	var rake sql.NullInt64
	if event.RakeCents != nil {
		rake = sql.NullInt64{Int64: *event.RakeCents, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query, string(event.ID), event.Title, event.EventDate,
		nullString(event.Venue), event.BuyInCents, rake, s.createdAt(event.CreatedAt))
	return wrapError("save event", err)
}

func (s *Storage) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id::text = $1`, eventColumns, s.t("events"))
	e, err := scanEvent(s.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, wrapError("get event", err)
	}
	return e, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY event_date DESC, created_at DESC`, eventColumns, s.t("events"))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError("list events", err)
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Entry operations

const entryColumns = `e.id::text, e.event_id::text, e.player_id::text, e.buyins, e.rebuys, e.addon,
	e.finish_place, e.cash_cents, e.points, e.created_at`

func scanEntry(row interface{ Scan(...any) error }, extra ...any) (*model.Entry, error) {
	var e model.Entry
	var place sql.NullInt64
	dest := []any{&e.ID, &e.EventID, &e.PlayerID, &e.Buyins, &e.Rebuys, &e.Addon, &place, &e.CashCents, &e.Points, &e.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if place.Valid {
		v := int(place.Int64)
		e.FinishPlace = &v
	}
	return &e, nil
}

func (s *Storage) ListEntries(ctx context.Context, eventID model.EventID) ([]*model.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s e WHERE e.event_id::text = $1 ORDER BY e.created_at, e.id`,
		entryColumns, s.t("entries"))
	rows, err := s.db.QueryContext(ctx, query, string(eventID))
	if err != nil {
		return nil, wrapError("list entries", err)
	}
	defer rows.Close()

	entries := make([]*model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Storage) GetEntry(ctx context.Context, id model.EntryID) (*model.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s e WHERE e.id::text = $1`, entryColumns, s.t("entries"))
	e, err := scanEntry(s.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrEntryNotFound
		}
		return nil, wrapError("get entry", err)
	}
	return e, nil
}

func (s *Storage) ListEntryViews(ctx context.Context, eventID model.EventID) ([]*model.EntryView, error) {
	query := fmt.Sprintf(`
		SELECT %s, p.display_name, p.handle
		FROM %s e
		LEFT JOIN %s p ON p.id = e.player_id
		WHERE e.event_id::text = $1
		ORDER BY e.created_at, e.id`, entryColumns, s.t("entries"), s.t("players"))

	rows, err := s.db.QueryContext(ctx, query, string(eventID))
	if err != nil {
		return nil, wrapError("list entry views", err)
	}
	defer rows.Close()

	views := make([]*model.EntryView, 0)
	for rows.Next() {
		var name, handle sql.NullString
		e, err := scanEntry(rows, &name, &handle)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry view: %w", err)
		}
		view := &model.EntryView{Entry: *e, DisplayName: model.FallbackName(e.PlayerID)}
		if name.Valid {
			view.DisplayName = name.String
		}
		if handle.Valid {
			view.Handle = &handle.String
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].DisplayName) < strings.ToLower(views[j].DisplayName)
	})
	return views, nil
}

func (s *Storage) AddEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, event_id, player_id, buyins, rebuys, addon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, player_id) DO NOTHING`, s.t("entries"))

	_, err := s.db.ExecContext(ctx, query, s.ids.NewID(), string(eventID), string(playerID),
		model.DefaultBuyins, model.DefaultRebuys, model.DefaultAddon, s.clock.Now())
	if err != nil && !isDuplicate(err) {
		return wrapError("add entry", err)
	}
	return nil
}

func (s *Storage) BulkAdd(ctx context.Context, eventID model.EventID, playerIDs []model.PlayerID) error {
	if len(playerIDs) == 0 {
		return nil
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.bulkAdd(ctx, tx, eventID, playerIDs)
	})
}

// bulkAdd inserts one entry per player with a prepared statement, skipping duplicates
func (s *Storage) bulkAdd(ctx context.Context, exec SQLExecutor, eventID model.EventID, playerIDs []model.PlayerID) error {
	stmt, err := exec.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, event_id, player_id, buyins, rebuys, addon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, player_id) DO NOTHING`, s.t("entries")))
	if err != nil {
		return wrapError("prepare bulk add", err)
	}
	defer stmt.Close()

	now := s.clock.Now()
	for _, playerID := range playerIDs {
		_, err := stmt.ExecContext(ctx, s.ids.NewID(), string(eventID), string(playerID),
			model.DefaultBuyins, model.DefaultRebuys, model.DefaultAddon, now)
		if err != nil && !isDuplicate(err) {
			return wrapError(fmt.Sprintf("bulk add player %s", playerID), err)
		}
	}
	return nil
}

func (s *Storage) RemoveEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE event_id::text = $1 AND player_id::text = $2`, s.t("entries"))
	_, err := s.db.ExecContext(ctx, query, string(eventID), string(playerID))
	return wrapError("remove entry", err)
}

func (s *Storage) RemoveEntryByID(ctx context.Context, entryID model.EntryID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id::text = $1`, s.t("entries"))
	_, err := s.db.ExecContext(ctx, query, string(entryID))
	return wrapError("remove entry by id", err)
}

func (s *Storage) BulkRemove(ctx context.Context, entryIDs []model.EntryID) error {
	return s.bulkRemove(ctx, s.db, entryIDs)
}

func (s *Storage) bulkRemove(ctx context.Context, exec SQLExecutor, entryIDs []model.EntryID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	ids := make([]string, len(entryIDs))
	for i, id := range entryIDs {
		ids[i] = string(id)
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id::text = ANY($1)`, s.t("entries"))
	_, err := exec.ExecContext(ctx, query, pq.Array(ids))
	return wrapError("bulk remove", err)
}

// ApplyDiff inserts and deletes in one transaction
func (s *Storage) ApplyDiff(ctx context.Context, eventID model.EventID, add []model.PlayerID, remove []model.EntryID) error {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if len(add) > 0 {
			if err := s.bulkAdd(ctx, tx, eventID, add); err != nil {
				return err
			}
		}
		return s.bulkRemove(ctx, tx, remove)
	})
}

func (s *Storage) IncrementRebuy(ctx context.Context, entryID model.EntryID) error {
	query := fmt.Sprintf(`UPDATE %s SET rebuys = rebuys + 1 WHERE id::text = $1`, s.t("entries"))
	return s.updateEntry(ctx, "increment rebuy", query, string(entryID))
}

func (s *Storage) ToggleAddon(ctx context.Context, entryID model.EntryID) error {
	query := fmt.Sprintf(`UPDATE %s SET addon = NOT addon WHERE id::text = $1`, s.t("entries"))
	return s.updateEntry(ctx, "toggle addon", query, string(entryID))
}

func (s *Storage) RecordResult(ctx context.Context, entryID model.EntryID, result model.Result) error {
	query := fmt.Sprintf(`UPDATE %s SET finish_place = $2, cash_cents = $3, points = $4 WHERE id::text = $1`, s.t("entries"))
	var place sql.NullInt64
	if result.FinishPlace != nil {
		place = sql.NullInt64{Int64: int64(*result.FinishPlace), Valid: true}
	}
	return s.updateEntry(ctx, "record result", query, string(entryID), place, result.CashCents, result.Points)
}

func (s *Storage) updateEntry(ctx context.Context, op, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapError(op, err)
	}
	return checkAffectedRows(result, model.ErrEntryNotFound)
}

// Standings operations

func (s *Storage) ListEventStandings(ctx context.Context, eventID model.EventID) ([]*model.Standing, error) {
	query := fmt.Sprintf(`
		SELECT event_id::text, entry_id::text, player_id::text, finish_place, cash_cents, display_name, handle
		FROM %s
		WHERE event_id::text = $1
		ORDER BY finish_place ASC NULLS LAST`, s.t("v_event_standings"))

	rows, err := s.db.QueryContext(ctx, query, string(eventID))
	if err != nil {
		return nil, wrapError("list event standings", err)
	}
	defer rows.Close()

	standings := make([]*model.Standing, 0)
	for rows.Next() {
		var st model.Standing
		var place sql.NullInt64
		var cash sql.NullInt64
		var handle sql.NullString
		if err := rows.Scan(&st.EventID, &st.EntryID, &st.PlayerID, &place, &cash, &st.DisplayName, &handle); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		if place.Valid {
			v := int(place.Int64)
			st.FinishPlace = &v
		}
		st.CashCents = cash.Int64
		if handle.Valid {
			st.Handle = &handle.String
		}
		standings = append(standings, &st)
	}
	return standings, rows.Err()
}

func (s *Storage) ListLeagueTotals(ctx context.Context) ([]*model.LeagueTotal, error) {
	query := fmt.Sprintf(`
		SELECT t.player_id::text, t.total_points, t.wins, t.podiums, p.display_name, p.handle
		FROM %s t
		LEFT JOIN %s p ON p.id = t.player_id
		ORDER BY t.total_points DESC NULLS LAST`, s.t("v_league_totals"), s.t("players"))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError("list league totals", err)
	}
	defer rows.Close()

	totals := make([]*model.LeagueTotal, 0)
	for rows.Next() {
		var lt model.LeagueTotal
		var points, wins, podiums sql.NullInt64
		var name, handle sql.NullString
		if err := rows.Scan(&lt.PlayerID, &points, &wins, &podiums, &name, &handle); err != nil {
			return nil, fmt.Errorf("failed to scan league total: %w", err)
		}
		lt.TotalPoints = int(points.Int64)
		lt.Wins = int(wins.Int64)
		lt.Podiums = int(podiums.Int64)

		var player *model.Player
		if name.Valid {
			player = &model.Player{ID: lt.PlayerID, DisplayName: name.String}
			if handle.Valid {
				player.Handle = &handle.String
			}
		}
		model.ApplyPlayerName(&lt, player)
		totals = append(totals, &lt)
	}
	return totals, rows.Err()
}

func (s *Storage) createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return s.clock.Now()
	}
	return t
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
