package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/pokerleague/internal/dependencies/clock"
	"github.com/mcoot/pokerleague/internal/dependencies/idgen"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/storage"
)

// ErrTxRetriesExhausted is returned when a watched key keeps changing under a transaction
var ErrTxRetriesExhausted = errors.New("redis: transaction retries exhausted")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	clock  clock.Clock
	ids    idgen.Generator
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return NewWithDependencies(client, cfg, clock.New(), idgen.New())
}

// NewWithDependencies creates a Redis storage with an existing client, clock and ID generator
func NewWithDependencies(client *redis.Client, cfg Config, clk clock.Clock, ids idgen.Generator) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		clock:  clk,
		ids:    ids,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage       = (*Storage)(nil)
	_ storage.AtomicGateway = (*Storage)(nil)
)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// getJSON loads and decodes a single JSON value, mapping redis.Nil to notFound
func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// decodeAll decodes MGET results, skipping missing keys
func decodeAll[T any](vals []any) ([]*T, error) {
	out := make([]*T, 0, len(vals))
	for _, val := range vals {
		if val == nil {
			continue
		}
		str, ok := val.(string)
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

// mgetJSON loads every key with one MGET
func mgetJSON[T any](ctx context.Context, c *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	return decodeAll[T](vals)
}

// watch runs fn in an optimistic transaction over keys, retrying when a key changes
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTxRetriesExhausted
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	key := playerKey(player.ID)
	keys := []string{key}
	if player.Handle != nil {
		keys = append(keys, handleIndexKey(*player.Handle))
	}

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	return s.watch(ctx, func(tx *redis.Tx) error {
		if player.Handle != nil {
			owner, err := tx.Get(ctx, handleIndexKey(*player.Handle)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && owner != string(player.ID) {
				return model.ErrDuplicateHandle
			}
		}

		prev, err := getJSON[model.Player](ctx, tx, key, model.ErrPlayerNotFound)
		if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if prev != nil && prev.Handle != nil {
				pipe.Del(ctx, handleIndexKey(*prev.Handle))
			}
			pipe.Set(ctx, key, data, 0)
			if player.Handle != nil {
				pipe.Set(ctx, handleIndexKey(*player.Handle), string(player.ID), 0)
			}
			pipe.SAdd(ctx, playersIndexKey(), string(player.ID))
			return nil
		})
		return err
	}, keys...)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	players, err := mgetJSON[model.Player](ctx, s.client, keys)
	if err != nil {
		return nil, err
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
	id, err := s.client.Get(ctx, handleIndexKey(handle)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
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
	if player.Handle == nil {
		if err := s.SavePlayer(ctx, player); err != nil {
			return nil, err
		}
		p := *player
		return &p, nil
	}

	data, err := json.Marshal(player)
	if err != nil {
		return nil, err
	}

	handleKey := handleIndexKey(*player.Handle)
	var result *model.Player
	err = s.watch(ctx, func(tx *redis.Tx) error {
		owner, err := tx.Get(ctx, handleKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			existing, err := getJSON[model.Player](ctx, tx, playerKey(model.PlayerID(owner)), model.ErrPlayerNotFound)
			if err != nil {
				return err
			}
			result = existing
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, handleKey, string(player.ID), 0)
			pipe.Set(ctx, playerKey(player.ID), data, 0)
			pipe.SAdd(ctx, playersIndexKey(), string(player.ID))
			return nil
		})
		if err == nil {
			p := *player
			result = &p
		}
		return err
	}, handleKey)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Event operations

func (s *Storage) SaveEvent(ctx context.Context, event *model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, eventKey(event.ID), data, 0)
	pipe.SAdd(ctx, eventsIndexKey(), string(event.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	return getJSON[model.Event](ctx, s.client, eventKey(id), model.ErrEventNotFound)
}

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	ids, err := s.client.SMembers(ctx, eventsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = eventKey(model.EventID(id))
	}

	events, err := mgetJSON[model.Event](ctx, s.client, keys)
	if err != nil {
		return nil, err
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
	ids, err := s.client.ZRange(ctx, eventEntriesIndexKey(eventID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(model.EntryID(id))
	}
	return mgetJSON[model.Entry](ctx, s.client, keys)
}

func (s *Storage) GetEntry(ctx context.Context, id model.EntryID) (*model.Entry, error) {
	return getJSON[model.Entry](ctx, s.client, entryKey(id), model.ErrEntryNotFound)
}

func (s *Storage) ListEntryViews(ctx context.Context, eventID model.EventID) ([]*model.EntryView, error) {
	entries, err := s.ListEntries(ctx, eventID)
	if err != nil {
		return nil, err
	}
	players, err := s.playersByID(ctx, entries)
	if err != nil {
		return nil, err
	}

	views := make([]*model.EntryView, 0, len(entries))
	for _, e := range entries {
		view := &model.EntryView{Entry: *e, DisplayName: model.FallbackName(e.PlayerID)}
		if p, ok := players[e.PlayerID]; ok {
			view.DisplayName = p.DisplayName
			view.Handle = p.Handle
		}
		views = append(views, view)
	}
	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].DisplayName) < strings.ToLower(views[j].DisplayName)
	})
	return views, nil
}

// playersByID loads the players referenced by entries
func (s *Storage) playersByID(ctx context.Context, entries []*model.Entry) (map[model.PlayerID]*model.Player, error) {
	seen := make(map[model.PlayerID]bool, len(entries))
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !seen[e.PlayerID] {
			seen[e.PlayerID] = true
			keys = append(keys, playerKey(e.PlayerID))
		}
	}
	players, err := mgetJSON[model.Player](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.PlayerID]*model.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID, nil
}

func (s *Storage) AddEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	return s.apply(ctx, eventID, []model.PlayerID{playerID}, nil)
}

func (s *Storage) BulkAdd(ctx context.Context, eventID model.EventID, playerIDs []model.PlayerID) error {
	return s.apply(ctx, eventID, playerIDs, nil)
}

func (s *Storage) RemoveEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	id, err := s.client.Get(ctx, entryPairIndexKey(eventID, playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	return s.apply(ctx, eventID, nil, []model.EntryID{model.EntryID(id)})
}

func (s *Storage) RemoveEntryByID(ctx context.Context, entryID model.EntryID) error {
	return s.apply(ctx, "", nil, []model.EntryID{entryID})
}

func (s *Storage) BulkRemove(ctx context.Context, entryIDs []model.EntryID) error {
	return s.apply(ctx, "", nil, entryIDs)
}

func (s *Storage) ApplyDiff(ctx context.Context, eventID model.EventID, add []model.PlayerID, remove []model.EntryID) error {
	return s.apply(ctx, eventID, add, remove)
}

// apply creates entries for add and deletes the entries in remove inside one
// MULTI/EXEC. Pairs that already have an entry and entries that no longer
// exist are skipped.
func (s *Storage) apply(ctx context.Context, eventID model.EventID, add []model.PlayerID, remove []model.EntryID) error {
	add = uniquePlayers(add)
	pairKeys := make([]string, len(add))
	for i, playerID := range add {
		pairKeys[i] = entryPairIndexKey(eventID, playerID)
	}
	entryKeys := make([]string, len(remove))
	for i, id := range remove {
		entryKeys[i] = entryKey(id)
	}

	watched := make([]string, 0, len(pairKeys)+len(entryKeys))
	watched = append(watched, pairKeys...)
	watched = append(watched, entryKeys...)
	if len(watched) == 0 {
		return nil
	}

	return s.watch(ctx, func(tx *redis.Tx) error {
		var toCreate []model.PlayerID
		if len(pairKeys) > 0 {
			existing, err := tx.MGet(ctx, pairKeys...).Result()
			if err != nil {
				return err
			}
			for i, v := range existing {
				if v == nil {
					toCreate = append(toCreate, add[i])
				}
			}
		}

		var toDelete []*model.Entry
		if len(entryKeys) > 0 {
			vals, err := tx.MGet(ctx, entryKeys...).Result()
			if err != nil {
				return err
			}
			if toDelete, err = decodeAll[model.Entry](vals); err != nil {
				return err
			}
		}

		if len(toCreate) == 0 && len(toDelete) == 0 {
			return nil
		}

		var lastSeq int64
		if len(toCreate) > 0 {
			var err error
			lastSeq, err = tx.IncrBy(ctx, entrySeqKey(), int64(len(toCreate))).Result()
			if err != nil {
				return err
			}
		}
		firstSeq := lastSeq - int64(len(toCreate)) + 1
		now := s.clock.Now()

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, playerID := range toCreate {
				entry := model.NewEntry(model.EntryID(s.ids.NewID()), eventID, playerID, now)
				data, err := json.Marshal(entry)
				if err != nil {
					return err
				}
				pipe.Set(ctx, entryKey(entry.ID), data, 0)
				pipe.Set(ctx, entryPairIndexKey(eventID, playerID), string(entry.ID), 0)
				pipe.ZAdd(ctx, eventEntriesIndexKey(eventID), redis.Z{Score: float64(firstSeq + int64(i)), Member: string(entry.ID)})
				pipe.SAdd(ctx, entriesIndexKey(), string(entry.ID))
			}
			for _, entry := range toDelete {
				pipe.Del(ctx, entryKey(entry.ID), entryPairIndexKey(entry.EventID, entry.PlayerID))
				pipe.ZRem(ctx, eventEntriesIndexKey(entry.EventID), string(entry.ID))
				pipe.SRem(ctx, entriesIndexKey(), string(entry.ID))
			}
			return nil
		})
		return err
	}, watched...)
}

func uniquePlayers(ids []model.PlayerID) []model.PlayerID {
	seen := make(map[model.PlayerID]bool, len(ids))
	out := make([]model.PlayerID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// updateEntry applies fn to a stored entry under WATCH
func (s *Storage) updateEntry(ctx context.Context, id model.EntryID, fn func(*model.Entry)) error {
	key := entryKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		entry, err := getJSON[model.Entry](ctx, tx, key, model.ErrEntryNotFound)
		if err != nil {
			return err
		}
		fn(entry)
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
}

func (s *Storage) IncrementRebuy(ctx context.Context, entryID model.EntryID) error {
	return s.updateEntry(ctx, entryID, func(e *model.Entry) {
		e.Rebuys++
	})
}

func (s *Storage) ToggleAddon(ctx context.Context, entryID model.EntryID) error {
	return s.updateEntry(ctx, entryID, func(e *model.Entry) {
		e.Addon = !e.Addon
	})
}

func (s *Storage) RecordResult(ctx context.Context, entryID model.EntryID, result model.Result) error {
	return s.updateEntry(ctx, entryID, func(e *model.Entry) {
		e.FinishPlace = result.FinishPlace
		e.CashCents = result.CashCents
		e.Points = result.Points
	})
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
	ids, err := s.client.SMembers(ctx, entriesIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(model.EntryID(id))
	}
	entries, err := mgetJSON[model.Entry](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})

	players, err := s.playersByID(ctx, entries)
	if err != nil {
		return nil, err
	}
	return model.LeagueTotalsFromEntries(entries, players), nil
}
