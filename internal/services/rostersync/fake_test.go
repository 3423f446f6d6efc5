package rostersync

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/pokerleague/internal/dependencies/mocks"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/storage"
	"github.com/mcoot/pokerleague/internal/storage/memory"
)

// fakeGateway records gateway calls over an in-memory store. Calls can be
// failed or held open per operation key such as "add:A" or "bulk_remove".
type fakeGateway struct {
	store *memory.Storage

	mu          sync.Mutex
	calls       map[string]int
	order       []string
	bulkAdds    [][]model.PlayerID
	bulkRemoves [][]model.EntryID
	errs        map[string]error
	holds       map[string]chan struct{}
}

func newFakeGateway() *fakeGateway {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return &fakeGateway{
		store: memory.NewWithDependencies(clk, mocks.NewMockIDGenerator("entry")),
		calls: make(map[string]int),
		errs:  make(map[string]error),
		holds: make(map[string]chan struct{}),
	}
}

var _ storage.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) failOn(key string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[key] = err
}

// hold makes the next call for key block until the returned func is called
func (g *fakeGateway) hold(key string) func() {
	ch := make(chan struct{})
	g.mu.Lock()
	g.holds[key] = ch
	g.mu.Unlock()
	return func() { close(ch) }
}

func (g *fakeGateway) enter(key string) error {
	g.mu.Lock()
	g.calls[key]++
	g.order = append(g.order, key)
	ch := g.holds[key]
	delete(g.holds, key)
	err := g.errs[key]
	g.mu.Unlock()

	if ch != nil {
		<-ch
	}
	return err
}

func (g *fakeGateway) count(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[key]
}

func (g *fakeGateway) callOrder() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}

func (g *fakeGateway) mutations() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for key, n := range g.calls {
		if key != "list" {
			total += n
		}
	}
	return total
}

func (g *fakeGateway) ListEntries(ctx context.Context, eventID model.EventID) ([]*model.Entry, error) {
	if err := g.enter("list"); err != nil {
		return nil, err
	}
	return g.store.ListEntries(ctx, eventID)
}

func (g *fakeGateway) AddEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	if err := g.enter("add:" + string(playerID)); err != nil {
		return err
	}
	return g.store.AddEntry(ctx, eventID, playerID)
}

func (g *fakeGateway) RemoveEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	if err := g.enter("remove:" + string(playerID)); err != nil {
		return err
	}
	return g.store.RemoveEntry(ctx, eventID, playerID)
}

func (g *fakeGateway) RemoveEntryByID(ctx context.Context, entryID model.EntryID) error {
	if err := g.enter("remove_by_id"); err != nil {
		return err
	}
	return g.store.RemoveEntryByID(ctx, entryID)
}

func (g *fakeGateway) BulkAdd(ctx context.Context, eventID model.EventID, playerIDs []model.PlayerID) error {
	g.mu.Lock()
	g.bulkAdds = append(g.bulkAdds, playerIDs)
	g.mu.Unlock()
	if err := g.enter("bulk_add"); err != nil {
		return err
	}
	return g.store.BulkAdd(ctx, eventID, playerIDs)
}

func (g *fakeGateway) BulkRemove(ctx context.Context, entryIDs []model.EntryID) error {
	g.mu.Lock()
	g.bulkRemoves = append(g.bulkRemoves, entryIDs)
	g.mu.Unlock()
	if err := g.enter("bulk_remove"); err != nil {
		return err
	}
	return g.store.BulkRemove(ctx, entryIDs)
}

func (g *fakeGateway) IncrementRebuy(ctx context.Context, entryID model.EntryID) error {
	if err := g.enter("rebuy"); err != nil {
		return err
	}
	return g.store.IncrementRebuy(ctx, entryID)
}

func (g *fakeGateway) ToggleAddon(ctx context.Context, entryID model.EntryID) error {
	if err := g.enter("addon"); err != nil {
		return err
	}
	return g.store.ToggleAddon(ctx, entryID)
}

// atomicFakeGateway adds ApplyDiff to the fake
type atomicFakeGateway struct {
	*fakeGateway
}

var _ storage.AtomicGateway = atomicFakeGateway{}

func (g atomicFakeGateway) ApplyDiff(ctx context.Context, eventID model.EventID, add []model.PlayerID, remove []model.EntryID) error {
	if err := g.enter("apply_diff"); err != nil {
		return err
	}
	return g.store.ApplyDiff(ctx, eventID, add, remove)
}
