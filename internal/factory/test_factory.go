package factory

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/pokerleague/internal/dependencies/mocks"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/auth"
	"github.com/mcoot/pokerleague/internal/storage/memory"
	"github.com/mcoot/pokerleague/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDGenerator
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithAuth(auth.Config{})
}

// NewTestAppWithAuth creates a test App whose admin routes use the given auth config
func NewTestAppWithAuth(authCfg auth.Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDGenerator("id")
	store := memory.NewWithDependencies(mockClock, mocks.NewMockIDGenerator("entry"))

	app, err := newWithDependencies(store, mockClock, mockIDs, authCfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}

// SeedPlayers stores players with the given display names and returns them in order.
// Player IDs are "p1", "p2", ... and each player's handle is its lower-cased name.
func (t *TestApp) SeedPlayers(ctx context.Context, names ...string) ([]*model.Player, error) {
	players := make([]*model.Player, 0, len(names))
	for i, name := range names {
		handle := model.NormalizeHandle(strings.ToLower(name))
		p := &model.Player{
			ID:          model.PlayerID("p" + strconv.Itoa(i+1)),
			DisplayName: name,
			Handle:      handle,
			CreatedAt:   t.MockClock.Now(),
		}
		if err := t.Backend.SavePlayer(ctx, p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}
