package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/pokerleague/internal/api"
	"github.com/mcoot/pokerleague/internal/api/apierr"
	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/factory"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/auth"
	"github.com/mcoot/pokerleague/internal/services/league"
	"github.com/mcoot/pokerleague/internal/storage"
	"github.com/mcoot/pokerleague/internal/testutil"
)

const adminToken = "plt_test-token"

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithAuth(t, auth.Config{})
}

func newTestServerWithAuth(t *testing.T, authCfg auth.Config) *testServer {
	t.Helper()

	app := factory.NewTestAppWithAuth(authCfg)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: app.AuthService,
		League:      app.LeagueController,
		HubManager:  app.HubManager,
		Storage:     app.Storage,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createEvent(t *testing.T) response.Event {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/events", map[string]any{
		"title":      "Friday Freezeout",
		"event_date": "2024-03-01",
		"buy_in_gbp": 20.5,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var event response.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &event))
	return event
}

func (ts *testServer) entries(t *testing.T, eventID string) response.EntriesResponse {
	t.Helper()
	rr := ts.request(http.MethodGet, "/api/v1/events/"+eventID+"/entries", nil, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.EntriesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// seedPlayers stores players p1..pN
func (ts *testServer) seedPlayers(t *testing.T, names ...string) {
	t.Helper()
	_, err := ts.app.SeedPlayers(context.Background(), names...)
	require.NoError(t, err)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

type downStore struct{}

func (downStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestHealthCheckReportsStorageFailure(t *testing.T) {
	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: app.AuthService,
		League:      app.LeagueController,
		HubManager:  app.HubManager,
		Storage:     downStore{},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCreateAndGetEvent(t *testing.T) {
	ts := newTestServer(t)

	event := ts.createEvent(t)
	assert.Equal(t, "id-1", event.ID)
	assert.Equal(t, int64(2050), event.BuyInCents)
	assert.Equal(t, "£20.50", event.BuyIn)

	rr := ts.request(http.MethodGet, "/api/v1/events/"+event.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got response.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Friday Freezeout", got.Title)

	rr = ts.request(http.MethodGet, "/api/v1/events", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []response.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCreateEventValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/events", map[string]any{"event_date": "2024-03-01"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeInvalidRequest, apiErr.Code)
	assert.Equal(t, "Title is required.", apiErr.Message)

	rr = ts.request(http.MethodPost, "/api/v1/events", map[string]any{"title": "x", "event_date": "01/03/2024"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid JSON body", decodeError(t, rr).Message)
}

func TestUnknownEventIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/events/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeEventNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/events/missing/entries/bulk", map[string]any{"player_ids": []string{"p1"}}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEntryLifecycle(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.app.SeedPlayers(context.Background(), "Alice", "Bob", "Cara")
	require.NoError(t, err)
	event := ts.createEvent(t)
	base := "/api/v1/events/" + event.ID

	// Add by ID, by handle, and by creating a player
	rr := ts.request(http.MethodPost, base+"/entries", map[string]any{"player_id": "p1"}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = ts.request(http.MethodPost, base+"/entries", map[string]any{"query": "@bob"}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var added response.AddEntryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	require.NotNil(t, added.Player)
	assert.Equal(t, "p2", added.Player.ID)
	rr = ts.request(http.MethodPost, base+"/entries", map[string]any{"display_name": "Newcomer"}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := ts.entries(t, event.ID)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, 3, resp.Totals.Entries)

	alice := resp.Entries[0]
	assert.Equal(t, "Alice", alice.DisplayName)

	// Rebuy and add-on
	rr = ts.request(http.MethodPost, base+"/entries/"+alice.ID+"/rebuy", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, base+"/entries/"+alice.ID+"/addon", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var entry response.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entry))
	assert.Equal(t, 1, entry.Rebuys)
	assert.True(t, entry.Addon)

	// Result and standings
	rr = ts.request(http.MethodPut, base+"/entries/"+alice.ID+"/result", map[string]any{"finish_place": 1, "cash_gbp": 40, "points": 12}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, base+"/results", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var results response.ResultsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	assert.Equal(t, int64(4000), results.PrizePoolCents)
	assert.Equal(t, "£40.00", results.PrizePool)
	require.NotEmpty(t, results.Standings)
	assert.Equal(t, "Alice", results.Standings[0].DisplayName)

	rr = ts.request(http.MethodGet, "/api/v1/standings", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var totals []response.LeagueTotal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &totals))
	require.NotEmpty(t, totals)
	assert.Equal(t, "p1", totals[0].PlayerID)
	assert.Equal(t, 12, totals[0].TotalPoints)

	// Remove by entry and by player
	rr = ts.request(http.MethodDelete, base+"/entries/"+alice.ID, nil, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.request(http.MethodDelete, base+"/players/p2", nil, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, ts.entries(t, event.ID).Entries, 1)
}

func TestAddEntryRequiresAForm(t *testing.T) {
	ts := newTestServer(t)
	event := ts.createEvent(t)

	rr := ts.request(http.MethodPost, "/api/v1/events/"+event.ID+"/entries", map[string]any{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddExistingUnknownPlayer(t *testing.T) {
	ts := newTestServer(t)
	event := ts.createEvent(t)

	rr := ts.request(http.MethodPost, "/api/v1/events/"+event.ID+"/entries", map[string]any{"query": "ghost"}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Player not found.", decodeError(t, rr).Message)
}

func TestBulkAddAndRemove(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice", "Bob", "Cara")
	event := ts.createEvent(t)
	base := "/api/v1/events/" + event.ID

	rr := ts.request(http.MethodPost, base+"/entries/bulk", map[string]any{"player_ids": []string{"p1", "p2", "p3"}}, "")
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	resp := ts.entries(t, event.ID)
	require.Len(t, resp.Entries, 3)

	rr = ts.request(http.MethodDelete, base+"/entries", map[string]any{"entry_ids": []string{resp.Entries[0].ID, resp.Entries[1].ID}}, "")
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
	assert.Len(t, ts.entries(t, event.ID).Entries, 1)
}

func TestEntryOfOtherEventIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice")
	first := ts.createEvent(t)
	second := ts.createEvent(t)

	rr := ts.request(http.MethodPost, "/api/v1/events/"+first.ID+"/entries", map[string]any{"player_id": "p1"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	entryID := ts.entries(t, first.ID).Entries[0].ID

	rr = ts.request(http.MethodPost, "/api/v1/events/"+second.ID+"/entries/"+entryID+"/rebuy", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSetSelected(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice")
	event := ts.createEvent(t)
	path := "/api/v1/events/" + event.ID + "/players/p1"

	rr := ts.request(http.MethodPut, path, map[string]any{"selected": true}, "")
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
	assert.Len(t, ts.entries(t, event.ID).Entries, 1)

	// Selecting twice is not an error
	rr = ts.request(http.MethodPut, path, map[string]any{"selected": true}, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, ts.entries(t, event.ID).Entries, 1)

	rr = ts.request(http.MethodPut, path, map[string]any{"selected": false}, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, ts.entries(t, event.ID).Entries)
}

func TestSyncRoster(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice", "Bob", "Cara")
	event := ts.createEvent(t)
	path := "/api/v1/events/" + event.ID + "/roster"

	rr := ts.request(http.MethodPost, "/api/v1/events/"+event.ID+"/entries/bulk", map[string]any{"player_ids": []string{"p1", "p2"}}, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPut, path, map[string]any{"desired_player_ids": []string{"p2", "p3"}}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var report response.SyncReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, []string{"p3"}, report.Added)
	assert.Equal(t, []string{"p1"}, report.Removed)
	assert.True(t, report.Atomic)

	// Same selection again changes nothing
	rr = ts.request(http.MethodPut, path, map[string]any{"desired_player_ids": []string{"p3", "p2"}}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Empty(t, report.Added)
	assert.Empty(t, report.Removed)
	assert.Equal(t, 0, report.Calls)
}

func TestSyncRosterRejectsEmptyID(t *testing.T) {
	ts := newTestServer(t)
	event := ts.createEvent(t)

	rr := ts.request(http.MethodPut, "/api/v1/events/"+event.ID+"/roster", map[string]any{"desired_player_ids": []string{"p1", ""}}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUnknownPlayerIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice")
	event := ts.createEvent(t)
	base := "/api/v1/events/" + event.ID

	requests := []struct {
		method string
		path   string
		body   map[string]any
	}{
		{http.MethodPost, base + "/entries", map[string]any{"player_id": "ghost"}},
		{http.MethodPost, base + "/entries/bulk", map[string]any{"player_ids": []string{"p1", "ghost"}}},
		{http.MethodPut, base + "/players/ghost", map[string]any{"selected": true}},
		{http.MethodPut, base + "/roster", map[string]any{"desired_player_ids": []string{"p1", "ghost"}}},
	}
	for _, req := range requests {
		rr := ts.request(req.method, req.path, req.body, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, req.path)
		assert.Equal(t, apierr.CodePlayerNotFound, decodeError(t, rr).Code, req.path)
	}
	assert.Empty(t, ts.entries(t, event.ID).Entries)
}

// heldDiffStorage blocks the first ApplyDiff until release is closed
type heldDiffStorage struct {
	storage.Storage
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (h *heldDiffStorage) ApplyDiff(ctx context.Context, eventID model.EventID, add []model.PlayerID, remove []model.EntryID) error {
	h.once.Do(func() {
		close(h.entered)
		<-h.release
	})
	return h.Storage.(storage.AtomicGateway).ApplyDiff(ctx, eventID, add, remove)
}

func TestOverlappingSyncRosterConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice", "Bob")
	event := ts.createEvent(t)
	path := "/api/v1/events/" + event.ID + "/roster"

	held := &heldDiffStorage{Storage: ts.app.Storage, entered: make(chan struct{}), release: make(chan struct{})}
	ts.handler = api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: ts.app.AuthService,
		League:      league.NewController(held, ts.app.Clock, ts.app.IDs, testutil.NopLogger()),
		HubManager:  ts.app.HubManager,
		Storage:     held,
	})

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- ts.request(http.MethodPut, path, map[string]any{"desired_player_ids": []string{"p1"}}, "")
	}()
	<-held.entered

	rr := ts.request(http.MethodPut, path, map[string]any{"desired_player_ids": []string{"p2"}}, "")
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	assert.Equal(t, apierr.CodeSubmitInProgress, decodeError(t, rr).Code)

	close(held.release)
	rr = <-first
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	entries := ts.entries(t, event.ID).Entries
	require.Len(t, entries, 1)
	assert.Equal(t, "Alice", entries[0].DisplayName)

	rr = ts.request(http.MethodPut, path, map[string]any{"desired_player_ids": []string{"p2"}}, "")
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestListAndSearchPlayers(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.app.SeedPlayers(context.Background(), "Alice", "Bob", "Alicia")
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/players", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var players []response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
	assert.Len(t, players, 3)

	rr = ts.request(http.MethodGet, "/api/v1/players?q=ali", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var candidates []response.Candidate
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &candidates))
	assert.Len(t, candidates, 2)
}

func TestAdminTokenGuardsWrites(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	require.NoError(t, err)
	ts := newTestServerWithAuth(t, auth.Config{TokenHash: string(hash)})

	body := map[string]any{"title": "Guarded", "event_date": "2024-03-01"}

	rr := ts.request(http.MethodPost, "/api/v1/events", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/events", body, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/events", body, adminToken)
	assert.Equal(t, http.StatusCreated, rr.Code)

	// Reads stay public
	rr = ts.request(http.MethodGet, "/api/v1/events", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

// readEvent reads SSE lines until an event with the given name arrives and returns its data
func readEvent(t *testing.T, lines <-chan string, name string) string {
	t.Helper()
	timeout := time.After(2 * time.Second)
	var current string
	var data []string
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before %q", name)
			}
			switch {
			case strings.HasPrefix(line, "event: "):
				current = strings.TrimPrefix(line, "event: ")
				data = nil
			case strings.HasPrefix(line, "data: "):
				data = append(data, strings.TrimPrefix(line, "data: "))
			case line == "" && current == name:
				return strings.Join(data, "\n")
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", name)
		}
	}
}

func openStream(t *testing.T, url string) <-chan string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func TestAdminStreamReceivesEntryCounts(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice", "Bob")
	server := httptest.NewServer(ts.handler)
	t.Cleanup(server.Close) // runs after the stream is cancelled

	event := ts.createEvent(t)
	lines := openStream(t, server.URL+"/api/v1/events/"+event.ID+"/stream?view=admin")
	readEvent(t, lines, "connected")

	rr := ts.request(http.MethodPost, "/api/v1/events/"+event.ID+"/entries/bulk", map[string]any{"player_ids": []string{"p1", "p2"}}, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	data := readEvent(t, lines, "entries-update")
	assert.Contains(t, data, `id="entry-counts"`)
	assert.Contains(t, data, `<span class="count" data-field="entries">2</span>`)
}

func TestPublicStreamReceivesRefresh(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice")
	server := httptest.NewServer(ts.handler)
	t.Cleanup(server.Close) // runs after the stream is cancelled

	event := ts.createEvent(t)
	lines := openStream(t, server.URL+"/api/v1/events/"+event.ID+"/stream")
	readEvent(t, lines, "connected")

	rr := ts.request(http.MethodPut, "/api/v1/events/"+event.ID+"/players/p1", map[string]any{"selected": true}, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	assert.Equal(t, "add_entry", readEvent(t, lines, "refresh"))
}

func TestStreamRejectsUnknownView(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.request(http.MethodGet, "/api/v1/events/e1/stream?view=secret", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminStreamRequiresToken(t *testing.T) {
	hash, err := auth.HashToken(adminToken, bcrypt.MinCost)
	require.NoError(t, err)
	ts := newTestServerWithAuth(t, auth.Config{TokenHash: hash})

	rr := ts.request(http.MethodGet, "/api/v1/events/e1/stream?view=admin", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestEntryIDsAreModelShaped(t *testing.T) {
	// The CLI gateway decodes entry listings straight into model entries
	ts := newTestServer(t)
	ts.seedPlayers(t, "Alice")
	event := ts.createEvent(t)
	rr := ts.request(http.MethodPost, "/api/v1/events/"+event.ID+"/entries", map[string]any{"player_id": "p1"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/events/"+event.ID+"/entries", nil, "")
	var raw struct {
		Entries []model.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	require.Len(t, raw.Entries, 1)
	assert.Equal(t, model.EntryID("entry-1"), raw.Entries[0].ID)
	assert.Equal(t, model.PlayerID("p1"), raw.Entries[0].PlayerID)
	assert.Equal(t, model.EventID(event.ID), raw.Entries[0].EventID)
}
