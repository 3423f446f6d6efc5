package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/pokerleague/internal/api"
	"github.com/mcoot/pokerleague/internal/api/request"
	"github.com/mcoot/pokerleague/internal/api/response"
	"github.com/mcoot/pokerleague/internal/factory"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/auth"
	"github.com/mcoot/pokerleague/internal/services/roster"
	"github.com/mcoot/pokerleague/internal/services/rostersync"
	"github.com/mcoot/pokerleague/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
	client *Client
	ctx    context.Context
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.start(auth.Config{})
	s.client = NewClient(s.server.URL, "")
	s.ctx = context.Background()
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
	_ = s.app.Close()
	s.server = nil
}

func (s *CLISuite) start(authCfg auth.Config) {
	if s.server != nil {
		s.server.Close()
		_ = s.app.Close()
	}
	s.app = factory.NewTestAppWithAuth(authCfg)
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: s.app.AuthService,
		League:      s.app.LeagueController,
		HubManager:  s.app.HubManager,
		Storage:     s.app.Storage,
	}))
}

func (s *CLISuite) createEvent() model.EventID {
	var event response.Event
	err := s.client.Post(s.ctx, "/api/v1/events", request.CreateEventRequest{
		Title:     "Friday Night",
		EventDate: "2024-03-01",
		BuyInGBP:  20,
	}, &event)
	s.Require().NoError(err)
	return model.EventID(event.ID)
}

func (s *CLISuite) seed(names ...string) {
	_, err := s.app.SeedPlayers(s.ctx, names...)
	s.Require().NoError(err)
}

func (s *CLISuite) enteredPlayers(eventID model.EventID) []model.PlayerID {
	entries, err := s.app.Storage.ListEntries(s.ctx, eventID)
	s.Require().NoError(err)
	ids := make([]model.PlayerID, len(entries))
	for i, e := range entries {
		ids[i] = e.PlayerID
	}
	return ids
}

// run executes leaguectl against the test server with JSON output
func (s *CLISuite) run(args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--server", s.server.URL,
		"--token-file", filepath.Join(s.T().TempDir(), "token"),
		"--output", "json",
	}, args...))
	err := root.ExecuteContext(s.ctx)
	return out.String(), err
}

func (s *CLISuite) TestGatewayEntryLifecycle() {
	s.seed("Alice", "Bob", "Carol")
	eventID := s.createEvent()
	gw := NewHTTPGateway(s.client, eventID)

	s.Require().NoError(gw.AddEntry(s.ctx, eventID, "p1"))
	s.Require().NoError(gw.BulkAdd(s.ctx, eventID, []model.PlayerID{"p2", "p3", "p1"}))

	entries, err := gw.ListEntries(s.ctx, eventID)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(eventID, entries[0].EventID)
	s.Equal(1, entries[0].Buyins)

	first := entries[0].ID
	s.Require().NoError(gw.IncrementRebuy(s.ctx, first))
	s.Require().NoError(gw.ToggleAddon(s.ctx, first))
	stored, err := s.app.Storage.GetEntry(s.ctx, first)
	s.Require().NoError(err)
	s.Equal(1, stored.Rebuys)
	s.True(stored.Addon)

	s.Require().NoError(gw.RemoveEntry(s.ctx, eventID, "p2"))
	s.Require().NoError(gw.RemoveEntryByID(s.ctx, "entry-missing"))
	s.ElementsMatch([]model.PlayerID{"p1", "p3"}, s.enteredPlayers(eventID))

	remaining, err := gw.ListEntries(s.ctx, eventID)
	s.Require().NoError(err)
	ids := make([]model.EntryID, len(remaining))
	for i, e := range remaining {
		ids[i] = e.ID
	}
	s.Require().NoError(gw.BulkRemove(s.ctx, ids))
	s.Empty(s.enteredPlayers(eventID))
}

func (s *CLISuite) TestGatewayListsEntriesOldestFirst() {
	s.seed("Alice", "Bob", "Carol")
	eventID := s.createEvent()
	gw := NewHTTPGateway(s.client, eventID)

	for _, id := range []model.PlayerID{"p3", "p1", "p2"} {
		s.Require().NoError(gw.AddEntry(s.ctx, eventID, id))
		s.app.MockClock.Advance(time.Minute)
	}

	entries, err := gw.ListEntries(s.ctx, eventID)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(model.PlayerID("p3"), entries[0].PlayerID)
	s.Equal(model.PlayerID("p1"), entries[1].PlayerID)
	s.Equal(model.PlayerID("p2"), entries[2].PlayerID)
}

func (s *CLISuite) TestGatewayErrorsMatchDomainErrors() {
	eventID := s.createEvent()
	gw := NewHTTPGateway(s.client, eventID)

	err := gw.IncrementRebuy(s.ctx, "entry-missing")
	s.ErrorIs(err, model.ErrEntryNotFound)
	s.True(IsStatus(err, http.StatusNotFound))

	_, err = gw.ListEntries(s.ctx, "no-such-event")
	s.ErrorIs(err, model.ErrEventNotFound)
}

func (s *CLISuite) TestGatewayWithoutTokenIsAuthorizationFailure() {
	hash, err := bcrypt.GenerateFromPassword([]byte("plt_cli-token"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.start(auth.Config{TokenHash: string(hash)})

	admin := NewClient(s.server.URL, "plt_cli-token")
	var event response.Event
	s.Require().NoError(admin.Post(s.ctx, "/api/v1/events", request.CreateEventRequest{
		Title: "Guarded", EventDate: "2024-03-01",
	}, &event))

	gw := NewHTTPGateway(NewClient(s.server.URL, ""), model.EventID(event.ID))
	err = gw.AddEntry(s.ctx, model.EventID(event.ID), "p1")
	s.ErrorIs(err, model.ErrNotAuthorized)
	s.True(IsStatus(err, http.StatusUnauthorized))
	s.Equal(rostersync.KindAuthorization, rostersync.Classify(err))
}

func (s *CLISuite) TestSubmitterOverHTTP() {
	s.seed("Alice", "Bob", "Carol")
	eventID := s.createEvent()
	submitter := rostersync.NewSubmitter(NewHTTPGateway(s.client, eventID), eventID, testutil.NopLogger())

	report, err := submitter.Submit(s.ctx, rostersync.SyncRequest{
		EventID:          eventID,
		DesiredPlayerIDs: []model.PlayerID{"p1", "p2"},
	})
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p1", "p2"}, report.Added)
	s.Empty(report.Removed)
	s.Equal(1, report.Calls)
	s.False(report.Atomic)

	report, err = submitter.Submit(s.ctx, rostersync.SyncRequest{
		EventID:          eventID,
		DesiredPlayerIDs: []model.PlayerID{"p2", "p3"},
	})
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p3"}, report.Added)
	s.Equal([]model.PlayerID{"p1"}, report.Removed)
	s.Equal(2, report.Calls)
	s.ElementsMatch([]model.PlayerID{"p2", "p3"}, s.enteredPlayers(eventID))

	report, err = submitter.Submit(s.ctx, rostersync.SyncRequest{
		EventID:          eventID,
		DesiredPlayerIDs: []model.PlayerID{"p3", "p2"},
	})
	s.Require().NoError(err)
	s.True(report.NoOp())
	s.Zero(report.Calls)
}

func (s *CLISuite) TestTogglerOverHTTP() {
	s.seed("Alice", "Bob")
	eventID := s.createEvent()
	gw := NewHTTPGateway(s.client, eventID)
	s.Require().NoError(gw.AddEntry(s.ctx, eventID, "p2"))

	selector := roster.NewSelector("p2")
	toggler := rostersync.NewToggler(gw, eventID, selector, testutil.NopLogger(), nil)
	defer toggler.Close()

	add, err := toggler.Toggle(s.ctx, "p1")
	s.Require().NoError(err)
	remove, err := toggler.Toggle(s.ctx, "p2")
	s.Require().NoError(err)

	s.False(add.Wait().Reverted)
	s.False(remove.Wait().Reverted)
	s.Equal([]model.PlayerID{"p1"}, s.enteredPlayers(eventID))
	s.True(selector.IsSelected("p1"))
	s.False(selector.IsSelected("p2"))
}

func (s *CLISuite) TestHealthCommand() {
	out, err := s.run("health")
	s.Require().NoError(err)

	var health response.HealthResponse
	s.Require().NoError(json.Unmarshal([]byte(out), &health))
	s.Equal("ok", health.Status)
}

func (s *CLISuite) TestEventNightCommands() {
	out, err := s.run("events", "create", "--title", "Friday Night", "--date", "2024-03-01", "--buy-in", "20")
	s.Require().NoError(err, out)
	var event response.Event
	s.Require().NoError(json.Unmarshal([]byte(out), &event))
	s.Equal(int64(2000), event.BuyInCents)

	out, err = s.run("entries", "add", event.ID, "--name", "Alice", "--handle", "@Alice")
	s.Require().NoError(err, out)
	var added response.AddEntryResponse
	s.Require().NoError(json.Unmarshal([]byte(out), &added))
	s.Require().NotNil(added.Player)
	s.Equal("Alice", added.Player.DisplayName)

	out, err = s.run("entries", "add", event.ID, "--query", "alice")
	s.Require().NoError(err, out)

	out, err = s.run("entries", "list", event.ID)
	s.Require().NoError(err, out)
	var entries response.EntriesResponse
	s.Require().NoError(json.Unmarshal([]byte(out), &entries))
	s.Require().Len(entries.Entries, 1)
	entryID := entries.Entries[0].ID

	out, err = s.run("entries", "rebuy", event.ID, entryID)
	s.Require().NoError(err, out)
	var entry response.Entry
	s.Require().NoError(json.Unmarshal([]byte(out), &entry))
	s.Equal(1, entry.Rebuys)

	out, err = s.run("entries", "result", event.ID, entryID, "--place", "1", "--cash", "60", "--points", "10")
	s.Require().NoError(err, out)
	s.Require().NoError(json.Unmarshal([]byte(out), &entry))
	s.Require().NotNil(entry.FinishPlace)
	s.Equal(1, *entry.FinishPlace)
	s.Equal(int64(6000), entry.CashCents)

	out, err = s.run("standings")
	s.Require().NoError(err, out)
	var totals []response.LeagueTotal
	s.Require().NoError(json.Unmarshal([]byte(out), &totals))
	s.Require().Len(totals, 1)
	s.Equal(10, totals[0].TotalPoints)
	s.Equal(1, totals[0].Wins)
}

func (s *CLISuite) TestRosterSyncCommand() {
	s.seed("Alice", "Bob", "Carol")
	eventID := s.createEvent()

	out, err := s.run("roster", "sync", string(eventID), "p1", "p3")
	s.Require().NoError(err, out)
	var report response.SyncReport
	s.Require().NoError(json.Unmarshal([]byte(out), &report))
	s.Equal([]string{"p1", "p3"}, report.Added)

	out, err = s.run("roster", "sync", "--remote", string(eventID), "p2")
	s.Require().NoError(err, out)
	s.Require().NoError(json.Unmarshal([]byte(out), &report))
	s.Equal([]string{"p2"}, report.Added)
	s.Equal([]string{"p1", "p3"}, report.Removed)
	s.Equal([]model.PlayerID{"p2"}, s.enteredPlayers(eventID))

	out, err = s.run("roster", "toggle", string(eventID), "p1")
	s.Require().NoError(err, out)
	s.ElementsMatch([]model.PlayerID{"p1", "p2"}, s.enteredPlayers(eventID))
}

func (s *CLISuite) TestPlayerSearchCommand() {
	s.seed("Alice", "Bob")

	out, err := s.run("players", "--search", "ali")
	s.Require().NoError(err, out)
	var candidates []response.Candidate
	s.Require().NoError(json.Unmarshal([]byte(out), &candidates))
	s.Require().Len(candidates, 1)
	s.Equal("p1", candidates[0].ID)
}

func (s *CLISuite) TestUnknownEventFails() {
	_, err := s.run("events", "show", "no-such-event")
	s.Require().Error(err)
	s.ErrorIs(err, model.ErrEventNotFound)
}

func (s *CLISuite) TestAddEntryNeedsAForm() {
	eventID := s.createEvent()
	_, err := s.run("entries", "add", string(eventID))
	s.Require().Error(err)
	s.Contains(err.Error(), "--player")
}

func (s *CLISuite) TestTokenGenerateSaves() {
	tokenFile := filepath.Join(s.T().TempDir(), "token")
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--token-file", tokenFile, "-o", "json", "token", "generate", "--save", "--cost", "4"})
	s.Require().NoError(root.ExecuteContext(s.ctx))

	var result TokenResult
	s.Require().NoError(json.Unmarshal(out.Bytes(), &result))
	s.True(strings.HasPrefix(result.Token, "plt_"))
	s.NoError(bcrypt.CompareHashAndPassword([]byte(result.Hash), []byte(result.Token)))

	saved, err := os.ReadFile(tokenFile)
	s.Require().NoError(err)
	s.Equal(result.Token+"\n", string(saved))
}

func (s *CLISuite) TestWatchNeedsEventForAdmin() {
	_, err := s.run("watch", "--admin")
	s.Require().Error(err)
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, "refresh", "add_entry", false)
	if !strings.Contains(buf.String(), "refresh: add_entry") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	buf.Reset()
	printEvent(&buf, "entries-update", "<div>\n</div>", true)
	var evt SSEEvent
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatal(err)
	}
	if evt.Event != "entries-update" || evt.Data != "<div>\n</div>" {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestAPIErrorUnwrapsUnknownCodeToNil(t *testing.T) {
	err := &APIError{Status: http.StatusBadRequest, Code: "INVALID_REQUEST", Message: "Title is required."}
	if errors.Unwrap(err) != nil {
		t.Fatal("expected no domain error for INVALID_REQUEST")
	}
	if err.Error() != "Title is required. (INVALID_REQUEST)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestHealthReportsDegradedStorage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "degraded", Storage: "connection refused"})
	}))
	defer srv.Close()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--server", srv.URL, "--token-file", filepath.Join(t.TempDir(), "token"), "-o", "json", "health"})

	err := root.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected degraded error, got %v", err)
	}
	if !strings.Contains(out.String(), `"status": "degraded"`) && !strings.Contains(out.String(), `"status":"degraded"`) {
		t.Fatalf("expected health body in output, got %q", out.String())
	}
}
