package sse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/storage/memory"
	"github.com/mcoot/pokerleague/internal/testutil"
)

func TestWrapForOOBSwap(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		html     string
		expected string
	}{
		{
			name:     "simple content",
			id:       "entry-counts",
			html:     "<p>Hello</p>",
			expected: `<div id="entry-counts" hx-swap-oob="true"><p>Hello</p></div>`,
		},
		{
			name:     "empty content",
			id:       "status",
			html:     "",
			expected: `<div id="status" hx-swap-oob="true"></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapForOOBSwap(tt.id, tt.html)
			if result != tt.expected {
				t.Errorf("WrapForOOBSwap(%q, %q)\ngot:  %q\nwant: %q",
					tt.id, tt.html, result, tt.expected)
			}
		})
	}
}

type failingLister struct{}

func (failingLister) ListEntries(ctx context.Context, eventID model.EventID) ([]*model.Entry, error) {
	return nil, errors.New("connection reset")
}

type BroadcasterSuite struct {
	suite.Suite
	ctx         context.Context
	store       *memory.Storage
	manager     *HubManager
	broadcaster *Broadcaster
}

func TestBroadcasterSuite(t *testing.T) {
	suite.Run(t, new(BroadcasterSuite))
}

func (s *BroadcasterSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.manager = NewHubManager(testutil.NopLogger())
	s.broadcaster = NewBroadcaster(s.manager, s.store, testutil.NopLogger())
}

func (s *BroadcasterSuite) TearDownTest() {
	s.manager.Close()
}

func (s *BroadcasterSuite) subscribe(topic Topic) *Client {
	_, client := s.manager.Subscribe(topic, "client-1")
	return client
}

func (s *BroadcasterSuite) receive(client *Client) (string, string) {
	frames := waitFrames(s.T(), client)
	s.Require().Len(frames, 1)
	return parseMessage(string(frames[0].payload))
}

// parseMessage splits a single SSE frame into its event name and joined data lines
func parseMessage(frame string) (string, string) {
	var name string
	var data []string
	for _, line := range strings.Split(strings.TrimSpace(frame), "\n") {
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
	return name, strings.Join(data, "\n")
}

func (s *BroadcasterSuite) TestAdminInvalidationSendsEntryCounts() {
	s.Require().NoError(s.store.BulkAdd(s.ctx, "event-1", []model.PlayerID{"a", "b", "c"}))
	entries, err := s.store.ListEntries(s.ctx, "event-1")
	s.Require().NoError(err)
	s.Require().NoError(s.store.IncrementRebuy(s.ctx, entries[0].ID))
	s.Require().NoError(s.store.IncrementRebuy(s.ctx, entries[0].ID))
	s.Require().NoError(s.store.ToggleAddon(s.ctx, entries[1].ID))

	client := s.subscribe(AdminTopic("event-1"))
	s.broadcaster.Invalidate(s.ctx, model.Invalidation{View: model.ViewAdminEntries, EventID: "event-1", Reason: "rebuy"})

	name, data := s.receive(client)
	s.Equal(EventEntriesUpdate, name)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(data))
	s.Require().NoError(err)
	counts := doc.Find("#" + EntryCountsID)
	s.Require().Equal(1, counts.Length())
	s.Equal("true", counts.AttrOr("hx-swap-oob", ""))
	s.Equal("3", counts.Find(`[data-field="entries"]`).Text())
	s.Equal("2", counts.Find(`[data-field="rebuys"]`).Text())
	s.Equal("1", counts.Find(`[data-field="addons"]`).Text())
}

func (s *BroadcasterSuite) TestAdminInvalidationFallsBackToRefresh() {
	s.broadcaster = NewBroadcaster(s.manager, failingLister{}, testutil.NopLogger())
	client := s.subscribe(AdminTopic("event-1"))

	s.broadcaster.Invalidate(s.ctx, model.Invalidation{View: model.ViewAdminEntries, EventID: "event-1"})

	name, _ := s.receive(client)
	s.Equal(EventRefresh, name)
}

func (s *BroadcasterSuite) TestSignalEvents() {
	tests := []struct {
		inv   model.Invalidation
		topic Topic
		event string
	}{
		{model.Invalidation{View: model.ViewPublicEvent, EventID: "event-1", Reason: "add_entry"}, EventTopic("event-1"), EventRefresh},
		{model.Invalidation{View: model.ViewEventList, Reason: "save_event"}, EventsTopic, EventEventsUpdate},
		{model.Invalidation{View: model.ViewLeagueStandings, Reason: "record_result"}, StandingsTopic, EventStandingsUpdate},
	}

	for _, tt := range tests {
		client := s.subscribe(tt.topic)
		s.broadcaster.Invalidate(s.ctx, tt.inv)

		name, data := s.receive(client)
		s.Equal(tt.event, name)
		s.Equal(tt.inv.Reason, data)
		s.manager.RemoveHub(tt.topic)
	}
}

func (s *BroadcasterSuite) TestSignalDataIsEscaped() {
	client := s.subscribe(EventsTopic)
	s.broadcaster.Invalidate(s.ctx, model.Invalidation{View: model.ViewEventList, Reason: "<b>x</b>"})

	_, data := s.receive(client)
	s.Equal("&lt;b&gt;x&lt;/b&gt;", data)
}

func (s *BroadcasterSuite) TestOtherTopicsDoNotReceive() {
	client := s.subscribe(AdminTopic("event-2"))
	s.broadcaster.Invalidate(s.ctx, model.Invalidation{View: model.ViewAdminEntries, EventID: "event-1"})

	select {
	case <-client.wake:
		s.Failf("unexpected message", "%v", client.take())
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *BroadcasterSuite) TestNoHubDoesNotPanic() {
	s.NotPanics(func() {
		s.broadcaster.Invalidate(s.ctx, model.Invalidation{View: model.ViewAdminEntries, EventID: "none"})
		s.broadcaster.Invalidate(s.ctx, model.Invalidation{View: model.ViewLeagueStandings})
		s.broadcaster.Invalidate(s.ctx, model.Invalidation{View: "unknown"})
	})
	s.Equal(0, s.manager.HubCount())
}
