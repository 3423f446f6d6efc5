package sse

import (
	"context"
	"log/slog"

	"github.com/mcoot/pokerleague/internal/model"
)

// SSE event names; pages subscribe with hx-trigger="sse:<name>"
const (
	EventEntriesUpdate   = "entries-update"
	EventRefresh         = "refresh"
	EventEventsUpdate    = "events-update"
	EventStandingsUpdate = "standings-update"
)

// EntryLister reads an event's entries to compute counters
type EntryLister interface {
	ListEntries(ctx context.Context, eventID model.EventID) ([]*model.Entry, error)
}

// Broadcaster turns view invalidations into SSE events on the matching topic
type Broadcaster struct {
	hubManager *HubManager
	entries    EntryLister
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, entries EntryLister, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		entries:    entries,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Invalidate broadcasts to the invalidated view's topic, if anyone is listening
func (b *Broadcaster) Invalidate(ctx context.Context, inv model.Invalidation) {
	topic, ok := TopicFor(inv)
	if !ok {
		return
	}
	hub := b.hubManager.GetHub(topic)
	if hub == nil {
		return
	}

	switch inv.View {
	case model.ViewAdminEntries:
		b.broadcastEntryCounts(ctx, hub, inv.EventID)
	case model.ViewPublicEvent:
		b.signal(ctx, hub, EventRefresh, inv.Reason)
	case model.ViewEventList:
		b.signal(ctx, hub, EventEventsUpdate, inv.Reason)
	case model.ViewLeagueStandings:
		b.signal(ctx, hub, EventStandingsUpdate, inv.Reason)
	}
}

func (b *Broadcaster) broadcastEntryCounts(ctx context.Context, hub *Hub, eventID model.EventID) {
	entries, err := b.entries.ListEntries(ctx, eventID)
	if err != nil {
		b.logger.Error("sse failed to load entries",
			slog.String("event_id", string(eventID)),
			slog.Any("error", err))
		// Clients can still refetch the page
		hub.Publish(EventRefresh, "refresh")
		return
	}

	html, err := render(ctx, EntryCounts(model.TotalsOf(entries)))
	if err != nil {
		b.logger.Error("sse failed to render entry counts",
			slog.String("event_id", string(eventID)),
			slog.Any("error", err))
		return
	}
	hub.Publish(EventEntriesUpdate, WrapForOOBSwap(EntryCountsID, html))
}

func (b *Broadcaster) signal(ctx context.Context, hub *Hub, eventName, reason string) {
	if reason == "" {
		reason = eventName
	}
	data, err := render(ctx, Signal(reason))
	if err != nil {
		b.logger.Error("sse failed to render signal", slog.String("event", eventName), slog.Any("error", err))
		return
	}
	hub.Publish(eventName, data)
}
