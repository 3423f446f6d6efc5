package cli

import (
	"context"
	"errors"
	"net/url"
	"sort"

	"github.com/mcoot/pokerleague/internal/api/request"
	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/storage"
)

// HTTPGateway drives an event's roster through the admin API. Entry-keyed
// calls carry no event ID of their own, so they are routed under the event
// the gateway was created for.
type HTTPGateway struct {
	client  *Client
	eventID model.EventID
}

var _ storage.Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a gateway for one event
func NewHTTPGateway(client *Client, eventID model.EventID) *HTTPGateway {
	return &HTTPGateway{client: client, eventID: eventID}
}

func eventPath(eventID model.EventID) string {
	return "/api/v1/events/" + url.PathEscape(string(eventID))
}

func (g *HTTPGateway) entryPath(entryID model.EntryID) string {
	return eventPath(g.eventID) + "/entries/" + url.PathEscape(string(entryID))
}

// ListEntries returns the event's entries oldest first. The admin listing
// is sorted by display name, so the order is restored here.
func (g *HTTPGateway) ListEntries(ctx context.Context, eventID model.EventID) ([]*model.Entry, error) {
	var resp struct {
		Entries []*model.Entry `json:"entries"`
	}
	if err := g.client.Get(ctx, eventPath(eventID)+"/entries", &resp); err != nil {
		return nil, err
	}
	sort.SliceStable(resp.Entries, func(i, j int) bool {
		return resp.Entries[i].CreatedAt.Before(resp.Entries[j].CreatedAt)
	})
	return resp.Entries, nil
}

func (g *HTTPGateway) AddEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	return g.client.Post(ctx, eventPath(eventID)+"/entries", request.AddEntryRequest{PlayerID: playerID}, nil)
}

func (g *HTTPGateway) RemoveEntry(ctx context.Context, eventID model.EventID, playerID model.PlayerID) error {
	return g.client.Delete(ctx, eventPath(eventID)+"/players/"+url.PathEscape(string(playerID)), nil)
}

func (g *HTTPGateway) RemoveEntryByID(ctx context.Context, entryID model.EntryID) error {
	err := g.client.Delete(ctx, g.entryPath(entryID), nil)
	if errors.Is(err, model.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (g *HTTPGateway) BulkAdd(ctx context.Context, eventID model.EventID, playerIDs []model.PlayerID) error {
	return g.client.Post(ctx, eventPath(eventID)+"/entries/bulk", request.BulkAddRequest{PlayerIDs: playerIDs}, nil)
}

func (g *HTTPGateway) BulkRemove(ctx context.Context, entryIDs []model.EntryID) error {
	return g.client.Delete(ctx, eventPath(g.eventID)+"/entries", request.BulkRemoveRequest{EntryIDs: entryIDs})
}

func (g *HTTPGateway) IncrementRebuy(ctx context.Context, entryID model.EntryID) error {
	return g.client.Post(ctx, g.entryPath(entryID)+"/rebuy", nil, nil)
}

func (g *HTTPGateway) ToggleAddon(ctx context.Context, entryID model.EntryID) error {
	return g.client.Post(ctx, g.entryPath(entryID)+"/addon", nil, nil)
}
