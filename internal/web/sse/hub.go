package sse

import (
	"log/slog"
	"sync"
	"time"
)

// Hub fans events out to the clients subscribed to one topic
type Hub struct {
	topic  Topic
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub(topic Topic, logger *slog.Logger) *Hub {
	return &Hub{
		topic:   topic,
		logger:  logger.With(slog.String("topic", string(topic))),
		clients: make(map[*Client]struct{}),
	}
}

// Register subscribes c. Registering on a closed hub closes c at once.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("sse client registered",
		slog.String("client_id", c.id),
		slog.Int("total_clients", n))
}

// Unregister drops c and closes it. Unknown clients are ignored.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.close()
	if ok {
		h.logger.Info("sse client unregistered",
			slog.String("client_id", c.id),
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int("total_clients", n))
	}
}

// Publish hands the event to every client without blocking. Invalidations
// are idempotent, so an unsent event of the same name is replaced rather
// than queued behind.
func (h *Hub) Publish(name, data string) {
	f := newFrame(name, data)

	h.mu.RLock()
	merged := 0
	for c := range h.clients {
		if c.deliver(f) {
			merged++
		}
	}
	n := len(h.clients)
	h.mu.RUnlock()

	if merged > 0 {
		h.logger.Debug("sse events coalesced",
			slog.String("event", name),
			slog.Int("merged", merged),
			slog.Int("total_clients", n))
	}
}

// Close disconnects every client. Later calls do nothing.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
	h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", len(clients)))
}

func (h *Hub) Topic() Topic {
	return h.topic
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager owns one hub per topic
type HubManager struct {
	mu     sync.Mutex
	hubs   map[Topic]*Hub
	logger *slog.Logger
}

func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[Topic]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// Subscribe registers a new client on the topic's hub, creating the hub if
// needed. Both happen under the manager lock, so CleanupEmptyHubs cannot
// close the hub in between.
func (m *HubManager) Subscribe(topic Topic, clientID string) (*Hub, *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub := m.hubLocked(topic)
	client := NewClient(clientID)
	hub.Register(client)
	return hub, client
}

// GetOrCreateHub returns the topic's hub, creating it if needed
func (m *HubManager) GetOrCreateHub(topic Topic) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubLocked(topic)
}

func (m *HubManager) hubLocked(topic Topic) *Hub {
	hub, ok := m.hubs[topic]
	if !ok {
		hub = NewHub(topic, m.logger)
		m.hubs[topic] = hub
	}
	return hub
}

// GetHub returns the topic's hub, or nil when nobody has subscribed
func (m *HubManager) GetHub(topic Topic) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[topic]
}

func (m *HubManager) RemoveHub(topic Topic) {
	m.mu.Lock()
	hub, ok := m.hubs[topic]
	delete(m.hubs, topic)
	m.mu.Unlock()

	if ok {
		hub.Close()
		m.logger.Info("sse hub removed", slog.String("topic", string(topic)))
	}
}

func (m *HubManager) HubCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hubs)
}

// CleanupEmptyHubs closes hubs whose clients have all gone
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	var empty []*Hub
	for topic, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			empty = append(empty, hub)
			delete(m.hubs, topic)
		}
	}
	m.mu.Unlock()

	for _, hub := range empty {
		hub.Close()
	}
	if len(empty) > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", len(empty)))
	}
}

// Close shuts every hub, disconnecting all clients
func (m *HubManager) Close() {
	m.mu.Lock()
	hubs := m.hubs
	m.hubs = make(map[Topic]*Hub)
	m.mu.Unlock()

	for _, hub := range hubs {
		hub.Close()
	}
}
