package sse

import (
	"net/http"
	"sync"
	"time"
)

// keepaliveInterval keeps proxies from closing an idle stream
const keepaliveInterval = 30 * time.Second

// Client is one connected stream. Events wait in a mailbox holding at most
// one frame per event name, so a slow reader never blocks the publisher and
// never misses the latest state.
type Client struct {
	id          string
	connectedAt time.Time

	mu      sync.Mutex
	pending []frame
	wake    chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(id string) *Client {
	return &Client{
		id:          id,
		connectedAt: time.Now(),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

// deliver queues f and reports whether it replaced an unsent frame of the
// same name. Order of first arrival is kept.
func (c *Client) deliver(f frame) (merged bool) {
	c.mu.Lock()
	for i := range c.pending {
		if c.pending[i].name == f.name {
			c.pending[i] = f
			merged = true
			break
		}
	}
	if !merged {
		c.pending = append(c.pending, f)
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return merged
}

// take empties the mailbox
func (c *Client) take() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := c.pending
	c.pending = nil
	return frames
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed when the hub drops the client
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// ServeSSE streams the topic's events to w until the request ends or the
// hub closes.
func ServeSSE(w http.ResponseWriter, r *http.Request, manager *HubManager, topic Topic, clientID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	hub, client := manager.Subscribe(topic, clientID)
	defer hub.Unregister(client)

	if _, err := w.Write(encodeFrame("connected", `{"topic":"`+string(topic)+`"}`)); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-client.wake:
			for _, f := range client.take() {
				if _, err := w.Write(f.payload); err != nil {
					return
				}
			}
			flusher.Flush()

		case <-keepalive.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-client.done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
