package live

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"readdit/internal/logging"
	"readdit/pkg/models"
)

const writeWait = 5 * time.Second

// conn is one websocket client. Writes are serialized per connection
// since a work stream sends from several goroutines.
type conn struct {
	ws      *websocket.Conn
	session string

	mu sync.Mutex
}

func (c *conn) send(ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

type Hub struct {
	mu    sync.Mutex
	conns map[*conn]struct{}
}

type Stats struct {
	Connections int `json:"connections"`
	Sessions    int `json:"sessions"`
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*conn]struct{})}
}

func (h *Hub) add(c *conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	_ = c.ws.Close()
}

// targets snapshots the connections matching keep so that slow writes do
// not hold the hub lock.
func (h *Hub) targets(keep func(*conn) bool) []*conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) deliver(conns []*conn, ev Event) int {
	sent := 0
	for _, c := range conns {
		if err := c.send(ev); err != nil {
			logging.Debug().Err(err).Str("event", ev.Type).Msg("live send failed, dropping connection")
			h.remove(c)
			continue
		}
		sent++
	}
	return sent
}

// SendToSession pushes ev to every connection of a session and returns
// how many received it.
func (h *Hub) SendToSession(sessionID string, ev Event) int {
	if sessionID == "" {
		return 0
	}
	return h.deliver(h.targets(func(c *conn) bool { return c.session == sessionID }), ev)
}

func (h *Hub) Broadcast(ev Event) int {
	return h.deliver(h.targets(func(*conn) bool { return true }), ev)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	sessions := make(map[string]struct{})
	for c := range h.conns {
		if c.session != "" {
			sessions[c.session] = struct{}{}
		}
	}
	return Stats{Connections: len(h.conns), Sessions: len(sessions)}
}

// PrefsUpdated implements prefs.Notifier.
func (h *Hub) PrefsUpdated(sessionID string, p models.Preferences) {
	n := h.SendToSession(sessionID, NewEvent(EventPrefsUpdate, "", p))
	logging.Debug().Str("session", sessionID).Int("connections", n).Msg("preferences pushed")
}
