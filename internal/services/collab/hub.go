package collab

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"note-weave/internal/logger"
	"note-weave/internal/services/notes"

	"github.com/oklog/ulid/v2"
)

// Subscriber is one live connection's outbox.
type Subscriber struct {
	ID     ulid.ULID
	UserID string
	Ch     chan []byte
	Done   chan struct{}
}

// ConnInfo holds connection metadata
type ConnInfo struct {
	ConnectedAt time.Time
	Subscriber  *Subscriber
}

// Hub owns connection outboxes and note rooms and routes events between them.
// It implements notes.Bus so REST writes reach live sessions.
type Hub struct {
	mu         sync.RWMutex
	conns      map[ulid.ULID]ConnInfo
	presence   *Registry
	bufferSize int
	dropped    uint64
	metrics    *Metrics
}

var _ notes.Bus = (*Hub)(nil)

// NewHub creates a new event hub with configurable buffer size
func NewHub(bufferSize int, metrics *Metrics) *Hub {
	return &Hub{
		conns:      make(map[ulid.ULID]ConnInfo),
		presence:   NewRegistry(),
		bufferSize: bufferSize,
		metrics:    metrics,
	}
}

// Presence exposes the registry for read-only queries.
func (h *Hub) Presence() *Registry {
	return h.presence
}

// Register creates the outbox for a new connection. The returned cancel
// is equivalent to Unregister and safe to call more than once.
func (h *Hub) Register(connID ulid.ULID, userID string) (*Subscriber, func() []string) {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("registering connection", "conn_id", connID.String(), "user_id", userID)
	}

	sub := &Subscriber{
		ID:     connID,
		UserID: userID,
		Ch:     make(chan []byte, h.bufferSize),
		Done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.conns[connID] = ConnInfo{ConnectedAt: time.Now(), Subscriber: sub}
	h.mu.Unlock()
	h.metrics.connOpened()

	return sub, func() []string { return h.Unregister(connID) }
}

// Unregister drops the connection from every room, closes its outbox and
// returns the note ids it was joined to.
func (h *Hub) Unregister(connID ulid.ULID) []string {
	log := logger.L()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("unregistering connection", "conn_id", connID.String())
	}

	// Holding the write lock waits out any in-flight delivery to this outbox.
	h.mu.Lock()
	info, ok := h.conns[connID]
	delete(h.conns, connID)
	noteIDs := h.presence.DisconnectAll(connID)
	h.mu.Unlock()

	if ok {
		close(info.Subscriber.Ch)
		close(info.Subscriber.Done)
		h.metrics.connClosed()
	}
	return noteIDs
}

// Join adds a registered connection to a note's room and returns the
// room snapshot. Callers must have checked view rights.
func (h *Hub) Join(connID ulid.ULID, userID, noteID string) ([]Presence, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.conns[connID]; !ok {
		return nil, false
	}
	return h.presence.Join(connID, userID, noteID)
}

// Leave removes a connection from a note's room.
func (h *Hub) Leave(connID ulid.ULID, noteID string) bool {
	_, ok := h.presence.Leave(connID, noteID)
	return ok
}

// Broadcast delivers ev to every connection in ev.NoteID's room except ev.Except.
func (h *Hub) Broadcast(ctx context.Context, ev notes.NoteEvent) {
	log := logger.L()
	frame, err := Encode(ev.Name, ev.Payload)
	if err != nil {
		log.Error("failed to encode event", "error", err, "event", ev.Name, "note_id", ev.NoteID)
		return
	}

	if log.Enabled(ctx, slog.LevelDebug) {
		log.Debug("broadcasting event", "note_id", ev.NoteID, "event", ev.Name)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.presence.each(ev.NoteID, func(conn ulid.ULID) {
		if conn == ev.Except {
			return
		}
		if info, ok := h.conns[conn]; ok {
			h.deliver(info.Subscriber, frame, ev.Name)
		}
	})
}

// SendTo delivers one event to a single connection.
func (h *Hub) SendTo(connID ulid.ULID, event string, payload any) {
	frame, err := Encode(event, payload)
	if err != nil {
		logger.L().Error("failed to encode event", "error", err, "event", event, "conn_id", connID.String())
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if info, ok := h.conns[connID]; ok {
		h.deliver(info.Subscriber, frame, event)
	}
}

func (h *Hub) deliver(sub *Subscriber, frame []byte, event string) {
	sendOrDrop(sub.Ch, frame, func() {
		atomic.AddUint64(&h.dropped, 1)
		h.metrics.eventDropped()
		logger.L().Warn("outbox full, dropping event", "conn_id", sub.ID.String(), "user_id", sub.UserID, "event", event)
	})
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan []byte, frame []byte, onDrop func()) {
	select {
	case ch <- frame:
	default:
		onDrop()
	}
}

// Stats returns current counters for observability / tests.
func (h *Hub) Stats() (connections int, dropped uint64) {
	h.mu.RLock()
	connections = len(h.conns)
	h.mu.RUnlock()
	return connections, atomic.LoadUint64(&h.dropped)
}
