package collab

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// Presence is one connection's membership in one note's room.
type Presence struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
	NoteID       string `json:"noteId"`
}

type member struct {
	conn   ulid.ULID
	userID string
}

// Registry tracks which connections are in which note rooms. It is the
// room membership the hub delivers to, so presence and delivery cannot
// drift apart. Entries are keyed by connection: one user with two tabs
// has two entries.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string][]member
	byConn map[ulid.ULID][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string][]member),
		byConn: make(map[ulid.ULID][]string),
	}
}

// Join adds conn to the note's room and returns the members afterwards,
// in join order. added is false when conn was already present.
func (r *Registry) Join(conn ulid.ULID, userID, noteID string) (members []Presence, added bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inRoomLocked(conn, noteID) {
		r.rooms[noteID] = append(r.rooms[noteID], member{conn: conn, userID: userID})
		r.byConn[conn] = append(r.byConn[conn], noteID)
		added = true
	}
	return r.snapshotLocked(noteID), added
}

// Leave removes conn from one room. It reports whether conn was there.
func (r *Registry) Leave(conn ulid.ULID, noteID string) (userID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok = r.removeLocked(conn, noteID)
	if ok {
		r.byConn[conn] = without(r.byConn[conn], noteID)
		if len(r.byConn[conn]) == 0 {
			delete(r.byConn, conn)
		}
	}
	return userID, ok
}

// DisconnectAll removes conn from every room and returns the affected
// note ids in the order they were joined.
func (r *Registry) DisconnectAll(conn ulid.ULID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	noteIDs := r.byConn[conn]
	delete(r.byConn, conn)
	for _, noteID := range noteIDs {
		r.removeLocked(conn, noteID)
	}
	return noteIDs
}

// MembersOf returns a snapshot of the room in join order.
func (r *Registry) MembersOf(noteID string) []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(noteID)
}

// Rooms returns the number of non-empty rooms.
func (r *Registry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// each calls fn for every connection in the room while holding the read lock.
// fn must not block or call back into the registry.
func (r *Registry) each(noteID string, fn func(conn ulid.ULID)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.rooms[noteID] {
		fn(m.conn)
	}
}

func (r *Registry) inRoomLocked(conn ulid.ULID, noteID string) bool {
	for _, id := range r.byConn[conn] {
		if id == noteID {
			return true
		}
	}
	return false
}

func (r *Registry) removeLocked(conn ulid.ULID, noteID string) (string, bool) {
	room := r.rooms[noteID]
	for i, m := range room {
		if m.conn != conn {
			continue
		}
		room = append(room[:i:i], room[i+1:]...)
		if len(room) == 0 {
			delete(r.rooms, noteID)
		} else {
			r.rooms[noteID] = room
		}
		return m.userID, true
	}
	return "", false
}

func (r *Registry) snapshotLocked(noteID string) []Presence {
	room := r.rooms[noteID]
	out := make([]Presence, 0, len(room))
	for _, m := range room {
		out = append(out, Presence{UserID: m.userID, ConnectionID: m.conn.String(), NoteID: noteID})
	}
	return out
}

func without(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
