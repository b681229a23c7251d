package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"note-weave/internal/services/auth"
	"note-weave/internal/services/notes"

	"github.com/oklog/ulid/v2"
)

// Authorizer decides whether a user may join a note's room.
type Authorizer interface {
	CanView(ctx context.Context, userID, noteID string) (bool, error)
}

// Mutator applies block mutations and broadcasts the result.
type Mutator interface {
	CreateBlock(ctx context.Context, userID string, origin ulid.ULID, req notes.CreateBlockRequest) (*notes.Block, error)
	UpdateBlock(ctx context.Context, userID string, origin ulid.ULID, req notes.UpdateBlockRequest) (*notes.Block, error)
	DeleteBlock(ctx context.Context, userID string, origin ulid.ULID, req notes.DeleteBlockRequest) error
	ReorderBlocks(ctx context.Context, userID string, origin ulid.ULID, req notes.ReorderBlocksRequest) ([]notes.BlockOrder, error)
}

// Session is one authenticated live connection. Its identity is fixed at
// construction. Handle must be called from a single goroutine.
type Session struct {
	id       ulid.ULID
	identity auth.Identity
	hub      *Hub
	gate     Authorizer
	blocks   Mutator
	now      func() time.Time
	log      *slog.Logger
}

// NewSession binds identity to a registered connection.
func NewSession(id ulid.ULID, identity auth.Identity, hub *Hub, gate Authorizer, blocks Mutator, log *slog.Logger) *Session {
	return &Session{
		id:       id,
		identity: identity,
		hub:      hub,
		gate:     gate,
		blocks:   blocks,
		now:      time.Now,
		log:      log.With("conn_id", id.String(), "user_id", identity.UserID),
	}
}

// ID is the connection id.
func (s *Session) ID() ulid.ULID {
	return s.id
}

// Identity is the authenticated user behind the connection.
func (s *Session) Identity() auth.Identity {
	return s.identity
}

// Handle decodes one client frame and dispatches it. Every failure is
// reported to this connection only; nothing here ends the session.
func (s *Session) Handle(ctx context.Context, frame []byte) {
	env, err := Decode(frame)
	if err != nil {
		s.fail("Invalid message")
		return
	}

	if known(env.Event) {
		s.hub.metrics.eventReceived(env.Event)
	}

	switch env.Event {
	case EventJoinNote:
		s.join(ctx, env.Data)
	case EventLeaveNote:
		s.leave(ctx, env.Data)
	case EventBlockCreate:
		var req notes.CreateBlockRequest
		if s.decode(env.Data, &req) {
			_, err := s.blocks.CreateBlock(ctx, s.identity.UserID, s.id, req)
			s.report(err, "Failed to create block")
		}
	case EventBlockUpdate:
		var req notes.UpdateBlockRequest
		if s.decode(env.Data, &req) {
			_, err := s.blocks.UpdateBlock(ctx, s.identity.UserID, s.id, req)
			s.report(err, "Failed to update block")
		}
	case EventBlockDelete:
		var req notes.DeleteBlockRequest
		if s.decode(env.Data, &req) {
			err := s.blocks.DeleteBlock(ctx, s.identity.UserID, s.id, req)
			s.report(err, "Failed to delete block")
		}
	case EventBlocksReorder:
		var req notes.ReorderBlocksRequest
		if s.decode(env.Data, &req) {
			_, err := s.blocks.ReorderBlocks(ctx, s.identity.UserID, s.id, req)
			s.report(err, "Failed to reorder blocks")
		}
	default:
		// forward compatible: newer clients may send events we do not know yet
		if s.log.Enabled(ctx, slog.LevelDebug) {
			s.log.Debug("ignoring unknown event", "event", env.Event)
		}
	}
}

// Close removes the connection from every room and tells each room the user left.
func (s *Session) Close(ctx context.Context) {
	now := s.now().UTC()
	for _, noteID := range s.hub.Unregister(s.id) {
		s.hub.Broadcast(ctx, notes.NoteEvent{
			NoteID:  noteID,
			Name:    notes.EventUserLeft,
			Payload: UserPresence{UserID: s.identity.UserID, Timestamp: now},
			Except:  s.id,
		})
	}
}

func (s *Session) join(ctx context.Context, data json.RawMessage) {
	var noteID string
	if !s.decode(data, &noteID) {
		return
	}
	if noteID == "" {
		s.fail("Invalid message")
		return
	}

	ok, err := s.gate.CanView(ctx, s.identity.UserID, noteID)
	if err != nil {
		s.log.Error("join check failed", "error", err, "note_id", noteID)
		s.fail("Failed to join note")
		return
	}
	if !ok {
		s.fail(notesMessage(notes.ErrAccessDenied))
		return
	}

	members, added := s.hub.Join(s.id, s.identity.UserID, noteID)
	if members == nil {
		return
	}
	s.hub.SendTo(s.id, notes.EventActiveUsers, members)
	if added {
		s.hub.Broadcast(ctx, notes.NoteEvent{
			NoteID:  noteID,
			Name:    notes.EventUserJoined,
			Payload: UserPresence{UserID: s.identity.UserID, Timestamp: s.now().UTC()},
			Except:  s.id,
		})
	}
}

func (s *Session) leave(ctx context.Context, data json.RawMessage) {
	var noteID string
	if !s.decode(data, &noteID) {
		return
	}
	if !s.hub.Leave(s.id, noteID) {
		return
	}
	s.hub.Broadcast(ctx, notes.NoteEvent{
		NoteID:  noteID,
		Name:    notes.EventUserLeft,
		Payload: UserPresence{UserID: s.identity.UserID, Timestamp: s.now().UTC()},
		Except:  s.id,
	})
}

// decode unmarshals data into dst, reporting a scoped error on failure.
func (s *Session) decode(data json.RawMessage, dst any) bool {
	if len(data) == 0 {
		s.fail("Invalid message")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.fail("Invalid message")
		return false
	}
	return true
}

func (s *Session) report(err error, fallback string) {
	if err == nil {
		return
	}
	msg := notesMessage(err)
	if msg == "" {
		msg = fallback
	}
	s.fail(msg)
}

func (s *Session) fail(message string) {
	s.hub.SendTo(s.id, notes.EventError, ErrorPayload{Message: message})
}

// notesMessage turns service errors into client messages. Unknown errors
// map to "" so the caller picks a generic message.
func notesMessage(err error) string {
	switch {
	case errors.Is(err, notes.ErrAccessDenied):
		return "Note access denied"
	case errors.Is(err, notes.ErrNoteNotFound):
		return "Note not found"
	case errors.Is(err, notes.ErrBlockNotFound):
		return "Block not found"
	case errors.Is(err, notes.ErrInvalidInput):
		return err.Error()
	default:
		return ""
	}
}

func known(event string) bool {
	switch event {
	case EventJoinNote, EventLeaveNote, EventBlockCreate, EventBlockUpdate, EventBlockDelete, EventBlocksReorder:
		return true
	}
	return false
}
