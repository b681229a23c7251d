package notes

import (
	"context"
	"time"

	"note-weave/internal/services/auth"
)

// Repository is the durable store behind notes, blocks and grants.
//
// Lookups that match nothing return ErrNoteNotFound, ErrBlockNotFound or
// ErrCollaboratorNotFound. AddCollaborator returns ErrDuplicateCollaborator
// on a (note, user) conflict.
type Repository interface {
	// FindNoteForUser returns the note if userID owns it or holds any grant on it.
	FindNoteForUser(ctx context.Context, noteID, userID string) (*Note, error)
	// FindNoteForEditor returns the note if userID owns it or holds an EDIT grant.
	FindNoteForEditor(ctx context.Context, noteID, userID string) (*Note, error)

	CreateNote(ctx context.Context, n *Note) error
	ListOwnedNotes(ctx context.Context, ownerID string) ([]*Note, error)
	UpdateNoteTitle(ctx context.Context, noteID, title string, at time.Time) (*Note, error)
	// DeleteNote removes the note together with its blocks and grants.
	DeleteNote(ctx context.Context, noteID string) error
	TouchNote(ctx context.Context, noteID string, at time.Time) error
	// SetPublic stores publicID (nil to unshare) and derives is_public from it.
	SetPublic(ctx context.Context, noteID string, publicID *string, at time.Time) (*Note, error)
	FindPublicNote(ctx context.Context, publicID string) (*PublicNote, error)

	// ListBlocks returns the note's blocks ordered by order index.
	ListBlocks(ctx context.Context, noteID string) ([]*Block, error)
	// MaxOrderIndex returns the highest order index in the note, or -1 when it has no blocks.
	MaxOrderIndex(ctx context.Context, noteID string) (int, error)
	CreateBlock(ctx context.Context, b *Block) error
	UpdateBlock(ctx context.Context, noteID, blockID string, typ BlockType, content string, at time.Time) (*Block, error)
	DeleteBlock(ctx context.Context, noteID, blockID string) error
	// ReorderBlocks applies every assignment or none. The batch is checked
	// with CheckReorder against the note's current positions: an id outside
	// the note yields ErrBlockNotFound, an index held by another block
	// ErrOrderIndexTaken, and nothing is written.
	ReorderBlocks(ctx context.Context, noteID string, order []BlockOrder, at time.Time) error

	AddCollaborator(ctx context.Context, c *Collaborator) error
	RemoveCollaborator(ctx context.Context, noteID, collaboratorID string) error
	ListCollaborators(ctx context.Context, noteID string) ([]*Collaborator, error)
	ListCollaborations(ctx context.Context, userID string) ([]*Collaboration, error)
}

// UserFinder resolves grant targets by email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}

// NopBus discards every event.
type NopBus struct{}

// Broadcast implements Bus.
func (NopBus) Broadcast(context.Context, NoteEvent) {}
