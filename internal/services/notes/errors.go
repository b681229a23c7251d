package notes

import (
	"errors"
	"fmt"
)

// Lookup and authorization failures. Messages are safe to show to clients.
var (
	// ErrNoteNotFound is returned when the note does not exist or the caller cannot see it.
	ErrNoteNotFound = errors.New("note not found")
	// ErrBlockNotFound is returned when a block id does not belong to the note.
	ErrBlockNotFound = errors.New("block not found")
	// ErrAccessDenied is returned when the caller lacks the capability an operation needs.
	ErrAccessDenied = errors.New("note access denied")
	// ErrOwnerOnly is returned for operations reserved to the note owner.
	ErrOwnerOnly = errors.New("only the note owner can do this")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOrderIndexTaken is returned when a reorder would put two blocks of
	// a note on the same index. It is a validation failure.
	ErrOrderIndexTaken = fmt.Errorf("%w: order index is held by another block", ErrInvalidInput)
)

// Collaborator grant failures.
var (
	// ErrDuplicateCollaborator is returned when (note, user) already has a grant.
	ErrDuplicateCollaborator = errors.New("user is already a collaborator")
	// ErrCollaboratorNotFound is returned when removing a grant that does not exist.
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	// ErrSelfCollaborator is returned when the owner tries to grant access to themselves.
	ErrSelfCollaborator = errors.New("the owner cannot be added as a collaborator")
	// ErrUserNotFound is returned when a grant targets an unknown email.
	ErrUserNotFound = errors.New("user not found")
)

// Persistence failures. The underlying cause is logged, never returned.
var (
	// ErrCreateNote is returned when note creation fails.
	ErrCreateNote = errors.New("failed to create note")
	// ErrUpdateNote is returned when note update fails.
	ErrUpdateNote = errors.New("failed to update note")
	// ErrDeleteNote is returned when note deletion fails.
	ErrDeleteNote = errors.New("failed to delete note")
	// ErrListNotes is returned when notes listing fails.
	ErrListNotes = errors.New("failed to list notes")
	// ErrLoadNote is returned when a note or its blocks cannot be read.
	ErrLoadNote = errors.New("failed to load note")
	// ErrShareNote is returned when toggling public sharing fails.
	ErrShareNote = errors.New("failed to update sharing")
	// ErrCreateBlock is returned when block creation fails.
	ErrCreateBlock = errors.New("failed to create block")
	// ErrUpdateBlock is returned when block update fails.
	ErrUpdateBlock = errors.New("failed to update block")
	// ErrDeleteBlock is returned when block deletion fails.
	ErrDeleteBlock = errors.New("failed to delete block")
	// ErrReorderBlocks is returned when a reorder batch cannot be applied.
	ErrReorderBlocks = errors.New("failed to reorder blocks")
	// ErrCollaborators is returned when grant persistence fails.
	ErrCollaborators = errors.New("failed to update collaborators")
)
