package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"note-weave/internal/services/auth"
	"note-weave/internal/utils"
	"note-weave/internal/utils/sanitize"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service handles notes business logic. Block mutations live in blocks.go
// and are shared by the REST handlers and live collaboration sessions.
type Service struct {
	repo          Repository
	users         UserFinder
	bus           Bus
	gate          Gate
	validate      *validator.Validate
	publicBaseURL string
	now           func() time.Time
	log           *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithPublicBaseURL sets the frontend origin used to build share links.
func WithPublicBaseURL(u string) Option {
	return func(s *Service) { s.publicBaseURL = strings.TrimRight(u, "/") }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new notes service. A nil bus disables broadcasting.
func NewService(repo Repository, users UserFinder, bus Bus, log *slog.Logger, opts ...Option) *Service {
	if bus == nil {
		bus = NopBus{}
	}
	s := &Service{
		repo:     repo,
		users:    users,
		bus:      bus,
		gate:     NewGate(repo),
		validate: utils.NewValidator(),
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Gate exposes the capability checks used by the service.
func (s *Service) Gate() Gate {
	return s.gate
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title string `json:"title" validate:"required,max=200" example:"Sprint planning"`
}

// UpdateNoteRequest represents a note update request
type UpdateNoteRequest struct {
	Title string `json:"title" validate:"required,max=200" example:"Sprint planning (v2)"`
}

// ShareRequest toggles public sharing.
type ShareRequest struct {
	IsPublic *bool `json:"isPublic" validate:"required" example:"true"`
}

// ShareResponse describes the sharing state after a toggle.
type ShareResponse struct {
	IsPublic   bool    `json:"isPublic" example:"true"`
	PublicID   *string `json:"publicId" example:"0e6f7c1d-2a3b-4c5d-8e9f-a0b1c2d3e4f5"`
	PublicLink *string `json:"publicLink" example:"http://localhost:5173/public/0e6f7c1d-2a3b-4c5d-8e9f-a0b1c2d3e4f5"`
}

// AddCollaboratorRequest grants a user access to a note.
type AddCollaboratorRequest struct {
	Email      string `json:"email" validate:"required,email" example:"friend@example.com"`
	Permission string `json:"permission" validate:"required" example:"edit"`
}

// CreateNote creates an empty note owned by userID.
func (s *Service) CreateNote(ctx context.Context, userID string, req CreateNoteRequest) (*Note, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	note := &Note{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		Title:     sanitize.Title(req.Title),
		CreatedAt: now,
		UpdatedAt: now,
		Blocks:    []*Block{},
	}

	if err := s.repo.CreateNote(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", userID)
		return nil, ErrCreateNote
	}
	return note, nil
}

// ListNotes returns the notes userID owns, most recently updated first, without blocks.
func (s *Service) ListNotes(ctx context.Context, userID string) ([]*Note, error) {
	notes, err := s.repo.ListOwnedNotes(ctx, userID)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", userID)
		return nil, ErrListNotes
	}
	if notes == nil {
		notes = []*Note{}
	}
	return notes, nil
}

// GetNote returns a note with its ordered blocks. Requires viewer rights.
func (s *Service) GetNote(ctx context.Context, userID, noteID string) (*Note, error) {
	note, err := s.repo.FindNoteForUser(ctx, noteID, userID)
	if err != nil {
		return nil, s.lookupErr(err, "note_id", noteID)
	}

	blocks, err := s.repo.ListBlocks(ctx, noteID)
	if err != nil {
		s.log.Error(ErrLoadNote.Error(), "error", err, "note_id", noteID)
		return nil, ErrLoadNote
	}
	if blocks == nil {
		blocks = []*Block{}
	}
	note.Blocks = blocks
	return note, nil
}

// UpdateNote renames a note. Requires editor rights.
func (s *Service) UpdateNote(ctx context.Context, userID, noteID string, req UpdateNoteRequest) (*Note, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	if err := s.requireEditor(ctx, userID, noteID); err != nil {
		return nil, err
	}

	note, err := s.repo.UpdateNoteTitle(ctx, noteID, sanitize.Title(req.Title), s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "note_id", noteID)
		return nil, ErrUpdateNote
	}
	return note, nil
}

// DeleteNote removes a note with its blocks and grants. Owner only.
func (s *Service) DeleteNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.requireOwner(ctx, userID, noteID); err != nil {
		return err
	}

	if err := s.repo.DeleteNote(ctx, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "note_id", noteID)
		return ErrDeleteNote
	}
	return nil
}

// SetPublic toggles public sharing. Sharing mints a fresh opaque public id;
// unsharing clears it so old links stop working. Owner only.
func (s *Service) SetPublic(ctx context.Context, userID, noteID string, req ShareRequest) (*ShareResponse, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	current, err := s.requireOwner(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	var publicID *string
	if *req.IsPublic {
		if current.IsPublic && current.PublicID != nil {
			publicID = current.PublicID
		} else {
			id := uuid.NewString()
			publicID = &id
		}
	}

	note, err := s.repo.SetPublic(ctx, noteID, publicID, s.now().UTC())
	if err != nil {
		s.log.Error(ErrShareNote.Error(), "error", err, "note_id", noteID)
		return nil, ErrShareNote
	}

	resp := &ShareResponse{IsPublic: note.IsPublic, PublicID: note.PublicID}
	if note.PublicID != nil {
		link := s.publicBaseURL + "/public/" + *note.PublicID
		resp.PublicLink = &link
	}
	return resp, nil
}

// GetPublicNote serves a shared note without authentication.
func (s *Service) GetPublicNote(ctx context.Context, publicID string) (*PublicNote, error) {
	if _, err := uuid.Parse(publicID); err != nil {
		return nil, ErrNoteNotFound
	}

	note, err := s.repo.FindPublicNote(ctx, publicID)
	if err != nil {
		return nil, s.lookupErr(err, "public_id", publicID)
	}
	if note.Blocks == nil {
		note.Blocks = []*Block{}
	}
	return note, nil
}

// ListCollaborators lists the grants on a note. Requires viewer rights.
func (s *Service) ListCollaborators(ctx context.Context, userID, noteID string) ([]*Collaborator, error) {
	if _, err := s.repo.FindNoteForUser(ctx, noteID, userID); err != nil {
		return nil, s.lookupErr(err, "note_id", noteID)
	}

	collabs, err := s.repo.ListCollaborators(ctx, noteID)
	if err != nil {
		s.log.Error(ErrCollaborators.Error(), "error", err, "note_id", noteID)
		return nil, ErrCollaborators
	}
	if collabs == nil {
		collabs = []*Collaborator{}
	}
	return collabs, nil
}

// AddCollaborator grants the user behind req.Email access to a note. Owner only.
func (s *Service) AddCollaborator(ctx context.Context, userID, noteID string, req AddCollaboratorRequest) (*Collaborator, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	perm := ParsePermission(req.Permission)
	switch perm {
	case PermissionView, PermissionEdit, PermissionComment:
	default:
		return nil, fmt.Errorf("%w: unknown permission %q", ErrInvalidInput, req.Permission)
	}

	if _, err := s.requireOwner(ctx, userID, noteID); err != nil {
		return nil, err
	}

	target, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error(ErrCollaborators.Error(), "error", err, "note_id", noteID)
		return nil, ErrCollaborators
	}
	if target.ID == userID {
		return nil, ErrSelfCollaborator
	}

	c := &Collaborator{
		ID:         uuid.NewString(),
		NoteID:     noteID,
		UserID:     target.ID,
		Email:      target.Email,
		Permission: perm,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.AddCollaborator(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateCollaborator) {
			return nil, ErrDuplicateCollaborator
		}
		s.log.Error(ErrCollaborators.Error(), "error", err, "note_id", noteID)
		return nil, ErrCollaborators
	}
	return c, nil
}

// RemoveCollaborator revokes a grant. Owner only.
func (s *Service) RemoveCollaborator(ctx context.Context, userID, noteID, collaboratorID string) error {
	if _, err := s.requireOwner(ctx, userID, noteID); err != nil {
		return err
	}

	if err := s.repo.RemoveCollaborator(ctx, noteID, collaboratorID); err != nil {
		if errors.Is(err, ErrCollaboratorNotFound) {
			return ErrCollaboratorNotFound
		}
		s.log.Error(ErrCollaborators.Error(), "error", err, "note_id", noteID)
		return ErrCollaborators
	}
	return nil
}

// ListCollaborations returns the notes other users shared with userID.
func (s *Service) ListCollaborations(ctx context.Context, userID string) ([]*Collaboration, error) {
	out, err := s.repo.ListCollaborations(ctx, userID)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", userID)
		return nil, ErrListNotes
	}
	if out == nil {
		out = []*Collaboration{}
	}
	return out, nil
}

// check runs struct validation and folds failures into ErrInvalidInput.
func (s *Service) check(ctx context.Context, req any) error {
	if err := utils.ValidateCtx(ctx, s.validate, req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// requireEditor maps "not an editor" to ErrAccessDenied without revealing whether the note exists.
func (s *Service) requireEditor(ctx context.Context, userID, noteID string) error {
	ok, err := s.gate.CanEdit(ctx, userID, noteID)
	if err != nil {
		s.log.Error("edit check failed", "error", err, "note_id", noteID, "user_id", userID)
		return ErrLoadNote
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// requireOwner returns the note when userID owns it. Viewers get
// ErrOwnerOnly, everyone else ErrNoteNotFound.
func (s *Service) requireOwner(ctx context.Context, userID, noteID string) (*Note, error) {
	note, err := s.repo.FindNoteForUser(ctx, noteID, userID)
	if err != nil {
		return nil, s.lookupErr(err, "note_id", noteID)
	}
	if note.OwnerID != userID {
		return nil, ErrOwnerOnly
	}
	return note, nil
}

func (s *Service) lookupErr(err error, key, id string) error {
	if errors.Is(err, ErrNoteNotFound) {
		return ErrNoteNotFound
	}
	s.log.Error(ErrLoadNote.Error(), "error", err, key, id)
	return ErrLoadNote
}
