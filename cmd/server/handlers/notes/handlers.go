package notes

import (
	"context"

	"note-weave/cmd/server/handlers/handlerutil"
	"note-weave/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

// Service defines the interface for notes service
type Service interface {
	CreateNote(ctx context.Context, userID string, req notes.CreateNoteRequest) (*notes.Note, error)
	ListNotes(ctx context.Context, userID string) ([]*notes.Note, error)
	GetNote(ctx context.Context, userID, noteID string) (*notes.Note, error)
	UpdateNote(ctx context.Context, userID, noteID string, req notes.UpdateNoteRequest) (*notes.Note, error)
	DeleteNote(ctx context.Context, userID, noteID string) error
	SetPublic(ctx context.Context, userID, noteID string, req notes.ShareRequest) (*notes.ShareResponse, error)
	GetPublicNote(ctx context.Context, publicID string) (*notes.PublicNote, error)

	CreateBlock(ctx context.Context, userID string, origin ulid.ULID, req notes.CreateBlockRequest) (*notes.Block, error)
	UpdateBlock(ctx context.Context, userID string, origin ulid.ULID, req notes.UpdateBlockRequest) (*notes.Block, error)
	DeleteBlock(ctx context.Context, userID string, origin ulid.ULID, req notes.DeleteBlockRequest) error
	ReorderBlocks(ctx context.Context, userID string, origin ulid.ULID, req notes.ReorderBlocksRequest) ([]notes.BlockOrder, error)

	ListCollaborators(ctx context.Context, userID, noteID string) ([]*notes.Collaborator, error)
	AddCollaborator(ctx context.Context, userID, noteID string, req notes.AddCollaboratorRequest) (*notes.Collaborator, error)
	RemoveCollaborator(ctx context.Context, userID, noteID, collaboratorID string) error
	ListCollaborations(ctx context.Context, userID string) ([]*notes.Collaboration, error)
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	note, err := h.service.CreateNote(c.UserContext(), id.UserID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Create", id.UserID, "")
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

// List handles listing the caller's own notes
// @Summary List owned notes, most recently updated first
// @Tags notes
// @Produce json
// @Success 200 {array} notes.Note
// @Failure 401 {object} httperr.E
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}

	list, err := h.service.ListNotes(c.UserContext(), id.UserID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "List", id.UserID, "")
	}

	return c.JSON(list)
}

// Get returns a note with its ordered blocks
// @Summary Get a note
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "id", "Get", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.service.GetNote(c.UserContext(), id.UserID, noteID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Get", id.UserID, noteID)
	}

	return c.JSON(note)
}

// Update handles note title updates
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Update note request"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [put]
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "id", "Update", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	note, err := h.service.UpdateNote(c.UserContext(), id.UserID, noteID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Update", id.UserID, noteID)
	}

	return c.JSON(note)
}

// Delete handles note deletion
// @Summary Delete a note with its blocks and grants
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "id", "Delete", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	if err := h.service.DeleteNote(c.UserContext(), id.UserID, noteID); err != nil {
		return handlerutil.HandleServiceError(err, "Delete", id.UserID, noteID)
	}

	return c.JSON(fiber.Map{"message": "Note deleted successfully"})
}

// SetPublic toggles public sharing
// @Summary Share or unshare a note
// @Tags sharing
// @Accept json
// @Produce json
// @Param noteId path string true "Note ID"
// @Param request body notes.ShareRequest true "Share request"
// @Success 200 {object} notes.ShareResponse
// @Failure 400 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{noteId}/public [patch]
func (h *Handlers) SetPublic(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "noteId", "SetPublic", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.ShareRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SetPublic"); err != nil {
		return err
	}

	resp, err := h.service.SetPublic(c.UserContext(), id.UserID, noteID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "SetPublic", id.UserID, noteID)
	}

	return c.JSON(resp)
}

// GetPublic returns a shared note without authentication
// @Summary Read a publicly shared note
// @Tags sharing
// @Produce json
// @Param publicId path string true "Public ID"
// @Success 200 {object} notes.PublicNote
// @Failure 404 {object} httperr.E
// @Router /public/{publicId} [get]
func (h *Handlers) GetPublic(c *fiber.Ctx) error {
	publicID, err := handlerutil.Param(c, "publicId", "GetPublic", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.service.GetPublicNote(c.UserContext(), publicID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "GetPublic", "", "")
	}

	return c.JSON(note)
}
