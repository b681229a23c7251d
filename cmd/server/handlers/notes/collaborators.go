package notes

import (
	"note-weave/cmd/server/handlers/handlerutil"
	"note-weave/internal/services/notes"

	"github.com/gofiber/fiber/v2"
)

// ListCollaborators returns a note's grants
// @Summary List collaborators
// @Tags collaborators
// @Produce json
// @Param noteId path string true "Note ID"
// @Success 200 {array} notes.Collaborator
// @Failure 404 {object} httperr.E
// @Router /notes/{noteId}/collaborators [get]
func (h *Handlers) ListCollaborators(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "noteId", "ListCollaborators", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	list, err := h.service.ListCollaborators(c.UserContext(), id.UserID, noteID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "ListCollaborators", id.UserID, noteID)
	}

	return c.JSON(list)
}

// AddCollaborator grants a registered user access to a note
// @Summary Add a collaborator
// @Tags collaborators
// @Accept json
// @Produce json
// @Param noteId path string true "Note ID"
// @Param request body notes.AddCollaboratorRequest true "Grant"
// @Success 201 {object} notes.Collaborator
// @Failure 400 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{noteId}/collaborators [post]
func (h *Handlers) AddCollaborator(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "noteId", "AddCollaborator", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.AddCollaboratorRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "AddCollaborator"); err != nil {
		return err
	}

	grant, err := h.service.AddCollaborator(c.UserContext(), id.UserID, noteID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "AddCollaborator", id.UserID, noteID)
	}

	return c.Status(fiber.StatusCreated).JSON(grant)
}

// RemoveCollaborator revokes a grant
// @Summary Remove a collaborator
// @Tags collaborators
// @Produce json
// @Param noteId path string true "Note ID"
// @Param collaboratorId path string true "Collaborator ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{noteId}/collaborators/{collaboratorId} [delete]
func (h *Handlers) RemoveCollaborator(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "noteId", "RemoveCollaborator", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}
	collaboratorID, err := handlerutil.Param(c, "collaboratorId", "RemoveCollaborator", notes.ErrCollaboratorNotFound)
	if err != nil {
		return err
	}

	if err := h.service.RemoveCollaborator(c.UserContext(), id.UserID, noteID, collaboratorID); err != nil {
		return handlerutil.HandleServiceError(err, "RemoveCollaborator", id.UserID, noteID)
	}

	return c.JSON(fiber.Map{"message": "Collaborator removed successfully"})
}

// MyCollaborations lists notes shared with the caller
// @Summary Notes shared with me
// @Tags collaborators
// @Produce json
// @Success 200 {array} notes.Collaboration
// @Failure 401 {object} httperr.E
// @Router /my-collaborations [get]
func (h *Handlers) MyCollaborations(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}

	list, err := h.service.ListCollaborations(c.UserContext(), id.UserID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "MyCollaborations", id.UserID, "")
	}

	return c.JSON(list)
}
