package notes

import (
	"note-weave/cmd/server/handlers/handlerutil"
	"note-weave/internal/services/notes"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

// REST writes have no originating connection, so every member of the
// note's room receives the resulting event.
var restOrigin ulid.ULID

// CreateBlock appends a block to a note
// @Summary Create a block
// @Tags blocks
// @Accept json
// @Produce json
// @Param noteId path string true "Note ID"
// @Param request body notes.CreateBlockRequest true "Create block request"
// @Success 201 {object} notes.Block
// @Failure 400 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Router /notes/{noteId}/blocks [post]
func (h *Handlers) CreateBlock(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "noteId", "CreateBlock", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.CreateBlockRequest
	if err := handlerutil.ParseBody(c, &req, "CreateBlock"); err != nil {
		return err
	}
	req.NoteID = noteID

	block, err := h.service.CreateBlock(c.UserContext(), id.UserID, restOrigin, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "CreateBlock", id.UserID, noteID)
	}

	return c.Status(fiber.StatusCreated).JSON(block)
}

// UpdateBlock replaces a block's type and content
// @Summary Update a block
// @Tags blocks
// @Accept json
// @Produce json
// @Param noteId path string true "Note ID"
// @Param blockId path string true "Block ID"
// @Param request body notes.UpdateBlockRequest true "Update block request"
// @Success 200 {object} notes.Block
// @Failure 400 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{noteId}/blocks/{blockId} [put]
func (h *Handlers) UpdateBlock(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "noteId", "UpdateBlock", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}
	blockID, err := handlerutil.Param(c, "blockId", "UpdateBlock", notes.ErrBlockNotFound)
	if err != nil {
		return err
	}

	var req notes.UpdateBlockRequest
	if err := handlerutil.ParseBody(c, &req, "UpdateBlock"); err != nil {
		return err
	}
	req.NoteID, req.BlockID = noteID, blockID

	block, err := h.service.UpdateBlock(c.UserContext(), id.UserID, restOrigin, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdateBlock", id.UserID, noteID)
	}

	return c.JSON(block)
}

// DeleteBlock removes a block
// @Summary Delete a block
// @Tags blocks
// @Produce json
// @Param noteId path string true "Note ID"
// @Param blockId path string true "Block ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{noteId}/blocks/{blockId} [delete]
func (h *Handlers) DeleteBlock(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "noteId", "DeleteBlock", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}
	blockID, err := handlerutil.Param(c, "blockId", "DeleteBlock", notes.ErrBlockNotFound)
	if err != nil {
		return err
	}

	req := notes.DeleteBlockRequest{NoteID: noteID, BlockID: blockID}
	if err := h.service.DeleteBlock(c.UserContext(), id.UserID, restOrigin, req); err != nil {
		return handlerutil.HandleServiceError(err, "DeleteBlock", id.UserID, noteID)
	}

	return c.JSON(fiber.Map{"message": "Block deleted successfully"})
}

// ReorderBlocks assigns new positions to a note's blocks in one transaction
// @Summary Reorder blocks
// @Tags blocks
// @Accept json
// @Produce json
// @Param noteId path string true "Note ID"
// @Param request body notes.ReorderBlocksRequest true "New positions"
// @Success 200 {array} notes.BlockOrder
// @Failure 400 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{noteId}/blocks/reorder [put]
func (h *Handlers) ReorderBlocks(c *fiber.Ctx) error {
	id, err := handlerutil.GetIdentity(c)
	if err != nil {
		return err
	}
	noteID, err := handlerutil.Param(c, "noteId", "ReorderBlocks", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.ReorderBlocksRequest
	if err := handlerutil.ParseBody(c, &req, "ReorderBlocks"); err != nil {
		return err
	}
	req.NoteID = noteID

	order, err := h.service.ReorderBlocks(c.UserContext(), id.UserID, restOrigin, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "ReorderBlocks", id.UserID, noteID)
	}

	return c.JSON(order)
}
