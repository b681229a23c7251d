package notes

import "github.com/gofiber/fiber/v2"

// Routes mounts the authenticated notes API on r, running mw (the session
// check) before every handler. The reorder route is registered before
// /:blockId so "reorder" is never taken for a block id.
func (h *Handlers) Routes(r fiber.Router, mw ...fiber.Handler) {
	add := func(method, path string, handler fiber.Handler) {
		chain := make([]fiber.Handler, 0, len(mw)+1)
		chain = append(chain, mw...)
		r.Add(method, path, append(chain, handler)...)
	}

	add(fiber.MethodPost, "/notes", h.Create)
	add(fiber.MethodGet, "/notes", h.List)
	add(fiber.MethodGet, "/notes/:id", h.Get)
	add(fiber.MethodPut, "/notes/:id", h.Update)
	add(fiber.MethodDelete, "/notes/:id", h.Delete)

	add(fiber.MethodPost, "/notes/:noteId/blocks", h.CreateBlock)
	add(fiber.MethodPut, "/notes/:noteId/blocks/reorder", h.ReorderBlocks)
	add(fiber.MethodPut, "/notes/:noteId/blocks/:blockId", h.UpdateBlock)
	add(fiber.MethodDelete, "/notes/:noteId/blocks/:blockId", h.DeleteBlock)

	add(fiber.MethodGet, "/notes/:noteId/collaborators", h.ListCollaborators)
	add(fiber.MethodPost, "/notes/:noteId/collaborators", h.AddCollaborator)
	add(fiber.MethodDelete, "/notes/:noteId/collaborators/:collaboratorId", h.RemoveCollaborator)
	add(fiber.MethodPatch, "/notes/:noteId/public", h.SetPublic)

	add(fiber.MethodGet, "/my-collaborations", h.MyCollaborations)
}
