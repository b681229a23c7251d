package handlerutil

import (
	"errors"

	"note-weave/cmd/server/ctxkeys"
	"note-weave/cmd/server/handlers/httperr"
	"note-weave/internal/logger"
	"note-weave/internal/services/auth"
	"note-weave/internal/services/notes"
	"note-weave/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// GetIdentity extracts the authenticated identity from fiber context
func GetIdentity(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := c.Locals(ctxkeys.IdentityKey).(auth.Identity)
	if !ok || id.UserID == "" {
		logger.L().Error("identity not found in context", "handler", "GetIdentity", "path", c.Path())
		return auth.Identity{}, httperr.Fail(httperr.ErrUnauthorized)
	}
	return id, nil
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, v *validator.Validate, handlerName string) error {
	userID := userIDOf(c)

	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "user_id", userID, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := utils.ValidateCtx(c.UserContext(), v, req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "user_id", userID, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ParseBody parses the request body without validating it. Handlers use it
// when path parameters must be merged in before the service validates.
func ParseBody(c *fiber.Ctx, req any, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "user_id", userIDOf(c), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}
	return nil
}

// Param returns a required path parameter. A missing value is reported as notFound.
func Param(c *fiber.Ctx, name, handlerName string, notFound error) (string, error) {
	v := c.Params(name)
	if v == "" {
		logger.L().Warn("missing path parameter", "handler", handlerName, "param", name, "path", c.Path())
		return "", NotFoundError(notFound)
	}
	return v, nil
}

// NotFoundError renders err as a 404.
func NotFoundError(err error) error {
	return httperr.Fail(httperr.E{
		Status:  fiber.StatusNotFound,
		Message: err.Error(),
	})
}

// HandleServiceError maps notes and auth sentinels to HTTP errors.
// Unknown errors are logged and returned as a 500 carrying the service message.
func HandleServiceError(err error, handlerName, userID, noteID string) error {
	logFields := []any{"handler", handlerName, "user_id", userID, "error", err}
	if noteID != "" {
		logFields = append(logFields, "note_id", noteID)
	}

	status := StatusOf(err)
	switch {
	case status >= fiber.StatusInternalServerError:
		logger.L().Error("service operation failed", logFields...)
	case status == fiber.StatusForbidden || status == fiber.StatusNotFound:
		logger.L().Info("request denied", logFields...)
	default:
		logger.L().Warn("request rejected", logFields...)
	}

	return httperr.Fail(httperr.E{Status: status, Message: err.Error()})
}

// StatusOf returns the HTTP status for a service error.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, notes.ErrInvalidInput),
		errors.Is(err, notes.ErrDuplicateCollaborator),
		errors.Is(err, notes.ErrSelfCollaborator),
		errors.Is(err, auth.ErrRegistrationFailed):
		return fiber.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, notes.ErrAccessDenied),
		errors.Is(err, notes.ErrOwnerOnly):
		return fiber.StatusForbidden
	case errors.Is(err, notes.ErrNoteNotFound),
		errors.Is(err, notes.ErrBlockNotFound),
		errors.Is(err, notes.ErrCollaboratorNotFound),
		errors.Is(err, notes.ErrUserNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func userIDOf(c *fiber.Ctx) string {
	if id, ok := c.Locals(ctxkeys.IdentityKey).(auth.Identity); ok {
		return id.UserID
	}
	return ""
}
