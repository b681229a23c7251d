package handlers

import (
	"context"

	"note-weave/cmd/server/handlers/handlerutil"
	"note-weave/internal/services/auth"

	"github.com/gofiber/fiber/v2"
)

// UserLookup resolves the user behind a verified identity.
type UserLookup interface {
	Me(ctx context.Context, id auth.Identity) (*auth.User, error)
}

// Me returns the current user information.
// A token whose user has since been removed is treated as unauthenticated.
// @Summary Get current user
// @Description Get current user information
// @Tags auth
// @Produce json
// @Success 200 {object} auth.Identity
// @Failure 401 {object} httperr.E
// @Router /me [get]
func Me(users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := handlerutil.GetIdentity(c)
		if err != nil {
			return err
		}

		user, err := users.Me(c.UserContext(), id)
		if err != nil {
			if handlerutil.StatusOf(err) == fiber.StatusNotFound {
				return handlerutil.HandleServiceError(auth.ErrInvalidToken, "Me", id.UserID, "")
			}
			return handlerutil.HandleServiceError(err, "Me", id.UserID, "")
		}

		return c.JSON(auth.Identity{UserID: user.ID, Email: user.Email})
	}
}
