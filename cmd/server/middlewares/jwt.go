package middlewares

import (
	"note-weave/cmd/server/ctxkeys"
	"note-weave/cmd/server/handlers/httperr"
	"note-weave/internal/logger"
	"note-weave/internal/services/auth"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWT returns a configured Fiber middleware that:
//
//   - reads the session token from the cookieName cookie only
//   - validates the HS256 signature with the same key the auth service signs with
//   - re-checks the parsed token with auth.Tokens.Verify, so REST and the
//     WebSocket upgrade accept exactly the same tokens
//   - stores the resulting auth.Identity in ctx.Locals(ctxkeys.IdentityKey)
//
// On any problem it bubbles up a 401 via the global httperr handler.
func JWT(tokens *auth.Tokens, cookieName string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: tokens.Secret()},
		TokenLookup: "cookie:" + cookieName,
		ContextKey:  ctxkeys.JWTTokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(ctxkeys.JWTTokenKey).(*jwt.Token)
			if !ok {
				return httperr.Fail(httperr.ErrUnauthorized)
			}
			// same verification the WebSocket upgrade runs
			id, err := tokens.Verify(token.Raw)
			if err != nil {
				logger.L().Warn("token rejected", "path", c.Path(), "error", err)
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			c.Locals(ctxkeys.IdentityKey, id)
			return c.Next()
		},

		// Override the default "unauthorized" JSON to match the project style
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.L().Debug("jwt rejected", "path", c.Path(), "error", err)
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}
