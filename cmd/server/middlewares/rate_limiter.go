package middlewares

import (
	"strings"
	"time"

	"note-weave/cmd/server/handlers/httperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// BuildRateLimiter returns a Fiber handler that does *nothing* when max <= 0
// so callers don't need to wrap it in an if-statement.
//
//	max           requests per expiration window
//	expiration    bucket window
//	storage       shared counter store; nil keeps counters in process memory
//	skipPrefixes  requests whose path starts with any of these prefixes
//	              bypass the limiter
func BuildRateLimiter(max int, expiration time.Duration, storage fiber.Storage, skipPrefixes ...string) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	cfg := limiter.Config{
		Max:        max,
		Expiration: expiration,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return httperr.Fail(httperr.ErrTooManyRequests)
		},
	}

	if len(skipPrefixes) > 0 {
		cfg.Next = func(c *fiber.Ctx) bool {
			for _, p := range skipPrefixes {
				if strings.HasPrefix(c.Path(), p) {
					return true
				}
			}
			return false
		}
	}

	return limiter.New(cfg)
}
