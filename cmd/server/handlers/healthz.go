package handlers

import (
	"context"
	"time"

	"note-weave/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// HealthzTimeout bounds the store ping.
const HealthzTimeout = 5 * time.Second

// PingFunc checks that a backing store answers.
type PingFunc func(ctx context.Context) error

// Healthz returns the health of the server and its store.
// @Summary Health check
// @Description Check if the server and its store are healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /healthz [get]
func Healthz(ping PingFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status": "down",
				"error":  "database not initialized",
			})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), HealthzTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			logger.L().Warn("health check failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status": "down",
				"error":  err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"status": "ok",
		})
	}
}
