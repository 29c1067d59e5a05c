package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/database"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
)

// HandleCheckHealth reports whether the store answers
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(c.UserContext()); err != nil {
		return apperror.Internal(err, "Database unavailable")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
