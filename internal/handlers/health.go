package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Health pings the database.
func (h *Handlers) Health(c *fiber.Ctx) error {
	sqlDB, err := h.repo.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		h.log.Error("health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
