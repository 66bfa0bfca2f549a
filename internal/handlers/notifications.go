package handlers

import (
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns paginated notifications for the current user
func (h *Handlers) GetNotifications(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	page, err := h.inbox.List(c.UserContext(), userID, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return h.fail(c, err, "Notification not found")
	}
	return c.JSON(page)
}

// MarkNotificationRead marks a single notification as read
func (h *Handlers) MarkNotificationRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}

	if err := h.inbox.MarkRead(c.UserContext(), userID, id); err != nil {
		return h.fail(c, err, "Notification not found")
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead marks all notifications as read for the current user
func (h *Handlers) MarkAllRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	updated, err := h.inbox.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, "Notification not found")
	}
	return c.JSON(fiber.Map{"success": true, "updated": updated})
}
