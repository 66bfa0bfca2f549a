package handlers

import (
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// ListAchievements degrades to an empty list when the store cannot be read.
func (h *Handlers) ListAchievements(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if _, err := h.profiles.Get(c.UserContext(), userID); err != nil {
		return h.fail(c, err, "Profile not found")
	}

	list, err := h.repo.AllAchievements(c.UserContext(), userID)
	if err != nil {
		h.log.Error("list achievements failed", "user", userID, "error", err)
		list = []models.Achievement{}
	}
	return c.JSON(list)
}

// EvaluateAchievements re-derives every achievement for the caller.
func (h *Handlers) EvaluateAchievements(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if _, err := h.profiles.Get(c.UserContext(), userID); err != nil {
		return h.fail(c, err, "Profile not found")
	}

	unlocked, err := h.engine.EvaluateAll(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, "Achievement not found")
	}
	if _, err := h.profiles.RefreshCounters(c.UserContext(), userID); err != nil {
		h.log.Warn("refresh counters after evaluate failed", "user", userID, "error", err)
	}
	if unlocked == nil {
		unlocked = []models.Achievement{}
	}
	return c.JSON(fiber.Map{
		"unlocked": unlocked,
	})
}
