package handlers

import (
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func profileJSON(p *models.UserProfile) fiber.Map {
	return fiber.Map{
		"userId":              p.UserID,
		"displayName":         p.DisplayName,
		"photoUrl":            p.PhotoURL,
		"totalChallenges":     p.TotalChallenges,
		"completedChallenges": p.CompletedChallenges,
		"publishedChallenges": p.PublishedChallenges,
		"totalPoints":         p.TotalPoints,
		"streakDays":          p.StreakDays,
		"longestStreak":       p.LongestStreak,
		"lastActiveAt":        p.LastActiveAt,
		"level":               p.Level(),
		"createdAt":           p.CreatedAt,
		"updatedAt":           p.UpdatedAt,
	}
}

func (h *Handlers) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	profile, err := h.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, "Profile not found")
	}
	return c.JSON(profileJSON(profile))
}

func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	profile, err := h.profiles.Update(c.UserContext(), userID, req)
	if err != nil {
		return h.fail(c, err, "Profile not found")
	}
	return c.JSON(profileJSON(profile))
}

// RefreshProfile re-derives the aggregate counters from the challenge table.
func (h *Handlers) RefreshProfile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if _, err := h.profiles.Get(c.UserContext(), userID); err != nil {
		return h.fail(c, err, "Profile not found")
	}

	profile, err := h.profiles.RefreshCounters(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err, "Profile not found")
	}
	return c.JSON(profileJSON(profile))
}

// RegisterDeviceToken saves or updates the user's FCM device token
func (h *Handlers) RegisterDeviceToken(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.profiles.RegisterDeviceToken(c.UserContext(), userID, req.Token); err != nil {
		return h.fail(c, err, "Profile not found")
	}
	return c.JSON(fiber.Map{
		"message": "Device token registered",
	})
}
