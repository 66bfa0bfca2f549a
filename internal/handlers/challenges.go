package handlers

import (
	"strconv"

	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func parseBoolQuery(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListChallenges supports ?category=, ?completed=, ?favorite=, ?custom= and
// ?active=true (seasonal window contains today).
func (h *Handlers) ListChallenges(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if _, err := h.profiles.Get(c.UserContext(), userID); err != nil {
		return h.fail(c, err, "Profile not found")
	}

	var filter models.ChallengeFilter
	if raw := c.Query("category"); raw != "" {
		category := models.Category(raw)
		if !category.Valid() {
			return badRequest(c, "Invalid category")
		}
		filter.Category = &category
	}

	var err error
	if filter.IsCompleted, err = parseBoolQuery(c, "completed"); err != nil {
		return badRequest(c, "Invalid completed filter")
	}
	if filter.IsFavorite, err = parseBoolQuery(c, "favorite"); err != nil {
		return badRequest(c, "Invalid favorite filter")
	}
	if filter.IsCustom, err = parseBoolQuery(c, "custom"); err != nil {
		return badRequest(c, "Invalid custom filter")
	}
	active, err := parseBoolQuery(c, "active")
	if err != nil {
		return badRequest(c, "Invalid active filter")
	}
	if active != nil && *active {
		now := h.now()
		filter.ActiveOn = &now
	}

	return c.JSON(h.challenges.List(c.UserContext(), userID, filter))
}

func (h *Handlers) CreateChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.challenges.Create(c.UserContext(), userID, req)
	if err != nil {
		return h.fail(c, err, "Challenge not found")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *Handlers) GetChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	challenge, err := h.challenges.Get(c.UserContext(), userID, id)
	if err != nil {
		return h.fail(c, err, "Challenge not found")
	}
	return c.JSON(challenge)
}

func (h *Handlers) UpdateChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	var req models.UpdateChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	challenge, err := h.challenges.Update(c.UserContext(), userID, id, req)
	if err != nil {
		return h.fail(c, err, "Challenge not found")
	}
	return c.JSON(challenge)
}

func (h *Handlers) DeleteChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	if err := h.challenges.Delete(c.UserContext(), userID, id); err != nil {
		return h.fail(c, err, "Challenge not found")
	}
	return c.JSON(fiber.Map{
		"message": "Challenge deleted",
	})
}

// ToggleChallengeCompletion completes or un-completes a challenge and
// reports the points, streak and achievements it produced.
func (h *Handlers) ToggleChallengeCompletion(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	result, err := h.challenges.ToggleCompletion(c.UserContext(), userID, id)
	if err != nil {
		return h.fail(c, err, "Challenge not found")
	}
	return c.JSON(result)
}

func (h *Handlers) ToggleChallengeFavorite(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid challenge ID")
	}

	challenge, err := h.challenges.ToggleFavorite(c.UserContext(), userID, id)
	if err != nil {
		return h.fail(c, err, "Challenge not found")
	}
	return c.JSON(challenge)
}
