package handlers

import (
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetFeed returns published challenges, newest first (?limit=&offset=).
func (h *Handlers) GetFeed(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)
	return c.JSON(h.community.Feed(c.UserContext(), limit, offset))
}

func (h *Handlers) PublishChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req struct {
		ChallengeID string `json:"challengeId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	challengeID, err := uuid.Parse(req.ChallengeID)
	if err != nil {
		return badRequest(c, "Invalid challenge ID")
	}

	published, err := h.community.Publish(c.UserContext(), userID, challengeID)
	if err != nil {
		return h.fail(c, err, "Challenge not found")
	}
	return c.Status(fiber.StatusCreated).JSON(published)
}

func (h *Handlers) GetCommunityChallenge(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid community challenge ID")
	}

	published, err := h.community.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Community challenge not found")
	}
	return c.JSON(published)
}

func (h *Handlers) AdoptChallenge(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid community challenge ID")
	}

	challenge, err := h.community.Adopt(c.UserContext(), userID, id)
	if err != nil {
		return h.fail(c, err, "Community challenge not found")
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

func (h *Handlers) ToggleLike(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid community challenge ID")
	}

	result, err := h.community.ToggleLike(c.UserContext(), userID, id)
	if err != nil {
		return h.fail(c, err, "Community challenge not found")
	}
	return c.JSON(result)
}

// AddComment adds a comment to a community challenge
func (h *Handlers) AddComment(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid community challenge ID")
	}

	var req models.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := h.community.AddComment(c.UserContext(), userID, id, req.Text)
	if err != nil {
		return h.fail(c, err, "Community challenge not found")
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *Handlers) GetComments(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid community challenge ID")
	}

	comments, err := h.community.Comments(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Community challenge not found")
	}
	return c.JSON(comments)
}

// DeleteComment deletes a comment (only by the comment author)
func (h *Handlers) DeleteComment(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid community challenge ID")
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return badRequest(c, "Invalid comment ID")
	}

	if err := h.community.DeleteComment(c.UserContext(), userID, id, commentID); err != nil {
		return h.fail(c, err, "Comment not found")
	}
	return c.JSON(fiber.Map{
		"message": "Comment deleted",
	})
}
