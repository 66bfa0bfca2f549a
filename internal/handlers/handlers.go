// Package handlers exposes the services over HTTP with fiber.
package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/arnold/daily-challenges-api/internal/achievements"
	"github.com/arnold/daily-challenges-api/internal/cloud"
	"github.com/arnold/daily-challenges-api/internal/community"
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/arnold/daily-challenges-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	repo       *repository.Repository
	profiles   *services.ProfileService
	challenges *services.ChallengeService
	engine     *achievements.Engine
	community  *community.Service
	inbox      *services.NotificationService
	hub        Subscriber
	log        *slog.Logger
	now        func() time.Time
}

type Deps struct {
	Repo       *repository.Repository
	Profiles   *services.ProfileService
	Challenges *services.ChallengeService
	Engine     *achievements.Engine
	Community  *community.Service
	Inbox      *services.NotificationService
	Hub        Subscriber
	Log        *slog.Logger
}

func New(d Deps) *Handlers {
	return &Handlers{
		repo:       d.Repo,
		profiles:   d.Profiles,
		challenges: d.Challenges,
		engine:     d.Engine,
		community:  d.Community,
		inbox:      d.Inbox,
		hub:        d.Hub,
		log:        d.Log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	return id, err == nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// fail maps service errors onto HTTP statuses.
func (h *Handlers) fail(c *fiber.Ctx, err error, notFoundMsg string) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, msg = fiber.StatusNotFound, notFoundMsg
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrOutsideSeason):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, community.ErrForbidden):
		status, msg = fiber.StatusForbidden, "You can only delete your own comments"
	case errors.Is(err, community.ErrAlreadyPublished):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, cloud.ErrNotInitialized):
		status, msg = fiber.StatusServiceUnavailable, "Community service unavailable"
	default:
		h.log.Error("request failed", "method", c.Method(), "path", c.Path(),
			"user", middleware.GetUserID(c), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}
