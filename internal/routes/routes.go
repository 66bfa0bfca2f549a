package routes

import (
	"github.com/arnold/daily-challenges-api/internal/handlers"
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(app *fiber.App, h *handlers.Handlers, jwtSecret string) {
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	protected := api.Group("/", middleware.Protected(jwtSecret))

	protected.Get("/me", h.GetMe)
	protected.Put("/me", h.UpdateProfile)
	protected.Post("/me/refresh", h.RefreshProfile)

	// Device token for push notifications
	protected.Post("/device-token", h.RegisterDeviceToken)

	protected.Get("/dashboard", h.GetDashboard)

	challenges := protected.Group("/challenges")
	challenges.Get("/", h.ListChallenges)
	challenges.Post("/", h.CreateChallenge)
	challenges.Get("/:id", h.GetChallenge)
	challenges.Put("/:id", h.UpdateChallenge)
	challenges.Delete("/:id", h.DeleteChallenge)
	challenges.Post("/:id/complete", h.ToggleChallengeCompletion)
	challenges.Post("/:id/favorite", h.ToggleChallengeFavorite)

	achievements := protected.Group("/achievements")
	achievements.Get("/", h.ListAchievements)
	achievements.Post("/evaluate", h.EvaluateAchievements)

	community := protected.Group("/community")
	community.Get("/", h.GetFeed)
	community.Post("/", h.PublishChallenge)
	community.Get("/:id", h.GetCommunityChallenge)
	community.Post("/:id/adopt", h.AdoptChallenge)
	community.Post("/:id/like", h.ToggleLike)
	community.Get("/:id/comments", h.GetComments)
	community.Post("/:id/comments", h.AddComment)
	community.Delete("/:id/comments/:commentId", h.DeleteComment)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.GetNotifications)
	notifications.Put("/:id/read", h.MarkNotificationRead)
	notifications.Post("/read-all", h.MarkAllRead)

	// WebSocket for the caller's realtime events
	app.Use("/ws", middleware.WebSocketUpgrade(jwtSecret))
	app.Get("/ws", websocket.New(h.HandleWebSocket))
}
