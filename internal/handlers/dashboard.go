package handlers

import (
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Dashboard is the snapshot the home screen renders in one request.
type Dashboard struct {
	Profile           fiber.Map            `json:"profile"`
	Today             []models.Challenge   `json:"today"`
	Favorites         []models.Challenge   `json:"favorites"`
	Achievements      []models.Achievement `json:"achievements"`
	UnlockedCount     int                  `json:"unlockedCount"`
	TotalAchievements int                  `json:"totalAchievements"`
	Progress          float64              `json:"progress"`
}

func (h *Handlers) GetDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.GetUserID(c)

	profile, err := h.profiles.Get(ctx, userID)
	if err != nil {
		return h.fail(c, err, "Profile not found")
	}

	now := h.now()
	notDone := false
	yes := true
	today := h.challenges.List(ctx, userID, models.ChallengeFilter{IsCompleted: &notDone, ActiveOn: &now})
	favorites := h.challenges.List(ctx, userID, models.ChallengeFilter{IsFavorite: &yes})

	list, err := h.repo.AllAchievements(ctx, userID)
	if err != nil {
		h.log.Error("dashboard achievements failed", "user", userID, "error", err)
		list = []models.Achievement{}
	}

	snapshot := Dashboard{
		Profile:           profileJSON(profile),
		Today:             today,
		Favorites:         favorites,
		Achievements:      list,
		TotalAchievements: len(list),
	}
	for _, a := range list {
		if a.IsUnlocked {
			snapshot.UnlockedCount++
		}
	}
	if snapshot.TotalAchievements > 0 {
		snapshot.Progress = float64(snapshot.UnlockedCount) / float64(snapshot.TotalAchievements)
	}
	return c.JSON(snapshot)
}
