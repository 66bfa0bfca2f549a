package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arnold/daily-challenges-api/internal/achievements"
	"github.com/arnold/daily-challenges-api/internal/cache"
	"github.com/arnold/daily-challenges-api/internal/community"
	"github.com/arnold/daily-challenges-api/internal/database"
	"github.com/arnold/daily-challenges-api/internal/handlers"
	"github.com/arnold/daily-challenges-api/internal/logging"
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/realtime"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/arnold/daily-challenges-api/internal/routes"
	"github.com/arnold/daily-challenges-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "handlers-test-secret"

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	log := logging.Discard()
	db := database.OpenTest(t)
	hub := realtime.NewHub(log)
	repo := repository.New(db, hub)
	catalog, err := services.DefaultCatalog()
	require.NoError(t, err)

	seeder := services.NewSeeder(repo, catalog, log)
	profiles := services.NewProfileService(repo, seeder, log)
	inbox := services.NewNotificationService(repo, nil, hub, log)
	engine := achievements.NewEngine(repo, log, achievements.WithNotifier(inbox))
	challenges := services.NewChallengeService(repo, profiles, engine, log)
	feed := community.NewService(community.NewGormStore(db), repo, profiles, challenges,
		cache.New(nil, 100, time.Minute), time.Minute, inbox, log)

	app := fiber.New()
	routes.Setup(app, handlers.New(handlers.Deps{
		Repo:       repo,
		Profiles:   profiles,
		Challenges: challenges,
		Engine:     engine,
		Community:  feed,
		Inbox:      inbox,
		Hub:        hub,
		Log:        log,
	}), secret)
	return app
}

func newClient(t *testing.T, app *fiber.App) *client {
	t.Helper()
	token, err := middleware.GenerateToken(secret, uuid.New(), time.Hour)
	require.NoError(t, err)
	return &client{t: t, app: app, token: token}
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	app := newApp(t)
	anon := &client{t: t, app: app}

	var health map[string]string
	assert.Equal(t, http.StatusOK, anon.do("GET", "/health", nil, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, http.StatusOK, anon.do("GET", "/metrics", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, anon.do("GET", "/api/me", nil, nil))
}

func TestMe(t *testing.T) {
	c := newClient(t, newApp(t))

	var me map[string]any
	require.Equal(t, http.StatusOK, c.do("GET", "/api/me", nil, &me))
	assert.EqualValues(t, 10, me["totalChallenges"])
	assert.Equal(t, "bronze", me["level"])

	name := "Jo"
	require.Equal(t, http.StatusOK, c.do("PUT", "/api/me", models.UpdateProfileRequest{DisplayName: &name}, &me))
	assert.Equal(t, "Jo", me["displayName"])

	var errBody map[string]string
	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/api/device-token", map[string]string{"token": ""}, &errBody))
	assert.NotEmpty(t, errBody["error"])
	assert.Equal(t, http.StatusOK, c.do("POST", "/api/device-token", map[string]string{"token": "abc"}, nil))
	assert.Equal(t, http.StatusOK, c.do("POST", "/api/me/refresh", nil, nil))
}

func TestChallengeLifecycle(t *testing.T) {
	c := newClient(t, newApp(t))

	var created services.CreateResult
	require.Equal(t, http.StatusCreated, c.do("POST", "/api/challenges", models.CreateChallengeRequest{
		Title:    "Say hi to a neighbour",
		Category: models.CategorySocial,
		Points:   10,
	}, &created))
	require.NotNil(t, created.Challenge)
	require.Len(t, created.Unlocked, 1)
	assert.Equal(t, "creator_1", created.Unlocked[0].Key)
	path := "/api/challenges/" + created.Challenge.ID.String()

	var list []models.Challenge
	require.Equal(t, http.StatusOK, c.do("GET", "/api/challenges?custom=true", nil, &list))
	assert.Len(t, list, 1)
	require.Equal(t, http.StatusOK, c.do("GET", "/api/challenges", nil, &list))
	assert.Len(t, list, 11)
	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/challenges?category=DANCING", nil, nil))

	var toggled services.ToggleResult
	require.Equal(t, http.StatusOK, c.do("POST", path+"/complete", nil, &toggled))
	assert.True(t, toggled.Challenge.IsCompleted)
	assert.Equal(t, 10, toggled.PointsEarned)
	assert.Equal(t, 1, toggled.StreakDays)

	var fav models.Challenge
	require.Equal(t, http.StatusOK, c.do("POST", path+"/favorite", nil, &fav))
	assert.True(t, fav.IsFavorite)

	title := "Say hi to two neighbours"
	var updated models.Challenge
	require.Equal(t, http.StatusOK, c.do("PUT", path, models.UpdateChallengeRequest{Title: &title}, &updated))
	assert.Equal(t, title, updated.Title)

	var dash handlers.Dashboard
	require.Equal(t, http.StatusOK, c.do("GET", "/api/dashboard", nil, &dash))
	assert.Len(t, dash.Favorites, 1)
	assert.Len(t, dash.Today, 10)
	assert.Equal(t, 13, dash.TotalAchievements)
	assert.Equal(t, 2, dash.UnlockedCount, "creator_1 and first_steps")

	assert.Equal(t, http.StatusOK, c.do("DELETE", path, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do("GET", path, nil, nil))
	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/challenges/not-a-uuid", nil, nil))
}

func TestChallengesAreScopedToOwner(t *testing.T) {
	app := newApp(t)
	owner := newClient(t, app)
	other := newClient(t, app)

	var created services.CreateResult
	require.Equal(t, http.StatusCreated, owner.do("POST", "/api/challenges", models.CreateChallengeRequest{
		Title: "Mine", Category: models.CategoryMindset,
	}, &created))

	path := "/api/challenges/" + created.Challenge.ID.String()
	assert.Equal(t, http.StatusNotFound, other.do("GET", path, nil, nil))
	assert.Equal(t, http.StatusNotFound, other.do("POST", path+"/complete", nil, nil))
	assert.Equal(t, http.StatusNotFound, other.do("DELETE", path, nil, nil))
}

func TestAchievements(t *testing.T) {
	c := newClient(t, newApp(t))

	var list []models.Achievement
	require.Equal(t, http.StatusOK, c.do("GET", "/api/achievements", nil, &list))
	assert.Len(t, list, 13)

	var evaluated struct {
		Unlocked []models.Achievement `json:"unlocked"`
	}
	require.Equal(t, http.StatusOK, c.do("POST", "/api/achievements/evaluate", nil, &evaluated))
	assert.Empty(t, evaluated.Unlocked)
}

func TestCommunityFlow(t *testing.T) {
	app := newApp(t)
	author := newClient(t, app)
	reader := newClient(t, app)

	var created services.CreateResult
	require.Equal(t, http.StatusCreated, author.do("POST", "/api/challenges", models.CreateChallengeRequest{
		Title: "Share a book you love", Category: models.CategoryConversation, Points: 10,
	}, &created))

	var published models.CommunityChallenge
	require.Equal(t, http.StatusCreated, author.do("POST", "/api/community",
		map[string]string{"challengeId": created.Challenge.ID.String()}, &published))
	assert.Equal(t, http.StatusConflict, author.do("POST", "/api/community",
		map[string]string{"challengeId": created.Challenge.ID.String()}, nil))
	assert.Equal(t, http.StatusNotFound, reader.do("POST", "/api/community",
		map[string]string{"challengeId": created.Challenge.ID.String()}, nil))

	var feed []models.CommunityChallenge
	require.Equal(t, http.StatusOK, reader.do("GET", "/api/community?limit=5", nil, &feed))
	require.Len(t, feed, 1)
	base := "/api/community/" + published.ID.String()

	var like models.LikeResult
	require.Equal(t, http.StatusOK, reader.do("POST", base+"/like", nil, &like))
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)

	var comment models.Comment
	require.Equal(t, http.StatusCreated, reader.do("POST", base+"/comments", models.CreateCommentRequest{Text: "Great idea"}, &comment))
	var comments []models.Comment
	require.Equal(t, http.StatusOK, author.do("GET", base+"/comments", nil, &comments))
	assert.Len(t, comments, 1)

	commentPath := base + "/comments/" + comment.ID.String()
	assert.Equal(t, http.StatusForbidden, author.do("DELETE", commentPath, nil, nil))
	assert.Equal(t, http.StatusOK, reader.do("DELETE", commentPath, nil, nil))

	var adopted models.Challenge
	require.Equal(t, http.StatusCreated, reader.do("POST", base+"/adopt", nil, &adopted))
	assert.Equal(t, "Share a book you love", adopted.Title)
	assert.False(t, adopted.IsCustom)

	assert.Equal(t, http.StatusNotFound, reader.do("GET", "/api/community/"+uuid.NewString(), nil, nil))
}

func TestNotifications(t *testing.T) {
	c := newClient(t, newApp(t))

	var created services.CreateResult
	require.Equal(t, http.StatusCreated, c.do("POST", "/api/challenges", models.CreateChallengeRequest{
		Title: "Note to self", Category: models.CategoryMindset,
	}, &created))

	var page models.NotificationPage
	require.Equal(t, http.StatusOK, c.do("GET", "/api/notifications", nil, &page))
	require.Len(t, page.Notifications, 1, "creator_1 unlock")
	assert.Equal(t, models.NotificationAchievementUnlocked, page.Notifications[0].Type)
	assert.EqualValues(t, 1, page.Unread)

	id := page.Notifications[0].ID.String()
	assert.Equal(t, http.StatusOK, c.do("PUT", "/api/notifications/"+id+"/read", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do("PUT", "/api/notifications/"+uuid.NewString()+"/read", nil, nil))
	assert.Equal(t, http.StatusOK, c.do("POST", "/api/notifications/read-all", nil, nil))

	require.Equal(t, http.StatusOK, c.do("GET", "/api/notifications?page=1&limit=10", nil, &page))
	assert.Zero(t, page.Unread)
	assert.EqualValues(t, 1, page.Total)
}
