package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileGet_SeedsNewUser(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	profile, err := env.profiles.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 10, profile.TotalChallenges)
	assert.Zero(t, profile.CompletedChallenges)
	assert.Zero(t, profile.TotalPoints)

	again, err := env.profiles.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 10, again.TotalChallenges)
}

func TestToggleCompletion_CompleteAndUndo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	_, err := env.profiles.Get(ctx, userID)
	require.NoError(t, err)

	wins := env.findChallenge(t, userID, "Write down three wins")
	result, err := env.challenges.ToggleCompletion(ctx, userID, wins.ID)
	require.NoError(t, err)
	assert.True(t, result.Challenge.IsCompleted)
	assert.Equal(t, 5, result.PointsEarned)
	assert.Equal(t, 1, result.StreakDays)
	require.Len(t, result.Unlocked, 1)
	assert.Equal(t, "first_steps", result.Unlocked[0].Key)

	profile, err := env.repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.CompletedChallenges)
	assert.Equal(t, 10, profile.TotalPoints, "challenge points plus first_steps reward")

	result, err = env.challenges.ToggleCompletion(ctx, userID, wins.ID)
	require.NoError(t, err)
	assert.False(t, result.Challenge.IsCompleted)
	assert.Nil(t, result.Challenge.CompletedAt)
	assert.Empty(t, result.Unlocked)

	assert.True(t, env.achievement(t, userID, "first_steps").IsUnlocked, "un-completing never re-locks")
	profile, err = env.repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, profile.CompletedChallenges)
	assert.Equal(t, 5, profile.TotalPoints)
}

func TestToggleCompletion_StreakAcrossDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	_, err := env.profiles.Get(ctx, userID)
	require.NoError(t, err)

	first := env.findChallenge(t, userID, "Compliment a stranger")
	_, err = env.challenges.ToggleCompletion(ctx, userID, first.ID)
	require.NoError(t, err)

	*env.clock = testNow.Add(24 * time.Hour)
	second := env.findChallenge(t, userID, "Record a one-minute intro")
	result, err := env.challenges.ToggleCompletion(ctx, userID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.StreakDays)

	*env.clock = testNow.Add(96 * time.Hour)
	third := env.findChallenge(t, userID, "Write down three wins")
	result, err = env.challenges.ToggleCompletion(ctx, userID, third.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StreakDays)

	profile, err := env.repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.LongestStreak)
}

func TestToggleCompletion_OutsideSeason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	start := testNow.AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 7)
	created, err := env.challenges.Create(ctx, userID, models.CreateChallengeRequest{
		Title:      "Winter market chat",
		Category:   models.CategorySocial,
		Points:     20,
		IsSeasonal: true,
		StartDate:  &start,
		EndDate:    &end,
	})
	require.NoError(t, err)

	_, err = env.challenges.ToggleCompletion(ctx, userID, created.Challenge.ID)
	assert.ErrorIs(t, err, ErrOutsideSeason)

	*env.clock = start.Add(3 * time.Hour)
	result, err := env.challenges.ToggleCompletion(ctx, userID, created.Challenge.ID)
	require.NoError(t, err)
	assert.True(t, result.Challenge.IsCompleted)
}

func TestToggleCompletion_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.challenges.ToggleCompletion(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate_UnlocksCreatorAndSurvivesDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := env.challenges.Create(ctx, userID, models.CreateChallengeRequest{
		Title:    "  Call a friend  ",
		Category: models.CategoryConversation,
		Points:   15,
	})
	require.NoError(t, err)
	assert.Equal(t, "Call a friend", created.Challenge.Title)
	assert.True(t, created.Challenge.IsCustom)
	require.Len(t, created.Unlocked, 1)
	assert.Equal(t, "creator_1", created.Unlocked[0].Key)

	require.NoError(t, env.challenges.Delete(ctx, userID, created.Challenge.ID))
	assert.True(t, env.achievement(t, userID, "creator_1").IsUnlocked)

	profile, err := env.repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, profile.TotalChallenges)

	err = env.challenges.Delete(ctx, userID, created.Challenge.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	start := testNow
	before := testNow.Add(-48 * time.Hour)
	tests := []struct {
		name string
		req  models.CreateChallengeRequest
	}{
		{"empty title", models.CreateChallengeRequest{Title: "  ", Category: models.CategorySocial}},
		{"unknown category", models.CreateChallengeRequest{Title: "x", Category: "DANCING"}},
		{"negative points", models.CreateChallengeRequest{Title: "x", Category: models.CategorySocial, Points: -1}},
		{"too many points", models.CreateChallengeRequest{Title: "x", Category: models.CategorySocial, Points: 5000}},
		{"window reversed", models.CreateChallengeRequest{Title: "x", Category: models.CategorySocial, StartDate: &start, EndDate: &before}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.challenges.Create(context.Background(), uuid.New(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpdateAndFavorite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	_, err := env.profiles.Get(ctx, userID)
	require.NoError(t, err)
	c := env.findChallenge(t, userID, "Invite someone for coffee")

	title := "Invite two people for coffee"
	points := 25
	updated, err := env.challenges.Update(ctx, userID, c.ID, models.UpdateChallengeRequest{Title: &title, Points: &points})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 25, updated.Points)

	empty := ""
	_, err = env.challenges.Update(ctx, userID, c.ID, models.UpdateChallengeRequest{Title: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	fav, err := env.challenges.ToggleFavorite(ctx, userID, c.ID)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)

	yes := true
	favs := env.challenges.List(ctx, userID, models.ChallengeFilter{IsFavorite: &yes})
	require.Len(t, favs, 1)
	assert.Equal(t, c.ID, favs[0].ID)
}

func TestAdopt_NotCustom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	adopted, err := env.challenges.Adopt(ctx, userID, models.Challenge{
		Title:    "Borrowed idea",
		Category: models.CategoryNetworking,
		Points:   12,
		IsCustom: true,
	})
	require.NoError(t, err)
	assert.False(t, adopted.IsCustom)
	assert.Equal(t, userID, adopted.UserID)
	assert.False(t, env.achievement(t, userID, "creator_1").IsUnlocked)
}

func TestProfileUpdateAndDeviceToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	name := " Sam "
	profile, err := env.profiles.Update(ctx, userID, models.UpdateProfileRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Sam", profile.DisplayName)

	tooLong := strings.Repeat("a", 65)
	_, err = env.profiles.Update(ctx, userID, models.UpdateProfileRequest{DisplayName: &tooLong})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, env.profiles.RegisterDeviceToken(ctx, userID, "  "), ErrInvalidInput)
	require.NoError(t, env.profiles.RegisterDeviceToken(ctx, userID, "device-1"))
	stored, err := env.repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "device-1", stored.FCMToken)

	require.NoError(t, env.profiles.AddPublished(ctx, userID))
	stored, err = env.repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.PublishedChallenges)
}
