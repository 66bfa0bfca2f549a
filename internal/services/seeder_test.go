package services

import (
	"context"
	"testing"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Len(t, catalog.Challenges, 10)
	assert.Len(t, catalog.Achievements, 13)
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "challenges: ["},
		{"unknown category", "challenges:\n  - title: x\n    category: DANCING\n"},
		{"duplicate key", "achievements:\n  - key: a\n    threshold: 1\n  - key: a\n    threshold: 2\n"},
		{"missing key", "achievements:\n  - title: nameless\n    threshold: 1\n"},
		{"zero threshold", "achievements:\n  - key: a\n    threshold: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestEnsureAchievements_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	n, err := env.seeder.EnsureAchievements(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	n, err = env.seeder.EnsureAchievements(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := env.repo.AllAchievements(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 13)
}

func TestSeedChallengesIfEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	n, err := env.seeder.SeedChallengesIfEmpty(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = env.seeder.SeedChallengesIfEmpty(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := env.repo.CountChallenges(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestSeedAll_OnlyEmptyProfiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seededUser := uuid.New()
	_, err := env.profiles.Get(ctx, seededUser)
	require.NoError(t, err)

	emptyUser := uuid.New()
	_, err = env.profiles.Get(ctx, emptyUser)
	require.NoError(t, err)
	for _, c := range env.challenges.List(ctx, emptyUser, models.ChallengeFilter{}) {
		require.NoError(t, env.repo.DeleteChallenge(ctx, emptyUser, c.ID))
	}

	seeded, err := env.seeder.SeedAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, seeded)

	count, err := env.repo.CountChallenges(ctx, emptyUser)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestSeedAll_StopsOnCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.profiles.Get(context.Background(), uuid.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = env.seeder.SeedAll(ctx)
	assert.Error(t, err)
}
