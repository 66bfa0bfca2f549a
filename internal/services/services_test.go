package services

import (
	"context"
	"testing"
	"time"

	"github.com/arnold/daily-challenges-api/internal/achievements"
	"github.com/arnold/daily-challenges-api/internal/database"
	"github.com/arnold/daily-challenges-api/internal/logging"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	repo       *repository.Repository
	seeder     *Seeder
	profiles   *ProfileService
	challenges *ChallengeService
	clock      *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logging.Discard()
	repo := repository.New(database.OpenTest(t), nil)
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	clock := testNow
	now := func() time.Time { return clock }
	seeder := NewSeeder(repo, catalog, log)
	profiles := NewProfileService(repo, seeder, log)
	engine := achievements.NewEngine(repo, log, achievements.WithClock(now))
	challenges := NewChallengeService(repo, profiles, engine, log)
	challenges.now = now

	return &testEnv{
		repo:       repo,
		seeder:     seeder,
		profiles:   profiles,
		challenges: challenges,
		clock:      &clock,
	}
}

func (e *testEnv) findChallenge(t *testing.T, userID uuid.UUID, title string) models.Challenge {
	t.Helper()
	for _, c := range e.challenges.List(context.Background(), userID, models.ChallengeFilter{}) {
		if c.Title == title {
			return c
		}
	}
	t.Fatalf("challenge %q not found", title)
	return models.Challenge{}
}

func (e *testEnv) achievement(t *testing.T, userID uuid.UUID, key string) models.Achievement {
	t.Helper()
	all, err := e.repo.AllAchievements(context.Background(), userID)
	require.NoError(t, err)
	for _, a := range all {
		if a.Key == key {
			return a
		}
	}
	t.Fatalf("achievement %s not found", key)
	return models.Achievement{}
}
