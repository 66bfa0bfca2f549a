package services

import (
	"context"
	"testing"

	"github.com/arnold/daily-challenges-api/internal/logging"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedJob_Run(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	_, err := env.profiles.Get(ctx, userID)
	require.NoError(t, err)

	job := NewSeedJob(env.seeder, logging.Discard())
	require.NoError(t, job.Run(ctx))

	count, err := env.repo.CountChallenges(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestSeedJob_Start(t *testing.T) {
	env := newTestEnv(t)
	job := NewSeedJob(env.seeder, logging.Discard())
	runner := cron.New()

	id, err := job.Start(runner, "@daily")
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Len(t, runner.Entries(), 1)

	_, err = job.Start(runner, "not a schedule")
	assert.Error(t, err)
}
