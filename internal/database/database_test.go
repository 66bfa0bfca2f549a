package database

import (
	"testing"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesTables(t *testing.T) {
	db := OpenTest(t)

	for _, table := range []string{
		"user_profiles",
		"challenges",
		"achievements",
		"community_challenges",
		"community_comments",
		"community_likes",
		"notifications",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestAchievementKeyUniquePerUser(t *testing.T) {
	db := OpenTest(t)
	userID := uuid.New()

	first := models.Achievement{UserID: userID, Key: "first_steps", Title: "First Steps", Condition: models.ConditionTotalCompletion, Threshold: 1}
	require.NoError(t, db.Create(&first).Error)

	dup := models.Achievement{UserID: userID, Key: "first_steps", Title: "Again", Condition: models.ConditionTotalCompletion, Threshold: 1}
	assert.Error(t, db.Create(&dup).Error)

	other := models.Achievement{UserID: uuid.New(), Key: "first_steps", Title: "First Steps", Condition: models.ConditionTotalCompletion, Threshold: 1}
	assert.NoError(t, db.Create(&other).Error)
}
