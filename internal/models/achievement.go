package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Condition string

const (
	ConditionCategoryCompletion   Condition = "category_completion"
	ConditionDifficultyCompletion Condition = "difficulty_completion"
	ConditionPointsTotal          Condition = "points_total"
	ConditionCreationCount        Condition = "creation_count"
	ConditionTotalCompletion      Condition = "total_completion"
	ConditionStreakDays           Condition = "streak_days"
)

type Achievement struct {
	ID           uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID   `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_achievement_user_key"`
	Key          string      `json:"key" gorm:"column:achievement_key;not null;uniqueIndex:idx_achievement_user_key"`
	Title        string      `json:"title" gorm:"not null"`
	Description  string      `json:"description"`
	Icon         string      `json:"icon"`
	RewardPoints int         `json:"rewardPoints" gorm:"default:0"`
	IsUnlocked   bool        `json:"isUnlocked" gorm:"default:false"`
	UnlockedAt   *time.Time  `json:"unlockedAt"`
	Condition    Condition   `json:"condition" gorm:"column:condition_type;index;not null"`
	Category     *Category   `json:"category,omitempty"`
	Difficulty   *Difficulty `json:"difficulty,omitempty"`
	Threshold    int         `json:"threshold" gorm:"not null"`
	Progress     int         `json:"progress" gorm:"default:0"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ProgressRatio is progress over threshold, capped at 1.
func (a *Achievement) ProgressRatio() float64 {
	if a.IsUnlocked || a.Threshold <= 0 {
		return 1
	}
	ratio := float64(a.Progress) / float64(a.Threshold)
	if ratio > 1 {
		return 1
	}
	return ratio
}
