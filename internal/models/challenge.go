package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryConversation   Category = "CONVERSATION"
	CategoryVideo          Category = "VIDEO"
	CategoryPublicSpeaking Category = "PUBLIC_SPEAKING"
	CategorySocial         Category = "SOCIAL"
	CategoryNetworking     Category = "NETWORKING"
	CategoryMindset        Category = "MINDSET"
)

var Categories = []Category{
	CategoryConversation,
	CategoryVideo,
	CategoryPublicSpeaking,
	CategorySocial,
	CategoryNetworking,
	CategoryMindset,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type Challenge struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Category    Category       `json:"category" gorm:"index;not null"`
	Difficulty  *Difficulty    `json:"difficulty"`
	Points      int            `json:"points" gorm:"default:0"`
	IsCustom    bool           `json:"isCustom" gorm:"default:false"`
	IsSeasonal  bool           `json:"isSeasonal" gorm:"default:false"`
	IsFavorite  bool           `json:"isFavorite" gorm:"default:false"`
	IsCompleted bool           `json:"isCompleted" gorm:"index;default:false"`
	StartDate   *time.Time     `json:"startDate"`
	EndDate     *time.Time     `json:"endDate"`
	CompletedAt *time.Time     `json:"completedAt"`
	Notes       *string        `json:"notes"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ActiveOn reports whether the challenge can be worked on at t. Only seasonal
// challenges have a window; the bounds are inclusive by calendar day.
func (c *Challenge) ActiveOn(t time.Time) bool {
	if !c.IsSeasonal {
		return true
	}
	day := truncateDay(t)
	if c.StartDate != nil && day.Before(truncateDay(*c.StartDate)) {
		return false
	}
	if c.EndDate != nil && day.After(truncateDay(*c.EndDate)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type CreateChallengeRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    Category    `json:"category"`
	Difficulty  *Difficulty `json:"difficulty"`
	Points      int         `json:"points"`
	IsSeasonal  bool        `json:"isSeasonal"`
	StartDate   *time.Time  `json:"startDate"`
	EndDate     *time.Time  `json:"endDate"`
	Notes       *string     `json:"notes"`
}

type UpdateChallengeRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Category    *Category   `json:"category"`
	Difficulty  *Difficulty `json:"difficulty"`
	Points      *int        `json:"points"`
	StartDate   *time.Time  `json:"startDate"`
	EndDate     *time.Time  `json:"endDate"`
	Notes       *string     `json:"notes"`
}

// ChallengeFilter narrows ListChallenges. Nil fields are ignored.
type ChallengeFilter struct {
	Category    *Category
	IsCompleted *bool
	IsFavorite  *bool
	IsCustom    *bool
	ActiveOn    *time.Time
}
