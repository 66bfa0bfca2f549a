package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityChallenge is a custom challenge a user published for others to adopt.
type CommunityChallenge struct {
	ID                uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	SourceChallengeID uuid.UUID   `json:"sourceChallengeId" gorm:"type:uuid;uniqueIndex"`
	AuthorID          uuid.UUID   `json:"authorId" gorm:"type:uuid;index;not null"`
	AuthorName        string      `json:"authorName"`
	Title             string      `json:"title" gorm:"not null"`
	Description       string      `json:"description"`
	Category          Category    `json:"category"`
	Difficulty        *Difficulty `json:"difficulty"`
	Points            int         `json:"points"`
	LikeCount         int         `json:"likeCount" gorm:"default:0"`
	CommentCount      int         `json:"commentCount" gorm:"default:0"`
	CreatedAt         time.Time   `json:"createdAt" gorm:"index"`
}

func (CommunityChallenge) TableName() string {
	return "community_challenges"
}

func (c *CommunityChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
