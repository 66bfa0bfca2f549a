package models

import (
	"time"

	"github.com/google/uuid"
)

// Like is unique per (challenge, user); the composite primary key enforces it.
type Like struct {
	ChallengeID uuid.UUID `json:"challengeId" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Like) TableName() string {
	return "community_likes"
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
