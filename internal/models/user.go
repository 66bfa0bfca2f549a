package models

import (
	"time"

	"github.com/google/uuid"
)

type UserProfile struct {
	UserID              uuid.UUID  `json:"userId" gorm:"type:uuid;primaryKey"`
	DisplayName         string     `json:"displayName"`
	PhotoURL            string     `json:"photoUrl"`
	TotalChallenges     int        `json:"totalChallenges" gorm:"default:0"`
	CompletedChallenges int        `json:"completedChallenges" gorm:"default:0"`
	PublishedChallenges int        `json:"publishedChallenges" gorm:"default:0"`
	TotalPoints         int        `json:"totalPoints" gorm:"default:0"`
	StreakDays          int        `json:"streakDays" gorm:"default:0"`
	LongestStreak       int        `json:"longestStreak" gorm:"default:0"`
	LastActiveAt        *time.Time `json:"lastActiveAt"`
	FCMToken            string     `json:"-" gorm:"column:fcm_token"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (p *UserProfile) Level() string {
	switch {
	case p.TotalPoints >= 2000:
		return "diamond"
	case p.TotalPoints >= 500:
		return "gold"
	case p.TotalPoints >= 100:
		return "silver"
	default:
		return "bronze"
	}
}

// TouchStreak records activity at now. Same day keeps the streak, the next
// calendar day extends it, anything longer starts over at one.
func (p *UserProfile) TouchStreak(now time.Time) {
	today := truncateDay(now)
	if p.LastActiveAt != nil {
		last := truncateDay(*p.LastActiveAt)
		daysSince := int(today.Sub(last).Hours() / 24)
		if daysSince == 1 {
			p.StreakDays++
		} else if daysSince > 1 || p.StreakDays == 0 {
			p.StreakDays = 1
		}
	} else {
		p.StreakDays = 1
	}
	if p.StreakDays > p.LongestStreak {
		p.LongestStreak = p.StreakDays
	}
	p.LastActiveAt = &today
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoUrl"`
}
