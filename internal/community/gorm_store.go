package community

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) Publish(ctx context.Context, challenge *models.CommunityChallenge) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.CommunityChallenge{}).
			Where("source_challenge_id = ?", challenge.SourceChallengeID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check published: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyPublished
		}
		if err := tx.Create(challenge).Error; err != nil {
			return fmt.Errorf("publish challenge: %w", err)
		}
		return nil
	})
}

func (s *GormStore) List(ctx context.Context, limit, offset int) ([]models.CommunityChallenge, error) {
	var list []models.CommunityChallenge
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list community challenges: %w", err)
	}
	return list, nil
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*models.CommunityChallenge, error) {
	var challenge models.CommunityChallenge
	if err := s.db.WithContext(ctx).First(&challenge, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &challenge, nil
}

func (s *GormStore) AddComment(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.CommunityChallenge{}, "id = ?", comment.ChallengeID).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		return tx.Model(&models.CommunityChallenge{}).
			Where("id = ?", comment.ChallengeID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

func (s *GormStore) ListComments(ctx context.Context, challengeID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.Get(ctx, challengeID); err != nil {
		return nil, err
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *GormStore) DeleteComment(ctx context.Context, challengeID, commentID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, "id = ? AND challenge_id = ?", commentID, challengeID).Error; err != nil {
			return notFound(err)
		}
		if comment.UserID != userID {
			return ErrForbidden
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return tx.Model(&models.CommunityChallenge{}).
			Where("id = ? AND comment_count > 0", challengeID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
}

func (s *GormStore) ToggleLike(ctx context.Context, challengeID, userID uuid.UUID) (*models.LikeResult, error) {
	result := &models.LikeResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.CommunityChallenge{}, "id = ?", challengeID).Error; err != nil {
			return notFound(err)
		}

		removed := tx.Where("challenge_id = ? AND user_id = ?", challengeID, userID).Delete(&models.Like{})
		if removed.Error != nil {
			return fmt.Errorf("remove like: %w", removed.Error)
		}

		delta := "like_count - 1"
		if removed.RowsAffected == 0 {
			if err := tx.Create(&models.Like{ChallengeID: challengeID, UserID: userID}).Error; err != nil {
				return fmt.Errorf("add like: %w", err)
			}
			delta = "like_count + 1"
			result.Liked = true
		}
		if err := tx.Model(&models.CommunityChallenge{}).
			Where("id = ?", challengeID).
			UpdateColumn("like_count", gorm.Expr(delta)).Error; err != nil {
			return fmt.Errorf("update like count: %w", err)
		}

		var updated models.CommunityChallenge
		if err := tx.Select("like_count").First(&updated, "id = ?", challengeID).Error; err != nil {
			return err
		}
		result.LikeCount = updated.LikeCount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
