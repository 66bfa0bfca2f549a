// Package community holds published challenges with their comments and likes.
// The relational store is the default; Firestore can back it instead when
// cloud services are configured.
package community

import (
	"context"
	"errors"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrNotFound         = repository.ErrNotFound
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyPublished = errors.New("challenge already published")
)

type Store interface {
	Publish(ctx context.Context, challenge *models.CommunityChallenge) error
	List(ctx context.Context, limit, offset int) ([]models.CommunityChallenge, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CommunityChallenge, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, challengeID uuid.UUID) ([]models.Comment, error)
	// DeleteComment removes a comment. Only its author may do so.
	DeleteComment(ctx context.Context, challengeID, commentID, userID uuid.UUID) error
	ToggleLike(ctx context.Context, challengeID, userID uuid.UUID) (*models.LikeResult, error)
}
