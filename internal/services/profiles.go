package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/google/uuid"
)

type ProfileService struct {
	repo   *repository.Repository
	seeder *Seeder
	log    *slog.Logger
}

func NewProfileService(repo *repository.Repository, seeder *Seeder, log *slog.Logger) *ProfileService {
	return &ProfileService{repo: repo, seeder: seeder, log: log}
}

// Get returns the user's profile, creating it with the default challenges
// and achievements on first access.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	profile = &models.UserProfile{UserID: userID}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	if _, err := s.seeder.EnsureAchievements(ctx, userID); err != nil {
		return nil, fmt.Errorf("seed achievements: %w", err)
	}
	if _, err := s.seeder.SeedChallengesIfEmpty(ctx, userID); err != nil {
		return nil, fmt.Errorf("seed challenges: %w", err)
	}
	s.log.Info("profile created", "user", userID)
	return s.RefreshCounters(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if len(name) > 64 {
			return nil, fmt.Errorf("%w: display name too long", ErrInvalidInput)
		}
		profile.DisplayName = name
	}
	if req.PhotoURL != nil {
		profile.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// RefreshCounters re-derives the aggregate counters. Total points are the
// completed challenge points plus the rewards of unlocked achievements.
func (s *ProfileService) RefreshCounters(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountChallenges(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CompletedCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	points, err := s.repo.TotalPoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	rewards, err := s.repo.UnlockedRewardPoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.TotalChallenges = total
	profile.CompletedChallenges = completed
	profile.TotalPoints = points + rewards
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	profile.FCMToken = token
	return s.repo.UpsertProfile(ctx, profile)
}

func (s *ProfileService) AddPublished(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	profile.PublishedChallenges++
	return s.repo.UpsertProfile(ctx, profile)
}
