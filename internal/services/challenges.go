package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arnold/daily-challenges-api/internal/achievements"
	"github.com/arnold/daily-challenges-api/internal/metrics"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrOutsideSeason = errors.New("challenge is outside its seasonal window")
)

const maxChallengePoints = 1000

type ChallengeService struct {
	repo     *repository.Repository
	profiles *ProfileService
	engine   *achievements.Engine
	log      *slog.Logger
	now      func() time.Time
}

func NewChallengeService(repo *repository.Repository, profiles *ProfileService, engine *achievements.Engine, log *slog.Logger) *ChallengeService {
	return &ChallengeService{
		repo:     repo,
		profiles: profiles,
		engine:   engine,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ToggleResult is returned from ToggleCompletion.
type ToggleResult struct {
	Challenge    *models.Challenge    `json:"challenge"`
	PointsEarned int                  `json:"pointsEarned"`
	StreakDays   int                  `json:"streakDays"`
	Unlocked     []models.Achievement `json:"unlocked"`
}

// CreateResult carries achievements unlocked by creating a custom challenge.
type CreateResult struct {
	Challenge *models.Challenge    `json:"challenge"`
	Unlocked  []models.Achievement `json:"unlocked"`
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}
	return nil
}

func validatePoints(points int) error {
	if points < 0 || points > maxChallengePoints {
		return fmt.Errorf("%w: points must be between 0 and %d", ErrInvalidInput, maxChallengePoints)
	}
	return nil
}

// Create stores a user-authored challenge. Custom challenges count towards
// creation achievements, which are evaluated before returning.
func (s *ChallengeService) Create(ctx context.Context, userID uuid.UUID, req models.CreateChallengeRequest) (*CreateResult, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Category)
	}
	if req.Difficulty != nil && !req.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, *req.Difficulty)
	}
	if err := validatePoints(req.Points); err != nil {
		return nil, err
	}
	if err := validateWindow(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if _, err := s.profiles.Get(ctx, userID); err != nil {
		return nil, err
	}

	challenge := &models.Challenge{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Points:      req.Points,
		IsCustom:    true,
		IsSeasonal:  req.IsSeasonal,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Notes:       req.Notes,
	}
	if err := s.repo.UpsertChallenge(ctx, challenge); err != nil {
		return nil, err
	}

	unlocked, err := s.engine.OnChallengeCreated(ctx, challenge)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.RefreshCounters(ctx, userID); err != nil {
		s.log.Warn("refresh counters after create failed", "user", userID, "error", err)
	}
	return &CreateResult{Challenge: challenge, Unlocked: unlocked}, nil
}

// Adopt copies a challenge authored elsewhere into the user's list. The copy
// is not custom, so it does not count as a creation.
func (s *ChallengeService) Adopt(ctx context.Context, userID uuid.UUID, source models.Challenge) (*models.Challenge, error) {
	if _, err := s.profiles.Get(ctx, userID); err != nil {
		return nil, err
	}
	challenge := &models.Challenge{
		UserID:      userID,
		Title:       source.Title,
		Description: source.Description,
		Category:    source.Category,
		Difficulty:  source.Difficulty,
		Points:      source.Points,
	}
	if err := s.repo.UpsertChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	if _, err := s.profiles.RefreshCounters(ctx, userID); err != nil {
		s.log.Warn("refresh counters after adopt failed", "user", userID, "error", err)
	}
	return challenge, nil
}

func (s *ChallengeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Challenge, error) {
	return s.repo.GetChallenge(ctx, userID, id)
}

// List returns the user's challenges. Read failures are logged and reported
// as an empty list.
func (s *ChallengeService) List(ctx context.Context, userID uuid.UUID, filter models.ChallengeFilter) []models.Challenge {
	challenges, err := s.repo.ListChallenges(ctx, userID, filter)
	if err != nil {
		s.log.Error("list challenges failed", "user", userID, "error", err)
		return []models.Challenge{}
	}
	return challenges
}

func (s *ChallengeService) Update(ctx context.Context, userID, id uuid.UUID, req models.UpdateChallengeRequest) (*models.Challenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		challenge.Title = title
	}
	if req.Description != nil {
		challenge.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *req.Category)
		}
		challenge.Category = *req.Category
	}
	if req.Difficulty != nil {
		if !req.Difficulty.Valid() {
			return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, *req.Difficulty)
		}
		challenge.Difficulty = req.Difficulty
	}
	if req.Points != nil {
		if err := validatePoints(*req.Points); err != nil {
			return nil, err
		}
		challenge.Points = *req.Points
	}
	if req.StartDate != nil {
		challenge.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		challenge.EndDate = req.EndDate
	}
	if err := validateWindow(challenge.StartDate, challenge.EndDate); err != nil {
		return nil, err
	}
	if req.Notes != nil {
		challenge.Notes = req.Notes
	}

	if err := s.repo.UpsertChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// ToggleCompletion flips the completed flag. Completing runs the achievement
// engine synchronously; un-completing never re-locks anything.
func (s *ChallengeService) ToggleCompletion(ctx context.Context, userID, id uuid.UUID) (*ToggleResult, error) {
	challenge, err := s.repo.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if challenge.IsCompleted {
		challenge.IsCompleted = false
		challenge.CompletedAt = nil
	} else {
		if !challenge.ActiveOn(now) {
			return nil, ErrOutsideSeason
		}
		challenge.IsCompleted = true
		challenge.CompletedAt = &now
	}

	if err := s.repo.UpsertChallenge(ctx, challenge); err != nil {
		return nil, err
	}

	result := &ToggleResult{Challenge: challenge, Unlocked: []models.Achievement{}}
	if challenge.IsCompleted {
		metrics.ChallengesCompleted.WithLabelValues(string(challenge.Category)).Inc()

		profile, err := s.profiles.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		profile.TouchStreak(now)
		if err := s.repo.UpsertProfile(ctx, profile); err != nil {
			return nil, err
		}
		result.PointsEarned = challenge.Points
		result.StreakDays = profile.StreakDays

		unlocked, evalErr := s.engine.OnChallengeCompleted(ctx, challenge)
		if unlocked != nil {
			result.Unlocked = unlocked
		}
		if _, err := s.profiles.RefreshCounters(ctx, userID); err != nil {
			s.log.Warn("refresh counters after completion failed", "user", userID, "error", err)
		}
		if evalErr != nil {
			return result, evalErr
		}
		return result, nil
	}

	profile, err := s.profiles.RefreshCounters(ctx, userID)
	if err != nil {
		s.log.Warn("refresh counters after un-complete failed", "user", userID, "error", err)
	} else {
		result.StreakDays = profile.StreakDays
	}
	return result, nil
}

func (s *ChallengeService) ToggleFavorite(ctx context.Context, userID, id uuid.UUID) (*models.Challenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	challenge.IsFavorite = !challenge.IsFavorite
	if err := s.repo.UpsertChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *ChallengeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteChallenge(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.profiles.RefreshCounters(ctx, userID); err != nil {
		s.log.Warn("refresh counters after delete failed", "user", userID, "error", err)
	}
	return nil
}
