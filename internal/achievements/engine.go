// Package achievements turns challenge activity into achievement progress.
//
// Progress is always derived from aggregate queries over the user's
// challenges; nothing is incremented in place. An achievement moves from
// locked to unlocked once and is never touched again afterwards.
package achievements

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arnold/daily-challenges-api/internal/metrics"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/google/uuid"
)

// Store is the slice of the repository the engine reads and writes.
type Store interface {
	CompletedCount(ctx context.Context, userID uuid.UUID) (int, error)
	CompletedCountByCategory(ctx context.Context, userID uuid.UUID, category models.Category) (int, error)
	CompletedCountByDifficulty(ctx context.Context, userID uuid.UUID, difficulty models.Difficulty) (int, error)
	TotalPoints(ctx context.Context, userID uuid.UUID) (int, error)
	CustomChallengeCount(ctx context.Context, userID uuid.UUID) (int, error)
	AchievementsByCondition(ctx context.Context, userID uuid.UUID, condition models.Condition) ([]models.Achievement, error)
	UpsertAchievement(ctx context.Context, achievement *models.Achievement) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

// Notifier is told about every unlock after it has been stored.
type Notifier interface {
	AchievementUnlocked(ctx context.Context, achievement models.Achievement)
}

// Point tiers. These three records unlock on the fixed boundaries below even
// when their stored threshold says otherwise.
const (
	TierKeyBronze = "points_50"
	TierKeySilver = "points_100"
	TierKeyGold   = "points_200"
)

var PointTiers = map[string]int{
	TierKeyBronze: 50,
	TierKeySilver: 100,
	TierKeyGold:   200,
}

type Engine struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateCategoryCompletion sets progress on every category_completion
// achievement filtered to category to the number of completed challenges in it.
func (e *Engine) EvaluateCategoryCompletion(ctx context.Context, userID uuid.UUID, category models.Category) ([]models.Achievement, error) {
	return e.evaluate(ctx, userID, models.ConditionCategoryCompletion, func(a *models.Achievement) bool {
		return a.Category != nil && *a.Category == category
	}, func() (int, error) {
		return e.store.CompletedCountByCategory(ctx, userID, category)
	}, thresholdReached)
}

func (e *Engine) EvaluateDifficultyCompletion(ctx context.Context, userID uuid.UUID, difficulty models.Difficulty) ([]models.Achievement, error) {
	return e.evaluate(ctx, userID, models.ConditionDifficultyCompletion, func(a *models.Achievement) bool {
		return a.Difficulty != nil && *a.Difficulty == difficulty
	}, func() (int, error) {
		return e.store.CompletedCountByDifficulty(ctx, userID, difficulty)
	}, thresholdReached)
}

// EvaluatePointsTotal compares the sum of completed challenge points against
// the point achievements. Tier records use PointTiers, the rest their threshold.
// A tier record with a different stored threshold is rewritten to its tier
// boundary, so an unlocked record never has progress below its threshold.
func (e *Engine) EvaluatePointsTotal(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	return e.evaluate(ctx, userID, models.ConditionPointsTotal, nil, func() (int, error) {
		return e.store.TotalPoints(ctx, userID)
	}, func(a *models.Achievement, total int) bool {
		if tier, ok := PointTiers[a.Key]; ok {
			if a.Threshold != tier {
				e.log.Warn("point tier threshold mismatch; resetting to tier boundary",
					"user", a.UserID, "key", a.Key, "stored", a.Threshold, "tier", tier)
				a.Threshold = tier
			}
			return total >= tier
		}
		return total >= a.Threshold
	})
}

func (e *Engine) EvaluateCreationCount(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	return e.evaluate(ctx, userID, models.ConditionCreationCount, nil, func() (int, error) {
		return e.store.CustomChallengeCount(ctx, userID)
	}, thresholdReached)
}

func (e *Engine) EvaluateTotalCompletion(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	return e.evaluate(ctx, userID, models.ConditionTotalCompletion, nil, func() (int, error) {
		return e.store.CompletedCount(ctx, userID)
	}, thresholdReached)
}

func (e *Engine) EvaluateStreak(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	return e.evaluate(ctx, userID, models.ConditionStreakDays, nil, func() (int, error) {
		profile, err := e.store.GetProfile(ctx, userID)
		if err != nil {
			return 0, err
		}
		return profile.StreakDays, nil
	}, thresholdReached)
}

// OnChallengeCompleted runs every evaluation a completion can affect.
func (e *Engine) OnChallengeCompleted(ctx context.Context, challenge *models.Challenge) ([]models.Achievement, error) {
	steps := []func() ([]models.Achievement, error){
		func() ([]models.Achievement, error) {
			return e.EvaluateCategoryCompletion(ctx, challenge.UserID, challenge.Category)
		},
	}
	if challenge.Difficulty != nil {
		steps = append(steps, func() ([]models.Achievement, error) {
			return e.EvaluateDifficultyCompletion(ctx, challenge.UserID, *challenge.Difficulty)
		})
	}
	steps = append(steps,
		func() ([]models.Achievement, error) { return e.EvaluatePointsTotal(ctx, challenge.UserID) },
		func() ([]models.Achievement, error) { return e.EvaluateTotalCompletion(ctx, challenge.UserID) },
		func() ([]models.Achievement, error) { return e.EvaluateStreak(ctx, challenge.UserID) },
	)
	return runSteps(steps)
}

// OnChallengeCreated only matters for custom challenges.
func (e *Engine) OnChallengeCreated(ctx context.Context, challenge *models.Challenge) ([]models.Achievement, error) {
	if !challenge.IsCustom {
		return nil, nil
	}
	return e.EvaluateCreationCount(ctx, challenge.UserID)
}

// EvaluateAll re-derives every achievement for the user.
func (e *Engine) EvaluateAll(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	var steps []func() ([]models.Achievement, error)
	for _, category := range models.Categories {
		category := category
		steps = append(steps, func() ([]models.Achievement, error) {
			return e.EvaluateCategoryCompletion(ctx, userID, category)
		})
	}
	for _, difficulty := range models.Difficulties {
		difficulty := difficulty
		steps = append(steps, func() ([]models.Achievement, error) {
			return e.EvaluateDifficultyCompletion(ctx, userID, difficulty)
		})
	}
	steps = append(steps,
		func() ([]models.Achievement, error) { return e.EvaluatePointsTotal(ctx, userID) },
		func() ([]models.Achievement, error) { return e.EvaluateCreationCount(ctx, userID) },
		func() ([]models.Achievement, error) { return e.EvaluateTotalCompletion(ctx, userID) },
		func() ([]models.Achievement, error) { return e.EvaluateStreak(ctx, userID) },
	)
	return runSteps(steps)
}

func runSteps(steps []func() ([]models.Achievement, error)) ([]models.Achievement, error) {
	var unlocked []models.Achievement
	for _, step := range steps {
		got, err := step()
		unlocked = append(unlocked, got...)
		if err != nil {
			return unlocked, err
		}
	}
	return unlocked, nil
}

func thresholdReached(a *models.Achievement, value int) bool {
	return value >= a.Threshold
}

// evaluate is the shared loop: read the aggregate, then for each locked
// achievement of the condition (optionally filtered) write the new progress
// and unlock on first crossing.
func (e *Engine) evaluate(
	ctx context.Context,
	userID uuid.UUID,
	condition models.Condition,
	match func(*models.Achievement) bool,
	observe func() (int, error),
	reached func(*models.Achievement, int) bool,
) ([]models.Achievement, error) {
	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.WithLabelValues(string(condition)).Observe(time.Since(start).Seconds())
	}()

	candidates, err := e.store.AchievementsByCondition(ctx, userID, condition)
	if err != nil {
		e.log.Error("load achievements failed", "user", userID, "condition", condition, "error", err)
		metrics.EvaluationErrors.WithLabelValues(string(condition), "read").Inc()
		return nil, nil
	}

	var locked []*models.Achievement
	for i := range candidates {
		a := &candidates[i]
		if a.IsUnlocked {
			continue
		}
		if match != nil && !match(a) {
			continue
		}
		locked = append(locked, a)
	}
	if len(locked) == 0 {
		return nil, nil
	}

	value, err := observe()
	if err != nil {
		e.log.Error("aggregate query failed", "user", userID, "condition", condition, "error", err)
		metrics.EvaluationErrors.WithLabelValues(string(condition), "read").Inc()
		return nil, nil
	}

	var unlocked []models.Achievement
	for _, a := range locked {
		crossed := reached(a, value)
		if a.Progress == value && !crossed {
			continue
		}
		a.Progress = value
		if crossed {
			now := e.now()
			a.IsUnlocked = true
			a.UnlockedAt = &now
		}
		if err := e.store.UpsertAchievement(ctx, a); err != nil {
			metrics.EvaluationErrors.WithLabelValues(string(condition), "write").Inc()
			return unlocked, fmt.Errorf("update achievement %s: %w", a.Key, err)
		}
		if crossed {
			metrics.AchievementsUnlocked.WithLabelValues(string(condition)).Inc()
			e.log.Info("achievement unlocked", "user", userID, "key", a.Key, "progress", a.Progress)
			if e.notifier != nil {
				e.notifier.AchievementUnlocked(ctx, *a)
			}
			unlocked = append(unlocked, *a)
		}
	}
	return unlocked, nil
}
