package services

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/defaults.yaml
var defaultCatalog []byte

type catalogChallenge struct {
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Category    models.Category    `yaml:"category"`
	Difficulty  *models.Difficulty `yaml:"difficulty"`
	Points      int                `yaml:"points"`
}

type catalogAchievement struct {
	Key         string             `yaml:"key"`
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Icon        string             `yaml:"icon"`
	Reward      int                `yaml:"reward"`
	Condition   models.Condition   `yaml:"condition"`
	Category    *models.Category   `yaml:"category"`
	Difficulty  *models.Difficulty `yaml:"difficulty"`
	Threshold   int                `yaml:"threshold"`
}

type Catalog struct {
	Challenges   []catalogChallenge   `yaml:"challenges"`
	Achievements []catalogAchievement `yaml:"achievements"`
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, ch := range c.Challenges {
		if !ch.Category.Valid() {
			return nil, fmt.Errorf("catalog challenge %q: unknown category %q", ch.Title, ch.Category)
		}
	}
	seen := make(map[string]bool)
	for _, a := range c.Achievements {
		if a.Key == "" || seen[a.Key] {
			return nil, fmt.Errorf("catalog achievement key %q missing or duplicated", a.Key)
		}
		seen[a.Key] = true
		if a.Threshold <= 0 {
			return nil, fmt.Errorf("catalog achievement %q: threshold must be positive", a.Key)
		}
	}
	return &c, nil
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// SeedStore is what seeding needs from the repository.
type SeedStore interface {
	CountChallenges(ctx context.Context, userID uuid.UUID) (int, error)
	CreateChallenges(ctx context.Context, challenges []models.Challenge) error
	InsertMissingAchievements(ctx context.Context, achievements []models.Achievement) (int, error)
	ListProfileIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Seeder struct {
	store   SeedStore
	catalog *Catalog
	log     *slog.Logger
}

func NewSeeder(store SeedStore, catalog *Catalog, log *slog.Logger) *Seeder {
	return &Seeder{store: store, catalog: catalog, log: log}
}

// EnsureAchievements gives the user every catalog achievement they lack.
func (s *Seeder) EnsureAchievements(ctx context.Context, userID uuid.UUID) (int, error) {
	achievements := make([]models.Achievement, 0, len(s.catalog.Achievements))
	for _, a := range s.catalog.Achievements {
		achievements = append(achievements, models.Achievement{
			UserID:       userID,
			Key:          a.Key,
			Title:        a.Title,
			Description:  a.Description,
			Icon:         a.Icon,
			RewardPoints: a.Reward,
			Condition:    a.Condition,
			Category:     a.Category,
			Difficulty:   a.Difficulty,
			Threshold:    a.Threshold,
		})
	}
	return s.store.InsertMissingAchievements(ctx, achievements)
}

// SeedChallengesIfEmpty inserts the default challenges for a user who has none.
func (s *Seeder) SeedChallengesIfEmpty(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.store.CountChallenges(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	challenges := make([]models.Challenge, 0, len(s.catalog.Challenges))
	for _, c := range s.catalog.Challenges {
		challenges = append(challenges, models.Challenge{
			UserID:      userID,
			Title:       c.Title,
			Description: c.Description,
			Category:    c.Category,
			Difficulty:  c.Difficulty,
			Points:      c.Points,
		})
	}
	if err := s.store.CreateChallenges(ctx, challenges); err != nil {
		return 0, err
	}
	return len(challenges), nil
}

// SeedAll runs SeedChallengesIfEmpty for every known profile. A failure for one
// user is logged and the rest still run; the first error is returned.
func (s *Seeder) SeedAll(ctx context.Context) (int, error) {
	ids, err := s.store.ListProfileIDs(ctx)
	if err != nil {
		return 0, err
	}

	var firstErr error
	seeded := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return seeded, err
		}
		n, err := s.SeedChallengesIfEmpty(ctx, id)
		if err != nil {
			s.log.Error("seed user failed", "user", id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, err := s.EnsureAchievements(ctx, id); err != nil {
			s.log.Error("seed achievements failed", "user", id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if n > 0 {
			seeded++
			s.log.Info("seeded default challenges", "user", id, "count", n)
		}
	}
	return seeded, firstErr
}
