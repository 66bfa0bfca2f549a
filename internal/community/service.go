package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arnold/daily-challenges-api/internal/cache"
	"github.com/arnold/daily-challenges-api/internal/metrics"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/arnold/daily-challenges-api/internal/services"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	maxCommentLen   = 500

	feedGenerationKey = "community:feed:gen"
	feedGenerationTTL = 24 * time.Hour
)

// Notifier tells authors about activity on their published challenges.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, body string, metadata map[string]any)
}

type Service struct {
	store      Store
	notifier   Notifier
	repo       *repository.Repository
	profiles   *services.ProfileService
	challenges *services.ChallengeService
	cache      cache.Cache
	ttl        time.Duration
	log        *slog.Logger
}

func NewService(
	store Store,
	repo *repository.Repository,
	profiles *services.ProfileService,
	challenges *services.ChallengeService,
	c cache.Cache,
	ttl time.Duration,
	notifier Notifier,
	log *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		notifier:   notifier,
		repo:       repo,
		profiles:   profiles,
		challenges: challenges,
		cache:      c,
		ttl:        ttl,
		log:        log,
	}
}

func authorName(profile *models.UserProfile) string {
	if profile.DisplayName != "" {
		return profile.DisplayName
	}
	return "Anonymous"
}

// Publish shares one of the caller's custom challenges with the community.
func (s *Service) Publish(ctx context.Context, userID, challengeID uuid.UUID) (*models.CommunityChallenge, error) {
	challenge, err := s.repo.GetChallenge(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsCustom {
		return nil, fmt.Errorf("%w: only custom challenges can be published", services.ErrInvalidInput)
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	published := &models.CommunityChallenge{
		SourceChallengeID: challenge.ID,
		AuthorID:          userID,
		AuthorName:        authorName(profile),
		Title:             challenge.Title,
		Description:       challenge.Description,
		Category:          challenge.Category,
		Difficulty:        challenge.Difficulty,
		Points:            challenge.Points,
	}
	if err := s.store.Publish(ctx, published); err != nil {
		return nil, err
	}
	if err := s.profiles.AddPublished(ctx, userID); err != nil {
		s.log.Warn("bump published count failed", "user", userID, "error", err)
	}
	s.invalidateFeed(ctx)
	s.log.Info("challenge published", "user", userID, "community_id", published.ID)
	return published, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Feed returns a page of community challenges, newest first. Store failures
// are logged and yield an empty page.
func (s *Service) Feed(ctx context.Context, limit, offset int) []models.CommunityChallenge {
	limit, offset = normalizePage(limit, offset)
	key := fmt.Sprintf("community:feed:%d:%d:%d", s.feedGeneration(ctx), limit, offset)

	loaded := false
	feed, err := cache.UseCache(ctx, s.cache, key, s.ttl, func() ([]models.CommunityChallenge, error) {
		loaded = true
		return s.store.List(ctx, limit, offset)
	})
	if loaded {
		metrics.FeedCacheLookups.WithLabelValues("miss").Inc()
	} else if err == nil {
		metrics.FeedCacheLookups.WithLabelValues("hit").Inc()
	}
	if err != nil {
		s.log.Error("load community feed failed", "limit", limit, "offset", offset, "error", err)
		return []models.CommunityChallenge{}
	}
	if feed == nil {
		return []models.CommunityChallenge{}
	}
	return feed
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.CommunityChallenge, error) {
	return s.store.Get(ctx, id)
}

// Adopt copies a community challenge into the caller's own list.
func (s *Service) Adopt(ctx context.Context, userID, id uuid.UUID) (*models.Challenge, error) {
	published, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.challenges.Adopt(ctx, userID, models.Challenge{
		Title:       published.Title,
		Description: published.Description,
		Category:    published.Category,
		Difficulty:  published.Difficulty,
		Points:      published.Points,
	})
}

func (s *Service) AddComment(ctx context.Context, userID, challengeID uuid.UUID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", services.ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return nil, fmt.Errorf("%w: comment is longer than %d characters", services.ErrInvalidInput, maxCommentLen)
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ChallengeID: challengeID,
		UserID:      userID,
		AuthorName:  authorName(profile),
		Text:        text,
	}
	if err := s.store.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)
	s.notifyAuthor(ctx, challengeID, userID, models.NotificationCommentReceived,
		"New comment!", func(title string) string {
			return comment.AuthorName + " commented on \"" + title + "\""
		})
	return comment, nil
}

func (s *Service) Comments(ctx context.Context, challengeID uuid.UUID) ([]models.Comment, error) {
	comments, err := s.store.ListComments(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (s *Service) DeleteComment(ctx context.Context, userID, challengeID, commentID uuid.UUID) error {
	if err := s.store.DeleteComment(ctx, challengeID, commentID, userID); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *Service) ToggleLike(ctx context.Context, userID, challengeID uuid.UUID) (*models.LikeResult, error) {
	result, err := s.store.ToggleLike(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)
	if result.Liked {
		s.notifyAuthor(ctx, challengeID, userID, models.NotificationLikeReceived,
			"New like!", func(title string) string {
				return "Someone liked \"" + title + "\""
			})
	}
	return result, nil
}

// notifyAuthor tells the author of challengeID about actor's activity unless
// they are the same user.
func (s *Service) notifyAuthor(ctx context.Context, challengeID, actor uuid.UUID, kind, title string, body func(title string) string) {
	if s.notifier == nil {
		return
	}
	published, err := s.store.Get(ctx, challengeID)
	if err != nil {
		s.log.Warn("load challenge for notification failed", "community_id", challengeID, "error", err)
		return
	}
	if published.AuthorID == actor {
		return
	}
	s.notifier.Notify(ctx, published.AuthorID, kind, title, body(published.Title), map[string]any{
		"communityId": challengeID.String(),
	})
}

// Feed pages are keyed by a generation number; bumping it orphans every
// cached page at once.
func (s *Service) feedGeneration(ctx context.Context) int64 {
	var gen int64
	if err := s.cache.Get(ctx, feedGenerationKey, &gen); err != nil && !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("read feed generation failed", "error", err)
	}
	return gen
}

func (s *Service) invalidateFeed(ctx context.Context) {
	if err := s.cache.Set(ctx, feedGenerationKey, time.Now().UnixNano(), feedGenerationTTL); err != nil {
		s.log.Warn("invalidate feed cache failed", "error", err)
	}
}
