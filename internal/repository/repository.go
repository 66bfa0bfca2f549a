package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/realtime"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// Repository is the pass-through layer over the relational store. Every
// mutation re-emits a copy of the written record to the owner's realtime
// subscribers; callers keep mutating their own value.
type Repository struct {
	db  *gorm.DB
	pub realtime.Publisher
}

func New(db *gorm.DB, pub realtime.Publisher) *Repository {
	if pub == nil {
		pub = realtime.Discard{}
	}
	return &Repository{db: db, pub: pub}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) completed(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("user_id = ? AND is_completed = ?", userID, true)
}

func (r *Repository) CompletedCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	if err := r.completed(ctx, userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completed: %w", err)
	}
	return int(count), nil
}

func (r *Repository) CompletedCountByCategory(ctx context.Context, userID uuid.UUID, category models.Category) (int, error) {
	var count int64
	if err := r.completed(ctx, userID).Where("category = ?", category).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completed in %s: %w", category, err)
	}
	return int(count), nil
}

func (r *Repository) CompletedCountByDifficulty(ctx context.Context, userID uuid.UUID, difficulty models.Difficulty) (int, error) {
	var count int64
	if err := r.completed(ctx, userID).Where("difficulty = ?", difficulty).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completed at %s: %w", difficulty, err)
	}
	return int(count), nil
}

// TotalPoints sums the point values of completed challenges.
func (r *Repository) TotalPoints(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int64
	err := r.completed(ctx, userID).Select("COALESCE(SUM(points), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return int(total), nil
}

func (r *Repository) CustomChallengeCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("user_id = ? AND is_custom = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count custom: %w", err)
	}
	return int(count), nil
}

func (r *Repository) CountChallenges(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Challenge{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count challenges: %w", err)
	}
	return int(count), nil
}

func (r *Repository) GetChallenge(ctx context.Context, userID, id uuid.UUID) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&challenge).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &challenge, nil
}

func (r *Repository) ListChallenges(ctx context.Context, userID uuid.UUID, filter models.ChallengeFilter) ([]models.Challenge, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.IsCompleted != nil {
		q = q.Where("is_completed = ?", *filter.IsCompleted)
	}
	if filter.IsFavorite != nil {
		q = q.Where("is_favorite = ?", *filter.IsFavorite)
	}
	if filter.IsCustom != nil {
		q = q.Where("is_custom = ?", *filter.IsCustom)
	}

	challenges := []models.Challenge{}
	if err := q.Order("created_at ASC").Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}

	if filter.ActiveOn == nil {
		return challenges, nil
	}
	active := challenges[:0]
	for _, c := range challenges {
		if c.ActiveOn(*filter.ActiveOn) {
			active = append(active, c)
		}
	}
	return active, nil
}

func (r *Repository) UpsertChallenge(ctx context.Context, challenge *models.Challenge) error {
	if err := r.db.WithContext(ctx).Save(challenge).Error; err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	snapshot := *challenge
	r.pub.Publish(challenge.UserID, realtime.Event{Type: realtime.EventChallengeUpdated, Data: &snapshot})
	return nil
}

func (r *Repository) CreateChallenges(ctx context.Context, challenges []models.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&challenges).Error; err != nil {
		return fmt.Errorf("create challenges: %w", err)
	}
	for i := range challenges {
		r.pub.Publish(challenges[i].UserID, realtime.Event{Type: realtime.EventChallengeUpdated, Data: challenges[i]})
	}
	return nil
}

func (r *Repository) DeleteChallenge(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Challenge{})
	if result.Error != nil {
		return fmt.Errorf("delete challenge: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.pub.Publish(userID, realtime.Event{Type: realtime.EventChallengeDeleted, Data: map[string]string{"id": id.String()}})
	return nil
}

func (r *Repository) AllAchievements(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	achievements := []models.Achievement{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("condition_type ASC, threshold ASC, achievement_key ASC").
		Find(&achievements).Error
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}

func (r *Repository) AchievementsByCondition(ctx context.Context, userID uuid.UUID, condition models.Condition) ([]models.Achievement, error) {
	achievements := []models.Achievement{}
	err := r.db.WithContext(ctx).Where("user_id = ? AND condition_type = ?", userID, condition).
		Order("threshold ASC").
		Find(&achievements).Error
	if err != nil {
		return nil, fmt.Errorf("list %s achievements: %w", condition, err)
	}
	return achievements, nil
}

// UnlockedRewardPoints sums the rewards of the user's unlocked achievements.
func (r *Repository) UnlockedRewardPoints(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Achievement{}).
		Where("user_id = ? AND is_unlocked = ?", userID, true).
		Select("COALESCE(SUM(reward_points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum rewards: %w", err)
	}
	return int(total), nil
}

func (r *Repository) UpsertAchievement(ctx context.Context, achievement *models.Achievement) error {
	if err := r.db.WithContext(ctx).Save(achievement).Error; err != nil {
		return fmt.Errorf("save achievement: %w", err)
	}
	snapshot := *achievement
	r.pub.Publish(achievement.UserID, realtime.Event{Type: realtime.EventAchievementUpdated, Data: &snapshot})
	return nil
}

// InsertMissingAchievements creates the given achievements, skipping keys the
// user already has. Returns how many were inserted.
func (r *Repository) InsertMissingAchievements(ctx context.Context, achievements []models.Achievement) (int, error) {
	if len(achievements) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_key"}},
			DoNothing: true,
		}).
		Create(&achievements)
	if result.Error != nil {
		return 0, fmt.Errorf("insert achievements: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &profile, nil
}

func (r *Repository) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	snapshot := *profile
	r.pub.Publish(profile.UserID, realtime.Event{Type: realtime.EventProfileUpdated, Data: &snapshot})
	return nil
}

func (r *Repository) ListProfileIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.UserProfile{}).Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return ids, nil
}

func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListNotifications returns one page of the user's inbox, newest first, with
// the total and unread counts.
func (r *Repository) ListNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*models.NotificationPage, error) {
	db := r.db.WithContext(ctx)
	result := &models.NotificationPage{Page: page, Limit: limit, Notifications: []models.Notification{}}

	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&result.Notifications).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if err := db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&result.Total).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&result.Unread).Error; err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return result, nil
}

func (r *Repository) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("mark all read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
