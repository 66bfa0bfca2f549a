package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/arnold/daily-challenges-api/internal/realtime"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/google/uuid"
)

const (
	defaultInboxPage = 20
	maxInboxPage     = 50
)

// Sender delivers a push message to a user's device.
type Sender interface {
	SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string)
}

// NotificationService stores inbox entries and fans them out as push
// messages. It is also the achievement engine's notifier.
type NotificationService struct {
	repo *repository.Repository
	push Sender
	pub  realtime.Publisher
	log  *slog.Logger
}

func NewNotificationService(repo *repository.Repository, push Sender, pub realtime.Publisher, log *slog.Logger) *NotificationService {
	if pub == nil {
		pub = realtime.Discard{}
	}
	return &NotificationService{repo: repo, push: push, pub: pub, log: log}
}

// Notify records a notification and sends it as a push message in the
// background. Failures are logged; notifying never fails the caller.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind, title, body string, metadata map[string]any) {
	n := &models.Notification{
		UserID: userID,
		Type:   kind,
		Title:  title,
		Body:   body,
	}

	pushData := map[string]string{"type": kind}
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			meta := string(data)
			n.Metadata = &meta
		}
		for k, v := range metadata {
			pushData[k] = fmt.Sprintf("%v", v)
		}
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.log.Warn("store notification failed", "user", userID, "type", kind, "error", err)
	}

	if s.push != nil {
		// The request context may be gone by the time FCM answers.
		go s.push.SendToUser(context.WithoutCancel(ctx), userID, title, body, pushData)
	}
}

// AchievementUnlocked implements achievements.Notifier.
func (s *NotificationService) AchievementUnlocked(ctx context.Context, a models.Achievement) {
	s.pub.Publish(a.UserID, realtime.Event{Type: realtime.EventAchievementUnlock, Data: a})
	s.Notify(ctx, a.UserID, models.NotificationAchievementUnlocked, "Achievement unlocked!", a.Title, map[string]any{
		"achievementId": a.ID.String(),
		"key":           a.Key,
		"rewardPoints":  a.RewardPoints,
	})
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, limit int) (*models.NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultInboxPage
	}
	if limit > maxInboxPage {
		limit = maxInboxPage
	}
	return s.repo.ListNotifications(ctx, userID, page, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkNotificationRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}
