package services

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"github.com/arnold/daily-challenges-api/internal/cloud"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/google/uuid"
)

// TokenLookup resolves a user's device token.
type TokenLookup interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

// PushService handles sending push notifications via Firebase Cloud Messaging
type PushService struct {
	cloud  *cloud.Client
	tokens TokenLookup
	log    *slog.Logger
}

func NewPushService(c *cloud.Client, tokens TokenLookup, log *slog.Logger) *PushService {
	return &PushService{cloud: c, tokens: tokens, log: log}
}

// SendToUser sends a push notification to a user by their ID.
// No-op if push is not configured or user has no FCM token.
func (p *PushService) SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	if p.cloud == nil {
		return
	}
	client, err := p.cloud.Messaging()
	if err != nil {
		return
	}

	profile, err := p.tokens.GetProfile(ctx, userID)
	if err != nil || profile.FCMToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: profile.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}
	if data != nil {
		msg.Data = data
	}

	if _, err := client.Send(ctx, msg); err != nil {
		p.log.Warn("FCM: failed to send", "user", userID, "error", err)
	}
}
