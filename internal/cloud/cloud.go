// Package cloud owns the Firebase app. Nothing here is initialized at import
// time: callers must run Init, and every accessor reports ErrNotInitialized
// until it has succeeded.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var ErrNotInitialized = errors.New("cloud services not initialized")

type Config struct {
	CredentialsFile string
	ProjectID       string
}

type Client struct {
	mu        sync.RWMutex
	firestore *firestore.Client
	messaging *messaging.Client
	log       *slog.Logger
}

func New(log *slog.Logger) *Client {
	return &Client{log: log}
}

// Init connects to Firebase. Calling it again after success is a no-op.
func (c *Client) Init(ctx context.Context, cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.firestore != nil {
		return nil
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return fmt.Errorf("firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("firestore client: %w", err)
	}

	msg, err := app.Messaging(ctx)
	if err != nil {
		// Push is optional; Firestore alone is still useful.
		c.log.Warn("FCM: messaging client unavailable, push notifications disabled", "error", err)
		msg = nil
	}

	c.firestore = fs
	c.messaging = msg
	c.log.Info("cloud services initialized", "project", cfg.ProjectID, "push", msg != nil)
	return nil
}

func (c *Client) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.firestore != nil
}

func (c *Client) Firestore() (*firestore.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.firestore == nil {
		return nil, ErrNotInitialized
	}
	return c.firestore, nil
}

func (c *Client) Messaging() (*messaging.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.messaging == nil {
		return nil, ErrNotInitialized
	}
	return c.messaging, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.firestore == nil {
		return nil
	}
	err := c.firestore.Close()
	c.firestore = nil
	c.messaging = nil
	return err
}

// Shutdown lets the DI container close the client when it was built.
func (c *Client) Shutdown() error {
	return c.Close()
}
