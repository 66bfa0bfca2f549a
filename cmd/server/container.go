package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/arnold/daily-challenges-api/internal/achievements"
	"github.com/arnold/daily-challenges-api/internal/cache"
	"github.com/arnold/daily-challenges-api/internal/cloud"
	"github.com/arnold/daily-challenges-api/internal/community"
	"github.com/arnold/daily-challenges-api/internal/config"
	"github.com/arnold/daily-challenges-api/internal/database"
	"github.com/arnold/daily-challenges-api/internal/handlers"
	"github.com/arnold/daily-challenges-api/internal/logging"
	"github.com/arnold/daily-challenges-api/internal/realtime"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/arnold/daily-challenges-api/internal/services"
	"github.com/samber/do"
	"gorm.io/gorm"
)

const localCacheSize = 10000

func NewContainer(cfg *config.Config) *do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	do.Provide(injector, func(i *do.Injector) (*slog.Logger, error) {
		log := logging.New(cfg.AppEnv, cfg.LogLevel)
		slog.SetDefault(log)
		return log, nil
	})

	do.Provide(injector, func(i *do.Injector) (*gorm.DB, error) {
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	})

	do.Provide(injector, func(i *do.Injector) (*realtime.Hub, error) {
		return realtime.NewHub(do.MustInvoke[*slog.Logger](i)), nil
	})

	// Firebase is optional. A failed Init leaves the client uninitialized and
	// the community store falls back to the database.
	do.Provide(injector, func(i *do.Injector) (*cloud.Client, error) {
		log := do.MustInvoke[*slog.Logger](i)
		client := cloud.New(log)
		if !cfg.CloudEnabled() {
			log.Info("cloud services disabled")
			return client, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := client.Init(ctx, cloud.Config{
			CredentialsFile: cfg.FirebaseCredentials,
			ProjectID:       cfg.FirebaseProjectID,
		}); err != nil {
			log.Error("cloud services init failed", "error", err)
		}
		return client, nil
	})

	do.Provide(injector, func(i *do.Injector) (cache.Cache, error) {
		log := do.MustInvoke[*slog.Logger](i)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, using local cache only", "error", err)
			client = nil
		}
		return cache.New(client, localCacheSize, cfg.FeedCacheTTL), nil
	})

	do.Provide(injector, func(i *do.Injector) (*repository.Repository, error) {
		return repository.New(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*realtime.Hub](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Seeder, error) {
		catalog, err := services.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		return services.NewSeeder(do.MustInvoke[*repository.Repository](i), catalog, do.MustInvoke[*slog.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.PushService, error) {
		return services.NewPushService(
			do.MustInvoke[*cloud.Client](i),
			do.MustInvoke[*repository.Repository](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.NotificationService, error) {
		return services.NewNotificationService(
			do.MustInvoke[*repository.Repository](i),
			do.MustInvoke[*services.PushService](i),
			do.MustInvoke[*realtime.Hub](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*achievements.Engine, error) {
		return achievements.NewEngine(
			do.MustInvoke[*repository.Repository](i),
			do.MustInvoke[*slog.Logger](i),
			achievements.WithNotifier(do.MustInvoke[*services.NotificationService](i)),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.ProfileService, error) {
		return services.NewProfileService(
			do.MustInvoke[*repository.Repository](i),
			do.MustInvoke[*services.Seeder](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.ChallengeService, error) {
		return services.NewChallengeService(
			do.MustInvoke[*repository.Repository](i),
			do.MustInvoke[*services.ProfileService](i),
			do.MustInvoke[*achievements.Engine](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (community.Store, error) {
		client := do.MustInvoke[*cloud.Client](i)
		if client.Initialized() {
			return community.NewFirestoreStore(client), nil
		}
		return community.NewGormStore(do.MustInvoke[*gorm.DB](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*community.Service, error) {
		return community.NewService(
			do.MustInvoke[community.Store](i),
			do.MustInvoke[*repository.Repository](i),
			do.MustInvoke[*services.ProfileService](i),
			do.MustInvoke[*services.ChallengeService](i),
			do.MustInvoke[cache.Cache](i),
			cfg.FeedCacheTTL,
			do.MustInvoke[*services.NotificationService](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*handlers.Handlers, error) {
		return handlers.New(handlers.Deps{
			Repo:       do.MustInvoke[*repository.Repository](i),
			Profiles:   do.MustInvoke[*services.ProfileService](i),
			Challenges: do.MustInvoke[*services.ChallengeService](i),
			Engine:     do.MustInvoke[*achievements.Engine](i),
			Community:  do.MustInvoke[*community.Service](i),
			Inbox:      do.MustInvoke[*services.NotificationService](i),
			Hub:        do.MustInvoke[*realtime.Hub](i),
			Log:        do.MustInvoke[*slog.Logger](i),
		}), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.SeedJob, error) {
		return services.NewSeedJob(do.MustInvoke[*services.Seeder](i), do.MustInvoke[*slog.Logger](i)), nil
	})

	return injector
}

// closeResources releases whatever the container has built so far.
// Services implementing do.Shutdownable, such as the cloud client, are
// closed by the injector.
func closeResources(injector *do.Injector) {
	log := do.MustInvoke[*slog.Logger](injector)
	if db, err := do.Invoke[*gorm.DB](injector); err == nil {
		if err := database.Close(db); err != nil {
			log.Warn("close database failed", "error", err)
		}
	}
	if err := injector.Shutdown(); err != nil {
		log.Warn("shutdown container failed", "error", err)
	}
}
