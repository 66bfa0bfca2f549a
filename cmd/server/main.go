package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnold/daily-challenges-api/internal/achievements"
	"github.com/arnold/daily-challenges-api/internal/config"
	"github.com/arnold/daily-challenges-api/internal/handlers"
	"github.com/arnold/daily-challenges-api/internal/middleware"
	"github.com/arnold/daily-challenges-api/internal/repository"
	"github.com/arnold/daily-challenges-api/internal/routes"
	"github.com/arnold/daily-challenges-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	container := NewContainer(cfg)

	app := &cli.App{
		Name:           "daily-challenges",
		Usage:          "daily social challenges API",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			commandServe(container),
			commandSeed(container),
			commandEvaluate(container),
			commandToken(container),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newFiberApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "daily-challenges",
		ErrorHandler: customErrorHandler(cfg),
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	return app
}

func customErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		// Don't expose internal errors in production
		if cfg.IsProduction() && code == fiber.StatusInternalServerError {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}

func commandServe(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the web server and the seed cronjob",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "serve address (defaults to :$PORT)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := do.MustInvoke[*config.Config](container)
			log := do.MustInvoke[*slog.Logger](container)
			h, err := do.Invoke[*handlers.Handlers](container)
			if err != nil {
				return err
			}
			defer closeResources(container)

			addr := c.String("addr")
			if addr == "" {
				addr = ":" + cfg.Port
			}

			app := newFiberApp(cfg)
			routes.Setup(app, h, cfg.JWTSecret)

			cronRunner := cron.New()
			if _, err := do.MustInvoke[*services.SeedJob](container).Start(cronRunner, cfg.SeedCron); err != nil {
				return fmt.Errorf("schedule seed job: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errWg, errCtx := errgroup.WithContext(ctx)

			errWg.Go(func() error {
				log.Info("listening", "addr", addr, "env", cfg.AppEnv)
				return app.Listen(addr)
			})

			errWg.Go(func() error {
				cronRunner.Run()
				return nil
			})

			errWg.Go(func() error {
				<-errCtx.Done()
				log.Info("shutting down")
				<-cronRunner.Stop().Done()
				return app.ShutdownWithTimeout(10 * time.Second)
			})

			return errWg.Wait()
		},
	}
}

func commandSeed(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "seed default challenges and achievements for every profile now",
		Action: func(c *cli.Context) error {
			job, err := do.Invoke[*services.SeedJob](container)
			if err != nil {
				return err
			}
			defer closeResources(container)
			return job.Run(c.Context)
		},
	}
}

func parseUserFlag(c *cli.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String("user"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user: %w", err)
	}
	return id, nil
}

func commandEvaluate(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "re-run every achievement evaluation for a user, or for all users",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "user id; all profiles when empty",
			},
		},
		Action: func(c *cli.Context) error {
			engine, err := do.Invoke[*achievements.Engine](container)
			if err != nil {
				return err
			}
			defer closeResources(container)
			repo := do.MustInvoke[*repository.Repository](container)
			profiles := do.MustInvoke[*services.ProfileService](container)
			log := do.MustInvoke[*slog.Logger](container)

			var ids []uuid.UUID
			if c.String("user") != "" {
				id, err := parseUserFlag(c)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			} else if ids, err = repo.ListProfileIDs(c.Context); err != nil {
				return err
			}

			for _, id := range ids {
				unlocked, err := engine.EvaluateAll(c.Context, id)
				if err != nil {
					return fmt.Errorf("evaluate %s: %w", id, err)
				}
				if _, err := profiles.RefreshCounters(c.Context, id); err != nil {
					log.Warn("refresh counters failed", "user", id, "error", err)
				}
				log.Info("evaluated", "user", id, "unlocked", len(unlocked))
			}
			return nil
		},
	}
}

func commandToken(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "user id; a new one when empty",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Value: 7 * 24 * time.Hour,
				Usage: "token lifetime",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := do.MustInvoke[*config.Config](container)
			if cfg.IsProduction() {
				return errors.New("token minting is disabled in production")
			}

			userID := uuid.New()
			if c.String("user") != "" {
				id, err := parseUserFlag(c)
				if err != nil {
					return err
				}
				userID = id
			}

			token, err := middleware.GenerateToken(cfg.JWTSecret, userID, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "user:  %s\ntoken: %s\n", userID, token)
			return nil
		},
	}
}
