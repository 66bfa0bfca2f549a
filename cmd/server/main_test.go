package main

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arnold/daily-challenges-api/internal/cache"
	"github.com/arnold/daily-challenges-api/internal/community"
	"github.com/arnold/daily-challenges-api/internal/config"
	"github.com/arnold/daily-challenges-api/internal/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:  "file:container_test?mode=memory&cache=shared",
		JWTSecret:    "test",
		Port:         "0",
		AppEnv:       "test",
		LogLevel:     "error",
		CORSOrigins:  "*",
		SeedCron:     "@daily",
		FeedCacheTTL: time.Minute,
	}
}

func TestContainerBuildsWithoutCloudOrRedis(t *testing.T) {
	container := NewContainer(testConfig())
	t.Cleanup(func() { closeResources(container) })

	_, err := do.Invoke[*handlers.Handlers](container)
	require.NoError(t, err)

	store := do.MustInvoke[community.Store](container)
	assert.IsType(t, &community.GormStore{}, store)
	assert.IsType(t, &cache.Store{}, do.MustInvoke[cache.Cache](container))
}

func TestCustomErrorHandler(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "production"
	app := newFiberApp(cfg)
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return assert.AnError })

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestCommandToken(t *testing.T) {
	container := NewContainer(testConfig())
	var out bytes.Buffer
	app := &cli.App{
		Writer:   &out,
		Commands: []*cli.Command{commandToken(container)},
	}

	require.NoError(t, app.Run([]string{"daily-challenges", "token", "--user", "11111111-1111-1111-1111-111111111111"}))
	assert.Contains(t, out.String(), "11111111-1111-1111-1111-111111111111")
	assert.Contains(t, out.String(), "token: ")

	assert.Error(t, app.Run([]string{"daily-challenges", "token", "--user", "nope"}))
}
