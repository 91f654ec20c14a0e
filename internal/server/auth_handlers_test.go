package server

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppWithRedis(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	srv, app := newTestApp(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	srv.redis = rdb

	// Re-register routes so the auth middleware closes over the test client.
	app = fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

func TestLogoutRevokesToken(t *testing.T) {
	_, app := newTestAppWithRedis(t)

	_, token := signup(t, app, "logmeout1")

	status, _ := perform(t, app, http.MethodPost, "/api/scratches", token, fiber.Map{"body": "before logout"})
	require.Equal(t, http.StatusCreated, status)

	status, body := perform(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body = perform(t, app, http.MethodPost, "/api/scratches", token, fiber.Map{"body": "after logout"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", body["error"])
}

func TestRefreshIssuesWorkingToken(t *testing.T) {
	_, app := newTestAppWithRedis(t)

	_, token := signup(t, app, "refresher1")

	status, body := perform(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{"token": token})
	require.Equal(t, http.StatusOK, status)
	fresh := body["accessToken"].(string)
	require.NotEmpty(t, fresh)

	status, _ = perform(t, app, http.MethodPost, "/api/scratches", fresh, fiber.Map{"body": "with fresh token"})
	assert.Equal(t, http.StatusCreated, status)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	_, app := newTestAppWithRedis(t)

	status, _ := perform(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{"token": "not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = perform(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)
}
