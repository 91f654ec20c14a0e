package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"scratch/internal/config"
	"scratch/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")

	cfg := testConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		panic("failed to connect test database: " + err.Error())
	}
	testDB = db

	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Env:       "test",
		Port:      "0",
		JWTSecret: "test-secret-key-for-handler-tests",
		DBDriver:  "sqlite",
		DBName:    "file::memory:?cache=shared",
	}
}

func newTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	for _, stmt := range []string{
		"DELETE FROM likes",
		"DELETE FROM bookmarks",
		"DELETE FROM follows",
		"UPDATE users SET pinned_id = NULL",
		"DELETE FROM scratches",
		"DELETE FROM users",
	} {
		require.NoError(t, testDB.Exec(stmt).Error)
	}

	srv, err := NewServerWithDeps(testConfig(), testDB, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

func perform(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

// signup creates an account through the API and returns its id and a token.
func signup(t *testing.T, app *fiber.App, username string) (uint, string) {
	t.Helper()
	status, body := perform(t, app, http.MethodPost, "/api/users", "", fiber.Map{
		"username": username,
		"password": "Sturdy1pass",
	})
	require.Equal(t, http.StatusCreated, status, "signup body: %v", body)
	id := uint(body["id"].(float64))

	status, body = perform(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": username,
		"password": "Sturdy1pass",
	})
	require.Equal(t, http.StatusOK, status)
	return id, body["accessToken"].(string)
}

func TestSignupAndLogin(t *testing.T) {
	_, app := newTestApp(t)

	status, body := perform(t, app, http.MethodPost, "/api/users", "", fiber.Map{
		"username": "firstuser",
		"password": "Sturdy1pass",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "firstuser", body["username"])

	// Duplicate username
	status, body = perform(t, app, http.MethodPost, "/api/users", "", fiber.Map{
		"username": "firstuser",
		"password": "Sturdy1pass",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CONFLICT", body["code"])

	// Weak password
	status, _ = perform(t, app, http.MethodPost, "/api/users", "", fiber.Map{
		"username": "seconduser",
		"password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Login
	status, body = perform(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "firstuser",
		"password": "Sturdy1pass",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["accessToken"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "firstuser", user["username"])
	assert.Nil(t, user["password"])

	// Wrong password
	status, _ = perform(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "firstuser",
		"password": "WrongPass1",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateScratchRequiresAuth(t *testing.T) {
	_, app := newTestApp(t)

	status, _ := perform(t, app, http.MethodPost, "/api/scratches", "", fiber.Map{"body": "hello"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestScratchLifecycle(t *testing.T) {
	_, app := newTestApp(t)

	authorID, authorToken := signup(t, app, "author99")
	_, viewerToken := signup(t, app, "viewer99")

	status, body := perform(t, app, http.MethodPost, "/api/scratches", authorToken, fiber.Map{
		"body": "hello world",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(authorID), body["authorId"])
	scratchID := uint(body["id"].(float64))

	// Anonymous read: counts present, viewer flags false.
	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/scratches/%d", scratchID), "", nil)
	require.Equal(t, http.StatusOK, status)
	scratch := body["scratch"].(map[string]any)
	assert.Equal(t, "hello world", scratch["body"])
	assert.Equal(t, float64(0), scratch["likeCount"])
	assert.Equal(t, false, scratch["isLiked"])
	assert.Equal(t, "none", scratch["rescratchType"])
	author := scratch["author"].(map[string]any)
	assert.Equal(t, "author99", author["username"])

	// Like as viewer, then read with the viewer's token.
	status, _ = perform(t, app, http.MethodPost, fmt.Sprintf("/api/scratches/%d/likes", scratchID), viewerToken, nil)
	require.Equal(t, http.StatusCreated, status)

	status, body = perform(t, app, http.MethodPost, fmt.Sprintf("/api/scratches/%d/likes", scratchID), viewerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/scratches/%d", scratchID), viewerToken, nil)
	require.Equal(t, http.StatusOK, status)
	scratch = body["scratch"].(map[string]any)
	assert.Equal(t, float64(1), scratch["likeCount"])
	assert.Equal(t, true, scratch["isLiked"])

	// The likers list is public.
	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/scratches/%d/likes", scratchID), "", nil)
	require.Equal(t, http.StatusOK, status)
	likers := body["users"].([]any)
	require.Len(t, likers, 1)
	assert.Equal(t, "viewer99", likers[0].(map[string]any)["username"])
	assert.Equal(t, true, body["isFinished"])

	// Deleting someone else's scratch is rejected.
	status, _ = perform(t, app, http.MethodDelete, fmt.Sprintf("/api/scratches/%d", scratchID), viewerToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = perform(t, app, http.MethodDelete, fmt.Sprintf("/api/scratches/%d", scratchID), authorToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = perform(t, app, http.MethodGet, fmt.Sprintf("/api/scratches/%d", scratchID), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDirectRescratchFlow(t *testing.T) {
	_, app := newTestApp(t)

	_, authorToken := signup(t, app, "origauth1")
	_, sharerToken := signup(t, app, "resharer1")

	status, body := perform(t, app, http.MethodPost, "/api/scratches", authorToken, fiber.Map{
		"body": "share me",
	})
	require.Equal(t, http.StatusCreated, status)
	targetID := uint(body["id"].(float64))

	status, body = perform(t, app, http.MethodPost, "/api/scratches", sharerToken, fiber.Map{
		"rescratchedId": targetID,
	})
	require.Equal(t, http.StatusCreated, status)
	directID := uint(body["id"].(float64))

	// A direct reshare carries no content of its own, so it cannot itself be
	// reshared.
	status, body = perform(t, app, http.MethodPost, "/api/scratches", authorToken, fiber.Map{
		"rescratchedId": directID,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	// The same direct reshare again conflicts.
	status, body = perform(t, app, http.MethodPost, "/api/scratches", sharerToken, fiber.Map{
		"rescratchedId": targetID,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CONFLICT", body["code"])

	// A quote of the same target is fine.
	status, body = perform(t, app, http.MethodPost, "/api/scratches", sharerToken, fiber.Map{
		"rescratchedId": targetID,
		"body":          "worth reading",
	})
	require.Equal(t, http.StatusCreated, status)
	quoteID := uint(body["id"].(float64))

	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/scratches/%d", quoteID), "", nil)
	require.Equal(t, http.StatusOK, status)
	quote := body["scratch"].(map[string]any)
	assert.Equal(t, "quote", quote["rescratchType"])
	extra := body["extraScratches"].(map[string]any)
	require.Len(t, extra, 1)
	target := extra[fmt.Sprintf("%d", targetID)].(map[string]any)
	assert.Equal(t, float64(targetID), target["id"])

	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/scratches/%d", targetID), sharerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["scratch"].(map[string]any)["isRescratched"])

	// Undo the direct reshare; a second undo has nothing to remove.
	status, _ = perform(t, app, http.MethodDelete, fmt.Sprintf("/api/scratches/%d/direct-rescratch", targetID), sharerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = perform(t, app, http.MethodDelete, fmt.Sprintf("/api/scratches/%d/direct-rescratch", targetID), sharerToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The remaining quote does not count as the sharer's reshare.
	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/scratches/%d", targetID), sharerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["scratch"].(map[string]any)["isRescratched"])
}

func TestConversationEndpoint(t *testing.T) {
	_, app := newTestApp(t)

	_, token := signup(t, app, "threader1")

	status, body := perform(t, app, http.MethodPost, "/api/scratches", token, fiber.Map{"body": "root"})
	require.Equal(t, http.StatusCreated, status)
	rootID := uint(body["id"].(float64))

	status, body = perform(t, app, http.MethodPost, "/api/scratches", token, fiber.Map{
		"body": "middle", "parentId": rootID,
	})
	require.Equal(t, http.StatusCreated, status)
	middleID := uint(body["id"].(float64))

	status, body = perform(t, app, http.MethodPost, "/api/scratches", token, fiber.Map{
		"body": "leaf", "parentId": middleID,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/scratches/%d/conversation", middleID), "", nil)
	require.Equal(t, http.StatusOK, status)

	chain := body["parentChain"].([]any)
	require.Len(t, chain, 1)
	assert.Equal(t, float64(rootID), chain[0].(map[string]any)["id"])
	assert.Equal(t, float64(middleID), body["scratch"].(map[string]any)["id"])
	replies := body["replies"].([]any)
	require.Len(t, replies, 1)
	assert.Equal(t, "leaf", replies[0].(map[string]any)["body"])
}

func TestTimelinesAndFollow(t *testing.T) {
	_, app := newTestApp(t)

	readerID, readerToken := signup(t, app, "reader99")
	writerID, writerToken := signup(t, app, "writer99")

	status, _ := perform(t, app, http.MethodPost, "/api/scratches", writerToken, fiber.Map{"body": "from writer"})
	require.Equal(t, http.StatusCreated, status)

	// Before following, only own posts show up.
	status, body := perform(t, app, http.MethodGet, "/api/users/timeline", readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["scratches"])
	assert.Equal(t, true, body["isFinished"])

	status, _ = perform(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", writerID), readerToken, nil)
	require.Equal(t, http.StatusCreated, status)

	// Following again conflicts; following yourself is invalid.
	status, body = perform(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", writerID), readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CONFLICT", body["code"])
	status, _ = perform(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", readerID), readerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = perform(t, app, http.MethodGet, "/api/users/timeline", readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	scratches := body["scratches"].([]any)
	require.Len(t, scratches, 1)
	assert.Equal(t, "from writer", scratches[0].(map[string]any)["body"])

	// The writer's profile now reflects the follow for this viewer.
	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", writerID), readerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["followerCount"])
	assert.Equal(t, true, body["isFollowing"])

	// The writer's public timeline is visible anonymously.
	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/timeline", writerID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["scratches"].([]any), 1)
}

func TestBookmarksArePrivate(t *testing.T) {
	_, app := newTestApp(t)

	ownerID, ownerToken := signup(t, app, "bookowner")
	_, otherToken := signup(t, app, "snooper01")

	status, body := perform(t, app, http.MethodPost, "/api/scratches", ownerToken, fiber.Map{"body": "keep this"})
	require.Equal(t, http.StatusCreated, status)
	scratchID := uint(body["id"].(float64))

	status, _ = perform(t, app, http.MethodPost, fmt.Sprintf("/api/scratches/%d/bookmark", scratchID), ownerToken, nil)
	require.Equal(t, http.StatusCreated, status)

	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/bookmarks", ownerID), ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["scratches"].([]any), 1)

	status, _ = perform(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/bookmarks", ownerID), otherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPinAndUnpin(t *testing.T) {
	_, app := newTestApp(t)

	userID, token := signup(t, app, "pinowner1")
	_, otherToken := signup(t, app, "pinthief1")

	status, body := perform(t, app, http.MethodPost, "/api/scratches", token, fiber.Map{"body": "pin me"})
	require.Equal(t, http.StatusCreated, status)
	scratchID := uint(body["id"].(float64))

	status, _ = perform(t, app, http.MethodPost, fmt.Sprintf("/api/scratches/%d/pin", scratchID), otherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = perform(t, app, http.MethodPost, fmt.Sprintf("/api/scratches/%d/pin", scratchID), token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(scratchID), body["pinnedId"])

	status, _ = perform(t, app, http.MethodPost, fmt.Sprintf("/api/scratches/%d/unpin", scratchID), token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = perform(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["pinnedId"])
}

func TestSearchEndpoints(t *testing.T) {
	_, app := newTestApp(t)

	_, token := signup(t, app, "searcher9")

	status, _ := perform(t, app, http.MethodPost, "/api/scratches", token, fiber.Map{"body": "the quick brown fox"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = perform(t, app, http.MethodPost, "/api/scratches", token, fiber.Map{"body": "unrelated"})
	require.Equal(t, http.StatusCreated, status)

	status, body := perform(t, app, http.MethodGet, "/api/scratches/search?query=quick", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["scratches"].([]any), 1)

	status, _ = perform(t, app, http.MethodGet, "/api/scratches/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = perform(t, app, http.MethodGet, "/api/users/search?query=searcher", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["users"].([]any), 1)
}

func TestUserProfileUpdates(t *testing.T) {
	_, app := newTestApp(t)

	userID, token := signup(t, app, "profiled1")

	status, body := perform(t, app, http.MethodPatch, fmt.Sprintf("/api/users/%d", userID), token, fiber.Map{
		"name":        "Display Name",
		"description": "short bio",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Display Name", body["name"])
	assert.Equal(t, "short bio", body["description"])

	// Empty patch rejected.
	status, _ = perform(t, app, http.MethodPatch, fmt.Sprintf("/api/users/%d", userID), token, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)

	// Password change then login with the new password.
	status, _ = perform(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d/password", userID), token, fiber.Map{
		"currentPassword": "Sturdy1pass",
		"newPassword":     "Another1pass",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = perform(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "profiled1",
		"password": "Another1pass",
	})
	assert.Equal(t, http.StatusOK, status)

	// Lookup by username.
	status, body = perform(t, app, http.MethodGet, "/api/users/username/profiled1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(userID), body["id"])
}
