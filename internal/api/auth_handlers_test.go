package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginSessionLogout(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.registerAndLogin(t, "alice")

	resp := ts.api.Get("/api/v1/session", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	session := decode[UserResponse](t, resp)
	assert.True(t, session.Success)
	assert.Equal(t, userID, session.Data.ID)
	assert.Equal(t, "alice", session.Data.Username)

	resp = ts.api.Post("/api/v1/logout", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Logged out!", decode[MessageResponse](t, resp).Data.Message)

	// The session is gone, so the token no longer authenticates.
	resp = ts.api.Get("/api/v1/session", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_LoginMessageAndTokens(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "alice")

	resp := ts.api.Post("/api/v1/login", map[string]any{"username": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[AuthResponse](t, resp)
	assert.Equal(t, "Logged in!", env.Data.Message)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.NotEmpty(t, env.Data.RefreshToken)
	assert.NotEmpty(t, env.Data.SessionID)
}

func TestAuth_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "alice")

	resp := ts.api.Post("/api/v1/login", map[string]any{"username": "alice", "password": "not-the-password"})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	env := decode[any](t, resp)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	assert.Equal(t, "Username or password is incorrect.", env.Error.Message)
}

func TestAuth_MustBeLoggedOut(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerAndLogin(t, "alice")

	resp := ts.api.Post("/api/v1/users", bearer(token), map[string]any{
		"username": "bob",
		"password": "password123",
	})
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "You must be logged out!", decode[any](t, resp).Error.Message)

	resp = ts.api.Post("/api/v1/login", bearer(token), map[string]any{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "You must be logged out!", decode[any](t, resp).Error.Message)
}

func TestAuth_Refresh(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "alice")

	resp := ts.api.Post("/api/v1/login", map[string]any{"username": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, resp.Code)
	first := decode[AuthResponse](t, resp).Data

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	second := decode[AuthResponse](t, resp).Data
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old refresh token was rotated away.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuth_LoginRateLimited(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{LoginRateLimit: 2})
	ts.registerAndLogin(t, "alice") // one attempt

	resp := ts.api.Post("/api/v1/login", map[string]any{"username": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/login", map[string]any{"username": "alice", "password": "password123"})
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decode[any](t, resp).Error.Code)

	// Other addresses have their own budget.
	resp = ts.api.Post("/api/v1/login", "X-Forwarded-For: 203.0.113.9",
		map[string]any{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAuth_RequiresToken(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/api/v1/session", "/api/v1/friends", "/api/v1/lists", "/api/v1/feed"} {
		resp := ts.api.Get(path)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
		env := decode[any](t, resp)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code, path)
	}

	resp := ts.api.Get("/api/v1/session", bearer("v4.local.not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestEvents_RequiresToken(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode[any](t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
	assert.Equal(t, "203.0.113.1", getClientIP(req))
}
