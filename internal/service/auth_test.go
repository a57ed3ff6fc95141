package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleapp/circle-server/internal/auth"
	domainerrors "github.com/circleapp/circle-server/internal/errors"
)

var testClient = auth.ClientInfo{IPAddress: "127.0.0.1", UserAgent: "circle-test"}

func TestAuthService_LoginAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	resp, err := env.auth.Login(ctx, LoginRequest{Username: "Alice", Password: "password123", Client: testClient})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, resp.User.ID)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int((15 * time.Minute).Seconds()), resp.ExpiresIn)

	user, claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
	assert.Equal(t, resp.SessionID, claims.SessionID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, err := env.auth.Login(ctx, LoginRequest{Username: "alice", Password: "wrong-password"})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, invalidCredentials, err.Error())

	_, err = env.auth.Login(ctx, LoginRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{Username: "alice"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	resp, err := env.auth.Login(ctx, LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, resp.SessionID))
	require.NoError(t, env.auth.Logout(ctx, resp.SessionID))

	_, _, err = env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	resp, err := env.auth.Login(ctx, LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: resp.RefreshToken, Client: testClient})
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, refreshed.SessionID)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	_, _, err = env.auth.VerifyAccessToken(ctx, refreshed.AccessToken)
	require.NoError(t, err)
}

func TestAuthService_VerifyRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.VerifyAccessToken(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestSessionService_ExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	session, err := env.sessions.CreateSession(ctx, alice, testClient)
	require.NoError(t, err)

	// Jump past the refresh lifetime.
	env.sessions.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	_, err = env.sessions.ValidateSession(ctx, session.SessionID)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, _, err = env.sessions.RefreshSession(ctx, session.RefreshToken, testClient)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	// RefreshSession already dropped the expired row.
	count, err := env.sessions.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
