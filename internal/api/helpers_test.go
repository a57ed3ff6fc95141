package api

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/circleapp/circle-server/internal/auth"
	"github.com/circleapp/circle-server/internal/search"
	"github.com/circleapp/circle-server/internal/service"
	"github.com/circleapp/circle-server/internal/sse"
	"github.com/circleapp/circle-server/internal/store/badger"
	"github.com/circleapp/circle-server/internal/store/sqlite"
)

// testEnvelope mirrors Envelope with a typed payload for decoding.
type testEnvelope[T any] struct {
	Version int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

// testServer wraps the API server for route-level tests.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, Options{LoginRateLimit: 1000})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	feeds, err := badger.Open(badger.Options{InMemory: true, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = feeds.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	sseManager := sse.NewManager(logger)

	sessions := service.NewSessionService(st, tokens, logger)
	authService := service.NewAuthService(st, tokens, sessions, logger)
	searchService := service.NewSearchService(index, st, logger)
	friends := service.NewFriendService(st, sseManager, logger)
	labels := service.NewLabelService(st, friends, sseManager, logger)
	posts := service.NewPostService(st, labels, searchService, logger)

	services := &Services{
		Auth:    authService,
		Session: sessions,
		User:    service.NewUserService(st, feeds, labels, searchService, logger),
		Label:   labels,
		Friend:  friends,
		Post:    posts,
		Feed:    service.NewFeedService(st, feeds, labels, friends, posts, sseManager, service.FeedOptions{}, logger),
		Filter:  service.NewFilterService(st, labels, logger),
		Search:  searchService,
	}

	s := NewServer(st, feeds, services, sseManager, opts, logger)
	t.Cleanup(func() { _ = s.Close() })

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), "body: %s", resp.Body.String())
	return env
}

// registerAndLogin creates a user over HTTP and returns an access token and
// the user's ID.
func (ts *testServer) registerAndLogin(t *testing.T, username string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/users", map[string]any{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())

	resp = ts.api.Post("/api/v1/login", map[string]any{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	env := decode[AuthResponse](t, resp)
	return env.Data.AccessToken, env.Data.User.ID
}

// befriend sends and accepts a friend request between two registered users.
func (ts *testServer) befriend(t *testing.T, fromToken, fromName, toToken, toName string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/friend/requests/"+toName, bearer(fromToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Put("/api/v1/friend/accept/"+fromName, bearer(toToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func (ts *testServer) createList(t *testing.T, token, name string) ListResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/lists", bearer(token), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[ListMessageResponse](t, resp).Data.List
}

func (ts *testServer) createPost(t *testing.T, token string, body map[string]any) PostResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/posts", bearer(token), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[PostMessageResponse](t, resp).Data.Post
}

