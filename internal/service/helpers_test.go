package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/circleapp/circle-server/internal/auth"
	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/search"
	"github.com/circleapp/circle-server/internal/store"
	"github.com/circleapp/circle-server/internal/store/badger"
	"github.com/circleapp/circle-server/internal/store/sqlite"
)

// recordingEmitter keeps every emitted event for assertions.
type recordingEmitter struct {
	events []any
}

func (r *recordingEmitter) Emit(event any) { r.events = append(r.events, event) }

// testEnv wires every service against temporary stores.
type testEnv struct {
	store    *sqlite.Store
	feeds    *badger.FeedStore
	index    *search.SearchIndex
	emitter  *recordingEmitter
	tokens   *auth.TokenService
	sessions *SessionService
	auth     *AuthService
	users    *UserService
	labels   *LabelService
	friends  *FriendService
	posts    *PostService
	feed     *FeedService
	filters  *FilterService
	search   *SearchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, FeedOptions{})
}

func newTestEnvWithOptions(t *testing.T, feedOpts FeedOptions) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(dir+"/test.db", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	feeds, err := badger.Open(badger.Options{InMemory: true, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = feeds.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: dir + "/search", Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		store:   st,
		feeds:   feeds,
		index:   index,
		emitter: &recordingEmitter{},
		tokens:  tokens,
	}

	env.sessions = NewSessionService(st, tokens, logger)
	env.auth = NewAuthService(st, tokens, env.sessions, logger)
	env.search = NewSearchService(index, st, logger)
	env.friends = NewFriendService(st, env.emitter, logger)
	env.labels = NewLabelService(st, env.friends, env.emitter, logger)
	env.posts = NewPostService(st, env.labels, env.search, logger)
	env.users = NewUserService(st, feeds, env.labels, env.search, logger)
	env.feed = NewFeedService(st, feeds, env.labels, env.friends, env.posts, env.emitter, feedOpts, logger)
	env.filters = NewFilterService(st, env.labels, logger)

	return env
}

func (e *testEnv) register(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), "", RegisterRequest{
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) befriend(t *testing.T, a, b *domain.User) {
	t.Helper()
	ctx := context.Background()
	_, err := e.friends.SendRequest(ctx, a, b)
	require.NoError(t, err)
	_, err = e.friends.AcceptRequest(ctx, a, b)
	require.NoError(t, err)
}

func (e *testEnv) label(t *testing.T, author *domain.User, name string, members ...string) *domain.UserLabel {
	t.Helper()
	ctx := context.Background()
	label, err := e.labels.CreateUserLabel(ctx, author.ID, CreateLabelRequest{Name: name})
	require.NoError(t, err)
	for _, m := range members {
		label, err = e.labels.AssignToLabel(ctx, label.ID, m)
		require.NoError(t, err)
	}
	return label
}

func (e *testEnv) post(t *testing.T, author *domain.User, content string, audience *string) *domain.Post {
	t.Helper()
	post, err := e.posts.CreatePost(context.Background(), author, CreatePostRequest{
		Content:  content,
		Audience: audience,
	})
	require.NoError(t, err)
	return post
}

func ptr[T any](v T) *T { return &v }

var _ store.EventEmitter = (*recordingEmitter)(nil)
