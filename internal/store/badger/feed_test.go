package badger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleapp/circle-server/internal/store"
)

func newTestFeedStore(t *testing.T) *FeedStore {
	t.Helper()
	s, err := Open(Options{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFeedStore_Lifecycle(t *testing.T) {
	s := newTestFeedStore(t)
	ctx := context.Background()

	_, err := s.GetFeed(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.CreateFeed(ctx, "user-1"))
	assert.ErrorIs(t, s.CreateFeed(ctx, "user-1"), store.ErrAlreadyExists)

	feed, err := s.GetFeed(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", feed.OwnerID)
	assert.Empty(t, feed.Items)
	assert.NotNil(t, feed.Items)

	require.NoError(t, s.AddToFeed(ctx, "user-1", "post-1"))
	require.NoError(t, s.AddToFeed(ctx, "user-1", "post-2"))

	feed, err = s.GetFeed(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"post-1", "post-2"}, feed.Items)

	require.NoError(t, s.ClearFeed(ctx, "user-1"))
	feed, err = s.GetFeed(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	require.NoError(t, s.DeleteFeed(ctx, "user-1"))
	require.NoError(t, s.DeleteFeed(ctx, "user-1"))
	_, err = s.GetFeed(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFeedStore_ClearCreatesMissingFeed(t *testing.T) {
	s := newTestFeedStore(t)
	ctx := context.Background()

	require.NoError(t, s.ClearFeed(ctx, "user-2"))

	feed, err := s.GetFeed(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}

func TestFeedStore_AddToMissingFeed(t *testing.T) {
	s := newTestFeedStore(t)

	err := s.AddToFeed(context.Background(), "ghost", "post-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFeedStore_ConcurrentAppends(t *testing.T) {
	s := newTestFeedStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateFeed(ctx, "user-1"))

	const writers = 4
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AddToFeed(ctx, "user-1", string(rune('a'+i))); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	// Every append that reported success is persisted.
	feed, err := s.GetFeed(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, feed.Items, int(succeeded.Load()))
	assert.NotEmpty(t, feed.Items)
}

func TestFeedStore_Count(t *testing.T) {
	s := newTestFeedStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateFeed(ctx, "user-1"))
	require.NoError(t, s.CreateFeed(ctx, "user-2"))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFeedStore_InMemory(t *testing.T) {
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ClearFeed(context.Background(), "user-1"))
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFeedStore_CanceledContext(t *testing.T) {
	s := newTestFeedStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.ClearFeed(ctx, "user-1"), context.Canceled)
	_, err := s.GetFeed(ctx, "user-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFeedStore_AddManyToFeed(t *testing.T) {
	s := newTestFeedStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.AddManyToFeed(ctx, "ghost", []string{"post-1"}), store.ErrNotFound)

	require.NoError(t, s.CreateFeed(ctx, "user-1"))
	require.NoError(t, s.AddToFeed(ctx, "user-1", "post-1"))
	require.NoError(t, s.AddManyToFeed(ctx, "user-1", []string{"post-2", "post-3"}))
	require.NoError(t, s.AddManyToFeed(ctx, "user-1", nil))

	feed, err := s.GetFeed(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"post-1", "post-2", "post-3"}, feed.Items)
}
