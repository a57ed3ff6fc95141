package search

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a search index in a temporary directory.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testDocs() []*PostDocument {
	return []*PostDocument{
		{ID: "post-1", AuthorID: "user-alice", Author: "alice", Content: "Watching the sunset from the pier", CreatedAt: 1000},
		{ID: "post-2", AuthorID: "user-alice", Author: "alice", Content: "Fresh bread this morning", CreatedAt: 2000, Audience: "label-close"},
		{ID: "post-3", AuthorID: "user-bob", Author: "bob", Content: "Long run by the river", CreatedAt: 3000},
	}
}

func hitIDs(result *SearchResult) []string {
	ids := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexAndDeletePost(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexPost(testDocs()[0]))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, index.DeletePost("post-1"))
	require.NoError(t, index.DeletePost("post-missing"))

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexPosts_Batch(t *testing.T) {
	index := setupTestIndex(t)

	docs := make([]*PostDocument, 0, 1200)
	for i := range 1200 {
		docs = append(docs, &PostDocument{
			ID:       "post-" + strconv.Itoa(i),
			AuthorID: "user-1",
			Author:   "someone",
			Content:  "batch content",
		})
	}
	require.NoError(t, index.IndexPosts(docs))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1200), count)

	require.NoError(t, index.DeletePosts([]string{docs[0].ID, docs[1].ID}))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1198), count)
}

func TestSearchIndex_Search_Content(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	result, err := index.Search(context.Background(), SearchParams{Query: "sunset", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"post-1"}, hitIDs(result))
	assert.Equal(t, "user-alice", result.Hits[0].AuthorID)
	assert.Equal(t, "alice", result.Hits[0].Author)
	assert.Empty(t, result.Hits[0].Audience)
}

func TestSearchIndex_Search_StoresAudience(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	result, err := index.Search(context.Background(), SearchParams{Query: "bread", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "label-close", result.Hits[0].Audience)
}

func TestSearchIndex_Search_Author(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	result, err := index.Search(context.Background(), SearchParams{Query: "bob", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"post-3"}, hitIDs(result))
}

func TestSearchIndex_Search_Fuzzy(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	result, err := index.Search(context.Background(), SearchParams{Query: "sunsett", Limit: 10})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(result), "post-1")
}

func TestSearchIndex_Search_Prefix(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	result, err := index.Search(context.Background(), SearchParams{Query: "suns", Limit: 10})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(result), "post-1")
}

func TestSearchIndex_Search_AuthorFilter(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	result, err := index.Search(context.Background(), SearchParams{AuthorID: "user-alice", Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"post-1", "post-2"}, hitIDs(result))
}

func TestSearchIndex_Search_EmptyQueryNewestFirst(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	result, err := index.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
	assert.Equal(t, []string{"post-3", "post-2", "post-1"}, hitIDs(result))
}

func TestSearchIndex_Search_Highlight(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	params := DefaultSearchParams()
	params.Query = "river"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Contains(t, result.Hits[0].Highlights, "content")
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexPosts(testDocs()))

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Still usable after the rebuild.
	require.NoError(t, index.IndexPost(testDocs()[0]))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_Persistence(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, first.IndexPosts(testDocs()))
	require.NoError(t, first.Close())

	second, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer second.Close()

	count, err := second.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_MappingVersionChangeRecreates(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, first.IndexPosts(testDocs()))
	require.NoError(t, first.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts.version"), []byte("0"), 0o644))

	second, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer second.Close()

	count, err := second.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	version, err := os.ReadFile(filepath.Join(dir, "posts.version"))
	require.NoError(t, err)
	assert.Equal(t, mappingVersion, string(version))
}

func TestNewPostDocument(t *testing.T) {
	audience := "label-1"
	post := &domain.Post{
		Entity:   domain.Entity{ID: "post-1", CreatedAt: time.UnixMilli(1234)},
		AuthorID: "user-1",
		Content:  "hello",
		Prompt:   1,
		Audience: &audience,
	}

	doc := NewPostDocument(post, "alice")

	assert.Equal(t, "post-1", doc.ID)
	assert.Equal(t, "user-1", doc.AuthorID)
	assert.Equal(t, "alice", doc.Author)
	assert.Equal(t, "What made alice smile today?", doc.Prompt)
	assert.Equal(t, "label-1", doc.Audience)
	assert.Equal(t, int64(1234), doc.CreatedAt)

	m := doc.ToMap()
	assert.Equal(t, "label-1", m["audience"])

	post.Audience = nil
	post.Prompt = 99
	m = NewPostDocument(post, "alice").ToMap()
	assert.NotContains(t, m, "audience")
	assert.NotContains(t, m, "prompt")
}
