package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/search"
	"github.com/circleapp/circle-server/internal/store"
)

// SearchService keeps the post index in step with the store and answers
// post searches on behalf of a viewer.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// PostSearchHit is a search hit the viewer is allowed to see.
type PostSearchHit struct {
	Post       *domain.Post      `json:"post"`
	Author     string            `json:"author_username"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// PostSearchResult is the answer to a post search.
type PostSearchResult struct {
	Query  string          `json:"query"`
	Total  uint64          `json:"total"`
	TookMs int64           `json:"took_ms"`
	Hits   []PostSearchHit `json:"hits"`
}

// IndexPost indexes a post under its author's current username.
func (s *SearchService) IndexPost(ctx context.Context, post *domain.Post) error {
	username := ""
	if author, err := s.store.GetUser(ctx, post.AuthorID); err == nil {
		username = author.Username
	} else if !isNotFound(err) {
		return fmt.Errorf("get author: %w", err)
	}

	if err := s.index.IndexPost(search.NewPostDocument(post, username)); err != nil {
		return fmt.Errorf("index post: %w", err)
	}
	s.logger.Debug("indexed post", "post_id", post.ID)
	return nil
}

// RemovePosts drops posts from the index.
func (s *SearchService) RemovePosts(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.index.DeletePosts(ids); err != nil {
		return fmt.Errorf("unindex posts: %w", err)
	}
	return nil
}

// ReindexAuthor refreshes every post by authorID, used after a rename.
func (s *SearchService) ReindexAuthor(ctx context.Context, author *domain.User) error {
	posts, err := s.store.ListPostsByAuthor(ctx, author.ID)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	docs := make([]*search.PostDocument, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, search.NewPostDocument(p, author.Username))
	}
	return s.index.IndexPosts(docs)
}

// Rebuild replaces the index contents with every post in the store.
func (s *SearchService) Rebuild(ctx context.Context) error {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	docs := make([]*search.PostDocument, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, search.NewPostDocument(p, names[p.AuthorID]))
	}
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	if err := s.index.IndexPosts(docs); err != nil {
		return fmt.Errorf("index posts: %w", err)
	}
	s.logger.Info("search index rebuilt", "posts", len(docs))
	return nil
}

// DocumentCount returns the number of indexed posts.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexIfEmpty rebuilds the index when it holds no documents.
// It reports whether a rebuild ran.
func (s *SearchService) ReindexIfEmpty(ctx context.Context) (bool, error) {
	count, err := s.index.DocumentCount()
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	return true, s.Rebuild(ctx)
}

// SearchPosts runs a query and keeps only the hits viewerID may see.
// Total counts the visible hits.
func (s *SearchService) SearchPosts(ctx context.Context, viewerID string, params search.SearchParams) (*PostSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &PostSearchResult{
		Query:  res.Query,
		TookMs: res.TookMs,
		Hits:   []PostSearchHit{},
	}
	if len(res.Hits) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	posts, err := s.store.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	byID := make(map[string]*domain.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	vis := newVisibility(s.store, s.logger)
	for _, h := range res.Hits {
		post, ok := byID[h.ID]
		if !ok {
			// Indexed but since deleted.
			continue
		}
		visible, err := vis.check(ctx, viewerID, post)
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}
		out.Hits = append(out.Hits, PostSearchHit{
			Post:       post,
			Author:     h.Author,
			Score:      h.Score,
			Highlights: h.Highlights,
		})
	}
	out.Total = uint64(len(out.Hits))
	return out, nil
}
