package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/circleapp/circle-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	if s.services.Search == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "searchPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/search",
		Summary:     "Search posts",
		Description: "Full-text search over post content, author usernames and prompts. Only posts the caller may see are returned.",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchPosts)
}

// SearchPostsInput contains search parameters.
type SearchPostsInput struct {
	Query  string `query:"q" doc:"Search query"`
	Author string `query:"author" doc:"Only posts by this username"`
	Limit  int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum hits"`
	Offset int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchHitResponse is one visible post matching the query.
type SearchHitResponse struct {
	Post       PostResponse      `json:"post" doc:"Matching post"`
	Author     string            `json:"author_username" doc:"Author's username"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted fragments by field"`
}

// SearchPostsResponse contains search results.
type SearchPostsResponse struct {
	Query  string              `json:"query" doc:"Query as received"`
	Total  uint64              `json:"total" doc:"Matches visible to the caller"`
	TookMs int64               `json:"took_ms" doc:"Search time in milliseconds"`
	Hits   []SearchHitResponse `json:"hits" doc:"Visible hits"`
}

// SearchPostsOutput wraps the search response for Huma.
type SearchPostsOutput struct {
	Body SearchPostsResponse
}

func (s *Server) handleSearchPosts(ctx context.Context, input *SearchPostsInput) (*SearchPostsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Limit = input.Limit
	params.Offset = input.Offset

	if input.Author != "" {
		author, err := s.services.User.GetUserByUsername(ctx, input.Author)
		if err != nil {
			return nil, err
		}
		params.AuthorID = author.ID
	}

	result, err := s.services.Search.SearchPosts(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, SearchHitResponse{
			Post:       mapPost(h.Post),
			Author:     h.Author,
			Score:      h.Score,
			Highlights: h.Highlights,
		})
	}

	return &SearchPostsOutput{
		Body: SearchPostsResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
		},
	}, nil
}
