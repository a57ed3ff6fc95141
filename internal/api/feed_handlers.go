package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generateFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Generate feed",
		Description: "Rebuilds the caller's feed from their friends, or from the members of one of their lists, and returns the post IDs",
		Tags:        []string{"Feed"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGenerateFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFeedPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed/posts",
		Summary:     "Get feed posts",
		Description: "Returns the posts of the last generated feed without rebuilding it",
		Tags:        []string{"Feed"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFeedPosts)
}

// GenerateFeedInput contains parameters for feed generation.
type GenerateFeedInput struct {
	Label string `query:"label" doc:"Build from the members of this list instead of all friends"`
}

// FeedResponse contains the post IDs of a rebuilt feed.
type FeedResponse struct {
	Message string   `json:"msg" doc:"Confirmation message"`
	Posts   []string `json:"posts" doc:"Post IDs"`
}

// FeedOutput wraps the feed response for Huma.
type FeedOutput struct {
	Body FeedResponse
}

func (s *Server) handleGenerateFeed(ctx context.Context, input *GenerateFeedInput) (*FeedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.services.Feed.GenerateFeed(ctx, userID, input.Label)
	if err != nil {
		return nil, err
	}

	return &FeedOutput{Body: FeedResponse{Message: "Feed Updated", Posts: items}}, nil
}

func (s *Server) handleGetFeedPosts(ctx context.Context, _ *struct{}) (*ListPostsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.services.Feed.GetFeedPosts(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListPostsOutput{Body: ListPostsResponse{Posts: mapPosts(posts)}}, nil
}
