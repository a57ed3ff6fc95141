package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/service"
	"github.com/circleapp/circle-server/internal/store"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List posts",
		Description: "Returns posts the caller may see, optionally by one author",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts",
		Summary:       "Create post",
		Description:   "Creates a post, optionally restricted to one of the caller's lists",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePost",
		Method:      http.MethodPatch,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Update post",
		Description: "Updates one of the caller's posts. An empty audience makes the post public.",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePost",
		Method:      http.MethodDelete,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Delete post",
		Description: "Deletes one of the caller's posts",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPostPrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/prompt/{id}",
		Summary:     "Get post prompt",
		Description: "Returns the prompt text a post answers",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPostPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPrompts",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts",
		Summary:     "List prompts",
		Description: "Returns the prompt catalog addressed to the caller. The index is the prompt number.",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPrompts)
}

// === DTOs ===

// PostResponse contains post data in API responses.
type PostResponse struct {
	ID              string    `json:"id" doc:"Post ID"`
	Author          string    `json:"author" doc:"Author user ID"`
	Content         string    `json:"content" doc:"Post text"`
	Prompt          int       `json:"prompt" doc:"Prompt number, 0 for none"`
	Audience        *string   `json:"audience,omitempty" doc:"List ID the post is restricted to"`
	BackgroundColor string    `json:"background_color" doc:"Card background color"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update time"`
}

// ListPostsInput contains parameters for listing posts.
type ListPostsInput struct {
	Author string `query:"author" doc:"Only posts by this username"`
	Limit  int    `query:"limit" default:"100" minimum:"1" maximum:"1000" doc:"Page size"`
	Cursor string `query:"cursor" doc:"Cursor from the previous page"`
}

// ListPostsResponse contains a list of posts.
type ListPostsResponse struct {
	Posts      []PostResponse `json:"posts" doc:"Posts, newest first"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether another page follows"`
}

// ListPostsOutput wraps the post list for Huma.
type ListPostsOutput struct {
	Body ListPostsResponse
}

// PostOptionsRequest carries presentation options.
type PostOptionsRequest struct {
	BackgroundColor string `json:"background_color,omitempty" doc:"Hex color such as #FFB3BA"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Content  string             `json:"content" doc:"Post text"`
	Prompt   int                `json:"prompt,omitempty" doc:"Prompt number, 0 for none"`
	Audience *string            `json:"audience,omitempty" doc:"Restrict to one of your lists"`
	Options  PostOptionsRequest `json:"options,omitempty" doc:"Presentation options"`
}

// CreatePostInput wraps the create post request for Huma.
type CreatePostInput struct {
	Body CreatePostRequest
}

// PostMessageResponse confirms a post write.
type PostMessageResponse struct {
	Message string       `json:"msg" doc:"Confirmation message"`
	Post    PostResponse `json:"post" doc:"The post"`
}

// PostMessageOutput wraps the post write response for Huma.
type PostMessageOutput struct {
	Body PostMessageResponse
}

// UpdatePostRequest is the request body for updating a post.
type UpdatePostRequest struct {
	Content  *string             `json:"content,omitempty" doc:"New text"`
	Prompt   *int                `json:"prompt,omitempty" doc:"New prompt number"`
	Audience *string             `json:"audience,omitempty" doc:"New audience list, empty for public"`
	Options  *PostOptionsRequest `json:"options,omitempty" doc:"New presentation options"`
}

// UpdatePostInput wraps the update post request for Huma.
type UpdatePostInput struct {
	ID   string `path:"id" doc:"Post ID"`
	Body UpdatePostRequest
}

// PostIDInput contains a post ID path parameter.
type PostIDInput struct {
	ID string `path:"id" doc:"Post ID"`
}

// PromptResponse contains one prompt's text.
type PromptResponse struct {
	Prompt string `json:"prompt" doc:"Prompt text"`
}

// PromptOutput wraps the prompt response for Huma.
type PromptOutput struct {
	Body PromptResponse
}

// ListPromptsResponse contains the prompt catalog.
type ListPromptsResponse struct {
	Prompts []string `json:"prompts" doc:"Prompt texts, indexed by prompt number"`
}

// ListPromptsOutput wraps the prompt catalog for Huma.
type ListPromptsOutput struct {
	Body ListPromptsResponse
}

// === Handlers ===

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*ListPostsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	var authorID string
	if input.Author != "" {
		author, err := s.services.User.GetUserByUsername(ctx, input.Author)
		if err != nil {
			return nil, err
		}
		authorID = author.ID
	}

	page, err := s.services.Post.ListPostsPage(ctx, userID, authorID, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}

	return &ListPostsOutput{Body: ListPostsResponse{
		Posts:      mapPosts(page.Items),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostMessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Post.CreatePost(ctx, user, service.CreatePostRequest{
		Content:  input.Body.Content,
		Prompt:   input.Body.Prompt,
		Audience: input.Body.Audience,
		Options:  domain.PostOptions{BackgroundColor: input.Body.Options.BackgroundColor},
	})
	if err != nil {
		return nil, err
	}

	return &PostMessageOutput{
		Body: PostMessageResponse{Message: "Post successfully created!", Post: mapPost(post)},
	}, nil
}

func (s *Server) handleUpdatePost(ctx context.Context, input *UpdatePostInput) (*PostMessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := service.UpdatePostRequest{
		Content:  input.Body.Content,
		Prompt:   input.Body.Prompt,
		Audience: input.Body.Audience,
	}
	if input.Body.Options != nil {
		req.Options = &domain.PostOptions{BackgroundColor: input.Body.Options.BackgroundColor}
	}

	post, err := s.services.Post.UpdatePost(ctx, userID, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &PostMessageOutput{
		Body: PostMessageResponse{Message: "Post successfully updated!", Post: mapPost(post)},
	}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *PostIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Post.DeletePost(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return message("Post deleted successfully!"), nil
}

func (s *Server) handleGetPostPrompt(ctx context.Context, input *PostIDInput) (*PromptOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	text, err := s.services.Post.GetPostPrompt(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: PromptResponse{Prompt: text}}, nil
}

func (s *Server) handleListPrompts(ctx context.Context, _ *struct{}) (*ListPromptsOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	return &ListPromptsOutput{
		Body: ListPromptsResponse{Prompts: s.services.Post.Prompts(user.Username)},
	}, nil
}

// === Helpers ===

func mapPost(p *domain.Post) PostResponse {
	return PostResponse{
		ID:              p.ID,
		Author:          p.AuthorID,
		Content:         p.Content,
		Prompt:          p.Prompt,
		Audience:        p.Audience,
		BackgroundColor: p.Options.BackgroundColor,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func mapPosts(posts []*domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, mapPost(p))
	}
	return out
}
