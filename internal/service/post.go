package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/circleapp/circle-server/internal/color"
	"github.com/circleapp/circle-server/internal/domain"
	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/id"
	"github.com/circleapp/circle-server/internal/store"
)

const msgUnsupportedPrompt = "Prompt is not supported"

// PostService manages posts and their audiences.
type PostService struct {
	store  store.Store
	labels *LabelService
	search *SearchService
	logger *slog.Logger
}

// NewPostService creates a post service. search may be nil, in which case
// posts are not indexed.
func NewPostService(store store.Store, labels *LabelService, search *SearchService, logger *slog.Logger) *PostService {
	return &PostService{
		store:  store,
		labels: labels,
		search: search,
		logger: logger,
	}
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Content  string             `json:"content" validate:"required,notblank,max=2000"`
	Prompt   int                `json:"prompt" validate:"gte=0"`
	Audience *string            `json:"audience,omitempty"`
	Options  domain.PostOptions `json:"options"`
}

// UpdatePostRequest is the body of PATCH /posts/{id}. Nil fields are left
// alone; an empty audience makes the post public again.
type UpdatePostRequest struct {
	Content  *string             `json:"content,omitempty" validate:"omitempty,notblank,max=2000"`
	Prompt   *int                `json:"prompt,omitempty" validate:"omitempty,gte=0"`
	Audience *string             `json:"audience,omitempty"`
	Options  *domain.PostOptions `json:"options,omitempty"`
}

// IsPromptSupported fails with NOT_ALLOWED unless n names a catalog prompt.
func IsPromptSupported(n int) error {
	if !domain.IsPromptSupported(n) {
		return domainerrors.NotAllowed(msgUnsupportedPrompt)
	}
	return nil
}

// CreatePost creates a post by author.
func (s *PostService) CreatePost(ctx context.Context, author *domain.User, req CreatePostRequest) (*domain.Post, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := IsPromptSupported(req.Prompt); err != nil {
		return nil, err
	}

	audience, err := s.checkAudience(ctx, author.ID, req.Audience)
	if err != nil {
		return nil, err
	}

	postID, err := id.Generate(id.PrefixPost)
	if err != nil {
		return nil, fmt.Errorf("generate post ID: %w", err)
	}

	post := &domain.Post{
		Entity:   domain.Entity{ID: postID},
		AuthorID: author.ID,
		Content:  strings.TrimSpace(req.Content),
		Prompt:   req.Prompt,
		Audience: audience,
		Options:  normalizeOptions(req.Options, postID),
	}
	post.InitTimestamps()

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.index(ctx, post)
	s.logger.Info("post created", "post_id", post.ID, "author_id", author.ID)
	return post, nil
}

// UpdatePost applies req to a post userID wrote.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, req UpdatePostRequest) (*domain.Post, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	post, err := s.IsAuthor(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		post.Content = strings.TrimSpace(*req.Content)
	}
	if req.Prompt != nil {
		if err := IsPromptSupported(*req.Prompt); err != nil {
			return nil, err
		}
		post.Prompt = *req.Prompt
	}
	if req.Audience != nil {
		audience, err := s.checkAudience(ctx, userID, req.Audience)
		if err != nil {
			return nil, err
		}
		post.Audience = audience
	}
	if req.Options != nil {
		post.Options = normalizeOptions(*req.Options, post.ID)
	}
	post.Touch()

	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, notFound(err, fmt.Sprintf("post %s does not exist", postID))
	}

	s.index(ctx, post)
	s.logger.Info("post updated", "post_id", post.ID)
	return post, nil
}

// DeletePost deletes a post userID wrote.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	if _, err := s.IsAuthor(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return notFound(err, fmt.Sprintf("post %s does not exist", postID))
	}
	if s.search != nil {
		if err := s.search.RemovePosts([]string{postID}); err != nil {
			s.logger.Warn("failed to unindex post", "post_id", postID, "error", err)
		}
	}
	s.logger.Info("post deleted", "post_id", postID)
	return nil
}

// GetPost returns a post or NOT_FOUND.
func (s *PostService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("post %s does not exist", postID))
	}
	return post, nil
}

// IsAuthor returns the post when userID wrote it. It fails with NOT_FOUND
// for a missing post and NOT_ALLOWED for anyone else's.
func (s *PostService) IsAuthor(ctx context.Context, userID, postID string) (*domain.Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, domainerrors.NotAllowed("You are not the author of this post")
	}
	return post, nil
}

// GetByAuthor returns the author's posts, newest first.
func (s *PostService) GetByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	posts, err := s.store.ListPostsByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListPosts returns the posts viewerID may see, newest first. A non-empty
// authorID restricts the list to that author.
func (s *PostService) ListPosts(ctx context.Context, viewerID, authorID string) ([]*domain.Post, error) {
	var (
		posts []*domain.Post
		err   error
	)
	if authorID != "" {
		posts, err = s.store.ListPostsByAuthor(ctx, authorID)
	} else {
		posts, err = s.store.ListPosts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	vis := newVisibility(s.store, s.logger)
	out := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		ok, err := vis.check(ctx, viewerID, p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListPostsPage returns one page of ListPosts. The cursor carries the ID of
// the last post served.
func (s *PostService) ListPostsPage(ctx context.Context, viewerID, authorID string, params store.PaginationParams) (*store.PaginatedResult[*domain.Post], error) {
	posts, err := s.ListPosts(ctx, viewerID, authorID)
	if err != nil {
		return nil, err
	}
	return store.Paginate(posts, params, func(p *domain.Post) string { return p.ID })
}

// GetPostPrompt renders the prompt a post answers, addressed to its author.
func (s *PostService) GetPostPrompt(ctx context.Context, postID string) (string, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return "", err
	}

	username := ""
	if author, err := s.store.GetUser(ctx, post.AuthorID); err == nil {
		username = author.Username
	} else if !isNotFound(err) {
		return "", fmt.Errorf("get author: %w", err)
	}

	text, ok := domain.PromptText(post.Prompt, username)
	if !ok {
		return "", domainerrors.NotAllowed(msgUnsupportedPrompt)
	}
	return text, nil
}

// Prompts returns the prompt catalog rendered for username.
func (s *PostService) Prompts(username string) []string {
	out := make([]string, 0, len(domain.Prompts))
	for i := range domain.Prompts {
		text, _ := domain.PromptText(i, username)
		out = append(out, text)
	}
	return out
}

// checkAudience resolves a requested audience. Nil or blank means public;
// anything else must be a label authorID wrote.
func (s *PostService) checkAudience(ctx context.Context, authorID string, audience *string) (*string, error) {
	if audience == nil || strings.TrimSpace(*audience) == "" {
		return nil, nil
	}
	label, err := s.labels.IsAuthor(ctx, *audience, authorID)
	if err != nil {
		return nil, err
	}
	return &label.ID, nil
}

func (s *PostService) index(ctx context.Context, post *domain.Post) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexPost(ctx, post); err != nil {
		s.logger.Warn("failed to index post", "post_id", post.ID, "error", err)
	}
}

func normalizeOptions(opts domain.PostOptions, postID string) domain.PostOptions {
	if strings.TrimSpace(opts.BackgroundColor) == "" {
		opts.BackgroundColor = color.DefaultBackground(postID)
	} else {
		opts.BackgroundColor = color.Normalize(opts.BackgroundColor)
	}
	return opts
}

// visibility answers "may viewer see post" for a batch of posts, loading
// each audience label once.
type visibility struct {
	store  store.Store
	logger *slog.Logger
	labels map[string]*domain.UserLabel // nil value: label is gone
}

func newVisibility(st store.Store, logger *slog.Logger) *visibility {
	return &visibility{
		store:  st,
		logger: logger,
		labels: make(map[string]*domain.UserLabel),
	}
}

func (v *visibility) check(ctx context.Context, viewerID string, post *domain.Post) (bool, error) {
	if !post.HasAudience() || post.AuthorID == viewerID {
		return true, nil
	}

	labelID := *post.Audience
	label, cached := v.labels[labelID]
	if !cached {
		var err error
		label, err = v.store.GetLabel(ctx, labelID)
		if err != nil {
			if !isNotFound(err) {
				return false, fmt.Errorf("get audience label: %w", err)
			}
			v.logger.Warn("audience label missing, hiding post",
				"post_id", post.ID, "label_id", labelID)
			label = nil
		}
		v.labels[labelID] = label
	}
	if label == nil {
		return false, nil
	}
	return post.VisibleTo(viewerID, label.Items), nil
}
