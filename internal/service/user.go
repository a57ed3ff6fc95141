package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/circleapp/circle-server/internal/auth"
	"github.com/circleapp/circle-server/internal/domain"
	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/id"
	"github.com/circleapp/circle-server/internal/store"
)

// UserService handles registration and account changes.
type UserService struct {
	store  store.Store
	feeds  store.FeedStore
	labels *LabelService
	search *SearchService
	logger *slog.Logger
}

// NewUserService creates a user service. search may be nil.
func NewUserService(
	store store.Store,
	feeds store.FeedStore,
	labels *LabelService,
	search *SearchService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		store:  store,
		feeds:  feeds,
		labels: labels,
		search: search,
		logger: logger,
	}
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64,username"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// UpdateUserRequest is the body of PATCH /users. Nil fields are left alone.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=64,username"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=1024"`
}

// CreateUser registers a new account. callerID is the user making the
// request, if any; registering while logged in is NOT_ALLOWED.
func (s *UserService) CreateUser(ctx context.Context, callerID string, req RegisterRequest) (*domain.User, error) {
	if callerID != "" {
		return nil, domainerrors.NotAllowed("You must be logged out!")
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("username %q is taken", user.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.feeds.CreateFeed(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}

	everyone, err := s.labels.EnsureAppLabel(ctx, domain.EveryoneLabel)
	if err != nil {
		return nil, fmt.Errorf("ensure %s label: %w", domain.EveryoneLabel, err)
	}
	if _, err := s.labels.AssignToAppLabel(ctx, everyone.ID, user.ID); err != nil {
		return nil, fmt.Errorf("join %s label: %w", domain.EveryoneLabel, err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUsers returns every user ordered by username.
func (s *UserService) GetUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// GetUser returns a user by ID or NOT_FOUND.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("user %s does not exist", userID))
	}
	return user, nil
}

// GetUserByUsername returns a user by username or NOT_FOUND.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("user %s does not exist", username))
	}
	return user, nil
}

// UpdateUser changes the username and/or password of userID.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	renamed := false
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		renamed = name != user.Username
		user.Username = name
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("username %q is taken", user.Username)
		}
		return nil, notFound(err, fmt.Sprintf("user %s does not exist", userID))
	}

	if renamed && s.search != nil {
		if err := s.search.ReindexAuthor(ctx, user); err != nil {
			s.logger.Warn("failed to reindex posts after rename", "user_id", user.ID, "error", err)
		}
	}

	s.logger.Info("user updated", "user_id", user.ID)
	return user, nil
}

// DeleteUser removes the account together with its sessions, posts,
// labels, requests, friendships, filters and feed.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	posts, err := s.store.ListPostsByAuthor(ctx, userID)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return notFound(err, fmt.Sprintf("user %s does not exist", userID))
	}

	if err := s.feeds.DeleteFeed(ctx, userID); err != nil {
		s.logger.Warn("failed to delete feed", "user_id", userID, "error", err)
	}

	if s.search != nil {
		ids := make([]string, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		if err := s.search.RemovePosts(ids); err != nil {
			s.logger.Warn("failed to unindex posts", "user_id", userID, "error", err)
		}
	}

	s.logger.Info("user deleted", "user_id", userID, "posts", len(posts))
	return nil
}
