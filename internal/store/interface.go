// Package store defines the persistence interfaces for the Circle server.
package store

import (
	"context"

	"github.com/circleapp/circle-server/internal/domain"
)

// Store is the durable store for everything except feeds.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	// DeleteUser removes the user, everything they own, and their
	// membership in any label.
	DeleteUser(ctx context.Context, id string) error

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// User labels
	CreateLabel(ctx context.Context, label *domain.UserLabel) error
	GetLabel(ctx context.Context, id string) (*domain.UserLabel, error)
	ListLabelsByAuthor(ctx context.Context, authorID string) ([]*domain.UserLabel, error)
	// UpdateLabelItems loads the label, lets fn mutate its items, and
	// persists the result in one transaction. An error from fn aborts
	// the update and is returned as is.
	UpdateLabelItems(ctx context.Context, id string, fn func(*domain.UserLabel) error) (*domain.UserLabel, error)
	// DeleteLabel is idempotent.
	DeleteLabel(ctx context.Context, id string) error

	// App labels
	CreateAppLabel(ctx context.Context, label *domain.AppLabel) error
	GetAppLabel(ctx context.Context, id string) (*domain.AppLabel, error)
	GetAppLabelByIdentifier(ctx context.Context, identifier string) (*domain.AppLabel, error)
	UpdateAppLabelItems(ctx context.Context, id string, fn func(*domain.AppLabel) error) (*domain.AppLabel, error)
	// DeleteAppLabel is idempotent.
	DeleteAppLabel(ctx context.Context, id string) error

	// Friends
	CreateFriendRequest(ctx context.Context, req *domain.FriendRequest) error
	// GetPendingRequest returns the pending request from -> to.
	GetPendingRequest(ctx context.Context, fromID, toID string) (*domain.FriendRequest, error)
	UpdateFriendRequest(ctx context.Context, req *domain.FriendRequest) error
	DeleteFriendRequest(ctx context.Context, id string) error
	// ListFriendRequests returns requests sent or received by userID, newest first.
	ListFriendRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error)
	// AcceptFriendRequest marks req accepted and records the friendship atomically.
	AcceptFriendRequest(ctx context.Context, req *domain.FriendRequest, friendship *domain.Friendship) error
	// GetFriendship finds the edge between a and b in either direction.
	GetFriendship(ctx context.Context, a, b string) (*domain.Friendship, error)
	DeleteFriendship(ctx context.Context, id string) error
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)

	// Posts
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) ([]*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, id string) error
	// ListPostsByAuthor returns the author's posts, newest first.
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error)
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]*domain.Post, error)

	// Saved filters
	CreateFilter(ctx context.Context, filter *domain.Filter) error
	GetFilter(ctx context.Context, id string) (*domain.Filter, error)
	ListFiltersByOwner(ctx context.Context, ownerID string) ([]*domain.Filter, error)
	DeleteFilter(ctx context.Context, id string) error
}

// FeedStore keeps each user's materialized feed.
type FeedStore interface {
	Close() error
	CreateFeed(ctx context.Context, ownerID string) error
	// ClearFeed empties the feed, creating it when absent.
	ClearFeed(ctx context.Context, ownerID string) error
	AddToFeed(ctx context.Context, ownerID, postID string) error
	// AddManyToFeed appends postIDs in order in one write.
	AddManyToFeed(ctx context.Context, ownerID string, postIDs []string) error
	// GetFeed returns ErrNotFound when the user has no feed.
	GetFeed(ctx context.Context, ownerID string) (*domain.Feed, error)
	// DeleteFeed is idempotent.
	DeleteFeed(ctx context.Context, ownerID string) error
}

// EventEmitter broadcasts change events to connected clients.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}
