package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/sse"
	"github.com/circleapp/circle-server/internal/store"
)

// FeedService assembles and serves materialized feeds.
type FeedService struct {
	store    store.Store
	feeds    store.FeedStore
	labels   *LabelService
	friends  *FriendService
	posts    *PostService
	emitter  store.EventEmitter
	maxItems int
	logger   *slog.Logger
}

// FeedOptions configures a FeedService.
type FeedOptions struct {
	// MaxItems caps a rebuilt feed. Zero means unbounded.
	MaxItems int
}

// NewFeedService creates a feed service.
func NewFeedService(
	store store.Store,
	feeds store.FeedStore,
	labels *LabelService,
	friends *FriendService,
	posts *PostService,
	emitter store.EventEmitter,
	opts FeedOptions,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		store:    store,
		feeds:    feeds,
		labels:   labels,
		friends:  friends,
		posts:    posts,
		emitter:  emitter,
		maxItems: opts.MaxItems,
		logger:   logger,
	}
}

// GenerateFeed rebuilds userID's feed and returns its post IDs.
//
// The source set is the items of labelID when given, which userID must
// have written, or else userID's friends. Every post by a source author is
// added in source order, then author order, skipping posts whose audience
// excludes userID. A post is added at most once. With MaxItems set, the
// walk stops at the cap, so later sources lose their posts first.
//
// The feed is cleared first and not restored if a later step fails.
func (s *FeedService) GenerateFeed(ctx context.Context, userID, labelID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.feeds.ClearFeed(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear feed: %w", err)
	}

	sources, err := s.sources(ctx, userID, labelID)
	if err != nil {
		return nil, err
	}

	vis := newVisibility(s.store, s.logger)
	seen := make(map[string]struct{})
	var batch []string

authors:
	for _, authorID := range sources {
		posts, err := s.posts.GetByAuthor(ctx, authorID)
		if err != nil {
			return nil, err
		}
		for _, post := range posts {
			if _, dup := seen[post.ID]; dup {
				continue
			}
			ok, err := vis.check(ctx, userID, post)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			seen[post.ID] = struct{}{}
			batch = append(batch, post.ID)
			if s.maxItems > 0 && len(batch) >= s.maxItems {
				break authors
			}
		}
	}

	if err := s.feeds.AddManyToFeed(ctx, userID, batch); err != nil {
		return nil, fmt.Errorf("add to feed: %w", err)
	}

	feed, err := s.feeds.GetFeed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	items := feed.Items
	if items == nil {
		items = []string{}
	}

	s.emitter.Emit(sse.NewFeedUpdatedEvent(userID, labelID, len(items)))
	s.logger.Debug("feed generated", "user_id", userID, "label_id", labelID, "posts", len(items))
	return items, nil
}

// sources returns the authors whose posts feed userID.
func (s *FeedService) sources(ctx context.Context, userID, labelID string) ([]string, error) {
	if labelID == "" {
		return s.friends.GetFriends(ctx, userID)
	}

	label, err := s.labels.IsAuthor(ctx, labelID, userID)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(label.Items))
	for _, item := range label.Items {
		user, err := s.store.GetUser(ctx, item)
		if err != nil {
			return nil, notFound(err, fmt.Sprintf("user %s does not exist", item))
		}
		out = append(out, user.ID)
	}
	return out, nil
}

// GetFeedItems returns the post IDs of userID's last generated feed.
func (s *FeedService) GetFeedItems(ctx context.Context, userID string) ([]string, error) {
	feed, err := s.feeds.GetFeed(ctx, userID)
	if err != nil {
		return nil, notFound(err, "feed does not exist")
	}
	if feed.Items == nil {
		return []string{}, nil
	}
	return feed.Items, nil
}

// GetFeedPosts hydrates userID's last generated feed without rebuilding it.
// Posts deleted since the rebuild are skipped, and so are posts whose
// audience no longer includes userID.
func (s *FeedService) GetFeedPosts(ctx context.Context, userID string) ([]*domain.Post, error) {
	items, err := s.GetFeedItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []*domain.Post{}, nil
	}
	posts, err := s.store.GetPostsByIDs(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("load feed posts: %w", err)
	}

	vis := newVisibility(s.store, s.logger)
	visible := make([]*domain.Post, 0, len(posts))
	for _, post := range posts {
		ok, err := vis.check(ctx, userID, post)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, post)
		}
	}
	return visible, nil
}
