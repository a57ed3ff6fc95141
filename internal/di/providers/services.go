package providers

import (
	"github.com/samber/do/v2"

	"github.com/circleapp/circle-server/internal/auth"
	"github.com/circleapp/circle-server/internal/config"
	"github.com/circleapp/circle-server/internal/logger"
	"github.com/circleapp/circle-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideFriendService provides the friend request service.
func ProvideFriendService(i do.Injector) (*service.FriendService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFriendService(storeHandle.Store, sseHandle.Manager, log.Logger), nil
}

// ProvideLabelService provides the label service.
func ProvideLabelService(i do.Injector) (*service.LabelService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	friendService := do.MustInvoke[*service.FriendService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLabelService(storeHandle.Store, friendService, sseHandle.Manager, log.Logger), nil
}

// ProvidePostService provides the post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	labelService := do.MustInvoke[*service.LabelService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(storeHandle.Store, labelService, searchService, log.Logger), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	feedHandle := do.MustInvoke[*FeedStoreHandle](i)
	labelService := do.MustInvoke[*service.LabelService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, feedHandle.FeedStore, labelService, searchService, log.Logger), nil
}

// ProvideFeedService provides the feed service.
func ProvideFeedService(i do.Injector) (*service.FeedService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	feedHandle := do.MustInvoke[*FeedStoreHandle](i)
	labelService := do.MustInvoke[*service.LabelService](i)
	friendService := do.MustInvoke[*service.FriendService](i)
	postService := do.MustInvoke[*service.PostService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedService(
		storeHandle.Store,
		feedHandle.FeedStore,
		labelService,
		friendService,
		postService,
		sseHandle.Manager,
		service.FeedOptions{MaxItems: cfg.Feed.MaxItems},
		log.Logger,
	), nil
}

// ProvideFilterService provides the saved filter service.
func ProvideFilterService(i do.Injector) (*service.FilterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	labelService := do.MustInvoke[*service.LabelService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFilterService(storeHandle.Store, labelService, log.Logger), nil
}
