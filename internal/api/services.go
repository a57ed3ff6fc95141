package api

import (
	"github.com/circleapp/circle-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	User    *service.UserService
	Label   *service.LabelService
	Friend  *service.FriendService
	Post    *service.PostService
	Feed    *service.FeedService
	Filter  *service.FilterService
	Search  *service.SearchService // optional; search routes are not registered without it
}
