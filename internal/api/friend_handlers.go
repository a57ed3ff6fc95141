package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/circleapp/circle-server/internal/domain"
	"github.com/circleapp/circle-server/internal/service"
)

func (s *Server) registerFriendRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFriends",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends",
		Summary:     "List friends",
		Description: "Returns the usernames of the caller's friends",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFriends)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfriend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/friends/{friend}",
		Summary:     "Unfriend",
		Description: "Ends a friendship",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnfriend)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFriendRequests",
		Method:      http.MethodGet,
		Path:        "/api/v1/friend/requests",
		Summary:     "List friend requests",
		Description: "Returns pending requests the caller sent or received",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFriendRequests)

	huma.Register(s.api, huma.Operation{
		OperationID: "sendFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friend/requests/{to}",
		Summary:     "Send friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSendFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFriendRequest",
		Method:      http.MethodDelete,
		Path:        "/api/v1/friend/requests/{to}",
		Summary:     "Cancel friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "acceptFriendRequest",
		Method:      http.MethodPut,
		Path:        "/api/v1/friend/accept/{from}",
		Summary:     "Accept friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAcceptFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectFriendRequest",
		Method:      http.MethodPut,
		Path:        "/api/v1/friend/reject/{from}",
		Summary:     "Reject friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectFriendRequest)
}

// === DTOs ===

// ListFriendsResponse contains friend usernames.
type ListFriendsResponse struct {
	Friends []string `json:"friends" doc:"Friend usernames"`
}

// ListFriendsOutput wraps the friend list for Huma.
type ListFriendsOutput struct {
	Body ListFriendsResponse
}

// UnfriendInput names the friend to remove.
type UnfriendInput struct {
	Friend string `path:"friend" doc:"Friend's username"`
}

// FriendRequestToInput names the request recipient.
type FriendRequestToInput struct {
	To string `path:"to" doc:"Recipient's username"`
}

// FriendRequestFromInput names the request sender.
type FriendRequestFromInput struct {
	From string `path:"from" doc:"Sender's username"`
}

// ListFriendRequestsResponse contains pending friend requests.
type ListFriendRequestsResponse struct {
	Requests []service.FriendRequestView `json:"requests" doc:"Pending requests"`
}

// ListFriendRequestsOutput wraps the request list for Huma.
type ListFriendRequestsOutput struct {
	Body ListFriendRequestsResponse
}

// === Handlers ===

func (s *Server) handleListFriends(ctx context.Context, _ *struct{}) (*ListFriendsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	friends, err := s.services.Friend.GetFriendUsers(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(friends))
	for _, f := range friends {
		names = append(names, f.Username)
	}

	return &ListFriendsOutput{Body: ListFriendsResponse{Friends: names}}, nil
}

func (s *Server) handleUnfriend(ctx context.Context, input *UnfriendInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	friend, err := s.services.User.GetUserByUsername(ctx, input.Friend)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.RemoveFriend(ctx, userID, friend.ID); err != nil {
		return nil, err
	}

	return message("Unfriended!"), nil
}

func (s *Server) handleListFriendRequests(ctx context.Context, _ *struct{}) (*ListFriendRequestsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	requests, err := s.services.Friend.GetRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListFriendRequestsOutput{Body: ListFriendRequestsResponse{Requests: requests}}, nil
}

func (s *Server) handleSendFriendRequest(ctx context.Context, input *FriendRequestToInput) (*MessageOutput, error) {
	me, other, err := s.requestParties(ctx, input.To)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Friend.SendRequest(ctx, me, other); err != nil {
		return nil, err
	}

	return message("Sent request!"), nil
}

func (s *Server) handleRemoveFriendRequest(ctx context.Context, input *FriendRequestToInput) (*MessageOutput, error) {
	me, other, err := s.requestParties(ctx, input.To)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.RemoveRequest(ctx, me, other); err != nil {
		return nil, err
	}

	return message("Removed request!"), nil
}

func (s *Server) handleAcceptFriendRequest(ctx context.Context, input *FriendRequestFromInput) (*MessageOutput, error) {
	me, other, err := s.requestParties(ctx, input.From)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Friend.AcceptRequest(ctx, other, me); err != nil {
		return nil, err
	}

	return message("Accepted request!"), nil
}

func (s *Server) handleRejectFriendRequest(ctx context.Context, input *FriendRequestFromInput) (*MessageOutput, error) {
	me, other, err := s.requestParties(ctx, input.From)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.RejectRequest(ctx, other, me); err != nil {
		return nil, err
	}

	return message("Rejected request!"), nil
}

// requestParties resolves the caller and the user named in the path.
func (s *Server) requestParties(ctx context.Context, username string) (me, other *domain.User, err error) {
	me, err = s.RequireUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	other, err = s.services.User.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	return me, other, nil
}
