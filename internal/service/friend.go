package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/circleapp/circle-server/internal/domain"
	domainerrors "github.com/circleapp/circle-server/internal/errors"
	"github.com/circleapp/circle-server/internal/id"
	"github.com/circleapp/circle-server/internal/sse"
	"github.com/circleapp/circle-server/internal/store"
)

// FriendService runs the friend request state machine. Requests go from
// pending to accepted or rejected; an accepted request creates a symmetric
// friendship.
type FriendService struct {
	store   store.Store
	emitter store.EventEmitter
	logger  *slog.Logger
}

// NewFriendService creates a friend service.
func NewFriendService(store store.Store, emitter store.EventEmitter, logger *slog.Logger) *FriendService {
	return &FriendService{
		store:   store,
		emitter: emitter,
		logger:  logger,
	}
}

// FriendRequestView is a request with both ends rendered as usernames.
type FriendRequestView struct {
	ID        string               `json:"id"`
	From      string               `json:"from"`
	To        string               `json:"to"`
	Status    domain.RequestStatus `json:"status"`
	CreatedAt string               `json:"created_at"`
}

// GetFriends returns the IDs of userID's friends, oldest friendship first.
func (s *FriendService) GetFriends(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.store.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// GetFriendUsers returns userID's friends as users.
func (s *FriendService) GetFriendUsers(ctx context.Context, userID string) ([]*domain.User, error) {
	ids, err := s.GetFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load friends: %w", err)
	}
	return users, nil
}

// AreUsersFriends succeeds when a and b are friends and is NOT_ALLOWED otherwise.
func (s *FriendService) AreUsersFriends(ctx context.Context, a, b string) error {
	if _, err := s.store.GetFriendship(ctx, a, b); err != nil {
		if isNotFound(err) {
			return domainerrors.NotAllowed("users are not friends")
		}
		return fmt.Errorf("get friendship: %w", err)
	}
	return nil
}

// SendRequest creates a pending request from -> to.
func (s *FriendService) SendRequest(ctx context.Context, from, to *domain.User) (*domain.FriendRequest, error) {
	if from.ID == to.ID {
		return nil, domainerrors.NotAllowed("You cannot send a request to yourself")
	}
	if err := s.AreUsersFriends(ctx, from.ID, to.ID); err == nil {
		return nil, domainerrors.NotAllowed("You are already friends")
	} else if !domainerrors.Is(err, domainerrors.ErrNotAllowed) {
		return nil, err
	}

	for _, pair := range [][2]string{{from.ID, to.ID}, {to.ID, from.ID}} {
		_, err := s.store.GetPendingRequest(ctx, pair[0], pair[1])
		if err == nil {
			return nil, domainerrors.NotAllowed("A friend request is already pending")
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("check pending request: %w", err)
		}
	}

	reqID, err := id.Generate(id.PrefixRequest)
	if err != nil {
		return nil, fmt.Errorf("generate request ID: %w", err)
	}
	req := &domain.FriendRequest{
		Entity: domain.Entity{ID: reqID},
		FromID: from.ID,
		ToID:   to.ID,
		Status: domain.RequestPending,
	}
	req.InitTimestamps()

	if err := s.store.CreateFriendRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	s.emitter.Emit(sse.NewFriendRequestReceivedEvent(to.ID, req.ID, from.Username, to.Username))
	s.logger.Info("friend request sent", "request_id", req.ID, "from", from.ID, "to", to.ID)
	return req, nil
}

// RemoveRequest withdraws the pending request from -> to.
func (s *FriendService) RemoveRequest(ctx context.Context, from, to *domain.User) error {
	req, err := s.pending(ctx, from, to)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFriendRequest(ctx, req.ID); err != nil {
		return notFound(err, "friend request does not exist")
	}
	s.logger.Info("friend request removed", "request_id", req.ID)
	return nil
}

// AcceptRequest accepts the pending request from -> to and records the friendship.
func (s *FriendService) AcceptRequest(ctx context.Context, from, to *domain.User) (*domain.Friendship, error) {
	req, err := s.pending(ctx, from, to)
	if err != nil {
		return nil, err
	}

	friendID, err := id.Generate(id.PrefixFriend)
	if err != nil {
		return nil, fmt.Errorf("generate friendship ID: %w", err)
	}

	req.Status = domain.RequestAccepted
	req.Touch()
	friendship := &domain.Friendship{
		ID:        friendID,
		User1ID:   from.ID,
		User2ID:   to.ID,
		CreatedAt: req.UpdatedAt,
	}

	if err := s.store.AcceptFriendRequest(ctx, req, friendship); err != nil {
		switch {
		case isNotFound(err):
			return nil, domainerrors.NotFound("friend request does not exist")
		case domainerrors.Is(err, store.ErrAlreadyExists):
			return nil, domainerrors.NotAllowed("You are already friends")
		}
		return nil, fmt.Errorf("accept friend request: %w", err)
	}

	s.emitter.Emit(sse.NewFriendRequestAcceptedEvent(from.ID, req.ID, from.Username, to.Username))
	s.logger.Info("friend request accepted", "request_id", req.ID, "friendship_id", friendship.ID)
	return friendship, nil
}

// RejectRequest rejects the pending request from -> to.
func (s *FriendService) RejectRequest(ctx context.Context, from, to *domain.User) error {
	req, err := s.pending(ctx, from, to)
	if err != nil {
		return err
	}
	req.Status = domain.RequestRejected
	req.Touch()
	if err := s.store.UpdateFriendRequest(ctx, req); err != nil {
		return notFound(err, "friend request does not exist")
	}
	s.logger.Info("friend request rejected", "request_id", req.ID)
	return nil
}

// RemoveFriend ends the friendship between user and friend.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	friendship, err := s.store.GetFriendship(ctx, userID, friendID)
	if err != nil {
		return notFound(err, "users are not friends")
	}
	if err := s.store.DeleteFriendship(ctx, friendship.ID); err != nil {
		return notFound(err, "users are not friends")
	}
	s.logger.Info("friendship removed", "friendship_id", friendship.ID)
	return nil
}

// GetRequests returns every request userID sent or received, newest first.
func (s *FriendService) GetRequests(ctx context.Context, userID string) ([]FriendRequestView, error) {
	reqs, err := s.store.ListFriendRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}

	views := make([]FriendRequestView, 0, len(reqs))
	if len(reqs) == 0 {
		return views, nil
	}

	ids := make([]string, 0, 2*len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.FromID, r.ToID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load request users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	for _, r := range reqs {
		views = append(views, FriendRequestView{
			ID:        r.ID,
			From:      names[r.FromID],
			To:        names[r.ToID],
			Status:    r.Status,
			CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return views, nil
}

func (s *FriendService) pending(ctx context.Context, from, to *domain.User) (*domain.FriendRequest, error) {
	req, err := s.store.GetPendingRequest(ctx, from.ID, to.ID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("no pending request from %s to %s", from.Username, to.Username))
	}
	return req, nil
}
