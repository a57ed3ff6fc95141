package domain

import "time"

// RequestStatus is the state of a friend request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// FriendRequest is a directed request from one user to another.
type FriendRequest struct {
	Entity
	FromID string        `json:"from"`
	ToID   string        `json:"to"`
	Status RequestStatus `json:"status"`
}

// IsPending reports whether the request still awaits an answer.
func (r *FriendRequest) IsPending() bool {
	return r.Status == RequestPending
}

// Friendship is a symmetric edge between two users. User1/User2 carry no ordering meaning.
type Friendship struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1"`
	User2ID   string    `json:"user2"`
	CreatedAt time.Time `json:"created_at"`
}

// Other returns the friend of userID on this edge, or "" if userID is not on it.
func (f *Friendship) Other(userID string) string {
	switch userID {
	case f.User1ID:
		return f.User2ID
	case f.User2ID:
		return f.User1ID
	default:
		return ""
	}
}
