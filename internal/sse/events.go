// Package sse pushes live notifications to connected clients with Server-Sent Events.
package sse

import (
	"time"
)

// Circle answers requests synchronously; SSE only tells a client that
// something it cares about changed so it can refetch.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventFriendRequestReceived is sent to the recipient of a friend request.
	EventFriendRequestReceived EventType = "friend.request_received"
	// EventFriendRequestAccepted is sent to the sender when a request is accepted.
	EventFriendRequestAccepted EventType = "friend.request_accepted"

	// EventLabelItemAssigned is sent to a user who was added to someone's label.
	EventLabelItemAssigned EventType = "label.item_assigned"

	// EventFeedUpdated is sent to the owner after their feed is rebuilt.
	EventFeedUpdated EventType = "feed.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID limits delivery to one user's clients. Empty broadcasts.
	UserID string `json:"-"`
}

// FriendRequestEventData is the payload of friend request events.
type FriendRequestEventData struct {
	RequestID string `json:"request_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// LabelItemEventData is the payload of label.item_assigned.
type LabelItemEventData struct {
	LabelID string `json:"label_id"`
	Author  string `json:"author"`
}

// FeedUpdatedEventData is the payload of feed.updated.
type FeedUpdatedEventData struct {
	Label     string `json:"label,omitempty"`
	PostCount int    `json:"post_count"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewFriendRequestReceivedEvent addresses the recipient of a request.
// from and to are usernames.
func NewFriendRequestReceivedEvent(recipientID, requestID, from, to string) Event {
	return Event{
		Type:      EventFriendRequestReceived,
		Data:      FriendRequestEventData{RequestID: requestID, From: from, To: to},
		UserID:    recipientID,
		Timestamp: time.Now(),
	}
}

// NewFriendRequestAcceptedEvent addresses the original sender of a request.
func NewFriendRequestAcceptedEvent(senderID, requestID, from, to string) Event {
	return Event{
		Type:      EventFriendRequestAccepted,
		Data:      FriendRequestEventData{RequestID: requestID, From: from, To: to},
		UserID:    senderID,
		Timestamp: time.Now(),
	}
}

// NewLabelItemAssignedEvent addresses the user who was added to a label.
func NewLabelItemAssignedEvent(memberID, labelID, author string) Event {
	return Event{
		Type:      EventLabelItemAssigned,
		Data:      LabelItemEventData{LabelID: labelID, Author: author},
		UserID:    memberID,
		Timestamp: time.Now(),
	}
}

// NewFeedUpdatedEvent addresses the owner of a rebuilt feed.
func NewFeedUpdatedEvent(ownerID, label string, postCount int) Event {
	return Event{
		Type:      EventFeedUpdated,
		Data:      FeedUpdatedEventData{Label: label, PostCount: postCount},
		UserID:    ownerID,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
