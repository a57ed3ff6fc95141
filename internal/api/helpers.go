package api

import (
	"time"

	"github.com/circleapp/circle-server/internal/color"
	"github.com/circleapp/circle-server/internal/domain"
)

// MessageResponse is a confirmation message.
type MessageResponse struct {
	Message string `json:"msg" doc:"Confirmation message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func message(msg string) *MessageOutput {
	return &MessageOutput{Body: MessageResponse{Message: msg}}
}

// UserResponse contains public user data in API responses.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Username  string    `json:"username" doc:"Username"`
	Color     string    `json:"color" doc:"Avatar color"`
	CreatedAt time.Time `json:"created_at" doc:"Registration time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Color:     color.ForUser(u.ID),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func mapUsers(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, mapUser(u))
	}
	return out
}
