package domain

import "time"

// Feed is a user's materialized list of visible post IDs.
// It is rebuilt from scratch on every generation.
type Feed struct {
	OwnerID   string    `json:"owner"`
	Items     []string  `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}
