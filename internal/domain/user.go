package domain

import "strings"

// User is an account. Every other record references users by ID.
type User struct {
	Entity
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// NormalizeUsername returns the lookup form of a username.
// Usernames are unique case-insensitively.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
