// Package id generates identifiers for stored entities and requests.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes.
const (
	PrefixUser     = "user"
	PrefixSession  = "session"
	PrefixToken    = "token"
	PrefixLabel    = "label"
	PrefixAppLabel = "applabel"
	PrefixPost     = "post"
	PrefixRequest  = "freq"
	PrefixFriend   = "friend"
	PrefixFilter   = "filter"
	PrefixClient   = "sse"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "label-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// HasPrefix reports whether id was generated with prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-") && len(id) > len(prefix)+1
}

// RequestID returns a fresh correlation ID for an inbound HTTP request.
func RequestID() string {
	return uuid.NewString()
}
