// Package search indexes posts into Bleve for full-text lookup.
//
// The index stores just enough of each post (author, audience) for callers to
// decide visibility without a round trip to the store for every hit.
package search

import (
	"github.com/circleapp/circle-server/internal/domain"
)

// PostDocument is the indexed form of a post.
type PostDocument struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`

	// Searchable text.
	Author  string `json:"author"` // username at index time
	Content string `json:"content"`
	Prompt  string `json:"prompt,omitempty"`

	// Audience label id, empty when the post is public to friends.
	Audience string `json:"audience,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// ToMap converts the document to the lowercase field names used by the mapping.
func (d *PostDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"author_id":  d.AuthorID,
		"author":     d.Author,
		"content":    d.Content,
		"created_at": d.CreatedAt,
	}
	if d.Prompt != "" {
		m["prompt"] = d.Prompt
	}
	if d.Audience != "" {
		m["audience"] = d.Audience
	}
	return m
}

// NewPostDocument builds the document for post. The author's username is
// passed in because the search package does not read from the store.
func NewPostDocument(post *domain.Post, username string) *PostDocument {
	doc := &PostDocument{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Author:    username,
		Content:   post.Content,
		CreatedAt: post.CreatedAt.UnixMilli(),
	}
	if text, ok := domain.PromptText(post.Prompt, username); ok {
		doc.Prompt = text
	}
	if post.HasAudience() {
		doc.Audience = *post.Audience
	}
	return doc
}
