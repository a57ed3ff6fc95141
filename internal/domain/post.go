package domain

// MaxPostContentLength bounds post content in characters.
const MaxPostContentLength = 2000

// PostOptions holds presentation options for a post.
type PostOptions struct {
	BackgroundColor string `json:"background_color,omitempty"`
}

// Post is authored content. When Audience is set it names a UserLabel
// of the author, and only members of that label may see the post.
type Post struct {
	Entity
	AuthorID string      `json:"author"`
	Content  string      `json:"content"`
	Prompt   int         `json:"prompt"`
	Audience *string     `json:"audience,omitempty"`
	Options  PostOptions `json:"options"`
}

// HasAudience reports whether the post is restricted to a label.
func (p *Post) HasAudience() bool {
	return p.Audience != nil && *p.Audience != ""
}

// VisibleTo reports whether viewerID can see the post given the audience
// label's members. members is ignored for unrestricted posts.
func (p *Post) VisibleTo(viewerID string, members Items) bool {
	if !p.HasAudience() || p.AuthorID == viewerID {
		return true
	}
	return members.Contains(viewerID)
}
