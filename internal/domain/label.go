package domain

import "slices"

// EveryoneLabel is the app label every registered user belongs to.
const EveryoneLabel = "everyone"

// Items is an insertion-ordered list of item identifiers (user or post IDs).
// Callers keep it duplicate-free by checking Contains before Add.
type Items []string

// Contains reports whether item is present.
func (it Items) Contains(item string) bool {
	return slices.Contains(it, item)
}

// Add returns the list with item appended.
func (it Items) Add(item string) Items {
	return append(it, item)
}

// Remove returns the list without the first occurrence of item,
// and whether anything was removed.
func (it Items) Remove(item string) (Items, bool) {
	idx := slices.Index(it, item)
	if idx < 0 {
		return it, false
	}
	return slices.Delete(slices.Clone(it), idx, idx+1), true
}

// UserLabel is a named list owned by its author. Posts use it as an
// audience and feeds use it as a source set.
type UserLabel struct {
	Entity
	Name     string `json:"name"`
	AuthorID string `json:"author"`
	Items    Items  `json:"items"`
}

// IsAuthor reports whether userID owns the label.
func (l *UserLabel) IsAuthor(userID string) bool {
	return l.AuthorID == userID
}

// AppLabel is an application-owned list with a unique identifier and no author.
type AppLabel struct {
	Entity
	Identifier string `json:"identifier"`
	Items      Items  `json:"items"`
}
