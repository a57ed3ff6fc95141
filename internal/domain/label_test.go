package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItems_AddContains(t *testing.T) {
	var items Items
	assert.False(t, items.Contains("user-1"))

	items = items.Add("user-1").Add("user-2")
	assert.True(t, items.Contains("user-1"))
	assert.Equal(t, Items{"user-1", "user-2"}, items)
}

func TestItems_RemoveFirstOccurrenceOnly(t *testing.T) {
	items := Items{"a", "b", "a", "c"}

	got, ok := items.Remove("a")
	assert.True(t, ok)
	assert.Equal(t, Items{"b", "a", "c"}, got)

	// Original slice is untouched.
	assert.Equal(t, Items{"a", "b", "a", "c"}, items)
}

func TestItems_RemoveMissing(t *testing.T) {
	items := Items{"a"}

	got, ok := items.Remove("z")
	assert.False(t, ok)
	assert.Equal(t, items, got)

	got, ok = Items(nil).Remove("a")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestUserLabel_IsAuthor(t *testing.T) {
	label := &UserLabel{AuthorID: "user-1"}

	assert.True(t, label.IsAuthor("user-1"))
	assert.False(t, label.IsAuthor("user-2"))
}
