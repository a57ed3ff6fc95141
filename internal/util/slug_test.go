package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "EVERYONE", "everyone"},
		{"spaces to dashes", "close friends", "close-friends"},
		{"underscores to dashes", "close_friends", "close-friends"},
		{"already a slug", "close-friends", "close-friends"},
		{"trim whitespace", "  everyone  ", "everyone"},
		{"multiple spaces", "close   friends", "close-friends"},
		{"accents folded", "Café Crew", "cafe-crew"},
		{"emoji dropped", "🌻 Garden Club", "garden-club"},
		{"punctuation", "Family & Friends!", "family-friends"},
		{"apostrophe", "mom's side", "mom-s-side"},
		{"leading and trailing dashes", "--everyone--", "everyone"},
		{"numbers kept", "Class of 2020", "class-of-2020"},
		{"empty", "", ""},
		{"only symbols", "!@#$%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
