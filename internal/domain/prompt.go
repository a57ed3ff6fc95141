package domain

import (
	"fmt"
	"strings"
)

// Prompts is the fixed catalog of writing prompts a post can answer.
// A post's Prompt field indexes into it. %s is replaced by the author's username.
var Prompts = []string{
	"What's on your mind, %s?",
	"What made %s smile today?",
	"What is %s grateful for this week?",
	"What has %s been learning lately?",
	"Where would %s rather be right now?",
	"What song is %s listening to on repeat?",
}

// IsPromptSupported reports whether n indexes the catalog.
func IsPromptSupported(n int) bool {
	return n >= 0 && n < len(Prompts)
}

// PromptText renders prompt n for username.
func PromptText(n int, username string) (string, bool) {
	if !IsPromptSupported(n) {
		return "", false
	}
	if !strings.Contains(Prompts[n], "%s") {
		return Prompts[n], true
	}
	return fmt.Sprintf(Prompts[n], username), true
}
