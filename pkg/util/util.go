// Package util provides small shared helpers.
package util

import (
	"golang.org/x/oauth2"
)

// TitleMaxRunes is how much of the first utterance becomes a conversation title.
const TitleMaxRunes = 50

// TruncateTitle cuts s to maxRunes characters and appends "..." when it had to cut.
// Counting is by rune so multi-byte text is never split mid-character.
// Parameters:
//   - s: source text
//   - maxRunes: characters to keep
//
// Returns:
//   - string: s unchanged, or its prefix followed by "..."
func TruncateTitle(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// GenerateState returns a random URL-safe token for the OAuth state parameter:
// 32 random bytes, base64url without padding (43 characters).
func GenerateState() string {
	return oauth2.GenerateVerifier()
}

// StringPtr returns a pointer to s, or nil for the empty string.
// Used for nullable columns.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, treating nil as "".
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
