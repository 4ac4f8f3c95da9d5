package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "I feel anxious", "I feel anxious"},
		{"exactly fifty", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"fifty one", strings.Repeat("a", 51), strings.Repeat("a", 50) + "..."},
		{"multibyte", strings.Repeat("é", 60), strings.Repeat("é", 50) + "..."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTitle(tt.in, TitleMaxRunes)
			if got != tt.want {
				t.Errorf("TruncateTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result is not valid UTF-8: %q", got)
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	a, b := GenerateState(), GenerateState()
	if len(a) != 43 || a == b {
		t.Errorf("states %q and %q", a, b)
	}
	if strings.ContainsAny(a, "+/=") {
		t.Errorf("state %q is not URL-safe", a)
	}
}

func TestStringPtr(t *testing.T) {
	if StringPtr("") != nil {
		t.Error("empty string should map to nil")
	}
	if StringValue(StringPtr("x")) != "x" {
		t.Error("round trip lost the value")
	}
	if StringValue(nil) != "" {
		t.Error("nil should read as empty")
	}
}
