package validation

import (
	"os"
	"strings"
	"testing"
)

func TestValidateClientID(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		expected bool
	}{
		{"Valid UUID", "11111111-1111-1111-1111-111111111111", true},
		{"Valid UUID with hex letters", "a1b2c3d4-e5f6-7a8b-9c0d-e1f2a3b4c5d6", true},
		{"Empty", "", false},
		{"Missing dashes", "11111111111111111111111111111111", false},
		{"Too short", "1111-1111", false},
		{"Non-hex characters", "zzzzzzzz-1111-1111-1111-111111111111", false},
		{"Surrounding whitespace", "  11111111-1111-1111-1111-111111111111  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateClientID(tt.clientID); got != tt.expected {
				t.Errorf("ValidateClientID(%q) = %v, want %v", tt.clientID, got, tt.expected)
			}
		})
	}
}

func TestTrimAndLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"Trims whitespace", "  hello  ", 100, "hello"},
		{"Truncates", strings.Repeat("a", 10), 5, "aaaaa"},
		{"No limit", "hello", 0, "hello"},
		{"Under limit", "hi", 5, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndLimit(tt.input, tt.max); got != tt.expected {
				t.Errorf("TrimAndLimit(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}

func TestMaxMessageLengthDefaults(t *testing.T) {
	os.Unsetenv("MAX_MESSAGE_LENGTH")
	if got := MaxMessageLength(); got != 4000 {
		t.Errorf("MaxMessageLength() = %d, want 4000", got)
	}

	os.Setenv("MAX_MESSAGE_LENGTH", "1000")
	defer os.Unsetenv("MAX_MESSAGE_LENGTH")
	if got := MaxMessageLength(); got != 1000 {
		t.Errorf("MaxMessageLength() = %d, want 1000", got)
	}

	os.Setenv("MAX_MESSAGE_LENGTH", "garbage")
	if got := MaxMessageLength(); got != 4000 {
		t.Errorf("MaxMessageLength() with bad env = %d, want 4000", got)
	}
}
