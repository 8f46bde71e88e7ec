package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name untouched",
			input:    "gold-ring.jpg",
			expected: "gold-ring.jpg",
		},
		{
			name:     "spaces become underscores",
			input:    "Gold Ring",
			expected: "Gold_Ring",
		},
		{
			name:     "unsafe characters stripped",
			input:    `Ring: "Deluxe" <Edition>?`,
			expected: "Ring_Deluxe_Edition",
		},
		{
			name:     "path separators stripped",
			input:    `a/b\c`,
			expected: "abc",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  Earrings  ",
			expected: "Earrings",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Filename(tt.input))
		})
	}
}

func TestFilenameIsIdempotent(t *testing.T) {
	inputs := []string{
		"Gold Ring",
		`Ring: "Deluxe"`,
		"  spaced  out  name  ",
		"already_sanitized",
	}

	for _, input := range inputs {
		once := Filename(input)
		assert.Equal(t, once, Filename(once), "input %q", input)
	}
}

func TestSKUMatchesFilename(t *testing.T) {
	assert.Equal(t, "Gold_Ring", SKU("Gold Ring"))
	assert.Equal(t, Filename("Necklace *Special*"), SKU("Necklace *Special*"))
}

func TestFoldName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Rings", "rings"},
		{"removes inner whitespace", "Wedding Rings", "weddingrings"},
		{"collapses tabs and newlines", "Wedding\tRings\n", "weddingrings"},
		{"already folded", "earrings", "earrings"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FoldName(tt.input))
		})
	}
}
