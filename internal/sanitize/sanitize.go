package sanitize

import (
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// Filename strips characters that are invalid in file and directory names
// and replaces spaces with underscores. Applying it to an already
// sanitized name yields the same name.
func Filename(name string) string {
	cleaned := unsafeChars.ReplaceAllString(name, "")
	return strings.ReplaceAll(strings.TrimSpace(cleaned), " ", "_")
}

// SKU derives a provider SKU from a product name. Distinct products may
// fold to the same SKU; snapshot rows stay distinguishable by identity
// and timestamp.
func SKU(productName string) string {
	return Filename(productName)
}

// FoldName normalizes a provider or category name for matching:
// lower-cased with all whitespace removed.
func FoldName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}
