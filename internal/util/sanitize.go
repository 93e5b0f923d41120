package util

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

const fallbackFilename = "upload.bin"

// SanitizeFilename cleans a client-supplied filename before it is stored
// as originalName: path components, control and invisible characters, and
// filesystem-hostile punctuation are stripped. The name is display
// metadata only, so an unusable input degrades to a fallback rather than
// an error.
func SanitizeFilename(name string) string {
	cleaned := filepath.Base(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned = strings.TrimSpace(invalidFilenameChars.ReplaceAllString(b.String(), "_"))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return fallbackFilename
	}

	// Truncate by runes so multi-byte characters are never split.
	runes := []rune(cleaned)
	if len(runes) > 255 {
		cleaned = string(runes[:255])
	}
	return cleaned
}
