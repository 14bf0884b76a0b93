// Package textx contains text normalisation helpers.
package textx

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxFilenameBytes bounds a sanitised filename.
const MaxFilenameBytes = 200

const fallbackFilename = "file"

// SanitizeFilename turns a client supplied name into something safe to embed
// in a storage path: invalid UTF-8 and control characters are dropped, path
// separators become underscores, the text is NFC normalised and truncated to
// MaxFilenameBytes without splitting a rune.
func SanitizeFilename(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(b.String())
	out = truncate(out, MaxFilenameBytes)
	out = strings.TrimSpace(out)

	if out == "" || out == "." || out == ".." {
		return fallbackFilename
	}
	return out
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
