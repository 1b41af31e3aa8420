package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

// Pseudo-words inserted by Normalize in place of links and numbers
const (
	URLToken = "url"
	NumToken = "num"
)

var (
	urlPattern   = regexp.MustCompile(`http[^\s\v\p{Z}\x{1c}-\x{1f}\x{85}]+`)
	digitPattern = regexp.MustCompile(`\p{Nd}+`)
)

// Normalize maps raw message text to the cleaned form used for both training
// and inference. The steps run in a fixed order: lowercase, replace links,
// replace digit runs, then drop everything that is not a-z or whitespace.
// Whitespace runs are kept as they are.
func Normalize(raw string) string {
	text := strings.ToLower(raw)
	text = urlPattern.ReplaceAllLiteralString(text, " "+URLToken+" ")
	text = digitPattern.ReplaceAllLiteralString(text, " "+NumToken+" ")
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || IsSpace(r) {
			return r
		}
		return -1
	}, text)
}

// IsSpace reports whether r separates words. The ASCII information
// separators U+001C to U+001F count as whitespace alongside unicode.IsSpace.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
