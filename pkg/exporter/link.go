package exporter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LinkExtractor locates the playable link of a video post in its text and
// returns it with the text that remains.
type LinkExtractor func(text string) (link, remaining string)

// LastToken takes the last whitespace-delimited token as the link.
// A text without whitespace is returned whole as the link.
func LastToken(text string) (string, string) {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	i := strings.LastIndexFunc(trimmed, unicode.IsSpace)
	if i < 0 {
		return trimmed, ""
	}
	_, size := utf8.DecodeRuneInString(trimmed[i:])
	return trimmed[i+size:], strings.TrimSpace(trimmed[:i])
}
