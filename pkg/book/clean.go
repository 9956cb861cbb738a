package book

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	startRX = regexp.MustCompile(`(?i)\*\*\* START OF (?:THE|THIS) PROJECT GUTENBERG EBOOK.*?\*\*\*`)
	endRX   = regexp.MustCompile(`(?i)\*\*\* END OF (?:THE|THIS) PROJECT GUTENBERG EBOOK.*?\*\*\*`)
)

// leadingSkip is the number of runes of front matter (title page, contents)
// dropped after the start marker when the text is long enough.
const leadingSkip = 1000

// StripBoilerplate removes the Project Gutenberg header and licence footer.
func StripBoilerplate(raw string) string {
	start, end := 0, len(raw)
	if loc := startRX.FindStringIndex(raw); loc != nil {
		start = loc[1]
	}
	if loc := endRX.FindStringIndex(raw); loc != nil && loc[0] >= start {
		end = loc[0]
	}

	cleaned := strings.TrimSpace(raw[start:end])
	if utf8.RuneCountInString(cleaned) > leadingSkip {
		cleaned = strings.TrimSpace(string([]rune(cleaned)[leadingSkip:]))
	}
	return cleaned
}

// Truncate cuts text to at most n runes. n <= 0 leaves text untouched.
func Truncate(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}
