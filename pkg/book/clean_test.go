package book

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripBoilerplate_Markers(t *testing.T) {
	raw := "The Project Gutenberg eBook of Emma\nLicence blah\n" +
		"*** START OF THE PROJECT GUTENBERG EBOOK EMMA ***\n\n" +
		"Emma Woodhouse, handsome, clever, and rich.\n\n" +
		"*** END OF THE PROJECT GUTENBERG EBOOK EMMA ***\nMore licence text."

	assert.Equal(t, "Emma Woodhouse, handsome, clever, and rich.", StripBoilerplate(raw))
}

func TestStripBoilerplate_CaseInsensitiveThis(t *testing.T) {
	raw := "header *** start of this project gutenberg ebook x *** body *** End Of This Project Gutenberg EBook x *** footer"
	assert.Equal(t, "body", StripBoilerplate(raw))
}

func TestStripBoilerplate_NoMarkers(t *testing.T) {
	assert.Equal(t, "just text", StripBoilerplate("  just text \n"))
}

func TestStripBoilerplate_SkipsFrontMatter(t *testing.T) {
	front := strings.Repeat("f", leadingSkip)
	raw := "*** START OF THE PROJECT GUTENBERG EBOOK LONG ***" + front + "   Chapter 1. It begins."

	assert.Equal(t, "Chapter 1. It begins.", StripBoilerplate(raw))
}

func TestStripBoilerplate_ExactlyLeadingSkipIsKept(t *testing.T) {
	body := strings.Repeat("x", leadingSkip)
	assert.Equal(t, body, StripBoilerplate(body))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}
