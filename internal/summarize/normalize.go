// Package summarize produces short extractive summaries of issue text by
// scoring sentences against a fixed vocabulary and recombining the best ones.
package summarize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxNormalizedChars bounds normalized text so scoring stays cheap on
// pathological issue bodies.
const maxNormalizedChars = 2000

var (
	codeBlockRE  = regexp.MustCompile("```[^`]*```")
	inlineCodeRE = regexp.MustCompile("`[^`]*`")
	headingRE    = regexp.MustCompile(`#{1,6}\s*`)
	linkRE       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	urlRE        = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
)

// Normalize strips markup noise from raw issue text into a bounded plain-text
// form: whitespace runs collapse to single spaces, fenced code blocks become
// "[code block]", inline code becomes "[code]", heading markers are dropped,
// markdown links keep only their label, and URLs become "[URL]". The result
// is truncated to 2000 characters with a trailing "...".
//
// Empty or whitespace-only input yields "", which downstream stages treat as
// "no content".
func Normalize(raw string) string {
	text := strings.Join(strings.Fields(raw), " ")

	text = codeBlockRE.ReplaceAllString(text, " [code block] ")
	text = inlineCodeRE.ReplaceAllString(text, " [code] ")
	text = headingRE.ReplaceAllString(text, "")
	text = linkRE.ReplaceAllString(text, "$1")
	text = urlRE.ReplaceAllString(text, " [URL] ")

	text = strings.Join(strings.Fields(text), " ")

	// Bound by runes, not bytes, so multibyte text is never cut mid-character.
	if utf8.RuneCountInString(text) > maxNormalizedChars {
		text = string([]rune(text)[:maxNormalizedChars]) + "..."
	}
	return text
}
