package forms

import (
	"fmt"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup tags, replacing each with a space so adjacent
// words do not merge.
func StripHTML(s string) string {
	return tagPattern.ReplaceAllString(s, " ")
}

// WordCount counts whitespace-separated words after stripping markup.
func WordCount(s string) int {
	return len(strings.Fields(StripHTML(s)))
}

// CheckWordLimit returns an error naming the limit when the HTML-stripped
// word count of s exceeds max.
func CheckWordLimit(field, s string, max int) error {
	if n := WordCount(s); n > max {
		return fmt.Errorf("%s exceeds the %d word limit (%d words)", field, max, n)
	}
	return nil
}
