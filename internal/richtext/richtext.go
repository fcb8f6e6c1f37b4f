// Package richtext flattens the editor's HTML-like markup into plain text.
package richtext

import (
	"html"
	"regexp"
	"strings"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// rules run in order; later rules see the output of earlier ones.
var (
	tagRules = []rule{
		{regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`), "\n"},
		{regexp.MustCompile(`(?i)<\s*/\s*p\s*>`), "\n\n"},
		{regexp.MustCompile(`(?i)<\s*/\s*(div|li)\s*>`), "\n"},
		{regexp.MustCompile(`(?i)<\s*li[^>]*>`), "• "},
		{regexp.MustCompile(`<.*?>`), ""},
	}
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t]{2,}`)
)

// ToPlainText converts markup to plain text: line breaks and block ends become
// newlines, list items get a bullet, remaining tags are dropped and entities
// decoded. Blank input yields "".
func ToPlainText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	s := markup
	for _, r := range tagRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = blankLines.ReplaceAllString(s, "\n\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
