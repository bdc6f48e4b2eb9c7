package utils

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^<]+?>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripHTMLTags replaces every markup tag with a single space. Pattern
// substitution, not a full HTML parser, to keep the extracted text
// byte-compatible with the existing client.
func StripHTMLTags(s string) string {
	return htmlTagRegex.ReplaceAllString(s, " ")
}

// CollapseWhitespace folds runs of whitespace into single spaces and trims
// the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
