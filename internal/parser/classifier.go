package parser

import "strings"

// Classifier decides whether anchor text names an announcement. The link
// classifier is a heuristic over one page's anchor text, so it is kept as a
// pluggable strategy rather than hardcoded in the parser.
type Classifier interface {
	Match(text string) bool
}

// KeywordClassifier matches text containing at least one configured keyword,
// case-sensitive substring semantics.
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier builds a classifier over the given keyword set.
func NewKeywordClassifier(keywords []string) *KeywordClassifier {
	return &KeywordClassifier{keywords: keywords}
}

// Match reports whether text contains any keyword.
func (c *KeywordClassifier) Match(text string) bool {
	if text == "" {
		return false
	}
	for _, kw := range c.keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
