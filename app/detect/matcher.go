package detect

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

const (
	// snippetContext is the number of bytes of evidence kept on each side
	// of a product or version occurrence.
	snippetContext = 120
	// fuzzyScanWindow bounds how much text the partial-ratio scan sees.
	fuzzyScanWindow = 4000
	// fuzzySnippetLen is the evidence length reported on a fuzzy-only match.
	fuzzySnippetLen = 600
)

// MatchResult is the outcome of matching one product against one text.
// Version is empty when the product matched without a confirmed version.
type MatchResult struct {
	Version string
	Snippet string
}

// Matcher locates product (and optionally version) mentions in text.
// Exact case-insensitive substring search first, with a fuzzy
// partial-similarity rescue for product names of at least MinNameLen runes.
type Matcher struct {
	Threshold  int // fuzzy similarity threshold, 0-100
	MinNameLen int // minimum product name length for the fuzzy rescue
}

func NewMatcher(threshold, minNameLen int) *Matcher {
	return &Matcher{Threshold: threshold, MinNameLen: minNameLen}
}

// Match evaluates listed versions in order and falls back to a bare-name
// match, so a product mention without a confirmed version still counts,
// reported with an empty version. At most one result per call.
func (m *Matcher) Match(name string, versions []string, text string) (MatchResult, bool) {
	for _, v := range versions {
		if res, ok := m.matchOne(name, v, text); ok {
			return res, true
		}
	}
	return m.matchOne(name, "", text)
}

func (m *Matcher) matchOne(name, version, text string) (MatchResult, bool) {
	pn := strings.ToLower(strings.TrimSpace(name))
	if pn == "" {
		return MatchResult{}, false
	}
	lower := strings.ToLower(text)

	idx := strings.Index(lower, pn)
	if idx < 0 {
		// A fuzzy hit cannot confirm a version, so the rescue only applies
		// to the bare-name pass, and only for names long enough to carry
		// signal.
		if isWildcard(version) && len([]rune(pn)) >= m.MinNameLen &&
			fuzzy.PartialRatio(pn, head(lower, fuzzyScanWindow)) >= m.Threshold {
			return MatchResult{Snippet: head(text, fuzzySnippetLen)}, true
		}
		return MatchResult{}, false
	}

	if version == "" || isWildcard(version) {
		return MatchResult{Version: "", Snippet: window(text, idx, len(pn))}, true
	}

	ver := strings.ToLower(strings.TrimSpace(version))
	if j := strings.Index(lower, ver); j >= 0 {
		return MatchResult{Version: strings.TrimSpace(version), Snippet: window(text, j, len(ver))}, true
	}
	return MatchResult{}, false
}

func isWildcard(version string) bool {
	v := strings.TrimSpace(version)
	return v == "" || v == "*"
}

// window slices text around [idx, idx+length) with snippetContext bytes of
// context on each side, clamped to the text bounds.
func window(text string, idx, length int) string {
	start := idx - snippetContext
	if start < 0 {
		start = 0
	}
	end := idx + length + snippetContext
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

func head(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}
