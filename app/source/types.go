package source

import "strings"

type Kind string

const (
	KindUnknown Kind = ""
	KindFeed    Kind = "RSS"
	KindHTML    Kind = "HTML"
)

// Source is one watched text source. Kind is resolved at fetch time from
// the URL path or the response Content-Type.
type Source struct {
	Name string
	URL  string
	Kind Kind
}

// TextUnit is one unit of fetched content to scan: the whole page for an
// HTML source, or one entry for a feed source.
type TextUnit struct {
	Source  Source
	EntryID string // feed entry GUID, falling back to its link; empty for HTML
	Link    string // entry link, falling back to the source URL
	Title   string
	Body    string
}

// Text returns the combined text indicators and matches are evaluated on.
func (u TextUnit) Text() string {
	if u.Title == "" {
		return u.Body
	}
	return u.Title + " " + u.Body
}

// joinNonEmpty glues parts with single spaces, skipping empties.
func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
