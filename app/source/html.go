package source

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageText turns an HTML document into plain scan text: script, style and
// noscript subtrees removed, whitespace collapsed to single spaces.
func PageText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	return collapseWhitespace(doc.Text()), nil
}

// stripHTML extracts plain text from an HTML fragment, used on feed fields
// that embed markup. Plain strings pass through untouched.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return collapseWhitespace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
