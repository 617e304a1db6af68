package source

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// FeedParser converts raw feed documents into TextUnits, one per entry.
type FeedParser struct {
	parser *gofeed.Parser
}

func NewFeedParser() *FeedParser {
	return &FeedParser{parser: gofeed.NewParser()}
}

// Run parses a feed and returns one TextUnit per entry. The entry ID falls
// back to the entry link when the feed carries no stable identifier, and
// the unit link falls back to the source URL.
func (p *FeedParser) Run(src Source, data []byte) ([]TextUnit, error) {
	feed, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	units := make([]TextUnit, 0, len(feed.Items))
	for _, item := range feed.Items {
		units = append(units, p.normalizeItem(src, item))
	}
	return units, nil
}

func (p *FeedParser) normalizeItem(src Source, item *gofeed.Item) TextUnit {
	unit := TextUnit{
		Source:  src,
		EntryID: cmp.Or(item.GUID, item.Link),
		Link:    cmp.Or(item.Link, src.URL),
		Title:   stripHTML(item.Title),
	}

	summary := stripHTML(item.Description)
	content := stripHTML(item.Content)

	var tags string
	if len(item.Categories) > 0 {
		tags = joinNonEmpty(item.Categories...)
	}

	unit.Body = joinNonEmpty(summary, content, tags)
	return unit
}
