package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var feedExtensions = []string{".xml", ".rss", ".atom", ".rdf"}

// Fetcher retrieves a source and converts it into TextUnits. It is the
// input boundary of the detection pipeline: everything downstream works on
// already-fetched plain text.
type Fetcher struct {
	client         *http.Client
	feedParser     *FeedParser
	extractor      *ContentExtractor
	userAgent      string
	timeout        time.Duration
	extractContent bool
}

func NewFetcher(client *http.Client, userAgent string, timeout time.Duration, extractContent bool) *Fetcher {
	return &Fetcher{
		client:         client,
		feedParser:     NewFeedParser(),
		extractor:      NewContentExtractor(),
		userAgent:      userAgent,
		timeout:        timeout,
		extractContent: extractContent,
	}
}

// Fetch resolves the source kind, retrieves its content and returns the
// TextUnits to scan. Transport errors are returned to the caller, which
// skips the source and continues the run.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (Source, []TextUnit, error) {
	src.Kind = f.resolveKind(ctx, src.URL)

	data, err := f.get(ctx, src.URL)
	if err != nil {
		return src, nil, err
	}

	switch src.Kind {
	case KindFeed:
		units, err := f.feedParser.Run(src, data)
		if err != nil {
			return src, nil, err
		}
		if f.extractContent {
			f.enrichUnits(ctx, units)
		}
		return src, units, nil
	default:
		text, err := PageText(data)
		if err != nil {
			return src, nil, err
		}
		return src, []TextUnit{{Source: src, Link: src.URL, Body: text}}, nil
	}
}

// resolveKind sniffs whether a URL serves a feed: first by path extension,
// then by the Content-Type reported to a HEAD request. HEAD failures are
// not fatal; the source just falls back to HTML handling.
func (f *Fetcher) resolveKind(ctx context.Context, rawURL string) Kind {
	if u, err := url.Parse(rawURL); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		for _, fe := range feedExtensions {
			if ext == fe {
				return KindFeed
			}
		}
	}

	headCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(headCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return KindHTML
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return KindHTML
	}
	defer resp.Body.Close()

	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	for _, token := range []string{"rss", "atom", "xml"} {
		if strings.Contains(ctype, token) {
			return KindFeed
		}
	}
	return KindHTML
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// enrichUnits follows each entry link and appends the readable article text
// to the unit body. Extraction failures leave the unit as-is.
func (f *Fetcher) enrichUnits(ctx context.Context, units []TextUnit) {
	for i := range units {
		if units[i].Link == "" {
			continue
		}
		data, err := f.get(ctx, units[i].Link)
		if err != nil {
			slog.Debug("Skipping content extraction", "link", units[i].Link, "error", err)
			continue
		}
		text, err := f.extractor.Run(data)
		if err != nil {
			slog.Debug("Skipping content extraction", "link", units[i].Link, "error", err)
			continue
		}
		units[i].Body = joinNonEmpty(units[i].Body, text)
	}
}
