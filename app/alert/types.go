package alert

import "time"

// Record is the persisted form of an alert. Created exactly once per
// distinct key; never updated or deleted by the watcher.
type Record struct {
	Key        string
	Product    string
	Editor     string
	Version    string
	URL        string
	SourceName string
	EntryID    string
	Title      string
	Severity   string
	CVSS       string
	CVE        string // comma-joined CVE list, first-seen order
	FoundAt    time.Time
}

// Event is what gets handed to delivery sinks for a novel finding.
type Event struct {
	Subject    string
	Product    string
	Editor     string
	Version    string
	SourceName string
	SourceType string
	URL        string
	Severity   string
	CVSS       string
	CVE        string
	Title      string
	EntryID    string
	Snippet    string
}

// Sink delivers one alert event. Delivery is best-effort: a failing sink is
// logged by the caller and never retried, the persisted record is the
// durable trail.
type Sink interface {
	Deliver(ev Event) error
}
