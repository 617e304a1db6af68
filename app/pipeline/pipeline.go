package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/crobledo/vulnwatch/app/alert"
	"github.com/crobledo/vulnwatch/app/catalog"
	"github.com/crobledo/vulnwatch/app/detect"
	"github.com/crobledo/vulnwatch/app/source"
)

// Outcome is the terminal state of one (TextUnit, product) branch. Exactly
// one outcome per branch per run.
type Outcome int

const (
	OutcomeNoMatch Outcome = iota
	OutcomeRejected
	OutcomeDuplicate
	OutcomeNovel
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeRejected:
		return "rejected"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeNovel:
		return "novel"
	default:
		return "unknown"
	}
}

// Stats aggregates branch outcomes over a scan.
type Stats struct {
	Units     int
	NoMatch   int
	Rejected  int
	Duplicate int
	Novel     int
}

func (s *Stats) add(o Outcome) {
	switch o {
	case OutcomeNoMatch:
		s.NoMatch++
	case OutcomeRejected:
		s.Rejected++
	case OutcomeDuplicate:
		s.Duplicate++
	case OutcomeNovel:
		s.Novel++
	}
}

// Merge folds another Stats into this one.
func (s *Stats) Merge(other Stats) {
	s.Units += other.Units
	s.NoMatch += other.NoMatch
	s.Rejected += other.Rejected
	s.Duplicate += other.Duplicate
	s.Novel += other.Novel
}

// Pipeline runs detection over text units: extract indicators once per
// unit, match every catalog product against it, filter through the
// acceptance policy, deduplicate, then persist and deliver novel findings.
// Safe for concurrent use across units; the deduplicator serializes
// key access internally.
type Pipeline struct {
	products []catalog.Product
	matcher  *detect.Matcher
	policy   detect.Policy
	dedup    *alert.Deduplicator
	sinks    []alert.Sink
	audit    *alert.AuditLog // nil when no audit log was requested
}

func New(products []catalog.Product, matcher *detect.Matcher, policy detect.Policy,
	dedup *alert.Deduplicator, sinks []alert.Sink, audit *alert.AuditLog) *Pipeline {
	return &Pipeline{
		products: products,
		matcher:  matcher,
		policy:   policy,
		dedup:    dedup,
		sinks:    sinks,
		audit:    audit,
	}
}

// ScanUnits runs every unit of one fetched source through the pipeline.
func (p *Pipeline) ScanUnits(units []source.TextUnit) (Stats, error) {
	var stats Stats
	for _, unit := range units {
		stats.Units++

		// Indicators are a property of the text, extracted once per unit
		// and reused across all product evaluations.
		indicators := detect.ExtractIndicators(unit.Text())

		for _, product := range p.products {
			outcome, err := p.evaluate(unit, indicators, product)
			if err != nil {
				return stats, err
			}
			stats.add(outcome)
		}
	}
	return stats, nil
}

// evaluate walks one (unit, product) branch to its terminal outcome.
func (p *Pipeline) evaluate(unit source.TextUnit, indicators detect.Indicators, product catalog.Product) (Outcome, error) {
	match, ok := p.matcher.Match(product.Name, product.Versions, unit.Text())
	if !ok {
		return OutcomeNoMatch, nil
	}

	if !p.policy.Accepts(indicators) {
		return OutcomeRejected, nil
	}

	rec := buildRecord(unit, indicators, product, match)
	novel, err := p.dedup.CheckAndInsert(rec)
	if err != nil {
		return OutcomeNoMatch, fmt.Errorf("dedup check for %s: %w", product.Name, err)
	}
	if !novel {
		slog.Debug("Already alerted",
			"product", product.Name,
			"version", match.Version,
			"source", unit.Source.Name,
			"entry_id", unit.EntryID)
		return OutcomeDuplicate, nil
	}

	ev := buildEvent(unit, rec, match.Snippet)
	p.deliver(ev)
	return OutcomeNovel, nil
}

// deliver fans the event out to every sink and the audit log. Failures are
// logged and swallowed: the record is already persisted, so the alert is
// never lost from history even when delivery fails.
func (p *Pipeline) deliver(ev alert.Event) {
	for _, sink := range p.sinks {
		if err := sink.Deliver(ev); err != nil {
			slog.Error("Failed to deliver alert",
				"subject", ev.Subject,
				"source", ev.SourceName,
				"error", err)
		}
	}
	if p.audit != nil {
		if err := p.audit.Append(ev); err != nil {
			slog.Error("Failed to append audit row",
				"subject", ev.Subject,
				"error", err)
		}
	}
}

func buildRecord(unit source.TextUnit, indicators detect.Indicators, product catalog.Product, match detect.MatchResult) alert.Record {
	return alert.Record{
		Key:        alert.Key(product.Name, match.Version, unit.Source.URL, unit.EntryID),
		Product:    product.Name,
		Editor:     product.Editor,
		Version:    match.Version,
		URL:        unit.Link,
		SourceName: unit.Source.Name,
		EntryID:    unit.EntryID,
		Title:      unit.Title,
		Severity:   indicators.Severity.String(),
		CVSS:       indicators.CVSSString(),
		CVE:        strings.Join(indicators.CVEs, ", "),
	}
}

func buildEvent(unit source.TextUnit, rec alert.Record, snippet string) alert.Event {
	return alert.Event{
		Subject:    alert.Subject(rec.Severity, rec.Product, rec.Version),
		Product:    rec.Product,
		Editor:     rec.Editor,
		Version:    rec.Version,
		SourceName: rec.SourceName,
		SourceType: string(unit.Source.Kind),
		URL:        rec.URL,
		Severity:   rec.Severity,
		CVSS:       rec.CVSS,
		CVE:        rec.CVE,
		Title:      rec.Title,
		EntryID:    rec.EntryID,
		Snippet:    snippet,
	}
}
