package detect

// Policy is the acceptance predicate applied to the indicators of a
// matched text unit.
type Policy struct {
	MinSeverity Severity
	RequireCVE  bool
}

// Accepts reports whether the extracted indicators are worth alerting on.
// A finding without a determined severity is always rejected.
func (p Policy) Accepts(ind Indicators) bool {
	if p.RequireCVE && len(ind.CVEs) == 0 {
		return false
	}
	if ind.Severity == SeverityUnknown {
		return false
	}
	return ind.Severity.Rank() >= p.MinSeverity.Rank()
}
