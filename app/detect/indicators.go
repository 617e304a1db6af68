package detect

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Indicators are the security signals extracted from one text unit.
// They are derived, never persisted on their own.
type Indicators struct {
	CVEs     []string
	Severity Severity
	CVSS     float64
	HasCVSS  bool
}

var (
	cveRe  = regexp.MustCompile(`(?i)\bCVE-\d{4}-\d{4,7}\b`)
	cvssRe = regexp.MustCompile(`(?i)cvss[^0-9]{0,15}(\d{1,2}\.\d)\b`)
	// Severity keywords in English and Spanish, matched after accent folding
	// so "crítica" and "critica" hit the same token.
	severityTokenRe = regexp.MustCompile(`(?i)\b(critical|critica|critico|high|alta|alto|medium|media|moderada|low|baja|bajo)\b`)
)

var severityTokens = map[string]Severity{
	"critical": SeverityCritical,
	"critica":  SeverityCritical,
	"critico":  SeverityCritical,
	"high":     SeverityHigh,
	"alta":     SeverityHigh,
	"alto":     SeverityHigh,
	"medium":   SeverityMedium,
	"media":    SeverityMedium,
	"moderada": SeverityMedium,
	"low":      SeverityLow,
	"baja":     SeverityLow,
	"bajo":     SeverityLow,
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// ExtractIndicators scans text for CVE identifiers, a severity keyword and
// a CVSS score. When no severity keyword is present but a CVSS score is,
// the severity is inferred from the score. Pure and safe for concurrent use.
func ExtractIndicators(text string) Indicators {
	var ind Indicators

	for _, raw := range cveRe.FindAllString(text, -1) {
		cve := strings.ToUpper(raw)
		if !slices.Contains(ind.CVEs, cve) {
			ind.CVEs = append(ind.CVEs, cve)
		}
	}

	folded := foldAccents(text)
	if m := severityTokenRe.FindString(folded); m != "" {
		ind.Severity = severityTokens[strings.ToLower(m)]
	}

	if m := cvssRe.FindStringSubmatch(folded); m != nil {
		if score, err := strconv.ParseFloat(m[1], 64); err == nil {
			ind.CVSS = score
			ind.HasCVSS = true
			if ind.Severity == SeverityUnknown {
				ind.Severity = SeverityFromCVSS(score)
			}
		}
	}

	return ind
}

// CVSSString renders the score the way it was written in the source text,
// one decimal place, or "" when no score was found.
func (i Indicators) CVSSString() string {
	if !i.HasCVSS {
		return ""
	}
	return strconv.FormatFloat(i.CVSS, 'f', 1, 64)
}
