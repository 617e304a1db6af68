package detect

import (
	"strings"
	"testing"
)

func newTestMatcher() *Matcher {
	return NewMatcher(82, 5)
}

func TestMatch_VersionPriority(t *testing.T) {
	m := newTestMatcher()

	res, ok := m.Match("Acme", []string{"2.0", "3.0"}, "Acme 3.0 critical flaw CVE-2024-1234")
	if !ok {
		t.Fatal("Expected a match")
	}
	if res.Version != "3.0" {
		t.Errorf("Expected matched version '3.0', got %q", res.Version)
	}
	if !strings.Contains(res.Snippet, "3.0") {
		t.Errorf("Expected snippet around the version occurrence, got %q", res.Snippet)
	}
}

func TestMatch_FirstListedVersionWins(t *testing.T) {
	m := newTestMatcher()

	res, ok := m.Match("Acme", []string{"2.0", "3.0"}, "Acme 2.0 and Acme 3.0 both affected")
	if !ok {
		t.Fatal("Expected a match")
	}
	if res.Version != "2.0" {
		t.Errorf("Expected first listed version '2.0' to win, got %q", res.Version)
	}
}

func TestMatch_BareNameFallback(t *testing.T) {
	m := newTestMatcher()

	res, ok := m.Match("Acme", []string{"2.0", "3.0"}, "Acme has issues")
	if !ok {
		t.Fatal("Expected a bare-name fallback match")
	}
	if res.Version != "" {
		t.Errorf("Expected empty matched version, got %q", res.Version)
	}
	if res.Snippet == "" {
		t.Error("Expected a non-empty snippet")
	}
}

func TestMatch_EmptyVersionList(t *testing.T) {
	m := newTestMatcher()

	res, ok := m.Match("Acme", nil, "Acme vulnerability disclosed")
	if !ok {
		t.Fatal("Expected a match with an empty version list")
	}
	if res.Version != "" {
		t.Errorf("Expected empty matched version, got %q", res.Version)
	}
}

func TestMatch_WildcardVersion(t *testing.T) {
	m := newTestMatcher()

	res, ok := m.Match("Acme", []string{"*"}, "Acme vulnerability disclosed")
	if !ok {
		t.Fatal("Expected a match with a wildcard version")
	}
	if res.Version != "" {
		t.Errorf("Expected wildcard to report an empty version, got %q", res.Version)
	}
}

func TestMatch_CaseInsensitive(t *testing.T) {
	m := newTestMatcher()

	if _, ok := m.Match("OpenSSL", []string{"1.1.1"}, "OPENSSL 1.1.1 affected"); !ok {
		t.Error("Expected a case-insensitive match")
	}
}

func TestMatch_NoMention(t *testing.T) {
	m := newTestMatcher()

	if _, ok := m.Match("Acme", []string{"2.0"}, "Completely unrelated content"); ok {
		t.Error("Expected no match for unrelated text")
	}
}

func TestMatch_FuzzyRescue(t *testing.T) {
	m := newTestMatcher()

	res, ok := m.Match("OpenSSL-Suite", nil, "Open SSL Suite vulnerability reported upstream")
	if !ok {
		t.Fatal("Expected a fuzzy match for a near-miss product name")
	}
	if res.Version != "" {
		t.Errorf("Fuzzy match must report an empty version, got %q", res.Version)
	}
	if res.Snippet == "" {
		t.Error("Expected a non-empty fuzzy snippet")
	}
}

func TestMatch_FuzzyRejectsUnrelatedText(t *testing.T) {
	m := newTestMatcher()

	if _, ok := m.Match("OpenSSL-Suite", nil, "Completely different content"); ok {
		t.Error("Expected no fuzzy match against unrelated text")
	}
}

func TestMatch_NoFuzzyForShortNames(t *testing.T) {
	m := newTestMatcher()

	// "Git" is below the minimum fuzzy name length; a near-miss spelling
	// must not be rescued.
	if _, ok := m.Match("Git", nil, "G1t repository hosting flaw"); ok {
		t.Error("Expected no fuzzy rescue for short product names")
	}
}

func TestMatch_FuzzyVersionNeverConfirmed(t *testing.T) {
	m := newTestMatcher()

	res, ok := m.Match("OpenSSL-Suite", []string{"3.1"}, "Open SSL Suite 3.1 flaw")
	if !ok {
		t.Fatal("Expected a fuzzy match")
	}
	if res.Version != "" {
		t.Errorf("A fuzzy hit cannot confirm a version, got %q", res.Version)
	}
}

func TestMatch_EmptyProductName(t *testing.T) {
	m := newTestMatcher()

	if _, ok := m.Match("  ", []string{"1.0"}, "anything"); ok {
		t.Error("Expected no match for an empty product name")
	}
}

func TestMatch_SnippetWindow(t *testing.T) {
	m := newTestMatcher()

	pad := strings.Repeat("x", 500)
	text := pad + " Acme 2.0 affected " + pad
	res, ok := m.Match("Acme", []string{"2.0"}, text)
	if !ok {
		t.Fatal("Expected a match")
	}
	if len(res.Snippet) > len("2.0")+2*snippetContext {
		t.Errorf("Snippet too long: %d bytes", len(res.Snippet))
	}
	if !strings.Contains(res.Snippet, "2.0") {
		t.Errorf("Snippet must contain the version occurrence, got %q", res.Snippet)
	}
}

func TestMatch_Deterministic(t *testing.T) {
	m := newTestMatcher()
	text := "Acme 3.0 critical flaw CVE-2024-1234"

	first, ok := m.Match("Acme", []string{"2.0", "3.0"}, text)
	if !ok {
		t.Fatal("Expected a match")
	}
	for i := 0; i < 10; i++ {
		got, ok := m.Match("Acme", []string{"2.0", "3.0"}, text)
		if !ok || got != first {
			t.Fatalf("Run %d differs: %+v vs %+v", i, got, first)
		}
	}
}
