package alert

import "testing"

func TestKey_Deterministic(t *testing.T) {
	a := Key("Acme", "3.0", "https://example.com/feed.xml", "entry-1")
	b := Key("Acme", "3.0", "https://example.com/feed.xml", "entry-1")
	if a != b {
		t.Errorf("Expected identical keys, got %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Expected a 64-char hex digest, got %d chars", len(a))
	}
}

func TestKey_EachComponentMatters(t *testing.T) {
	base := Key("Acme", "3.0", "https://example.com", "entry-1")

	variants := []string{
		Key("Acme2", "3.0", "https://example.com", "entry-1"),
		Key("Acme", "2.0", "https://example.com", "entry-1"),
		Key("Acme", "3.0", "https://other.example.com", "entry-1"),
		Key("Acme", "3.0", "https://example.com", "entry-2"),
		Key("Acme", "", "https://example.com", "entry-1"),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("Variant %d yielded the same key as base", i)
		}
	}
}

func TestKey_EmptyComponents(t *testing.T) {
	a := Key("Acme", "", "https://example.com", "")
	b := Key("Acme", "", "https://example.com", "")
	if a != b {
		t.Error("Expected identical keys for identical empty components")
	}
}
