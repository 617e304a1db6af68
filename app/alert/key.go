package alert

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key derives the deterministic identity of a finding: a SHA-256 digest of
// product name, matched version (or empty), source URL and entry ID (or
// empty). Two findings with the same key are the same alert regardless of
// how their title or snippet drifted.
func Key(product, version, sourceURL, entryID string) string {
	canonical := strings.Join([]string{product, version, sourceURL, entryID}, "||")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
