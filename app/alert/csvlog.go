package alert

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

var auditHeader = []string{
	"timestamp", "source_type", "source_name", "url", "product", "editor",
	"version", "severity", "cvss", "cve", "title", "entry_id", "snippet",
}

const auditSnippetLimit = 1000

// AuditLog appends alert rows to a CSV file, writing the header when the
// file is created. Appends are serialized; rows from concurrent source
// scans may land in any order.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

func (l *AuditLog) Append(ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(auditHeader); err != nil {
			return fmt.Errorf("failed to write audit header: %w", err)
		}
	}

	snippet := strings.ReplaceAll(ev.Snippet, "\n", " ")
	if len(snippet) > auditSnippetLimit {
		snippet = snippet[:auditSnippetLimit]
	}

	row := []string{
		time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		ev.SourceType,
		ev.SourceName,
		ev.URL,
		ev.Product,
		ev.Editor,
		ev.Version,
		ev.Severity,
		ev.CVSS,
		ev.CVE,
		ev.Title,
		ev.EntryID,
		snippet,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write audit row: %w", err)
	}

	w.Flush()
	return w.Error()
}
