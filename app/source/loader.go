package source

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LoadSources reads the tab-separated source list (name<TAB>url per line).
// Malformed lines and non-http(s) URLs are skipped with a warning; an empty
// result is an error because the run would have nothing to scan.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source list %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read source list %s: %w", path, err)
	}

	var sources []Source
	for i, record := range records {
		if len(record) < 2 {
			slog.Warn("Skipping source line with fewer than two fields", "file", path, "line", i+1)
			continue
		}
		name := strings.TrimSpace(record[0])
		url := strings.TrimSpace(record[1])
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			slog.Warn("Skipping source with invalid URL", "file", path, "line", i+1, "url", url)
			continue
		}
		if name == "" {
			name = "Unnamed source"
		}
		sources = append(sources, Source{Name: name, URL: url})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("source list %s contains no valid 'name<TAB>url' lines", path)
	}
	return sources, nil
}
