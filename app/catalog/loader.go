package catalog

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Version cells hold delimiter-separated lists; HTML line breaks show up
// when the sheet was exported from a web tool.
var versionSplitRe = regexp.MustCompile(`(?i)(?:<br\s*/?>)|[\n\r;,|]+`)

// SplitVersions splits one version cell into distinct versions, first-seen
// order preserved.
func SplitVersions(cell string) []string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}

	var versions []string
	seen := make(map[string]struct{})
	for _, part := range versionSplitRe.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		versions = append(versions, part)
	}
	return versions
}

// Load reads the product catalog from the first sheet of an XLSX workbook.
// The header row must carry a "Nombre" column; "Editor" is optional and the
// version column is any header containing "versiones". Rows without a
// product name are skipped. An empty catalog is an error: without products
// there is nothing to watch.
func Load(path string) ([]Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("catalog %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}

	nameCol, editorCol, versionsCol := headerColumns(rows[0])
	if nameCol < 0 {
		return nil, fmt.Errorf("catalog %s requires a 'Nombre' column", path)
	}

	var products []Product
	for i, row := range rows[1:] {
		name := cellAt(row, nameCol)
		if name == "" {
			slog.Debug("Skipping catalog row without product name", "row", i+2)
			continue
		}
		p := Product{Name: name}
		if editorCol >= 0 {
			p.Editor = cellAt(row, editorCol)
		}
		if versionsCol >= 0 {
			p.Versions = SplitVersions(cellAt(row, versionsCol))
		}
		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("no valid products found in %s", path)
	}
	return products, nil
}

func headerColumns(header []string) (name, editor, versions int) {
	name, editor, versions = -1, -1, -1
	for i, h := range header {
		switch normalized := strings.ToLower(strings.TrimSpace(h)); {
		case normalized == "nombre":
			name = i
		case normalized == "editor":
			editor = i
		case strings.Contains(normalized, "versiones"):
			versions = i
		}
	}
	return name, editor, versions
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
