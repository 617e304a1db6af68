package catalog

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestSplitVersions(t *testing.T) {
	cases := []struct {
		cell     string
		expected []string
	}{
		{"2.0", []string{"2.0"}},
		{"2.0;3.0", []string{"2.0", "3.0"}},
		{"2.0, 3.0", []string{"2.0", "3.0"}},
		{"2.0|3.0", []string{"2.0", "3.0"}},
		{"2.0\n3.0", []string{"2.0", "3.0"}},
		{"2.0<br>3.0<br/>4.0", []string{"2.0", "3.0", "4.0"}},
		{"2.0; 2.0, 3.0", []string{"2.0", "3.0"}}, // duplicates removed
		{"  ", nil},
		{"", nil},
	}

	for _, c := range cases {
		if got := SplitVersions(c.cell); !reflect.DeepEqual(got, c.expected) {
			t.Errorf("SplitVersions(%q): expected %v, got %v", c.cell, c.expected, got)
		}
	}
}

func writeTestCatalog(t *testing.T, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, axis, cell); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "productos.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestCatalog(t, [][]string{
		{"Nombre", "Editor", "Versiones - Nombre"},
		{"Acme", "Acme Corp", "2.0;3.0"},
		{"OpenSSL", "", ""},
		{"", "Ghost Editor", "1.0"}, // no name, skipped
	})

	products, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(products))
	}

	acme := products[0]
	if acme.Name != "Acme" || acme.Editor != "Acme Corp" {
		t.Errorf("Unexpected first product: %+v", acme)
	}
	if !reflect.DeepEqual(acme.Versions, []string{"2.0", "3.0"}) {
		t.Errorf("Expected versions [2.0 3.0], got %v", acme.Versions)
	}

	if products[1].Name != "OpenSSL" {
		t.Errorf("Unexpected second product: %+v", products[1])
	}
	if len(products[1].Versions) != 0 {
		t.Errorf("Expected no versions, got %v", products[1].Versions)
	}
}

func TestLoad_CaseInsensitiveHeaders(t *testing.T) {
	path := writeTestCatalog(t, [][]string{
		{"NOMBRE", "editor", "versiones"},
		{"Acme", "Acme Corp", "1.0"},
	})

	products, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Editor != "Acme Corp" {
		t.Errorf("Unexpected products: %+v", products)
	}
}

func TestLoad_MissingNameColumn(t *testing.T) {
	path := writeTestCatalog(t, [][]string{
		{"Producto", "Editor"},
		{"Acme", "Acme Corp"},
	})

	if _, err := Load(path); err == nil {
		t.Error("Expected an error for a catalog without a 'Nombre' column")
	}
}

func TestLoad_NoValidProducts(t *testing.T) {
	path := writeTestCatalog(t, [][]string{
		{"Nombre", "Editor"},
		{"", ""},
	})

	if _, err := Load(path); err == nil {
		t.Error("Expected an error for a catalog without valid products")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Error("Expected an error for a missing catalog file")
	}
}
