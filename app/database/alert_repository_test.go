package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/crobledo/vulnwatch/app/alert"
)

func newTestRepository(t *testing.T) *AlertRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "vulnwatch.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	return NewAlertRepository(db)
}

func testRecord(key string) alert.Record {
	return alert.Record{
		Key:        key,
		Product:    "Acme",
		Editor:     "Acme Corp",
		Version:    "3.0",
		URL:        "https://example.com/advisory-1",
		SourceName: "Advisories",
		EntryID:    "advisory-1",
		Title:      "Acme 3.0 critical flaw",
		Severity:   "HIGH",
		CVSS:       "8.1",
		CVE:        "CVE-2024-1234",
		FoundAt:    time.Now().UTC(),
	}
}

func TestAlertRepository_InsertAndExists(t *testing.T) {
	repo := newTestRepository(t)

	exists, err := repo.Exists("k1")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("Expected key to be absent before insert")
	}

	if err := repo.Insert(testRecord("k1")); err != nil {
		t.Fatal(err)
	}

	exists, err = repo.Exists("k1")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("Expected key to exist after insert")
	}
}

func TestAlertRepository_DuplicateKey(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.Insert(testRecord("k1")); err != nil {
		t.Fatal(err)
	}

	err := repo.Insert(testRecord("k1"))
	if !errors.Is(err, alert.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 record after duplicate insert, got %d", count)
	}
}

func TestAlertRepository_ZeroFoundAtDefaults(t *testing.T) {
	repo := newTestRepository(t)

	rec := testRecord("k1")
	rec.FoundAt = time.Time{}
	if err := repo.Insert(rec); err != nil {
		t.Fatal(err)
	}

	exists, err := repo.Exists("k1")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("Expected record with defaulted timestamp to be stored")
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := NewConnection(filepath.Join(t.TempDir(), "vulnwatch.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
	if version == 0 {
		t.Error("Expected a non-zero migration version")
	}
}
