package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/crobledo/vulnwatch/app/alert"
)

// AlertRepository is the SQLite-backed alert store. Records are insert-only:
// the watcher never updates or deletes them, retention is an external concern.
type AlertRepository struct {
	db *DB
}

var _ alert.Store = (*AlertRepository)(nil)

func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Exists reports whether an alert with the given key has been persisted.
func (r *AlertRepository) Exists(key string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM alerts WHERE key = ? LIMIT 1`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check alert key: %w", err)
	}
	return true, nil
}

// Insert persists a new alert record. Inserting an already-known key
// returns alert.ErrDuplicateKey via the UNIQUE constraint on key.
func (r *AlertRepository) Insert(rec alert.Record) error {
	foundAt := rec.FoundAt
	if foundAt.IsZero() {
		foundAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO alerts (
			key, product, editor, version, url, source_name,
			entry_id, title, severity, cvss, cve, found_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Key, rec.Product, rec.Editor, rec.Version, rec.URL, rec.SourceName,
		rec.EntryID, rec.Title, rec.Severity, rec.CVSS, rec.CVE, foundAt)

	if err != nil {
		if isUniqueViolation(err) {
			return alert.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Count returns the number of persisted alerts.
func (r *AlertRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}
	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT,
		sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
