package photosite

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Decisions is the persistence contract the build needs: read-first,
// write-once-per-key access to date overrides and tag answers. DecisionStore
// is the stock implementation.
type Decisions interface {
	ImageDate(id int) (date string, ok bool, err error)
	SetImageDate(id int, date string) error
	TagDecision(tag string) (allowed, ok bool, err error)
	PutTagDecision(tag string, allowed bool) error
}

// DecisionStore persists the two kinds of build decisions that must survive
// across runs: per-image display-date overrides and per-tag allow/deny
// answers. Both follow a read-first, write-once-per-key pattern: once a key
// has a value it is never prompted for again.
type DecisionStore struct {
	db *sql.DB
}

// OpenDecisionStore opens (or creates) the SQLite database at path, ensures
// the data directory exists, and runs schema migrations.
func OpenDecisionStore(path string) (*DecisionStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL so a crashed build never leaves the store locked, and a busy
	// timeout so concurrent readers wait instead of failing with
	// SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &DecisionStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *DecisionStore) Close() error {
	return s.db.Close()
}

func (s *DecisionStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS images (
    image INTEGER PRIMARY KEY,
    date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
    tag TEXT PRIMARY KEY,
    display INTEGER NOT NULL
);
`)
	return err
}

// ImageDate returns the persisted display-date override for an image, if any.
func (s *DecisionStore) ImageDate(id int) (string, bool, error) {
	var date string
	err := s.db.QueryRow(`SELECT date FROM images WHERE image = ?`, id).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return date, true, nil
}

// SetImageDate records a display-date override for an image. The date is
// expected in YYYY-MM-DD form.
func (s *DecisionStore) SetImageDate(id int, date string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (image, date) VALUES (?, ?)`, id, date)
	return err
}

// TagDecision returns the persisted allow/deny answer for an exact tag path.
// The second return is false when the tag has never been decided.
func (s *DecisionStore) TagDecision(tag string) (allowed, ok bool, err error) {
	var display int
	err = s.db.QueryRow(`SELECT display FROM tags WHERE tag = ?`, tag).Scan(&display)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return display != 0, true, nil
}

// PutTagDecision permanently records the allow/deny answer for a tag path.
func (s *DecisionStore) PutTagDecision(tag string, allowed bool) error {
	display := 0
	if allowed {
		display = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO tags (tag, display) VALUES (?, ?)`, tag, display)
	return err
}
