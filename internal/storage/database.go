package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is how timestamps are written to TEXT/DATETIME columns.
// Values are always UTC so they compare correctly as strings.
const timeLayout = "2006-01-02 15:04:05"

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
//
// plays has no foreign key to tracks: a play may reference a track whose
// vector was ingested without a catalog row.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS tracks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			artist TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			mood TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			lat REAL,
			lng REAL,
			context TEXT NOT NULL DEFAULT '[]',
			source TEXT NOT NULL DEFAULT '',
			plays INTEGER NOT NULL DEFAULT 0,
			recommendations INTEGER NOT NULL DEFAULT 0,
			uploaded_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_uploaded_at ON tracks (uploaded_at);`,
		`CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			track_id TEXT NOT NULL,
			played_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_plays_user ON plays (user_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a DATETIME column, accepting both the layout written by
// this package and RFC 3339.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t, nil
	}
	// Try alternative format (SQLite might use different format)
	return time.Parse(time.RFC3339, s)
}
