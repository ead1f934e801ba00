package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"

	_ "github.com/mattn/go-sqlite3"
)

const (
	DefaultLookupLimit = 20
	MaxLookupLimit     = 100
)

const schema = `
CREATE TABLE IF NOT EXISTS lookups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    video_id TEXT NOT NULL,
    requested_language TEXT NOT NULL,
    language_code TEXT NOT NULL DEFAULT '',
    outcome TEXT NOT NULL,
    segment_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lookups_video_id ON lookups(video_id);
CREATE INDEX IF NOT EXISTS idx_lookups_created_at ON lookups(created_at);
`

// Journal is an append-only sqlite log of transcript lookups. It is only ever
// read back for diagnostics.
type Journal struct {
	db *sql.DB
}

func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := execSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "set pragma %q", pragma)
		}
	}
	return nil
}

func execSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin schema transaction")
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return errors.Wrapf(err, "execute schema statement %q", stmt)
		}
	}

	return errors.Wrap(tx.Commit(), "commit schema transaction")
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordLookup appends one lookup. A zero CreatedAt is stamped with the
// current time.
func (j *Journal) RecordLookup(ctx context.Context, l models.Lookup) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO lookups (video_id, requested_language, language_code, outcome, segment_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		l.VideoID, l.RequestedLanguage, l.LanguageCode, l.Outcome, l.SegmentCount, l.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert lookup")
	}
	return nil
}

// RecentLookups returns the newest lookups first. limit is clamped to
// [1, MaxLookupLimit]; non-positive values select DefaultLookupLimit.
func (j *Journal) RecentLookups(ctx context.Context, limit int) ([]models.Lookup, error) {
	switch {
	case limit <= 0:
		limit = DefaultLookupLimit
	case limit > MaxLookupLimit:
		limit = MaxLookupLimit
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, video_id, requested_language, language_code, outcome, segment_count, created_at
		 FROM lookups ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query lookups")
	}
	defer rows.Close()

	lookups := []models.Lookup{}
	for rows.Next() {
		var l models.Lookup
		if err := rows.Scan(&l.ID, &l.VideoID, &l.RequestedLanguage, &l.LanguageCode,
			&l.Outcome, &l.SegmentCount, &l.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan lookup")
		}
		lookups = append(lookups, l)
	}
	return lookups, errors.Wrap(rows.Err(), "iterate lookups")
}
