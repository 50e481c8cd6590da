// Package store persists viewer sessions and the export history in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Session is the last viewport state of one image file.
type Session struct {
	Path    string
	OffsetX int
	OffsetY int
	// Scale is the product of rescale factors applied after loading.
	Scale   float64
	Updated time.Time
}

// Export is one finished export.
type Export struct {
	ID      int64
	Image   string
	Output  string
	Frames  int
	Skipped int
	DelayMS int
	Created time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the database in file.
func Open(file string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS session (path TEXT PRIMARY KEY NOT NULL, offset_x INTEGER NOT NULL, offset_y INTEGER NOT NULL, scale REAL NOT NULL, updated INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS export (id INTEGER PRIMARY KEY NOT NULL, image TEXT NOT NULL, output TEXT NOT NULL, frames INTEGER NOT NULL, skipped INTEGER NOT NULL, delay_ms INTEGER NOT NULL, created INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession inserts or replaces the session for sess.Path.
func (s *Store) SaveSession(sess Session) error {
	if sess.Path == "" {
		return errors.New("store: session without path")
	}
	if sess.Updated.IsZero() {
		sess.Updated = time.Now()
	}
	_, err := s.db.Exec("INSERT INTO session (path, offset_x, offset_y, scale, updated) VALUES (?, ?, ?, ?, ?) ON CONFLICT(path) DO UPDATE SET offset_x = excluded.offset_x, offset_y = excluded.offset_y, scale = excluded.scale, updated = excluded.updated",
		sess.Path, sess.OffsetX, sess.OffsetY, sess.Scale, sess.Updated.Unix())
	return err
}

// Session returns the saved session for path, or nil if there is none.
func (s *Store) Session(path string) (*Session, error) {
	sess := Session{Path: path}
	var updated int64
	err := s.db.QueryRow("SELECT offset_x, offset_y, scale, updated FROM session WHERE path = ?", path).Scan(&sess.OffsetX, &sess.OffsetY, &sess.Scale, &updated)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, err
	}
	sess.Updated = time.Unix(updated, 0)
	return &sess, nil
}

// RecordExport appends e to the export history.
func (s *Store) RecordExport(e Export) error {
	if e.Created.IsZero() {
		e.Created = time.Now()
	}
	_, err := s.db.Exec("INSERT INTO export (image, output, frames, skipped, delay_ms, created) VALUES (?, ?, ?, ?, ?, ?)",
		e.Image, e.Output, e.Frames, e.Skipped, e.DelayMS, e.Created.Unix())
	return err
}

// Exports returns up to limit exports, newest first. A limit of zero
// returns them all.
func (s *Store) Exports(limit int) ([]Export, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query("SELECT id, image, output, frames, skipped, delay_ms, created FROM export ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		var e Export
		var created int64
		if err := rows.Scan(&e.ID, &e.Image, &e.Output, &e.Frames, &e.Skipped, &e.DelayMS, &created); err != nil {
			return nil, err
		}
		e.Created = time.Unix(created, 0)
		exports = append(exports, e)
	}
	return exports, rows.Err()
}
