// CLAUDE:SUMMARY SQLite catalog for selector-set publications — opens DB with cartwatch pragmas and applies schema.
// Package store provides the SQLite catalog of selector-set publications.
//
// The catalog is the durable side of the registry: every published page
// version is appended here with its full JSON payload, and the active pin per
// page is tracked so a restarting process reloads exactly the state it had.
package store

import (
	"database/sql"

	"github.com/hazyhaar/cartwatch/dbopen"
)

// Schema is the catalog schema. Publications are append-only by design: the
// primary key forbids re-publishing a (page, version) pair.
const Schema = `
CREATE TABLE IF NOT EXISTS publications (
	page_id       TEXT NOT NULL,
	version       INTEGER NOT NULL,
	payload       TEXT NOT NULL,
	published_by  TEXT NOT NULL DEFAULT '',
	registered_at INTEGER NOT NULL,
	PRIMARY KEY (page_id, version)
);

CREATE TABLE IF NOT EXISTS active_versions (
	page_id TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	FOREIGN KEY (page_id, version) REFERENCES publications(page_id, version)
);
`

// Store is the catalog database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the catalog database at path, applies cartwatch
// pragmas and the catalog schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
