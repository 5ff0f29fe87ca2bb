// CLAUDE:SUMMARY CRUD for the publications table — append publications, list per page, track active version pins.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hazyhaar/cartwatch/dbopen"
)

// Publication is one stored selector-set version.
type Publication struct {
	PageID       string `json:"page_id"`
	Version      int    `json:"version"`
	Payload      string `json:"payload"` // selector-definition file JSON
	PublishedBy  string `json:"published_by,omitempty"`
	RegisteredAt int64  `json:"registered_at"`
}

// InsertPublication appends a publication. The primary key rejects
// duplicate (page, version) rows; callers decide whether that is a conflict
// or an idempotent no-op. Writes retry on lock contention: registry HTTP and
// MCP publishers share this database under WAL.
func (s *Store) InsertPublication(ctx context.Context, p *Publication) error {
	if p.RegisteredAt == 0 {
		p.RegisteredAt = time.Now().UnixMilli()
	}
	_, err := dbopen.Exec(ctx, s.DB, `
		INSERT INTO publications (page_id, version, payload, published_by, registered_at)
		VALUES (?,?,?,?,?)`,
		p.PageID, p.Version, p.Payload, p.PublishedBy, p.RegisteredAt,
	)
	return err
}

// RecordPublication inserts p unless its (page, version) row already exists,
// reporting whether a row was written. Check and insert share one retried
// transaction so two publishers racing on the same version cannot trip the
// primary key.
func (s *Store) RecordPublication(ctx context.Context, p *Publication) (bool, error) {
	if p.RegisteredAt == 0 {
		p.RegisteredAt = time.Now().UnixMilli()
	}
	var inserted bool
	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		inserted = false
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM publications WHERE page_id = ? AND version = ?`,
			p.PageID, p.Version).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO publications (page_id, version, payload, published_by, registered_at)
			VALUES (?,?,?,?,?)`,
			p.PageID, p.Version, p.Payload, p.PublishedBy, p.RegisteredAt,
		)
		if err != nil {
			return err
		}
		inserted = true
		return nil
	})
	return inserted, err
}

// GetPublication retrieves one (page, version) publication, or nil.
func (s *Store) GetPublication(ctx context.Context, pageID string, version int) (*Publication, error) {
	p := &Publication{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT page_id, version, payload, published_by, registered_at
		FROM publications WHERE page_id = ? AND version = ?`, pageID, version).Scan(
		&p.PageID, &p.Version, &p.Payload, &p.PublishedBy, &p.RegisteredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPublications returns all publications for a page, ascending by version.
// An empty pageID returns every publication, ordered by page then version, so
// a restarting registry can replay them in registration order.
func (s *Store) ListPublications(ctx context.Context, pageID string) ([]*Publication, error) {
	query := `SELECT page_id, version, payload, published_by, registered_at FROM publications`
	var args []any
	if pageID != "" {
		query += ` WHERE page_id = ?`
		args = append(args, pageID)
	}
	query += ` ORDER BY page_id ASC, version ASC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []*Publication
	for rows.Next() {
		p := &Publication{}
		if err := rows.Scan(&p.PageID, &p.Version, &p.Payload, &p.PublishedBy, &p.RegisteredAt); err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

// MaxVersion returns the highest published version for a page (0 when none).
func (s *Store) MaxVersion(ctx context.Context, pageID string) (int, error) {
	var v sql.NullInt64
	err := s.DB.QueryRowContext(ctx,
		`SELECT MAX(version) FROM publications WHERE page_id = ?`, pageID).Scan(&v)
	if err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// SetActive pins the active version for a page.
func (s *Store) SetActive(ctx context.Context, pageID string, version int) error {
	_, err := dbopen.Exec(ctx, s.DB, `
		INSERT INTO active_versions (page_id, version) VALUES (?,?)
		ON CONFLICT(page_id) DO UPDATE SET version = excluded.version`,
		pageID, version,
	)
	return err
}

// ClearActive removes the active pin for a page.
func (s *Store) ClearActive(ctx context.Context, pageID string) error {
	_, err := dbopen.Exec(ctx, s.DB, `DELETE FROM active_versions WHERE page_id = ?`, pageID)
	return err
}

// GetActive returns the pinned version for a page (0 when unpinned).
func (s *Store) GetActive(ctx context.Context, pageID string) (int, error) {
	var v int
	err := s.DB.QueryRowContext(ctx,
		`SELECT version FROM active_versions WHERE page_id = ?`, pageID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// ListActive returns all active pins as pageID → version.
func (s *Store) ListActive(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT page_id, version FROM active_versions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var v int
		if err := rows.Scan(&id, &v); err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, rows.Err()
}

// CountPublications returns the number of stored publications.
func (s *Store) CountPublications(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM publications`).Scan(&n)
	return n, err
}
