// Package repository contains data access logic for the analytics schema.
// This file defines persistence for concerts.  Concerts are deduplicated by
// their natural key (name, place, start_date) using an atomic
// insert-on-conflict so that concurrent scrape runs cannot create duplicate
// rows.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jwlee-dev/encoreview/internal/model"
)

// ConcertRepo manages persistence for concerts.
type ConcertRepo struct {
	db *sql.DB
}

// NewConcertRepo constructs a ConcertRepo with the given DB handle.
func NewConcertRepo(db *sql.DB) *ConcertRepo {
	return &ConcertRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ConcertRepo) DB() *sql.DB {
	return r.db
}

// Upsert inserts the concert unless a row with the same (name, place,
// start_date) already exists.  Either way the concert's ID and stored
// attributes are populated from the database afterwards, so calling Upsert
// twice with the same key yields exactly one row and the same identity.
// The conflict is resolved inside MySQL (ON DUPLICATE KEY), not by a
// read-then-write check, so concurrent scrapers cannot race a duplicate in.
//
// Date-less concerts (the detail page's date range failed to parse) are
// the exception: a NULL start_date never conflicts in a unique index, so
// they are matched by an explicit lookup before inserting.
func (r *ConcertRepo) Upsert(ctx context.Context, c *model.Concert) error {
	if c.StartDate == nil {
		found, err := r.findDateless(ctx, c)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
	}
	const q = `INSERT INTO concerts (name, place, start_date, end_date, duration_minutes, genre)
               VALUES (?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Place, c.StartDate, c.EndDate, c.DurationMinutes, c.Genre)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	// Re-read the row: on conflict the stored attributes win over the
	// freshly scraped ones (rows are never updated after first sight).
	const sel = `SELECT id, name, place, start_date, end_date, duration_minutes, genre, created_at
                 FROM concerts WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, c.ID).Scan(
		&c.ID, &c.Name, &c.Place, &c.StartDate, &c.EndDate, &c.DurationMinutes, &c.Genre, &c.CreatedAt,
	)
}

// findDateless loads an existing row matching (name, place) with a NULL
// start_date into c.  It reports whether such a row exists.
func (r *ConcertRepo) findDateless(ctx context.Context, c *model.Concert) (bool, error) {
	const q = `SELECT id, name, place, start_date, end_date, duration_minutes, genre, created_at
               FROM concerts WHERE name = ? AND place = ? AND start_date IS NULL`
	err := r.db.QueryRowContext(ctx, q, c.Name, c.Place).Scan(
		&c.ID, &c.Name, &c.Place, &c.StartDate, &c.EndDate, &c.DurationMinutes, &c.Genre, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID retrieves a concert by its ID.  It returns ErrConcertNotFound if
// there is no matching row.
func (r *ConcertRepo) GetByID(ctx context.Context, id uint64) (*model.Concert, error) {
	const q = `SELECT id, name, place, start_date, end_date, duration_minutes, genre, created_at
               FROM concerts WHERE id = ?`
	var c model.Concert
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Name, &c.Place, &c.StartDate, &c.EndDate, &c.DurationMinutes, &c.Genre, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConcertNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListAll returns every stored concert ordered by name.  When no concerts
// exist it returns an empty slice and nil error.
func (r *ConcertRepo) ListAll(ctx context.Context) ([]model.Concert, error) {
	const q = `SELECT id, name, place, start_date, end_date, duration_minutes, genre, created_at
               FROM concerts ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Concert{}
	for rows.Next() {
		var c model.Concert
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Place, &c.StartDate, &c.EndDate, &c.DurationMinutes, &c.Genre, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListNames returns the distinct concert names ordered alphabetically.
// Used by the seat dashboard's concert filter.
func (r *ConcertRepo) ListNames(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT name FROM concerts ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
