// This file defines persistence for remaining-seat snapshots.  Unlike
// concerts and reviews, seats carry no natural key: insertion is
// append-only and the same (date, round, class) combination accumulates
// one row per scrape run, distinguished by created_at.

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jwlee-dev/encoreview/internal/model"
)

// SeatSnapshotRow is one seat snapshot joined with its concert name and a
// pre-formatted performance date, ready for the seat dashboard.
type SeatSnapshotRow struct {
	ConcertName string    `json:"concert"`
	Date        string    `json:"date"` // "YYYY-M-D" assembled from year/month/day_num
	DayStr      string    `json:"day"`
	RoundName   string    `json:"round"`
	RoundTime   string    `json:"round_time"`
	SeatClass   string    `json:"seat_class"`
	SeatCount   int       `json:"seat_count"`
	Actors      string    `json:"actors"`
	CreatedAt   time.Time `json:"created_at"`
}

// SeatRepo manages persistence for seat snapshots.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// InsertSnapshot always inserts a new snapshot row.  Re-ingesting the same
// (concert, date, round, class) combination is expected and produces a new
// row differing only in created_at.
func (r *SeatRepo) InsertSnapshot(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats
               (concert_id, year, month, day_num, day_str, round_name, round_time, seat_class, seat_count, actors)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.ConcertID, s.Year, s.Month, s.DayNum, s.DayStr, s.RoundName, s.RoundTime, s.SeatClass, s.SeatCount, s.Actors,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// ListSnapshots returns seat snapshots ordered for display, optionally
// restricted to one concert name.  Pass "" for all concerts.
func (r *SeatRepo) ListSnapshots(ctx context.Context, concertName string) ([]SeatSnapshotRow, error) {
	q := `SELECT c.name,
                 CONCAT(s.year, '-', s.month, '-', s.day_num),
                 s.day_str, s.round_name, s.round_time, s.seat_class, s.seat_count,
                 COALESCE(s.actors, ''), s.created_at
          FROM seats s JOIN concerts c ON c.id = s.concert_id`
	args := []any{}
	if concertName != "" {
		q += ` WHERE c.name = ?`
		args = append(args, concertName)
	}
	q += ` ORDER BY c.name, s.year, s.month, s.day_num, s.day_str, s.round_name, s.seat_class, s.created_at`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []SeatSnapshotRow{}
	for rows.Next() {
		var row SeatSnapshotRow
		if err := rows.Scan(
			&row.ConcertName, &row.Date, &row.DayStr, &row.RoundName, &row.RoundTime,
			&row.SeatClass, &row.SeatCount, &row.Actors, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DistinctRounds returns the distinct round names across all snapshots,
// used by the seat dashboard's round filter.
func (r *SeatRepo) DistinctRounds(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT round_name FROM seats ORDER BY round_name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
