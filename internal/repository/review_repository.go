// This file defines persistence and aggregation queries for reviews.
// Reviews are deduplicated by their natural key (concert_id, nickname,
// date, title) with INSERT IGNORE against the composite unique key, and
// the emotion label is write-once: SetEmotion only touches rows whose
// label is still NULL.

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jwlee-dev/encoreview/internal/model"
)

const reviewColumns = `id, concert_id, nickname, date, view_count, like_count, title, description, star_rating, emotion, created_at`

// RatingStats pairs an average star rating with the number of reviews it
// was computed over.  Avg is on the source 0-5 scale; callers that present
// it double it to the 10-point display scale.
type RatingStats struct {
	Avg   float64
	Count int
}

// TrendPoint is one day of review activity: how many reviews were posted
// and their average rating (nil when none of that day's reviews carried a
// rating).
type TrendPoint struct {
	Date  string
	Count int
	Avg   *float64
}

// ReviewerCount is a nickname together with how many reviews it posted for
// one concert.
type ReviewerCount struct {
	Nickname string `json:"nickname"`
	Count    int    `json:"count"`
}

// NicknameConcert links a reviewer nickname to a concert it reviewed and
// the date of its first review there.  Used by the co-attendance reports.
type NicknameConcert struct {
	Nickname    string
	ConcertName string
	FirstDate   string
}

// ConcertSummaryRow aggregates one concert's review statistics for the
// home dashboard.
type ConcertSummaryRow struct {
	ConcertName string
	Place       string
	Genre       *string
	StartDate   *time.Time
	EndDate     *time.Time
	Avg         float64
	Count       int
}

// ReviewRepo manages persistence for reviews.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo constructs a ReviewRepo with the given DB handle.
func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Insert stores a review unless one with the same natural key exists.
// It reports created=false, with no error and no write, when the key was
// already present.  The uniqueness decision happens inside MySQL (INSERT
// IGNORE over the composite unique key), never as an application-level
// existence check.
func (r *ReviewRepo) Insert(ctx context.Context, rv *model.Review) (created bool, err error) {
	const q = `INSERT IGNORE INTO reviews
               (concert_id, nickname, date, view_count, like_count, title, description, star_rating)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rv.ConcertID, rv.Nickname, rv.Date, rv.ViewCount, rv.LikeCount, rv.Title, rv.Description, rv.StarRating,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil // duplicate natural key, nothing written
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	rv.ID = uint64(id)
	return true, nil
}

// SetEmotion records the sentiment label for a review.  The update is
// restricted to rows whose emotion is still NULL; attempting to relabel a
// review returns ErrAlreadyLabelled and leaves the row untouched.
func (r *ReviewRepo) SetEmotion(ctx context.Context, id uint64, emotion string) error {
	const q = `UPDATE reviews SET emotion = ? WHERE id = ? AND emotion IS NULL`
	res, err := r.db.ExecContext(ctx, q, emotion, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyLabelled
	}
	return nil
}

// SelectUnlabelled returns up to limit reviews that still need a sentiment
// label: emotion unset and a non-empty description.  Reviews without any
// body are never selected.
func (r *ReviewRepo) SelectUnlabelled(ctx context.Context, limit int) ([]model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews
               WHERE emotion IS NULL AND description IS NOT NULL AND description <> ''
               ORDER BY id ASC LIMIT ?`
	return r.queryReviews(ctx, q, limit)
}

// ListByConcert returns all reviews for a concert ordered by posting date.
func (r *ReviewRepo) ListByConcert(ctx context.Context, concertID uint64) ([]model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews WHERE concert_id = ? ORDER BY date ASC, id ASC`
	return r.queryReviews(ctx, q, concertID)
}

// ListByConcertAndNickname returns one reviewer's reviews for a concert.
func (r *ReviewRepo) ListByConcertAndNickname(ctx context.Context, concertID uint64, nickname string) ([]model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews
               WHERE concert_id = ? AND nickname = ? ORDER BY date ASC, id ASC`
	return r.queryReviews(ctx, q, concertID, nickname)
}

// ListByEmotion returns a concert's reviews carrying the given label,
// newest first.
func (r *ReviewRepo) ListByEmotion(ctx context.Context, concertID uint64, emotion string) ([]model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews
               WHERE concert_id = ? AND emotion = ? ORDER BY date DESC, id DESC`
	return r.queryReviews(ctx, q, concertID, emotion)
}

// LongReviews returns a concert's reviews ordered by description length,
// longest first.  Reviews without a body sort last.
func (r *ReviewRepo) LongReviews(ctx context.Context, concertID uint64) ([]model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews
               WHERE concert_id = ?
               ORDER BY CHAR_LENGTH(COALESCE(description, '')) DESC, id ASC`
	return r.queryReviews(ctx, q, concertID)
}

// TopViewCount returns a concert's reviews ordered by view count, highest
// first.
func (r *ReviewRepo) TopViewCount(ctx context.Context, concertID uint64) ([]model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews
               WHERE concert_id = ? ORDER BY view_count DESC, id ASC`
	return r.queryReviews(ctx, q, concertID)
}

// LowStarRating returns a concert's reviews rated 3 or below on the source
// 0-5 scale, worst first.  Unrated reviews are excluded.
func (r *ReviewRepo) LowStarRating(ctx context.Context, concertID uint64) ([]model.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews
               WHERE concert_id = ? AND star_rating IS NOT NULL AND star_rating <= 3
               ORDER BY star_rating ASC, id ASC`
	return r.queryReviews(ctx, q, concertID)
}

// FrequentReviewers returns nicknames that posted more than one review for
// the concert, most prolific first.
func (r *ReviewRepo) FrequentReviewers(ctx context.Context, concertID uint64) ([]ReviewerCount, error) {
	const q = `SELECT nickname, COUNT(*) AS cnt FROM reviews
               WHERE concert_id = ?
               GROUP BY nickname HAVING COUNT(*) > 1
               ORDER BY cnt DESC, nickname ASC`
	rows, err := r.db.QueryContext(ctx, q, concertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ReviewerCount{}
	for rows.Next() {
		var rc ReviewerCount
		if err := rows.Scan(&rc.Nickname, &rc.Count); err != nil {
			return nil, err
		}
		result = append(result, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// StatsByConcert aggregates the average rating and review count for one
// concert.  Zero reviews yield {0, 0}, never an error.
func (r *ReviewRepo) StatsByConcert(ctx context.Context, concertID uint64) (RatingStats, error) {
	const q = `SELECT COALESCE(AVG(star_rating), 0), COUNT(id) FROM reviews WHERE concert_id = ?`
	var s RatingStats
	err := r.db.QueryRowContext(ctx, q, concertID).Scan(&s.Avg, &s.Count)
	return s, err
}

// StatsOverall aggregates the average rating and review count across every
// stored review.
func (r *ReviewRepo) StatsOverall(ctx context.Context) (RatingStats, error) {
	const q = `SELECT COALESCE(AVG(star_rating), 0), COUNT(id) FROM reviews`
	var s RatingStats
	err := r.db.QueryRowContext(ctx, q).Scan(&s.Avg, &s.Count)
	return s, err
}

// StatsByGenre aggregates the average rating and review count across all
// reviews of concerts in the given genre cohort.
func (r *ReviewRepo) StatsByGenre(ctx context.Context, genre string) (RatingStats, error) {
	const q = `SELECT COALESCE(AVG(r.star_rating), 0), COUNT(r.id)
               FROM reviews r JOIN concerts c ON c.id = r.concert_id
               WHERE c.genre = ?`
	var s RatingStats
	err := r.db.QueryRowContext(ctx, q, genre).Scan(&s.Avg, &s.Count)
	return s, err
}

// EmotionCounts returns how many of a concert's reviews carry each
// sentiment label.  Unlabelled reviews are not counted.
func (r *ReviewRepo) EmotionCounts(ctx context.Context, concertID uint64) (map[string]int, error) {
	const q = `SELECT emotion, COUNT(id) FROM reviews
               WHERE concert_id = ? AND emotion IS NOT NULL GROUP BY emotion`
	return r.queryEmotionCounts(ctx, q, concertID)
}

// EmotionCountsByGenre is EmotionCounts across a genre cohort.  Pass "" to
// count across all stored reviews.
func (r *ReviewRepo) EmotionCountsByGenre(ctx context.Context, genre string) (map[string]int, error) {
	if genre == "" {
		const q = `SELECT emotion, COUNT(id) FROM reviews
                   WHERE emotion IS NOT NULL GROUP BY emotion`
		return r.queryEmotionCounts(ctx, q)
	}
	const q = `SELECT r.emotion, COUNT(r.id)
               FROM reviews r JOIN concerts c ON c.id = r.concert_id
               WHERE c.genre = ? AND r.emotion IS NOT NULL GROUP BY r.emotion`
	return r.queryEmotionCounts(ctx, q, genre)
}

// Trends returns the per-date review count and average rating for one
// concert over every date that has at least one review, oldest first.
func (r *ReviewRepo) Trends(ctx context.Context, concertID uint64) ([]TrendPoint, error) {
	const q = `SELECT DATE_FORMAT(date, '%Y-%m-%d'), COUNT(id), AVG(star_rating)
               FROM reviews WHERE concert_id = ?
               GROUP BY date ORDER BY date ASC`
	return r.queryTrends(ctx, q, concertID)
}

// TrendsByConcertNameSince returns the per-date series for a concert
// identified by name, restricted to reviews posted on or after the given
// date, newest first.  The home dashboard uses this for its 30-day window.
func (r *ReviewRepo) TrendsByConcertNameSince(ctx context.Context, concertName string, since time.Time) ([]TrendPoint, error) {
	const q = `SELECT DATE_FORMAT(r.date, '%Y-%m-%d'), COUNT(r.id), AVG(r.star_rating)
               FROM reviews r JOIN concerts c ON c.id = r.concert_id
               WHERE c.name = ? AND r.date >= ?
               GROUP BY r.date ORDER BY r.date DESC`
	return r.queryTrends(ctx, q, concertName, since)
}

// ConcertSummaries aggregates per-concert review statistics, optionally
// restricted to reviews posted inside [start, end].  Pass nil bounds for
// the full history.
func (r *ReviewRepo) ConcertSummaries(ctx context.Context, start, end *time.Time) ([]ConcertSummaryRow, error) {
	q := `SELECT c.name, c.place, c.genre, c.start_date, c.end_date,
                 COALESCE(AVG(r.star_rating), 0), COUNT(r.id)
          FROM reviews r JOIN concerts c ON c.id = r.concert_id`
	args := []any{}
	if start != nil && end != nil {
		q += ` WHERE r.date BETWEEN ? AND ?`
		args = append(args, *start, *end)
	}
	q += ` GROUP BY c.id, c.name, c.place, c.genre, c.start_date, c.end_date
           ORDER BY c.end_date DESC, c.name ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ConcertSummaryRow{}
	for rows.Next() {
		var row ConcertSummaryRow
		if err := rows.Scan(&row.ConcertName, &row.Place, &row.Genre, &row.StartDate, &row.EndDate, &row.Avg, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// NicknameConcerts returns one row per (nickname, concert) pair with the
// date of that reviewer's first review for the concert, optionally
// restricted to reviews posted inside [start, end].  The co-attendance
// reports derive audience overlap from these pairs.
func (r *ReviewRepo) NicknameConcerts(ctx context.Context, start, end *time.Time) ([]NicknameConcert, error) {
	q := `SELECT r.nickname, c.name, DATE_FORMAT(MIN(r.date), '%Y-%m-%d')
          FROM reviews r JOIN concerts c ON c.id = r.concert_id`
	args := []any{}
	if start != nil && end != nil {
		q += ` WHERE r.date BETWEEN ? AND ?`
		args = append(args, *start, *end)
	}
	q += ` GROUP BY r.nickname, c.name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []NicknameConcert{}
	for rows.Next() {
		var nc NicknameConcert
		if err := rows.Scan(&nc.Nickname, &nc.ConcertName, &nc.FirstDate); err != nil {
			return nil, err
		}
		result = append(result, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ReviewRepo) queryReviews(ctx context.Context, q string, args ...any) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(
			&rv.ID, &rv.ConcertID, &rv.Nickname, &rv.Date, &rv.ViewCount, &rv.LikeCount,
			&rv.Title, &rv.Description, &rv.StarRating, &rv.Emotion, &rv.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ReviewRepo) queryEmotionCounts(ctx context.Context, q string, args ...any) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var emotion string
		var n int
		if err := rows.Scan(&emotion, &n); err != nil {
			return nil, err
		}
		counts[emotion] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *ReviewRepo) queryTrends(ctx context.Context, q string, args ...any) ([]TrendPoint, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []TrendPoint{}
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Date, &p.Count, &p.Avg); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
