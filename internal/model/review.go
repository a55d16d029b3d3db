package model

import "time"

// Emotion label values produced by the sentiment enricher.  A review's
// emotion starts unset (NULL) and transitions at most once to one of these
// three values; there is no transition out of a set label.
const (
	EmotionPositive = "긍정"
	EmotionNeutral  = "중립"
	EmotionNegative = "부정"
)

// Review is a single visitor review belonging to exactly one concert.
// Reviews are identified by the natural key (concert, nickname, date,
// title): a reviewer may post several reviews for one concert only when
// the title or date differs.  Rows are created by the scraper, mutated
// only by the enricher setting Emotion, and removed only by cascade when
// the concert is deleted.
//
// Fields:
//
//	ID          – primary key identifier.
//	ConcertID   – owning concert (FK, cascade delete).
//	Nickname    – reviewer nickname as displayed.
//	Date        – date the review was posted.
//	ViewCount   – review view counter at scrape time.
//	LikeCount   – review like counter at scrape time.
//	Title       – review title.
//	Description – review body (nil when the reviewer left none).
//	StarRating  – rating on the site's 0–5 scale (reports double it to
//	              a 10-point display scale); nil when absent.
//	Emotion     – sentiment label (긍정/중립/부정) or nil while unlabelled.
//	CreatedAt   – row creation timestamp.
type Review struct {
	ID          uint64    // reviews.id
	ConcertID   uint64    // reviews.concert_id
	Nickname    string    // reviews.nickname
	Date        time.Time // reviews.date
	ViewCount   int       // reviews.view_count
	LikeCount   int       // reviews.like_count
	Title       string    // reviews.title
	Description *string   // reviews.description
	StarRating  *float64  // reviews.star_rating
	Emotion     *string   // reviews.emotion
	CreatedAt   time.Time // reviews.created_at
}

// Text returns the review body or "" when none was written.
func (r *Review) Text() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}
