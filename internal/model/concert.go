package model

import "time"

// Concert represents one production scraped from the ticketing site.  A
// concert is identified by its natural key (name, place, start date);
// re-scraping the same show is idempotent and rows are never updated or
// deleted afterwards.
//
// Fields:
//
//	ID              – primary key identifier.
//	Name            – production title as shown on the detail page.
//	Place           – venue name.
//	StartDate       – first performance date (nil when the page's date
//	                  range failed to parse).
//	EndDate         – last performance date (nil on parse failure).
//	DurationMinutes – running time in minutes (nil when missing).
//	Genre           – coarse category inferred from the title
//	                  (뮤지컬, 연극, 콘서트 or 기타); nil for legacy rows.
//	CreatedAt       – row creation timestamp.
type Concert struct {
	ID              uint64     // concerts.id
	Name            string     // concerts.name
	Place           string     // concerts.place
	StartDate       *time.Time // concerts.start_date
	EndDate         *time.Time // concerts.end_date
	DurationMinutes *int       // concerts.duration_minutes
	Genre           *string    // concerts.genre
	CreatedAt       time.Time  // concerts.created_at
}
