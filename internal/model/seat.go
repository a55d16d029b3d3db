package model

import "time"

// koreanDays maps time.Weekday (Sunday = 0) to the local single-character
// weekday convention.
var koreanDays = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// Seat is a point-in-time snapshot of the remaining-seat count for one
// (performance date, round, seat class) combination.  There is no natural
// key: every scrape run appends a new snapshot row even for the same
// combination, forming a time series distinguished by CreatedAt.
type Seat struct {
	ID        uint64    // seats.id
	ConcertID uint64    // seats.concert_id
	Year      int       // seats.year
	Month     int       // seats.month
	DayNum    int       // seats.day_num
	DayStr    string    // seats.day_str, derived weekday name (월..일)
	RoundName string    // seats.round_name, e.g. "1회"
	RoundTime string    // seats.round_time, e.g. "19:30"
	SeatClass string    // seats.seat_class, e.g. "R석"
	SeatCount int       // seats.seat_count, remaining seats at scrape time
	Actors    string    // seats.actors, cast list shown for the round
	CreatedAt time.Time // seats.created_at
}

// KoreanWeekday returns the local weekday name for a calendar date, or ""
// when the date is not a valid calendar day.  DayStr is computed with this
// at insert time and never re-validated afterwards.
func KoreanWeekday(year, month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 30 -> Mar 2); reject those.
	if t.Day() != day || int(t.Month()) != month {
		return ""
	}
	return koreanDays[int(t.Weekday())]
}
