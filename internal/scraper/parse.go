// Package scraper extracts concert, review and seat data from the
// ticketing site's rendered HTML pages.  Parsing is split from the
// fetching workflow: every function in this file takes a goquery document
// (or selection) and returns typed records, so extraction is testable
// against fixture HTML without any network.
package scraper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrElementNotFound is the record-level extraction failure: a selector the
// page normally carries matched nothing.  Callers skip the affected record
// and continue with the rest of the page.
var ErrElementNotFound = errors.New("element not found")

// ConcertInfo is the metadata block of a concert detail page.
type ConcertInfo struct {
	Name            string
	Place           string
	StartDate       *time.Time
	EndDate         *time.Time
	DurationMinutes *int
	Genre           string
}

// ReviewRecord is one successfully extracted review list item.
type ReviewRecord struct {
	Nickname    string
	Date        time.Time
	ViewCount   int
	LikeCount   int
	Title       string
	Description string
	StarRating  float64
}

// Round is one show time-slot on a calendar day.
type Round struct {
	Name string // e.g. "1회"
	Time string // e.g. "19:30", may be empty
}

// SeatClassCount is one seat-class row of a round's seat table.
type SeatClassCount struct {
	Class string
	Count int
}

// genreKeywords maps title substrings to the coarse genre recorded on the
// concert.  Checked in order; titles matching none fall back to 기타.
var genreKeywords = []string{"뮤지컬", "연극", "콘서트"}

// ParseConcertInfo extracts the metadata block from a detail page.  Name
// and place are required; a malformed date range or running time degrades
// to nil fields rather than failing the concert.
func ParseConcertInfo(doc *goquery.Document) (*ConcertInfo, error) {
	name, err := requireText(doc.Selection, "h2.prdTitle")
	if err != nil {
		return nil, err
	}
	place, err := requireText(doc.Selection, "ul.infoList li.infoItem.place a")
	if err != nil {
		return nil, err
	}

	info := &ConcertInfo{Name: name, Place: place, Genre: inferGenre(name)}

	// Date range "2025.01.01 ~ 2025.03.01"; single-date runs omit the "~".
	// Parse failures leave both dates nil, the concert is created anyway.
	if dateText := strings.TrimSpace(doc.Find("ul.infoList li.infoItem.date p").First().Text()); dateText != "" {
		start, end, err := parseDateRange(dateText)
		if err == nil {
			info.StartDate = &start
			info.EndDate = &end
		}
	}

	// Running time "100분".
	if durText := strings.TrimSpace(doc.Find("ul.infoList li.infoItem.runtime p").First().Text()); durText != "" {
		durText = strings.TrimSpace(strings.ReplaceAll(durText, "분", ""))
		if n, err := strconv.Atoi(durText); err == nil {
			info.DurationMinutes = &n
		}
	}

	return info, nil
}

// ParseReviewTotal reads the total review count from the review tab
// header.  A missing counter yields 0, which callers treat as "nothing to
// paginate".
func ParseReviewTotal(doc *goquery.Document) int {
	text := strings.TrimSpace(doc.Find("#prdReview .reviewTotal strong span").First().Text())
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(digitsOnly(text))
	if err != nil {
		return 0
	}
	return n
}

// ParseReviewPage extracts every review item on one list page.  A record
// missing any of its fields is counted in skipped and dropped; one bad
// record never aborts the page.
func ParseReviewPage(doc *goquery.Document) (records []ReviewRecord, skipped int) {
	doc.Find("ul.bbsList.reviewList li.bbsItem").Each(func(_ int, item *goquery.Selection) {
		rec, err := parseReviewItem(item)
		if err != nil {
			skipped++
			return
		}
		records = append(records, *rec)
	})
	return records, skipped
}

func parseReviewItem(item *goquery.Selection) (*ReviewRecord, error) {
	nickname, err := requireText(item, ".name")
	if err != nil {
		return nil, err
	}
	title, err := requireText(item, ".bbsTitleText")
	if err != nil {
		return nil, err
	}
	description, err := requireText(item, ".bbsText")
	if err != nil {
		return nil, err
	}

	// The info list holds, in order: rating icon, date, views, likes.
	infos := item.Find("li.bbsItemInfoList")
	if infos.Length() < 4 {
		return nil, fmt.Errorf("%w: li.bbsItemInfoList", ErrElementNotFound)
	}
	date, err := parseDotDate(strings.TrimSpace(infos.Eq(1).Text()))
	if err != nil {
		return nil, err
	}
	viewCount, err := strconv.Atoi(digitsOnly(infos.Eq(2).Text()))
	if err != nil {
		return nil, fmt.Errorf("view count: %w", err)
	}
	likeCount, err := strconv.Atoi(digitsOnly(infos.Eq(3).Text()))
	if err != nil {
		return nil, fmt.Errorf("like count: %w", err)
	}

	starAttr, ok := item.Find(".prdStarIcon").First().Attr("data-star")
	if !ok {
		return nil, fmt.Errorf("%w: .prdStarIcon[data-star]", ErrElementNotFound)
	}
	star, err := strconv.ParseFloat(strings.TrimSpace(starAttr), 64)
	if err != nil {
		return nil, fmt.Errorf("star rating: %w", err)
	}

	return &ReviewRecord{
		Nickname:    nickname,
		Date:        date,
		ViewCount:   viewCount,
		LikeCount:   likeCount,
		Title:       title,
		Description: description,
		StarRating:  star,
	}, nil
}

// ParseCalendarMonth reads the seat calendar's current month label
// ("2025.01") and whether a next-month control is enabled.
func ParseCalendarMonth(doc *goquery.Document) (year, month int, hasNext bool, err error) {
	label, err := requireText(doc.Selection, `li[data-view="month current"]`)
	if err != nil {
		return 0, 0, false, err
	}
	parts := strings.Split(label, ".")
	if len(parts) != 2 {
		return 0, 0, false, fmt.Errorf("malformed month label %q", label)
	}
	year, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false, fmt.Errorf("malformed month label %q", label)
	}
	month, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false, fmt.Errorf("malformed month label %q", label)
	}

	doc.Find(`li[data-view="month next"]`).Each(func(_ int, s *goquery.Selection) {
		if !s.HasClass("disabled") {
			hasNext = true
		}
	})
	return year, month, hasNext, nil
}

// ParseCalendarDays returns the enabled day numbers of the seat calendar.
// Disabled and muted (out-of-month) cells are skipped.
func ParseCalendarDays(doc *goquery.Document) []int {
	days := []int{}
	doc.Find(`ul[data-view="days"] li`).Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("disabled") || s.HasClass("muted") {
			return
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s.Text())); err == nil {
			days = append(days, n)
		}
	})
	return days
}

// ParseRounds returns the show time-slots offered on a calendar day.  The
// label attribute packs name and time as "1회 19:30".
func ParseRounds(doc *goquery.Document) []Round {
	rounds := []Round{}
	doc.Find(".timeTableLabel").Each(func(_ int, s *goquery.Selection) {
		label, ok := s.Attr("data-text")
		if !ok {
			return
		}
		fields := strings.Fields(label)
		if len(fields) == 0 {
			return
		}
		r := Round{Name: fields[0]}
		if len(fields) > 1 {
			r.Time = fields[1]
		}
		rounds = append(rounds, r)
	})
	return rounds
}

// ParseSeatClasses returns the per-class remaining counts of a round's
// seat table.  A count cell without digits is recorded as 0, matching the
// site's "매진" (sold out) rendering.
func ParseSeatClasses(doc *goquery.Document) []SeatClassCount {
	seats := []SeatClassCount{}
	doc.Find(".seatTableItem").Each(func(_ int, s *goquery.Selection) {
		class := strings.TrimSpace(s.Find(".seatTableName").First().Text())
		if class == "" {
			return
		}
		count, err := strconv.Atoi(digitsOnly(s.Find(".seatTableStatus").First().Text()))
		if err != nil {
			count = 0
		}
		seats = append(seats, SeatClassCount{Class: class, Count: count})
	})
	return seats
}

// ParseCast returns the cast list shown beside the seat table, or "" when
// the production does not publish one.
func ParseCast(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("#productSide .castInfo p").First().Text())
}

// FirstSearchResult returns the href of the first search result.  When a
// query matches several shows only the first is followed; the site offers
// no disambiguation and neither do we.
func FirstSearchResult(doc *goquery.Document) (string, error) {
	href, ok := doc.Find("#contents a.searchResultItem").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", fmt.Errorf("%w: a.searchResultItem", ErrElementNotFound)
	}
	return strings.TrimSpace(href), nil
}

// requireText finds sel under s and returns its trimmed text, or
// ErrElementNotFound when the selector matches nothing or only
// whitespace.
func requireText(s *goquery.Selection, sel string) (string, error) {
	text := strings.TrimSpace(s.Find(sel).First().Text())
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, sel)
	}
	return text, nil
}

// digitsOnly strips everything but ASCII digits, mirroring how counters
// like "조회 1,234" are read.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseDotDate parses the site's "2025.01.02" date format.
func parseDotDate(s string) (time.Time, error) {
	return time.Parse("2006.01.02", strings.TrimSpace(s))
}

// parseDateRange parses "2025.01.01 ~ 2025.03.01"; a single date stands
// for a one-day run.
func parseDateRange(s string) (start, end time.Time, err error) {
	if strings.Contains(s, "~") {
		parts := strings.SplitN(s, "~", 2)
		start, err = parseDotDate(parts[0])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err = parseDotDate(parts[1])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}
	start, err = parseDotDate(s)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start, nil
}

func inferGenre(name string) string {
	for _, kw := range genreKeywords {
		if strings.Contains(name, kw) {
			return kw
		}
	}
	return "기타"
}
