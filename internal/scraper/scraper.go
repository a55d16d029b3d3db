// This file drives the scraping workflow: resolve a search query to one
// concert detail page, extract its metadata, then walk either the review
// list or the seat calendar, persisting per record as extraction
// proceeds.  There is no commit-all-or-nothing for a run: a navigation
// failure aborts the remaining pages and keeps everything persisted so
// far.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jwlee-dev/encoreview/internal/model"
	"github.com/jwlee-dev/encoreview/internal/pacer"
)

// Mode selects what a scrape run extracts after the concert metadata.
type Mode string

const (
	ModeReview Mode = "review"
	ModeSeat   Mode = "seat"
)

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeReview, ModeSeat:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown scrape mode %q", s)
}

const (
	reviewsPerPage = 15
	// The review pager exposes ten pages per navigational group and at
	// most two next-group jumps, so pages past the third group are
	// unreachable from the list.
	pageGroupSize = 10
	maxPageGroups = 2
	maxPages      = (maxPageGroups + 1) * pageGroupSize

	userAgent = "encoreview/1.0"
)

// Store is the persistence surface the scraper writes through.  Implemented
// by the repositories; narrowed to an interface so parsing/workflow tests
// can run against a fake.
type Store interface {
	UpsertConcert(ctx context.Context, c *model.Concert) error
	InsertReview(ctx context.Context, rv *model.Review) (created bool, err error)
	InsertSeat(ctx context.Context, s *model.Seat) error
}

// Result summarizes one scrape run: how many records were created, how
// many were natural-key duplicates, and how many were skipped because a
// field failed to extract.  Aborted reports that a page-navigation
// failure cut the run short; everything persisted before the failure
// stays persisted.
type Result struct {
	ConcertID  uint64 `json:"concert_id"`
	Concert    string `json:"concert"`
	Mode       Mode   `json:"mode"`
	Pages      int    `json:"pages"`
	Created    int    `json:"created"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped"`
	Aborted    bool   `json:"aborted"`
}

// Scraper fetches and extracts pages from the ticketing site.  Every page
// fetch first waits on the pacer, which replaces the fixed inter-request
// sleeps the site's rate limiting otherwise forces.
type Scraper struct {
	baseURL string
	http    *http.Client
	pacer   *pacer.Pacer
	store   Store
}

// New constructs a Scraper.  baseURL is the site root without a trailing
// slash; httpClient may be nil, in which case a 15-second-timeout client
// is used.
func New(baseURL string, httpClient *http.Client, p *pacer.Pacer, store Store) *Scraper {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Scraper{baseURL: baseURL, http: httpClient, pacer: p, store: store}
}

// Run resolves query to a single concert (first search result, no
// disambiguation), upserts its metadata, then extracts reviews or seats
// according to mode.  Search or metadata failures are terminal; page
// failures during pagination abort the rest of the run but keep partial
// results.
func (s *Scraper) Run(ctx context.Context, query string, mode Mode) (*Result, error) {
	searchDoc, err := s.fetch(ctx, "/search?keyword="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	href, err := FirstSearchResult(searchDoc)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	goodsPath, err := s.resolvePath(href)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	detailDoc, err := s.fetch(ctx, goodsPath)
	if err != nil {
		return nil, fmt.Errorf("detail page: %w", err)
	}
	info, err := ParseConcertInfo(detailDoc)
	if err != nil {
		return nil, fmt.Errorf("concert info: %w", err)
	}

	concert := &model.Concert{
		Name:            info.Name,
		Place:           info.Place,
		StartDate:       info.StartDate,
		EndDate:         info.EndDate,
		DurationMinutes: info.DurationMinutes,
		Genre:           &info.Genre,
	}
	if err := s.store.UpsertConcert(ctx, concert); err != nil {
		return nil, fmt.Errorf("upsert concert: %w", err)
	}

	result := &Result{ConcertID: concert.ID, Concert: concert.Name, Mode: mode}
	switch mode {
	case ModeReview:
		err = s.scrapeReviews(ctx, goodsPath, concert.ID, result)
	case ModeSeat:
		err = s.scrapeSeats(ctx, goodsPath, concert.ID, result)
	default:
		return nil, fmt.Errorf("unknown scrape mode %q", mode)
	}
	return result, err
}

// scrapeReviews paginates the review list, persisting each page's records
// before moving on.  A page fetch failure marks the run aborted and stops;
// previously persisted pages are untouched.
func (s *Scraper) scrapeReviews(ctx context.Context, goodsPath string, concertID uint64, result *Result) error {
	firstPage, err := s.fetch(ctx, goodsPath+"/reviews?page=1")
	if err != nil {
		return fmt.Errorf("review page 1: %w", err)
	}

	total := ParseReviewTotal(firstPage)
	pages := (total + reviewsPerPage - 1) / reviewsPerPage
	if pages > maxPages {
		pages = maxPages
	}
	if pages == 0 {
		return nil
	}

	doc := firstPage
	for page := 1; page <= pages; page++ {
		if page > 1 {
			doc, err = s.fetch(ctx, fmt.Sprintf("%s/reviews?page=%d", goodsPath, page))
			if err != nil {
				// Abort the remaining pages; pages persisted so far stay.
				log.Printf("scraper: review page %d/%d failed, aborting pagination: %v", page, pages, err)
				result.Aborted = true
				return nil
			}
		}

		records, skipped := ParseReviewPage(doc)
		result.Skipped += skipped
		for i := range records {
			rec := &records[i]
			rv := &model.Review{
				ConcertID:   concertID,
				Nickname:    rec.Nickname,
				Date:        rec.Date,
				ViewCount:   rec.ViewCount,
				LikeCount:   rec.LikeCount,
				Title:       rec.Title,
				Description: &rec.Description,
				StarRating:  &rec.StarRating,
			}
			created, err := s.store.InsertReview(ctx, rv)
			if err != nil {
				return fmt.Errorf("insert review: %w", err)
			}
			if created {
				result.Created++
			} else {
				result.Duplicates++
			}
		}
		result.Pages++
	}
	return nil
}

// scrapeSeats walks the seat calendar forward month by month, visiting
// every enabled day, every round and every seat-class row.  Each row
// becomes a new snapshot; duplicates are expected across runs.
func (s *Scraper) scrapeSeats(ctx context.Context, goodsPath string, concertID uint64, result *Result) error {
	for offset := 0; ; offset++ {
		monthDoc, err := s.fetch(ctx, fmt.Sprintf("%s/seats?month=%d", goodsPath, offset))
		if err != nil {
			if offset == 0 {
				return fmt.Errorf("seat calendar: %w", err)
			}
			log.Printf("scraper: seat calendar month +%d failed, aborting: %v", offset, err)
			result.Aborted = true
			return nil
		}
		year, month, hasNext, err := ParseCalendarMonth(monthDoc)
		if err != nil {
			if offset == 0 {
				return fmt.Errorf("seat calendar: %w", err)
			}
			log.Printf("scraper: seat calendar month +%d unparsable, aborting: %v", offset, err)
			result.Aborted = true
			return nil
		}

		for _, day := range ParseCalendarDays(monthDoc) {
			dayPath := fmt.Sprintf("%s/seats?month=%d&day=%d", goodsPath, offset, day)
			dayDoc, err := s.fetch(ctx, dayPath)
			if err != nil {
				// One unreachable day skips that day only.
				log.Printf("scraper: seat day %d-%02d-%02d failed: %v", year, month, day, err)
				result.Skipped++
				continue
			}
			for _, round := range ParseRounds(dayDoc) {
				roundDoc, err := s.fetch(ctx, dayPath+"&round="+url.QueryEscape(round.Name))
				if err != nil {
					log.Printf("scraper: round %s on %d-%02d-%02d failed: %v", round.Name, year, month, day, err)
					result.Skipped++
					continue
				}
				cast := ParseCast(roundDoc)
				for _, sc := range ParseSeatClasses(roundDoc) {
					seat := &model.Seat{
						ConcertID: concertID,
						Year:      year,
						Month:     month,
						DayNum:    day,
						DayStr:    model.KoreanWeekday(year, month, day),
						RoundName: round.Name,
						RoundTime: round.Time,
						SeatClass: sc.Class,
						SeatCount: sc.Count,
						Actors:    cast,
					}
					if err := s.store.InsertSeat(ctx, seat); err != nil {
						return fmt.Errorf("insert seat: %w", err)
					}
					result.Created++
				}
			}
		}
		result.Pages++

		if !hasNext {
			return nil
		}
	}
}

// fetch waits for pacing, then GETs path (relative to the base URL) and
// parses the body as HTML.
func (s *Scraper) fetch(ctx context.Context, path string) (*goquery.Document, error) {
	if s.pacer != nil {
		if err := s.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// resolvePath turns a search-result href into a path under the base URL.
// Absolute links to other hosts are rejected.
func (s *Scraper) resolvePath(href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if u.Host != "" {
		base, err := url.Parse(s.baseURL)
		if err != nil || !sameHost(base, u) {
			return "", errors.New("search result links off-site")
		}
	}
	if u.Path == "" {
		return "", errors.New("search result href has no path")
	}
	return u.Path, nil
}

func sameHost(a, b *url.URL) bool {
	return a != nil && b != nil && a.Host == b.Host
}
