package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwlee-dev/encoreview/internal/model"
)

// fakeStore records writes and deduplicates reviews on the natural key,
// mirroring what the repositories do in MySQL.
type fakeStore struct {
	concerts []model.Concert
	reviews  map[string]model.Review
	seats    []model.Seat
}

func newFakeStore() *fakeStore {
	return &fakeStore{reviews: map[string]model.Review{}}
}

func (f *fakeStore) UpsertConcert(_ context.Context, c *model.Concert) error {
	for _, existing := range f.concerts {
		if existing.Name == c.Name && existing.Place == c.Place {
			c.ID = existing.ID
			return nil
		}
	}
	c.ID = uint64(len(f.concerts) + 1)
	f.concerts = append(f.concerts, *c)
	return nil
}

func (f *fakeStore) InsertReview(_ context.Context, rv *model.Review) (bool, error) {
	key := fmt.Sprintf("%d|%s|%s|%s", rv.ConcertID, rv.Nickname, rv.Date.Format("2006-01-02"), rv.Title)
	if _, ok := f.reviews[key]; ok {
		return false, nil
	}
	rv.ID = uint64(len(f.reviews) + 1)
	f.reviews[key] = *rv
	return true, nil
}

func (f *fakeStore) InsertSeat(_ context.Context, s *model.Seat) error {
	f.seats = append(f.seats, *s)
	return nil
}

const searchHTML = `<div id="contents"><a class="searchResultItem" href="/goods/1">시카고</a></div>`

const goodsHTML = `
<h2 class="prdTitle">뮤지컬 시카고</h2>
<ul class="infoList">
  <li class="infoItem place"><a href="/place/1">디큐브 링크아트센터</a></li>
  <li class="infoItem date"><p>2025.01.10 ~ 2025.03.30</p></li>
  <li class="infoItem runtime"><p>150분</p></li>
</ul>`

func reviewPageHTML(total int, items ...string) string {
	page := fmt.Sprintf(`<div id="prdReview"><div class="reviewTotal"><strong><span>%d</span></strong></div></div><ul class="bbsList reviewList">`, total)
	for _, it := range items {
		page += it
	}
	return page + `</ul>`
}

func TestRunReviewMode(t *testing.T) {
	items := []string{
		reviewItemHTML("뮤덕", "배우 열연에 감동"),
		reviewItemHTML("관크없는세상", "커튼콜까지 완벽했어요"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			fmt.Fprint(w, searchHTML)
		case "/goods/1":
			fmt.Fprint(w, goodsHTML)
		case "/goods/1/reviews":
			fmt.Fprint(w, reviewPageHTML(2, items...))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := newFakeStore()
	s := New(srv.URL, srv.Client(), nil, store)

	result, err := s.Run(context.Background(), "시카고", ModeReview)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), result.ConcertID)
	assert.Equal(t, "뮤지컬 시카고", result.Concert)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Duplicates)
	assert.False(t, result.Aborted)
	assert.Len(t, store.reviews, 2)
}

func TestRunReviewModeIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			fmt.Fprint(w, searchHTML)
		case "/goods/1":
			fmt.Fprint(w, goodsHTML)
		case "/goods/1/reviews":
			fmt.Fprint(w, reviewPageHTML(1, reviewItemHTML("뮤덕", "본문")))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := newFakeStore()
	s := New(srv.URL, srv.Client(), nil, store)

	_, err := s.Run(context.Background(), "시카고", ModeReview)
	require.NoError(t, err)
	second, err := s.Run(context.Background(), "시카고", ModeReview)
	require.NoError(t, err)

	assert.Zero(t, second.Created, "re-ingesting the same page writes nothing")
	assert.Equal(t, 1, second.Duplicates)
	assert.Len(t, store.concerts, 1)
	assert.Len(t, store.reviews, 1)
}

func TestRunReviewModeAbortsOnPageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			fmt.Fprint(w, searchHTML)
		case "/goods/1":
			fmt.Fprint(w, goodsHTML)
		case "/goods/1/reviews":
			if r.URL.Query().Get("page") == "1" {
				// 16 reviews forces a second page.
				fmt.Fprint(w, reviewPageHTML(16, reviewItemHTML("뮤덕", "본문")))
				return
			}
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := newFakeStore()
	s := New(srv.URL, srv.Client(), nil, store)

	result, err := s.Run(context.Background(), "시카고", ModeReview)
	require.NoError(t, err, "pagination failure is not a run error")

	assert.True(t, result.Aborted)
	assert.Equal(t, 1, result.Pages)
	assert.Len(t, store.reviews, 1, "page one stays persisted")
}

func TestRunSeatMode(t *testing.T) {
	calendarHTML := `
<ul>
  <li data-view="month current">2025.02</li>
  <li data-view="month next" class="disabled"></li>
</ul>
<ul data-view="days"><li>14</li></ul>`
	dayHTML := `<span class="timeTableLabel" data-text="1회 19:30"></span>`
	roundHTML := `
<div id="productSide"><div class="castInfo"><p>홍길동</p></div></div>
<div class="seatTableItem"><span class="seatTableName">VIP석</span><span class="seatTableStatus">8석</span></div>
<div class="seatTableItem"><span class="seatTableName">R석</span><span class="seatTableStatus">매진</span></div>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			fmt.Fprint(w, searchHTML)
		case r.URL.Path == "/goods/1" && r.URL.RawQuery == "":
			fmt.Fprint(w, goodsHTML)
		case r.URL.Path == "/goods/1/seats" && r.URL.Query().Get("round") != "":
			fmt.Fprint(w, roundHTML)
		case r.URL.Path == "/goods/1/seats" && r.URL.Query().Get("day") != "":
			fmt.Fprint(w, dayHTML)
		case r.URL.Path == "/goods/1/seats":
			fmt.Fprint(w, calendarHTML)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := newFakeStore()
	s := New(srv.URL, srv.Client(), nil, store)

	result, err := s.Run(context.Background(), "시카고", ModeSeat)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	require.Len(t, store.seats, 2)
	vip := store.seats[0]
	assert.Equal(t, 2025, vip.Year)
	assert.Equal(t, 2, vip.Month)
	assert.Equal(t, 14, vip.DayNum)
	assert.Equal(t, "금", vip.DayStr)
	assert.Equal(t, "1회", vip.RoundName)
	assert.Equal(t, "19:30", vip.RoundTime)
	assert.Equal(t, "VIP석", vip.SeatClass)
	assert.Equal(t, 8, vip.SeatCount)
	assert.Equal(t, "홍길동", vip.Actors)
	assert.Equal(t, 0, store.seats[1].SeatCount, "sold out rows record zero")
}

func TestParseModeRejectsUnknown(t *testing.T) {
	_, err := ParseMode("calendar")
	assert.Error(t, err)

	mode, err := ParseMode("review")
	require.NoError(t, err)
	assert.Equal(t, ModeReview, mode)
}
