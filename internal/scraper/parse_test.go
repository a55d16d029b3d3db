package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const detailHTML = `
<h2 class="prdTitle">뮤지컬 시카고</h2>
<ul class="infoList">
  <li class="infoItem place"><a href="/place/1">디큐브 링크아트센터</a></li>
  <li class="infoItem date"><p>2025.01.10 ~ 2025.03.30</p></li>
  <li class="infoItem runtime"><p>150분</p></li>
</ul>`

func TestParseConcertInfo(t *testing.T) {
	info, err := ParseConcertInfo(docFrom(t, detailHTML))
	require.NoError(t, err)

	assert.Equal(t, "뮤지컬 시카고", info.Name)
	assert.Equal(t, "디큐브 링크아트센터", info.Place)
	assert.Equal(t, "뮤지컬", info.Genre)
	require.NotNil(t, info.StartDate)
	require.NotNil(t, info.EndDate)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), *info.StartDate)
	assert.Equal(t, time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC), *info.EndDate)
	require.NotNil(t, info.DurationMinutes)
	assert.Equal(t, 150, *info.DurationMinutes)
}

func TestParseConcertInfoDegradesMalformedFields(t *testing.T) {
	html := `
<h2 class="prdTitle">연극 아트</h2>
<ul class="infoList">
  <li class="infoItem place"><a href="/place/2">예술의전당</a></li>
  <li class="infoItem date"><p>추후 공지</p></li>
  <li class="infoItem runtime"><p>미정</p></li>
</ul>`
	info, err := ParseConcertInfo(docFrom(t, html))
	require.NoError(t, err)

	assert.Equal(t, "연극", info.Genre)
	assert.Nil(t, info.StartDate, "unparsable date range leaves dates unset")
	assert.Nil(t, info.EndDate)
	assert.Nil(t, info.DurationMinutes)
}

func TestParseConcertInfoSingleDayRun(t *testing.T) {
	html := `
<h2 class="prdTitle">김동률 콘서트</h2>
<ul class="infoList">
  <li class="infoItem place"><a href="/place/3">올림픽홀</a></li>
  <li class="infoItem date"><p>2025.05.05</p></li>
</ul>`
	info, err := ParseConcertInfo(docFrom(t, html))
	require.NoError(t, err)

	assert.Equal(t, "콘서트", info.Genre)
	require.NotNil(t, info.StartDate)
	assert.Equal(t, *info.StartDate, *info.EndDate, "single date stands for a one-day run")
}

func TestParseConcertInfoMissingTitle(t *testing.T) {
	_, err := ParseConcertInfo(docFrom(t, `<ul class="infoList"></ul>`))
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestInferGenreFallback(t *testing.T) {
	assert.Equal(t, "기타", inferGenre("오페라의 유령"))
}

func TestParseReviewTotal(t *testing.T) {
	html := `<div id="prdReview"><div class="reviewTotal"><strong>총 <span>1,234</span>건</strong></div></div>`
	assert.Equal(t, 1234, ParseReviewTotal(docFrom(t, html)))
	assert.Equal(t, 0, ParseReviewTotal(docFrom(t, `<div></div>`)))
}

func reviewItemHTML(nickname, description string) string {
	return `
<li class="bbsItem">
  <span class="name">` + nickname + `</span>
  <div class="prdStarIcon" data-star="4.5"></div>
  <p class="bbsTitleText">최고의 무대</p>
  <p class="bbsText">` + description + `</p>
  <ul>
    <li class="bbsItemInfoList">평점</li>
    <li class="bbsItemInfoList">2025.02.14</li>
    <li class="bbsItemInfoList">조회 321</li>
    <li class="bbsItemInfoList">좋아요 12</li>
  </ul>
</li>`
}

func TestParseReviewPage(t *testing.T) {
	html := `<ul class="bbsList reviewList">` +
		reviewItemHTML("관크없는세상", "커튼콜까지 완벽했어요") +
		reviewItemHTML("뮤덕", "배우 열연에 감동") +
		`</ul>`
	records, skipped := ParseReviewPage(docFrom(t, html))

	assert.Zero(t, skipped)
	require.Len(t, records, 2)
	first := records[0]
	assert.Equal(t, "관크없는세상", first.Nickname)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, 321, first.ViewCount)
	assert.Equal(t, 12, first.LikeCount)
	assert.Equal(t, "최고의 무대", first.Title)
	assert.Equal(t, "커튼콜까지 완벽했어요", first.Description)
	assert.Equal(t, 4.5, first.StarRating)
}

func TestParseReviewPageSkipsBrokenItems(t *testing.T) {
	// Second item has no nickname; it is skipped, the rest of the page
	// still parses.
	html := `<ul class="bbsList reviewList">` +
		reviewItemHTML("정상유저", "본문") +
		`<li class="bbsItem"><p class="bbsTitleText">제목만 있음</p></li>` +
		`</ul>`
	records, skipped := ParseReviewPage(docFrom(t, html))

	assert.Len(t, records, 1)
	assert.Equal(t, 1, skipped)
}

func TestParseCalendarMonth(t *testing.T) {
	html := `
<ul>
  <li data-view="month current">2025.02</li>
  <li data-view="month next"></li>
</ul>`
	year, month, hasNext, err := ParseCalendarMonth(docFrom(t, html))
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 2, month)
	assert.True(t, hasNext)
}

func TestParseCalendarMonthLastMonth(t *testing.T) {
	html := `
<ul>
  <li data-view="month current">2025.03</li>
  <li data-view="month next" class="disabled"></li>
</ul>`
	_, _, hasNext, err := ParseCalendarMonth(docFrom(t, html))
	require.NoError(t, err)
	assert.False(t, hasNext)
}

func TestParseCalendarDays(t *testing.T) {
	html := `
<ul data-view="days">
  <li class="muted">31</li>
  <li>1</li>
  <li class="disabled">2</li>
  <li>3</li>
</ul>`
	assert.Equal(t, []int{1, 3}, ParseCalendarDays(docFrom(t, html)))
}

func TestParseRounds(t *testing.T) {
	html := `
<div>
  <span class="timeTableLabel" data-text="1회 14:00"></span>
  <span class="timeTableLabel" data-text="2회 19:30"></span>
  <span class="timeTableLabel" data-text="낮공"></span>
</div>`
	rounds := ParseRounds(docFrom(t, html))

	assert.Equal(t, []Round{
		{Name: "1회", Time: "14:00"},
		{Name: "2회", Time: "19:30"},
		{Name: "낮공", Time: ""},
	}, rounds)
}

func TestParseSeatClasses(t *testing.T) {
	html := `
<div>
  <div class="seatTableItem"><span class="seatTableName">VIP석</span><span class="seatTableStatus">12석</span></div>
  <div class="seatTableItem"><span class="seatTableName">R석</span><span class="seatTableStatus">매진</span></div>
</div>`
	seats := ParseSeatClasses(docFrom(t, html))

	assert.Equal(t, []SeatClassCount{
		{Class: "VIP석", Count: 12},
		{Class: "R석", Count: 0},
	}, seats)
}

func TestParseCast(t *testing.T) {
	html := `<div id="productSide"><div class="castInfo"><p>홍길동, 김배우</p></div></div>`
	assert.Equal(t, "홍길동, 김배우", ParseCast(docFrom(t, html)))
	assert.Equal(t, "", ParseCast(docFrom(t, `<div></div>`)))
}

func TestFirstSearchResult(t *testing.T) {
	html := `
<div id="contents">
  <a class="searchResultItem" href="/goods/100"></a>
  <a class="searchResultItem" href="/goods/200"></a>
</div>`
	href, err := FirstSearchResult(docFrom(t, html))
	require.NoError(t, err)
	assert.Equal(t, "/goods/100", href)

	_, err = FirstSearchResult(docFrom(t, `<div id="contents"></div>`))
	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "1234", digitsOnly("조회 1,234"))
	assert.Equal(t, "", digitsOnly("매진"))
}
