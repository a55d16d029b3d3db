package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func sampleAttendance() []Attendance {
	return []Attendance{
		{Nickname: "alpha", ConcertName: "시카고", FirstDate: day(1)},
		{Nickname: "alpha", ConcertName: "헤드윅", FirstDate: day(5)},
		{Nickname: "alpha", ConcertName: "캣츠", FirstDate: day(9)},
		{Nickname: "bravo", ConcertName: "시카고", FirstDate: day(2)},
		{Nickname: "bravo", ConcertName: "헤드윅", FirstDate: day(8)},
		{Nickname: "solo", ConcertName: "캣츠", FirstDate: day(3)},
	}
}

func TestViewerPatterns(t *testing.T) {
	got := ViewerPatterns(sampleAttendance())

	assert.Equal(t, []ViewerPattern{
		{Nickname: "alpha", Concerts: []string{"시카고", "헤드윅", "캣츠"}},
		{Nickname: "bravo", Concerts: []string{"시카고", "헤드윅"}},
	}, got, "single-concert reviewers are excluded and histories are date-ordered")
}

func TestViewerPatternsKeepsEarliestDate(t *testing.T) {
	rows := []Attendance{
		{Nickname: "alpha", ConcertName: "헤드윅", FirstDate: day(9)},
		{Nickname: "alpha", ConcertName: "헤드윅", FirstDate: day(1)},
		{Nickname: "alpha", ConcertName: "시카고", FirstDate: day(5)},
	}
	got := ViewerPatterns(rows)

	assert.Equal(t, []string{"헤드윅", "시카고"}, got[0].Concerts)
}

func TestConcertCombinations(t *testing.T) {
	got := ConcertCombinations(sampleAttendance())

	assert.Equal(t, []Combination{
		{ConcertA: "시카고", ConcertB: "헤드윅", Viewers: 2},
		{ConcertA: "시카고", ConcertB: "캣츠", Viewers: 1},
		{ConcertA: "캣츠", ConcertB: "헤드윅", Viewers: 1},
	}, got)
}

func TestAudienceFlows(t *testing.T) {
	got := AudienceFlows(sampleAttendance())

	assert.Equal(t, []Flow{
		{Source: "시카고", Target: "헤드윅", Value: 2},
		{Source: "시카고", Target: "캣츠", Value: 1},
	}, got, "edges run from each reviewer's first concert to the later ones")
}

func TestPatternsEmptyInput(t *testing.T) {
	assert.Empty(t, ViewerPatterns(nil))
	assert.Empty(t, ConcertCombinations(nil))
	assert.Empty(t, AudienceFlows(nil))
}
