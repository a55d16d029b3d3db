package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarPairsBand(t *testing.T) {
	items := []SimilarItem{
		{ID: 1, Nickname: "alpha", Text: "무대 연출 음악 좋다"},
		{ID: 2, Nickname: "bravo", Text: "무대 연출 음악 별로"},
	}
	got := SimilarPairs(items, nil)

	assert.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].AID)
	assert.Equal(t, uint64(2), got[0].BID)
	assert.Greater(t, got[0].Similarity, 0.5)
	assert.Less(t, got[0].Similarity, 0.9)
}

func TestSimilarPairsExcludesNearDuplicates(t *testing.T) {
	items := []SimilarItem{
		{ID: 1, Nickname: "alpha", Text: "완전 같은 홍보 문구"},
		{ID: 2, Nickname: "bravo", Text: "완전 같은 홍보 문구"},
	}
	assert.Empty(t, SimilarPairs(items, nil), "identical texts sit above the ceiling")
}

func TestSimilarPairsExcludesUnrelated(t *testing.T) {
	items := []SimilarItem{
		{ID: 1, Nickname: "alpha", Text: "배우 연기 감동"},
		{ID: 2, Nickname: "bravo", Text: "좌석 시야 불편"},
	}
	assert.Empty(t, SimilarPairs(items, nil))
}

func TestSimilarPairsOnePairPerNickname(t *testing.T) {
	items := []SimilarItem{
		{ID: 1, Nickname: "alpha", Text: "무대 연출 음악 좋다"},
		{ID: 2, Nickname: "bravo", Text: "무대 연출 음악 별로"},
		{ID: 3, Nickname: "carol", Text: "무대 연출 음악 최악"},
	}
	got := SimilarPairs(items, nil)

	assert.Len(t, got, 1, "every qualifying pair reuses a nickname after the first")
	seen := map[string]int{}
	for _, p := range got {
		seen[p.ANickname]++
		seen[p.BNickname]++
	}
	for nick, n := range seen {
		assert.Equal(t, 1, n, "nickname %s appears in more than one pair", nick)
	}
}

func TestSimilarPairsTooFewItems(t *testing.T) {
	assert.Empty(t, SimilarPairs(nil, nil))
	assert.Empty(t, SimilarPairs([]SimilarItem{{ID: 1, Nickname: "alpha", Text: "혼자"}}, nil))
}
