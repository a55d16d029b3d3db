package analysis

import (
	"math"
	"sort"
)

// SimilarPair links two reviews whose texts score inside the similarity
// band: close enough to share a topic, not so close they are copies.
type SimilarPair struct {
	AID        uint64  `json:"a_id"`
	ANickname  string  `json:"a_nickname"`
	AText      string  `json:"a_text"`
	BID        uint64  `json:"b_id"`
	BNickname  string  `json:"b_nickname"`
	BText      string  `json:"b_text"`
	Similarity float64 `json:"similarity"`
}

// SimilarItem is one review entering the pairwise comparison.
type SimilarItem struct {
	ID       uint64
	Nickname string
	Text     string
}

// Similarity band: pairs at or below the floor share too little, pairs at
// or above the ceiling are near-duplicates (promo copy, pasted text).
const (
	similarFloor   = 0.5
	similarCeiling = 0.9
)

// SimilarPairs compares every pair of items by TF-IDF cosine similarity
// and keeps pairs strictly inside (0.5, 0.9).  Each nickname contributes
// at most one pair (its best-scoring one), so a single prolific reviewer
// cannot flood the report.  The result is sorted by similarity descending.
func SimilarPairs(items []SimilarItem, stopwords map[string]struct{}) []SimilarPair {
	pairs := []SimilarPair{}
	if len(items) < 2 {
		return pairs
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	vectors := TFIDFVectors(texts, stopwords)

	candidates := []SimilarPair{}
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sim := Cosine(vectors[i], vectors[j])
			if sim <= similarFloor || sim >= similarCeiling {
				continue
			}
			candidates = append(candidates, SimilarPair{
				AID:        items[i].ID,
				ANickname:  items[i].Nickname,
				AText:      items[i].Text,
				BID:        items[j].ID,
				BNickname:  items[j].Nickname,
				BText:      items[j].Text,
				Similarity: math.Round(sim*1000) / 1000,
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].AID < candidates[j].AID
	})

	seen := map[string]struct{}{}
	for _, p := range candidates {
		if _, dup := seen[p.ANickname]; dup {
			continue
		}
		if _, dup := seen[p.BNickname]; dup {
			continue
		}
		seen[p.ANickname] = struct{}{}
		seen[p.BNickname] = struct{}{}
		pairs = append(pairs, p)
	}
	return pairs
}
