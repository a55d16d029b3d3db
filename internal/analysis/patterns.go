package analysis

import (
	"sort"
	"time"
)

// Attendance is one (reviewer, concert) edge with the date of the
// reviewer's first review for that concert.
type Attendance struct {
	Nickname    string
	ConcertName string
	FirstDate   time.Time
}

// ViewerPattern is the ordered concert history of one repeat reviewer.
type ViewerPattern struct {
	Nickname string   `json:"nickname"`
	Concerts []string `json:"concerts"`
}

// Combination counts how many reviewers wrote about both concerts.
type Combination struct {
	ConcertA string `json:"concert_a"`
	ConcertB string `json:"concert_b"`
	Viewers  int    `json:"viewers"`
}

// Flow is one weighted edge of the audience-movement diagram.
type Flow struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// ViewerPatterns lists reviewers who wrote about more than one concert,
// with each history ordered by first-review date (name as tiebreak).
// Patterns are sorted by nickname.
func ViewerPatterns(rows []Attendance) []ViewerPattern {
	histories := groupByNickname(rows)

	patterns := []ViewerPattern{}
	for nickname, atts := range histories {
		if len(atts) < 2 {
			continue
		}
		names := make([]string, len(atts))
		for i, a := range atts {
			names[i] = a.ConcertName
		}
		patterns = append(patterns, ViewerPattern{Nickname: nickname, Concerts: names})
	}
	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].Nickname < patterns[j].Nickname
	})
	return patterns
}

// ConcertCombinations counts, for every pair of concerts, the reviewers
// who wrote about both.  Pairs with no overlap are omitted; the result is
// sorted by viewer count descending, then by name.
func ConcertCombinations(rows []Attendance) []Combination {
	viewers := map[string]map[string]struct{}{}
	for _, r := range rows {
		set, ok := viewers[r.ConcertName]
		if !ok {
			set = map[string]struct{}{}
			viewers[r.ConcertName] = set
		}
		set[r.Nickname] = struct{}{}
	}

	names := make([]string, 0, len(viewers))
	for name := range viewers {
		names = append(names, name)
	}
	sort.Strings(names)

	combos := []Combination{}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			shared := 0
			for nick := range viewers[names[i]] {
				if _, ok := viewers[names[j]][nick]; ok {
					shared++
				}
			}
			if shared == 0 {
				continue
			}
			combos = append(combos, Combination{ConcertA: names[i], ConcertB: names[j], Viewers: shared})
		}
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Viewers != combos[j].Viewers {
			return combos[i].Viewers > combos[j].Viewers
		}
		if combos[i].ConcertA != combos[j].ConcertA {
			return combos[i].ConcertA < combos[j].ConcertA
		}
		return combos[i].ConcertB < combos[j].ConcertB
	})
	return combos
}

// AudienceFlows builds the movement diagram: for every repeat reviewer,
// an edge runs from their first concert to each later one, and edges are
// summed across reviewers.  Flows are sorted by weight descending, then
// by source and target.
func AudienceFlows(rows []Attendance) []Flow {
	histories := groupByNickname(rows)

	weights := map[[2]string]int{}
	for _, atts := range histories {
		if len(atts) < 2 {
			continue
		}
		first := atts[0].ConcertName
		for _, a := range atts[1:] {
			weights[[2]string{first, a.ConcertName}]++
		}
	}

	flows := make([]Flow, 0, len(weights))
	for edge, value := range weights {
		flows = append(flows, Flow{Source: edge[0], Target: edge[1], Value: value})
	}
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].Value != flows[j].Value {
			return flows[i].Value > flows[j].Value
		}
		if flows[i].Source != flows[j].Source {
			return flows[i].Source < flows[j].Source
		}
		return flows[i].Target < flows[j].Target
	})
	return flows
}

// groupByNickname collapses rows to one entry per (nickname, concert),
// keeping the earliest date, then orders each history chronologically.
func groupByNickname(rows []Attendance) map[string][]Attendance {
	earliest := map[string]map[string]Attendance{}
	for _, r := range rows {
		byConcert, ok := earliest[r.Nickname]
		if !ok {
			byConcert = map[string]Attendance{}
			earliest[r.Nickname] = byConcert
		}
		if prev, ok := byConcert[r.ConcertName]; !ok || r.FirstDate.Before(prev.FirstDate) {
			byConcert[r.ConcertName] = r
		}
	}

	histories := map[string][]Attendance{}
	for nickname, byConcert := range earliest {
		atts := make([]Attendance, 0, len(byConcert))
		for _, a := range byConcert {
			atts = append(atts, a)
		}
		sort.Slice(atts, func(i, j int) bool {
			if !atts[i].FirstDate.Equal(atts[j].FirstDate) {
				return atts[i].FirstDate.Before(atts[j].FirstDate)
			}
			return atts[i].ConcertName < atts[j].ConcertName
		})
		histories[nickname] = atts
	}
	return histories
}
