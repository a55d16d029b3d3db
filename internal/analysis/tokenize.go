// Package analysis computes derived views over review text and reviewer
// behaviour: token frequencies, n-gram statistics, TF-IDF keyword
// extraction, cosine-similarity pairing, k-means grouping and audience
// overlap.  Everything here is pure computation over inputs the service
// layer loads from the repositories.
package analysis

import (
	"strings"
	"unicode"
)

// DefaultStopwords are the particles, fillers and sentence endings that
// dominate Korean review text without carrying meaning.  Callers may merge
// in per-deployment additions (e.g. a production's own title).
var DefaultStopwords = buildStopwords(
	"것", "등", "및", "에서", "그리고", "그런데", "하지만", "그래서", "때문에",
	"이런", "저런", "이렇게", "저렇게", "매우", "정말", "진짜", "너무", "아주",
	"거의", "모든", "어떤", "같은", "많은", "적은", "좀", "약간", "조금",
	"다른", "어느", "바로", "정도", "대해", "통해", "더욱", "역시", "만약", "아마",
	"오늘", "내일", "어제", "이번", "저번", "다음", "이전", "최근", "요즘", "지금",
	"입니다", "습니다", "합니다", "했습니다", "봤습니다", "있습니다",
	"이에요", "예요", "네요", "어요", "해요", "했어요", "같아요", "있어요", "없어요", "좋아요",
	"이", "그", "저", "수", "더", "또", "꼭", "볼", "말", "은", "는", "을", "한", "번", "극",
	"보고", "있는", "많이", "다시", "계속", "그냥", "근데", "건", "하는", "하고", "함께",
)

func buildStopwords(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// MergeStopwords returns DefaultStopwords extended with extra terms.
func MergeStopwords(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(DefaultStopwords)+len(extra))
	for w := range DefaultStopwords {
		set[w] = struct{}{}
	}
	for _, w := range extra {
		if w = strings.TrimSpace(w); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// Tokenize splits text into lowercased word runs (letters and digits,
// Hangul included).  Punctuation and symbols separate tokens.
func Tokenize(text string) []string {
	tokens := []string{}
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, strings.ToLower(b.String()))
			b.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// FilterStopwords drops tokens present in the stopword set.
func FilterStopwords(tokens []string, stopwords map[string]struct{}) []string {
	if len(stopwords) == 0 {
		return tokens
	}
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, stop := stopwords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

// Ngrams joins consecutive token runs of length nMin..nMax with single
// spaces, preserving order of first occurrence in the returned stream.
func Ngrams(tokens []string, nMin, nMax int) []string {
	if nMin < 1 {
		nMin = 1
	}
	if nMax < nMin {
		nMax = nMin
	}
	grams := []string{}
	for n := nMin; n <= nMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
