package analysis

import (
	"math"
	"sort"
)

// Keyword is a scored term produced by the extraction helpers.
type Keyword struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// Vector is a sparse term-weight vector.
type Vector map[string]float64

// NgramOptions control the vectorizers below, mirroring the knobs the
// reports were tuned with: n-gram span, document-frequency bounds and a
// feature cap.
type NgramOptions struct {
	NMin        int
	NMax        int
	MinDF       int     // drop terms appearing in fewer documents
	MaxDFRatio  float64 // drop terms appearing in more than this share of documents (0 disables)
	MaxFeatures int     // keep only the top terms by document frequency (0 disables)
	Stopwords   map[string]struct{}
}

// WordCounts returns the topN most frequent stopword-filtered tokens
// across all texts.  Zero texts yield an empty slice.
func WordCounts(texts []string, stopwords map[string]struct{}, topN int) []Keyword {
	counts := map[string]int{}
	for _, text := range texts {
		for _, tok := range FilterStopwords(Tokenize(text), stopwords) {
			counts[tok]++
		}
	}
	keywords := make([]Keyword, 0, len(counts))
	for term, n := range counts {
		keywords = append(keywords, Keyword{Term: term, Score: float64(n)})
	}
	sortKeywords(keywords)
	return capKeywords(keywords, topN)
}

// NgramCounts sums raw n-gram occurrences across texts, applying the
// document-frequency bounds and feature cap before ranking.
func NgramCounts(texts []string, opts NgramOptions) []Keyword {
	vocab, _ := buildVocabulary(texts, opts)
	keywords := make([]Keyword, 0, len(vocab))
	for term, st := range vocab {
		keywords = append(keywords, Keyword{Term: term, Score: float64(st.total)})
	}
	sortKeywords(keywords)
	return keywords
}

// NgramTFIDF ranks n-grams by their summed TF-IDF weight across texts,
// using smoothed inverse document frequency.  Scores are rounded to two
// decimals for stable presentation.
func NgramTFIDF(texts []string, opts NgramOptions) []Keyword {
	vocab, totalDocs := buildVocabulary(texts, opts)
	if totalDocs == 0 {
		return []Keyword{}
	}
	keywords := make([]Keyword, 0, len(vocab))
	for term, st := range vocab {
		idf := math.Log(float64(1+totalDocs)/float64(1+st.docs)) + 1
		score := float64(st.total) * idf
		keywords = append(keywords, Keyword{Term: term, Score: math.Round(score*100) / 100})
	}
	sortKeywords(keywords)
	return keywords
}

// TopKeywords extracts the topN highest-weighted terms from the
// concatenation of all texts, the way the emotion-bucket keyword panels
// are built: all texts collapse into a single document, so the weights
// reduce to term frequency over the combined token stream.
func TopKeywords(texts []string, stopwords map[string]struct{}, nMin, nMax, topN int) []Keyword {
	tokens := []string{}
	for _, text := range texts {
		tokens = append(tokens, FilterStopwords(Tokenize(text), stopwords)...)
	}
	if len(tokens) == 0 {
		return []Keyword{}
	}
	counts := map[string]int{}
	for _, gram := range Ngrams(tokens, nMin, nMax) {
		counts[gram]++
	}
	var norm float64
	for _, n := range counts {
		norm += float64(n) * float64(n)
	}
	norm = math.Sqrt(norm)

	keywords := make([]Keyword, 0, len(counts))
	for term, n := range counts {
		keywords = append(keywords, Keyword{Term: term, Score: math.Round(float64(n)/norm*1000) / 1000})
	}
	sortKeywords(keywords)
	return capKeywords(keywords, topN)
}

// TFIDFVectors builds one sparse TF-IDF vector per text over the shared
// vocabulary.  Texts that tokenize to nothing get an empty vector.
func TFIDFVectors(texts []string, stopwords map[string]struct{}) []Vector {
	docs := make([][]string, len(texts))
	df := map[string]int{}
	for i, text := range texts {
		docs[i] = FilterStopwords(Tokenize(text), stopwords)
		seen := map[string]struct{}{}
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}
	vectors := make([]Vector, len(texts))
	for i, tokens := range docs {
		v := Vector{}
		for _, tok := range tokens {
			v[tok]++
		}
		for term, tf := range v {
			idf := math.Log(float64(1+len(texts))/float64(1+df[term])) + 1
			v[term] = tf * idf
		}
		vectors[i] = v
	}
	return vectors
}

// Cosine returns the cosine similarity of two sparse vectors, 0 when
// either is empty.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// iterate the smaller map
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, normA, normB float64
	for term, w := range a {
		normA += w * w
		if bw, ok := b[term]; ok {
			dot += w * bw
		}
	}
	for _, w := range b {
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type termStats struct {
	total int // occurrences across all documents
	docs  int // documents containing the term
}

// buildVocabulary tokenizes every text, expands n-grams and applies the
// document-frequency bounds and feature cap.
func buildVocabulary(texts []string, opts NgramOptions) (map[string]termStats, int) {
	vocab := map[string]termStats{}
	docCount := 0
	for _, text := range texts {
		tokens := FilterStopwords(Tokenize(text), opts.Stopwords)
		if len(tokens) == 0 {
			continue
		}
		docCount++
		seen := map[string]struct{}{}
		for _, gram := range Ngrams(tokens, opts.NMin, opts.NMax) {
			st := vocab[gram]
			st.total++
			if _, ok := seen[gram]; !ok {
				seen[gram] = struct{}{}
				st.docs++
			}
			vocab[gram] = st
		}
	}
	if docCount == 0 {
		return map[string]termStats{}, 0
	}

	for term, st := range vocab {
		if opts.MinDF > 0 && st.docs < opts.MinDF {
			delete(vocab, term)
			continue
		}
		if opts.MaxDFRatio > 0 && float64(st.docs) > opts.MaxDFRatio*float64(docCount) {
			delete(vocab, term)
		}
	}

	if opts.MaxFeatures > 0 && len(vocab) > opts.MaxFeatures {
		type entry struct {
			term string
			st   termStats
		}
		entries := make([]entry, 0, len(vocab))
		for term, st := range vocab {
			entries = append(entries, entry{term, st})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].st.total != entries[j].st.total {
				return entries[i].st.total > entries[j].st.total
			}
			return entries[i].term < entries[j].term
		})
		vocab = make(map[string]termStats, opts.MaxFeatures)
		for _, e := range entries[:opts.MaxFeatures] {
			vocab[e.term] = e.st
		}
	}
	return vocab, docCount
}

func sortKeywords(keywords []Keyword) {
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return keywords[i].Term < keywords[j].Term
	})
}

func capKeywords(keywords []Keyword, topN int) []Keyword {
	if topN > 0 && len(keywords) > topN {
		keywords = keywords[:topN]
	}
	if keywords == nil {
		keywords = []Keyword{}
	}
	return keywords
}
