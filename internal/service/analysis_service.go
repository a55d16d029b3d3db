// This file computes the report payloads: per-concert analysis listings,
// the concert and home dashboards, co-attendance patterns and the seat
// report.  Reports are recomputed from the repositories on every call;
// the HTTP layer fronts them with the response cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jwlee-dev/encoreview/internal/analysis"
	"github.com/jwlee-dev/encoreview/internal/model"
	"github.com/jwlee-dev/encoreview/internal/repository"
)

// ErrUnknownAnalysisType rejects analysis type strings outside the enum.
var ErrUnknownAnalysisType = errors.New("unknown analysis type")

// Analysis type enum accepted by ConcertAnalysis.
const (
	AnalysisLongReviews          = "long_reviews"
	AnalysisFrequentReviewers    = "frequent_reviewers"
	AnalysisFrequentWords        = "frequent_words"
	AnalysisFrequentWordsMix     = "frequent_words_mix"
	AnalysisFrequentWordsWeighty = "frequent_words_important"
	AnalysisSimilarReviews       = "similar_reviews"
	AnalysisTopViewCount         = "top_view_count_reviews"
	AnalysisLowStarRating        = "low_star_rating_reviews"
)

// N-gram settings for the frequent-words reports.
const (
	mixNgramMin     = 2
	mixNgramMax     = 6
	mixMinDF        = 2
	mixMaxDFRatio   = 0.9
	mixMaxFeatures  = 50
	keywordTopN     = 10
	wordCountTopN   = 50
	recentReviewCap = 5
)

var genres = []string{"뮤지컬", "연극", "콘서트", "기타"}

// ReviewView is a review shaped for JSON responses.
type ReviewView struct {
	ID          uint64   `json:"id"`
	Nickname    string   `json:"nickname"`
	Date        string   `json:"date"`
	ViewCount   int      `json:"view_count"`
	LikeCount   int      `json:"like_count"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StarRating  *float64 `json:"star_rating"`
	Emotion     *string  `json:"emotion"`
}

// StatsView is an average/count pair on the 10-point display scale.
type StatsView struct {
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// TrendView is one day of review activity for charting.
type TrendView struct {
	Date  string   `json:"date"`
	Count int      `json:"count"`
	Avg   *float64 `json:"avg"`
}

// ConcertSummaryView is one concert's aggregate line on the home
// dashboard, with its recent trend series attached.
type ConcertSummaryView struct {
	Name      string      `json:"name"`
	Place     string      `json:"place"`
	Genre     string      `json:"genre"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Avg       float64     `json:"avg"`
	Count     int         `json:"count"`
	Trends    []TrendView `json:"trends"`
}

// AnalysisService computes reports over the stored data.
type AnalysisService struct {
	concerts     *repository.ConcertRepo
	reviews      *repository.ReviewRepo
	seats        *repository.SeatRepo
	stopwords    map[string]struct{}
	promoPhrases []string
}

// NewAnalysisService constructs an AnalysisService.  promoPhrases are
// description substrings whose reviews are excluded from listings (site
// promotions posing as reviews).
func NewAnalysisService(
	concerts *repository.ConcertRepo,
	reviews *repository.ReviewRepo,
	seats *repository.SeatRepo,
	promoPhrases []string,
) *AnalysisService {
	return &AnalysisService{
		concerts:     concerts,
		reviews:      reviews,
		seats:        seats,
		stopwords:    analysis.MergeStopwords(promoPhrases),
		promoPhrases: promoPhrases,
	}
}

// ConcertAnalysis dispatches one of the analysis types over a concert's
// reviews.  Zero reviews yield empty payloads, never an error; an
// analysis type outside the enum returns ErrUnknownAnalysisType.
func (s *AnalysisService) ConcertAnalysis(ctx context.Context, concertID uint64, analysisType string) (any, error) {
	if _, err := s.concerts.GetByID(ctx, concertID); err != nil {
		return nil, err
	}

	switch analysisType {
	case AnalysisLongReviews:
		reviews, err := s.reviews.LongReviews(ctx, concertID)
		if err != nil {
			return nil, err
		}
		return reviewViews(s.filterPromo(reviews)), nil

	case AnalysisFrequentReviewers:
		return s.reviews.FrequentReviewers(ctx, concertID)

	case AnalysisFrequentWords:
		texts, err := s.reviewTexts(ctx, concertID)
		if err != nil {
			return nil, err
		}
		return analysis.WordCounts(texts, s.stopwords, wordCountTopN), nil

	case AnalysisFrequentWordsMix:
		texts, err := s.reviewTexts(ctx, concertID)
		if err != nil {
			return nil, err
		}
		return analysis.NgramCounts(texts, s.ngramOptions()), nil

	case AnalysisFrequentWordsWeighty:
		texts, err := s.reviewTexts(ctx, concertID)
		if err != nil {
			return nil, err
		}
		return analysis.NgramTFIDF(texts, s.ngramOptions()), nil

	case AnalysisSimilarReviews:
		return s.clusterReviews(ctx, concertID)

	case AnalysisTopViewCount:
		reviews, err := s.reviews.TopViewCount(ctx, concertID)
		if err != nil {
			return nil, err
		}
		return reviewViews(s.filterPromo(reviews)), nil

	case AnalysisLowStarRating:
		reviews, err := s.reviews.LowStarRating(ctx, concertID)
		if err != nil {
			return nil, err
		}
		return reviewViews(s.filterPromo(reviews)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAnalysisType, analysisType)
}

// ConcertDashboard assembles the full per-concert report: rating
// statistics against the global and same-genre averages, emotion
// distribution, trends, per-emotion keywords, recent labelled reviews and
// similar-review pairs.
func (s *AnalysisService) ConcertDashboard(ctx context.Context, concertID uint64) (map[string]any, error) {
	concert, err := s.concerts.GetByID(ctx, concertID)
	if err != nil {
		return nil, err
	}

	concertStats, err := s.reviews.StatsByConcert(ctx, concertID)
	if err != nil {
		return nil, err
	}
	overallStats, err := s.reviews.StatsOverall(ctx)
	if err != nil {
		return nil, err
	}
	genre := "기타"
	if concert.Genre != nil {
		genre = *concert.Genre
	}
	genreStats, err := s.reviews.StatsByGenre(ctx, genre)
	if err != nil {
		return nil, err
	}

	emotions, err := s.reviews.EmotionCounts(ctx, concertID)
	if err != nil {
		return nil, err
	}
	trends, err := s.reviews.Trends(ctx, concertID)
	if err != nil {
		return nil, err
	}

	keywords := map[string][]analysis.Keyword{}
	recent := map[string][]ReviewView{}
	for _, label := range []string{model.EmotionPositive, model.EmotionNegative} {
		labelled, err := s.reviews.ListByEmotion(ctx, concertID, label)
		if err != nil {
			return nil, err
		}
		labelled = s.filterPromo(labelled)
		keywords[label] = analysis.TopKeywords(reviewTexts(labelled), s.stopwords, 1, 2, keywordTopN)
		if len(labelled) > recentReviewCap {
			labelled = labelled[:recentReviewCap]
		}
		recent[label] = reviewViews(labelled)
	}

	pairs, err := s.similarPairs(ctx, concertID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"concert": concertView(concert),
		"stats": map[string]StatsView{
			"concert": displayStats(concertStats),
			"overall": displayStats(overallStats),
			"genre":   displayStats(genreStats),
		},
		"emotions":        fullEmotionCounts(emotions),
		"trends":          trendViews(trends),
		"keywords":        keywords,
		"recent_reviews":  recent,
		"similar_reviews": pairs,
	}, nil
}

// HomeDashboard assembles the cross-concert report: overall and
// per-genre statistics and emotion distributions, plus per-concert
// summaries (optionally restricted to a review date range) with each
// concert's recent 30-day trend series.
func (s *AnalysisService) HomeDashboard(ctx context.Context, start, end *time.Time) (map[string]any, error) {
	overall, err := s.reviews.StatsOverall(ctx)
	if err != nil {
		return nil, err
	}
	overallEmotions, err := s.reviews.EmotionCountsByGenre(ctx, "")
	if err != nil {
		return nil, err
	}

	genreStats := map[string]StatsView{}
	genreEmotions := map[string]map[string]int{}
	for _, g := range genres {
		st, err := s.reviews.StatsByGenre(ctx, g)
		if err != nil {
			return nil, err
		}
		genreStats[g] = displayStats(st)
		em, err := s.reviews.EmotionCountsByGenre(ctx, g)
		if err != nil {
			return nil, err
		}
		genreEmotions[g] = fullEmotionCounts(em)
	}

	rows, err := s.reviews.ConcertSummaries(ctx, start, end)
	if err != nil {
		return nil, err
	}
	since := time.Now().AddDate(0, 0, -30)
	summaries := make([]ConcertSummaryView, 0, len(rows))
	for _, row := range rows {
		trends, err := s.reviews.TrendsByConcertNameSince(ctx, row.ConcertName, since)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summaryView(row, trends))
	}

	return map[string]any{
		"stats": map[string]any{
			"overall":  displayStats(overall),
			"by_genre": genreStats,
		},
		"emotions": map[string]any{
			"overall":  fullEmotionCounts(overallEmotions),
			"by_genre": genreEmotions,
		},
		"concerts": summaries,
	}, nil
}

// Patterns assembles the co-attendance report: repeat-viewer histories,
// concert audience intersections and the audience-movement flows,
// optionally restricted to a review date range.
func (s *AnalysisService) Patterns(ctx context.Context, start, end *time.Time) (map[string]any, error) {
	rows, err := s.reviews.NicknameConcerts(ctx, start, end)
	if err != nil {
		return nil, err
	}
	attendance := make([]analysis.Attendance, 0, len(rows))
	for _, row := range rows {
		first, err := time.Parse("2006-01-02", row.FirstDate)
		if err != nil {
			return nil, fmt.Errorf("first review date %q: %w", row.FirstDate, err)
		}
		attendance = append(attendance, analysis.Attendance{
			Nickname:    row.Nickname,
			ConcertName: row.ConcertName,
			FirstDate:   first,
		})
	}
	return map[string]any{
		"viewer_patterns": analysis.ViewerPatterns(attendance),
		"combinations":    analysis.ConcertCombinations(attendance),
		"flows":           analysis.AudienceFlows(attendance),
	}, nil
}

// SeatReport lists seat snapshots, optionally restricted to one concert
// name, with the concert and round filter values.
func (s *AnalysisService) SeatReport(ctx context.Context, concertName string) (map[string]any, error) {
	snapshots, err := s.seats.ListSnapshots(ctx, concertName)
	if err != nil {
		return nil, err
	}
	names, err := s.concerts.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	rounds, err := s.seats.DistinctRounds(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"snapshots": snapshots,
		"concerts":  names,
		"rounds":    rounds,
	}, nil
}

// ListConcerts returns every stored concert shaped for JSON.
func (s *AnalysisService) ListConcerts(ctx context.Context) ([]map[string]any, error) {
	concerts, err := s.concerts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]map[string]any, 0, len(concerts))
	for i := range concerts {
		views = append(views, concertView(&concerts[i]))
	}
	return views, nil
}

func (s *AnalysisService) ngramOptions() analysis.NgramOptions {
	return analysis.NgramOptions{
		NMin:        mixNgramMin,
		NMax:        mixNgramMax,
		MinDF:       mixMinDF,
		MaxDFRatio:  mixMaxDFRatio,
		MaxFeatures: mixMaxFeatures,
		Stopwords:   s.stopwords,
	}
}

func (s *AnalysisService) reviewTexts(ctx context.Context, concertID uint64) ([]string, error) {
	reviews, err := s.reviews.ListByConcert(ctx, concertID)
	if err != nil {
		return nil, err
	}
	return reviewTexts(s.filterPromo(reviews)), nil
}

// clusterReviews groups a concert's reviews by title similarity into the
// fixed number of topic groups.
func (s *AnalysisService) clusterReviews(ctx context.Context, concertID uint64) (map[int][]string, error) {
	reviews, err := s.reviews.ListByConcert(ctx, concertID)
	if err != nil {
		return nil, err
	}
	reviews = s.filterPromo(reviews)
	items := make([]analysis.ClusterItem, 0, len(reviews))
	for _, rv := range reviews {
		items = append(items, analysis.ClusterItem{ID: rv.ID, Label: rv.Title, Text: rv.Title + " " + rv.Text()})
	}
	return analysis.ClusterTexts(items, s.stopwords, analysis.DefaultClusterCount)
}

func (s *AnalysisService) similarPairs(ctx context.Context, concertID uint64) ([]analysis.SimilarPair, error) {
	reviews, err := s.reviews.ListByConcert(ctx, concertID)
	if err != nil {
		return nil, err
	}
	reviews = s.filterPromo(reviews)
	items := make([]analysis.SimilarItem, 0, len(reviews))
	for _, rv := range reviews {
		if rv.Text() == "" {
			continue
		}
		items = append(items, analysis.SimilarItem{ID: rv.ID, Nickname: rv.Nickname, Text: rv.Text()})
	}
	return analysis.SimilarPairs(items, s.stopwords), nil
}

// filterPromo drops reviews whose body contains any configured promo
// phrase.  Promotions posted through the review form would otherwise
// dominate the length- and rating-ordered listings.
func (s *AnalysisService) filterPromo(reviews []model.Review) []model.Review {
	if len(s.promoPhrases) == 0 {
		return reviews
	}
	out := reviews[:0:0]
	for _, rv := range reviews {
		if containsAny(rv.Text(), s.promoPhrases) {
			continue
		}
		out = append(out, rv)
	}
	return out
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// displayStats doubles the stored 0-5 average onto the 10-point display
// scale, rounded to two decimals.
func displayStats(s repository.RatingStats) StatsView {
	return StatsView{Avg: math.Round(s.Avg*2*100) / 100, Count: s.Count}
}

// fullEmotionCounts fills absent labels with zero so chart payloads always
// carry all three keys.
func fullEmotionCounts(counts map[string]int) map[string]int {
	full := map[string]int{
		model.EmotionPositive: 0,
		model.EmotionNeutral:  0,
		model.EmotionNegative: 0,
	}
	for label, n := range counts {
		full[label] = n
	}
	return full
}

func reviewTexts(reviews []model.Review) []string {
	texts := []string{}
	for i := range reviews {
		if t := reviews[i].Text(); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

func reviewViews(reviews []model.Review) []ReviewView {
	views := make([]ReviewView, 0, len(reviews))
	for i := range reviews {
		rv := &reviews[i]
		views = append(views, ReviewView{
			ID:          rv.ID,
			Nickname:    rv.Nickname,
			Date:        rv.Date.Format("2006-01-02"),
			ViewCount:   rv.ViewCount,
			LikeCount:   rv.LikeCount,
			Title:       rv.Title,
			Description: rv.Text(),
			StarRating:  rv.StarRating,
			Emotion:     rv.Emotion,
		})
	}
	return views
}

func trendViews(points []repository.TrendPoint) []TrendView {
	views := make([]TrendView, 0, len(points))
	for _, p := range points {
		avg := p.Avg
		if avg != nil {
			doubled := math.Round(*avg*2*100) / 100
			avg = &doubled
		}
		views = append(views, TrendView{Date: p.Date, Count: p.Count, Avg: avg})
	}
	return views
}

func summaryView(row repository.ConcertSummaryRow, trends []repository.TrendPoint) ConcertSummaryView {
	v := ConcertSummaryView{
		Name:   row.ConcertName,
		Place:  row.Place,
		Genre:  "기타",
		Avg:    math.Round(row.Avg*2*100) / 100,
		Count:  row.Count,
		Trends: trendViews(trends),
	}
	if row.Genre != nil {
		v.Genre = *row.Genre
	}
	if row.StartDate != nil {
		v.StartDate = row.StartDate.Format("2006-01-02")
	}
	if row.EndDate != nil {
		v.EndDate = row.EndDate.Format("2006-01-02")
	}
	return v
}

func concertView(c *model.Concert) map[string]any {
	view := map[string]any{
		"id":    c.ID,
		"name":  c.Name,
		"place": c.Place,
	}
	if c.StartDate != nil {
		view["start_date"] = c.StartDate.Format("2006-01-02")
	}
	if c.EndDate != nil {
		view["end_date"] = c.EndDate.Format("2006-01-02")
	}
	if c.DurationMinutes != nil {
		view["duration_minutes"] = *c.DurationMinutes
	}
	if c.Genre != nil {
		view["genre"] = *c.Genre
	}
	return view
}
