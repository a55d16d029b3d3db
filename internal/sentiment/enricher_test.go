package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwlee-dev/encoreview/internal/model"
)

// fakeReviewStore mimics the repository's unlabelled selection and
// write-once labelling.
type fakeReviewStore struct {
	reviews  []model.Review
	emotions map[uint64]string
	setErr   error
}

func newFakeReviewStore(reviews ...model.Review) *fakeReviewStore {
	return &fakeReviewStore{reviews: reviews, emotions: map[uint64]string{}}
}

func (f *fakeReviewStore) SelectUnlabelled(_ context.Context, limit int) ([]model.Review, error) {
	out := []model.Review{}
	for _, rv := range f.reviews {
		if len(out) == limit {
			break
		}
		if _, labelled := f.emotions[rv.ID]; labelled {
			continue
		}
		if rv.Text() == "" {
			continue
		}
		out = append(out, rv)
	}
	return out, nil
}

func (f *fakeReviewStore) SetEmotion(_ context.Context, id uint64, emotion string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.emotions[id] = emotion
	return nil
}

// fakeClassifier returns canned answers keyed by review text.
type fakeClassifier struct {
	answers map[string]string
	errs    map[string]error
	calls   int
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (string, error) {
	f.calls++
	if err := f.errs[text]; err != nil {
		return "", err
	}
	return f.answers[text], nil
}

func review(id uint64, text string) model.Review {
	return model.Review{ID: id, Description: &text}
}

func TestEnricherRun(t *testing.T) {
	store := newFakeReviewStore(
		review(1, "최고였어요"),
		review(2, "별로였어요"),
	)
	classifier := &fakeClassifier{answers: map[string]string{
		"최고였어요": model.EmotionPositive,
		"별로였어요": model.EmotionNegative,
	}}

	result, err := NewEnricher(store, classifier, nil, 5).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &BatchResult{Selected: 2, Labelled: 2}, result)
	assert.Equal(t, model.EmotionPositive, store.emotions[1])
	assert.Equal(t, model.EmotionNegative, store.emotions[2])
}

func TestEnricherSkipsEmptyDescriptions(t *testing.T) {
	store := newFakeReviewStore(
		review(1, ""),
		review(2, "본문 있는 리뷰"),
	)
	classifier := &fakeClassifier{answers: map[string]string{"본문 있는 리뷰": model.EmotionNeutral}}

	result, err := NewEnricher(store, classifier, nil, 5).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Selected, "reviews without a body are never selected")
	assert.Equal(t, 1, classifier.calls)
	_, labelled := store.emotions[1]
	assert.False(t, labelled)
}

func TestEnricherPerItemDurability(t *testing.T) {
	store := newFakeReviewStore(
		review(1, "첫번째"),
		review(2, "두번째"),
		review(3, "세번째"),
	)
	classifier := &fakeClassifier{
		answers: map[string]string{
			"첫번째": model.EmotionPositive,
			"세번째": model.EmotionNegative,
		},
		errs: map[string]error{"두번째": errors.New("api down")},
	}

	result, err := NewEnricher(store, classifier, nil, 5).Run(context.Background())
	require.NoError(t, err)

	// The failed item costs only itself; labels around it are persisted.
	assert.Equal(t, &BatchResult{Selected: 3, Labelled: 2, Failed: 1}, result)
	_, labelled := store.emotions[2]
	assert.False(t, labelled, "failed review stays unset for a later run")
}

func TestEnricherInconclusive(t *testing.T) {
	store := newFakeReviewStore(review(1, "모호한 리뷰"))
	classifier := &fakeClassifier{answers: map[string]string{"모호한 리뷰": ""}}

	result, err := NewEnricher(store, classifier, nil, 5).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &BatchResult{Selected: 1, Inconclusive: 1}, result)
	assert.Empty(t, store.emotions)
}

func TestEnricherBatchLimit(t *testing.T) {
	store := newFakeReviewStore(
		review(1, "하나"), review(2, "둘"), review(3, "셋"),
		review(4, "넷"), review(5, "다섯"), review(6, "여섯"),
	)
	classifier := &fakeClassifier{answers: map[string]string{}}

	result, err := NewEnricher(store, classifier, nil, 0).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Selected, "batch size below 1 falls back to the default of 5")
	assert.Equal(t, 5, classifier.calls)
}

func TestEnricherEmptyBacklog(t *testing.T) {
	result, err := NewEnricher(newFakeReviewStore(), &fakeClassifier{}, nil, 5).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &BatchResult{}, result)
}
