package sentiment

import (
	"context"
	"log"

	"github.com/jwlee-dev/encoreview/internal/model"
	"github.com/jwlee-dev/encoreview/internal/pacer"
)

// ReviewStore is the slice of the review repository the enricher needs.
type ReviewStore interface {
	SelectUnlabelled(ctx context.Context, limit int) ([]model.Review, error)
	SetEmotion(ctx context.Context, id uint64, emotion string) error
}

// Classifier produces a label (or "" for inconclusive) for review text.
type Classifier interface {
	Classify(ctx context.Context, reviewText string) (string, error)
}

// BatchResult summarizes one enrichment run.
type BatchResult struct {
	Selected     int `json:"selected"`
	Labelled     int `json:"labelled"`
	Inconclusive int `json:"inconclusive"`
	Failed       int `json:"failed"`
}

// Enricher labels unlabelled reviews in small paced batches.  Each label
// is persisted as soon as it is produced: a failed classification costs
// only that one review, which stays unset and is picked up again by the
// next run.  There is deliberately no batch-wide transaction.
type Enricher struct {
	store      ReviewStore
	classifier Classifier
	pacer      *pacer.Pacer
	batchSize  int
}

// NewEnricher constructs an Enricher.  batchSize caps how many reviews one
// run labels; values below 1 fall back to 5.
func NewEnricher(store ReviewStore, classifier Classifier, p *pacer.Pacer, batchSize int) *Enricher {
	if batchSize < 1 {
		batchSize = 5
	}
	return &Enricher{store: store, classifier: classifier, pacer: p, batchSize: batchSize}
}

// Run selects up to the batch size of reviews that still need a label
// (emotion unset, non-empty description) and classifies them one at a
// time, waiting on the pacer between remote calls.  Context cancellation
// stops the batch between items.
func (e *Enricher) Run(ctx context.Context) (*BatchResult, error) {
	reviews, err := e.store.SelectUnlabelled(ctx, e.batchSize)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Selected: len(reviews)}
	if len(reviews) == 0 {
		log.Printf("enricher: no reviews need labelling")
		return result, nil
	}

	for i := range reviews {
		rv := &reviews[i]
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if e.pacer != nil {
			if err := e.pacer.Wait(ctx); err != nil {
				return result, err
			}
		}

		label, err := e.classifier.Classify(ctx, rv.Text())
		if err != nil {
			// The review stays unset and will be retried on a later run.
			log.Printf("enricher: classify review %d failed: %v", rv.ID, err)
			result.Failed++
			continue
		}
		if label == "" {
			log.Printf("enricher: review %d inconclusive", rv.ID)
			result.Inconclusive++
			continue
		}

		if err := e.store.SetEmotion(ctx, rv.ID, label); err != nil {
			log.Printf("enricher: persist label for review %d failed: %v", rv.ID, err)
			result.Failed++
			continue
		}
		result.Labelled++
	}

	log.Printf("enricher: batch done selected=%d labelled=%d inconclusive=%d failed=%d",
		result.Selected, result.Labelled, result.Inconclusive, result.Failed)
	return result, nil
}
