package service

import (
	"context"

	"github.com/jwlee-dev/encoreview/internal/model"
	"github.com/jwlee-dev/encoreview/internal/repository"
)

// ScrapeStore adapts the repositories to the scraper's persistence
// surface.
type ScrapeStore struct {
	concerts *repository.ConcertRepo
	reviews  *repository.ReviewRepo
	seats    *repository.SeatRepo
}

// NewScrapeStore constructs a ScrapeStore over the three repositories.
func NewScrapeStore(concerts *repository.ConcertRepo, reviews *repository.ReviewRepo, seats *repository.SeatRepo) *ScrapeStore {
	return &ScrapeStore{concerts: concerts, reviews: reviews, seats: seats}
}

func (s *ScrapeStore) UpsertConcert(ctx context.Context, c *model.Concert) error {
	return s.concerts.Upsert(ctx, c)
}

func (s *ScrapeStore) InsertReview(ctx context.Context, rv *model.Review) (bool, error) {
	return s.reviews.Insert(ctx, rv)
}

func (s *ScrapeStore) InsertSeat(ctx context.Context, seat *model.Seat) error {
	return s.seats.InsertSnapshot(ctx, seat)
}
