// Package scheduler runs the recurring scrape jobs: a daily review
// refresh of every stored concert and seat-snapshot runs several times a
// day.  Each tick takes a Redis SETNX lock before doing work so that
// overlapping runs (several replicas, or a run outliving its slot)
// cannot race the same concerts.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwlee-dev/encoreview/internal/config"
	"github.com/jwlee-dev/encoreview/internal/scraper"
)

// ConcertLister supplies the concert names to refresh; implemented by
// repository.ConcertRepo.
type ConcertLister interface {
	ListNames(ctx context.Context) ([]string, error)
}

// Runner executes one scrape; implemented by scraper.Scraper.
type Runner interface {
	Run(ctx context.Context, query string, mode scraper.Mode) (*scraper.Result, error)
}

// Scheduler fires scrape runs at configured hours.
type Scheduler struct {
	cfg      config.SchedulerConfig
	rdb      *redis.Client
	concerts ConcertLister
	runner   Runner
}

// New constructs a Scheduler.  rdb may be nil; ticks then run unlocked,
// which is acceptable for a single replica.
func New(cfg config.SchedulerConfig, rdb *redis.Client, concerts ConcertLister, runner Runner) *Scheduler {
	return &Scheduler{cfg: cfg, rdb: rdb, concerts: concerts, runner: runner}
}

// Start blocks, firing review and seat runs at their configured hours
// until the context is cancelled.  It is meant to run in its own
// goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		log.Printf("scheduler: disabled")
		return nil
	}
	log.Printf("scheduler: review refresh at %02d:00, seat snapshots at %v", s.cfg.ReviewHour, s.cfg.SeatHours)

	for {
		next := s.nextTick(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		hour := next.Hour()
		if hour == s.cfg.ReviewHour {
			s.runAll(ctx, scraper.ModeReview, next)
		}
		for _, h := range s.cfg.SeatHours {
			if hour == h {
				s.runAll(ctx, scraper.ModeSeat, next)
				break
			}
		}
	}
}

// nextTick returns the earliest upcoming scheduled hour strictly after
// now.
func (s *Scheduler) nextTick(now time.Time) time.Time {
	hours := append([]int{s.cfg.ReviewHour}, s.cfg.SeatHours...)
	var next time.Time
	for _, h := range hours {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}

// runAll refreshes every stored concert in the given mode, guarded by the
// tick lock.
func (s *Scheduler) runAll(ctx context.Context, mode scraper.Mode, tick time.Time) {
	if !s.acquireLock(ctx, mode, tick) {
		log.Printf("scheduler: %s tick %s already claimed, skipping", mode, tick.Format("2006-01-02T15"))
		return
	}

	names, err := s.concerts.ListNames(ctx)
	if err != nil {
		log.Printf("scheduler: listing concerts failed: %v", err)
		return
	}
	log.Printf("scheduler: %s run over %d concerts", mode, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return
		}
		result, err := s.runner.Run(ctx, name, mode)
		if err != nil {
			// One failed concert does not stop the sweep.
			log.Printf("scheduler: %s scrape %q failed: %v", mode, name, err)
			continue
		}
		log.Printf("scheduler: %s scrape %q pages=%d created=%d duplicates=%d skipped=%d aborted=%t",
			mode, name, result.Pages, result.Created, result.Duplicates, result.Skipped, result.Aborted)
	}
}

// acquireLock claims the tick with SETNX.  The TTL bounds how long a
// crashed run can block the slot; the lock is never released early so a
// second replica cannot double-run a slow sweep.
func (s *Scheduler) acquireLock(ctx context.Context, mode scraper.Mode, tick time.Time) bool {
	if s.rdb == nil {
		return true
	}
	key := fmt.Sprintf("scheduler:lock:%s:%s", mode, tick.Format("2006-01-02T15"))
	ok, err := s.rdb.SetNX(ctx, key, 1, s.cfg.LockTTL).Result()
	if err != nil {
		log.Printf("scheduler: lock %s failed: %v; running unlocked", key, err)
		return true
	}
	return ok
}
