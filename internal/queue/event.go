// Package queue defines the scrape job payload and the background
// consumer that executes scrape runs delivered over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// ScrapeQueueName is the durable queue scrape jobs travel through.
const ScrapeQueueName = "scrape.requested"

// ScrapeRequestedEvent asks the consumer to run one scrape.  It carries
// everything the run needs so the consumer never reads request state from
// the primary database.
type ScrapeRequestedEvent struct {
	JobID       string `json:"job_id"`
	Query       string `json:"query"`
	Mode        string `json:"mode"`
	RequestedAt string `json:"requested_at"`
}

// NewScrapeRequestedEvent builds an event with a fresh job id and the
// current UTC timestamp.
func NewScrapeRequestedEvent(query, mode string) ScrapeRequestedEvent {
	return ScrapeRequestedEvent{
		JobID:       uuid.NewString(),
		Query:       query,
		Mode:        mode,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
