package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwlee-dev/encoreview/internal/scraper"
)

type fakeRunner struct {
	query string
	mode  scraper.Mode
	err   error
}

func (f *fakeRunner) Run(_ context.Context, query string, mode scraper.Mode) (*scraper.Result, error) {
	f.query = query
	f.mode = mode
	if f.err != nil {
		return nil, f.err
	}
	return &scraper.Result{Concert: query, Mode: mode, Pages: 1}, nil
}

func TestHandleJob(t *testing.T) {
	runner := &fakeRunner{}
	body, err := json.Marshal(NewScrapeRequestedEvent("시카고", "review"))
	require.NoError(t, err)

	require.NoError(t, handleJob(context.Background(), runner, body))
	assert.Equal(t, "시카고", runner.query)
	assert.Equal(t, scraper.ModeReview, runner.mode)
}

func TestHandleJobRejectsBadPayloads(t *testing.T) {
	runner := &fakeRunner{}

	assert.Error(t, handleJob(context.Background(), runner, []byte("not json")))

	body, _ := json.Marshal(ScrapeRequestedEvent{JobID: "x", Query: "시카고", Mode: "calendar"})
	assert.Error(t, handleJob(context.Background(), runner, body), "unknown mode is rejected before running")
	assert.Empty(t, runner.query)
}

func TestHandleJobPropagatesRunError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("site down")}
	body, _ := json.Marshal(NewScrapeRequestedEvent("시카고", "seat"))

	err := handleJob(context.Background(), runner, body)
	assert.ErrorContains(t, err, "site down")
}

func TestNewScrapeRequestedEvent(t *testing.T) {
	ev := NewScrapeRequestedEvent("헤드윅", "review")

	assert.NotEmpty(t, ev.JobID)
	assert.Equal(t, "헤드윅", ev.Query)
	assert.Equal(t, "review", ev.Mode)
	assert.NotEmpty(t, ev.RequestedAt)
	assert.NotEqual(t, ev.JobID, NewScrapeRequestedEvent("헤드윅", "review").JobID)
}
