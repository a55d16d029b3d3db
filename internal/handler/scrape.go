// This file handles scrape job submission.  The request only validates
// and enqueues; the queue consumer runs the actual scrape so slow sites
// cannot hold an HTTP request open for minutes.
package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jwlee-dev/encoreview/internal/queue"
	"github.com/jwlee-dev/encoreview/internal/scraper"
	"github.com/jwlee-dev/encoreview/internal/service"
)

// ScrapeHandler accepts scrape requests and publishes them as jobs.
type ScrapeHandler struct {
	Analysis *service.AnalysisService
}

// PostScrape validates the form fields (query, mode), publishes a
// scrape.requested job and responds with the job id plus the currently
// known concerts so the client can show what is already available.
func (h *ScrapeHandler) PostScrape(c echo.Context) error {
	ctx := c.Request().Context()

	query := strings.TrimSpace(c.FormValue("query"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query is required"})
	}
	mode, err := scraper.ParseMode(c.FormValue("mode"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "mode must be review or seat"})
	}

	event := queue.NewScrapeRequestedEvent(query, string(mode))
	if err := service.PublishScrapeRequested(ctx, event); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "scrape queue unavailable"})
	}

	concerts, err := h.Analysis.ListConcerts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{
		"job_id":   event.JobID,
		"query":    event.Query,
		"mode":     event.Mode,
		"concerts": concerts,
	})
}
