// This file handles manual sentiment batch runs.  The scheduler does not
// drive enrichment; an operator (or a cron hitting this endpoint) runs
// batches until SelectUnlabelled comes back empty.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jwlee-dev/encoreview/internal/sentiment"
)

// SentimentHandler triggers enrichment batches.
type SentimentHandler struct {
	Enricher *sentiment.Enricher
}

// PostRun runs one labelling batch and redirects to the dashboard, where
// the freshly labelled reviews show up in the emotion charts.  Pass
// Accept: application/json to get the batch summary instead.
func (h *SentimentHandler) PostRun(c echo.Context) error {
	result, err := h.Enricher.Run(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "enrichment batch failed"})
	}
	if c.Request().Header.Get(echo.HeaderAccept) == echo.MIMEApplicationJSON {
		return c.JSON(http.StatusOK, result)
	}
	return c.Redirect(http.StatusSeeOther, "/v1/dashboard")
}
