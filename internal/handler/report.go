// This file exposes the report surface: concert listings, per-concert
// analysis and dashboards, the home dashboard, co-attendance patterns
// and the seat report.  All responses are JSON recomputed per request
// behind the response cache.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jwlee-dev/encoreview/internal/repository"
	"github.com/jwlee-dev/encoreview/internal/service"
)

// ReportHandler serves the read-only analytics endpoints.
type ReportHandler struct {
	Analysis *service.AnalysisService
}

// GetConcerts lists every stored concert.
func (h *ReportHandler) GetConcerts(c echo.Context) error {
	concerts, err := h.Analysis.ListConcerts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": concerts})
}

// GetConcertAnalysis runs one analysis type over a concert's reviews.
func (h *ReportHandler) GetConcertAnalysis(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	result, err := h.Analysis.ConcertAnalysis(c.Request().Context(), id, c.Param("type"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConcertNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		case errors.Is(err, service.ErrUnknownAnalysisType):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown analysis type"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "analysis failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"type": c.Param("type"), "result": result})
}

// GetConcertDashboard returns the full per-concert report.
func (h *ReportHandler) GetConcertDashboard(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	dashboard, err := h.Analysis.ConcertDashboard(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrConcertNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "concert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "dashboard failed"})
	}
	return c.JSON(http.StatusOK, dashboard)
}

// GetHomeDashboard returns the cross-concert report.  Optional start/end
// query parameters (YYYY-MM-DD, both required together) restrict the
// review date range.
func (h *ReportHandler) GetHomeDashboard(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	dashboard, err := h.Analysis.HomeDashboard(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "dashboard failed"})
	}
	return c.JSON(http.StatusOK, dashboard)
}

// GetPatterns returns the co-attendance report over an optional review
// date range.
func (h *ReportHandler) GetPatterns(c echo.Context) error {
	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	patterns, err := h.Analysis.Patterns(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "patterns failed"})
	}
	return c.JSON(http.StatusOK, patterns)
}

// GetSeats returns seat snapshots, optionally filtered by concert name.
func (h *ReportHandler) GetSeats(c echo.Context) error {
	report, err := h.Analysis.SeatReport(c.Request().Context(), c.QueryParam("concert"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, report)
}

// dateRange parses the optional start/end query parameters.  Both must be
// present to take effect; end is extended to the end of its day so the
// range is inclusive.
func dateRange(c echo.Context) (*time.Time, *time.Time, error) {
	startRaw, endRaw := c.QueryParam("start"), c.QueryParam("end")
	if startRaw == "" && endRaw == "" {
		return nil, nil, nil
	}
	if startRaw == "" || endRaw == "" {
		return nil, nil, errors.New("start and end must be given together")
	}
	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		return nil, nil, errors.New("start must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		return nil, nil, errors.New("end must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, nil, errors.New("end precedes start")
	}
	end = end.Add(24*time.Hour - time.Second)
	return &start, &end, nil
}
