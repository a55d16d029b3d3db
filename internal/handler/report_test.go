package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxWithQuery(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestDateRange(t *testing.T) {
	start, end, err := dateRange(ctxWithQuery(t, "/v1/dashboard?start=2025-01-01&end=2025-01-31"))
	require.NoError(t, err)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *start)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), *end, "end is inclusive of its whole day")
}

func TestDateRangeAbsent(t *testing.T) {
	start, end, err := dateRange(ctxWithQuery(t, "/v1/dashboard"))
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestDateRangeErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "start without end", target: "/v1/dashboard?start=2025-01-01"},
		{name: "malformed start", target: "/v1/dashboard?start=01/01/2025&end=2025-01-31"},
		{name: "malformed end", target: "/v1/dashboard?start=2025-01-01&end=soon"},
		{name: "end before start", target: "/v1/dashboard?start=2025-02-01&end=2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := dateRange(ctxWithQuery(t, tt.target))
			assert.Error(t, err)
		})
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, Health(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
