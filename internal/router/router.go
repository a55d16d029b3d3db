// Package router registers the HTTP routes on the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jwlee-dev/encoreview/internal/config"
	"github.com/jwlee-dev/encoreview/internal/handler"
	"github.com/jwlee-dev/encoreview/internal/middleware"
)

// RegisterRoutes wires every endpoint.  The report GETs run behind the
// Redis response cache; the mutating endpoints (scrape submission,
// sentiment runs) never do.
func RegisterRoutes(
	e *echo.Echo,
	scrape *handler.ScrapeHandler,
	sent *handler.SentimentHandler,
	report *handler.ReportHandler,
	cacheCfg config.CacheConfig,
	rdb *redis.Client,
) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.POST("/scrape", scrape.PostScrape)
	v1.POST("/sentiment/run", sent.PostRun)

	reports := v1.Group("")
	reports.Use(middleware.ResponseCache(cacheCfg, rdb))
	reports.GET("/concerts", report.GetConcerts)
	reports.GET("/concerts/:id/analysis/:type", report.GetConcertAnalysis)
	reports.GET("/concerts/:id/dashboard", report.GetConcertDashboard)
	reports.GET("/dashboard", report.GetHomeDashboard)
	reports.GET("/dashboard/patterns", report.GetPatterns)
	reports.GET("/seats", report.GetSeats)
}
