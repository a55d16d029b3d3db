package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/jwlee-dev/encoreview/internal/config"
	"github.com/jwlee-dev/encoreview/internal/database"
	"github.com/jwlee-dev/encoreview/internal/handler"
	"github.com/jwlee-dev/encoreview/internal/pacer"
	"github.com/jwlee-dev/encoreview/internal/queue"
	"github.com/jwlee-dev/encoreview/internal/repository"
	"github.com/jwlee-dev/encoreview/internal/router"
	"github.com/jwlee-dev/encoreview/internal/scheduler"
	"github.com/jwlee-dev/encoreview/internal/scraper"
	"github.com/jwlee-dev/encoreview/internal/sentiment"
	"github.com/jwlee-dev/encoreview/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	pacerCfg := config.LoadPacerConfig()
	cacheCfg := config.LoadCacheConfig()
	schedCfg := config.LoadSchedulerConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the pacer, the response cache and the scheduler lock.
	// All three degrade gracefully when it is absent.
	rdb := config.NewRedisClient()

	concerts := repository.NewConcertRepo(db)
	reviews := repository.NewReviewRepo(db)
	seats := repository.NewSeatRepo(db)

	store := service.NewScrapeStore(concerts, reviews, seats)
	scr := scraper.New(cfg.TicketBaseURL, nil, pacer.New(pacerCfg, rdb, "ticket"), store)

	classifier := sentiment.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	enricher := sentiment.NewEnricher(reviews, classifier, pacer.New(pacerCfg, rdb, "openai"), cfg.SentimentBatchSize)

	analysisSvc := service.NewAnalysisService(concerts, reviews, seats, cfg.PromoPhrases)

	ctx := context.Background()
	go func() {
		if err := queue.StartScrapeConsumer(ctx, scr); err != nil {
			log.Printf("scrape-consumer: stopped: %v", err)
		}
	}()
	go func() {
		if err := scheduler.New(schedCfg, rdb, concerts, scr).Start(ctx); err != nil {
			log.Printf("scheduler: stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e,
		&handler.ScrapeHandler{Analysis: analysisSvc},
		&handler.SentimentHandler{Enricher: enricher},
		&handler.ReportHandler{Analysis: analysisSvc},
		cacheCfg, rdb,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
