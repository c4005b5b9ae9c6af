package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-show-scheduling/internal/config"
	"github.com/iliyamo/studio-show-scheduling/internal/database"
	"github.com/iliyamo/studio-show-scheduling/internal/handler"
	"github.com/iliyamo/studio-show-scheduling/internal/middleware"
	"github.com/iliyamo/studio-show-scheduling/internal/planner"
	"github.com/iliyamo/studio-show-scheduling/internal/queue"
	"github.com/iliyamo/studio-show-scheduling/internal/repository"
	"github.com/iliyamo/studio-show-scheduling/internal/router"
	"github.com/iliyamo/studio-show-scheduling/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and response cache disabled")
	}

	// Repositories.
	scheduleRepo := repository.NewScheduleRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)
	showRepo := repository.NewShowRepo(db)
	assignmentRepo := repository.NewAssignmentRepo(db)
	lookupRepo := repository.NewLookupRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	// Services.
	txRunner := service.NewTxRunner(db)
	validator := planner.NewValidator(lookupRepo)
	planningSvc := service.NewPlanningService(txRunner, scheduleRepo, snapshotRepo, validator)
	assignmentSvc := service.NewAssignmentService(txRunner, showRepo, assignmentRepo, lookupRepo)
	bulkSvc := service.NewBulkService(planningSvc)

	// Handlers.
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	scheduleHandler := handler.NewScheduleHandler(planningSvc, lookupRepo, cfg.SnapshotLimit)
	showHandler := handler.NewShowHandler(assignmentSvc)
	bulkHandler := handler.NewBulkHandler(bulkSvc, cfg.BulkMaxItems)
	referenceHandler := handler.NewReferenceHandler(lookupRepo)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterSchedules(e, scheduleHandler, bulkHandler, cfg.JWTSecret)
	router.RegisterShows(e, showHandler, cfg.JWTSecret)
	router.RegisterReference(e, referenceHandler, cfg.JWTSecret, config.LoadCacheConfig(), rdb)

	// Background consumer for schedule.published events.  It reconnects
	// forever on its own; a broker outage never affects the API.
	go func() {
		if err := queue.StartPublishedConsumer(); err != nil {
			log.Printf("schedule-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
