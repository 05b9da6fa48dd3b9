package main // Entry point package

import (
	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/market-queue/internal/config"
	"github.com/iliyamo/market-queue/internal/database"
	"github.com/iliyamo/market-queue/internal/handler"
	"github.com/iliyamo/market-queue/internal/logger"
	"github.com/iliyamo/market-queue/internal/middleware"
	"github.com/iliyamo/market-queue/internal/queue"
	"github.com/iliyamo/market-queue/internal/repository"
	"github.com/iliyamo/market-queue/internal/router"
	queue_publisher "github.com/iliyamo/market-queue/internal/service"
	"github.com/iliyamo/market-queue/internal/verification"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalw("database connect failed", "error", err)
	}
	defer db.Close()

	// Redis backs the response cache and rate limiter; both degrade to
	// pass-through when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limiting disabled")
	}

	// Repositories.
	counterRepo := repository.NewCounterRepo(db)
	entryRepo := repository.NewEntryRepo(db)
	viewRepo := repository.NewQueueViewRepo(db)
	slotRepo := repository.NewQueueSlotRepo(db)
	staffRepo := repository.NewStaffRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	// Audit trail: publisher used by handlers, consumer draining the
	// broker queue into logs/audit.log.
	pub := queue_publisher.New(log)
	go func() {
		if err := queue.StartAuditConsumer(log); err != nil {
			log.Errorw("audit consumer stopped", "error", err)
		}
	}()

	gate := verification.NewGate(entryRepo)

	authHandler := handler.NewAuthHandler(cfg, staffRepo, tokenRepo)
	regHandler := handler.NewRegistrationHandler(cfg, counterRepo, entryRepo, viewRepo)
	billHandler := handler.NewBillingHandler(entryRepo, pub)
	verifyHandler := handler.NewVerificationHandler(gate, pub)
	queueHandler := handler.NewQueueHandler(cfg, viewRepo, slotRepo)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterQueue(e, regHandler, billHandler, verifyHandler, queueHandler, cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	log.Infow("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
