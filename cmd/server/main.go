package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/building-reservation/internal/booking"
	"github.com/iliyamo/building-reservation/internal/config"
	"github.com/iliyamo/building-reservation/internal/database"
	"github.com/iliyamo/building-reservation/internal/handler"
	"github.com/iliyamo/building-reservation/internal/middleware"
	"github.com/iliyamo/building-reservation/internal/queue"
	"github.com/iliyamo/building-reservation/internal/repository"
	"github.com/iliyamo/building-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Repositories and the admission engine.
	resRepo := repository.NewReservationRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	svc := booking.NewService(resRepo)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Refresh(ctx); err != nil {
		cancel()
		log.Fatalf("initial cache load: %v", err)
	}
	cancel()

	// Redis is optional; rate limiting and response caching degrade to
	// no-ops when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
	router.RegisterReservations(e, handler.NewReservationHandler(svc), cfg.JWTSecret)

	// Audit consumer runs for the life of the process and reconnects on
	// broker failures.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
