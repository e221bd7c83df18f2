package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/mkarlis/roomcast/internal/config"
	"github.com/mkarlis/roomcast/internal/database"
	"github.com/mkarlis/roomcast/internal/handler"
	"github.com/mkarlis/roomcast/internal/queue"
	"github.com/mkarlis/roomcast/internal/repository"
	"github.com/mkarlis/roomcast/internal/router"

	mw "github.com/mkarlis/roomcast/internal/middleware"
)

func main() {
	// .env is a development convenience; in production everything comes
	// from real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	// Redis is optional: a nil client turns the poll cache and rate
	// limiter into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; poll cache and rate limiting disabled")
	}

	devices := repository.NewDeviceRepo(db)
	sessions := repository.NewSessionRepo(db)
	access := repository.NewAccessRepo(db)
	videos := repository.NewVideoRepo(db)
	users := repository.NewUserRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users)
	deviceHandler := handler.NewDeviceHandler(cfg, devices, sessions)
	sessionHandler := handler.NewSessionHandler(sessions, access, videos)
	accessHandler := handler.NewAccessHandler(access)
	catalogHandler := handler.NewCatalogHandler(videos)

	pollCache := mw.NewPollCache(config.LoadPollCacheConfig(), rdb)
	rateLimit := mw.NewRateLimit(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterDevices(e, deviceHandler, cfg.JWTSecret, rateLimit)
	router.RegisterSessions(e, sessionHandler, cfg.JWTSecret, devices, pollCache)
	router.RegisterAccess(e, accessHandler, catalogHandler, cfg.JWTSecret)

	// Audit consumer runs for the life of the process and reconnects on
	// broker failures.
	go func() {
		if err := queue.StartRoomEventConsumer(); err != nil {
			log.Printf("room-events consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
