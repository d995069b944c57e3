package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/unrumbo/ride-reservation/internal/config"
	"github.com/unrumbo/ride-reservation/internal/database"
	"github.com/unrumbo/ride-reservation/internal/handler"
	"github.com/unrumbo/ride-reservation/internal/middleware"
	"github.com/unrumbo/ride-reservation/internal/queue"
	"github.com/unrumbo/ride-reservation/internal/repository"
	"github.com/unrumbo/ride-reservation/internal/router"
	"github.com/unrumbo/ride-reservation/internal/scheduler"
	"github.com/unrumbo/ride-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and sweep locks disabled")
	}

	tripRepo := repository.NewTripRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	historyRepo := repository.NewHistoryRepo(db)
	violationRepo := repository.NewViolationRepo(db)
	userRepo := repository.NewUserRepo(db)
	vehicleRepo := repository.NewVehicleRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	ratingRepo := repository.NewRatingRepo(db)

	notifier := service.NewDispatchNotifier(notificationRepo)
	ledger := service.NewSeatLedger(tripRepo)
	history := service.NewHistoryRecorder(historyRepo, reservationRepo, tripRepo)
	violations := service.NewViolationTracker(violationRepo, time.Duration(cfg.ViolationTTLDays)*24*time.Hour)
	reservations := service.NewReservationManager(tripRepo, reservationRepo, userRepo, ledger, history, notifier)
	trips := service.NewTripService(tripRepo, userRepo, vehicleRepo, reservations, violations, notifier,
		time.Duration(cfg.AutoStartGraceMin)*time.Minute,
		time.Duration(cfg.ForgottenTripHrs)*time.Hour)
	ratings := service.NewRatingService(ratingRepo, tripRepo, userRepo, reservationRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.New(trips, violations, rdb).Start(ctx)

	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	h := router.Handlers{
		Accounts:      handler.NewAccountHandler(userRepo, cfg.BcryptCost),
		Vehicles:      handler.NewVehicleHandler(vehicleRepo),
		Trips:         handler.NewTripHandler(trips),
		Reservations:  handler.NewReservationHandler(reservations),
		History:       handler.NewHistoryHandler(history),
		Violations:    handler.NewViolationHandler(violations),
		Notifications: handler.NewNotificationHandler(notificationRepo),
		Ratings:       handler.NewRatingHandler(ratings),
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterPublic(e, h)
	router.RegisterDriver(e, h, cfg.JWTSecret)
	router.RegisterTraveler(e, h, cfg.JWTSecret)
	router.RegisterShared(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
