package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/talangin/talangin/internal/cache"
	"github.com/talangin/talangin/internal/config"
	"github.com/talangin/talangin/internal/events"
	"github.com/talangin/talangin/internal/handlers"
	"github.com/talangin/talangin/internal/logging"
	"github.com/talangin/talangin/internal/middleware"
	"github.com/talangin/talangin/internal/realtime"
	"github.com/talangin/talangin/internal/repo"
	"github.com/talangin/talangin/internal/search"
	"github.com/talangin/talangin/internal/service"
	"github.com/talangin/talangin/internal/session"
	httpserver "github.com/talangin/talangin/internal/transport/http"
)

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	cipher, err := repo.NewCipher(configuration.ENC_KEY)
	if err != nil {
		log.Fatalf("cipher init failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     configuration.REDIS_ADDR,
		Password: configuration.REDIS_PASSWORD,
	})
	queryCache := cache.New(rdb, configuration.CACHE_TTL)

	producer := events.NewProducer([]string{configuration.KAFKA_ADDRESS}, "room_events")

	esClient, err := search.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch init failed: %v", err)
	}
	roomIndex := search.NewIndex(esClient, configuration.ES_INDEX)

	hub := realtime.NewHub()

	rp := repo.New(db, cipher)
	roomService := &service.Rooms{
		Repo:   rp,
		Cache:  queryCache,
		Events: producer,
		Hub:    hub,
		Index:  roomIndex,
	}
	paymentService := &service.Payments{Repo: rp, Cache: queryCache}
	userService := &service.Users{Repo: rp, Cache: queryCache}
	notifService := &service.Notifications{Repo: rp, Cache: queryCache}

	sessions := &session.Manager{
		DB:            db,
		JWTSecret:     jwtSecret,
		RefreshSecret: refreshSecret,
		Public:        httpserver.PublicRoutes(),
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			DB:            db,
			JWTSecret:     jwtSecret,
			RefreshSecret: refreshSecret,
			Producer:      producer,
			Sessions:      sessions,
		},
		RoomHandler:    &handlers.RoomHandler{Service: roomService},
		ItemHandler:    &handlers.ItemHandler{Service: roomService},
		PaymentHandler: &handlers.PaymentHandler{Service: paymentService},
		ProfileHandler: &handlers.ProfileHandler{DB: db, Users: userService, Notifications: notifService},
		SearchHandler:  &handlers.SearchHandler{Index: roomIndex},
		WSHandler:      handlers.NewWSHandler(hub, roomService),
		Sessions:       sessions,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	if err := rdb.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	log.Println("shutdown complete")
}
