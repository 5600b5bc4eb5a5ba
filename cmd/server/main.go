package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/beauty-center-booking/internal/config"
	"github.com/iliyamo/beauty-center-booking/internal/database"
	"github.com/iliyamo/beauty-center-booking/internal/handler"
	"github.com/iliyamo/beauty-center-booking/internal/queue"
	"github.com/iliyamo/beauty-center-booking/internal/repository"
	"github.com/iliyamo/beauty-center-booking/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional, real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	services := repository.NewServiceRepo(db)
	reservations := repository.NewReservationRepo(db)
	staging := repository.NewStagingRepo(db)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Services:     handler.NewServiceHandler(services),
		Reservations: handler.NewReservationHandler(reservations, services),
		Users:        handler.NewUserAdminHandler(cfg, users),
		Import:       handler.NewImportHandler(cfg, users, staging, services, queue.NewPublisher()),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	router.Register(e, cfg, h, rdb, db)

	// audit trail consumer; reconnects on its own, never returns
	go func() {
		if err := queue.StartImportConsumer(); err != nil {
			log.Printf("import consumer stopped: %v", err)
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// block until interrupted, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
