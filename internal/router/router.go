// Package router defines how HTTP routes are registered for the API.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/beauty-center-booking/internal/config"
	"github.com/iliyamo/beauty-center-booking/internal/handler"
	"github.com/iliyamo/beauty-center-booking/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	Services     *handler.ServiceHandler
	Reservations *handler.ReservationHandler
	Users        *handler.UserAdminHandler
	Import       *handler.ImportHandler
}

// Register wires all routes onto the Echo instance.  Route groups:
//
//	/healthz                 liveness, open
//	/v1/auth/*               credentials, rate limited
//	/v1/services             public catalog, cached
//	/v1/*                    authenticated customer surface
//	/v1/admin/*              administrator surface
//	/v1/admin/upload[...]    import pipeline (websocket + review)
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/healthz/db", handler.HealthDB(db))

	// credentials are the brute-force target, only they get the bucket
	authGroup := e.Group("/v1/auth")
	authGroup.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout)

	// public catalog
	catalog := e.Group("/v1/services")
	catalog.GET("", h.Services.List, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	catalog.GET("/:id", h.Services.Get)

	// authenticated surface, any role
	auth := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)
	auth.POST("/reservations", h.Reservations.Create)
	auth.GET("/reservations", h.Reservations.ListMine)
	auth.GET("/reservations/:id", h.Reservations.Get)
	auth.PUT("/reservations/:id/cancel", h.Reservations.Cancel)

	// administrator surface
	admin := e.Group("/v1/admin",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole("ADMIN"))
	admin.POST("/services", h.Services.Create)
	admin.PUT("/services/:id", h.Services.Update)
	admin.DELETE("/services/:id", h.Services.Delete)

	admin.GET("/reservations", h.Reservations.ListAll)
	admin.PUT("/reservations/:id/status", h.Reservations.UpdateStatus)
	admin.DELETE("/reservations/:id", h.Reservations.Delete)

	admin.GET("/users", h.Users.List)
	admin.GET("/users/:id", h.Users.Get)
	admin.POST("/users", h.Users.Create)
	admin.PUT("/users/:id", h.Users.Update)
	admin.PUT("/users/:id/activate", h.Users.Activate)
	admin.DELETE("/users/:id", h.Users.Deactivate)

	// staged import review (request/response side of the pipeline)
	admin.GET("/upload/sheets", h.Import.Preview)
	admin.PUT("/upload/sheets/:id", h.Import.UpdateRow)
	admin.DELETE("/upload/sheets/cancel", h.Import.CancelPreview)

	// websocket sessions authenticate via their first message, the
	// handshake cannot carry an Authorization header from a browser
	e.GET("/v1/admin/upload/excel", h.Import.Upload)
	e.GET("/v1/admin/upload/confirm", h.Import.Confirm)
}
