package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/beauty-center-booking/internal/response"
)

// Health is a liveness probe.
func Health(c echo.Context) error {
	return response.OK(c, "ok", nil)
}

// HealthDB returns a readiness probe that pings the database.
func HealthDB(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			return response.ServerError(c, "database unreachable")
		}
		return response.OK(c, "ok", nil)
	}
}
