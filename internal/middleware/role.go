package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/beauty-center-booking/internal/response"
)

// RequireRole returns a middleware that enforces that the authenticated
// user has one of the given roles, as stored in the JWT "role" claim.
// It assumes JWTAuth already ran and placed the role in the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return response.Forbidden(c, "No autorizado para esta acción.")
			}
			return next(c)
		}
	}
}
