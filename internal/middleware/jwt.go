package middleware // middleware contains reusable HTTP middleware functions

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/beauty-center-booking/internal/response"
	"github.com/iliyamo/beauty-center-booking/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the subject and role claims into the request
// context under "user_id" (uint64) and "role" (string).  Rejections
// use the uniform envelope so every endpoint of the API answers in the
// same shape.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return response.Unauthorized(c, "Formato de token inválido.")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, role, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				return response.Unauthorized(c, "Token inválido o expirado.")
			}
			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id stored by JWTAuth.  The
// second return is false when the context carries no valid id.
func UserID(c echo.Context) (uint64, bool) {
	v, ok := c.Get("user_id").(uint64)
	return v, ok && v > 0
}
