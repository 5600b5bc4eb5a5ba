package handler

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/beauty-center-booking/internal/config"
	"github.com/iliyamo/beauty-center-booking/internal/middleware"
	"github.com/iliyamo/beauty-center-booking/internal/model"
	"github.com/iliyamo/beauty-center-booking/internal/repository"
	"github.com/iliyamo/beauty-center-booking/internal/response"
	"github.com/iliyamo/beauty-center-booking/internal/utils"
)

// AuthHandler bundles dependencies for the credential endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates a customer account and returns a token pair.
// Elevated roles are never self-assignable; admins promote users
// through the user administration endpoints.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email y contraseña son obligatorios.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password,
		req.FirstName, req.LastName, req.Phone, model.RoleCustomer, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return response.Conflict(c, "El email ya está registrado.")
		}
		return response.ServerError(c, "No se pudo crear el usuario.")
	}

	role := model.RoleName(model.RoleCustomer)
	access, refresh, err := h.issuePair(ctx, uid, role)
	if err != nil {
		return response.ServerError(c, "No se pudo generar el token.")
	}
	return response.Created(c, "Usuario registrado correctamente.", authResp{
		User:    userPart{ID: uid, Email: req.Email, Role: role, FirstName: req.FirstName, LastName: req.LastName},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email y contraseña son obligatorios.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return response.Unauthorized(c, "Credenciales inválidas.")
		}
		return response.ServerError(c, "Error consultando el usuario.")
	}
	if !u.State {
		return response.Unauthorized(c, "Cuenta desactivada.")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return response.Unauthorized(c, "Credenciales inválidas.")
	}

	access, refresh, err := h.issuePair(ctx, u.ID, u.Role())
	if err != nil {
		return response.ServerError(c, "No se pudo generar el token.")
	}
	return response.OK(c, "Inicio de sesión exitoso.", authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role(), FirstName: u.FirstName, LastName: u.LastName},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh validates a refresh token by hash, revokes it and issues a
// fresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return response.BadRequest(c, "refresh_token es obligatorio.")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return response.Unauthorized(c, "Refresh token inválido o expirado.")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || !u.State {
		return response.Unauthorized(c, "Refresh token inválido o expirado.")
	}

	access, refresh, err := h.issuePair(ctx, userID, u.Role())
	if err != nil {
		return response.ServerError(c, "No se pudo generar el token.")
	}
	return response.OK(c, "Token renovado.", authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role(), FirstName: u.FirstName, LastName: u.LastName},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Logout revokes refresh tokens.  With a refresh_token in the body only
// that session ends; without one, every session of the authenticated
// user is revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return response.Unauthorized(c, "Refresh token inválido.")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return response.ServerError(c, "No se pudo cerrar la sesión.")
		}
		return response.OK(c, "Sesión cerrada.", nil)
	}

	uid, ok := middleware.UserID(c)
	if !ok {
		return response.BadRequest(c, "Proporcione refresh_token o un token de acceso.")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return response.ServerError(c, "No se pudo cerrar la sesión.")
	}
	return response.OK(c, "Todas las sesiones cerradas.", nil)
}

// Me returns the authenticated user's account and profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Token inválido o expirado.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return response.ServerError(c, "Error consultando el usuario.")
	}
	return response.OK(c, "", userPart{
		ID: u.ID, Email: u.Email, Role: u.Role(),
		FirstName: u.FirstName, LastName: u.LastName,
	})
}

// issuePair creates and stores an access/refresh token pair.
func (h *AuthHandler) issuePair(ctx context.Context, uid uint64, role string) (utils.AccessToken, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	return access, refresh, nil
}
