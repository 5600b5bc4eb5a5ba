package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/beauty-center-booking/internal/config"
	"github.com/iliyamo/beauty-center-booking/internal/model"
	"github.com/iliyamo/beauty-center-booking/internal/repository"
	"github.com/iliyamo/beauty-center-booking/internal/response"
)

// UserAdminHandler serves the admin-only account management endpoints.
type UserAdminHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserAdminHandler(cfg config.Config, u *repository.UserRepo) *UserAdminHandler {
	return &UserAdminHandler{Cfg: cfg, Users: u}
}

type adminUserPart struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	State     bool   `json:"state"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func toAdminPart(u model.User) adminUserPart {
	return adminUserPart{
		ID: u.ID, Email: u.Email, Role: u.Role(), State: u.State,
		FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone,
	}
}

// List returns every account with its profile.
func (h *UserAdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return response.ServerError(c, "Error consultando los usuarios.")
	}
	out := make([]adminUserPart, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminPart(u))
	}
	return response.OK(c, "", out)
}

// Get returns one account by id.
func (h *UserAdminHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return response.NotFound(c, "Usuario no encontrado.")
	}
	return response.OK(c, "", toAdminPart(u))
}

type createUserReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"` // ADMIN | CUSTOMER | STYLIST
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Create registers an account with an arbitrary role.  Unlike the
// public register endpoint, an admin can create stylists and other
// admins.
func (h *UserAdminHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email y contraseña son obligatorios.")
	}
	roleID := model.RoleID(strings.ToUpper(strings.TrimSpace(req.Role)))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password,
		req.FirstName, req.LastName, req.Phone, roleID, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return response.Conflict(c, "El email ya está registrado.")
		}
		return response.ServerError(c, "No se pudo crear el usuario.")
	}
	return response.Created(c, "Usuario creado correctamente.", adminUserPart{
		ID: uid, Email: req.Email, Role: model.RoleName(roleID), State: true,
		FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone,
	})
}

type updateUserReq struct {
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
}

// Update changes an account's profile and, optionally, its email and
// role.
func (h *UserAdminHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}
	var roleID *uint8
	if req.Role != nil {
		r := model.RoleID(strings.ToUpper(strings.TrimSpace(*req.Role)))
		roleID = &r
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		return response.NotFound(c, "Usuario no encontrado.")
	}
	if err := h.Users.UpdateProfile(ctx, id, req.FirstName, req.LastName, req.Phone, req.Email, roleID); err != nil {
		if err == repository.ErrEmailExists {
			return response.Conflict(c, "El email ya está registrado.")
		}
		return response.ServerError(c, "No se pudo actualizar el usuario.")
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return response.ServerError(c, "Error consultando el usuario.")
	}
	return response.OK(c, "Usuario actualizado correctamente.", toAdminPart(u))
}

// Deactivate soft-deletes an account so it can no longer log in.
func (h *UserAdminHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false, "Usuario desactivado.")
}

// Activate restores a soft-deleted account.
func (h *UserAdminHandler) Activate(c echo.Context) error {
	return h.setActive(c, true, "Usuario activado.")
}

func (h *UserAdminHandler) setActive(c echo.Context, active bool, msg string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		return response.NotFound(c, "Usuario no encontrado.")
	}
	if err := h.Users.SetActive(ctx, id, active); err != nil {
		return response.ServerError(c, "No se pudo actualizar el usuario.")
	}
	return response.OK(c, msg, nil)
}
