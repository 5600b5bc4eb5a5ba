package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/beauty-center-booking/internal/model"
	"github.com/iliyamo/beauty-center-booking/internal/repository"
	"github.com/iliyamo/beauty-center-booking/internal/response"
)

// ServiceHandler exposes the catalog: public listing plus the admin
// CRUD used to maintain it by hand alongside the import pipeline.
type ServiceHandler struct {
	Services *repository.ServiceRepo
}

func NewServiceHandler(s *repository.ServiceRepo) *ServiceHandler {
	return &ServiceHandler{Services: s}
}

type serviceReq struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           string  `json:"price"`
	State           *bool   `json:"state"`
}

// validate normalizes the request and returns a Spanish reason when a
// field is unacceptable.  The rules mirror the import validator so a
// row rejected on upload cannot be snuck in through the CRUD.
func (req *serviceReq) validate() (decimal.Decimal, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return decimal.Decimal{}, "El nombre no puede estar vacío"
	}
	if req.DurationMinutes <= 0 {
		return decimal.Decimal{}, "La duración debe ser mayor a 0"
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return decimal.Decimal{}, "Precio inválido"
	}
	if price.IsNegative() {
		return decimal.Decimal{}, "El precio no puede ser negativo"
	}
	return price, ""
}

// List returns the whole catalog.  Public, cached.
func (h *ServiceHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	services, err := h.Services.List(ctx)
	if err != nil {
		return response.ServerError(c, "Error consultando los servicios.")
	}
	return response.OK(c, "", services)
}

// Get returns one service by id.
func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Services.GetByID(ctx, id)
	if err == repository.ErrServiceNotFound {
		return response.NotFound(c, "Servicio no encontrado.")
	}
	if err != nil {
		return response.ServerError(c, "Error consultando el servicio.")
	}
	return response.OK(c, "", s)
}

// Create adds a catalog service.  Admin only.  The duplicate rule is
// the same name-only match the import committer applies.
func (h *ServiceHandler) Create(c echo.Context) error {
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}
	price, reason := req.validate()
	if reason != "" {
		return response.BadRequest(c, reason)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	exists, err := h.Services.ExistsByName(ctx, req.Name)
	if err != nil {
		return response.ServerError(c, "Error consultando los servicios.")
	}
	if exists {
		return response.Conflict(c, "Ya existe un servicio con ese nombre.")
	}

	state := true
	if req.State != nil {
		state = *req.State
	}
	s := model.Service{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           price,
		State:           state,
	}
	id, err := h.Services.Create(ctx, s)
	if err != nil {
		return response.ServerError(c, "No se pudo crear el servicio.")
	}
	s.ID = id
	return response.Created(c, "Servicio creado correctamente.", s)
}

// Update replaces a service's mutable fields.  Admin only.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}
	price, reason := req.validate()
	if reason != "" {
		return response.BadRequest(c, reason)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Services.GetByID(ctx, id)
	if err == repository.ErrServiceNotFound {
		return response.NotFound(c, "Servicio no encontrado.")
	}
	if err != nil {
		return response.ServerError(c, "Error consultando el servicio.")
	}
	if req.Name != existing.Name {
		exists, err := h.Services.ExistsByName(ctx, req.Name)
		if err != nil {
			return response.ServerError(c, "Error consultando los servicios.")
		}
		if exists {
			return response.Conflict(c, "Ya existe un servicio con ese nombre.")
		}
	}

	state := existing.State
	if req.State != nil {
		state = *req.State
	}
	s := model.Service{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           price,
		State:           state,
	}
	if err := h.Services.Update(ctx, s); err != nil {
		if err == repository.ErrServiceNotFound {
			return response.NotFound(c, "Servicio no encontrado.")
		}
		return response.ServerError(c, "No se pudo actualizar el servicio.")
	}
	return response.OK(c, "Servicio actualizado correctamente.", s)
}

// Delete removes a service from the catalog.  Admin only.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Services.Delete(ctx, id); err != nil {
		if err == repository.ErrServiceNotFound {
			return response.NotFound(c, "Servicio no encontrado.")
		}
		return response.ServerError(c, "No se pudo eliminar el servicio.")
	}
	return response.OK(c, "Servicio eliminado correctamente.", nil)
}
