package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/beauty-center-booking/internal/middleware"
	"github.com/iliyamo/beauty-center-booking/internal/model"
	"github.com/iliyamo/beauty-center-booking/internal/repository"
	"github.com/iliyamo/beauty-center-booking/internal/response"
)

// ReservationHandler serves booking endpoints for customers and the
// admin listing/management side.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Services     *repository.ServiceRepo
}

func NewReservationHandler(r *repository.ReservationRepo, s *repository.ServiceRepo) *ReservationHandler {
	return &ReservationHandler{Reservations: r, Services: s}
}

var paymentMethods = map[string]bool{"cash": true, "card": true, "transfer": true}

type createReservationReq struct {
	ServiceID     uint64 `json:"id_service"`
	StartDatetime string `json:"start_datetime"` // RFC 3339
	PaymentMethod string `json:"payment_method"`
}

// Create books an active service for the authenticated user.  The end
// of the slot is derived from the service duration and the price is
// snapshotted from the catalog.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Token inválido o expirado.")
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}
	start, err := time.Parse(time.RFC3339, req.StartDatetime)
	if err != nil {
		return response.BadRequest(c, "Fecha de inicio inválida.")
	}
	if start.Before(time.Now()) {
		return response.BadRequest(c, "La fecha de inicio debe ser futura.")
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if !paymentMethods[method] {
		return response.BadRequest(c, "Método de pago inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	svc, err := h.Services.GetActiveByID(ctx, req.ServiceID)
	if err == repository.ErrServiceNotFound {
		return response.NotFound(c, "Servicio no encontrado o inactivo.")
	}
	if err != nil {
		return response.ServerError(c, "Error consultando el servicio.")
	}

	res := model.Reservation{
		UserID:        uid,
		ServiceID:     svc.ID,
		StartDatetime: start.UTC(),
		EndDatetime:   start.UTC().Add(time.Duration(svc.DurationMinutes) * time.Minute),
		TotalPrice:    svc.Price,
		PaymentMethod: method,
	}
	id, err := h.Reservations.Create(ctx, res, svc.Name)
	if err != nil {
		return response.ServerError(c, "No se pudo crear la reserva.")
	}
	res.ID = id
	res.StatusID = model.ReservationPending
	res.ServiceName = svc.Name
	return response.Created(c, "Reserva creada correctamente.", res)
}

// ListMine returns the authenticated user's reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Token inválido o expirado.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return response.ServerError(c, "Error consultando las reservas.")
	}
	return response.OK(c, "", out)
}

// Get returns one reservation.  Customers only see their own; admins
// see any.
func (h *ReservationHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Token inválido o expirado.")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err == repository.ErrReservationNotFound {
		return response.NotFound(c, "Reserva no encontrada.")
	}
	if err != nil {
		return response.ServerError(c, "Error consultando la reserva.")
	}
	if role, _ := c.Get("role").(string); res.UserID != uid && role != "ADMIN" {
		return response.Forbidden(c, "No autorizado para esta acción.")
	}
	return response.OK(c, "", res)
}

// Cancel lets a customer cancel their own reservation.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Token inválido o expirado.")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Reservations.Cancel(ctx, id, uid); err {
	case nil:
		return response.OK(c, "Reserva cancelada.", nil)
	case repository.ErrReservationNotFound:
		return response.NotFound(c, "Reserva no encontrada.")
	case repository.ErrForbidden:
		return response.Forbidden(c, "No autorizado para esta acción.")
	default:
		return response.ServerError(c, "No se pudo cancelar la reserva.")
	}
}

// ListAll returns every reservation with customer identity.  Admin
// only.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Reservations.ListAll(ctx)
	if err != nil {
		return response.ServerError(c, "Error consultando las reservas.")
	}
	return response.OK(c, "", out)
}

type updateStatusReq struct {
	StatusID uint8 `json:"id_reservation_status"`
}

// UpdateStatus moves a reservation between pending, confirmed and
// cancelled.  Admin only.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Cuerpo de la solicitud inválido.")
	}
	switch req.StatusID {
	case model.ReservationPending, model.ReservationConfirmed, model.ReservationCancelled:
	default:
		return response.BadRequest(c, "Estado de reserva inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.UpdateStatus(ctx, id, req.StatusID); err != nil {
		if err == repository.ErrReservationNotFound {
			return response.NotFound(c, "Reserva no encontrada.")
		}
		return response.ServerError(c, "No se pudo actualizar la reserva.")
	}
	return response.OK(c, "Reserva actualizada.", nil)
}

// Delete soft-deletes a reservation.  Admin only.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Identificador inválido.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.SoftDelete(ctx, id); err != nil {
		if err == repository.ErrReservationNotFound {
			return response.NotFound(c, "Reserva no encontrada.")
		}
		return response.ServerError(c, "No se pudo eliminar la reserva.")
	}
	return response.OK(c, "Reserva eliminada.", nil)
}
