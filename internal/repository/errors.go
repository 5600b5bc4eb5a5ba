// Package repository defines error values that are reused across
// multiple repositories.  These sentinels let handlers distinguish
// failure scenarios without string matching: ErrRowNotFound covers
// both "no such staged row" and "row owned by someone else" so the
// review surface never leaks whether another user's row exists.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email that is
// already taken.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrRowNotFound is returned when a staged row does not exist or does
// not belong to the calling user.  Handlers translate this into the
// "Registro no encontrado o no autorizado" envelope.
var ErrRowNotFound = errors.New("staged row not found")

// ErrServiceNotFound is returned when a catalog service id does not
// resolve.  Handlers translate this into HTTP 404.
var ErrServiceNotFound = errors.New("service not found")

// ErrReservationNotFound is returned when a reservation id does not
// resolve or is soft deleted.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")
