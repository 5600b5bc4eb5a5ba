// Package response implements the uniform JSON envelope used by every
// endpoint of the API, request/response and streaming alike:
//
//	{ "success": bool, "message": string, "data": any, "code": int }
//
// The HTTP status code is embedded in the body in addition to being set
// on the response, so websocket sessions (which have no status line)
// can reuse the exact same shape for their terminal messages.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the wire form shared by all endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Code    int    `json:"code"`
}

// New builds an envelope without writing it anywhere.  Streaming
// handlers use this to push terminal messages over a websocket.
func New(success bool, message string, data any, code int) Envelope {
	return Envelope{Success: success, Message: message, Data: data, Code: code}
}

// JSON writes an envelope with an arbitrary status code.
func JSON(c echo.Context, success bool, message string, data any, code int) error {
	return c.JSON(code, New(success, message, data, code))
}

// OK writes a 200 envelope.
func OK(c echo.Context, message string, data any) error {
	return JSON(c, true, message, data, http.StatusOK)
}

// Created writes a 201 envelope.
func Created(c echo.Context, message string, data any) error {
	return JSON(c, true, message, data, http.StatusCreated)
}

// BadRequest writes a 400 envelope.
func BadRequest(c echo.Context, message string) error {
	return JSON(c, false, message, nil, http.StatusBadRequest)
}

// Unauthorized writes a 401 envelope.
func Unauthorized(c echo.Context, message string) error {
	return JSON(c, false, message, nil, http.StatusUnauthorized)
}

// Forbidden writes a 403 envelope.
func Forbidden(c echo.Context, message string) error {
	return JSON(c, false, message, nil, http.StatusForbidden)
}

// NotFound writes a 404 envelope.
func NotFound(c echo.Context, message string) error {
	return JSON(c, false, message, nil, http.StatusNotFound)
}

// Conflict writes a 409 envelope.
func Conflict(c echo.Context, message string) error {
	return JSON(c, false, message, nil, http.StatusConflict)
}

// TooManyRequests writes a 429 envelope.
func TooManyRequests(c echo.Context, message string) error {
	return JSON(c, false, message, nil, http.StatusTooManyRequests)
}

// ServerError writes a 500 envelope.
func ServerError(c echo.Context, message string) error {
	return JSON(c, false, message, nil, http.StatusInternalServerError)
}
