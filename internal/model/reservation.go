package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation status ids as seeded in the `reservation_status` table.
const (
	ReservationPending   uint8 = 1
	ReservationConfirmed uint8 = 2
	ReservationCancelled uint8 = 3
)

// Reservation records a booking of one service by one user.  The price
// is snapshotted from the service at creation time so later catalog
// edits do not change what the customer owes.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who made the reservation.
//  ServiceID     – service being booked.
//  StatusID      – state of the reservation (pending/confirmed/cancelled).
//  StartDatetime – start of the booked slot.
//  EndDatetime   – end of the booked slot.
//  TotalPrice    – snapshot of the service price.
//  PaymentMethod – cash, card or transfer.
//  State         – soft delete flag.
//  CreatedAt     – creation timestamp.
type Reservation struct {
	ID            uint64          `json:"id_reservation"`
	UserID        uint64          `json:"id_user"`
	ServiceID     uint64          `json:"id_service"`
	StatusID      uint8           `json:"id_reservation_status"`
	StartDatetime time.Time       `json:"start_datetime"`
	EndDatetime   time.Time       `json:"end_datetime"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	PaymentMethod string          `json:"payment_method"`
	State         bool            `json:"state"`
	CreatedAt     time.Time       `json:"created_at"`

	// Joined columns, populated by list queries.
	ServiceName        string  `json:"service_name,omitempty"`
	ServiceDescription *string `json:"service_description,omitempty"`
	DurationMinutes    int     `json:"duration_minutes,omitempty"`
	StatusName         string  `json:"status_name,omitempty"`
	FirstName          string  `json:"first_name,omitempty"`
	LastName           string  `json:"last_name,omitempty"`
	Email              string  `json:"email,omitempty"`
}
