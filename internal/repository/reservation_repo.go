package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/beauty-center-booking/internal/model"
)

// ReservationRepo persists bookings in the 'reservation' table plus the
// matching 'calendar_block' rows that mark the slot as taken.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationSelect = `
	SELECT r.id_reservation, r.id_user, r.id_service, r.id_reservation_status,
	       r.start_datetime, r.end_datetime, r.created_at, r.total_price,
	       r.payment_method, r.state,
	       s.name, s.description, s.duration_minutes, rs.name
	FROM reservation r
	INNER JOIN service s ON r.id_service = s.id_service
	INNER JOIN reservation_status rs ON r.id_reservation_status = rs.id_reservation_status`

// Create inserts a reservation and its calendar block in one
// transaction.  The service must be active; its price and name are
// snapshotted at this point.
func (r *ReservationRepo) Create(ctx context.Context, res model.Reservation, serviceName string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO reservation
		 (id_user, id_service, id_reservation_status, start_datetime, end_datetime, total_price, payment_method, state)
		 VALUES (?,?,?,?,?,?,?,TRUE)`,
		res.UserID, res.ServiceID, model.ReservationPending,
		res.StartDatetime, res.EndDatetime, res.TotalPrice, res.PaymentMethod)
	if err != nil {
		return 0, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO calendar_block
		 (id_reservation, title, start_datetime, end_datetime, color, type, state)
		 VALUES (?,?,?,?,'#b3ffb3','reservation',TRUE)`,
		id, fmt.Sprintf("Reserva: %s", serviceName), res.StartDatetime, res.EndDatetime); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// ListByUser returns the active reservations of one user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx,
		reservationSelect+" WHERE r.id_user=? AND r.state=TRUE ORDER BY r.start_datetime DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows, false)
}

// ListAll returns every active reservation including customer identity,
// newest first.  Admin-only listing.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id_reservation, r.id_user, r.id_service, r.id_reservation_status,
		       r.start_datetime, r.end_datetime, r.created_at, r.total_price,
		       r.payment_method, r.state,
		       s.name, s.description, s.duration_minutes, rs.name,
		       COALESCE(up.first_name, ''), COALESCE(up.last_name, ''), COALESCE(ua.email, '')
		FROM reservation r
		INNER JOIN service s ON r.id_service = s.id_service
		INNER JOIN reservation_status rs ON r.id_reservation_status = rs.id_reservation_status
		LEFT JOIN user_account ua ON r.id_user = ua.id_user
		LEFT JOIN user_profile up ON up.id_user = ua.id_user
		WHERE r.state=TRUE
		ORDER BY r.start_datetime DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows, true)
}

// GetByID fetches one active reservation.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	var (
		res  model.Reservation
		desc sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		reservationSelect+" WHERE r.id_reservation=? AND r.state=TRUE LIMIT 1", id).
		Scan(&res.ID, &res.UserID, &res.ServiceID, &res.StatusID,
			&res.StartDatetime, &res.EndDatetime, &res.CreatedAt, &res.TotalPrice,
			&res.PaymentMethod, &res.State,
			&res.ServiceName, &desc, &res.DurationMinutes, &res.StatusName)
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrReservationNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	if desc.Valid {
		res.ServiceDescription = &desc.String
	}
	return res, nil
}

// Cancel sets the reservation status to cancelled after verifying the
// reservation belongs to the given user.  Returns ErrForbidden when it
// belongs to somebody else.
func (r *ReservationRepo) Cancel(ctx context.Context, id, userID uint64) error {
	var owner uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id_user FROM reservation WHERE id_reservation=? AND state=TRUE LIMIT 1", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrReservationNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE reservation SET id_reservation_status=? WHERE id_reservation=?",
		model.ReservationCancelled, id)
	return err
}

// UpdateStatus changes the reservation status (admin operation).
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, statusID uint8) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reservation SET id_reservation_status=? WHERE id_reservation=? AND state=TRUE",
		statusID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// SoftDelete hides a reservation without removing the row.
func (r *ReservationRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reservation SET state=FALSE WHERE id_reservation=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func scanReservations(rows *sql.Rows, withUser bool) ([]model.Reservation, error) {
	out := []model.Reservation{}
	for rows.Next() {
		var (
			res  model.Reservation
			desc sql.NullString
		)
		dest := []any{&res.ID, &res.UserID, &res.ServiceID, &res.StatusID,
			&res.StartDatetime, &res.EndDatetime, &res.CreatedAt, &res.TotalPrice,
			&res.PaymentMethod, &res.State,
			&res.ServiceName, &desc, &res.DurationMinutes, &res.StatusName}
		if withUser {
			dest = append(dest, &res.FirstName, &res.LastName, &res.Email)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if desc.Valid {
			res.ServiceDescription = &desc.String
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
