package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/beauty-center-booking/internal/model"
	"github.com/iliyamo/beauty-center-booking/internal/utils"
)

// UserRepo persists accounts and profiles across the 'user_account'
// and 'user_profile' tables.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userSelect = `
	SELECT ua.id_user, ua.email, ua.password, ua.id_role, ua.state,
	       COALESCE(up.first_name, ''), COALESCE(up.last_name, ''), COALESCE(up.phone, '')
	FROM user_account ua
	LEFT JOIN user_profile up ON ua.id_user = up.id_user`

// Create inserts an account plus its profile in one transaction and
// returns the new user id.  MySQL duplicate-key errors on the email
// column surface as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, firstName, lastName, phone string, roleID uint8, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}

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

	res, err := tx.ExecContext(ctx,
		"INSERT INTO user_account (email, password, id_role) VALUES (?,?,?)",
		email, hash, roleID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_profile (id_user, first_name, last_name, phone) VALUES (?,?,?,?)",
		id, firstName, lastName, phone); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx, userSelect+" WHERE ua.email=? LIMIT 1", email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RoleID, &u.State, &u.FirstName, &u.LastName, &u.Phone)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, userSelect+" WHERE ua.id_user=? LIMIT 1", id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RoleID, &u.State, &u.FirstName, &u.LastName, &u.Phone)
	return u, err
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, userSelect+" ORDER BY ua.id_user DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RoleID, &u.State,
			&u.FirstName, &u.LastName, &u.Phone); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile changes profile fields and, when provided, the email
// and role on the account.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, phone string, email *string, roleID *uint8) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		"UPDATE user_profile SET first_name=?, last_name=?, phone=? WHERE id_user=?",
		firstName, lastName, phone, id); err != nil {
		return err
	}
	if email != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE user_account SET email=? WHERE id_user=?",
			strings.ToLower(strings.TrimSpace(*email)), id); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "1062") {
				return ErrEmailExists
			}
			return err
		}
	}
	if roleID != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE user_account SET id_role=? WHERE id_user=?", *roleID, id); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SetActive flips the account's soft delete flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_account SET state=? WHERE id_user=?", active, id)
	return err
}
