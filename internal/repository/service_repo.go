package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/beauty-center-booking/internal/model"
)

// ServiceRepo persists the live catalog: the 'service' table.  Name
// uniqueness is a pipeline-level rule enforced by callers via
// ExistsByName rather than a schema constraint, matching how the
// import committer decides between insert and duplicate.
type ServiceRepo struct{ DB *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{DB: db} }

// ExistsByName reports whether a catalog service with the exact name
// exists.  The match deliberately ignores sheet and uploader: once a
// name is committed, any later staged row with that name counts as a
// duplicate.
func (r *ServiceRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id_service FROM service WHERE name=? LIMIT 1", name).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a catalog service and returns its id.
func (r *ServiceRepo) Create(ctx context.Context, s model.Service) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO service (name, description, duration_minutes, price, state)
		 VALUES (?,?,?,?,?)`,
		s.Name, nullable(s.Description), s.DurationMinutes, s.Price, s.State)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all catalog services.
func (r *ServiceRepo) List(ctx context.Context) ([]model.Service, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id_service, name, description, duration_minutes, price, state FROM service ORDER BY id_service")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		var (
			s    model.Service
			desc sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &desc, &s.DurationMinutes, &s.Price, &s.State); err != nil {
			return nil, err
		}
		if desc.Valid {
			s.Description = &desc.String
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches one service.  Returns ErrServiceNotFound when the id
// does not resolve.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var (
		s    model.Service
		desc sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id_service, name, description, duration_minutes, price, state FROM service WHERE id_service=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &desc, &s.DurationMinutes, &s.Price, &s.State)
	if err == sql.ErrNoRows {
		return model.Service{}, ErrServiceNotFound
	}
	if err != nil {
		return model.Service{}, err
	}
	if desc.Valid {
		s.Description = &desc.String
	}
	return s, nil
}

// GetActiveByID fetches one service that is currently bookable.
func (r *ServiceRepo) GetActiveByID(ctx context.Context, id uint64) (model.Service, error) {
	var (
		s    model.Service
		desc sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id_service, name, description, duration_minutes, price, state FROM service WHERE id_service=? AND state=TRUE LIMIT 1",
		id).Scan(&s.ID, &s.Name, &desc, &s.DurationMinutes, &s.Price, &s.State)
	if err == sql.ErrNoRows {
		return model.Service{}, ErrServiceNotFound
	}
	if err != nil {
		return model.Service{}, err
	}
	if desc.Valid {
		s.Description = &desc.String
	}
	return s, nil
}

// Update replaces all mutable fields of a service.
func (r *ServiceRepo) Update(ctx context.Context, s model.Service) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE service SET name=?, description=?, duration_minutes=?, price=?, state=? WHERE id_service=?`,
		s.Name, nullable(s.Description), s.DurationMinutes, s.Price, s.State, s.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a service by id.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM service WHERE id_service=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrServiceNotFound
	}
	return nil
}
