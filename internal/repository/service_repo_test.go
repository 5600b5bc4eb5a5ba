package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/beauty-center-booking/internal/model"
)

func newServiceRepo(t *testing.T) (*ServiceRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServiceRepo(db), mock
}

func TestExistsByName(t *testing.T) {
	repo, mock := newServiceRepo(t)

	q := regexp.QuoteMeta("SELECT id_service FROM service WHERE name=? LIMIT 1")
	mock.ExpectQuery(q).WithArgs("Corte clásico").
		WillReturnRows(sqlmock.NewRows([]string{"id_service"}).AddRow(uint64(4)))
	mock.ExpectQuery(q).WithArgs("Inexistente").
		WillReturnRows(sqlmock.NewRows([]string{"id_service"}))

	exists, err := repo.ExistsByName(context.Background(), "Corte clásico")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(context.Background(), "Inexistente")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateServiceStoresNullDescription(t *testing.T) {
	repo, mock := newServiceRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO service (name, description, duration_minutes, price, state)")).
		WithArgs("Manicura", nil, 40, decimal.RequireFromString("12"), true).
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := repo.Create(context.Background(), model.Service{
		Name:            "Manicura",
		DurationMinutes: 40,
		Price:           decimal.RequireFromString("12"),
		State:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newServiceRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM service WHERE id_service=? LIMIT 1")).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_service", "name", "description", "duration_minutes", "price", "state",
		}))

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestDeleteServiceNotFound(t *testing.T) {
	repo, mock := newServiceRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM service WHERE id_service=?")).
		WithArgs(uint64(42)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
