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

func newStagingRepo(t *testing.T) (*StagingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStagingRepo(db), mock
}

func TestClearForUserReturnsCounts(t *testing.T) {
	repo, mock := newStagingRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM data_imported WHERE user_id=?")).
		WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM data_errors WHERE user_id=?")).
		WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, 2))

	rows, errs, err := repo.ClearForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rows)
	assert.Equal(t, int64(2), errs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRowForUserEnforcesOwnership(t *testing.T) {
	repo, mock := newStagingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_imported WHERE id_import=? AND user_id=?")).
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_import", "sheet_name", "name", "description",
			"duration_minutes", "price", "state", "user_id",
		}))

	_, err := repo.GetRowForUser(context.Background(), 7, 3)
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestUpdateRowForUserBuildsPartialSet(t *testing.T) {
	repo, mock := newStagingRepo(t)

	name := "Corte nuevo"
	price := decimal.RequireFromString("19.90")
	patch := model.StagedRowPatch{Name: &name, Price: &price}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE data_imported SET name=?, price=? WHERE id_import=? AND user_id=?")).
		WithArgs(name, price, uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateRowForUser(context.Background(), 7, 3, patch))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRowForUserMissingRow(t *testing.T) {
	repo, mock := newStagingRepo(t)

	name := "Corte"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE data_imported SET name=? WHERE id_import=? AND user_id=?")).
		WithArgs(name, uint64(99), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM data_imported WHERE id_import=? AND user_id=?")).
		WithArgs(uint64(99), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_import", "sheet_name", "name", "description",
			"duration_minutes", "price", "state", "user_id",
		}))

	err := repo.UpdateRowForUser(context.Background(), 7, 99, model.StagedRowPatch{Name: &name})
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestUpdateRowForUserEmptyPatchIsNoop(t *testing.T) {
	repo, mock := newStagingRepo(t)
	require.NoError(t, repo.UpdateRowForUser(context.Background(), 7, 3, model.StagedRowPatch{}))
	require.NoError(t, mock.ExpectationsWereMet()) // no SQL at all
}

func TestPreviewForUserGroupsBySheet(t *testing.T) {
	repo, mock := newStagingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_imported WHERE user_id=? ORDER BY sheet_name, id_import")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_import", "sheet_name", "name", "description",
			"duration_minutes", "price", "state", "user_id",
		}).
			AddRow(uint64(1), "Cortes", "Corte clásico", "Con tijera", 30, "15.50", true, uint64(7)).
			AddRow(uint64(2), "Cortes", "Corte premium", nil, 45, "25", true, uint64(7)).
			AddRow(uint64(3), "Tintes", "Tinte completo", nil, 90, "45", false, uint64(7)))

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_errors WHERE user_id=? ORDER BY sheet_name, id_error")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_error", "sheet_name", "row_num", "error_message", "user_id",
		}).
			AddRow(uint64(1), "Cortes", 4, "Nombre vacío", uint64(7)).
			AddRow(uint64(2), "Rota", 0, "Estructura inválida: faltan columnas price", uint64(7)))

	preview, err := repo.PreviewForUser(context.Background(), 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, preview.Sheets, 3)

	cortes := preview.Sheets["Cortes"]
	assert.Len(t, cortes.Data, 2)
	assert.Len(t, cortes.Errors, 1)
	assert.Equal(t, model.SheetStats{TotalRows: 2, ErrorCount: 1}, cortes.Stats)

	// error-only sheet still shows up so the operator sees why it failed
	rota := preview.Sheets["Rota"]
	assert.Empty(t, rota.Data)
	assert.Len(t, rota.Errors, 1)

	// only sheets with staged data count toward the total
	assert.Equal(t, 2, preview.Summary.TotalSheets)
	assert.Equal(t, 3, preview.Summary.TotalRows)
	assert.Equal(t, 2, preview.Summary.TotalErrors)
	assert.True(t, preview.Summary.HasInvalidSheets)
}

func TestListBySheetsEmptySelection(t *testing.T) {
	repo, mock := newStagingRepo(t)

	rows, err := repo.ListBySheets(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet()) // no query issued
}
