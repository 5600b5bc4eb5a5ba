package importer

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/beauty-center-booking/internal/repository"
)

func newCommitterWithMock(t *testing.T) (*Committer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Committer{
		Staging:  repository.NewStagingRepo(db),
		Services: repository.NewServiceRepo(db),
	}, mock
}

func stagedRows(names ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id_import", "sheet_name", "name", "description",
		"duration_minutes", "price", "state", "user_id",
	})
	for i, name := range names {
		rows.AddRow(uint64(i+1), "Cortes", name, nil, 30, "15.50", true, uint64(7))
	}
	return rows
}

func TestConfirmMixedOutcomes(t *testing.T) {
	c, mock := newCommitterWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_imported WHERE user_id=? AND sheet_name IN (?)")).
		WithArgs(uint64(7), "Cortes").
		WillReturnRows(stagedRows("Corte clásico", "Corte premium", "Corte infantil"))

	existsQ := regexp.QuoteMeta("SELECT id_service FROM service WHERE name=? LIMIT 1")
	insertQ := regexp.QuoteMeta("INSERT INTO service (name, description, duration_minutes, price, state)")

	// first record already lives in the catalog
	mock.ExpectQuery(existsQ).WithArgs("Corte clásico").
		WillReturnRows(sqlmock.NewRows([]string{"id_service"}).AddRow(uint64(99)))
	// second inserts fine
	mock.ExpectQuery(existsQ).WithArgs("Corte premium").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertQ).WillReturnResult(sqlmock.NewResult(100, 1))
	// third blows up on insert
	mock.ExpectQuery(existsQ).WithArgs("Corte infantil").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertQ).WillReturnError(errors.New("deadlock"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM data_imported WHERE user_id=?")).
		WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM data_errors WHERE user_id=?")).
		WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

	sink := &collectSink{}
	stats, err := c.Confirm(context.Background(), 7, []string{"Cortes"}, sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 3, stats.TotalProcessed)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Duplicated)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, stats.TotalProcessed, stats.Inserted+stats.Duplicated+stats.Failed)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "Error insertando 'Corte infantil'")

	// start_confirmation, one progress per record, completed
	require.Len(t, sink.events, 5)
	start := sink.events[0].(StartConfirmationEvent)
	assert.Equal(t, 3, start.TotalRecords)
	assert.Equal(t, []string{"Cortes"}, start.SelectedSheets)

	statuses := []string{}
	for _, ev := range sink.events[1:4] {
		p := ev.(ConfirmProgressEvent)
		statuses = append(statuses, p.Status)
	}
	assert.Equal(t, []string{StatusDuplicated, StatusInserted, StatusFailed}, statuses)

	last := sink.events[4].(CompletedEvent)
	assert.Equal(t, "completed", last.Event)
	assert.Equal(t, stats, last.Stats)
}

func TestConfirmProgressCounts(t *testing.T) {
	c, mock := newCommitterWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_imported WHERE user_id=?")).
		WillReturnRows(stagedRows("Uno", "Dos"))

	existsQ := regexp.QuoteMeta("SELECT id_service FROM service WHERE name=? LIMIT 1")
	insertQ := regexp.QuoteMeta("INSERT INTO service")
	mock.ExpectQuery(existsQ).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertQ).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(existsQ).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertQ).WillReturnResult(sqlmock.NewResult(2, 1))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM data_imported")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM data_errors")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	sink := &collectSink{}
	_, err := c.Confirm(context.Background(), 7, []string{"Cortes"}, sink)
	require.NoError(t, err)

	first := sink.events[1].(ConfirmProgressEvent)
	assert.Equal(t, 1, first.Current)
	assert.Equal(t, 2, first.Total)
	assert.Equal(t, 50.0, first.Progress)
	assert.Equal(t, "Uno", first.Name)

	second := sink.events[2].(ConfirmProgressEvent)
	assert.Equal(t, 100.0, second.Progress)
}

func TestConfirmNothingSelected(t *testing.T) {
	c, mock := newCommitterWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_imported WHERE user_id=?")).
		WillReturnRows(stagedRows())

	sink := &collectSink{}
	stats, err := c.Confirm(context.Background(), 7, []string{"Vacía"}, sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 0, stats.TotalProcessed)
	assert.Equal(t, "No hay registros para confirmar en las hojas seleccionadas", stats.Message)
	assert.Empty(t, sink.events) // no start, no completed
}

func TestConfirmDeadSinkAbortsRun(t *testing.T) {
	c, mock := newCommitterWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM data_imported WHERE user_id=?")).
		WillReturnRows(stagedRows("Uno"))

	_, err := c.Confirm(context.Background(), 7, []string{"Cortes"}, failSink{})
	require.Error(t, err)
}

type failSink struct{}

func (failSink) Send(any) error { return errors.New("connection closed") }
