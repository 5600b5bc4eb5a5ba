package importer

import (
	"context"
	"encoding/base64"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/beauty-center-booking/internal/repository"
	"github.com/iliyamo/beauty-center-booking/internal/response"
)

// collectSink records every event pushed by the pipeline.
type collectSink struct{ events []any }

func (s *collectSink) Send(v any) error {
	s.events = append(s.events, v)
	return nil
}

func newSessionWithMock(t *testing.T, budget time.Duration) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Session{Staging: repository.NewStagingRepo(db), Budget: budget}, mock
}

func expectClear(mock sqlmock.Sqlmock, rows, errs int64) {
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM data_imported WHERE user_id=?")).
		WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, rows))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM data_errors WHERE user_id=?")).
		WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, errs))
}

func payload(t *testing.T, filename string, sheets map[string][][]any, order []string) FilePayload {
	t.Helper()
	return FilePayload{
		Filename: filename,
		Content:  base64.StdEncoding.EncodeToString(buildWorkbook(t, sheets, order)),
	}
}

func TestSessionStagesValidRows(t *testing.T) {
	s, mock := newSessionWithMock(t, time.Minute)
	expectClear(mock, 0, 0)

	insert := regexp.QuoteMeta("INSERT INTO data_imported (sheet_name, name, description, duration_minutes, price, state, user_id)")
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(2, 1))

	sink := &collectSink{}
	file := payload(t, "catalogo.xlsx", map[string][][]any{
		"Cortes": {
			{"name", "description", "duration_minutes", "price", "state"},
			{"Corte clásico", "Con tijera", "30", "15.50", "1"},
			{"Corte premium", "", "45", "25", "si"},
		},
	}, []string{"Cortes"})

	result, err := s.Run(context.Background(), 7, []FilePayload{file}, sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, result.Details, 1)
	assert.Equal(t, []string{"Cortes"}, result.Details[0].ValidSheets)
	assert.Empty(t, result.Details[0].InvalidSheets)
	assert.Equal(t, 2, result.Details[0].TotalRows)
	assert.Equal(t, 1, result.Summary.TotalFiles)
	assert.Equal(t, 2, result.Summary.TotalRows)

	// start_file, two progress, preview_ready
	require.Len(t, sink.events, 4)
	assert.Equal(t, "start_file", sink.events[0].(StartFileEvent).Event)
	assert.Equal(t, 50.0, sink.events[1].(ProgressEvent).Progress)
	assert.Equal(t, 100.0, sink.events[2].(ProgressEvent).Progress)
	ready := sink.events[3].(PreviewReadyEvent)
	assert.Equal(t, []string{"Cortes"}, ready.ValidSheets)
}

func TestSessionRejectsSheetMissingColumns(t *testing.T) {
	s, mock := newSessionWithMock(t, time.Minute)
	expectClear(mock, 0, 0)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO data_errors (sheet_name, row_num, error_message, user_id)")).
		WithArgs("Rota", 0, "Estructura inválida: faltan columnas duration_minutes, price, state", uint64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sink := &collectSink{}
	file := payload(t, "catalogo.xlsx", map[string][][]any{
		"Rota": {
			{"name", "description"},
			{"Corte", "algo"},
		},
	}, []string{"Rota"})

	result, err := s.Run(context.Background(), 7, []FilePayload{file}, sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, result.Details, 1)
	assert.Empty(t, result.Details[0].ValidSheets)
	assert.Equal(t, []string{"Rota"}, result.Details[0].InvalidSheets)
	assert.Equal(t, 0, result.Details[0].TotalRows)
}

func TestSessionStagesRowErrorsAndKeepsGoing(t *testing.T) {
	s, mock := newSessionWithMock(t, time.Minute)
	expectClear(mock, 0, 0)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO data_errors")).
		WithArgs("Cortes", 2, "Nombre vacío", uint64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO data_imported")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sink := &collectSink{}
	file := payload(t, "catalogo.xlsx", map[string][][]any{
		"Cortes": {
			{"name", "description", "duration_minutes", "price", "state"},
			{"", "", "30", "10", "1"},
			{"Corte clásico", "", "30", "10", "1"},
		},
	}, []string{"Cortes"})

	result, err := s.Run(context.Background(), 7, []FilePayload{file}, sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// a rejected row does not invalidate the sheet
	assert.Equal(t, []string{"Cortes"}, result.Details[0].ValidSheets)
	assert.Empty(t, result.Details[0].InvalidSheets)
	assert.Equal(t, 2, result.Details[0].TotalRows)
}

func TestSessionSkipsUndecodableFile(t *testing.T) {
	s, mock := newSessionWithMock(t, time.Minute)
	expectClear(mock, 0, 0)

	sink := &collectSink{}
	result, err := s.Run(context.Background(), 7,
		[]FilePayload{{Filename: "roto.xlsx", Content: "no-es-base64!!!"}}, sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Empty(t, result.Details)
	assert.Equal(t, 0, result.Summary.TotalFiles)

	require.Len(t, sink.events, 1)
	env := sink.events[0].(response.Envelope)
	assert.False(t, env.Success)
	assert.Equal(t, "Archivo inválido: roto.xlsx", env.Message)
	assert.Equal(t, 400, env.Code)
}

func TestSessionAbortsSheetOnExhaustedBudget(t *testing.T) {
	s, mock := newSessionWithMock(t, 0) // budget already spent
	expectClear(mock, 0, 0)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO data_imported")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO data_errors")).
		WithArgs("Cortes", 0, "Tiempo máximo 0s excedido.", uint64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sink := &collectSink{}
	file := payload(t, "catalogo.xlsx", map[string][][]any{
		"Cortes": {
			{"name", "description", "duration_minutes", "price", "state"},
			{"Corte clásico", "", "30", "10", "1"},
			{"Corte premium", "", "45", "25", "1"},
		},
	}, []string{"Cortes"})

	result, err := s.Run(context.Background(), 7, []FilePayload{file}, sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// the sheet passed the structure check and then ran out of time,
	// so it shows up on both sides
	assert.Equal(t, []string{"Cortes"}, result.Details[0].ValidSheets)
	assert.Equal(t, []string{"Cortes"}, result.Details[0].InvalidSheets)
}

func TestSessionClearsPreviousStaging(t *testing.T) {
	s, mock := newSessionWithMock(t, time.Minute)
	expectClear(mock, 12, 3)

	sink := &collectSink{}
	result, err := s.Run(context.Background(), 7, nil, sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 0, result.Summary.TotalFiles)
	assert.Empty(t, sink.events)
}
