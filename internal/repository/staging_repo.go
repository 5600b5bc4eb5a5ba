package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/beauty-center-booking/internal/model"
)

// StagingRepo persists the import quarantine: the 'data_imported' and
// 'data_errors' tables.  Both are scoped by user_id (the uploading
// principal, not a session id), so clearing on session start resets
// whatever a previous upload left behind.  Every insert is a single
// statement on a pooled connection and therefore commits on its own;
// a later failure or timeout never rolls back earlier rows.
type StagingRepo struct{ DB *sql.DB }

func NewStagingRepo(db *sql.DB) *StagingRepo { return &StagingRepo{DB: db} }

// ClearForUser deletes all staged rows and errors belonging to the
// user.  It is idempotent: clearing an empty staging area succeeds
// with zero counts.  Both counts are returned so the cancel endpoint
// can report them.
func (r *StagingRepo) ClearForUser(ctx context.Context, userID uint64) (rows int64, errs int64, err error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM data_imported WHERE user_id=?", userID)
	if err != nil {
		return 0, 0, err
	}
	rows, _ = res.RowsAffected()

	res, err = r.DB.ExecContext(ctx, "DELETE FROM data_errors WHERE user_id=?", userID)
	if err != nil {
		return rows, 0, err
	}
	errs, _ = res.RowsAffected()
	return rows, errs, nil
}

// InsertRow stages one validated row and returns its id.
func (r *StagingRepo) InsertRow(ctx context.Context, row model.StagedRow) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO data_imported (sheet_name, name, description, duration_minutes, price, state, user_id)
		 VALUES (?,?,?,?,?,?,?)`,
		row.SheetName, row.Name, nullable(row.Description), row.DurationMinutes,
		row.Price, row.State, row.UserID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// InsertError records one rejected row or sheet.
func (r *StagingRepo) InsertError(ctx context.Context, e model.StagingError) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO data_errors (sheet_name, row_num, error_message, user_id) VALUES (?,?,?,?)`,
		e.SheetName, e.RowNum, e.Message, e.UserID)
	return err
}

// PreviewForUser groups the user's staged rows and errors by sheet
// name.  Sheets that produced only errors (invalid structure, all rows
// rejected) appear with an empty data list so the operator can see why
// nothing was staged for them.
func (r *StagingRepo) PreviewForUser(ctx context.Context, userID uint64) (*model.StagingPreview, error) {
	rows, err := r.listRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	errs, err := r.listErrors(ctx, userID)
	if err != nil {
		return nil, err
	}

	sheets := make(map[string]model.SheetPreview)
	for _, row := range rows {
		p := sheets[row.SheetName]
		if p.Data == nil {
			p.Data = []model.StagedRow{}
			p.Errors = []model.StagingError{}
		}
		p.Data = append(p.Data, row)
		sheets[row.SheetName] = p
	}
	hasInvalid := false
	for _, e := range errs {
		p, ok := sheets[e.SheetName]
		if !ok {
			// error-only sheet: no staged rows survived
			hasInvalid = true
			p = model.SheetPreview{Data: []model.StagedRow{}, Errors: []model.StagingError{}}
		}
		if p.Errors == nil {
			p.Errors = []model.StagingError{}
		}
		p.Errors = append(p.Errors, e)
		sheets[e.SheetName] = p
	}

	summary := model.StagingSummary{HasInvalidSheets: hasInvalid}
	for name, p := range sheets {
		p.Stats = model.SheetStats{TotalRows: len(p.Data), ErrorCount: len(p.Errors)}
		sheets[name] = p
		if len(p.Data) > 0 {
			summary.TotalSheets++
		}
		summary.TotalRows += len(p.Data)
		summary.TotalErrors += len(p.Errors)
	}
	return &model.StagingPreview{Sheets: sheets, Summary: summary}, nil
}

// GetRowForUser fetches a staged row by id, enforcing ownership.
// Returns ErrRowNotFound when the row is missing or owned by another
// user.
func (r *StagingRepo) GetRowForUser(ctx context.Context, userID, rowID uint64) (model.StagedRow, error) {
	var (
		row  model.StagedRow
		desc sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id_import, sheet_name, name, description, duration_minutes, price, state, user_id
		 FROM data_imported WHERE id_import=? AND user_id=? LIMIT 1`,
		rowID, userID).
		Scan(&row.ID, &row.SheetName, &row.Name, &desc, &row.DurationMinutes, &row.Price, &row.State, &row.UserID)
	if err == sql.ErrNoRows {
		return model.StagedRow{}, ErrRowNotFound
	}
	if err != nil {
		return model.StagedRow{}, err
	}
	if desc.Valid {
		row.Description = &desc.String
	}
	return row, nil
}

// UpdateRowForUser applies a validated patch to a staged row.  The SET
// clause is built only from the closed field set of StagedRowPatch, so
// no caller-controlled column name ever reaches the query.  Ownership
// is enforced in the WHERE clause; zero affected rows means the row is
// missing or foreign and maps to ErrRowNotFound.
func (r *StagingRepo) UpdateRowForUser(ctx context.Context, userID, rowID uint64, p model.StagedRowPatch) error {
	if p.IsZero() {
		return nil
	}
	set := make([]string, 0, 5)
	args := make([]any, 0, 7)
	if p.Name != nil {
		set = append(set, "name=?")
		args = append(args, *p.Name)
	}
	if p.Description != nil {
		set = append(set, "description=?")
		args = append(args, sql.NullString{String: *p.Description, Valid: *p.Description != ""})
	}
	if p.DurationMinutes != nil {
		set = append(set, "duration_minutes=?")
		args = append(args, *p.DurationMinutes)
	}
	if p.Price != nil {
		set = append(set, "price=?")
		args = append(args, *p.Price)
	}
	if p.State != nil {
		set = append(set, "state=?")
		args = append(args, *p.State)
	}
	args = append(args, rowID, userID)

	query := fmt.Sprintf("UPDATE data_imported SET %s WHERE id_import=? AND user_id=?", strings.Join(set, ", "))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distinguish "no such row" from "values already equal"
		if _, err := r.GetRowForUser(ctx, userID, rowID); err != nil {
			return err
		}
	}
	return nil
}

// ListBySheets returns the user's staged rows restricted to the given
// sheet names, ordered by sheet then staging id.  This is the exact
// order the committer processes records in.
func (r *StagingRepo) ListBySheets(ctx context.Context, userID uint64, sheets []string) ([]model.StagedRow, error) {
	if len(sheets) == 0 {
		return []model.StagedRow{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sheets)), ",")
	args := make([]any, 0, len(sheets)+1)
	args = append(args, userID)
	for _, s := range sheets {
		args = append(args, s)
	}
	query := fmt.Sprintf(
		`SELECT id_import, sheet_name, name, description, duration_minutes, price, state, user_id
		 FROM data_imported WHERE user_id=? AND sheet_name IN (%s)
		 ORDER BY sheet_name, id_import`, placeholders)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.StagedRow{}
	for rows.Next() {
		var (
			row  model.StagedRow
			desc sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.SheetName, &row.Name, &desc,
			&row.DurationMinutes, &row.Price, &row.State, &row.UserID); err != nil {
			return nil, err
		}
		if desc.Valid {
			row.Description = &desc.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *StagingRepo) listRows(ctx context.Context, userID uint64) ([]model.StagedRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id_import, sheet_name, name, description, duration_minutes, price, state, user_id
		 FROM data_imported WHERE user_id=? ORDER BY sheet_name, id_import`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.StagedRow{}
	for rows.Next() {
		var (
			row  model.StagedRow
			desc sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.SheetName, &row.Name, &desc,
			&row.DurationMinutes, &row.Price, &row.State, &row.UserID); err != nil {
			return nil, err
		}
		if desc.Valid {
			row.Description = &desc.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *StagingRepo) listErrors(ctx context.Context, userID uint64) ([]model.StagingError, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id_error, sheet_name, row_num, error_message, user_id
		 FROM data_errors WHERE user_id=? ORDER BY sheet_name, id_error`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.StagingError{}
	for rows.Next() {
		var e model.StagingError
		if err := rows.Scan(&e.ID, &e.SheetName, &e.RowNum, &e.Message, &e.UserID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// nullable converts an optional string into its SQL representation.
func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
