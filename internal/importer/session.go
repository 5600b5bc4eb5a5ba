package importer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/iliyamo/beauty-center-booking/internal/model"
	"github.com/iliyamo/beauty-center-booking/internal/repository"
	"github.com/iliyamo/beauty-center-booking/internal/response"
)

// FilePayload is one uploaded workbook as carried in the first client
// message of an import session: a filename plus base64 content.
type FilePayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// FileSummary is the per-workbook outcome of a session.
type FileSummary struct {
	Filename      string   `json:"filename"`
	ValidSheets   []string `json:"valid_sheets"`
	InvalidSheets []string `json:"invalid_sheets"`
	TotalRows     int      `json:"total_rows"`
}

// UploadSummary aggregates across all files of one session.
type UploadSummary struct {
	TotalFiles int `json:"total_files"`
	TotalRows  int `json:"total_rows"`
}

// UploadResult is the terminal payload of an import session.
type UploadResult struct {
	Summary UploadSummary `json:"summary"`
	Details []FileSummary `json:"details"`
}

// Session drives one staged import from upload to preview: clear the
// user's quarantine, parse each workbook, validate row by row, persist
// every outcome as its own immediately committed write, and push
// progress over the sink.  Processing is strictly sequential; the only
// concurrency is the cooperative yield after each event so the
// transport can flush.
//
// The wall-clock budget is measured from Run's entry.  Once exceeded,
// the current sheet is aborted with a sheet-level timeout error and
// every remaining sheet aborts the same way on its first row.  Rows
// staged before the cutoff stay staged.
type Session struct {
	Staging *repository.StagingRepo
	Budget  time.Duration // wall-clock budget for the whole session
	Yield   time.Duration // pause after each progress event
}

// NewSession builds a Session with the given budget and the default
// 1 ms yield.
func NewSession(staging *repository.StagingRepo, budget time.Duration) *Session {
	return &Session{Staging: staging, Budget: budget, Yield: time.Millisecond}
}

// Run executes the full import session for one user.  A returned error
// is terminal for the session: either a workbook that cannot be
// decoded, a dead sink, or a cancelled context.  Per-row and per-sheet
// problems never surface here: they are persisted as staging errors
// and absorbed into the summary.
func (s *Session) Run(ctx context.Context, userID uint64, files []FilePayload, sink EventSink) (*UploadResult, error) {
	start := time.Now()

	// One in-flight staged import per user: reset whatever an earlier
	// session left behind.
	if _, _, err := s.Staging.ClearForUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear staging: %w", err)
	}

	result := &UploadResult{Details: []FileSummary{}}
	for _, f := range files {
		content, err := base64.StdEncoding.DecodeString(f.Content)
		if err != nil {
			// skip the broken file, keep processing the rest
			msg := fmt.Sprintf("Archivo inválido: %s", f.Filename)
			if err := sink.Send(response.New(false, msg, nil, http.StatusBadRequest)); err != nil {
				return nil, err
			}
			continue
		}

		if err := sink.Send(StartFileEvent{Event: "start_file", Filename: f.Filename}); err != nil {
			return nil, err
		}

		summary, err := s.processFile(ctx, userID, content, f.Filename, start, sink)
		if err != nil {
			return nil, err
		}
		result.Details = append(result.Details, *summary)
		result.Summary.TotalFiles++
		result.Summary.TotalRows += summary.TotalRows

		if err := sink.Send(PreviewReadyEvent{
			Event:         "preview_ready",
			Filename:      f.Filename,
			ValidSheets:   summary.ValidSheets,
			InvalidSheets: summary.InvalidSheets,
		}); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// processFile stages one workbook sheet by sheet.
func (s *Session) processFile(ctx context.Context, userID uint64, content []byte, filename string, start time.Time, sink EventSink) (*FileSummary, error) {
	wb, err := ParseWorkbook(content, filename)
	if err != nil {
		return nil, err
	}

	summary := &FileSummary{
		Filename:      filename,
		ValidSheets:   []string{},
		InvalidSheets: []string{},
	}

	for _, sheet := range wb.Sheets {
		if missing := MissingColumns(sheet.Columns); len(missing) > 0 {
			summary.InvalidSheets = append(summary.InvalidSheets, sheet.Name)
			s.stageError(ctx, userID, sheet.Name, 0, SheetStructureMessage(missing))
			continue
		}

		// Structure checked out: the sheet counts as valid even if the
		// budget later cuts it short.
		summary.ValidSheets = append(summary.ValidSheets, sheet.Name)
		total := len(sheet.Rows)
		summary.TotalRows += total

		aborted, err := s.processRows(ctx, userID, sheet, filename, total, start, sink)
		if err != nil {
			return nil, err
		}
		if aborted {
			summary.InvalidSheets = append(summary.InvalidSheets, sheet.Name)
		}
	}
	return summary, nil
}

// processRows validates and persists each row of one sheet, emitting a
// progress event per row.  It reports aborted=true when the session
// budget ran out mid-sheet.
func (s *Session) processRows(ctx context.Context, userID uint64, sheet Sheet, filename string, total int, start time.Time, sink EventSink) (aborted bool, err error) {
	for i, raw := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		rowNum := i + 2 // 1-based with header offset

		rec, verr := ValidateRow(raw)
		if verr != nil {
			s.stageError(ctx, userID, sheet.Name, rowNum, verr.Error())
		} else {
			rec.SheetName = sheet.Name
			rec.UserID = userID
			if _, insErr := s.Staging.InsertRow(ctx, rec); insErr != nil {
				// one row's persistence failure never aborts its siblings
				s.stageError(ctx, userID, sheet.Name, rowNum,
					fmt.Sprintf("Error inesperado: %v", insErr))
			}
		}

		percent := math.Round(float64(i+1)/float64(total)*10000) / 100
		if err := sink.Send(ProgressEvent{Event: "progress", Filename: filename, Progress: percent}); err != nil {
			return false, err
		}
		s.yield()

		if time.Since(start) > s.Budget {
			s.stageError(ctx, userID, sheet.Name, 0,
				fmt.Sprintf("Tiempo máximo %ds excedido.", int(s.Budget.Seconds())))
			return true, nil
		}
	}
	return false, nil
}

// stageError persists a staging error; persistence failures here are
// logged and swallowed so one bad write cannot take down the session.
func (s *Session) stageError(ctx context.Context, userID uint64, sheet string, rowNum int, msg string) {
	e := model.StagingError{SheetName: sheet, RowNum: rowNum, Message: msg, UserID: userID}
	if err := s.Staging.InsertError(ctx, e); err != nil {
		log.Printf("importer: record staging error failed (sheet=%s row=%d): %v", sheet, rowNum, err)
	}
}

func (s *Session) yield() {
	if s.Yield > 0 {
		time.Sleep(s.Yield)
	}
}
