package importer

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/iliyamo/beauty-center-booking/internal/model"
	"github.com/iliyamo/beauty-center-booking/internal/repository"
)

// ConfirmStats is the aggregate outcome of a confirmation run.  The
// invariant Inserted+Duplicated+Failed == TotalProcessed holds for
// every run; Errors collects the store messages behind Failed.
type ConfirmStats struct {
	TotalProcessed int      `json:"total_processed"`
	Inserted       int      `json:"inserted"`
	Duplicated     int      `json:"duplicated"`
	Failed         int      `json:"failed"`
	Errors         []string `json:"errors"`
	Message        string   `json:"message,omitempty"`
}

// Committer moves staged rows into the live catalog.  Per-record
// outcomes (duplicate name, failed insert) are business data, not
// errors: they land in the stats and the record stream, and the run
// carries on.  Only a dead sink or a broken store read aborts it.
// Staging is cleared at the end no matter how many records failed.
type Committer struct {
	Staging  *repository.StagingRepo
	Services *repository.ServiceRepo
	Yield    time.Duration // pause after each record
}

// NewCommitter builds a Committer with the default 10 ms yield.
func NewCommitter(staging *repository.StagingRepo, services *repository.ServiceRepo) *Committer {
	return &Committer{Staging: staging, Services: services, Yield: 10 * time.Millisecond}
}

// Confirm commits the user's staged rows for the selected sheets, in
// sheet-then-id order.  The duplicate check matches on name alone,
// regardless of sheet or uploader: once a name exists in the catalog,
// every later staged row with that name reports as duplicated.
func (c *Committer) Confirm(ctx context.Context, userID uint64, sheets []string, sink EventSink) (*ConfirmStats, error) {
	stats := &ConfirmStats{Errors: []string{}}

	records, err := c.Staging.ListBySheets(ctx, userID, sheets)
	if err != nil {
		return nil, fmt.Errorf("load staged rows: %w", err)
	}
	total := len(records)
	if total == 0 {
		stats.Message = "No hay registros para confirmar en las hojas seleccionadas"
		return stats, nil
	}

	if err := sink.Send(StartConfirmationEvent{
		Event:          "start_confirmation",
		TotalRecords:   total,
		SelectedSheets: sheets,
	}); err != nil {
		return nil, err
	}

	for idx, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := idx + 1
		ev := ConfirmProgressEvent{
			Event:    "progress",
			Current:  current,
			Total:    total,
			Progress: math.Round(float64(current)/float64(total)*10000) / 100,
			Name:     rec.Name,
		}

		exists, err := c.Services.ExistsByName(ctx, rec.Name)
		if err != nil {
			return nil, fmt.Errorf("duplicate check: %w", err)
		}
		switch {
		case exists:
			stats.Duplicated++
			ev.Status = StatusDuplicated
		default:
			_, insErr := c.Services.Create(ctx, model.Service{
				Name:            rec.Name,
				Description:     rec.Description,
				DurationMinutes: rec.DurationMinutes,
				Price:           rec.Price,
				State:           rec.State,
			})
			if insErr != nil {
				stats.Failed++
				msg := fmt.Sprintf("Error insertando '%s': %v", rec.Name, insErr)
				stats.Errors = append(stats.Errors, msg)
				log.Printf("importer: %s", msg)
				ev.Status = StatusFailed
				ev.Error = insErr.Error()
			} else {
				stats.Inserted++
				ev.Status = StatusInserted
			}
		}
		stats.TotalProcessed++

		if err := sink.Send(ev); err != nil {
			return nil, err
		}
		if c.Yield > 0 {
			time.Sleep(c.Yield)
		}
	}

	// Staging is spent regardless of per-record failures.
	if _, _, err := c.Staging.ClearForUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear staging: %w", err)
	}

	if err := sink.Send(CompletedEvent{Event: "completed", Stats: stats}); err != nil {
		return nil, err
	}
	return stats, nil
}
