package importer

// Streaming event payloads pushed to the client during an import or
// confirmation session.  The sink is one-way: the pipeline never waits
// for acknowledgments, ordering is the only guarantee.

// EventSink receives progress events and the terminal envelope of a
// streaming session.  The websocket handler adapts a connection to
// this interface; tests substitute an in-memory collector.  A Send
// error means the channel is gone and aborts the session.
type EventSink interface {
	Send(v any) error
}

// StartFileEvent opens the processing of one uploaded workbook.
type StartFileEvent struct {
	Event    string  `json:"event"` // "start_file"
	Filename string  `json:"filename"`
	Progress float64 `json:"progress"` // always 0
}

// ProgressEvent reports percent-complete of the current sheet after
// each processed row.
type ProgressEvent struct {
	Event    string  `json:"event"` // "progress"
	Filename string  `json:"filename"`
	Progress float64 `json:"progress"` // 0..100, two decimals
}

// PreviewReadyEvent closes one workbook: its sheets are staged and the
// operator can review them.
type PreviewReadyEvent struct {
	Event         string   `json:"event"` // "preview_ready"
	Filename      string   `json:"filename"`
	ValidSheets   []string `json:"valid_sheets"`
	InvalidSheets []string `json:"invalid_sheets"`
}

// StartConfirmationEvent opens a confirmation run.
type StartConfirmationEvent struct {
	Event          string   `json:"event"` // "start_confirmation"
	TotalRecords   int      `json:"total_records"`
	SelectedSheets []string `json:"selected_sheets"`
}

// ConfirmProgressEvent reports the outcome of one staged record during
// confirmation.  Status is "inserted", "duplicated" or "failed"; Error
// carries the store error text on failures.
type ConfirmProgressEvent struct {
	Event    string  `json:"event"` // "progress"
	Current  int     `json:"current"`
	Total    int     `json:"total"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	Name     string  `json:"name"`
	Error    string  `json:"error,omitempty"`
}

// CompletedEvent closes a confirmation run with the aggregate stats.
type CompletedEvent struct {
	Event string        `json:"event"` // "completed"
	Stats *ConfirmStats `json:"stats"`
}

// Per-record confirmation statuses.
const (
	StatusInserted   = "inserted"
	StatusDuplicated = "duplicated"
	StatusFailed     = "failed"
)
