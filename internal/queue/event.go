// Package queue defines message payloads exchanged over the message
// broker, the publisher used by the import pipeline and the background
// consumer that turns events into audit log lines.
package queue

import "time"

// ImportConfirmedEvent is published when a staged import is confirmed
// into the live catalog.  It carries enough for downstream consumers to
// log, notify or trigger analytics without querying the primary
// database.
type ImportConfirmedEvent struct {
	UserID         uint64    `json:"user_id"`
	SelectedSheets []string  `json:"selected_sheets"`
	Inserted       int       `json:"inserted"`
	Duplicated     int       `json:"duplicated"`
	Failed         int       `json:"failed"`
	TotalProcessed int       `json:"total_processed"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}
