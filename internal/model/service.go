package model

import (
	"github.com/shopspring/decimal"
)

// Service is a live, bookable catalog offering as stored in the
// `service` table.  The name acts as the business key: the import
// committer refuses to insert a second service with the same name.
type Service struct {
	ID              uint64          `json:"id_service"`       // service.id_service
	Name            string          `json:"name"`             // service.name
	Description     *string         `json:"description"`      // service.description (nullable)
	DurationMinutes int             `json:"duration_minutes"` // service.duration_minutes
	Price           decimal.Decimal `json:"price"`            // service.price (DECIMAL)
	State           bool            `json:"state"`            // service.state (active flag)
}
