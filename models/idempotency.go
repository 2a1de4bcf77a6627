package models

import (
	"time"

	"gorm.io/datatypes"
)

// IdempotencyRecord maps a client-supplied Idempotency-Key to the exact
// response produced for the first request bearing that key. Records are
// written once and never updated; the unique index on Key is what makes
// first-writer-wins hold across processes.
type IdempotencyRecord struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	IdempotencyKey string         `json:"idempotency_key" gorm:"column:key;size:128;uniqueIndex:idx_idempotency_records_key"`
	ChargeID       string         `json:"charge_id" gorm:"size:36;index"`
	Response       datatypes.JSON `json:"-" gorm:"type:jsonb"` // ChargeResponse snapshot
	CreatedAt      time.Time      `json:"created_at"`          // retention hook; no eviction yet
}
